// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile_test

import (
	"testing"

	"github.com/iptecharch/yang-compiler/compile"
	"github.com/iptecharch/yang-compiler/testutils"
)

func TestFeatureGatingPrunesNodes(t *testing.T) {
	snippet := `
	feature experimental;
	container stable {
		leaf always {
			type string;
		}
	}
	container lab {
		if-feature experimental;
		leaf maybe {
			type string;
		}
	}`

	// Disabled: the guarded container is pruned
	ms, err := testutils.CompileSnippet(snippet)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}
	if ms.Child("stable") == nil {
		t.Errorf("unguarded container must survive")
	}
	if ms.Child("lab") != nil {
		t.Errorf("disabled feature must prune the container")
	}

	// Enabled: it stays
	ms, err = testutils.CompileSnippetWithFeatures(snippet,
		"test-yang-compile:experimental")
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}
	if ms.Child("lab") == nil {
		t.Errorf("enabled feature must keep the container")
	}
}

func TestFeatureListOnModel(t *testing.T) {
	ms, err := testutils.CompileSnippetWithFeatures(`
	feature one;
	feature two;`,
		"test-yang-compile:one")
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}

	feats := ms.Modules()["test-yang-compile"].Features()
	if len(feats) != 1 || feats[0] != "one" {
		t.Errorf("wrong enabled feature list: %v", feats)
	}
}

func TestIfFeatureChain(t *testing.T) {
	// enabling only the outer feature is not enough: it depends on base
	snippet := `
	feature base;
	feature dependent {
		if-feature base;
	}
	leaf gated {
		type string;
		if-feature dependent;
	}`

	ms, err := testutils.CompileSnippetWithFeatures(snippet,
		"test-yang-compile:dependent")
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}
	if ms.Child("gated") != nil {
		t.Errorf("dependent requires base; leaf must be pruned")
	}

	ms, err = testutils.CompileSnippetWithFeatures(snippet,
		"test-yang-compile:dependent", "test-yang-compile:base")
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}
	if ms.Child("gated") == nil {
		t.Errorf("both features enabled; leaf must survive")
	}
}

func TestIfFeatureCycleRejected(t *testing.T) {
	_, err := testutils.CompileSnippet(`
	feature a {
		if-feature b;
	}
	feature b {
		if-feature a;
	}`)
	if err == nil {
		t.Fatalf("if-feature cycle should fail compilation")
	}
}

// YANG 1.1 if-feature arguments are boolean expressions.
func TestIfFeatureExpression(t *testing.T) {
	text := `
module feat11 {
	yang-version 1.1;
	namespace "urn:feat11";
	prefix f11;

	feature f1;
	feature f2;

	leaf orGated {
		type string;
		if-feature "f1 or f2";
	}
	leaf andGated {
		type string;
		if-feature "f1 and f2";
	}
	leaf notGated {
		type string;
		if-feature "not f2";
	}
	leaf nested {
		type string;
		if-feature "f1 and (f2 or not f2)";
	}
}`

	trees, err := testutils.ParseModuleTexts(text)
	if err != nil {
		t.Fatalf("parse failure: %s", err)
	}
	ms, err := compile.CompileModules(nil, &compile.Config{
		Features: compile.FeaturesFromNames(true, "feat11:f1"),
	}, trees)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}

	if ms.Child("orGated") == nil {
		t.Errorf("f1 or f2 is true with f1 enabled")
	}
	if ms.Child("andGated") != nil {
		t.Errorf("f1 and f2 is false with f2 disabled")
	}
	if ms.Child("notGated") == nil {
		t.Errorf("not f2 is true with f2 disabled")
	}
	if ms.Child("nested") == nil {
		t.Errorf("f1 and (f2 or not f2) is true with f1 enabled")
	}
}

func TestUnknownFeatureReferenceRejected(t *testing.T) {
	expectFailure(t, `
	leaf gated {
		type string;
		if-feature nosuchfeature;
	}`,
		"not valid")
}

func TestDuplicateFeatureRejected(t *testing.T) {
	expectFailure(t, `
	feature same;
	feature same;`,
		"duplicate feature")
}

func TestMultiFeatureCheckers(t *testing.T) {
	first := compile.FeaturesFromNames(true, "m:f")
	second := compile.FeaturesFromNames(false, "m:f")

	// The last checker to report a status wins
	combined := compile.MultiFeatureCheckers(first, second)
	if combined.Status("m:f") != compile.DISABLED {
		t.Errorf("second checker should override the first")
	}

	combined = compile.MultiFeatureCheckers(second, first)
	if combined.Status("m:f") != compile.ENABLED {
		t.Errorf("first checker should be overridden")
	}

	if combined.Status("m:other") != compile.DISABLED {
		t.Errorf("unknown features report disabled")
	}
}
