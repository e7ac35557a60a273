// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile_test

import (
	"strings"
	"testing"

	"github.com/iptecharch/yang-compiler/compile"
	"github.com/iptecharch/yang-compiler/schema"
	"github.com/iptecharch/yang-compiler/testutils"
)

// compileRawModules compiles standalone module texts, for tests that need
// full control over the module header.
func compileRawModules(t *testing.T, texts ...string) (schema.ModelSet, error) {
	t.Helper()
	trees, err := testutils.ParseModuleTexts(texts...)
	if err != nil {
		return nil, err
	}
	return compile.CompileModules(nil, &compile.Config{}, trees)
}

// expectSuccess compiles a snippet wrapped in the standard test module
// and fails the test on any error.
func expectSuccess(t *testing.T, snippet string) schema.ModelSet {
	t.Helper()
	ms, err := testutils.CompileSnippet(snippet)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}
	return ms
}

// expectFailure compiles a snippet and requires an error containing the
// given text.
func expectFailure(t *testing.T, snippet, errtext string) {
	t.Helper()
	_, err := testutils.CompileSnippet(snippet)
	if err == nil {
		t.Fatalf("compile unexpectedly succeeded")
	}
	if !strings.Contains(err.Error(), errtext) {
		t.Fatalf("wrong error.\n  got: %s\n  want substring: %s",
			err, errtext)
	}
}

func TestCompileContainerWithLeaves(t *testing.T) {
	ms := expectSuccess(t, `
	container testContainer {
		description "top level container";
		leaf testLeaf {
			type string;
		}
		leaf-list testLeafList {
			type uint8;
			ordered-by user;
		}
	}`)

	cont, ok := ms.Child("testContainer").(schema.Container)
	if !ok {
		t.Fatalf("testContainer is not a container")
	}
	if cont.Presence() {
		t.Errorf("testContainer should not be a presence container")
	}
	if cont.Description() != "top level container" {
		t.Errorf("wrong description: %s", cont.Description())
	}
	if !cont.Config() {
		t.Errorf("config should default to true")
	}

	leaf, ok := cont.Child("testLeaf").(schema.Leaf)
	if !ok {
		t.Fatalf("testLeaf is not a leaf")
	}
	if _, ok := leaf.Type().(schema.String); !ok {
		t.Errorf("testLeaf type is not string")
	}
	if leaf.Parent() != schema.Node(cont) {
		t.Errorf("testLeaf parent is not testContainer")
	}

	ll, ok := cont.Child("testLeafList").(schema.LeafList)
	if !ok {
		t.Fatalf("testLeafList is not a leaf-list")
	}
	if ll.OrdBy() != "user" {
		t.Errorf("testLeafList should be ordered-by user")
	}
}

func TestCompilePresenceContainer(t *testing.T) {
	ms := expectSuccess(t, `
	container testContainer {
		presence "enables the feature";
	}`)

	cont := ms.Child("testContainer").(schema.Container)
	if !cont.Presence() {
		t.Errorf("presence not set")
	}
	if cont.PresenceText() != "enables the feature" {
		t.Errorf("wrong presence text: %s", cont.PresenceText())
	}
}

func TestCompileListKeys(t *testing.T) {
	ms := expectSuccess(t, `
	list testList {
		key "name";
		leaf name {
			type string;
		}
		leaf value {
			type uint32;
		}
	}`)

	l := ms.Child("testList").(schema.List)
	if len(l.Keys()) != 1 || l.Keys()[0] != "name" {
		t.Fatalf("wrong keys: %v", l.Keys())
	}
	key := l.Child("name").(schema.Leaf)
	if !key.IsKey() {
		t.Errorf("name should be marked as a key leaf")
	}
	if key.Mandatory() {
		t.Errorf("a key leaf is never reported mandatory")
	}
}

func TestCompileListMissingKeyLeaf(t *testing.T) {
	expectFailure(t, `
	list testList {
		key "nosuch";
		leaf name {
			type string;
		}
	}`,
		"list key nosuch not found")
}

func TestCompileConfigListWithoutKey(t *testing.T) {
	expectFailure(t, `
	list testList {
		leaf name {
			type string;
		}
	}`,
		"configuration list must have a key")
}

func TestCompileListKeyConfigMismatch(t *testing.T) {
	expectFailure(t, `
	list testList {
		key "name";
		leaf name {
			type string;
			config false;
		}
	}`,
		"list key config must agree with its list")
}

func TestConfigInheritance(t *testing.T) {
	ms := expectSuccess(t, `
	container state {
		config false;
		leaf counters {
			type uint64;
		}
	}`)

	cont := ms.Child("state").(schema.Container)
	if cont.Config() {
		t.Errorf("state should be config false")
	}
	if cont.Child("counters").Config() {
		t.Errorf("counters should inherit config false")
	}
}

func TestConfigTrueUnderConfigFalse(t *testing.T) {
	expectFailure(t, `
	container state {
		config false;
		leaf counters {
			config true;
			type uint64;
		}
	}`,
		"config true node can't have a config false parent")
}

func TestStatusInheritance(t *testing.T) {
	ms := expectSuccess(t, `
	container old {
		status deprecated;
		leaf stale {
			type string;
		}
		leaf gone {
			status obsolete;
			type string;
		}
	}`)

	cont := ms.Child("old")
	if cont.Status() != schema.Deprecated {
		t.Errorf("old should be deprecated")
	}
	if cont.Child("stale").Status() != schema.Deprecated {
		t.Errorf("stale should inherit deprecated status")
	}
	if cont.Child("gone").Status() != schema.Obsolete {
		t.Errorf("gone should be obsolete")
	}
}

func TestStatusCannotOutrankParent(t *testing.T) {
	expectFailure(t, `
	container old {
		status obsolete;
		leaf comeback {
			status current;
			type string;
		}
	}`,
		"cannot override status of parent")
}

func TestDuplicateSiblingNames(t *testing.T) {
	expectFailure(t, `
	container testContainer {
		leaf twin {
			type string;
		}
		leaf-list twin {
			type string;
		}
	}`,
		"redefinition of name twin")
}

func TestRpcImplicitInputOutput(t *testing.T) {
	ms := expectSuccess(t, `
	rpc ping {
		input {
			leaf destination {
				type string;
				mandatory true;
			}
		}
		output {
			leaf rtt {
				type uint32;
			}
		}
	}
	rpc reset;`)

	mod := ms.Modules()["test-yang-compile"]
	ping, ok := mod.Rpcs()["ping"]
	if !ok {
		t.Fatalf("rpc ping not compiled")
	}
	if ping.Input().Child("destination") == nil {
		t.Errorf("ping input is missing destination")
	}
	if ping.Output().Child("rtt") == nil {
		t.Errorf("ping output is missing rtt")
	}

	reset, ok := mod.Rpcs()["reset"]
	if !ok {
		t.Fatalf("rpc reset not compiled")
	}
	if reset.Input() == nil || reset.Output() == nil {
		t.Errorf("reset should have implicit empty input and output")
	}
}

func TestNotification(t *testing.T) {
	ms := expectSuccess(t, `
	notification linkDown {
		leaf ifName {
			type string;
		}
	}`)

	mod := ms.Modules()["test-yang-compile"]
	n, ok := mod.Notifications()["linkDown"]
	if !ok {
		t.Fatalf("notification not compiled")
	}
	if n.Schema().Child("ifName") == nil {
		t.Errorf("notification tree is missing ifName")
	}
}

func TestMustAndWhenCompile(t *testing.T) {
	ms := expectSuccess(t, `
	container testContainer {
		leaf mode {
			type string;
		}
		leaf speed {
			type uint32;
			when "../mode = 'ethernet'";
			must "current() != 0" {
				error-message "speed must be non-zero";
				error-app-tag "speed-invalid";
			}
		}
	}`)

	leaf := ms.Child("testContainer").Child("speed")
	if len(leaf.Whens()) != 1 {
		t.Fatalf("expected one when, got %d", len(leaf.Whens()))
	}
	if leaf.Whens()[0].Mach.GetExpr() != "../mode = 'ethernet'" {
		t.Errorf("wrong when expression: %s", leaf.Whens()[0].Mach.GetExpr())
	}
	if len(leaf.Musts()) != 1 {
		t.Fatalf("expected one must, got %d", len(leaf.Musts()))
	}
	must := leaf.Musts()[0]
	if must.ErrMsg != "speed must be non-zero" {
		t.Errorf("wrong must error message: %s", must.ErrMsg)
	}
	if must.AppTag != "speed-invalid" {
		t.Errorf("wrong must app tag: %s", must.AppTag)
	}
}

func TestBadWhenExpressionRejected(t *testing.T) {
	expectFailure(t, `
	leaf broken {
		type string;
		when "../mode = ";
	}`,
		"")
}

func TestAnyxmlAndAnydata(t *testing.T) {
	ms := expectSuccess(t, `
	anyxml legacyBlob {
		mandatory true;
	}
	anydata modernBlob;`)

	ax, ok := ms.Child("legacyBlob").(schema.AnyXml)
	if !ok {
		t.Fatalf("legacyBlob is not anyxml")
	}
	if !ax.Mandatory() {
		t.Errorf("legacyBlob should be mandatory")
	}
	if _, ok := ms.Child("modernBlob").(schema.AnyData); !ok {
		t.Fatalf("modernBlob is not anydata")
	}
}

func TestSubmoduleInclude(t *testing.T) {
	main := testutils.NewTestSchema("mainmod", "mm").
		AddInclude("submod").
		AddSchemaSnippet(`
	container top {
		uses subgroup;
	}`)
	sub := testutils.NewTestSchema("submod", "sm").
		AddBelongsTo("mainmod", "mm").
		AddSchemaSnippet(`
	grouping subgroup {
		leaf fromSub {
			type string;
		}
	}`)

	ms, err := testutils.CompileSchemas(*main, *sub)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}
	if ms.Child("top").Child("fromSub") == nil {
		t.Errorf("grouping from submodule was not expanded")
	}
}

func TestImportedTypedef(t *testing.T) {
	types := testutils.NewTestSchema("typesmod", "ty").
		AddSchemaSnippet(`
	typedef percent {
		type uint8 {
			range "0..100";
		}
	}`)
	user := testutils.NewTestSchema("usermod", "um").
		AddSchemaSnippet(`
	leaf load {
		type ty:percent;
	}`)
	user.AddImport("typesmod", "ty")

	ms, err := testutils.CompileSchemas(*types, *user)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}
	leaf := ms.Child("load").(schema.Leaf)
	if err := leaf.Type().Validate([]string{"load"}, "100"); err != nil {
		t.Errorf("100 should be a valid percent: %s", err)
	}
	if err := leaf.Type().Validate([]string{"load"}, "101"); err == nil {
		t.Errorf("101 should exceed the percent range")
	}
}

func TestImportCycleDetected(t *testing.T) {
	a := testutils.NewTestSchema("moda", "a").AddSchemaSnippet("")
	a.AddImport("modb", "b")
	b := testutils.NewTestSchema("modb", "b").AddSchemaSnippet("")
	b.AddImport("moda", "a")

	_, err := testutils.CompileSchemas(*a, *b)
	if err == nil {
		t.Fatalf("import cycle should fail compilation")
	}
}
