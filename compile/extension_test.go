// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile_test

import (
	"strings"
	"testing"

	"github.com/iptecharch/yang-compiler/schema"
)

const extDefModule = `
module ext-def {
	namespace "urn:ext-def";
	prefix e;

	extension a;
	extension b {
		argument x;
	}
	extension c {
		argument y {
			yin-element true;
		}
	}
}`

// The fullset extension fixture: instances on the node, its type, a
// pattern restriction, a must, and on simple substatements. Order and
// nesting must survive compilation exactly as written.
const extUseModule = `
module ext {
	yang-version 1.1;
	namespace "urn:ext";
	prefix x;

	import ext-def {
		prefix e;
	}

	typedef length {
		e:a;
		e:b "one";
		e:c "one";
		type int32;
		units "meter";
		default "10";
	}

	leaf l {
		e:a;
		e:b "one";
		type string {
			pattern "[a-z]" {
				e:a;
				e:b "one";
				modifier invert-match;
				error-message "emsg";
				error-app-tag "eapptag";
			}
		}
		units "petipivo" {
			e:a;
			e:b "one";
			e:c "one";
		}
		must "true()" {
			e:a;
		}
		config false;
		mandatory true;
	}

	leaf d {
		type length;
		default "1";
	}
}`

func compileExtFixture(t *testing.T) schema.ModelSet {
	t.Helper()
	ms, err := compileRawModules(t, extDefModule, extUseModule)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}
	return ms
}

func checkInstanceSeq(t *testing.T, what string,
	exts []schema.ExtensionInstance, want ...string) {
	t.Helper()
	if len(exts) != len(want) {
		t.Fatalf("%s: got %d extension instances, want %d: %v",
			what, len(exts), len(want), exts)
	}
	for i, w := range want {
		if exts[i].String() != w {
			t.Errorf("%s: instance %d is %q, want %q",
				what, i, exts[i].String(), w)
		}
	}
}

func TestExtensionInstancesOnNode(t *testing.T) {
	ms := compileExtFixture(t)

	l := ms.Child("l").(schema.Leaf)
	checkInstanceSeq(t, "leaf l", l.Extensions(), "e:a", "e:b one")

	if !l.Mandatory() {
		t.Errorf("leaf l must be mandatory")
	}
	if l.Config() {
		t.Errorf("leaf l must be config false")
	}
	if l.Units() != "petipivo" {
		t.Errorf("leaf l units lost: %q", l.Units())
	}
}

func TestExtensionInstancesOnPattern(t *testing.T) {
	ms := compileExtFixture(t)

	str := ms.Child("l").Type().(schema.String)
	if len(str.Pats()) != 1 {
		t.Fatalf("expected exactly one pattern, got %d", len(str.Pats()))
	}
	pat := str.Pats()[0]
	if !pat.Invert {
		t.Errorf("pattern must carry invert-match")
	}
	if pat.Pattern != "[a-z]" {
		t.Errorf("wrong pattern source: %q", pat.Pattern)
	}
	if pat.Msg != "emsg" || pat.AppTag != "eapptag" {
		t.Errorf("pattern error info lost: %q %q", pat.Msg, pat.AppTag)
	}
	checkInstanceSeq(t, "pattern", pat.Exts, "e:a", "e:b one")

	// invert-match: a value matching [a-z] must fail, anything else pass
	if err := str.Validate(nil, "a"); err == nil {
		t.Errorf("'a' matches the inverted pattern and must fail")
	}
	if err := str.Validate(nil, "A"); err != nil {
		t.Errorf("'A' does not match the inverted pattern: %s", err)
	}
}

func TestExtensionInstancesOnSubstatements(t *testing.T) {
	ms := compileExtFixture(t)

	l := ms.Child("l")
	unitsExts := l.StatementExtensions()["units"]
	checkInstanceSeq(t, "units", unitsExts, "e:a", "e:b one", "e:c one")
}

func TestExtensionInstancesOnMust(t *testing.T) {
	ms := compileExtFixture(t)

	musts := ms.Child("l").Musts()
	if len(musts) != 1 {
		t.Fatalf("expected one must, got %d", len(musts))
	}
	checkInstanceSeq(t, "must", musts[0].Exts, "e:a")
}

func TestUnitsAndDefaultBubbleThroughTypedef(t *testing.T) {
	ms := compileExtFixture(t)

	d := ms.Child("d").(schema.Leaf)
	if d.Units() != "meter" {
		t.Errorf("leaf d should inherit units meter, got %q", d.Units())
	}
	// The leaf's own default "1" overrides the typedef's "10"
	if def, ok := d.Type().Default(); !ok || def != "1" {
		t.Errorf("leaf d default wrong: %q %v", def, ok)
	}
	if err := d.Type().Validate(nil, "1"); err != nil {
		t.Errorf("default 1 must validate against int32: %s", err)
	}
}

func TestNestedExtensionInstances(t *testing.T) {
	ms, err := compileRawModules(t, extDefModule, `
module nested {
	namespace "urn:nested";
	prefix n;

	import ext-def {
		prefix e;
	}

	container c {
		e:c "outer" {
			e:a;
			e:b "inner";
		}
	}
}`)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}

	exts := ms.Child("c").Extensions()
	if len(exts) != 1 {
		t.Fatalf("expected one instance, got %d", len(exts))
	}
	if exts[0].String() != "e:c outer" {
		t.Errorf("wrong outer instance: %s", exts[0])
	}
	checkInstanceSeq(t, "nested", exts[0].SubStatements, "e:a", "e:b inner")
}

func TestUnknownExtensionRejected(t *testing.T) {
	_, err := compileRawModules(t, extDefModule, `
module badext {
	namespace "urn:badext";
	prefix b;

	import ext-def {
		prefix e;
	}

	container c {
		e:nosuch;
	}
}`)
	if err == nil {
		t.Fatalf("unknown extension should fail compilation")
	}
	if !strings.Contains(err.Error(), "unknown extension") {
		t.Fatalf("wrong error: %s", err)
	}
}

func TestExtensionOnModuleStatement(t *testing.T) {
	ms, err := compileRawModules(t, extDefModule, `
module modext {
	namespace "urn:modext";
	prefix m;

	import ext-def {
		prefix e;
	}

	e:a;
	e:b "module-level";
}`)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}

	exts := ms.Modules()["modext"].Extensions()
	checkInstanceSeq(t, "module", exts, "e:a", "e:b module-level")
}
