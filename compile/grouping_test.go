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

// The full uses pipeline: grouping resolution, refine application per the
// YANG 1.1 table, a uses-level augment rooted at the expansion, and the
// whole thing disappearing into ordinary compiled nodes.
func TestUsesWithRefinesAndAugment(t *testing.T) {
	ms, err := compileRawModules(t, `
module ext {
	yang-version 1.1;
	namespace "urn:ext";
	prefix x;

	identity zero;
	identity one {
		base zero;
	}
	identity two {
		base zero;
		base one;
	}

	grouping grp {
		container c;
		leaf l {
			type identityref {
				base two;
			}
		}
		leaf-list ll1 {
			type int8;
		}
		leaf-list ll2 {
			type int8;
		}
	}

	uses grp {
		refine "c" {
			presence "true";
			config false;
		}
		refine "l" {
			mandatory "true";
		}
		refine "ll1" {
			min-elements 1;
			max-elements 1;
		}
		refine "ll2" {
			default "1";
			default "2";
		}
		augment "c" {
			leaf a {
				type int8;
			}
		}
	}
}`)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}

	c, ok := ms.Child("c").(schema.Container)
	if !ok {
		t.Fatalf("expanded container c missing")
	}
	if !c.Presence() || c.PresenceText() != "true" {
		t.Errorf("refined presence lost: %v %q", c.Presence(), c.PresenceText())
	}
	if c.Config() {
		t.Errorf("refined config false lost")
	}

	l := ms.Child("l").(schema.Leaf)
	if !l.Mandatory() {
		t.Errorf("refined mandatory lost")
	}
	if _, ok := l.Type().(schema.Identityref); !ok {
		t.Errorf("leaf l should keep its identityref type")
	}

	ll1 := ms.Child("ll1").(schema.LeafList)
	if ll1.Limit().Min != 1 || ll1.Limit().Max != 1 {
		t.Errorf("refined min/max lost: %+v", ll1.Limit())
	}

	ll2 := ms.Child("ll2").(schema.LeafList)
	defs := ll2.Defaults()
	if len(defs) != 2 || defs[0] != "1" || defs[1] != "2" {
		t.Errorf("refined default sequence lost: %v", defs)
	}

	a, ok := c.Child("a").(schema.Leaf)
	if !ok {
		t.Fatalf("augmented leaf a missing from c")
	}
	if _, ok := a.Type().(schema.Integer); !ok {
		t.Errorf("augmented leaf a should be int8")
	}
	if a.Config() {
		t.Errorf("augmented leaf a must inherit c's refined config false")
	}
}

func TestUsesUnknownGrouping(t *testing.T) {
	expectFailure(t, `
	container testContainer {
		uses nosuchgroup;
	}`,
		"unknown grouping")
}

func TestGroupingCycleDetected(t *testing.T) {
	expectFailure(t, `
	grouping ga {
		uses gb;
	}
	grouping gb {
		uses ga;
	}
	container testContainer {
		uses ga;
	}`,
		"cycle")
}

func TestNestedGroupingResolved(t *testing.T) {
	ms := expectSuccess(t, `
	container testContainer {
		grouping g {
			leaf fromInner {
				type string;
			}
		}
		uses g;
	}`)

	cont := ms.Child("testContainer")
	if cont.Child("fromInner") == nil {
		t.Errorf("nested grouping should resolve from the local scope")
	}
}

// Shadowing an ancestor grouping's name is disallowed.
func TestGroupingShadowingRejected(t *testing.T) {
	expectFailure(t, `
	grouping g {
		leaf fromOuter {
			type string;
		}
	}
	container testContainer {
		grouping g {
			leaf fromInner {
				type string;
			}
		}
		uses g;
	}`,
		"cannot shadow")
}

func TestCrossModuleGrouping(t *testing.T) {
	ms, err := compileRawModules(t, `
module libmod {
	namespace "urn:libmod";
	prefix lib;

	grouping endpoint {
		leaf host {
			type string;
		}
		leaf port {
			type uint16;
		}
	}
}`, `
module appmod {
	namespace "urn:appmod";
	prefix app;

	import libmod {
		prefix lib;
	}

	container server {
		uses lib:endpoint;
	}
}`)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}

	server := ms.Child("server")
	if server.Child("host") == nil || server.Child("port") == nil {
		t.Fatalf("cross-module grouping was not expanded")
	}
	// Grouping-derived nodes belong to the namespace where they are used
	if ns := server.Child("host").Namespace(); ns != "urn:appmod" {
		t.Errorf("expanded node has wrong namespace: %s", ns)
	}
}

func TestIllegalRefineTargetStatement(t *testing.T) {
	_, err := compileRawModules(t, `
module reftest {
	namespace "urn:reftest";
	prefix rt;

	grouping grp {
		leaf l {
			type string;
		}
	}
	uses grp {
		refine "l" {
			units "volts";
		}
	}
}`)
	if err == nil {
		t.Fatalf("units is not a legal refinement and should fail")
	}
	if !strings.Contains(err.Error(), "invalid refinement") {
		t.Fatalf("wrong error: %s", err)
	}
}

func TestRefineUnknownTargetRejected(t *testing.T) {
	expectFailure(t, `
	grouping grp {
		leaf l {
			type string;
		}
	}
	container testContainer {
		uses grp {
			refine "nosuch" {
				mandatory true;
			}
		}
	}`,
		"invalid path")
}

// A when on the uses attaches to every top-level node of the expansion,
// and all of them share one compiled machine.
func TestUsesWhenSharedAcrossExpansion(t *testing.T) {
	ms := expectSuccess(t, `
	leaf mode {
		type string;
	}
	grouping grp {
		leaf first {
			type string;
		}
		leaf second {
			type string;
		}
	}
	uses grp {
		when "mode = 'full'";
	}`)

	first := ms.Child("first")
	second := ms.Child("second")
	if len(first.Whens()) != 1 || len(second.Whens()) != 1 {
		t.Fatalf("when not attached to every expanded node")
	}
	if first.Whens()[0].Mach != second.Whens()[0].Mach {
		t.Errorf("expanded nodes should share one compiled when machine")
	}
}

func TestGroupingBodyErrorsSurfaceWithoutUses(t *testing.T) {
	// The grouping is never used, but its body is still compiled (and
	// discarded) to surface the error it contains.
	expectFailure(t, `
	grouping unusedButBroken {
		leaf l {
			type nosuchtype;
		}
	}`,
		"unknown type nosuchtype")
}
