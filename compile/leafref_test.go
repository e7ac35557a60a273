// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile_test

import (
	"testing"

	"github.com/iptecharch/yang-compiler/schema"
)

func TestLeafrefRelativePathResolves(t *testing.T) {
	ms := expectSuccess(t, `
	leaf target {
		type uint8 {
			range "1..10";
		}
	}
	leaf ref {
		type leafref {
			path "../target";
		}
	}`)

	lr := ms.Child("ref").Type().(schema.Leafref)
	if lr.Target() == nil {
		t.Fatalf("leafref target not resolved")
	}
	if _, ok := lr.Target().(schema.Uinteger); !ok {
		t.Fatalf("effective leafref type should be the target's uint8")
	}
	// The effective type carries the target's restrictions
	if err := lr.Validate(nil, "5"); err != nil {
		t.Errorf("5 is valid for the target type: %s", err)
	}
	if err := lr.Validate(nil, "11"); err == nil {
		t.Errorf("11 is outside the target's range")
	}
}

func TestLeafrefAbsolutePathResolves(t *testing.T) {
	ms := expectSuccess(t, `
	container interfaces {
		list interface {
			key "name";
			leaf name {
				type string;
			}
		}
	}
	leaf mgmtInterface {
		type leafref {
			path "/interfaces/interface/name";
		}
	}`)

	lr := ms.Child("mgmtInterface").Type().(schema.Leafref)
	if lr.Target() == nil {
		t.Fatalf("absolute leafref target not resolved")
	}
	if _, ok := lr.Target().(schema.String); !ok {
		t.Errorf("effective type should be the key leaf's string")
	}
}

func TestLeafrefWithPredicateResolves(t *testing.T) {
	ms := expectSuccess(t, `
	container routing {
		list instance {
			key "name";
			leaf name {
				type string;
			}
			leaf id {
				type uint32;
			}
		}
	}
	leaf primaryId {
		type leafref {
			path "/routing/instance[name=current()/../primaryName]/id";
		}
	}
	leaf primaryName {
		type string;
	}`)

	lr := ms.Child("primaryId").Type().(schema.Leafref)
	if lr.Target() == nil {
		t.Fatalf("predicated leafref target not resolved")
	}
	if _, ok := lr.Target().(schema.Uinteger); !ok {
		t.Errorf("effective type should be uint32")
	}
}

func TestLeafrefChainResolves(t *testing.T) {
	ms := expectSuccess(t, `
	leaf origin {
		type int8;
	}
	leaf hop {
		type leafref {
			path "../origin";
		}
	}
	leaf ref {
		type leafref {
			path "../hop";
		}
	}`)

	lr := ms.Child("ref").Type().(schema.Leafref)
	if lr.Target() == nil {
		t.Fatalf("chained leafref not resolved")
	}
	if _, ok := lr.Target().(schema.Integer); !ok {
		t.Errorf("the chain should bottom out at int8, got %T", lr.Target())
	}
}

func TestLeafrefUnresolvableTarget(t *testing.T) {
	expectFailure(t, `
	leaf ref {
		type leafref {
			path "../nosuch";
		}
	}`,
		"unresolved")
}

func TestLeafrefCycleRejected(t *testing.T) {
	expectFailure(t, `
	leaf a {
		type leafref {
			path "../b";
		}
	}
	leaf b {
		type leafref {
			path "../a";
		}
	}`,
		"")
}

func TestLeafrefTargetMustBeLeafy(t *testing.T) {
	expectFailure(t, `
	container c {
		leaf x {
			type string;
		}
	}
	leaf ref {
		type leafref {
			path "../c";
		}
	}`,
		"does not name a leaf or leaf-list")
}

func TestLeafrefPathDeclaredOnce(t *testing.T) {
	expectFailure(t, `
	typedef ifref {
		type leafref {
			path "../target";
		}
	}
	leaf target {
		type string;
	}
	leaf ref {
		type ifref {
			path "../target";
		}
	}`,
		"cannot restrict leafref path")
}

func TestLeafrefMissingPath(t *testing.T) {
	expectFailure(t, `
	leaf ref {
		type leafref;
	}`,
		"missing path")
}

func TestLeafrefRequireInstance(t *testing.T) {
	ms, err := compileRawModules(t, `
module lreq {
	yang-version 1.1;
	namespace "urn:lreq";
	prefix lr;

	leaf target {
		type string;
	}
	leaf laxRef {
		type leafref {
			path "../target";
			require-instance false;
		}
	}
	leaf strictRef {
		type leafref {
			path "../target";
		}
	}
}`)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}

	if ms.Child("laxRef").Type().(schema.Leafref).Require() {
		t.Errorf("require-instance false was ignored")
	}
	if !ms.Child("strictRef").Type().(schema.Leafref).Require() {
		t.Errorf("require-instance should default to true")
	}
}

func TestLeafrefInUnionResolves(t *testing.T) {
	ms, err := compileRawModules(t, `
module luni {
	yang-version 1.1;
	namespace "urn:luni";
	prefix lu;

	leaf target {
		type uint16;
	}
	leaf ref {
		type union {
			type leafref {
				path "../target";
			}
			type string;
		}
	}
}`)
	if err != nil {
		t.Fatalf("unexpected compile failure: %s", err)
	}

	u := ms.Child("ref").Type().(schema.Union)
	lr, ok := u.Typs()[0].(schema.Leafref)
	if !ok {
		t.Fatalf("first union member should be the leafref")
	}
	if lr.Target() == nil {
		t.Errorf("leafref union member was not resolved")
	}
}
