// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile_test

import (
	"testing"

	"github.com/iptecharch/yang-compiler/schema"
)

func TestTypedefChainBuildsBaseType(t *testing.T) {
	ms := expectSuccess(t, `
	typedef base_int_with_range {
		type int32 {
			range "1..10 | 13..20";
		}
	}
	leaf testLeaf {
		type base_int_with_range;
	}`)

	typ := ms.Child("testLeaf").Type()
	i, ok := typ.(schema.Integer)
	if !ok {
		t.Fatalf("compiled type is not an integer")
	}
	if len(i.Rbs()) != 2 {
		t.Fatalf("wrong number of ranges: %d", len(i.Rbs()))
	}
	if err := i.Validate([]string{"testLeaf"}, "15"); err != nil {
		t.Errorf("15 should be in range: %s", err)
	}
	if err := i.Validate([]string{"testLeaf"}, "11"); err == nil {
		t.Errorf("11 should be outside 1..10|13..20")
	}
}

func TestDerivedRangeMustBeRestrictive(t *testing.T) {
	expectFailure(t, `
	typedef base_int_with_range {
		type int32 {
			range "1..10";
		}
	}
	leaf testLeaf {
		type base_int_with_range {
			range "0..5";
		}
	}`,
		"restrictive")
}

func TestDerivedRangeIntersection(t *testing.T) {
	ms := expectSuccess(t, `
	typedef base_int_with_range {
		type int32 {
			range "1..10 | 13..20";
		}
	}
	leaf testLeaf {
		type base_int_with_range {
			range "2..9";
		}
	}`)

	i := ms.Child("testLeaf").Type().(schema.Integer)
	if len(i.Rbs()) != 1 || i.Rbs()[0].Start != 2 || i.Rbs()[0].End != 9 {
		t.Fatalf("wrong intersected range: %v", i.Rbs())
	}
}

func TestRangesMustBeDisjoint(t *testing.T) {
	expectFailure(t, `
	leaf testLeaf {
		type int32 {
			range "1..10 | 5..20";
		}
	}`,
		"disjoint")
}

func TestRangesMustBeAscending(t *testing.T) {
	expectFailure(t, `
	leaf testLeaf {
		type int32 {
			range "13..20 | 1..10";
		}
	}`,
		"ascending")
}

func TestDerivedLengthMustBeRestrictive(t *testing.T) {
	expectFailure(t, `
	typedef short_string {
		type string {
			length "2..10";
		}
	}
	leaf testLeaf {
		type short_string {
			length "1..5";
		}
	}`,
		"restrictive")
}

func TestLengthRestriction(t *testing.T) {
	ms := expectSuccess(t, `
	leaf testLeaf {
		type string {
			length "2..4";
		}
	}`)

	typ := ms.Child("testLeaf").Type()
	if err := typ.Validate([]string{"testLeaf"}, "abc"); err != nil {
		t.Errorf("abc has valid length: %s", err)
	}
	if err := typ.Validate([]string{"testLeaf"}, "a"); err == nil {
		t.Errorf("a is too short")
	}
	if err := typ.Validate([]string{"testLeaf"}, "abcde"); err == nil {
		t.Errorf("abcde is too long")
	}
}

// The pattern list of a derived type is the base list plus its own; a
// value must match all of them, with invert-match negating only the
// pattern carrying it.
func TestPatternInheritanceIsCumulative(t *testing.T) {
	ms := expectSuccess(t, `
	typedef word {
		type string {
			pattern "[a-z]*";
		}
	}
	leaf testLeaf {
		type word {
			pattern "x.*" {
				modifier invert-match;
			}
		}
	}`)

	str := ms.Child("testLeaf").Type().(schema.String)
	if len(str.Pats()) != 2 {
		t.Fatalf("expected 2 inherited patterns, got %d", len(str.Pats()))
	}
	if str.Pats()[0].Invert {
		t.Errorf("base pattern must keep invert=false")
	}
	if !str.Pats()[1].Invert {
		t.Errorf("derived pattern must keep invert=true")
	}

	if err := str.Validate(nil, "abc"); err != nil {
		t.Errorf("abc matches [a-z]* and not x.*: %s", err)
	}
	if err := str.Validate(nil, "xyz"); err == nil {
		t.Errorf("xyz matches the inverted pattern and must fail")
	}
	if err := str.Validate(nil, "ABC"); err == nil {
		t.Errorf("ABC fails the base pattern and must fail")
	}
}

func TestInvalidPatternRejected(t *testing.T) {
	expectFailure(t, `
	leaf testLeaf {
		type string {
			pattern "[unterminated";
		}
	}`,
		"invalid pattern")
}

func TestUnitsBubbleFromTypedefChain(t *testing.T) {
	ms := expectSuccess(t, `
	typedef meters {
		type uint32;
		units "meter";
	}
	typedef altitude {
		type meters;
	}
	leaf height {
		type altitude;
	}
	leaf width {
		type meters;
		units "centimeter";
	}`)

	if u := ms.Child("height").(schema.Leaf).Units(); u != "meter" {
		t.Errorf("height should inherit units meter, got %q", u)
	}
	if u := ms.Child("width").(schema.Leaf).Units(); u != "centimeter" {
		t.Errorf("width's own units win, got %q", u)
	}
}

func TestDefaultBubblesFromTypedefChain(t *testing.T) {
	ms := expectSuccess(t, `
	typedef base_uint_with_default {
		type uint8;
		default "99";
	}
	leaf inherited {
		type base_uint_with_default;
	}
	leaf overridden {
		type base_uint_with_default;
		default "12";
	}`)

	if def, ok := ms.Child("inherited").Type().Default(); !ok || def != "99" {
		t.Errorf("inherited default wrong: %q %v", def, ok)
	}
	if def, ok := ms.Child("overridden").Type().Default(); !ok || def != "12" {
		t.Errorf("overridden default wrong: %q %v", def, ok)
	}
}

func TestInvalidDefaultRejected(t *testing.T) {
	expectFailure(t, `
	leaf testLeaf {
		type uint8 {
			range "1..10";
		}
		default "42";
	}`,
		"invalid default")
}

func TestTypedefCycleDetected(t *testing.T) {
	expectFailure(t, `
	typedef ouroboros {
		type tail;
	}
	typedef tail {
		type ouroboros;
	}
	leaf testLeaf {
		type ouroboros;
	}`,
		"cycle")
}

func TestUnknownTypeRejected(t *testing.T) {
	expectFailure(t, `
	leaf testLeaf {
		type nosuchtype;
	}`,
		"unknown type nosuchtype")
}

func TestFractionDigitsRequired(t *testing.T) {
	expectFailure(t, `
	leaf testLeaf {
		type decimal64;
	}`,
		"missing fraction-digits")
}

func TestFractionDigitsSetOnceInChain(t *testing.T) {
	expectFailure(t, `
	typedef temperature {
		type decimal64 {
			fraction-digits 2;
		}
	}
	leaf testLeaf {
		type temperature {
			fraction-digits 3;
		}
	}`,
		"fraction-digits cannot be changed")
}

func TestDecimal64Range(t *testing.T) {
	ms := expectSuccess(t, `
	leaf testLeaf {
		type decimal64 {
			fraction-digits 2;
			range "0.0 .. 1.5";
		}
	}`)

	d := ms.Child("testLeaf").Type().(schema.Decimal64)
	if d.Fd() != 2 {
		t.Errorf("wrong fraction-digits: %d", d.Fd())
	}
	if err := d.Validate(nil, "1.25"); err != nil {
		t.Errorf("1.25 should be in range: %s", err)
	}
	if err := d.Validate(nil, "2.0"); err == nil {
		t.Errorf("2.0 should be out of range")
	}
}

func TestEnumerationAutoValues(t *testing.T) {
	ms := expectSuccess(t, `
	leaf testLeaf {
		type enumeration {
			enum zero;
			enum five {
				value 5;
			}
			enum six;
		}
	}`)

	e := ms.Child("testLeaf").Type().(schema.Enumeration)
	want := map[string]int{"zero": 0, "five": 5, "six": 6}
	for _, en := range e.Enums() {
		if want[en.Val] != en.Value {
			t.Errorf("enum %s: value %d, want %d", en.Val, en.Value, want[en.Val])
		}
	}
}

// A type derived from an enumeration may select a subset of the
// inherited labels, but may not change their values.
func TestEnumerationSubsetSelection(t *testing.T) {
	ms := expectSuccess(t, `
	typedef colour {
		type enumeration {
			enum red;
			enum green;
			enum blue;
		}
	}
	leaf testLeaf {
		type colour {
			enum red;
			enum blue;
		}
	}`)

	e := ms.Child("testLeaf").Type().(schema.Enumeration)
	if len(e.Enums()) != 2 {
		t.Fatalf("expected subset of 2 enums, got %d", len(e.Enums()))
	}
	if e.Enums()[1].Val != "blue" || e.Enums()[1].Value != 2 {
		t.Errorf("blue must keep its inherited value 2, got %d",
			e.Enums()[1].Value)
	}
	if err := e.Validate(nil, "green"); err == nil {
		t.Errorf("green was not selected and must be invalid")
	}
}

func TestEnumerationSubsetNewLabelRejected(t *testing.T) {
	expectFailure(t, `
	typedef colour {
		type enumeration {
			enum red;
		}
	}
	leaf testLeaf {
		type colour {
			enum ultraviolet;
		}
	}`,
		"not defined in base type")
}

func TestEnumerationSubsetValueMismatchRejected(t *testing.T) {
	expectFailure(t, `
	typedef colour {
		type enumeration {
			enum red;
			enum green;
		}
	}
	leaf testLeaf {
		type colour {
			enum green {
				value 7;
			}
		}
	}`,
		"does not match inherited value")
}

func TestUnionMemberTypes(t *testing.T) {
	ms := expectSuccess(t, `
	leaf testLeaf {
		type union {
			type uint8;
			type enumeration {
				enum unbounded;
			}
		}
	}`)

	u := ms.Child("testLeaf").Type().(schema.Union)
	if len(u.Typs()) != 2 {
		t.Fatalf("expected 2 union members, got %d", len(u.Typs()))
	}
	if err := u.Validate(nil, "42"); err != nil {
		t.Errorf("42 matches uint8: %s", err)
	}
	if err := u.Validate(nil, "unbounded"); err != nil {
		t.Errorf("unbounded matches the enumeration: %s", err)
	}
	if err := u.Validate(nil, "overbounded"); err == nil {
		t.Errorf("overbounded matches no member")
	}
	if m := u.MatchType(nil, "42"); m == nil {
		t.Errorf("MatchType should find the uint8 member")
	}
}

func TestUnionRequiresMember(t *testing.T) {
	expectFailure(t, `
	leaf testLeaf {
		type union;
	}`,
		"union requires at least one type")
}

func TestRestrictionValidityPerType(t *testing.T) {
	expectFailure(t, `
	leaf testLeaf {
		type uint8 {
			pattern "[a-z]*";
		}
	}`,
		"restriction is not valid for this type")
}

func TestInstanceIdentifierRequireInstance(t *testing.T) {
	ms := expectSuccess(t, `
	leaf strict {
		type instance-identifier;
	}
	leaf lax {
		type instance-identifier {
			require-instance false;
		}
	}`)

	if !ms.Child("strict").Type().(schema.InstanceId).Require() {
		t.Errorf("require-instance defaults to true")
	}
	if ms.Child("lax").Type().(schema.InstanceId).Require() {
		t.Errorf("require-instance false was ignored")
	}
}

func TestBinaryLength(t *testing.T) {
	ms := expectSuccess(t, `
	leaf blob {
		type binary {
			length "1..4";
		}
	}`)

	b := ms.Child("blob").Type().(schema.Binary)
	if err := b.Validate(nil, "ab"); err != nil {
		t.Errorf("ab has valid length: %s", err)
	}
	if err := b.Validate(nil, "abcde"); err == nil {
		t.Errorf("abcde exceeds the length restriction")
	}
}

// Two leaves naming the same typedef without adding restrictions share
// one compiled type.
func TestSharedTypedefCompiledOnce(t *testing.T) {
	ms := expectSuccess(t, `
	typedef port {
		type uint16 {
			range "1..65535";
		}
	}
	leaf src {
		type port;
	}
	leaf dst {
		type port;
	}`)

	if ms.Child("src").Type() != ms.Child("dst").Type() {
		t.Errorf("src and dst should share the pooled compiled type")
	}
}
