// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"encoding/xml"
	"regexp"
	"testing"
)

func builtin(local string) xml.Name {
	return xml.Name{Space: "builtin", Local: local}
}

func anchored(t *testing.T, src string) Matcher {
	t.Helper()
	re, err := regexp.Compile("^(" + src + ")$")
	if err != nil {
		t.Fatalf("bad test pattern %q: %s", src, err)
	}
	return re
}

func TestIntegerRangeValidation(t *testing.T) {
	i := NewInteger(BitWidth8, builtin("int8"),
		[]Rb{{Start: -5, End: 5}, {Start: 10, End: 20}}, "", "", "", false, nil)

	for _, ok := range []string{"-5", "0", "5", "10", "20"} {
		if err := i.Validate(nil, ok); err != nil {
			t.Errorf("%s should be valid: %s", ok, err)
		}
	}
	for _, bad := range []string{"6", "9", "21", "-6", "abc"} {
		if err := i.Validate(nil, bad); err == nil {
			t.Errorf("%s should be invalid", bad)
		}
	}
}

func TestUintegerWidthValidation(t *testing.T) {
	u := NewUinteger(BitWidth8, builtin("uint8"), nil, "", "", "", false, nil)
	if err := u.Validate(nil, "255"); err != nil {
		t.Errorf("255 fits uint8: %s", err)
	}
	if err := u.Validate(nil, "256"); err == nil {
		t.Errorf("256 does not fit uint8")
	}
	if err := u.Validate(nil, "-1"); err == nil {
		t.Errorf("-1 is not unsigned")
	}
}

func TestStringPatternConjunction(t *testing.T) {
	// A value must match every pattern in the list; invert-match negates
	// only the pattern carrying it.
	s := NewString(builtin("string"), []*Pattern{
		{Pattern: "[a-z]+", Matcher: anchored(t, "[a-z]+")},
		{Pattern: "x.*", Matcher: anchored(t, "x.*"), Invert: true},
	}, nil, "", false, nil)

	if err := s.Validate(nil, "abc"); err != nil {
		t.Errorf("abc matches the base and avoids the inverted: %s", err)
	}
	if err := s.Validate(nil, "xyz"); err == nil {
		t.Errorf("xyz trips the inverted pattern")
	}
	if err := s.Validate(nil, "ABC"); err == nil {
		t.Errorf("ABC fails the base pattern")
	}
}

func TestStringLengthValidation(t *testing.T) {
	s := NewString(builtin("string"), nil,
		&Length{Lbs: LbSlice{{Start: 2, End: 3}}}, "", false, nil)

	if err := s.Validate(nil, "ab"); err != nil {
		t.Errorf("ab is long enough: %s", err)
	}
	if err := s.Validate(nil, "a"); err == nil {
		t.Errorf("a is too short")
	}
	if err := s.Validate(nil, "abcd"); err == nil {
		t.Errorf("abcd is too long")
	}
}

func TestBooleanValidation(t *testing.T) {
	b := NewBoolean(builtin("boolean"), "", false, nil)
	if err := b.Validate(nil, "true"); err != nil {
		t.Errorf("true is boolean: %s", err)
	}
	if err := b.Validate(nil, "yes"); err == nil {
		t.Errorf("yes is not boolean")
	}
}

func TestEmptyValidation(t *testing.T) {
	e := NewEmpty(builtin("empty"), "", false, nil)
	if err := e.Validate([]string{"x"}, ""); err != nil {
		t.Errorf("empty value valid for empty type: %s", err)
	}
	if err := e.Validate([]string{"x"}, "boom"); err == nil {
		t.Errorf("empty type accepts no value")
	}
}

func TestEnumerationValidation(t *testing.T) {
	e := NewEnumeration(builtin("enumeration"), []*Enum{
		NewEnum("up", "", "", Current, 0, nil),
		NewEnum("down", "", "", Current, 1, nil),
	}, "", false, nil)

	if err := e.Validate(nil, "up"); err != nil {
		t.Errorf("up is a member: %s", err)
	}
	if err := e.Validate(nil, "sideways"); err == nil {
		t.Errorf("sideways is not a member")
	}
}

func TestBitsValidation(t *testing.T) {
	b := NewBits(builtin("bits"), []*Bit{
		NewBit("zero", "", "", Current, 0, nil),
		NewBit("one", "", "", Current, 1, nil),
	}, "", false, nil)

	if err := b.Validate(nil, "zero one"); err != nil {
		t.Errorf("both labels are defined: %s", err)
	}
	if err := b.Validate(nil, "zero two"); err == nil {
		t.Errorf("two is not a defined bit")
	}
}

func TestDecimal64Validation(t *testing.T) {
	d := NewDecimal64(builtin("decimal64"), 2,
		[]Drb{{Start: 0, End: 1.5}}, "", "", "", false, nil)

	if err := d.Validate(nil, "1.25"); err != nil {
		t.Errorf("1.25 in range: %s", err)
	}
	if err := d.Validate(nil, "1.75"); err == nil {
		t.Errorf("1.75 out of range")
	}
	if err := d.Validate(nil, "pi"); err == nil {
		t.Errorf("pi is not a decimal64")
	}
}

func TestUnionMatchType(t *testing.T) {
	u := NewUnion(builtin("union"), []Type{
		NewUinteger(BitWidth8, builtin("uint8"), nil, "", "", "", false, nil),
		NewEnumeration(builtin("enumeration"), []*Enum{
			NewEnum("auto", "", "", Current, 0, nil),
		}, "", false, nil),
	}, "", false, nil)

	if m := u.MatchType(nil, "7"); m == nil {
		t.Fatalf("7 should match the uint8 member")
	} else if _, ok := m.(Uinteger); !ok {
		t.Errorf("wrong member matched: %T", m)
	}
	if m := u.MatchType(nil, "auto"); m == nil {
		t.Fatalf("auto should match the enumeration member")
	}
	if m := u.MatchType(nil, "none"); m != nil {
		t.Errorf("nothing should match none")
	}
}

func TestIdentityrefValidation(t *testing.T) {
	base := NewIdentity("mod", "urn:mod", "alg", "", "", Current, nil)
	aes := NewIdentity("mod", "urn:mod", "aes", "", "", Current, nil)
	base.AddDerived(aes)

	iref := NewIdentityref(builtin("identityref"),
		[]*Identity{base}, base.Derived, "", false, nil)

	if err := iref.Validate(nil, "aes"); err != nil {
		t.Errorf("aes is permissible: %s", err)
	}
	if err := iref.Validate(nil, "mod:aes"); err != nil {
		t.Errorf("prefixed form is permissible: %s", err)
	}
	if err := iref.Validate(nil, "des"); err == nil {
		t.Errorf("des was never defined")
	}
}

func TestIdentityDerivedSetDeduplicates(t *testing.T) {
	base := NewIdentity("mod", "urn:mod", "alg", "", "", Current, nil)
	aes := NewIdentity("mod", "urn:mod", "aes", "", "", Current, nil)

	if !base.AddDerived(aes) {
		t.Errorf("first add should report a change")
	}
	if base.AddDerived(aes) {
		t.Errorf("second add should be a no-op")
	}
	if len(base.Derived) != 1 {
		t.Errorf("derived set has duplicates: %d", len(base.Derived))
	}
}

func TestLeafrefDelegatesToTarget(t *testing.T) {
	lr := NewLeafref(builtin("leafref"), nil, true, "", false, nil)
	if err := lr.Validate(nil, "anything"); err != nil {
		t.Errorf("unresolved leafref validates nothing: %s", err)
	}

	lr.Resolve(NewUinteger(BitWidth8, builtin("uint8"), nil, "", "", "", false, nil))
	if err := lr.Validate(nil, "12"); err != nil {
		t.Errorf("12 fits the resolved target: %s", err)
	}
	if err := lr.Validate(nil, "boom"); err == nil {
		t.Errorf("boom does not fit the resolved target")
	}
}

func TestTypeDefaults(t *testing.T) {
	with := NewUinteger(BitWidth8, builtin("uint8"), nil, "", "", "42", true, nil)
	if def, ok := with.Default(); !ok || def != "42" {
		t.Errorf("default lost: %q %v", def, ok)
	}
	without := NewUinteger(BitWidth8, builtin("uint8"), nil, "", "", "", false, nil)
	if _, ok := without.Default(); ok {
		t.Errorf("phantom default")
	}
}
