// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package parse

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type HasArgument interface {
	Argument() Argument
	ArgBool() bool
	ArgDate() string
	ArgDescendantSchema() []xml.Name
	ArgFractionDigits() int
	ArgIdRef() xml.Name
	ArgId() string
	ArgInt() int
	ArgKey() []string
	ArgLength() []LengthArgBdry
	ArgMax() uint
	ArgModifier() string
	ArgOrdBy() string
	ArgPattern() string
	ArgPrefix() string
	ArgRange() RangeArgBdrySlice
	ArgSchema() []xml.Name
	ArgStatus() string
	ArgString() string
	ArgUint() uint
	ArgUnique() [][]xml.Name
	ArgUri() string
	ArgWhen() string
	ArgMust() string
	ArgPath() string
	ArgYangVersion() string

	checkArgument() error
}

type hasArgument struct {
	arg Argument
}

func (h *hasArgument) Argument() Argument   { return h.arg }
func (h *hasArgument) checkArgument() error { return h.arg.Parse() }

func (h *hasArgument) ArgStatus() string               { return h.arg.(*StatusArg).String() }
func (h *hasArgument) ArgString() string               { return h.arg.(StringArg).String() }
func (h *hasArgument) ArgPrefix() string               { return h.arg.(*PrefixArg).String() }
func (h *hasArgument) ArgUri() string                  { return h.arg.(*UriArg).String() }
func (h *hasArgument) ArgDate() string                 { return h.arg.(*DateArg).String() }
func (h *hasArgument) ArgMax() uint                    { return h.arg.(*MaxValueArg).i.i }
func (h *hasArgument) ArgSchema() []xml.Name           { return h.arg.(SchemaArg).Path() }
func (h *hasArgument) ArgDescendantSchema() []xml.Name { return h.arg.(*DescendantSchemaArg).path }
func (h *hasArgument) ArgInt() int                     { return h.arg.(*IntArg).i }
func (h *hasArgument) ArgUint() uint                   { return h.arg.(*UintArg).i }
func (h *hasArgument) ArgKey() []string                { return h.arg.(*KeyArg).keys }
func (h *hasArgument) ArgOrdBy() string                { return h.arg.(*OrdByArg).String() }
func (h *hasArgument) ArgId() string                   { return h.arg.(*IdArg).String() }
func (h *hasArgument) ArgIdRef() xml.Name              { return h.arg.(*IdRefArg).name }
func (h *hasArgument) ArgBool() bool                   { return h.arg.(*BoolArg).b }
func (h *hasArgument) ArgUnique() [][]xml.Name         { return h.arg.(*UniqueArg).paths }
func (h *hasArgument) ArgPattern() string              { return h.arg.(*PatternArg).String() }
func (h *hasArgument) ArgModifier() string             { return h.arg.(*ModifierArg).String() }
func (h *hasArgument) ArgRange() RangeArgBdrySlice     { return h.arg.(*RangeArg).rbs }
func (h *hasArgument) ArgLength() []LengthArgBdry      { return h.arg.(*LengthArg).lbs }
func (h *hasArgument) ArgFractionDigits() int          { return h.arg.(*FractionDigitsArg).fdigits }
func (h *hasArgument) ArgWhen() string                 { return h.arg.(StringArg).String() }
func (h *hasArgument) ArgMust() string                 { return h.arg.(StringArg).String() }
func (h *hasArgument) ArgPath() string                 { return h.arg.(StringArg).String() }
func (h *hasArgument) ArgYangVersion() string          { return h.arg.(*YangVersionArg).String() }

type Argument interface {
	String() string
	Parse() error
	argument()
}

type arg string

func (a arg) String() string { return string(a) }
func (a arg) Parse() error   { return nil }
func (arg) argument()        {}

type StringArg struct {
	arg
}

type IdArg struct {
	arg
}

// Parse validates an identifier per RFC 7950 section 14:
//
//	;; An identifier MUST NOT start with (('X'|'x') ('M'|'m') ('L'|'l'))
//	identifier = (ALPHA / "_") *(ALPHA / DIGIT / "_" / "-" / ".")
func (a *IdArg) Parse() error {
	str := string(a.arg)
	errInval := errors.New("invalid identifier: " + str)

	if len(str) == 0 {
		return errInval
	}
	if len(str) >= 3 && strings.EqualFold(str[:3], "xml") {
		return errors.New("invalid identifier, not allowed to start with xml: " + str)
	}
	var r rune = rune(str[0])
	if !(r == '_' || isAlphaNumeric(r)) || (r >= '0' && r <= '9') {
		return errInval
	}
	for i := 1; i < len(str); i++ {
		var r rune = rune(str[i])
		if !isAlphaNumeric(r) && r != '-' && r != '.' {
			return errInval
		}
	}
	return nil
}

type PrefixArg struct {
	arg
	id *IdArg
}

func (a *PrefixArg) Parse() error {
	a.id = &IdArg{a.arg}
	if err := a.id.Parse(); err != nil {
		return errors.New("prefix: " + err.Error())
	}
	return nil
}

type IdRefArg struct {
	arg
	pfx  *PrefixArg
	id   *IdArg
	name xml.Name
}

func (a *IdRefArg) Parse() error {
	//[prefix ":"] id
	parts := strings.Split(string(a.arg), ":")

	switch len(parts) {
	case 1:
		a.id = &IdArg{arg: arg(parts[0])}
		if err := a.id.Parse(); err != nil {
			return errors.New("id-ref: " + err.Error())
		}
	case 2:
		a.pfx = &PrefixArg{arg: arg(parts[0])}
		if err := a.pfx.Parse(); err != nil {
			return errors.New("id-ref: " + err.Error())
		}
		a.id = &IdArg{arg(parts[1])}
		if err := a.id.Parse(); err != nil {
			return err
		}
	default:
		return errors.New("invalid identifier reference")
	}
	if a.pfx != nil {
		a.name.Space = a.pfx.String()
	}
	a.name.Local = a.id.String()
	return nil
}

type UriArg struct {
	arg
	url *url.URL
}

func (a *UriArg) Parse() error {
	u, e := url.Parse(string(a.arg))
	if e != nil {
		return e
	}
	a.url = u
	return nil
}

type BoolArg struct {
	arg
	b bool
}

func (a *BoolArg) Parse() error {
	switch string(a.arg) {
	case "true":
		a.b = true
	case "false":
		a.b = false
	default:
		return errors.New("invalid boolean argument: " + string(a.arg))
	}
	return nil
}

type DateArg struct {
	arg
	year, month, day int
}

func (a *DateArg) Parse() error {
	//4DIGIT "-" 2DIGIT "-" 2DIGIT
	var err error
	str := string(a.arg)
	errInval := errors.New("invalid date: " + str)

	if len(str) != 10 || str[4] != '-' || str[7] != '-' {
		return errInval
	}
	if a.year, err = strconv.Atoi(str[:4]); err != nil {
		return errInval
	}
	if a.month, err = strconv.Atoi(str[5:7]); err != nil {
		return errInval
	}
	if a.day, err = strconv.Atoi(str[8:]); err != nil {
		return errInval
	}
	if a.month < 1 || a.month > 12 || a.day < 1 || a.day > 31 {
		return errInval
	}
	return nil
}

type YangVersionArg struct {
	arg
}

func (a *YangVersionArg) Parse() error {
	if a.arg == "1" || a.arg == "1.1" {
		return nil
	}
	return errors.New("invalid yang-version: " + string(a.arg))
}

type EmptyArg struct {
	arg
}

func (a EmptyArg) Parse() error {
	if a.arg == "" {
		return nil
	}
	return errors.New("invalid argument: " + string(a.arg))
}

type KeyArg struct {
	arg
	keys []string
}

func (a *KeyArg) split() []string {
	var str = string(a.arg)
	var start, pos int
	strs := make([]string, 0)
	for pos = 0; pos < len(str); pos++ {
		if isSep(rune(str[pos])) {
			s := str[start:pos]
			if len(s) > 0 {
				strs = append(strs, s)
			}
			start = pos + 1
		}
	}
	s := str[start:pos]
	if len(s) > 0 {
		strs = append(strs, s)
	}
	return strs
}

func (a *KeyArg) Parse() error {
	strs := a.split()
	if len(strs) == 0 {
		return errors.New("invalid key argument: " + string(a.arg))
	}
	a.keys = strs
	return nil
}

type UintArg struct {
	arg
	i uint
}

func (a *UintArg) Parse() error {
	i, e := strconv.ParseUint(string(a.arg), 0, 32)
	if e != nil {
		return e
	}
	a.i = uint(i)
	return nil
}

type IntArg struct {
	arg
	i int
}

func (a *IntArg) Parse() error {
	i, e := strconv.ParseInt(string(a.arg), 0, 32)
	if e != nil {
		return e
	}
	a.i = int(i)
	return nil
}

type StatusArg struct {
	arg
}

func (a *StatusArg) Parse() error {
	str := string(a.arg)
	if str == "current" || str == "obsolete" || str == "deprecated" {
		return nil
	}
	return errors.New("invalid status argument: " + string(a.arg))
}

func (a *StatusArg) String() string {
	return string(a.arg)
}

// PatternArg holds the regex source verbatim. Syntax validation and
// compilation are the schema compiler's concern so that typedef chains can
// share one compiled form; the parser only carries the text through.
type PatternArg struct {
	arg
}

func (a *PatternArg) Parse() error {
	if len(a.arg) == 0 {
		return errors.New("empty pattern")
	}
	return nil
}

type ModifierArg struct {
	arg
}

func (a *ModifierArg) Parse() error {
	if a.arg == "invert-match" {
		return nil
	}
	return errors.New("invalid modifier argument: " + string(a.arg))
}

type OrdByArg struct {
	arg
}

func (a *OrdByArg) Parse() error {
	str := string(a.arg)
	if str == "system" || str == "user" {
		return nil
	}
	return errors.New("invalid argument: " + string(a.arg))
}

type SchemaArg interface {
	Argument
	Path() []xml.Name
}

type AbsoluteSchemaArg struct {
	arg
	path []xml.Name
}

func (a *AbsoluteSchemaArg) Parse() error {
	strs := strings.Split(string(a.arg), "/")
	if len(strs) < 2 {
		return errors.New("invalid argument: " + string(a.arg))
	}
	if strs[0] != "" {
		return errors.New("invalid argument: " + string(a.arg) + " expected root")
	}
	path, err := parseSchemaSteps(strs[1:])
	if err != nil {
		return err
	}
	a.path = path
	return nil
}

func (a *AbsoluteSchemaArg) Path() []xml.Name {
	return a.path
}

type DescendantSchemaArg struct {
	arg
	path []xml.Name
}

func (a *DescendantSchemaArg) Parse() error {
	strs := strings.Split(string(a.arg), "/")
	if len(strs) < 1 {
		return errors.New("invalid argument: " + string(a.arg))
	}
	if strs[0] == "" {
		return errors.New("invalid argument: " + string(a.arg) + " unexpected root")
	}
	path, err := parseSchemaSteps(strs)
	if err != nil {
		return err
	}
	a.path = path
	return nil
}

func (a *DescendantSchemaArg) Path() []xml.Name {
	return a.path
}

func parseSchemaSteps(strs []string) ([]xml.Name, error) {
	path := make([]xml.Name, 0, len(strs))
	for _, v := range strs {
		id := &IdRefArg{arg: arg(v)}
		if err := id.Parse(); err != nil {
			return nil, err
		}
		path = append(path, id.name)
	}
	return path, nil
}

type MaxValueArg struct {
	arg
	i *UintArg
}

func (a *MaxValueArg) Parse() error {
	var i *UintArg
	if a.arg == "unbounded" {
		i = &UintArg{i: ^uint(0)}
	} else {
		i = &UintArg{arg: a.arg}
		if e := i.Parse(); e != nil {
			return e
		}
	}
	a.i = i
	return nil
}

type RangeArgBdry struct {
	Min, Max   bool
	Start, End string
}

type RangeArgBdrySlice []RangeArgBdry

type RangeArg struct {
	arg
	rbs RangeArgBdrySlice
}

func (a *RangeArg) Parse() error {
	str := collapse(string(a.arg))
	errInval := errors.New("invalid argument: " + str)

	/* range-part *(optsep "|" optsep range-part) */
	rparts := strings.Split(str, "|")
	a.rbs = make(RangeArgBdrySlice, 0, len(rparts))
	for _, v := range rparts {
		/* range-boundary [optsep ".." optsep range-boundary] */
		var r RangeArgBdry
		rbs := strings.Split(v, "..")
		switch len(rbs) {
		case 1:
			switch rbs[0] {
			case "max":
				r.Max = true
			case "min":
				r.Min = true
			default:
				r.Start = rbs[0]
				r.End = rbs[0]
			}
		case 2:
			switch rbs[0] {
			case "min":
				r.Min = true
			default:
				r.Start = rbs[0]
			}
			switch rbs[1] {
			case "max":
				r.Max = true
			default:
				r.End = rbs[1]
			}
		default:
			return errInval
		}
		a.rbs = append(a.rbs, r)
	}
	return nil
}

type LengthArgBdry struct {
	Min, Max   bool
	Start, End uint64
}

type LengthArg struct {
	arg
	lbs []LengthArgBdry
}

func (a *LengthArg) Parse() error {
	str := collapse(string(a.arg))
	errInval := errors.New("invalid argument: " + str)

	/* length-part *(optsep "|" optsep length-part) */
	lparts := strings.Split(str, "|")
	a.lbs = make([]LengthArgBdry, 0, len(lparts))
	for _, v := range lparts {
		/* length-boundary [optsep ".." optsep length-boundary] */
		var l LengthArgBdry
		bs := strings.Split(v, "..")
		switch len(bs) {
		case 1:
			switch bs[0] {
			case "max":
				l.Max = true
			case "min":
				l.Min = true
			default:
				i, e := strconv.ParseUint(bs[0], 0, 64)
				if e != nil {
					return e
				}
				l.Start = i
				l.End = i
			}
		case 2:
			switch bs[0] {
			case "min":
				l.Min = true
			default:
				i, e := strconv.ParseUint(bs[0], 0, 64)
				if e != nil {
					return e
				}
				l.Start = i
			}
			switch bs[1] {
			case "max":
				l.Max = true
			default:
				i, e := strconv.ParseUint(bs[1], 0, 64)
				if e != nil {
					return e
				}
				l.End = i
			}
		default:
			return errInval
		}
		a.lbs = append(a.lbs, l)
	}
	return nil
}

func collapse(str string) string {
	str = strings.Replace(str, " ", "", -1)
	str = strings.Replace(str, "\t", "", -1)
	str = strings.Replace(str, "\n", "", -1)
	return str
}

type UniqueArg struct {
	arg
	paths [][]xml.Name
}

func (a *UniqueArg) Parse() error {
	var str = string(a.arg)
	var start, pos int
	paths := make([][]xml.Name, 0)
	add := func(s string) error {
		if len(s) == 0 {
			return nil
		}
		d := &DescendantSchemaArg{arg: arg(s)}
		if err := d.Parse(); err != nil {
			return err
		}
		paths = append(paths, d.path)
		return nil
	}
	for pos = 0; pos < len(str); pos++ {
		if isSep(rune(str[pos])) {
			if err := add(str[start:pos]); err != nil {
				return err
			}
			start = pos + 1
		}
	}
	if err := add(str[start:pos]); err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("invalid argument: " + string(a.arg))
	}
	a.paths = paths
	return nil
}

type FractionDigitsArg struct {
	arg
	fdigits int
}

func (a *FractionDigitsArg) Parse() error {
	var err error
	str := string(a.arg)
	errInval := errors.New("invalid argument: " + str)
	if len(str) < 1 || len(str) > 2 {
		return errInval
	}
	if a.fdigits, err = strconv.Atoi(str); err != nil {
		return errors.New(errInval.Error() + ": " + err.Error())
	}
	if a.fdigits < 1 || a.fdigits > 18 {
		return errInval
	}
	return nil
}

func getArgByType(ntype NodeType, a string) (out Argument) {
	switch ntype {
	// String arguments
	case NodeUnknown, NodeErrorMessage, NodeReference, NodeDefault,
		NodePresence, NodeWhen, NodeErrorAppTag, NodeEnum, NodeMust,
		NodeContact, NodeDescription, NodeOrganization, NodeUnits, NodePath,
		NodeIfFeature:
		return StringArg{arg(a)}

	// Uint arguments
	case NodePosition, NodeMinElements:
		return &UintArg{arg: arg(a)}

	// Int arguments
	case NodeValue:
		return &IntArg{arg: arg(a)}

	case NodeMaxElements:
		return &MaxValueArg{arg: arg(a)}

	// Boolean arguments
	case NodeYinElement, NodeRequireInstance, NodeConfig, NodeMandatory:
		return &BoolArg{arg: arg(a)}

	// Identifier arguments
	case NodeGrouping, NodeList, NodeChoice, NodeCase, NodeAnyxml, NodeAnydata,
		NodeContainer, NodeLeaf, NodeLeafList, NodeExtension, NodeArgument,
		NodeIdentity, NodeFeature, NodeRpc, NodeAction, NodeNotification,
		NodeBit, NodeTypedef, NodeModule, NodeSubmodule,
		NodeImport, NodeInclude, NodeBelongsTo:
		return &IdArg{arg: arg(a)}

	// Identifier reference arguments
	case NodeBase, NodeUses, NodeTyp:
		return &IdRefArg{arg: arg(a)}

	// Date arguments
	case NodeRevision, NodeRevisionDate:
		return &DateArg{arg: arg(a)}

	// Empty arguments
	case NodeInput, NodeOutput:
		return &EmptyArg{arg: arg(a)}

	// Specialist arguments
	case NodeYangVersion:
		return &YangVersionArg{arg: arg(a)}
	case NodeNamespace:
		return &UriArg{arg: arg(a)}
	case NodeKey:
		return &KeyArg{arg: arg(a)}
	case NodeStatus:
		return &StatusArg{arg: arg(a)}
	case NodeOrderedBy:
		return &OrdByArg{arg: arg(a)}
	case NodeRefine:
		return &DescendantSchemaArg{arg: arg(a)}
	case NodeUnique:
		return &UniqueArg{arg: arg(a)}
	case NodePattern:
		return &PatternArg{arg: arg(a)}
	case NodeModifier:
		return &ModifierArg{arg: arg(a)}
	case NodePrefix:
		return &PrefixArg{arg: arg(a)}
	case NodeAugment:
		var sa SchemaArg
		sa = &AbsoluteSchemaArg{arg: arg(a)}
		if err := sa.Parse(); err != nil {
			sa = &DescendantSchemaArg{arg: arg(a)}
		}
		return sa
	case NodeRange:
		return &RangeArg{arg: arg(a)}
	case NodeLength:
		return &LengthArg{arg: arg(a)}
	case NodeFractionDigits:
		return &FractionDigitsArg{arg: arg(a)}
	default:
		panic(fmt.Errorf("unexpected statement type %s", nodeNames[ntype]))
	}
}
