// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/iptecharch/yang-compiler/parse"
	"github.com/iptecharch/yang-compiler/schema"
	"github.com/iptecharch/yang-compiler/xpath"
)

const emptyDefault = ""

type SchemaType int

const (
	SchemaBool SchemaType = iota
	SchemaEmpty
	SchemaEnumeration
	SchemaIdentity
	SchemaInstanceId
	SchemaNumber
	SchemaDecimal64
	SchemaString
	SchemaUnion
	SchemaBits
	SchemaLeafRef
	SchemaBinary
)

var validRestrictionsType = map[SchemaType]map[parse.NodeType]struct{}{
	SchemaBool: {
		// None allowed
	},
	SchemaEmpty: {
		// None allowed
	},
	SchemaEnumeration: {
		parse.NodeEnum: struct{}{},
	},
	SchemaIdentity: {
		parse.NodeBase: struct{}{},
	},
	SchemaInstanceId: {
		parse.NodeRequireInstance: struct{}{},
	},
	SchemaNumber: {
		parse.NodeRange: struct{}{},
	},
	SchemaDecimal64: {
		parse.NodeFractionDigits: struct{}{},
		parse.NodeRange:          struct{}{},
	},
	SchemaString: {
		parse.NodeLength:  struct{}{},
		parse.NodePattern: struct{}{},
	},
	SchemaUnion: {
		parse.NodeTyp: struct{}{},
	},
	SchemaBits: {
		parse.NodeBit: struct{}{},
	},
	SchemaLeafRef: {
		parse.NodePath:            struct{}{},
		parse.NodeRequireInstance: struct{}{},
	},
	SchemaBinary: {
		parse.NodeLength: struct{}{},
	},
}

// typePool deduplicates compiled types across the working set. A node
// whose type statement names a typedef and adds nothing gets the pooled
// compiled form back; the reference count records the sharing.
type typePool struct {
	entries map[parse.Node]*typeEntry
}

type typeEntry struct {
	typ   schema.Type
	units string
	refs  int
}

func newTypePool() *typePool {
	return &typePool{entries: make(map[parse.Node]*typeEntry)}
}

func (p *typePool) lookup(td parse.Node) (schema.Type, string, bool) {
	e, ok := p.entries[td]
	if !ok {
		return nil, "", false
	}
	e.refs++
	return e.typ, e.units, true
}

func (p *typePool) store(td parse.Node, t schema.Type, units string) {
	p.entries[td] = &typeEntry{typ: t, units: units, refs: 1}
}

func (p *typePool) refs(td parse.Node) int {
	if e, ok := p.entries[td]; ok {
		return e.refs
	}
	return 0
}

// First part of range boundary validation. Create our range from the
// parsed range passed in, referring to the base_rb min/max (which may be
// the default if we aren't refining / changing via typedef). Each
// individual range we parse must sit within a range in the base set,
// allowing for two contiguous base ranges (whole numbers only, so not
// decimal64).
func (c *Compiler) createRangeBdry(
	node parse.Node,
	baseRb schema.RangeBoundarySlicer,
	parsedRbs parse.RangeArgBdrySlice,
) schema.RangeBoundarySlicer {

	var err error
	var baseMin, baseMax interface{}
	baseMin = baseRb.GetStart(0)
	baseMax = baseRb.GetEnd(baseRb.Len() - 1)

	var start, end interface{}
	rangeBdrySlice := baseRb.Create(0, len(parsedRbs))
	for _, parsedRangeBdry := range parsedRbs {
		if parsedRangeBdry.Min {
			start = baseMin
		} else {
			start, err = rangeBdrySlice.Parse(parsedRangeBdry.Start, 0, 64)
			if err != nil {
				c.error(node, err)
			}
			if rangeBdrySlice.LessThan(start, baseMin) {
				c.error(node, errors.New(
					"derived type range must be restrictive"))
			}
		}
		if parsedRangeBdry.Max {
			end = baseMax
		} else {
			end, err = rangeBdrySlice.Parse(parsedRangeBdry.End, 0, 64)
			if err != nil {
				c.error(node, err)
			}
			if rangeBdrySlice.GreaterThan(end, baseMax) {
				c.error(node, errors.New(
					"derived type range must be restrictive"))
			}
		}

		// Check start and end are within each subrange of the base,
		// allowing int and uint types to span 2 contiguous ranges.
		var rangeMin, rangeMax interface{}
		var curStart, curEnd interface{}
		for index := 0; index < baseRb.Len(); index++ {
			curStart = baseRb.GetStart(index)
			curEnd = baseRb.GetEnd(index)
			// Only update rangeMin if the new range is not contiguous.
			if (index == 0) || !rangeBdrySlice.Contiguous(rangeMax, curStart) {
				rangeMin = curStart
			}
			rangeMax = curEnd

			if !rangeBdrySlice.LessThan(start, rangeMin) &&
				!rangeBdrySlice.GreaterThan(end, rangeMax) {
				// Start is big enough and end small enough. Start could
				// exceed end; the validation below catches that.
				break
			}

			if rangeBdrySlice.LessThan(start, rangeMin) {
				// The base has been validated already, so no match here
				// means a less restrictive range.
				c.error(node, errors.New("derived range must be restrictive"))
			}
		}
		rangeBdrySlice = rangeBdrySlice.Append(start, end)
	}

	c.validateRangeBoundaries(rangeBdrySlice, node)
	return rangeBdrySlice
}

// Sets of range boundaries must not overlap, and each range must start
// above the end of the previous one.
func (c *Compiler) validateRangeBoundaries(
	ranges schema.RangeBoundarySlicer,
	node parse.Node,
) {
	if ranges.LessThan(ranges.GetEnd(0), ranges.GetStart(0)) {
		c.error(node, errors.New(
			"range end must be greater than or equal to range start"))
	}
	for i := 1; i < ranges.Len(); i++ {
		if ranges.LessThan(ranges.GetEnd(i), ranges.GetStart(i)) {
			c.error(node, errors.New(
				"range end must be greater than or equal to range start"))
		}
		if ranges.GreaterThan(ranges.GetStart(i-1), ranges.GetStart(i)) {
			c.error(node, fmt.Errorf(
				"ranges must be in ascending order: %s then %s",
				ranges.String(i-1), ranges.String(i)))
		}
		if !ranges.LessThan(ranges.GetEnd(i-1), ranges.GetStart(i)) {
			c.error(node, errors.New("ranges must be disjoint"))
		}
	}
}

func (c *Compiler) validateRestrictions(n parse.Node, schemaType SchemaType) {
	var msg string

	switch schemaType {
	case SchemaUnion:
		msg = "cannot restrict %s of a union type - restrictions must be applied to members instead"
	default:
		msg = "%s restriction is not valid for this type"
	}

	supp := validRestrictionsType[schemaType]

	for _, ch := range n.Children() {
		if !ch.Type().IsTypeRestriction() {
			continue
		}
		if _, ok := supp[ch.Type()]; !ok {
			c.error(n, fmt.Errorf(msg, ch.Statement()))
		}
	}
}

func (c *Compiler) getDefault(base schema.Type, def string, hasDef bool) (string, bool) {
	if base == nil || hasDef {
		return def, hasDef
	}
	return base.Default()
}

func (c *Compiler) makeBoolean(
	tname xml.Name,
	node parse.Node,
	base schema.Boolean,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaBool)

	if base == nil {
		base = schema.NewBoolean(tname, "", false, nil)
	}

	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewBoolean(tname, def, hasDef, c.extensionInstances(node))
}

func (c *Compiler) makeEmpty(
	tname xml.Name,
	node parse.Node,
	base schema.Empty,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaEmpty)

	if base == nil {
		base = schema.NewEmpty(tname, "", false, nil)
	}

	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewEmpty(tname, def, hasDef, c.extensionInstances(node))
}

func (c *Compiler) makeDecimal64(
	name xml.Name,
	node parse.Node,
	base schema.Decimal64,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaDecimal64)

	fdStmt := node.ChildByType(parse.NodeFractionDigits)
	if base == nil {
		fd := schema.Fracdigit(node.FracDigit())
		if fd == 0 {
			c.error(node, errors.New("missing fraction-digits"))
		}
		base = schema.NewDecimal64(name, fd, nil, "", "", "", false, nil)
	} else if fdStmt != nil {
		// fraction-digits is set exactly once, on the base of the chain
		c.error(node, errors.New(
			"fraction-digits cannot be changed in a derived type"))
	}

	fd := base.Fd()
	rbs, msg, appTag := c.getRangeBoundary(base, node)
	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewDecimal64(name, fd, rbs.(schema.DrbSlice),
		msg, appTag, def, hasDef, c.extensionInstances(node))
}

// getEnums resolves the enum table of one link in the typedef chain. A
// derived type may select a subset of the inherited labels (YANG 1.1);
// an explicit value is only accepted when identical to the inherited one.
func (c *Compiler) getEnums(base schema.Enumeration, node parse.Node) []*schema.Enum {

	stmts := node.ChildrenByType(parse.NodeEnum)
	if base != nil {
		if len(stmts) == 0 {
			return base.Enums()
		}
		out := make([]*schema.Enum, 0, len(stmts))
		for _, en := range stmts {
			var inheritedEnum *schema.Enum
			for _, be := range base.Enums() {
				if be.Val == en.ArgString() {
					inheritedEnum = be
					break
				}
			}
			if inheritedEnum == nil {
				c.error(node, fmt.Errorf(
					"enum %s not defined in base type", en.ArgString()))
			}
			if en.HasValue() && en.Value() != inheritedEnum.Value {
				c.error(node, fmt.Errorf(
					"enum %s value %d does not match inherited value %d",
					en.ArgString(), en.Value(), inheritedEnum.Value))
			}
			out = append(out, schema.NewEnum(en.ArgString(), en.Desc(), en.Ref(),
				c.getStatus(en, schema.Current), inheritedEnum.Value,
				c.extensionInstances(en)))
		}
		return out
	}

	if len(stmts) == 0 {
		c.error(node, errors.New("enumeration requires at least one enum"))
	}

	enums := make([]*schema.Enum, 0, len(stmts))
	nextValue := 0
	for _, en := range stmts {
		value := nextValue
		if en.HasValue() {
			value = en.Value()
		}
		for _, existing := range enums {
			if existing.Val == en.ArgString() {
				c.error(en, fmt.Errorf("duplicate enum %s", en.ArgString()))
			}
			if existing.Value == value {
				c.error(en, fmt.Errorf("duplicate enum value %d", value))
			}
		}
		if value >= nextValue {
			nextValue = value + 1
		}
		enums = append(enums, schema.NewEnum(en.ArgString(), en.Desc(), en.Ref(),
			c.getStatus(en, schema.Current), value,
			c.extensionInstances(en)))
	}

	return enums
}

func (c *Compiler) makeEnumeration(
	name xml.Name,
	node parse.Node,
	base schema.Enumeration,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaEnumeration)

	enums := c.getEnums(base, node)
	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewEnumeration(name, enums, def, hasDef,
		c.extensionInstances(node))
}

// getBits resolves the bit table of one chain link, with the same subset
// selection rules as enumerations. Bits without an explicit position
// statement are auto-assigned one more than the highest position used
// so far.
func (c *Compiler) getBits(base schema.Bits, node parse.Node) []*schema.Bit {

	stmts := node.ChildrenByType(parse.NodeBit)
	if base != nil {
		if len(stmts) == 0 {
			return base.Bits()
		}
		out := make([]*schema.Bit, 0, len(stmts))
		for _, b := range stmts {
			var inheritedBit *schema.Bit
			for _, bb := range base.Bits() {
				if bb.Name == b.Name() {
					inheritedBit = bb
					break
				}
			}
			if inheritedBit == nil {
				c.error(node, fmt.Errorf(
					"bit %s not defined in base type", b.Name()))
			}
			if b.HasPosition() && uint32(b.Position()) != inheritedBit.Pos {
				c.error(node, fmt.Errorf(
					"bit %s position %d does not match inherited position %d",
					b.Name(), b.Position(), inheritedBit.Pos))
			}
			out = append(out, schema.NewBit(b.Name(), b.Desc(), b.Ref(),
				c.getStatus(b, schema.Current), inheritedBit.Pos,
				c.extensionInstances(b)))
		}
		return out
	}

	if len(stmts) == 0 {
		c.error(node, errors.New("bits requires at least one bit"))
	}

	bits := make([]*schema.Bit, 0, len(stmts))
	var nextPos uint32
	for _, b := range stmts {
		pos := nextPos
		if b.HasPosition() {
			pos = uint32(b.Position())
		}
		for _, existing := range bits {
			if existing.Name == b.Name() {
				c.error(b, fmt.Errorf("duplicate bit %s", b.Name()))
			}
			if existing.Pos == pos {
				c.error(b, fmt.Errorf("duplicate bit position %d", pos))
			}
		}
		if pos >= nextPos {
			nextPos = pos + 1
		}
		bits = append(bits, schema.NewBit(b.Name(), b.Desc(), b.Ref(),
			c.getStatus(b, schema.Current), pos,
			c.extensionInstances(b)))
	}

	return bits
}

func (c *Compiler) makeBits(
	name xml.Name,
	node parse.Node,
	base schema.Bits,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaBits)

	bs := c.getBits(base, node)
	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewBits(name, bs, def, hasDef, c.extensionInstances(node))
}

// getIdentityBases resolves the base statements of an identityref,
// unioning them with any bases declared deeper in the typedef chain.
func (c *Compiler) getIdentityBases(
	base schema.Identityref,
	cfgNode, node parse.Node,
	parentStatus schema.Status,
) []*schema.Identity {

	baseStmts := node.ChildrenByType(parse.NodeBase)

	var bases []*schema.Identity
	if base != nil {
		bases = append(bases, base.Bases()...)
	}
	if base == nil && len(baseStmts) == 0 {
		c.error(node, errors.New("cannot use identityref without a base"))
	}

	mod := node.Root()
	for _, baseStmt := range baseStmts {
		tm, ident := c.getModuleAndReference(
			mod, baseStmt, baseStmt.Argument().String(), parse.NodeIdentity)
		id, ok := c.schemaIdentities[tm.Name()+":"+ident.Name()]
		if !ok {
			c.error(node, newCompileError(ErrNotFound, node,
				"unknown base identity "+ident.Name()))
		}
		bases = append(bases, id)
	}
	return bases
}

func (c *Compiler) makeIdentityRef(
	name xml.Name,
	cfgNode parse.Node,
	node parse.Node,
	base schema.Identityref,
	parentStatus schema.Status,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaIdentity)

	bases := c.getIdentityBases(base, cfgNode, node, parentStatus)
	def, hasDef = c.getDefault(base, def, hasDef)

	iref := schema.NewIdentityref(name, bases, nil, def, hasDef,
		c.extensionInstances(node))
	// The permissible identity set is the derived-from closure of the
	// bases; the closure is complete only after the deferred pass.
	c.deferIdentityRef(node, iref.(schema.Identityref))
	return iref
}

func (c *Compiler) getRequire(base schema.Type, node parse.Node) bool {
	if reqNode := node.ChildByType(parse.NodeRequireInstance); reqNode != nil {
		return reqNode.ArgBool()
	}
	switch b := base.(type) {
	case schema.InstanceId:
		return b.Require()
	case schema.Leafref:
		return b.Require()
	}
	// require-instance defaults to true
	return true
}

func (c *Compiler) makeInstanceId(
	name xml.Name,
	node parse.Node,
	base schema.InstanceId,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaInstanceId)

	var baseType schema.Type
	if base != nil {
		baseType = base
	}
	require := c.getRequire(baseType, node)
	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewInstanceId(name, require, def, hasDef,
		c.extensionInstances(node))
}

func (c *Compiler) getPath(base schema.Leafref, node parse.Node) *xpath.LeafrefMachine {
	path := node.Path()
	if base != nil {
		if path != "" {
			// path is declared exactly once in a typedef chain
			c.error(node, errors.New("cannot restrict leafref path"))
		}
		return base.Mach()
	}
	if path == "" {
		c.error(node, errors.New("missing path"))
	}

	mapFn := func(prefix string) (string, error) {
		return node.YangPrefixToNamespace(prefix, c.modules)
	}
	mach, err := xpath.NewLeafrefMachine(path, mapFn,
		extractFileAndLineFromErrorContext(node))
	if err != nil {
		c.error(node, err)
	}
	return mach
}

func (c *Compiler) makeLeafref(
	node parse.Node,
	name xml.Name,
	base schema.Leafref,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaLeafRef)

	mach := c.getPath(base, node)
	var baseType schema.Type
	if base != nil {
		baseType = base
	}
	require := c.getRequire(baseType, node)
	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewLeafref(name, mach, require, def, hasDef,
		c.extensionInstances(node))
}

func (c *Compiler) getBitSize(base schema.Number, node parse.Node, name xml.Name) schema.BitWidth {
	if base != nil {
		return base.BitWidth()
	}
	switch name.Local {
	case "int8", "uint8":
		return schema.BitWidth8
	case "int16", "uint16":
		return schema.BitWidth16
	case "int32", "uint32":
		return schema.BitWidth32
	case "int64", "uint64":
		return schema.BitWidth64
	default:
		c.error(node, fmt.Errorf("unrecognised integer type %s", name.Local))
		return 0
	}
}

func (c *Compiler) getRangeBoundary(
	base schema.Number, node parse.Node,
) (rbs schema.RangeBoundarySlicer, msg, appTag string) {

	if base != nil {
		rbs, msg, appTag = base.Ranges(), base.Msg(), base.AppTag()
	}

	rng := node.ChildByType(parse.NodeRange)
	if rng == nil {
		return rbs, msg, appTag
	}

	rbs = c.createRangeBdry(node, rbs, rng.ArgRange())
	return rbs, rng.Msg(), rng.AppTag()
}

func (c *Compiler) makeInteger(
	name xml.Name,
	node parse.Node,
	base schema.Integer,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaNumber)

	bits := c.getBitSize(base, node, name)
	if base == nil {
		base = schema.NewInteger(bits, name, nil, "", "", "", false, nil)
	}

	rbs, msg, appTag := c.getRangeBoundary(base, node)
	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewInteger(bits, name, rbs.(schema.RbSlice),
		msg, appTag, def, hasDef, c.extensionInstances(node))
}

func (c *Compiler) makeUinteger(
	name xml.Name,
	node parse.Node,
	base schema.Uinteger,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaNumber)

	bitSize := c.getBitSize(base, node, name)
	if base == nil {
		base = schema.NewUinteger(bitSize, name, nil, "", "", "", false, nil)
	}

	rbs, msg, appTag := c.getRangeBoundary(base, node)
	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewUinteger(bitSize, name, rbs.(schema.UrbSlice),
		msg, appTag, def, hasDef, c.extensionInstances(node))
}

func (c *Compiler) getTypes(
	base schema.Union,
	cfgNode, node parse.Node,
	parentStatus schema.Status,
) []schema.Type {

	memberStmts := node.ChildrenByType(parse.NodeTyp)
	if base != nil {
		if len(memberStmts) > 0 {
			c.error(node, errors.New("cannot restrict predefined union"))
		}
		return base.Typs()
	}

	if len(memberStmts) == 0 {
		c.error(node, errors.New("union requires at least one type"))
	}

	types := make([]schema.Type, 0, len(memberStmts))
	for _, t := range memberStmts {
		typ, _ := c.BuildType(cfgNode, t, emptyDefault, false, parentStatus)
		types = append(types, typ)
	}

	return types
}

func (c *Compiler) makeUnion(
	name xml.Name,
	cfgNode parse.Node,
	node parse.Node,
	base schema.Union,
	parentStatus schema.Status,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaUnion)

	typs := c.getTypes(base, cfgNode, node, parentStatus)
	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewUnion(name, typs, def, hasDef, c.extensionInstances(node))
}

func (c *Compiler) getLength(base *schema.Length, n parse.Node) *schema.Length {
	length := n.ChildByType(parse.NodeLength)
	if length == nil {
		return base
	}
	plbs := length.ArgLength()
	if plbs == nil {
		return base
	}

	imin := base.Lbs[0].Start
	imax := base.Lbs[len(base.Lbs)-1].End

	lbs := make(schema.LbSlice, 0, len(plbs))
	var lb schema.Lb
	for _, p := range plbs {
		if p.Min {
			lb.Start = imin
		} else {
			lb.Start = p.Start
			if p.Start < imin {
				c.error(n, errors.New(
					"derived type length must be restrictive"))
			}
		}
		if p.Max {
			lb.End = imax
		} else {
			lb.End = p.End
			if p.End > imax {
				c.error(n, errors.New(
					"derived type length must be restrictive"))
			}
		}

		var rangeMin, rangeMax uint64
		for index, bound := range base.Lbs {
			curStart := bound.Start
			curEnd := bound.End
			// Only update rangeMin if the new range is not contiguous
			if (index == 0) || ((rangeMax + 1) != curStart) {
				rangeMin = curStart
			}
			rangeMax = curEnd

			if (lb.Start >= rangeMin) && (lb.End <= rangeMax) {
				break
			}

			if lb.Start < rangeMin {
				c.error(n, errors.New("derived length must be restrictive"))
			}
		}

		lbs = append(lbs, lb)
	}
	//Validate disjointness and ordering
	c.validateRangeBoundaries(lbs, n)

	return &schema.Length{
		Lbs:    lbs,
		Msg:    length.Msg(),
		AppTag: length.AppTag(),
		Exts:   c.extensionInstances(length),
	}
}

func (c *Compiler) makeString(
	node parse.Node,
	name xml.Name,
	base schema.String,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaString)

	if base == nil {
		base = schema.NewString(name, nil, nil, "", false, nil)
	}

	// Override or combine with local settings
	pats := c.buildPatterns(base.Pats(), node)
	length := c.getLength(base.Len(), node)
	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewString(name, pats, length, def, hasDef,
		c.extensionInstances(node))
}

func (c *Compiler) makeBinary(
	node parse.Node,
	name xml.Name,
	base schema.Binary,
	def string,
	hasDef bool,
) schema.Type {

	c.validateRestrictions(node, SchemaBinary)

	if base == nil {
		base = schema.NewBinary(name, nil, "", false, nil)
	}

	length := c.getLength(base.Len(), node)
	def, hasDef = c.getDefault(base, def, hasDef)

	return schema.NewBinary(name, length, def, hasDef,
		c.extensionInstances(node))
}

func (c *Compiler) makeBuiltinType(
	cfgNode, n parse.Node,
	typeName string,
	def string,
	hasDef bool,
	parentStatus schema.Status,
) schema.Type {

	tname := xml.Name{Space: "builtin", Local: typeName}

	var typ schema.Type
	switch typeName {
	case "binary":
		typ = c.makeBinary(n, tname, nil, def, hasDef)
	case "bits":
		typ = c.makeBits(tname, n, nil, def, hasDef)
	case "boolean":
		typ = c.makeBoolean(tname, n, nil, def, hasDef)
	case "decimal64":
		typ = c.makeDecimal64(tname, n, nil, def, hasDef)
	case "empty":
		typ = c.makeEmpty(tname, n, nil, def, hasDef)
	case "enumeration":
		typ = c.makeEnumeration(tname, n, nil, def, hasDef)
	case "identityref":
		typ = c.makeIdentityRef(tname, cfgNode, n, nil, parentStatus, def, hasDef)
	case "instance-identifier":
		typ = c.makeInstanceId(tname, n, nil, def, hasDef)
	case "int8", "int16", "int32", "int64":
		typ = c.makeInteger(tname, n, nil, def, hasDef)
	case "leafref":
		typ = c.makeLeafref(n, tname, nil, def, hasDef)
	case "string":
		typ = c.makeString(n, tname, nil, def, hasDef)
	case "uint8", "uint16", "uint32", "uint64":
		typ = c.makeUinteger(tname, n, nil, def, hasDef)
	case "union":
		typ = c.makeUnion(tname, cfgNode, n, nil, parentStatus, def, hasDef)
	default:
		c.internalError(n, "unhandled builtin type "+typeName)
	}

	return typ
}

func (c *Compiler) refineType(
	cfgNode, n parse.Node,
	tname xml.Name,
	typ schema.Type,
	def string,
	hasDef bool,
	parentStatus schema.Status,
) schema.Type {

	switch t := typ.(type) {
	case schema.Binary:
		typ = c.makeBinary(n, tname, t, def, hasDef)
	case schema.Boolean:
		typ = c.makeBoolean(tname, n, t, def, hasDef)
	case schema.Decimal64:
		typ = c.makeDecimal64(tname, n, t, def, hasDef)
	case schema.Empty:
		typ = c.makeEmpty(tname, n, t, def, hasDef)
	case schema.Enumeration:
		typ = c.makeEnumeration(tname, n, t, def, hasDef)
	case schema.Bits:
		typ = c.makeBits(tname, n, t, def, hasDef)
	case schema.InstanceId:
		typ = c.makeInstanceId(tname, n, t, def, hasDef)
	case schema.Integer:
		typ = c.makeInteger(tname, n, t, def, hasDef)
	case schema.Uinteger:
		typ = c.makeUinteger(tname, n, t, def, hasDef)
	case schema.Union:
		typ = c.makeUnion(tname, cfgNode, n, t, parentStatus, def, hasDef)
	case schema.String:
		typ = c.makeString(n, tname, t, def, hasDef)
	case schema.Leafref:
		typ = c.makeLeafref(n, tname, t, def, hasDef)
	case schema.Identityref:
		typ = c.makeIdentityRef(tname, cfgNode, n, t, parentStatus, def, hasDef)
	default:
		c.error(n, errors.New("cannot modify type"))
	}

	return typ
}

// typeAddsNothing reports whether a type statement referencing a typedef
// carries no restrictions or extensions of its own, in which case the
// typedef's compiled type is shared rather than rebuilt.
func typeAddsNothing(n parse.Node) bool {
	return len(n.Children()) == 0
}

// BuildType works down a chain of type / typedefs to the base built-in
// type, building that, then works back up refining the type at each step.
// Each step's restrictions must narrow the inherited ones.
//
// Units and the default bubble up the chain: the innermost occurrence of
// each wins, with the node's own statements overriding both.
func (c *Compiler) BuildType(
	cfgNode parse.Node,
	typ parse.Node,
	def string,
	hasDef bool,
	parentStatus schema.Status,
) (schema.Type, string) {

	baseType, tname, units, done := c.BuildBaseType(cfgNode, typ, def, hasDef, parentStatus)
	if done {
		return baseType, units
	}

	// Having constructed the underlying type, we can now add the likes
	// of range / length etc.
	t := c.refineType(cfgNode, typ, tname, baseType, def, hasDef, parentStatus)
	return t, units
}

func (c *Compiler) BuildBaseType(
	cfgNode parse.Node,
	typ parse.Node,
	def string,
	hasDef bool,
	parentStatus schema.Status,
) (schema.Type, xml.Name, string, bool) {

	//recursively build type into its base components
	var refType parse.Node
	var ok bool
	tname := typ.ArgIdRef()
	var typeName string
	if tname.Space != "" {
		refMod, err := typ.GetModuleByPrefix(tname.Space, c.modules)
		if err != nil {
			c.error(typ, err)
		}
		tname.Space = refMod.Name()
		refType, ok = refMod.LookupType(tname.Local)
		typeName = tname.Space + ":" + tname.Local
	} else {
		typeName = tname.Local
		tname.Space = typ.Root().Name()
		refType, ok = typ.LookupType(tname.Local)
	}
	if !ok {
		c.error(typ, newCompileError(ErrNotFound, typ, "unknown type "+typeName))
	}

	if refType == nil {
		// A built-in type
		return c.makeBuiltinType(cfgNode, typ, tname.Local, def, hasDef,
			parentStatus), tname, "", true
	}

	if c.typedefChain[refType] {
		c.error(typ, newCompileError(ErrCycle, typ,
			"typedef chain forms a cycle at "+typeName))
	}
	c.typedefChain[refType] = true
	defer delete(c.typedefChain, refType)

	// Share the typedef's compiled form when the referencing statement
	// adds nothing of its own
	if typeAddsNothing(typ) {
		if t, units, ok := c.types.lookup(refType); ok {
			if hasDef {
				return c.refineType(cfgNode, typ, tname, t, def, hasDef,
					parentStatus), tname, units, true
			}
			return t, tname, units, true
		}
	}

	typ2 := refType.ChildByType(parse.NodeTyp)
	tdef := refType.Def()
	thasdef := refType.HasDef()
	t, units := c.BuildType(cfgNode, typ2, tdef, thasdef, schema.Current)
	if u := refType.Units(); u != "" {
		// The innermost units in the chain wins
		units = u
	}

	if typeAddsNothing(typ) && !hasDef {
		c.types.store(refType, t, units)
		return t, tname, units, true
	}

	return t, tname, units, false
}
