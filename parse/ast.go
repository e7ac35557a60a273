// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package parse

import (
	"fmt"
)

// Node is one parsed YANG statement: a tagged variant keyed by statement
// kind, carrying the verbatim argument and the child substatements.
// Extension instances appear among the children in source order.
type Node interface {
	Type() NodeType
	Statement() string
	Name() string
	String() string
	Clone(m Node) Node

	HasArgument
	Namespace

	Root() Node
	UsesRoot() Node
	Children() []Node
	ChildrenByType(t NodeType) []Node
	ChildByType(t NodeType) Node
	LookupChild(t NodeType, name string) Node

	// Needed to merge in imports, includes and expansions
	AddChildren(new ...Node)
	ReplaceChild(old Node, new ...Node)
	ReplaceChildByType(typ NodeType, new Node)

	// 'when' statements declared on a uses or augment are stored on the
	// children they produce, but evaluated against the parent context.
	// The knowledge travels with the node.
	AddWhenChildren(fromAugment bool, new ...Node)
	AddedByAugment() bool
	GetCardinalityEnd(t NodeType) rune

	Tenv() *TEnv
	LookupType(string) (Node, bool)
	Genv() *GEnv
	LookupGrouping(string) (Node, bool)

	// This is where file and line numbers come from
	ErrorContext() (location, context string)

	// Shortcuts for child statement values
	Min() uint
	Max() uint
	OrdBy() string
	Desc() string
	Ref() string
	Presence() bool
	PresenceArg() string
	Keys() []string
	Def() string
	HasDef() bool
	Defs() []string
	Config() bool
	HasConfig() bool
	Units() string
	Mandatory() bool
	FracDigit() int
	Msg() string
	AppTag() string
	Value() int
	HasValue() bool
	Position() uint
	HasPosition() bool
	InvertMatch() bool
	Revision() string
	Prefix() string
	Ns() string
	Path() string
	Status() string
	YangVersion() string

	// Internal build help
	position() Pos
	checkCardinality() error
	check() error
	buildSymbols() (error, Pos)
}

type node struct {
	NodeType
	hasArgument

	stmt string
	Pos
	card     map[NodeType]Cardinality
	children []Node
	tenv     *TEnv
	genv     *GEnv

	tree    *Tree
	useTree *Tree

	fromAugment bool
}

func (n *node) GetCardinalityEnd(t NodeType) rune {
	return n.card[t].End
}

func (n *node) Clone(m Node) Node {
	copy := *n

	copy.children = nil
	if m != nil {
		// replace the module we are in
		copy.useTree = m.(*node).tree
	}
	for _, ch := range n.children {
		copy.children = append(copy.children, ch.Clone(m))
	}

	return &copy
}

func (n *node) Statement() string { return n.stmt }
func (n *node) Genv() *GEnv       { return n.genv }
func (n *node) Tenv() *TEnv       { return n.tenv }
func (n *node) String() string    { return n.stmt + " " + n.arg.String() }
func (n *node) Children() []Node  { return n.children }

func (n *node) Root() Node {
	if n.tree == nil {
		return nil
	}
	return n.tree.Root
}

func (n *node) Name() string {
	if n == nil || n.arg == nil {
		return "(unknown)"
	}
	name := n.arg.String()
	if name == "" {
		// Input and output statements carry no argument
		return n.stmt
	}
	return name
}

func typesMatch(match, nt NodeType) bool {
	if match == NodeDataDef {
		return nt.IsDataNode()
	}
	return match == nt
}

func (n *node) implicitOperationChildren(match NodeType) []Node {
	ch := []Node{}
	switch match {
	case NodeInput, NodeOutput:
		ch = append(ch,
			newNodeByType(match,
				n.tree,
				item{pos: n.Pos, val: nodeNames[match]},
				"",
				nil,
				&Scope{tenv: n.tenv, genv: n.genv}))
	}
	return ch
}

func (n *node) ChildrenByType(match NodeType) []Node {
	ch := []Node{}
	for _, v := range n.Children() {
		if typesMatch(match, v.Type()) {
			ch = append(ch, v)
		}
	}
	if len(ch) == 0 && n.IsOperationNode() {
		ch = n.implicitOperationChildren(match)
		n.AddChildren(ch...)
	}
	return ch
}

func (n *node) LookupChild(t NodeType, name string) Node {
	for _, ch := range n.ChildrenByType(t) {
		if ch.Name() == name {
			return ch
		}
	}
	return nil
}

func (n *node) ChildByType(t NodeType) Node {
	ch := n.ChildrenByType(t)
	if len(ch) < 1 {
		return nil
	}
	return ch[0]
}

func (n *node) exists(t NodeType) bool {
	return n.ChildByType(t) != nil
}

func (n *node) optString(t NodeType) string {
	ch := n.ChildByType(t)
	if ch == nil {
		return ""
	}
	return ch.ArgString()
}

func (n *node) optStatus(t NodeType) string {
	ch := n.ChildByType(t)
	if ch == nil {
		return ""
	}
	return ch.ArgStatus()
}

func (n *node) optUri(t NodeType) string {
	ch := n.ChildByType(t)
	if ch == nil {
		return ""
	}
	return ch.ArgUri()
}

func (n *node) optPrefix(t NodeType) string {
	ch := n.ChildByType(t)
	if ch == nil {
		return ""
	}
	return ch.ArgPrefix()
}

func (n *node) optInt(t NodeType) int {
	ch := n.ChildByType(t)
	if ch == nil {
		return 0
	}
	return ch.ArgInt()
}

func (n *node) optUint(t NodeType) uint {
	ch := n.ChildByType(t)
	if ch == nil {
		return 0
	}
	return ch.ArgUint()
}

func (n *node) optBool(t NodeType, def bool) bool {
	ch := n.ChildByType(t)
	if ch == nil {
		return def
	}
	return ch.ArgBool()
}

func (n *node) optOrdBy(t NodeType) string {
	ch := n.ChildByType(t)
	if ch == nil {
		return ""
	}
	return ch.ArgOrdBy()
}

func (n *node) optDate(t NodeType) string {
	ch := n.ChildByType(t)
	if ch == nil {
		return ""
	}
	return ch.ArgDate()
}

func (n *node) Presence() bool      { return n.exists(NodePresence) }
func (n *node) PresenceArg() string { return n.optString(NodePresence) }
func (n *node) Revision() string    { return n.optDate(NodeRevision) }
func (n *node) Desc() string        { return n.optString(NodeDescription) }
func (n *node) Ns() string          { return n.optUri(NodeNamespace) }
func (n *node) Ref() string         { return n.optString(NodeReference) }
func (n *node) Msg() string         { return n.optString(NodeErrorMessage) }
func (n *node) AppTag() string      { return n.optString(NodeErrorAppTag) }
func (n *node) Value() int          { return n.optInt(NodeValue) }
func (n *node) HasValue() bool      { return n.exists(NodeValue) }
func (n *node) Position() uint      { return n.optUint(NodePosition) }
func (n *node) HasPosition() bool   { return n.exists(NodePosition) }
func (n *node) HasDef() bool        { return n.exists(NodeDefault) }
func (n *node) Def() string         { return n.optString(NodeDefault) }
func (n *node) HasConfig() bool     { return n.exists(NodeConfig) }
func (n *node) Config() bool        { return n.optBool(NodeConfig, true) }
func (n *node) Units() string       { return n.optString(NodeUnits) }
func (n *node) OrdBy() string       { return n.optOrdBy(NodeOrderedBy) }
func (n *node) Mandatory() bool     { return n.optBool(NodeMandatory, false) }
func (n *node) Prefix() string      { return n.optPrefix(NodePrefix) }
func (n *node) Path() string        { return n.optString(NodePath) }
func (n *node) Status() string      { return n.optStatus(NodeStatus) }

func (n *node) FracDigit() int {
	ch := n.ChildByType(NodeFractionDigits)
	if ch == nil {
		return 0
	}
	return ch.ArgFractionDigits()
}

func (n *node) YangVersion() string {
	ch := n.ChildByType(NodeYangVersion)
	if ch == nil {
		return "1"
	}
	return ch.ArgYangVersion()
}

// InvertMatch reports whether a pattern statement carries the YANG 1.1
// invert-match modifier.
func (n *node) InvertMatch() bool {
	ch := n.ChildByType(NodeModifier)
	if ch == nil {
		return false
	}
	return ch.ArgModifier() == "invert-match"
}

// Defs returns every default substatement argument in source order;
// leaf-lists may carry several in YANG 1.1.
func (n *node) Defs() []string {
	defs := []string{}
	for _, d := range n.ChildrenByType(NodeDefault) {
		defs = append(defs, d.ArgString())
	}
	return defs
}

func (n *node) Min() uint {
	ch := n.ChildByType(NodeMinElements)
	if ch != nil {
		return ch.ArgUint()
	}
	return 0
}

func (n *node) Max() uint {
	ch := n.ChildByType(NodeMaxElements)
	if ch != nil {
		return ch.ArgMax()
	}
	return ^uint(0)
}

func (n *node) Keys() []string {
	ch := n.ChildByType(NodeKey)
	if ch == nil {
		return []string{}
	}
	return ch.ArgKey()
}

func (n *node) AddChildren(ch ...Node) {
	n.children = append(n.children, ch...)
}

func (n *node) AddWhenChildren(fromAugment bool, ch ...Node) {
	for _, child := range ch {
		child.(*node).fromAugment = fromAugment
	}
	n.children = append(n.children, ch...)
}

func (n *node) AddedByAugment() bool { return n.fromAugment }

func (n *node) ReplaceChildByType(typ NodeType, new Node) {
	old := n.ChildByType(typ)
	if old == nil {
		n.AddChildren(new)
	}
	n.ReplaceChild(old, new)
}

func (n *node) ReplaceChild(old Node, new ...Node) {
	fresh := []Node{}
	for _, v := range n.children {
		if v == old {
			fresh = append(fresh, new...)
		} else {
			fresh = append(fresh, v)
		}
	}
	n.children = fresh
}

func (n *node) buildSymbols() (error, Pos) {
	for _, g := range n.ChildrenByType(NodeGrouping) {
		if err := n.genv.Put(g.Name(), g); err != nil {
			return err, g.position()
		}
	}
	for _, t := range n.ChildrenByType(NodeTypedef) {
		if err := n.tenv.Put(t.Name(), t); err != nil {
			return err, t.position()
		}
	}

	for _, c := range n.children {
		if err, pos := c.buildSymbols(); err != nil {
			return err, pos
		}
	}
	return nil, Pos(0)
}

func (n *node) check() error {
	switch n.Type() {
	case NodeModule, NodeSubmodule:
		if e := checkModule(n); e != nil {
			return e
		}
		if e := checkRevisionOrder(n); e != nil {
			return e
		}
	}

	if e := n.checkArgument(); e != nil {
		return e
	}
	return n.checkCardinality()
}

func (n *node) checkCardinality() error {
	// Refine substatement cardinality varies by target so the compiler
	// sorts it out; extension instances take whatever their definition
	// allows.
	if n.Type() == NodeUnknown || n.Type() == NodeRefine {
		return nil
	}
	cmap := make(map[NodeType]int)
	//Sum up the node types
	for _, c := range n.children {
		cmap[c.Type()] = cmap[c.Type()] + 1

		if c.Type().IsDataNode() {
			cmap[NodeDataDef] = cmap[NodeDataDef] + 1
		}
	}
	//Check against cardinality table
	for k, v := range n.card {
		nt := NodeType(k)
		switch {
		case v.Start == '1' && cmap[k] < 1:
			return fmt.Errorf("%s: missing required '%s' statement", ErrCard, nt)
		case v.End == '1' && cmap[k] > 1:
			return fmt.Errorf("%s: only one '%s' statement is allowed", ErrCard, nt)
		}
	}
	//Ensure only valid nodes
	for k := range cmap {
		if _, ok := n.card[k]; k != NodeUnknown && k != NodeDataDef && !ok {
			return fmt.Errorf("%s: invalid substatement '%s'", ErrCard, NodeType(k))
		}
	}
	return nil
}

func (n *node) LookupType(s string) (Node, bool) {
	return n.tenv.Get(s)
}

func (n *node) LookupGrouping(s string) (Node, bool) {
	return n.genv.Get(s)
}

func newNodeByType(ntype NodeType, tree *Tree, id item, a string, children []Node, s *Scope) *node {
	card := make(map[NodeType]Cardinality, len(cardinalities[ntype]))

	for k, v := range yangCardinality(ntype) {
		card[k] = v
	}

	if tree.extCard != nil {
		for k, v := range tree.extCard(ntype) {
			card[k] = v
		}
	}

	node := &node{
		NodeType: ntype,
		stmt:     id.val,
		Pos:      id.pos,
		card:     card,
		children: children,
		tree:     tree,
		tenv:     s.tenv,
		genv:     s.genv,
	}

	node.arg = tree.internArg(ntype, getArgByType(ntype, a))

	return node
}

// ErrorContext returns a textual representation of the location of the
// node in the input text.
func (n *node) ErrorContext() (location, context string) {
	pos := int(n.position())
	context = n.String()
	return n.tree.ErrorContextPosition(pos, context)
}
