// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/iptecharch/yang-compiler/parse"
	"github.com/iptecharch/yang-compiler/schema"
)

// BuildNode dispatches on the parsed statement kind and emits the
// corresponding compiled node. Grouping and uses statements never reach
// this point: expansion eliminated them before the build pass.
func (c *Compiler) BuildNode(
	inh inherited,
	m parse.Node,
	n parse.Node,
	isKey bool,
) (retNodes []schema.Node) {

	c.checkCancelled(n)
	features := c.overrideInherited(inh, n)

	switch n.Type() {
	case parse.NodeContainer:
		retNodes = []schema.Node{c.BuildContainer(features, m, n)}
	case parse.NodeList:
		retNodes = []schema.Node{c.BuildList(features, m, n)}
	case parse.NodeLeafList:
		retNodes = []schema.Node{c.BuildLeafList(features, m, n)}
	case parse.NodeLeaf:
		retNodes = []schema.Node{c.BuildLeaf(features, m, n, isKey)}
	case parse.NodeChoice:
		retNodes = []schema.Node{c.BuildChoice(features, m, n)}
	case parse.NodeCase:
		retNodes = []schema.Node{c.BuildCase(features, m, n, false)}
	case parse.NodeAnyxml:
		retNodes = []schema.Node{c.BuildAnyXml(features, m, n)}
	case parse.NodeAnydata:
		retNodes = []schema.Node{c.BuildAnyData(features, m, n)}
	case parse.NodeUses:
		c.internalError(n, "uses should be eliminated before node compilation")
	default:
		retNodes = nil
	}

	for _, sn := range retNodes {
		schema.SetStatementExtensions(sn, c.statementExtensions(n))
	}

	return retNodes
}

func (c *Compiler) BuildContainer(features inherited, m parse.Node, n parse.Node) schema.Node {
	actions := make(map[string]schema.Rpc)
	for _, a := range n.ChildrenByType(parse.NodeAction) {
		if c.IgnoreNode(a, features.status) {
			continue
		}
		actions[a.Name()] = c.buildRpc(m, a)
	}
	notifications := make(map[string]schema.Notification)
	for _, nt := range n.ChildrenByType(parse.NodeNotification) {
		if c.IgnoreNode(nt, features.status) {
			continue
		}
		notifications[nt.Name()] = c.buildNotification(m, nt)
	}

	con, err := schema.NewContainer(
		n.Name(),
		n.GetNodeNamespace(m, c.modules),
		n.GetNodeModulename(m),
		n.GetNodeSubmoduleName(),
		n.Desc(),
		n.Ref(),
		n.Presence(),
		n.PresenceArg(),
		features.config,
		features.status,
		c.BuildWhens(n),
		c.BuildMusts(n),
		actions,
		notifications,
		c.extensionInstances(n),
		c.buildChildren(features, m, n.ChildrenByType(parse.NodeDataDef)),
	)

	if err != nil {
		c.error(n, err)
	}

	return con
}

func allUniques(n parse.Node) [][][]xml.Name {
	uniqs := make([][][]xml.Name, 0)
	for _, ch := range n.ChildrenByType(parse.NodeUnique) {
		uniqs = append(uniqs, ch.ArgUnique())
	}
	return uniqs
}

func xmlPathString(path []xml.Name) string {
	var buf = new(bytes.Buffer)
	getxmlname := func(name xml.Name) string {
		if name.Space != "" {
			return name.Space + ":" + name.Local
		}
		return name.Local
	}
	if len(path) == 0 {
		return ""
	}
	fmt.Fprintf(buf, "%s", getxmlname(path[0]))
	for _, elem := range path[1:] {
		fmt.Fprintf(buf, "/%s", getxmlname(elem))
	}
	return buf.String()
}

func (c *Compiler) buildListChildren(
	keys []string,
	features inherited,
	m parse.Node,
	n parse.Node,
) []schema.Node {

	var children []schema.Node
	seen := make(map[string]bool)

	for _, dataDef := range n.ChildrenByType(parse.NodeDataDef) {
		if c.IgnoreNode(dataDef, features.status) {
			continue
		}
		var isKey bool
		for _, v := range keys {
			if dataDef.Name() == v {
				isKey = true
				seen[v] = true
				if dataDef.Type() != parse.NodeLeaf {
					c.error(dataDef, errors.New("list key must be a leaf"))
				}
				if dataDef.HasConfig() && dataDef.Config() != features.config {
					c.error(dataDef, errors.New(
						"list key config must agree with its list"))
				}
			}
		}
		ch := c.BuildNode(features, m, dataDef, isKey)
		for _, sn := range ch {
			if c.filter != nil && !c.filter(sn) {
				continue
			}
			children = append(children, sn)
		}
	}

	for _, k := range keys {
		if !seen[k] {
			c.error(n, newCompileError(ErrNotFound, n,
				fmt.Sprintf("list key %s not found as a direct child", k)))
		}
	}

	return children
}

func (c *Compiler) BuildList(features inherited, m parse.Node, n parse.Node) schema.Node {
	c.CheckMinMax(n, n.Min(), n.Max())

	keys := n.Keys()
	if features.config && len(keys) == 0 {
		c.error(n, errors.New("configuration list must have a key"))
	}

	children := c.buildListChildren(keys, features, m, n)

	actions := make(map[string]schema.Rpc)
	for _, a := range n.ChildrenByType(parse.NodeAction) {
		if c.IgnoreNode(a, features.status) {
			continue
		}
		actions[a.Name()] = c.buildRpc(m, a)
	}
	notifications := make(map[string]schema.Notification)
	for _, nt := range n.ChildrenByType(parse.NodeNotification) {
		if c.IgnoreNode(nt, features.status) {
			continue
		}
		notifications[nt.Name()] = c.buildNotification(m, nt)
	}

	l, err := schema.NewList(
		n.Name(),
		n.GetNodeNamespace(m, c.modules),
		n.GetNodeModulename(m),
		n.GetNodeSubmoduleName(),
		n.Desc(),
		n.Ref(),
		n.OrdBy(),
		n.Min(),
		n.Max(),
		features.config,
		features.status,
		keys,
		allUniques(n),
		c.BuildWhens(n),
		c.BuildMusts(n),
		actions,
		notifications,
		c.extensionInstances(n),
		children,
	)

	if err != nil {
		c.error(n, err)
	}

	// Now that we have type information, verify unique-args don't
	// reference an empty leaf node. Path existence was already checked in
	// CheckUniqueConstraint().
	for _, uniq := range l.Uniques() {
		for _, path := range uniq {
			names := make([]string, 0, len(path))
			for _, elem := range path {
				names = append(names, elem.Local)
			}
			target := l.Descendant(names)
			if target == nil {
				continue
			}
			if _, ok := target.Type().(schema.Empty); ok {
				c.error(n, fmt.Errorf(
					"empty leaf descendant %s referenced in unique statement",
					xmlPathString(path)))
			}
		}
	}

	return l
}

func (c *Compiler) BuildLeafList(features inherited, m parse.Node, n parse.Node) schema.Node {
	c.CheckMinMax(n, n.Min(), n.Max())

	defaults := n.Defs()
	if len(defaults) > 0 && n.Root().YangVersion() != "1.1" {
		c.error(n, errors.New("leaf-list default requires yang-version 1.1"))
	}
	seen := make(map[string]bool)
	for _, d := range defaults {
		if seen[d] {
			c.error(n, fmt.Errorf("duplicate leaf-list default '%s'", d))
		}
		seen[d] = true
	}

	typ, units := c.BuildType(n, n.ChildByType(parse.NodeTyp),
		emptyDefault, false, features.status)
	if u := n.Units(); u != "" {
		units = u
	}

	l := schema.NewLeafList(
		n.Name(),
		n.GetNodeNamespace(m, c.modules),
		n.GetNodeModulename(m),
		n.GetNodeSubmoduleName(),
		n.Desc(),
		n.Ref(),
		n.OrdBy(),
		units,
		defaults,
		n.Min(),
		n.Max(),
		typ,
		features.config,
		features.status,
		c.BuildWhens(n),
		c.BuildMusts(n),
		c.extensionInstances(n),
	)

	c.deferLeafrefs(n, l, typ)
	for _, d := range defaults {
		c.deferDefaultCheck(n, typ, d)
	}

	return l
}

func (c *Compiler) BuildLeaf(
	features inherited,
	m parse.Node,
	n parse.Node,
	isKey bool,
) schema.Node {

	mandatory := n.Mandatory()
	hasDef := n.HasDef()
	defVal := n.Def()

	typ, units := c.BuildType(n, n.ChildByType(parse.NodeTyp),
		defVal, hasDef, features.status)
	if u := n.Units(); u != "" {
		units = u
	}

	if mandatory && hasDef {
		c.error(n, errors.New("leaf cannot have default and be mandatory"))
	}

	leaf := schema.NewLeaf(
		n.Name(),
		n.GetNodeNamespace(m, c.modules),
		n.GetNodeModulename(m),
		n.GetNodeSubmoduleName(),
		n.Desc(),
		n.Ref(),
		units,
		mandatory,
		isKey,
		typ,
		features.config,
		features.status,
		c.BuildWhens(n),
		c.BuildMusts(n),
		c.extensionInstances(n),
	)

	c.deferLeafrefs(n, leaf, typ)
	if def, ok := typ.Default(); ok && !mandatory {
		c.deferDefaultCheck(n, typ, def)
	}

	return leaf
}

// buildChoiceChildren normalises the short-case form: a container, list,
// leaf, leaf-list, anyxml or anydata directly under a choice becomes an
// implicit case holding that single node.
func (c *Compiler) buildChoiceChildren(features inherited, m parse.Node, n parse.Node) []schema.Node {
	var children []schema.Node

	for _, ch := range n.Children() {
		if !ch.Type().IsDataOrCaseNode() {
			continue
		}
		if c.IgnoreNode(ch, features.status) {
			continue
		}
		if ch.Type() == parse.NodeCase {
			cs := c.BuildCase(c.overrideInherited(features, ch), m, ch, false)
			if c.filter == nil || c.filter(cs) {
				children = append(children, cs)
			}
			continue
		}
		built := c.BuildNode(features, m, ch, false)
		for _, sn := range built {
			if c.filter != nil && !c.filter(sn) {
				continue
			}
			implicit, err := schema.NewCase(
				sn.Name(),
				sn.Namespace(),
				sn.Module(),
				sn.Submodule(),
				"", "",
				true,
				sn.Config(),
				sn.Status(),
				nil,
				nil,
				[]schema.Node{sn},
			)
			if err != nil {
				c.error(ch, err)
			}
			children = append(children, implicit)
		}
	}

	return children
}

func (c *Compiler) BuildChoice(features inherited, m parse.Node, n parse.Node) schema.Node {
	children := c.buildChoiceChildren(features, m, n)
	if n.HasDef() && n.Mandatory() {
		c.error(n, errors.New("choice cannot have default and be mandatory"))
	}

	choice, err := schema.NewChoice(
		n.Name(),
		n.GetNodeNamespace(m, c.modules),
		n.GetNodeModulename(m),
		n.GetNodeSubmoduleName(),
		n.Def(),
		n.Desc(),
		n.Ref(),
		n.Mandatory(),
		features.config,
		features.status,
		c.BuildWhens(n),
		c.extensionInstances(n),
		children,
	)

	if err != nil {
		c.error(n, err)
	}

	if n.HasDef() {
		// The default case reference resolves once all cases exist
		c.deferChoiceDefault(n, choice)
	}

	return choice
}

func (c *Compiler) BuildCase(features inherited, m parse.Node, n parse.Node, implicit bool) schema.Node {
	children := c.buildChildren(features, m, n.ChildrenByType(parse.NodeDataDef))

	ycase, err := schema.NewCase(
		n.Name(),
		n.GetNodeNamespace(m, c.modules),
		n.GetNodeModulename(m),
		n.GetNodeSubmoduleName(),
		n.Desc(),
		n.Ref(),
		implicit,
		features.config,
		features.status,
		c.BuildWhens(n),
		c.extensionInstances(n),
		children,
	)

	if err != nil {
		c.error(n, err)
	}

	return ycase
}

func (c *Compiler) BuildAnyXml(features inherited, m parse.Node, n parse.Node) schema.Node {
	return schema.NewAnyXml(
		n.Name(),
		n.GetNodeNamespace(m, c.modules),
		n.GetNodeModulename(m),
		n.GetNodeSubmoduleName(),
		n.Desc(),
		n.Ref(),
		n.Mandatory(),
		features.config,
		features.status,
		c.BuildWhens(n),
		c.BuildMusts(n),
		c.extensionInstances(n),
	)
}

func (c *Compiler) BuildAnyData(features inherited, m parse.Node, n parse.Node) schema.Node {
	return schema.NewAnyData(
		n.Name(),
		n.GetNodeNamespace(m, c.modules),
		n.GetNodeModulename(m),
		n.GetNodeSubmoduleName(),
		n.Desc(),
		n.Ref(),
		n.Mandatory(),
		features.config,
		features.status,
		c.BuildWhens(n),
		c.BuildMusts(n),
		c.extensionInstances(n),
	)
}

// checkGroupings compiles each grouping that survived expansion into a
// throwaway subtree, purely to surface errors its body contains. The
// result is discarded and nothing leaks into the persistent compilation:
// deferred work recorded during the scratch pass is dropped with it.
func (c *Compiler) checkGroupings(m parse.Node, n parse.Node) {
	for _, g := range n.ChildrenByType(parse.NodeGrouping) {
		c.compileGroupingScratch(m, g)
	}
	for _, ch := range n.Children() {
		c.checkGroupings(m, ch)
	}
}

func (c *Compiler) compileGroupingScratch(m, g parse.Node) {
	c.scratch = true
	defer func() { c.scratch = false }()

	inh := inherited{config: true, status: schema.Current}
	c.buildChildren(inh, m, g.ChildrenByType(parse.NodeDataDef))
}
