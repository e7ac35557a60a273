// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"encoding/xml"
	"fmt"

	"github.com/iptecharch/yang-compiler/parse"
	"github.com/iptecharch/yang-compiler/schema"
)

func (c *Compiler) validateModuleGroupings(m parse.Node) error {
	return c.validateGroupingsWalk(m, m)
}

func (c *Compiler) validateGroupingsWalk(m parse.Node, n parse.Node) error {
	if err := c.validateAllGroupings(m, n); err != nil {
		return err
	}

	for _, d := range n.Children() {
		if err := c.validateGroupingsWalk(m, d); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) validateAllGroupings(m parse.Node, n parse.Node) error {
	for _, g := range n.ChildrenByType(parse.NodeGrouping) {
		groupMap := make(map[string]bool)
		if err := c.validateGrouping(m, g, groupMap); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) validateGrouping(
	m parse.Node,
	g parse.Node,
	groupMap map[string]bool,
) error {

	if _, present := groupMap[g.Name()]; present {
		return newCompileError(ErrCycle, g,
			"grouping cycle detected in: grouping "+g.Name())
	}

	groupMap[g.Name()] = true
	for _, u := range g.ChildrenByType(parse.NodeUses) {
		gname := u.ArgIdRef()
		mod, err := u.GetModuleByPrefix(gname.Space, c.modules)
		if err != nil {
			c.error(u, err)
		}
		if m != mod {
			// Not a local grouping so ignore it. Cross-module cycles are
			// already prevented by protecting against import cycles.
			continue
		}

		ug, ok := g.LookupGrouping(gname.Local)
		if !ok {
			return newCompileError(ErrNotFound, u, fmt.Sprintf(
				"unknown grouping (grouping %s) referenced from grouping %s",
				gname.Local, g.Name()))
		}

		if err := c.validateGrouping(m, ug, groupMap); err != nil {
			return err
		}
	}

	return nil
}

func isMandatory(nod parse.Node) bool {
	switch nod.Type() {
	case parse.NodeLeaf, parse.NodeChoice, parse.NodeAnyxml, parse.NodeAnydata:
		return nod.Mandatory()
	case parse.NodeLeafList, parse.NodeList:
		// A list or leaf-list is mandatory if min-elements > 0; its
		// children are ignored.
		return nod.Min() > 0
	case parse.NodeContainer:
		fallthrough
	default:
		// default catches such things as tree roots
		if nod.Presence() {
			// Presence on a container limits the scope of mandatory nodes
			return false
		}
		for _, ch := range nod.Children() {
			if isMandatory(ch) {
				return true
			}
		}
	}

	return false
}

// expandModule eliminates every uses in the module, then applies the
// module-level augments. Cross-module augments stay behind for the
// deferred phase; the target module's own expansion may not have happened
// yet when this module is first seen.
func (c *Compiler) expandModule(module *parse.Module) {
	nod := module.GetModule()
	c.checkCancelled(nod)

	// Expand groupings
	if err := c.expandGroupings(nod, nod, schema.Current); err != nil {
		c.error(nod, err)
	}
	for _, sm := range module.GetSubmodules() {
		if err := c.expandGroupings(nod, sm, schema.Current); err != nil {
			c.error(sm, err)
		}
	}

	// Apply augments
	for _, a := range nod.ChildrenByType(parse.NodeAugment) {
		c.checkCancelled(a)

		if _, ok := a.Argument().(*parse.AbsoluteSchemaArg); !ok {
			c.error(a,
				fmt.Errorf("invalid argument %s expected absolute schema id",
					a.Argument().String()))
		}
		applyToPath := a.ArgSchema()
		applyToPfx := applyToPath[0].Space
		applyToMod, err := nod.GetModuleByPrefix(applyToPfx, c.modules)
		if err != nil {
			c.error(nod, err)
		}
		if applyToMod != nod {
			if isMandatory(a) {
				c.error(a, fmt.Errorf(
					"cannot add mandatory nodes to another module: %s",
					applyToPfx))
			}
			// The target module may not have its tree in final shape
			// yet; resolve during the deferred phase.
			c.deferAugment(nod, a, applyToMod)
			nod.ReplaceChild(a)
			continue
		}

		allowedNodes := getAugmentableNodesForModule(applyToMod)
		c.applyAugment(a, allowedNodes, applyToPath, schema.Current)
		nod.ReplaceChild(a)
	}
}

// Only some node kinds accept augmented children: data nodes, case,
// input, output and notification. Rpc is included as a parent of
// augmentable nodes.
func getAugmentableNodesForModule(applyToMod parse.Node) []parse.Node {
	allowedNodes := applyToMod.ChildrenByType(parse.NodeDataDef)
	allowedNodes = append(allowedNodes,
		applyToMod.ChildrenByType(parse.NodeCase)...)
	allowedNodes = append(allowedNodes,
		applyToMod.ChildrenByType(parse.NodeChoice)...)
	allowedNodes = append(allowedNodes,
		applyToMod.ChildrenByType(parse.NodeRpc)...)
	allowedNodes = append(allowedNodes,
		applyToMod.ChildrenByType(parse.NodeAction)...)
	allowedNodes = append(allowedNodes,
		applyToMod.ChildrenByType(parse.NodeInput)...)
	allowedNodes = append(allowedNodes,
		allowedNodesForOutput(applyToMod)...)
	return allowedNodes
}

func allowedNodesForOutput(applyToMod parse.Node) []parse.Node {
	out := applyToMod.ChildrenByType(parse.NodeOutput)
	return append(out, applyToMod.ChildrenByType(parse.NodeNotification)...)
}

func (c *Compiler) expandGroupings(mod, nod parse.Node, parentStatus schema.Status) error {
	status := parentStatus

	if statusStatement := nod.ChildByType(parse.NodeStatus); statusStatement != nil {
		status = parseStatus(statusStatement)
	}

	// Expand any groupings found in any children before applying refines
	for _, kid := range nod.Children() {
		// If any expanded grouping contains a 'uses' at the top level we
		// need to expand this directly; otherwise we would pass the
		// 'uses' into expandGroupings (instead of as a child of the node
		// passed in) and not expand it.
		if kid.Type() == parse.NodeUses {
			if err := c.applyUsesToNode(mod, nod, kid, status); err != nil {
				return err
			}
		}
		if err := c.expandGroupings(mod, kid, status); err != nil {
			return err
		}
	}

	// Paranoia: generate an error if a uses statement survived.
	if len(nod.ChildrenByType(parse.NodeUses)) > 0 {
		c.internalError(nod, "uses should be eliminated")
	}
	return nil
}

func (c *Compiler) getNext(
	srcNode parse.Node,
	nods []parse.Node,
	name xml.Name,
) parse.Node {

	for _, next := range nods {
		// Get the namespace for 'next' and see if the path element we
		// are looking for matches up with it.
		nextNS := next.GetNodeNamespace(nil, c.modules)
		if nextNS == "" {
			continue
		}
		// The prefix of the path element resolves using the
		// prefix-to-namespace map of the node carrying the uses /
		// augment statement; that is the correct lookup context.
		namespace, _ := srcNode.YangPrefixToNamespace(name.Space, c.modules)

		if name.Local == next.Name() && (namespace == nextNS) {
			return next
		}
	}
	return nil
}

func (c *Compiler) getDataDescendant(
	srcNode parse.Node,
	nods []parse.Node, // allowed nodes at the current level
	path []xml.Name, // path we are trying to reach
	checker func(parse.Node),
) parse.Node {

	if len(path) == 0 {
		return nil
	}

	next := c.getNext(srcNode, nods, path[0])
	if next == nil {
		return nil
	}

	checker(next)

	if len(path) == 1 {
		return next
	}

	return c.getDataDescendant(srcNode, getAugmentableNodesForModule(next),
		path[1:], checker)
}

// The YANG 1.1 refine table: only these statements may be applied to a
// refine target.
func (c *Compiler) refinementIsValid(refine, applyToNode, refinement parse.Node) error {
	if refinement.Type().IsExtensionNode() {
		return nil
	}
	switch refinement.Type() {
	case parse.NodeDescription, parse.NodeReference, parse.NodeConfig,
		parse.NodeMandatory, parse.NodePresence, parse.NodeMust,
		parse.NodeDefault, parse.NodeMinElements, parse.NodeMaxElements,
		parse.NodeIfFeature:
		return nil
	}

	return fmt.Errorf("invalid refinement %s for statement %s",
		refinement.Type(), applyToNode.Statement())
}

func (c *Compiler) augmentationIsValid(node, ref parse.Node) error {
	switch node.Type() {
	// The target node MUST be a container, list, choice, case, input,
	// output, or notification node.
	case parse.NodeContainer, parse.NodeList, parse.NodeChoice, parse.NodeCase,
		parse.NodeInput, parse.NodeOutput, parse.NodeNotification:
		return nil

	default:
		return fmt.Errorf("augment not permitted for target %s", node.Type())
	}
}

func (c *Compiler) applyChange(modifier, applyToNode, refinement parse.Node) {
	switch modifier.Type() {
	case parse.NodeRefine:
		if err := c.refinementIsValid(modifier, applyToNode, refinement); err != nil {
			c.error(modifier, err)
			return
		}
	case parse.NodeAugment:
		if err := c.augmentationIsValid(applyToNode, refinement); err != nil {
			c.error(modifier, err)
			return
		}
	default:
		c.error(modifier, fmt.Errorf("unexpected modifier: %s", modifier.Type()))
	}

	switch applyToNode.GetCardinalityEnd(refinement.Type()) {
	case '0':
		// Skip unknown extensions
	case '1':
		applyToNode.ReplaceChildByType(refinement.Type(), refinement)
	case 'n':
		applyToNode.AddChildren(refinement)
	default:
		c.error(modifier,
			fmt.Errorf("invalid refinement %s for statement %s",
				refinement.Type(), applyToNode.Statement()))
	}
}

// Certain statements on a uses or augment apply to each produced child.
// The 'when' statements are stored on the children (which can then have
// two 'when' statements despite the cardinality of 1) but must be run as
// if on the parent, hence the special AddWhenChildren().
func inheritCommonProperties(parent, child parse.Node, fromAugment bool) {
	child.AddChildren(parent.ChildrenByType(parse.NodeIfFeature)...)
	child.AddWhenChildren(fromAugment, parent.ChildrenByType(parse.NodeWhen)...)
	child.AddChildren(parent.ChildrenByType(parse.NodeStatus)...)
}

func (c *Compiler) assertReferenceStatus(src, dst parse.Node, parentStatus schema.Status) {
	// Only check within the same module
	if src.Root() != dst.Root() {
		return
	}

	srcStatus := c.getStatus(src, parentStatus)
	dstStatus := c.getStatus(dst, schema.Current)

	if srcStatus < dstStatus {
		c.error(
			src,
			fmt.Errorf("%s node cannot reference %s node within same module",
				srcStatus, dstStatus))
	}
}

func (c *Compiler) applyUsesToNode(mod, nod, use parse.Node, parentStatus schema.Status) error {
	gname := use.ArgIdRef()

	var group parse.Node
	var ok bool

	gmod, err := use.GetModuleByPrefix(gname.Space, c.modules)
	if err != nil {
		c.error(use, err)
	}
	if gmod == mod {
		// Local grouping. Search the grouping scope of the local node,
		// not just the module globals.
		group, ok = nod.LookupGrouping(gname.Local)
	} else {
		group, ok = gmod.LookupGrouping(gname.Local)
	}
	if !ok {
		return newCompileError(ErrNotFound, use, fmt.Sprintf(
			"unknown grouping (grouping %s) referenced from %s",
			gname.Local, nod.Name()))
	}

	var assertRef func(parse.Node)
	if use.Root() == group.Root() {
		c.assertReferenceStatus(use, group, parentStatus)
		assertRef = func(dst parse.Node) {
			c.assertReferenceStatus(use, dst, parentStatus)
		}
	} else {
		assertRef = func(parse.Node) {}
	}

	// Groupings that have a uses statement as a direct descendant must be
	// expanded here; expandGroupings only deals with uses on child nodes
	// of the node passed in.
	for _, kid := range group.Children() {
		if kid.Type() == parse.NodeUses {
			if err := c.applyUsesToNode(gmod, group, kid, parentStatus); err != nil {
				return err
			}
		}
	}

	// Clone the children of the group, apply the refine statements and
	// then replace the uses node with the refined children. Replacing
	// after the refines preserves order.
	//
	// For a 'uses' in a submodule, the cloned child must be associated
	// with the submodule rather than the parent module.
	kidmod := mod
	if ur := use.Root(); ur != nil && ur.Type() == parse.NodeSubmodule {
		kidmod = c.submodules[ur.Name()].GetModule()
	}

	refinedNodes := []parse.Node{}
	for _, kid := range group.Children() {
		if !kid.Type().IsDataOrCaseNode() {
			continue
		}
		newKid := kid.Clone(kidmod)
		inheritCommonProperties(use, newKid, false)

		// Deal with a 'double' forward reference of groupings where the
		// first forward referenced grouping contains a second forward
		// reference below its top level.
		if err := c.expandGroupings(gmod, newKid, schema.Current); err != nil {
			c.error(newKid, err)
		}
		refinedNodes = append(refinedNodes, newKid)
	}

	for _, r := range use.ChildrenByType(parse.NodeRefine) {
		applyToPath := r.ArgDescendantSchema()
		applyToNode := c.getDataDescendant(
			use, refinedNodes, applyToPath, assertRef)
		if applyToNode == nil {
			c.error(r, newCompileError(ErrNotFound, r,
				"invalid path: "+xmlPathString(applyToPath)))
		}

		for _, ch := range r.Children() {
			c.applyChange(r, applyToNode, ch)
		}
	}

	status := parentStatus
	if st := use.ChildByType(parse.NodeStatus); st != nil {
		status = parseStatus(st)
	}
	for _, a := range use.ChildrenByType(parse.NodeAugment) {
		applyToPath := a.ArgDescendantSchema()
		c.applyAugment(a, refinedNodes, applyToPath, status)
	}

	nod.ReplaceChild(use, refinedNodes...)
	return nil
}
