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

// applyAugment re-targets the augment's children onto the node named by
// applyToPath. The status of introduced nodes is capped by the status of
// the augment; the augment's when attaches to every introduced node,
// evaluated against the augment target.
func (c *Compiler) applyAugment(
	a parse.Node,
	allowedNodes []parse.Node,
	applyToPath []xml.Name,
	parentStatus schema.Status,
) {

	assertRef := func(dst parse.Node) {
		c.assertReferenceStatus(a, dst, parentStatus)
	}

	applyToNode := c.getDataDescendant(a, allowedNodes, applyToPath, assertRef)

	if applyToNode == nil {
		c.error(a, newCompileError(ErrNotFound, a,
			"invalid path: "+xmlPathString(applyToPath)))
		return
	}

	c.assertReferenceStatus(a, applyToNode, parentStatus)

	for _, ch := range a.Children() {
		if ch.Type() == parse.NodeCase && applyToNode.Type() != parse.NodeChoice {
			c.error(a, fmt.Errorf(
				"case %s can only augment a choice", ch.Name()))
		}
		if ch.Type().IsDataOrCaseNode() || ch.Type().IsExtensionNode() ||
			ch.Type() == parse.NodeAction || ch.Type() == parse.NodeNotification {
			inheritCommonProperties(a, ch, true)
			c.applyChange(a, applyToNode, ch)
		}
	}
	for _, kid := range a.Children() {
		if kid.Type() == parse.NodeUses {
			// Handle a uses within an augment which is augmenting a node
			// in a parent uses
			applyToMod, _ := kid.GetModuleByPrefix(
				applyToPath[0].Space, c.modules)
			if err := c.expandGroupings(applyToMod, applyToNode, schema.Current); err != nil {
				c.error(applyToNode, err)
				return
			}
		}
	}
}

// applyDeferredAugment is the deferred-phase form for augments that
// target another module. By the time it runs every module's expansion
// has completed, so the target path either resolves or never will.
func (c *Compiler) applyDeferredAugment(srcMod, a parse.Node, targetMod parse.Node) bool {
	applyToPath := a.ArgSchema()
	allowedNodes := getAugmentableNodesForModule(targetMod)

	assertRef := func(parse.Node) {}
	applyToNode := c.getDataDescendant(a, allowedNodes, applyToPath, assertRef)
	if applyToNode == nil {
		return false
	}

	for _, ch := range a.Children() {
		if ch.Type().IsDataOrCaseNode() || ch.Type().IsExtensionNode() ||
			ch.Type() == parse.NodeAction || ch.Type() == parse.NodeNotification {
			inheritCommonProperties(a, ch, true)
			c.applyChange(a, applyToNode, ch)
		}
	}
	return true
}
