// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"fmt"
	"strings"

	"github.com/iptecharch/yang-compiler/parse"
	"github.com/iptecharch/yang-compiler/schema"
	"github.com/iptecharch/yang-compiler/xpath"
)

// The deferred resolver processes the references that only make sense
// once the rest of the schema exists: leafref targets, identityref
// derived-from closures, default value checks against fully realised
// types, choice default cases and cross-module augments. Items are
// processed to fixed point; a full sweep with no progress and a
// non-empty queue names the stragglers and fails the pass.

type deferredItem interface {
	// resolve returns true on success, false when the item must wait for
	// another sweep.
	resolve(c *Compiler) bool
	describe() string
	location() parse.Node
}

func (c *Compiler) addDeferred(item deferredItem) {
	if c.scratch {
		return
	}
	c.deferred = append(c.deferred, item)
}

// runDeferred sweeps the queue until it drains or stalls.
func (c *Compiler) runDeferred() {
	queue := c.deferred
	c.deferred = nil
	for len(queue) > 0 {
		var remaining []deferredItem
		for _, item := range queue {
			if !item.resolve(c) {
				remaining = append(remaining, item)
			}
		}
		if len(remaining) == len(queue) {
			// No progress; report every stalled item
			var msgs []string
			for _, item := range remaining {
				msgs = append(msgs, item.describe())
			}
			c.error(remaining[0].location(), newCompileError(ErrNotFound,
				remaining[0].location(),
				"unresolved references: "+strings.Join(msgs, "; ")))
		}
		queue = remaining
	}
}

// --- cross-module augments (parse-level, run at end of expansion) ---

type deferredAugment struct {
	srcMod    parse.Node
	augment   parse.Node
	targetMod parse.Node
}

func (d *deferredAugment) resolve(c *Compiler) bool {
	return c.applyDeferredAugment(d.srcMod, d.augment, d.targetMod)
}

func (d *deferredAugment) describe() string {
	return fmt.Sprintf("augment %s from module %s",
		d.augment.Argument().String(), d.srcMod.Name())
}

func (d *deferredAugment) location() parse.Node { return d.augment }

func (c *Compiler) deferAugment(srcMod, a, targetMod parse.Node) {
	c.augments = append(c.augments, &deferredAugment{
		srcMod:    srcMod,
		augment:   a,
		targetMod: targetMod,
	})
}

// resolveDeferredAugments drains the parse-level queue; it runs inside
// ExpandModules once every module's groupings and local augments are
// done.
func (c *Compiler) resolveDeferredAugments() {
	queue := c.augments
	c.augments = nil
	for len(queue) > 0 {
		var remaining []*deferredAugment
		for _, item := range queue {
			if !item.resolve(c) {
				remaining = append(remaining, item)
			}
		}
		if len(remaining) == len(queue) {
			// Best-effort enumeration: one error per unresolved target
			for _, item := range remaining[1:] {
				c.log.Errorf("unresolved %s", item.describe())
			}
			c.error(remaining[0].location(), newCompileError(ErrNotFound,
				remaining[0].location(), "unresolved "+remaining[0].describe()))
		}
		queue = remaining
	}
}

// --- leafref target resolution ---

type deferredLeafref struct {
	pnode parse.Node
	node  schema.Node
	lr    schema.Leafref
}

func (d *deferredLeafref) resolve(c *Compiler) bool {
	target := c.findLeafrefTarget(d.node, d.lr.Mach().Path())
	if target == nil {
		return false
	}
	switch target.(type) {
	case schema.Leaf, schema.LeafList:
	default:
		c.error(d.pnode, fmt.Errorf(
			"leafref path %s does not name a leaf or leaf-list",
			d.lr.Mach().GetExpr()))
	}
	effective := target.Type()
	if nested, ok := effective.(schema.Leafref); ok {
		if nested.Target() == nil {
			// The target is itself an unresolved leafref; wait for it,
			// or fail the pass if the chain is circular.
			return false
		}
		effective = nested.Target()
	}
	if effective == d.lr {
		c.error(d.pnode, newCompileError(ErrCycle, d.pnode,
			"leafref path "+d.lr.Mach().GetExpr()+" refers to itself"))
	}
	d.lr.Resolve(effective)
	return true
}

func (d *deferredLeafref) describe() string {
	return "leafref path " + d.lr.Mach().GetExpr()
}

func (d *deferredLeafref) location() parse.Node { return d.pnode }

// deferLeafrefs registers every leafref reachable from the node's type,
// including union members, for target resolution.
func (c *Compiler) deferLeafrefs(pnode parse.Node, node schema.Node, typ schema.Type) {
	switch t := typ.(type) {
	case schema.Leafref:
		c.addDeferred(&deferredLeafref{pnode: pnode, node: node, lr: t})
	case schema.Union:
		for _, member := range t.Typs() {
			c.deferLeafrefs(pnode, node, member)
		}
	}
}

// findLeafrefTarget walks a leafref path from the node carrying it.
// Relative paths climb with "../" from the node's parent; absolute paths
// start at the model set root.
func (c *Compiler) findLeafrefTarget(node schema.Node, path *xpath.Path) schema.Node {
	var cur schema.Node
	if path.Absolute {
		cur = c.modelSet
	} else {
		cur = node
		for i := 0; i < path.Up; i++ {
			if cur == nil {
				return nil
			}
			cur = cur.Parent()
		}
	}
	if cur == nil {
		return nil
	}
	for _, step := range path.Steps {
		cur = childOrChoiceChild(cur, step.Name.Local)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func childOrChoiceChild(n schema.Node, name string) schema.Node {
	if ch := n.Child(name); ch != nil {
		return ch
	}
	for _, choice := range n.Choices() {
		for _, cs := range choice.Children() {
			if hit := cs.Child(name); hit != nil {
				return hit
			}
		}
	}
	return nil
}

// --- identityref closure ---

type deferredIdentityRef struct {
	pnode parse.Node
	iref  schema.Identityref
}

func (d *deferredIdentityRef) resolve(c *Compiler) bool {
	var ids []*schema.Identity
	for _, base := range d.iref.Bases() {
		for _, derived := range base.Derived {
			ids = appendIdentity(ids, derived)
		}
	}
	schema.ResolveIdentityref(d.iref, ids)
	return true
}

func (d *deferredIdentityRef) describe() string {
	return "identityref " + d.iref.String()
}

func (d *deferredIdentityRef) location() parse.Node { return d.pnode }

func (c *Compiler) deferIdentityRef(pnode parse.Node, iref schema.Identityref) {
	if c.scratch {
		return
	}
	c.addDeferred(&deferredIdentityRef{pnode: pnode, iref: iref})
}

func appendIdentity(ids []*schema.Identity, id *schema.Identity) []*schema.Identity {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// --- default value checks ---

type deferredDefault struct {
	pnode parse.Node
	typ   schema.Type
	def   string
}

func (d *deferredDefault) resolve(c *Compiler) bool {
	if lr, ok := d.typ.(schema.Leafref); ok && lr.Target() == nil {
		// Wait until the leafref realises its effective type
		return false
	}
	if err := d.typ.Validate([]string{}, d.def); err != nil {
		c.error(d.pnode, fmt.Errorf("invalid default '%s' for %s: %s",
			d.def, typeName(d.typ), err))
	}
	return true
}

func (d *deferredDefault) describe() string {
	return fmt.Sprintf("default '%s'", d.def)
}

func (d *deferredDefault) location() parse.Node { return d.pnode }

func typeName(t schema.Type) string {
	n := t.Name()
	if n.Space != "" && n.Space != "builtin" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

func (c *Compiler) deferDefaultCheck(pnode parse.Node, typ schema.Type, def string) {
	if c.scratch {
		return
	}
	c.addDeferred(&deferredDefault{pnode: pnode, typ: typ, def: def})
}

// --- choice default case ---

type deferredChoiceDefault struct {
	pnode  parse.Node
	choice schema.Choice
}

func (d *deferredChoiceDefault) resolve(c *Compiler) bool {
	def := d.choice.DefaultCase()
	for _, cs := range d.choice.Children() {
		if cs.Name() == def {
			if err := schema.ResolveChoiceDefaultCase(d.choice, cs); err != nil {
				c.error(d.pnode, err)
			}
			return true
		}
	}
	c.error(d.pnode, newCompileError(ErrNotFound, d.pnode,
		fmt.Sprintf("choice default %s not found", def)))
	return false
}

func (d *deferredChoiceDefault) describe() string {
	return "choice default " + d.choice.DefaultCase()
}

func (d *deferredChoiceDefault) location() parse.Node { return d.pnode }

func (c *Compiler) deferChoiceDefault(pnode parse.Node, choice schema.Choice) {
	if c.scratch {
		return
	}
	c.addDeferred(&deferredChoiceDefault{pnode: pnode, choice: choice})
}

// resolveDeferred runs the build-level queue against the assembled model
// set: identity closures first since identityrefs depend on them, then
// everything else to fixed point.
func (c *Compiler) resolveDeferred(ms schema.ModelSet) (err error) {
	defer c.recover(&err)

	c.modelSet = ms
	c.closeIdentityDerivedSets()
	c.runDeferred()
	return nil
}
