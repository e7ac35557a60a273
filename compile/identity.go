// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"fmt"

	"github.com/iptecharch/yang-compiler/parse"
	"github.com/iptecharch/yang-compiler/schema"
)

// checkIdentities builds the module-set-wide identity table: duplicate
// detection, base resolution (multiple bases are YANG 1.1) and cycle
// detection over the base graph. The derived-from closure is back-filled
// later, during deferred resolution.
func (c *Compiler) checkIdentities() {
	ids := make(map[string]parse.Node)

	// Get all identities, check for duplicates
	for _, module := range c.modules {
		mod := module.GetModule()
		for _, ident := range mod.ChildrenByType(parse.NodeIdentity) {
			name := mod.Name() + ":" + ident.Name()
			if _, ok := ids[name]; ok {
				c.error(ident, fmt.Errorf("duplicate identity %s in module %s",
					ident.Name(), mod.Name()))
			}
			ids[name] = ident

			if c.IgnoreNode(ident, schema.Current) {
				continue
			}
			sid := schema.NewIdentity(
				mod.Name(),
				mod.Ns(),
				ident.Name(),
				ident.Desc(),
				ident.Ref(),
				c.getStatus(ident, schema.Current),
				c.extensionInstances(ident),
			)
			c.schemaIdentities[name] = sid
			c.moduleIdentities[mod.Name()] =
				append(c.moduleIdentities[mod.Name()], sid)
		}
	}
	c.identities = ids

	// Resolve bases, linking each identity towards the roots of its
	// derivation
	for name, ident := range ids {
		sid, ok := c.schemaIdentities[name]
		if !ok {
			continue
		}
		for _, base := range ident.ChildrenByType(parse.NodeBase) {
			mod, tIdent := c.getModuleAndReference(
				ident.Root(), base, base.Argument().String(), parse.NodeIdentity)
			tname := mod.Name() + ":" + tIdent.Name()
			tid, ok := c.schemaIdentities[tname]
			if !ok {
				c.error(ident, newCompileError(ErrNotFound, ident, fmt.Sprintf(
					"can't find base identity %s for identity %s",
					base.Name(), name)))
			}
			c.assertReferenceStatus(ident, tIdent, schema.Current)
			sid.Bases = append(sid.Bases, tid)
		}
	}

	// Check there are no cyclic references
	for name := range c.schemaIdentities {
		c.identityCheckCyclicRef(name, make(map[string]bool))
	}
}

func (c *Compiler) identityCheckCyclicRef(name string, visited map[string]bool) {
	if visited[name] {
		c.error(c.identities[name], newCompileError(ErrCycle,
			c.identities[name], "identity cyclic reference "+name))
	}
	visited[name] = true

	id := c.schemaIdentities[name]
	for _, base := range id.Bases {
		c.identityCheckCyclicRef(base.Name.Space+":"+base.Name.Local, visited)
	}
	delete(visited, name)
}

// closeIdentityDerivedSets back-fills the derived-from sets, sweeping
// until stable: an identity is derived from its bases and, transitively,
// from everything they are derived from.
func (c *Compiler) closeIdentityDerivedSets() {
	for {
		changed := false
		for _, id := range c.schemaIdentities {
			for _, base := range id.Bases {
				if base.AddDerived(id) {
					changed = true
				}
				for _, d := range id.Derived {
					if base.AddDerived(d) {
						changed = true
					}
				}
			}
		}
		if !changed {
			return
		}
	}
}
