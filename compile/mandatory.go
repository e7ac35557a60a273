// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"github.com/iptecharch/yang-compiler/schema"
)

// A non-presence container holding at least one mandatory node is itself
// mandatory: it will always exist in valid data. The flag propagates
// upward through chains of non-presence containers and stops at presence
// containers, lists and choices; a choice is only ever mandatory through
// its own mandatory statement, never through its cases.

// compileMandatoryParents walks up from a node whose mandatory state
// changed, setting (add=true) or clearing (add=false) the derived flag on
// each non-presence container parent. Propagation stops at the first
// parent that is not a non-presence container.
func compileMandatoryParents(parent schema.Node, add bool) {
	for p := parent; p != nil; p = p.Parent() {
		cont, ok := p.(schema.Container)
		if !ok {
			return
		}
		if cont.Presence() {
			return
		}
		if !add && subtreeHasMandatory(cont) {
			// Another descendant still holds the container mandatory
			return
		}
		schema.SetContainerMandatory(cont, add)
	}
}

// subtreeHasMandatory reports whether a mandatory node is reachable
// without crossing a presence container or a choice.
func subtreeHasMandatory(n schema.Node) bool {
	for _, ch := range n.Children() {
		if _, ok := ch.(schema.Choice); ok {
			if ch.Mandatory() {
				return true
			}
			continue
		}
		if cont, ok := ch.(schema.Container); ok {
			if cont.Presence() {
				continue
			}
			if subtreeHasMandatory(cont) {
				return true
			}
			continue
		}
		if ch.Mandatory() {
			return true
		}
	}
	return false
}

// propagateMandatory runs the invariant over the whole compiled set,
// post-order so nested containers bubble before their parents are
// examined.
func (c *Compiler) propagateMandatory(root schema.Node) {
	for _, ch := range root.Children() {
		c.propagateMandatory(ch)

		if _, ok := ch.(schema.Case); ok {
			continue
		}
		if cont, ok := ch.(schema.Container); ok && !cont.Presence() {
			if subtreeHasMandatory(cont) {
				schema.SetContainerMandatory(cont, true)
			}
			continue
		}
		if ch.Mandatory() {
			compileMandatoryParents(ch.Parent(), true)
		}
	}
}
