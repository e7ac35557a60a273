// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"encoding/xml"
	"strings"

	"github.com/iptecharch/yang-compiler/parse"
	"github.com/iptecharch/yang-compiler/schema"
)

// extensionInstances collects the extension statements attached to one
// parsed statement, in source order, as compiled extension instances.
// Every compiled artifact - node, type, restriction, when, must, model -
// gets the instances of the statement it was compiled from, so the
// printer can emit them back exactly where and in the order they were
// written.
func (c *Compiler) extensionInstances(n parse.Node) []schema.ExtensionInstance {
	var out []schema.ExtensionInstance
	for _, ch := range n.Children() {
		if !ch.Type().IsExtensionNode() {
			continue
		}
		out = append(out, c.extensionInstance(ch))
	}
	return out
}

// statementExtensions gathers the extension instances attached to the
// simple substatements of a node: the statements that compile into plain
// fields rather than artifacts of their own.
func (c *Compiler) statementExtensions(n parse.Node) map[string][]schema.ExtensionInstance {
	var out map[string][]schema.ExtensionInstance
	for _, ch := range n.Children() {
		switch ch.Type() {
		case parse.NodeDescription, parse.NodeReference, parse.NodeUnits,
			parse.NodeDefault, parse.NodeStatus, parse.NodeConfig,
			parse.NodeMandatory, parse.NodePresence, parse.NodeMinElements,
			parse.NodeMaxElements, parse.NodeOrderedBy, parse.NodeKey,
			parse.NodeUnique, parse.NodeIfFeature:
		default:
			continue
		}
		exts := c.extensionInstances(ch)
		if len(exts) == 0 {
			continue
		}
		if out == nil {
			out = make(map[string][]schema.ExtensionInstance)
		}
		out[ch.Statement()] = append(out[ch.Statement()], exts...)
	}
	return out
}

func (c *Compiler) extensionInstance(n parse.Node) schema.ExtensionInstance {
	keyword := n.Statement()
	var name xml.Name
	if idx := strings.Index(keyword, ":"); idx >= 0 {
		name = xml.Name{Space: keyword[:idx], Local: keyword[idx+1:]}
	} else {
		name = xml.Name{Local: keyword}
	}

	arg := n.Argument().String()

	return schema.ExtensionInstance{
		Keyword:       name,
		Argument:      arg,
		HasArgument:   arg != "",
		SubStatements: c.extensionInstances(n),
	}
}
