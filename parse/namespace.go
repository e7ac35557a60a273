// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package parse

import (
	"fmt"
)

type Namespace interface {
	GetNodeNamespace(mod Node, modules map[string]*Module) string
	GetNodeModulename(mod Node) string
	GetNodeSubmoduleName() string
	GetModuleByPrefix(pfx string, modules map[string]*Module) (Node, error)
	YangPrefixToNamespace(prefix string, modules map[string]*Module) (string, error)
}

func getPfxName(n Node, pfx string) (string, bool) {
	for _, i := range n.ChildrenByType(NodeImport) {
		if i.Prefix() == pfx {
			return i.Name(), true
		}
	}
	return "", false
}

func getSubmoduleNamespace(
	n Node,
	modules map[string]*Module,
) (string, error) {

	// Assumes we have already checked node is of type NodeSubmodule
	belongs := n.ChildByType(NodeBelongsTo).Name()
	if mod, ok := modules[belongs]; ok {
		return mod.mod.Ns(), nil
	}

	return "", fmt.Errorf("unable to get namespace for submodule %s", n.Name())
}

func (n *node) UsesRoot() Node {
	if n.useTree == nil {
		return n.Root()
	}
	return n.useTree.Root
}

// Get the correct namespace for a node. Nodes expanded out of a grouping
// carry a second root, UsesRoot, naming the module they are used in;
// grouping-derived nodes belong to the namespace where they are used,
// everything else to the namespace where it is defined.
func getNodeNamespaceInternal(
	n Node,
	modules map[string]*Module,
) (string, error) {

	if ur := n.UsesRoot(); ur != nil {
		if ur.Type() == NodeSubmodule {
			return getSubmoduleNamespace(ur, modules)
		}
		return ur.Ns(), nil
	} else if n.Root() != nil {
		return n.Root().Ns(), nil
	}
	return "", fmt.Errorf("unable to get namespace for %s", n.Name())
}

func (n *node) GetNodeNamespace(
	m Node,
	modules map[string]*Module,
) string {
	if ns, err := getNodeNamespaceInternal(n, modules); err == nil {
		return ns
	}
	// Parser failure scenarios and some unit tests can leave a node with
	// neither Root() nor UsesRoot(); fall back to the module in which the
	// node is used.
	if m == nil {
		return ""
	}
	return m.Ns()
}

func getNodeModulenameInternal(n Node) (string, error) {
	if n.UsesRoot() != nil {
		return n.UsesRoot().Name(), nil
	} else if n.Root() != nil {
		return n.Root().Name(), nil
	}
	return "", fmt.Errorf("unable to get module name for %s", n.Name())
}

func (n *node) GetNodeModulename(mod Node) string {
	if ns, err := getNodeModulenameInternal(n); err == nil {
		return ns
	}
	return mod.Name()
}

func (n *node) GetNodeSubmoduleName() string {
	if ur := n.UsesRoot(); ur != nil {
		if ur.Type() == NodeSubmodule {
			return ur.Name()
		}
	} else if r := n.Root(); r != nil {
		if r.Type() == NodeSubmodule {
			return r.Name()
		}
	}
	return ""
}

func (n *node) GetModuleByPrefix(
	pfx string,
	modules map[string]*Module,
) (Node, error) {

	root := n.Root()
	if pfx == "" || root.Prefix() == pfx {
		// The local prefix may be omitted or used explicitly
		return root, nil
	}
	mname, ok := getPfxName(root, pfx)
	if !ok {
		return nil, fmt.Errorf("unknown import %s", pfx)
	}

	r, ok := modules[mname]
	if !ok {
		return nil, fmt.Errorf("unknown module %s", mname)
	}
	mod, ok := r.tree.Root.(Node)
	if !ok {
		return nil, fmt.Errorf("invalid root")
	}
	return mod, nil
}

// YangPrefixToNamespace maps a prefix (local or import scope) to the
// namespace (global scope across all modules). Unprefixed names get the
// local namespace explicitly.
func (n *node) YangPrefixToNamespace(
	prefix string,
	modules map[string]*Module,
) (string, error) {

	if prefix == "" {
		return getNodeNamespaceInternal(n, modules)
	}
	moduleNode, err := n.GetModuleByPrefix(prefix, modules)
	if err != nil {
		return "", err
	}
	if moduleNode != nil {
		return moduleNode.Root().Ns(), nil
	}
	return "", fmt.Errorf("unable to map prefix '%s' to namespace", prefix)
}
