// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kylelemons/godebug/pretty"

	"github.com/iptecharch/yang-compiler/schema"
)

// nodeShape is the observable projection of a compiled node used to
// compare two independent compilations of the same module.
type nodeShape struct {
	Name      string
	Namespace string
	Kind      string
	Config    bool
	Mandatory bool
	Status    schema.Status
	Default   string
	HasDef    bool
	OrdBy     string
	Presence  bool
	Exts      []string
	Children  []nodeShape
}

func kindOf(n schema.Node) string {
	switch n.(type) {
	case schema.Container:
		return "container"
	case schema.List:
		return "list"
	case schema.LeafList:
		return "leaf-list"
	case schema.Leaf:
		return "leaf"
	case schema.Choice:
		return "choice"
	case schema.Case:
		return "case"
	case schema.AnyXml:
		return "anyxml"
	case schema.AnyData:
		return "anydata"
	default:
		return "node"
	}
}

func shapeOf(n schema.Node) nodeShape {
	s := nodeShape{
		Name:      n.Name(),
		Namespace: n.Namespace(),
		Kind:      kindOf(n),
		Config:    n.Config(),
		Mandatory: n.Mandatory(),
		Status:    n.Status(),
		OrdBy:     n.OrdBy(),
		Presence:  n.HasPresence(),
	}
	if t := n.Type(); t != nil {
		s.Default, s.HasDef = t.Default()
	}
	for _, e := range n.Extensions() {
		s.Exts = append(s.Exts, e.String())
	}
	for _, ch := range n.Children() {
		s.Children = append(s.Children, shapeOf(ch))
	}
	return s
}

// Compiling a module twice into two fresh contexts yields structurally
// identical compiled trees.
func TestCompilationIsIdempotent(t *testing.T) {
	snippet := `
	feature extras;
	typedef percent {
		type uint8 {
			range "0..100";
		}
		default "50";
	}
	container cfg {
		presence "configured";
		leaf load {
			type percent;
		}
		leaf-list tags {
			type string;
			ordered-by user;
		}
		list members {
			key "id";
			leaf id {
				type uint32;
			}
			leaf role {
				type enumeration {
					enum admin;
					enum user;
				}
				mandatory true;
			}
		}
		choice mode {
			default plain;
			case plain {
				leaf compat {
					type boolean;
				}
			}
			leaf fancy {
				type empty;
			}
		}
	}`

	first := expectSuccess(t, snippet)
	second := expectSuccess(t, snippet)

	a := shapeOf(first.Child("cfg"))
	b := shapeOf(second.Child("cfg"))

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("independent compilations differ (-first +second):\n%s", diff)
	}
}

// The projection itself is stable against a reference shape, pinning the
// compiled structure of a representative module.
func TestCompiledShape(t *testing.T) {
	ms := expectSuccess(t, `
	container box {
		leaf item {
			type string;
			mandatory true;
		}
	}`)

	got := shapeOf(ms.Child("box"))
	want := nodeShape{
		Name:      "box",
		Namespace: "urn:iptecharch:test:test-yang-compile",
		Kind:      "container",
		Config:    true,
		Mandatory: true, // derived from the mandatory leaf below
		OrdBy:     "system",
		Children: []nodeShape{{
			Name:      "item",
			Namespace: "urn:iptecharch:test:test-yang-compile",
			Kind:      "leaf",
			Config:    true,
			Mandatory: true,
			OrdBy:     "system",
		}},
	}

	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("compiled shape mismatch (-got +want):\n%s", diff)
	}
}
