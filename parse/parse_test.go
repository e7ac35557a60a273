// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package parse

import (
	"strings"
	"testing"
)

func parseModule(t *testing.T, text string) *Tree {
	t.Helper()
	tree, err := Parse("test", text, nil)
	if err != nil {
		t.Fatalf("unexpected parse failure: %s", err)
	}
	return tree
}

func parseError(t *testing.T, text, errtext string) {
	t.Helper()
	_, err := Parse("test", text, nil)
	if err == nil {
		t.Fatalf("parse unexpectedly succeeded")
	}
	if !strings.Contains(err.Error(), errtext) {
		t.Fatalf("wrong error.\n  got: %s\n  want substring: %s", err, errtext)
	}
}

const moduleHeader = `
module test-parse {
	namespace "urn:test:parse";
	prefix tp;
`

func TestParseMinimalModule(t *testing.T) {
	tree := parseModule(t, moduleHeader+`}`)

	root := tree.Root
	if root.Type() != NodeModule {
		t.Fatalf("root is not a module: %s", root.Type())
	}
	if root.Name() != "test-parse" {
		t.Errorf("wrong module name: %s", root.Name())
	}
	if root.Ns() != "urn:test:parse" {
		t.Errorf("wrong namespace: %s", root.Ns())
	}
	if root.Prefix() != "tp" {
		t.Errorf("wrong prefix: %s", root.Prefix())
	}
}

func TestParseStatementKinds(t *testing.T) {
	tree := parseModule(t, moduleHeader+`
	container c {
		leaf l {
			type string;
		}
		leaf-list ll {
			type uint8;
		}
		list lst {
			key "k";
			leaf k {
				type string;
			}
		}
		choice ch {
			case a {
				leaf inA {
					type empty;
				}
			}
		}
		anyxml ax;
		anydata ad;
	}
}`)

	c := tree.Root.ChildByType(NodeContainer)
	if c == nil {
		t.Fatalf("container not parsed")
	}
	wantKinds := map[string]NodeType{
		"l":   NodeLeaf,
		"ll":  NodeLeafList,
		"lst": NodeList,
		"ch":  NodeChoice,
		"ax":  NodeAnyxml,
		"ad":  NodeAnydata,
	}
	for name, kind := range wantKinds {
		if got := c.LookupChild(kind, name); got == nil {
			t.Errorf("%s (%s) not parsed", name, kind)
		}
	}
}

func TestParseQuotedStringConcatenation(t *testing.T) {
	tree := parseModule(t, moduleHeader+`
	leaf l {
		type string;
		description "first part" + " second part";
	}
}`)

	l := tree.Root.ChildByType(NodeLeaf)
	if got := l.Desc(); got != "first part second part" {
		t.Errorf("concatenation failed: %q", got)
	}
}

func TestParseSingleQuotedStringIsLiteral(t *testing.T) {
	tree := parseModule(t, moduleHeader+`
	leaf l {
		type string;
		description 'no \n escapes here';
	}
}`)

	l := tree.Root.ChildByType(NodeLeaf)
	if got := l.Desc(); got != `no \n escapes here` {
		t.Errorf("single quoted string was transformed: %q", got)
	}
}

func TestParseDoubleQuotedEscapes(t *testing.T) {
	tree := parseModule(t, moduleHeader+`
	leaf l {
		type string;
		description "tab\there";
	}
}`)

	l := tree.Root.ChildByType(NodeLeaf)
	if got := l.Desc(); got != "tab\there" {
		t.Errorf("escape substitution failed: %q", got)
	}
}

func TestParseComments(t *testing.T) {
	tree := parseModule(t, moduleHeader+`
	// line comment
	/* block
	   comment */
	leaf l {
		type string; // trailing
	}
}`)

	if tree.Root.ChildByType(NodeLeaf) == nil {
		t.Errorf("statements around comments were lost")
	}
}

func TestParseCardinalityViolation(t *testing.T) {
	parseError(t, `
module test-parse {
	namespace "urn:one";
	namespace "urn:two";
	prefix tp;
}`,
		"only one 'namespace' statement is allowed")
}

func TestParseMissingNamespace(t *testing.T) {
	parseError(t, `
module test-parse {
	prefix tp;
}`,
		"missing required 'namespace' statement")
}

func TestParseInvalidSubstatement(t *testing.T) {
	parseError(t, moduleHeader+`
	leaf l {
		type string;
		key "nonsense";
	}
}`,
		"invalid substatement")
}

func TestParseBadIdentifier(t *testing.T) {
	parseError(t, moduleHeader+`
	leaf 9starts-with-digit {
		type string;
	}
}`,
		"invalid identifier")
}

func TestParseHeaderOrderEnforced(t *testing.T) {
	parseError(t, `
module test-parse {
	namespace "urn:test:parse";
	prefix tp;
	leaf early {
		type string;
	}
	import other {
		prefix o;
	}
}`,
		"unexpected linkage statement")
}

func TestParseRevisionOrder(t *testing.T) {
	parseError(t, moduleHeader+`
	revision 2020-01-01;
	revision 2024-01-01;
}`,
		"revision block out of order")
}

func TestParseTypedefShadowingRejected(t *testing.T) {
	parseError(t, moduleHeader+`
	typedef mytype {
		type string;
	}
	container c {
		typedef mytype {
			type uint8;
		}
	}
}`,
		"cannot shadow")
}

func TestParseUnknownStatementBecomesExtension(t *testing.T) {
	tree := parseModule(t, moduleHeader+`
	container c {
		ex:marker "value";
	}
}`)

	c := tree.Root.ChildByType(NodeContainer)
	unknown := c.ChildByType(NodeUnknown)
	if unknown == nil {
		t.Fatalf("prefixed statement should parse as an extension instance")
	}
	if unknown.Statement() != "ex:marker" {
		t.Errorf("wrong keyword: %s", unknown.Statement())
	}
	if unknown.Argument().String() != "value" {
		t.Errorf("wrong argument: %s", unknown.Argument().String())
	}
}

func TestParseRangeArgument(t *testing.T) {
	tree := parseModule(t, moduleHeader+`
	leaf l {
		type int32 {
			range "1..10 | 20 | min..max";
		}
	}
}`)

	typ := tree.Root.ChildByType(NodeLeaf).ChildByType(NodeTyp)
	rng := typ.ChildByType(NodeRange)
	rbs := rng.ArgRange()
	if len(rbs) != 3 {
		t.Fatalf("wrong number of range parts: %d", len(rbs))
	}
	if rbs[0].Start != "1" || rbs[0].End != "10" {
		t.Errorf("wrong first range: %+v", rbs[0])
	}
	if rbs[1].Start != "20" || rbs[1].End != "20" {
		t.Errorf("single value should set both bounds: %+v", rbs[1])
	}
	if !rbs[2].Min || !rbs[2].Max {
		t.Errorf("min..max flags lost: %+v", rbs[2])
	}
}

func TestParseUniqueArgument(t *testing.T) {
	tree := parseModule(t, moduleHeader+`
	list l {
		key "k";
		unique "a b/c";
		leaf k {
			type string;
		}
		leaf a {
			type string;
		}
		container b {
			leaf c {
				type string;
			}
		}
	}
}`)

	uniq := tree.Root.ChildByType(NodeList).ChildByType(NodeUnique)
	paths := uniq.ArgUnique()
	if len(paths) != 2 {
		t.Fatalf("wrong number of unique paths: %d", len(paths))
	}
	if len(paths[1]) != 2 || paths[1][1].Local != "c" {
		t.Errorf("wrong descendant path: %+v", paths[1])
	}
}

func TestStringInterning(t *testing.T) {
	si := NewStringInterner()
	a := si.Intern("leaf")
	b := si.Intern("leaf")
	if a != b {
		t.Errorf("interned strings differ")
	}
}

func TestArgInterning(t *testing.T) {
	ai := NewArgInterner()
	first := ai.Intern(NodePattern, getArgByType(NodePattern, "[a-z]+"))
	second := ai.Intern(NodePattern, getArgByType(NodePattern, "[a-z]+"))
	if first != second {
		t.Errorf("same pattern text should intern to one argument")
	}
	other := ai.Intern(NodePattern, getArgByType(NodePattern, "[0-9]+"))
	if first == other {
		t.Errorf("different pattern text must not be shared")
	}
}

func TestImplicitRpcInputOutput(t *testing.T) {
	tree := parseModule(t, moduleHeader+`
	rpc doit;
}`)

	rpc := tree.Root.ChildByType(NodeRpc)
	if rpc.ChildByType(NodeInput) == nil {
		t.Errorf("implicit input not materialised")
	}
	if rpc.ChildByType(NodeOutput) == nil {
		t.Errorf("implicit output not materialised")
	}
}

func TestCloneIsDeep(t *testing.T) {
	tree := parseModule(t, moduleHeader+`
	grouping g {
		container c {
			leaf l {
				type string;
			}
		}
	}
}`)

	g := tree.Root.ChildByType(NodeGrouping)
	clone := g.Clone(tree.Root)

	// Removing a nested node from the clone must not touch the original
	inner := clone.ChildByType(NodeContainer)
	inner.ReplaceChild(inner.ChildByType(NodeLeaf))
	if g.ChildByType(NodeContainer).ChildByType(NodeLeaf) == nil {
		t.Errorf("clone shares children with the original")
	}
}
