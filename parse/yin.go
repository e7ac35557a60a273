// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package parse

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// YinNamespace is the XML namespace of YIN statements (RFC 7950 sec 13).
const YinNamespace = "urn:ietf:params:xml:ns:yang:yin:1"

// yinArg describes how a YANG statement's argument is encoded in YIN:
// as a named attribute, or as a named child element (yin-element true).
type yinArg struct {
	name    string
	element bool
}

var yinArgs = map[string]yinArg{
	"module":           {"name", false},
	"submodule":        {"name", false},
	"namespace":        {"uri", false},
	"prefix":           {"value", false},
	"import":           {"module", false},
	"include":          {"module", false},
	"revision":         {"date", false},
	"revision-date":    {"date", false},
	"yang-version":     {"value", false},
	"belongs-to":       {"module", false},
	"typedef":          {"name", false},
	"type":             {"name", false},
	"container":        {"name", false},
	"leaf":             {"name", false},
	"leaf-list":        {"name", false},
	"list":             {"name", false},
	"choice":           {"name", false},
	"case":             {"name", false},
	"anyxml":           {"name", false},
	"anydata":          {"name", false},
	"grouping":         {"name", false},
	"uses":             {"name", false},
	"augment":          {"target-node", false},
	"refine":           {"target-node", false},
	"rpc":              {"name", false},
	"action":           {"name", false},
	"notification":     {"name", false},
	"identity":         {"name", false},
	"base":             {"name", false},
	"extension":        {"name", false},
	"argument":         {"name", false},
	"feature":          {"name", false},
	"if-feature":       {"name", false},
	"must":             {"condition", false},
	"when":             {"condition", false},
	"presence":         {"value", false},
	"config":           {"value", false},
	"status":           {"value", false},
	"default":          {"value", false},
	"units":            {"name", false},
	"mandatory":        {"value", false},
	"min-elements":     {"value", false},
	"max-elements":     {"value", false},
	"ordered-by":       {"value", false},
	"key":              {"value", false},
	"unique":           {"tag", false},
	"range":            {"value", false},
	"length":           {"value", false},
	"pattern":          {"value", false},
	"modifier":         {"value", false},
	"enum":             {"name", false},
	"bit":              {"name", false},
	"path":             {"value", false},
	"fraction-digits":  {"value", false},
	"require-instance": {"value", false},
	"position":         {"value", false},
	"value":            {"value", false},
	"error-app-tag":    {"value", false},
	"yin-element":      {"value", false},
	"contact":          {"text", true},
	"organization":     {"text", true},
	"description":      {"text", true},
	"reference":        {"text", true},
	"error-message":    {"value", true},
}

// yinElement is the generic element tree the XML decoder produces before
// conversion to parse nodes.
type yinElement struct {
	name     xml.Name
	attrs    []xml.Attr
	text     string
	children []*yinElement
	pos      Pos
}

// ParseYin reads a module in the XML encoding of YANG and produces the
// same parse tree the YANG reader would.
func ParseYin(name, text string, extCard NodeCardinality) (*Tree, error) {
	return ParseYinWithInterners(name, text, extCard,
		NewStringInterner(), NewArgInterner())
}

func ParseYinWithInterners(
	name, text string,
	extCard NodeCardinality,
	stringInterner *StringInterner,
	argInterner *ArgInterner,
) (t *Tree, err error) {

	t = NewWithInterners(name, extCard, stringInterner, argInterner)
	t.text = text
	defer t.done()
	defer t.recover(&err)

	root, prefixes, perr := decodeYinDocument(text)
	if perr != nil {
		return nil, fmt.Errorf("yin: %s: %s", name, perr)
	}

	conv := &yinConverter{tree: t, prefixes: prefixes}
	t.Root = conv.statement(root, OpenScope(nil))

	if serr, pos := t.Root.buildSymbols(); serr != nil {
		s, _ := t.ErrorContextPosition(int(pos), "")
		return nil, fmt.Errorf("%s: %s", s, serr)
	}
	return t, nil
}

func decodeYinDocument(text string) (*yinElement, map[string]string, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	prefixes := make(map[string]string)

	var stack []*yinElement
	var root *yinElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			e := &yinElement{
				name: el.Name,
				pos:  Pos(dec.InputOffset()),
			}
			for _, a := range el.Attr {
				if a.Name.Space == "xmlns" {
					// xmlns:pfx="uri" maps uri back to the document's
					// prefix so extension keywords can be reconstructed
					prefixes[a.Value] = a.Name.Local
					continue
				}
				if a.Name.Space == "" && a.Name.Local == "xmlns" {
					continue
				}
				e.attrs = append(e.attrs, a)
			}
			if len(stack) == 0 {
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(el)
			}
		}
	}
	if root == nil {
		return nil, nil, fmt.Errorf("no root element")
	}
	return root, prefixes, nil
}

type yinConverter struct {
	tree     *Tree
	prefixes map[string]string
}

func (c *yinConverter) statement(e *yinElement, s *Scope) Node {
	var keyword string
	var arg string
	var argFound bool
	children := e.children

	if e.name.Space == YinNamespace {
		keyword = e.name.Local
		spec, ok := yinArgs[keyword]
		if !ok {
			c.errorf(e, "unknown statement %s", keyword)
		}
		if spec.element {
			rest := make([]*yinElement, 0, len(children))
			for _, ch := range children {
				if !argFound && ch.name.Space == YinNamespace &&
					ch.name.Local == spec.name {
					arg = ch.text
					argFound = true
					continue
				}
				rest = append(rest, ch)
			}
			children = rest
		} else {
			for _, a := range e.attrs {
				if a.Name.Space == "" && a.Name.Local == spec.name {
					arg = a.Value
					argFound = true
				}
			}
		}
	} else {
		// Extension instance: reconstruct the prefixed keyword from the
		// document's own namespace declarations. The argument, if any, is
		// either the single plain attribute or the first text-only child
		// element in the extension's namespace.
		pfx, ok := c.prefixes[e.name.Space]
		if !ok {
			c.errorf(e, "unknown namespace %s", e.name.Space)
		}
		keyword = pfx + ":" + e.name.Local
		for _, a := range e.attrs {
			if a.Name.Space == "" {
				arg = a.Value
				argFound = true
				break
			}
		}
		if !argFound {
			rest := make([]*yinElement, 0, len(children))
			for _, ch := range children {
				if !argFound && len(ch.children) == 0 && len(ch.attrs) == 0 &&
					strings.TrimSpace(ch.text) != "" {
					arg = strings.TrimSpace(ch.text)
					argFound = true
					continue
				}
				rest = append(rest, ch)
			}
			children = rest
		}
	}

	ns := OpenScope(s)
	body := make([]Node, 0, len(children))
	for _, ch := range children {
		body = append(body, c.statement(ch, ns))
	}
	if len(body) == 0 {
		body = nil
	}

	n := c.tree.NewNode(item{pos: e.pos, val: keyword}, arg, body, s)
	if err := n.check(); err != nil {
		loc, _ := n.ErrorContext()
		panic(fmt.Errorf("%s: %s", loc, err))
	}
	return n
}

func (c *yinConverter) errorf(e *yinElement, format string, args ...interface{}) {
	loc, _ := c.tree.ErrorContextPosition(int(e.pos), "")
	panic(fmt.Errorf("%s: "+format, append([]interface{}{loc}, args...)...))
}
