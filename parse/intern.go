// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package parse

// StringInterner deduplicates the strings that participate in identity
// comparison across a working set of modules: statement keywords, node
// names, prefixes, feature and identity names, enum and bit labels.
// Interning lets qualified-name comparison reduce to value equality over
// canonical strings, and keeps a multi-module parse from holding thousands
// of copies of the same keyword.
type StringInterner struct {
	strings map[string]string
}

func NewStringInterner() *StringInterner {
	return &StringInterner{strings: make(map[string]string)}
}

func (si *StringInterner) Intern(s string) string {
	if canon, ok := si.strings[s]; ok {
		return canon
	}
	si.strings[s] = s
	return s
}

// ArgInterner deduplicates parsed statement arguments by statement kind
// and source text. Shared arguments mean shared parse results: a pattern
// argument used by twenty typedefs is compiled once and every node holds
// the same compiled form.
type ArgInterner struct {
	args map[NodeType]map[string]Argument
}

func NewArgInterner() *ArgInterner {
	return &ArgInterner{args: make(map[NodeType]map[string]Argument)}
}

func (ai *ArgInterner) Intern(t NodeType, a Argument) Argument {
	byText, ok := ai.args[t]
	if !ok {
		byText = make(map[string]Argument)
		ai.args[t] = byText
	}
	if canon, ok := byText[a.String()]; ok {
		return canon
	}
	byText[a.String()] = a
	return a
}
