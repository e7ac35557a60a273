// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// This file provides test utilities for creating full schemas from
// snippets of YANG. This allows tests to clearly specify the YANG under
// test without it being lost in the noise of the boilerplate, and easily
// allows for multiple modules.

package testutils

import (
	"fmt"

	"github.com/iptecharch/yang-compiler/compile"
	"github.com/iptecharch/yang-compiler/parse"
	"github.com/iptecharch/yang-compiler/schema"
)

const schemaImportTemplate = `
	import %s {
	    prefix %s;
    }
`

const schemaIncludeTemplate = `
	include %s;
`

const schemaModuleTemplate = `
module %s {
	namespace "urn:iptecharch:test:%s";
	prefix %s;
    %s
    %s
	organization "iptecharch";
	revision 2024-06-18 {
		description "Test schema";
	}
	%s
}
`

const schemaSubmoduleTemplate = `
submodule %s {
	belongs-to %s {
		prefix %s;
	}
	%s
	%s
}
`

// TestSchema describes one module of a multi-module test working set.
type TestSchema struct {
	Name          NameDef
	Imports       []NameDef
	Includes      []string
	BelongsTo     NameDef
	Prefix        string
	SchemaSnippet string
}

type NameDef struct {
	Namespace string
	Prefix    string
}

func NewTestSchema(namespace, prefix string) *TestSchema {
	return &TestSchema{Name: NameDef{Namespace: namespace, Prefix: prefix}}
}

func (ts *TestSchema) AddImport(namespace, prefix string) *TestSchema {
	ts.Imports = append(ts.Imports, NameDef{Namespace: namespace, Prefix: prefix})
	return ts
}

func (ts *TestSchema) AddInclude(module string) *TestSchema {
	ts.Includes = append(ts.Includes, module)
	return ts
}

func (ts *TestSchema) AddBelongsTo(namespace, prefix string) *TestSchema {
	ts.BelongsTo.Namespace = namespace
	ts.BelongsTo.Prefix = prefix
	return ts
}

func (ts *TestSchema) AddSchemaSnippet(snippet string) *TestSchema {
	ts.SchemaSnippet = snippet
	return ts
}

func ConstructSchema(schemaDef TestSchema) (schema string) {
	var importStr, includeStr string

	for _, inc := range schemaDef.Includes {
		includeStr = includeStr + fmt.Sprintf(schemaIncludeTemplate, inc)
	}

	if schemaDef.BelongsTo.Namespace != "" {
		schema = fmt.Sprintf(schemaSubmoduleTemplate,
			schemaDef.Name.Namespace,
			schemaDef.BelongsTo.Namespace, schemaDef.BelongsTo.Prefix,
			includeStr, schemaDef.SchemaSnippet)
		return schema
	}

	for _, imp := range schemaDef.Imports {
		importStr = importStr + fmt.Sprintf(
			schemaImportTemplate, imp.Namespace, imp.Prefix)
	}

	schema = fmt.Sprintf(schemaModuleTemplate,
		schemaDef.Name.Namespace, schemaDef.Name.Namespace,
		schemaDef.Name.Prefix,
		importStr, includeStr,
		schemaDef.SchemaSnippet)

	return schema
}

// ParseModuleTexts parses a set of standalone module texts into one
// working set with shared interners.
func ParseModuleTexts(texts ...string) (map[string]*parse.Tree, error) {
	trees := make(map[string]*parse.Tree)
	si := parse.NewStringInterner()
	ai := parse.NewArgInterner()
	for i, text := range texts {
		name := fmt.Sprintf("schema%d", i)
		t, err := parse.ParseWithInterners(name, text, nil, si, ai)
		if err != nil {
			return nil, err
		}
		trees[t.Root.Argument().String()] = t
	}
	return trees, nil
}

// CompileSchemas builds the full working set described by the test
// schemas and compiles it with default configuration.
func CompileSchemas(schemas ...TestSchema) (schema.ModelSet, error) {
	return CompileSchemasWithConfig(&compile.Config{}, schemas...)
}

func CompileSchemasWithConfig(
	cfg *compile.Config,
	schemas ...TestSchema,
) (schema.ModelSet, error) {

	texts := make([]string, 0, len(schemas))
	for _, s := range schemas {
		texts = append(texts, ConstructSchema(s))
	}
	trees, err := ParseModuleTexts(texts...)
	if err != nil {
		return nil, err
	}
	return compile.CompileModules(nil, cfg, trees)
}

// CompileSnippet wraps a single snippet in the standard test module and
// compiles it.
func CompileSnippet(snippet string) (schema.ModelSet, error) {
	return CompileSchemas(
		*NewTestSchema("test-yang-compile", "test").AddSchemaSnippet(snippet))
}

// CompileSnippetWithFeatures compiles a single-module snippet with the
// given features enabled.
func CompileSnippetWithFeatures(snippet string, features ...string) (schema.ModelSet, error) {
	return CompileSchemasWithConfig(
		&compile.Config{Features: compile.FeaturesFromNames(true, features...)},
		*NewTestSchema("test-yang-compile", "test").AddSchemaSnippet(snippet))
}
