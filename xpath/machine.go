// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Package xpath parses the XPath-valued arguments of when, must and
// leafref path statements. Expressions are parsed exactly once, at schema
// compile time; evaluation against instance data belongs to the data
// validator and is not done here, which is why node-reference prefixes
// survive in the parsed tree.
package xpath

import (
	"io"
	"log"
)

var debugLogger *log.Logger

// SetDebugLogger installs a logger for expression parse tracing. Passing
// nil silences it.
func SetDebugLogger(l *log.Logger) {
	debugLogger = l
}

func debugf(format string, args ...interface{}) {
	if debugLogger != nil {
		debugLogger.Printf(format, args...)
	}
}

// Machine holds one compiled XPath expression together with where it came
// from. A single Machine may be shared by every node a uses expansion
// attached the same when statement to.
type Machine struct {
	expr     string
	location string
	root     Expr
}

func (m *Machine) GetExpr() string     { return m.expr }
func (m *Machine) GetLocation() string { return m.location }
func (m *Machine) Root() Expr          { return m.root }

// NewExprMachine parses an expression for a when or must statement.
// Prefixes in node tests are checked against mapFn and kept as written.
func NewExprMachine(expr string, mapFn PrefixMapFn, location string) (*Machine, error) {
	root, err := ParseExpr(expr, mapFn)
	if err != nil {
		return nil, err
	}
	debugf("xpath: compiled %q", expr)
	return &Machine{expr: expr, location: location, root: root}, nil
}

// NewLeafrefMachine parses a leafref path argument. The result carries
// the structured path for the deferred target resolution.
type LeafrefMachine struct {
	Machine
	path *Path
}

func (m *LeafrefMachine) Path() *Path { return m.path }

func NewLeafrefMachine(pathArg string, mapFn PrefixMapFn, location string) (*LeafrefMachine, error) {
	p, err := ParsePath(pathArg, mapFn)
	if err != nil {
		return nil, err
	}
	debugf("xpath: compiled leafref path %q", pathArg)
	return &LeafrefMachine{
		Machine: Machine{expr: pathArg, location: location},
		path:    p,
	}, nil
}

// NewDebugWriterLogger is a convenience for wiring the debug logger to an
// arbitrary sink.
func NewDebugWriterLogger(w io.Writer) *log.Logger {
	return log.New(w, "xpath: ", 0)
}
