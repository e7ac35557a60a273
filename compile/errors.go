// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package compile

import (
	"fmt"

	"github.com/iptecharch/yang-compiler/parse"
)

// ErrorKind classifies compilation failures. The first error aborts the
// pass; partial state is discarded and the caller's context stays usable.
type ErrorKind int

const (
	// ErrValidation covers anything the YANG itself got wrong.
	ErrValidation ErrorKind = iota
	// ErrNotFound is an unresolved reference: import, typedef, grouping,
	// augment target, leafref target.
	ErrNotFound
	// ErrCycle is a typedef chain, grouping reference or identity base
	// forming a cycle.
	ErrCycle
	// ErrCancelled reports the caller cancelled the compilation.
	ErrCancelled
	// ErrInternal is an assertion violation; it should never occur and
	// is worth a bug report when it does.
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrValidation:
		return "validation"
	case ErrNotFound:
		return "not found"
	case ErrCycle:
		return "cycle"
	case ErrCancelled:
		return "cancelled"
	case ErrInternal:
		return "internal"
	}
	return "unknown"
}

// CompileError carries the failure kind together with the source location
// of the statement that caused it.
type CompileError struct {
	Kind     ErrorKind
	Location string
	Message  string
}

func (e *CompileError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Location, e.Kind, e.Message)
}

func newCompileError(kind ErrorKind, n parse.Node, msg string) *CompileError {
	var loc string
	if n != nil {
		loc, _ = n.ErrorContext()
	}
	return &CompileError{Kind: kind, Location: loc, Message: msg}
}
