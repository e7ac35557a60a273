// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"github.com/danos/mgmterror"
	"github.com/danos/utils/pathutil"
)

const (
	msgEmptyLeafValue = "Value found for empty leaf"
	msgMissingChild   = "Node requires a child"
	msgMissingValue   = "Node requires a value"
	msgInvalidPath    = "Path is invalid"
)

func newInvalidValueError(path []string, msg string) error {
	err := mgmterror.NewInvalidValueApplicationError()
	if len(path) > 0 {
		err.Path = pathutil.Pathstr(path)
	}
	err.Message = msg
	return err
}

func newInvalidValueErrorWithAppTag(path []string, msg, appTag string) error {
	err := mgmterror.NewInvalidValueApplicationError()
	if len(path) > 0 {
		err.Path = pathutil.Pathstr(path)
	}
	err.Message = msg
	err.AppTag = appTag
	return err
}

func NewMissingChildError(path []string) error {
	e := mgmterror.NewMissingElementApplicationError("<any child>")
	e.Path = pathutil.Pathstr(path)
	e.Message = msgMissingChild
	return e
}

func NewMissingValueError(path []string) error {
	return newInvalidValueError(path, msgMissingValue)
}

func NewEmptyLeafValueError(name string, path []string) error {
	e := mgmterror.NewUnknownElementApplicationError(name)
	e.Path = pathutil.Pathstr(path)
	e.Message = msgEmptyLeafValue
	return e
}

func NewInvalidPathError(path []string) error {
	switch len(path) {
	case 0:
		e := mgmterror.NewOperationFailedApplicationError()
		e.Message = msgInvalidPath
		return e
	case 1:
		e := mgmterror.NewUnknownElementApplicationError(path[0])
		e.Message = msgInvalidPath
		return e
	}
	e := mgmterror.NewUnknownElementApplicationError(path[len(path)-1])
	e.Path = pathutil.Pathstr(path[:len(path)-1])
	e.Message = msgInvalidPath
	return e
}

// NewPathInvalidError generates a consistent error type and path style
// (split between path and info fields).
func NewPathInvalidError(path []string, invalidElem string) error {
	e := mgmterror.NewUnknownElementApplicationError(invalidElem)
	e.Message = msgInvalidPath
	e.Path = pathutil.Pathstr(path)
	return e
}
