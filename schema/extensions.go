// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package schema

import "encoding/xml"

// ExtensionInstance records one use of a user-defined extension statement.
// Instances survive compilation attached, in source order, to whatever the
// statement they decorate compiled into: a node, a type, a restriction, a
// when or must context, or the module itself. The printer relies on the
// order being exactly the source order.
type ExtensionInstance struct {
	// Keyword qualifies the extension definition: Space is the defining
	// module's prefix as written at the use site, Local the extension name.
	Keyword xml.Name

	Argument    string
	HasArgument bool

	// SubStatements holds nested extension instances, again in source
	// order.
	SubStatements []ExtensionInstance
}

func (e ExtensionInstance) String() string {
	name := e.Keyword.Local
	if e.Keyword.Space != "" {
		name = e.Keyword.Space + ":" + e.Keyword.Local
	}
	if e.HasArgument {
		return name + " " + e.Argument
	}
	return name
}
