// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package parse

type NodeType int

func (t NodeType) Type() NodeType { return t }
func (t NodeType) String() string { return nodeNames[t] }

func (t NodeType) IsDataNode() bool {
	return (t > NodeDataDef) && (t < NodeDataDefEnd)
}

func (t NodeType) IsDataOrCaseNode() bool {
	return t.IsDataNode() || t == NodeCase
}

func (t NodeType) IsTypeRestriction() bool {
	return (t > NodeTypeRestrictionStart && t < NodeTypeRestrictionEnd)
}

// IsExtensionNode reports whether the statement is an extension instance:
// a statement whose keyword carries the prefix of an extension definition
// rather than a YANG keyword.
func (t NodeType) IsExtensionNode() bool {
	return t == NodeUnknown
}

func (t NodeType) IsOperationNode() bool {
	return t == NodeRpc || t == NodeAction
}

const (
	NodeUnknown NodeType = iota // extension instance
	NodeModule
	NodeImport
	NodeInclude
	NodeRevision
	NodeSubmodule
	NodeBelongsTo
	NodeTypedef
	// Data definition statements live between the two markers
	NodeDataDef
	NodeContainer
	NodeLeaf
	NodeLeafList
	NodeList
	NodeChoice
	NodeUses
	NodeAnyxml
	NodeAnydata
	NodeDataDefEnd
	// Case counts as a data node for augment targets but never stands alone
	NodeCase
	NodeGrouping
	NodeMust
	NodeRpc
	NodeAction
	NodeInput
	NodeOutput
	NodeNotification
	NodeAugment
	NodeIdentity
	NodeExtension
	NodeArgument
	NodeFeature
	// Type restrictions
	NodeTypeRestrictionStart
	NodeTyp
	NodeRange
	NodeLength
	NodePattern
	NodeEnum
	NodeBit
	NodePath
	NodeFractionDigits
	NodeRequireInstance
	NodeBase
	NodeTypeRestrictionEnd
	NodeModifier
	NodeContact
	NodeDescription
	NodeNamespace
	NodeOrganization
	NodePrefix
	NodeReference
	NodeYangVersion
	NodeRevisionDate
	NodeDefault
	NodeStatus
	NodeUnits
	NodeConfig
	NodeIfFeature
	NodePresence
	NodeWhen
	NodeErrorAppTag
	NodeErrorMessage
	NodeMandatory
	NodeMinElements
	NodeMaxElements
	NodeOrderedBy
	NodeKey
	NodeUnique
	NodeRefine
	NodeYinElement
	NodeValue
	NodePosition
	NodeTypeIndexSize // MUST BE LAST. NOT A VALID NODE TYPE
)

var nodeNames = [...]string{
	NodeUnknown:              "unknown",
	NodeModule:               "module",
	NodeImport:               "import",
	NodeInclude:              "include",
	NodeRevision:             "revision",
	NodeSubmodule:            "submodule",
	NodeBelongsTo:            "belongs-to",
	NodeTypedef:              "typedef",
	NodeDataDef:              "data definition",
	NodeContainer:            "container",
	NodeLeaf:                 "leaf",
	NodeLeafList:             "leaf-list",
	NodeList:                 "list",
	NodeChoice:               "choice",
	NodeUses:                 "uses",
	NodeAnyxml:               "anyxml",
	NodeAnydata:              "anydata",
	NodeDataDefEnd:           "data definition end",
	NodeCase:                 "case",
	NodeGrouping:             "grouping",
	NodeMust:                 "must",
	NodeRpc:                  "rpc",
	NodeAction:               "action",
	NodeInput:                "input",
	NodeOutput:               "output",
	NodeNotification:         "notification",
	NodeAugment:              "augment",
	NodeIdentity:             "identity",
	NodeExtension:            "extension",
	NodeArgument:             "argument",
	NodeFeature:              "feature",
	NodeTypeRestrictionStart: "type restriction start",
	NodeTyp:                  "type",
	NodeRange:                "range",
	NodeLength:               "length",
	NodePattern:              "pattern",
	NodeEnum:                 "enum",
	NodeBit:                  "bit",
	NodePath:                 "path",
	NodeFractionDigits:       "fraction-digits",
	NodeRequireInstance:      "require-instance",
	NodeBase:                 "base",
	NodeTypeRestrictionEnd:   "type restriction end",
	NodeModifier:             "modifier",
	NodeContact:              "contact",
	NodeDescription:          "description",
	NodeNamespace:            "namespace",
	NodeOrganization:         "organization",
	NodePrefix:               "prefix",
	NodeReference:            "reference",
	NodeYangVersion:          "yang-version",
	NodeRevisionDate:         "revision-date",
	NodeDefault:              "default",
	NodeStatus:               "status",
	NodeUnits:                "units",
	NodeConfig:               "config",
	NodeIfFeature:            "if-feature",
	NodePresence:             "presence",
	NodeWhen:                 "when",
	NodeErrorAppTag:          "error-app-tag",
	NodeErrorMessage:         "error-message",
	NodeMandatory:            "mandatory",
	NodeMinElements:          "min-elements",
	NodeMaxElements:          "max-elements",
	NodeOrderedBy:            "ordered-by",
	NodeKey:                  "key",
	NodeUnique:               "unique",
	NodeRefine:               "refine",
	NodeYinElement:           "yin-element",
	NodeValue:                "value",
	NodePosition:             "position",
}

var nodeTypeMap map[string]NodeType

func init() {
	nodeTypeMap = make(map[string]NodeType, NodeTypeIndexSize)
	for i, v := range nodeNames {
		nodeTypeMap[v] = NodeType(i)
	}
}

// NodeTypeFromName maps a statement keyword to its node type. Keywords
// containing a prefix, and keywords we do not know, are extension
// instances.
func NodeTypeFromName(name string) NodeType {
	if ntype, ok := nodeTypeMap[name]; ok {
		return ntype
	}
	return NodeUnknown
}
