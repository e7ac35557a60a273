// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package parse

// Cardinality bounds how often a substatement may appear under a given
// statement, expressed the way RFC 7950 prints them: '0', '1' or 'n'.
type Cardinality struct {
	Start, End rune
}

// NodeCardinality supplies the substatement cardinality of extension
// statements; the compiler passes one in when extensions are registered.
type NodeCardinality func(NodeType) map[NodeType]Cardinality

var (
	optional = Cardinality{'0', '1'}
	required = Cardinality{'1', '1'}
	many     = Cardinality{'0', 'n'}
)

var commonDataDef = map[NodeType]Cardinality{
	NodeContainer: many,
	NodeLeaf:      many,
	NodeLeafList:  many,
	NodeList:      many,
	NodeChoice:    many,
	NodeAnyxml:    many,
	NodeAnydata:   many,
	NodeUses:      many,
}

func merge(maps ...map[NodeType]Cardinality) map[NodeType]Cardinality {
	out := make(map[NodeType]Cardinality)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

var descRef = map[NodeType]Cardinality{
	NodeDescription: optional,
	NodeReference:   optional,
}

var errInfo = map[NodeType]Cardinality{
	NodeErrorMessage: optional,
	NodeErrorAppTag:  optional,
	NodeDescription:  optional,
	NodeReference:    optional,
}

var cardinalities = map[NodeType]map[NodeType]Cardinality{
	NodeModule: merge(commonDataDef, descRef, map[NodeType]Cardinality{
		NodeYangVersion:  optional,
		NodeNamespace:    required,
		NodePrefix:       required,
		NodeImport:       many,
		NodeInclude:      many,
		NodeOrganization: optional,
		NodeContact:      optional,
		NodeRevision:     many,
		NodeTypedef:      many,
		NodeGrouping:     many,
		NodeAugment:      many,
		NodeRpc:          many,
		NodeNotification: many,
		NodeIdentity:     many,
		NodeExtension:    many,
		NodeFeature:      many,
	}),
	NodeSubmodule: merge(commonDataDef, descRef, map[NodeType]Cardinality{
		NodeYangVersion:  optional,
		NodeBelongsTo:    required,
		NodeImport:       many,
		NodeInclude:      many,
		NodeOrganization: optional,
		NodeContact:      optional,
		NodeRevision:     many,
		NodeTypedef:      many,
		NodeGrouping:     many,
		NodeAugment:      many,
		NodeRpc:          many,
		NodeNotification: many,
		NodeIdentity:     many,
		NodeExtension:    many,
		NodeFeature:      many,
	}),
	NodeImport: merge(descRef, map[NodeType]Cardinality{
		NodePrefix:       required,
		NodeRevisionDate: optional,
	}),
	NodeInclude: merge(descRef, map[NodeType]Cardinality{
		NodeRevisionDate: optional,
	}),
	NodeRevision:  descRef,
	NodeBelongsTo: map[NodeType]Cardinality{NodePrefix: required},
	NodeTypedef: merge(descRef, map[NodeType]Cardinality{
		NodeTyp:     required,
		NodeUnits:   optional,
		NodeDefault: optional,
		NodeStatus:  optional,
	}),
	NodeTyp: map[NodeType]Cardinality{
		NodeBase:            many,
		NodeBit:             many,
		NodeEnum:            many,
		NodeFractionDigits:  optional,
		NodeLength:          optional,
		NodePath:            optional,
		NodePattern:         many,
		NodeRange:           optional,
		NodeRequireInstance: optional,
		NodeTyp:             many,
	},
	NodeContainer: merge(commonDataDef, descRef, map[NodeType]Cardinality{
		NodeTypedef:      many,
		NodeGrouping:     many,
		NodeAction:       many,
		NodeNotification: many,
		NodeMust:         many,
		NodePresence:     optional,
		NodeConfig:       optional,
		NodeStatus:       optional,
		NodeIfFeature:    many,
		NodeWhen:         optional,
	}),
	NodeLeaf: merge(descRef, map[NodeType]Cardinality{
		NodeTyp:       required,
		NodeUnits:     optional,
		NodeMust:      many,
		NodeDefault:   optional,
		NodeConfig:    optional,
		NodeMandatory: optional,
		NodeStatus:    optional,
		NodeIfFeature: many,
		NodeWhen:      optional,
	}),
	NodeLeafList: merge(descRef, map[NodeType]Cardinality{
		NodeTyp:         required,
		NodeUnits:       optional,
		NodeMust:        many,
		NodeDefault:     many,
		NodeConfig:      optional,
		NodeMinElements: optional,
		NodeMaxElements: optional,
		NodeOrderedBy:   optional,
		NodeStatus:      optional,
		NodeIfFeature:   many,
		NodeWhen:        optional,
	}),
	NodeList: merge(commonDataDef, descRef, map[NodeType]Cardinality{
		NodeTypedef:      many,
		NodeGrouping:     many,
		NodeAction:       many,
		NodeNotification: many,
		NodeMust:         many,
		NodeKey:          optional,
		NodeUnique:       many,
		NodeConfig:       optional,
		NodeMinElements:  optional,
		NodeMaxElements:  optional,
		NodeOrderedBy:    optional,
		NodeStatus:       optional,
		NodeIfFeature:    many,
		NodeWhen:         optional,
	}),
	NodeChoice: merge(descRef, map[NodeType]Cardinality{
		NodeCase:      many,
		NodeChoice:    many,
		NodeContainer: many,
		NodeLeaf:      many,
		NodeLeafList:  many,
		NodeList:      many,
		NodeAnyxml:    many,
		NodeAnydata:   many,
		NodeDefault:   optional,
		NodeMandatory: optional,
		NodeConfig:    optional,
		NodeStatus:    optional,
		NodeIfFeature: many,
		NodeWhen:      optional,
	}),
	NodeCase: merge(commonDataDef, descRef, map[NodeType]Cardinality{
		NodeStatus:    optional,
		NodeIfFeature: many,
		NodeWhen:      optional,
	}),
	NodeAnyxml: merge(descRef, map[NodeType]Cardinality{
		NodeMust:      many,
		NodeConfig:    optional,
		NodeMandatory: optional,
		NodeStatus:    optional,
		NodeIfFeature: many,
		NodeWhen:      optional,
	}),
	NodeAnydata: merge(descRef, map[NodeType]Cardinality{
		NodeMust:      many,
		NodeConfig:    optional,
		NodeMandatory: optional,
		NodeStatus:    optional,
		NodeIfFeature: many,
		NodeWhen:      optional,
	}),
	NodeGrouping: merge(commonDataDef, descRef, map[NodeType]Cardinality{
		NodeTypedef:      many,
		NodeGrouping:     many,
		NodeAction:       many,
		NodeNotification: many,
		NodeStatus:       optional,
	}),
	NodeUses: merge(descRef, map[NodeType]Cardinality{
		NodeRefine:    many,
		NodeAugment:   many,
		NodeStatus:    optional,
		NodeIfFeature: many,
		NodeWhen:      optional,
	}),
	NodeRpc: merge(descRef, map[NodeType]Cardinality{
		NodeTypedef:   many,
		NodeGrouping:  many,
		NodeInput:     optional,
		NodeOutput:    optional,
		NodeStatus:    optional,
		NodeIfFeature: many,
	}),
	NodeAction: merge(descRef, map[NodeType]Cardinality{
		NodeTypedef:   many,
		NodeGrouping:  many,
		NodeInput:     optional,
		NodeOutput:    optional,
		NodeStatus:    optional,
		NodeIfFeature: many,
	}),
	NodeInput: merge(commonDataDef, map[NodeType]Cardinality{
		NodeTypedef:  many,
		NodeGrouping: many,
		NodeMust:     many,
	}),
	NodeOutput: merge(commonDataDef, map[NodeType]Cardinality{
		NodeTypedef:  many,
		NodeGrouping: many,
		NodeMust:     many,
	}),
	NodeNotification: merge(commonDataDef, descRef, map[NodeType]Cardinality{
		NodeTypedef:   many,
		NodeGrouping:  many,
		NodeMust:      many,
		NodeStatus:    optional,
		NodeIfFeature: many,
	}),
	NodeAugment: merge(commonDataDef, descRef, map[NodeType]Cardinality{
		NodeCase:         many,
		NodeAction:       many,
		NodeNotification: many,
		NodeStatus:       optional,
		NodeIfFeature:    many,
		NodeWhen:         optional,
	}),
	NodeIdentity: merge(descRef, map[NodeType]Cardinality{
		NodeBase:      many,
		NodeStatus:    optional,
		NodeIfFeature: many,
	}),
	NodeExtension: merge(descRef, map[NodeType]Cardinality{
		NodeArgument: optional,
		NodeStatus:   optional,
	}),
	NodeArgument: map[NodeType]Cardinality{
		NodeYinElement: optional,
	},
	NodeFeature: merge(descRef, map[NodeType]Cardinality{
		NodeStatus:    optional,
		NodeIfFeature: many,
	}),
	NodeMust:   errInfo,
	NodeWhen:   descRef,
	NodeRange:  errInfo,
	NodeLength: errInfo,
	NodePattern: merge(errInfo, map[NodeType]Cardinality{
		NodeModifier: optional,
	}),
	NodeEnum: merge(descRef, map[NodeType]Cardinality{
		NodeStatus:    optional,
		NodeIfFeature: many,
		NodeValue:     optional,
	}),
	NodeBit: merge(descRef, map[NodeType]Cardinality{
		NodeStatus:    optional,
		NodeIfFeature: many,
		NodePosition:  optional,
	}),
	NodeModifier:        {},
	NodePath:            {},
	NodeFractionDigits:  {},
	NodeRequireInstance: {},
	NodeBase:            {},
	NodeContact:         {},
	NodeOrganization:    {},
	NodeDescription:     {},
	NodeReference:       {},
	NodeNamespace:       {},
	NodePrefix:          {},
	NodeYangVersion:     {},
	NodeRevisionDate:    {},
	NodeDefault:         {},
	NodeStatus:          {},
	NodeUnits:           {},
	NodeConfig:          {},
	NodeIfFeature:       {},
	NodePresence:        {},
	NodeErrorAppTag:     {},
	NodeErrorMessage:    {},
	NodeMandatory:       {},
	NodeMinElements:     {},
	NodeMaxElements:     {},
	NodeOrderedBy:       {},
	NodeKey:             {},
	NodeUnique:          {},
	NodeYinElement:      {},
	NodeValue:           {},
	NodePosition:        {},
}

func yangCardinality(t NodeType) map[NodeType]Cardinality {
	return cardinalities[t]
}
