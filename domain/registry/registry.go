// Package registry is the static catalog of builder node types: default
// data payloads, declared handles, and display metadata.
package registry

import (
	"chatflow-backend/domain/core/entities"
	"chatflow-backend/domain/core/valueobjects"
	pkgerrors "chatflow-backend/pkg/errors"
)

// Cardinality counts the connection points a node type declares
type Cardinality struct {
	Sources int
	Targets int
}

// Definition describes one member of the node type catalog
type Definition struct {
	Type        entities.NodeType
	Title       string
	Description string
	Handles     []valueobjects.Handle
	Available   bool

	defaultData func() entities.NodeData
}

// DefaultData returns a fresh default payload for the type
func (d Definition) DefaultData() entities.NodeData {
	return d.defaultData()
}

// Cardinality returns the declared handle counts by role
func (d Definition) Cardinality() Cardinality {
	var c Cardinality
	for _, h := range d.Handles {
		if h.IsSource() {
			c.Sources++
		} else {
			c.Targets++
		}
	}
	return c
}

// SourceHandles returns the declared source-role handle names
func (d Definition) SourceHandles() []string {
	var names []string
	for _, h := range d.Handles {
		if h.IsSource() {
			names = append(names, h.Name)
		}
	}
	return names
}

// DeclaresHandle reports whether the type declares a handle with the given
// name and role
func (d Definition) DeclaresHandle(name string, role valueobjects.HandleRole) bool {
	for _, h := range d.Handles {
		if h.Name == name && h.Role == role {
			return true
		}
	}
	return false
}

var catalog = map[entities.NodeType]Definition{
	entities.NodeTypeStart: {
		Type:        entities.NodeTypeStart,
		Title:       "Start",
		Description: "Entry point of the workflow",
		Handles: []valueobjects.Handle{
			valueobjects.NewSourceHandle("source"),
		},
		Available:   false,
		defaultData: func() entities.NodeData { return entities.StartData{Label: "Start", Deletable: false} },
	},
	entities.NodeTypeEnd: {
		Type:        entities.NodeTypeEnd,
		Title:       "End",
		Description: "Terminal point of the workflow",
		Handles: []valueobjects.Handle{
			valueobjects.NewTargetHandle("target"),
		},
		Available:   false,
		defaultData: func() entities.NodeData { return entities.EndData{Label: "End", Deletable: false} },
	},
	entities.NodeTypeMenu: {
		Type:        entities.NodeTypeMenu,
		Title:       "Menu",
		Description: "Presents a list of options to choose from",
		Handles: []valueobjects.Handle{
			valueobjects.NewTargetHandle("target"),
			valueobjects.NewSourceHandle("source"),
		},
		Available: true,
		defaultData: func() entities.NodeData {
			return entities.MenuData{Question: nil, Options: []entities.MenuOption{}}
		},
	},
	entities.NodeTypeBranch: {
		Type:        entities.NodeTypeBranch,
		Title:       "Branch",
		Description: "Routes the conversation on a condition",
		Handles: []valueobjects.Handle{
			valueobjects.NewTargetHandle("target"),
			valueobjects.NewSourceHandle("true"),
			valueobjects.NewSourceHandle("false"),
		},
		Available: true,
		defaultData: func() entities.NodeData {
			return entities.BranchData{
				Variable:       "",
				ValueType:      entities.ValueTypeString,
				ComparisonType: entities.ComparisonEquals,
				CompareValue:   "",
				TrueLabel:      "True",
				FalseLabel:     "False",
			}
		},
	},
	entities.NodeTypeTextMessage: {
		Type:        entities.NodeTypeTextMessage,
		Title:       "Text Message",
		Description: "Sends a text message to the contact",
		Handles: []valueobjects.Handle{
			valueobjects.NewTargetHandle("target"),
			valueobjects.NewSourceHandle("source"),
		},
		Available:   true,
		defaultData: func() entities.NodeData { return entities.TextMessageData{Message: ""} },
	},
	entities.NodeTypeTags: {
		Type:        entities.NodeTypeTags,
		Title:       "Tags",
		Description: "Attaches tags to the conversation",
		Handles: []valueobjects.Handle{
			valueobjects.NewTargetHandle("target"),
			valueobjects.NewSourceHandle("source"),
		},
		Available:   true,
		defaultData: func() entities.NodeData { return entities.TagsData{Tags: []string{}} },
	},
	entities.NodeTypeDelay: {
		Type:        entities.NodeTypeDelay,
		Title:       "Delay",
		Description: "Pauses the workflow for a duration",
		Handles: []valueobjects.Handle{
			valueobjects.NewTargetHandle("target"),
			valueobjects.NewSourceHandle("source"),
		},
		Available: true,
		defaultData: func() entities.NodeData {
			return entities.DelayData{Duration: 0, Unit: entities.TimeUnitSeconds}
		},
	},
	entities.NodeTypeLoop: {
		Type:        entities.NodeTypeLoop,
		Title:       "Loop",
		Description: "Repeats the body branch until the loop completes",
		Handles: []valueobjects.Handle{
			valueobjects.NewTargetHandle("target"),
			valueobjects.NewSourceHandle("body"),
			valueobjects.NewSourceHandle("exit"),
		},
		Available: true,
		defaultData: func() entities.NodeData {
			return entities.LoopData{Type: entities.LoopTypeCount, MaxIterations: 1}
		},
	},
}

// Lookup resolves a node type to its catalog definition. Types outside the
// closed enumeration never arrive through normal input; hitting this error
// signals a programming mistake, not a user one.
func Lookup(t entities.NodeType) (Definition, error) {
	def, ok := catalog[t]
	if !ok {
		return Definition{}, pkgerrors.NewConfigurationError("unknown node type").
			WithCode("UNKNOWN_NODE_TYPE").
			WithDetail("nodeType", string(t))
	}
	return def, nil
}

// All returns the catalog definitions in enumeration order
func All() []Definition {
	defs := make([]Definition, 0, len(catalog))
	for _, t := range entities.NodeTypes() {
		defs = append(defs, catalog[t])
	}
	return defs
}

// Available returns the definitions an editor offers for insertion,
// excluding the terminals that every workflow already carries.
func Available() []Definition {
	var defs []Definition
	for _, def := range All() {
		if def.Available {
			defs = append(defs, def)
		}
	}
	return defs
}
