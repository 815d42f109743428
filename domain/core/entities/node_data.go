package entities

import (
	"encoding/json"

	pkgerrors "chatflow-backend/pkg/errors"
)

// NodeData is the tagged union of per-type node payloads. Exactly one
// concrete variant exists per NodeType; code that needs per-type behavior
// switches exhaustively on Kind().
type NodeData interface {
	Kind() NodeType
	Clone() NodeData
}

// StartData is the payload of a start node
type StartData struct {
	Label     string `json:"label"`
	Deletable bool   `json:"deletable"`
}

// EndData is the payload of an end node
type EndData struct {
	Label     string `json:"label"`
	Deletable bool   `json:"deletable"`
}

// MenuOption is a single choice offered by a menu node
type MenuOption struct {
	ID     string          `json:"id"`
	Option MenuOptionValue `json:"option"`
}

// MenuOptionValue carries the option's ordinal and display text
type MenuOptionValue struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

// MenuData is the payload of a menu node
type MenuData struct {
	Question *string      `json:"question"`
	Options  []MenuOption `json:"options"`
}

// ComparisonType enumerates branch comparison operators
type ComparisonType string

const (
	ComparisonEquals            ComparisonType = "equals"
	ComparisonNotEquals         ComparisonType = "not_equals"
	ComparisonGreaterThan       ComparisonType = "greater_than"
	ComparisonLessThan          ComparisonType = "less_than"
	ComparisonGreaterThanEquals ComparisonType = "greater_than_equals"
	ComparisonLessThanEquals    ComparisonType = "less_than_equals"
	ComparisonContains          ComparisonType = "contains"
	ComparisonStartsWith        ComparisonType = "starts_with"
	ComparisonEndsWith          ComparisonType = "ends_with"
	ComparisonIsEmpty           ComparisonType = "is_empty"
	ComparisonIsNotEmpty        ComparisonType = "is_not_empty"
)

// ValueType enumerates branch operand types
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumber  ValueType = "number"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeDate    ValueType = "date"
)

// BranchData is the payload of a branch node
type BranchData struct {
	Variable       string         `json:"variable"`
	ValueType      ValueType      `json:"valueType"`
	ComparisonType ComparisonType `json:"comparisonType"`
	CompareValue   string         `json:"compareValue"`
	TrueLabel      string         `json:"trueLabel"`
	FalseLabel     string         `json:"falseLabel"`
}

// TextMessageData is the payload of a text-message node
type TextMessageData struct {
	Message string `json:"message"`
}

// TagsData is the payload of a tags node
type TagsData struct {
	Tags []string `json:"tags"`
}

// TimeUnit enumerates delay duration units
type TimeUnit string

const (
	TimeUnitSeconds TimeUnit = "seconds"
	TimeUnitMinutes TimeUnit = "minutes"
	TimeUnitHours   TimeUnit = "hours"
	TimeUnitDays    TimeUnit = "days"
)

// DelayData is the payload of a delay node
type DelayData struct {
	Duration float64  `json:"duration"`
	Unit     TimeUnit `json:"unit"`
}

// LoopType enumerates loop iteration strategies
type LoopType string

const (
	LoopTypeCount      LoopType = "count"
	LoopTypeCondition  LoopType = "condition"
	LoopTypeCollection LoopType = "collection"
)

// LoopData is the payload of a loop node
type LoopData struct {
	Type          LoopType `json:"type"`
	MaxIterations int      `json:"maxIterations"`
	Variable      string   `json:"variable,omitempty"`
	Condition     string   `json:"condition,omitempty"`
	Collection    string   `json:"collection,omitempty"`
}

func (StartData) Kind() NodeType       { return NodeTypeStart }
func (EndData) Kind() NodeType         { return NodeTypeEnd }
func (MenuData) Kind() NodeType        { return NodeTypeMenu }
func (BranchData) Kind() NodeType      { return NodeTypeBranch }
func (TextMessageData) Kind() NodeType { return NodeTypeTextMessage }
func (TagsData) Kind() NodeType        { return NodeTypeTags }
func (DelayData) Kind() NodeType       { return NodeTypeDelay }
func (LoopData) Kind() NodeType        { return NodeTypeLoop }

// Clone returns a copy of the payload
func (d StartData) Clone() NodeData { return d }

// Clone returns a copy of the payload
func (d EndData) Clone() NodeData { return d }

// Clone returns a copy of the payload, including the options slice
func (d MenuData) Clone() NodeData {
	clone := d
	if d.Question != nil {
		q := *d.Question
		clone.Question = &q
	}
	clone.Options = make([]MenuOption, len(d.Options))
	copy(clone.Options, d.Options)
	return clone
}

// Clone returns a copy of the payload
func (d BranchData) Clone() NodeData { return d }

// Clone returns a copy of the payload
func (d TextMessageData) Clone() NodeData { return d }

// Clone returns a copy of the payload, including the tags slice
func (d TagsData) Clone() NodeData {
	clone := d
	clone.Tags = make([]string, len(d.Tags))
	copy(clone.Tags, d.Tags)
	return clone
}

// Clone returns a copy of the payload
func (d DelayData) Clone() NodeData { return d }

// Clone returns a copy of the payload
func (d LoopData) Clone() NodeData { return d }

// DecodeData unmarshals a raw data payload into the variant matching the
// node type. An unknown type is a programming error, not user input.
func DecodeData(t NodeType, raw json.RawMessage) (NodeData, error) {
	decode := func(v NodeData) (NodeData, error) {
		if len(raw) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return nil, pkgerrors.NewValidationError("malformed node data payload").
				WithDetail("nodeType", string(t)).
				WithCause(err)
		}
		return v, nil
	}

	var data NodeData
	var err error
	switch t {
	case NodeTypeStart:
		data, err = decode(&StartData{})
	case NodeTypeEnd:
		data, err = decode(&EndData{})
	case NodeTypeMenu:
		data, err = decode(&MenuData{})
	case NodeTypeBranch:
		data, err = decode(&BranchData{})
	case NodeTypeTextMessage:
		data, err = decode(&TextMessageData{})
	case NodeTypeTags:
		data, err = decode(&TagsData{})
	case NodeTypeDelay:
		data, err = decode(&DelayData{})
	case NodeTypeLoop:
		data, err = decode(&LoopData{})
	default:
		return nil, pkgerrors.NewConfigurationError("unknown node type").
			WithCode("UNKNOWN_NODE_TYPE").
			WithDetail("nodeType", string(t))
	}
	if err != nil {
		return nil, err
	}
	return deref(data), nil
}

// DataPatch is a partial top-level update of a node's data payload
type DataPatch map[string]interface{}

// MergeData shallow-merges a patch into an existing payload at the top level
// only: patched keys replace the existing value wholesale, nested structures
// are never deep-merged. The result is a fresh value of the same variant.
func MergeData(existing NodeData, patch DataPatch) (NodeData, error) {
	if len(patch) == 0 {
		return existing.Clone(), nil
	}

	encoded, err := json.Marshal(existing)
	if err != nil {
		return nil, pkgerrors.NewInternalError("encoding node data for merge").WithCause(err)
	}

	merged := make(map[string]interface{})
	if err := json.Unmarshal(encoded, &merged); err != nil {
		return nil, pkgerrors.NewInternalError("decoding node data for merge").WithCause(err)
	}
	for key, value := range patch {
		merged[key] = value
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, pkgerrors.NewValidationError("malformed data patch").WithCause(err)
	}
	return DecodeData(existing.Kind(), raw)
}

// deref converts the pointer produced during decoding back to the value
// form the rest of the domain works with.
func deref(data NodeData) NodeData {
	switch v := data.(type) {
	case *StartData:
		return *v
	case *EndData:
		return *v
	case *MenuData:
		return *v
	case *BranchData:
		return *v
	case *TextMessageData:
		return *v
	case *TagsData:
		return *v
	case *DelayData:
		return *v
	case *LoopData:
		return *v
	default:
		return data
	}
}
