package entities

import (
	"github.com/google/uuid"

	"chatflow-backend/domain/core/valueobjects"
)

// NodeType is the closed enumeration of builder node types. The string
// values are the ones carried by the persisted document format.
type NodeType string

const (
	NodeTypeStart       NodeType = "start"
	NodeTypeEnd         NodeType = "end"
	NodeTypeMenu        NodeType = "menu"
	NodeTypeBranch      NodeType = "branch"
	NodeTypeTextMessage NodeType = "text-message"
	NodeTypeTags        NodeType = "tags"
	NodeTypeDelay       NodeType = "delay"
	NodeTypeLoop        NodeType = "loop"
)

// NodeTypes lists every member of the enumeration in catalog order
func NodeTypes() []NodeType {
	return []NodeType{
		NodeTypeStart,
		NodeTypeEnd,
		NodeTypeMenu,
		NodeTypeBranch,
		NodeTypeTextMessage,
		NodeTypeTags,
		NodeTypeDelay,
		NodeTypeLoop,
	}
}

// IsProtected reports whether the type is exempt from bulk deletion and
// select-all (the workflow terminals).
func (t NodeType) IsProtected() bool {
	return t == NodeTypeStart || t == NodeTypeEnd
}

// IsKnown reports whether the type is a member of the closed enumeration
func (t NodeType) IsKnown() bool {
	switch t {
	case NodeTypeStart, NodeTypeEnd, NodeTypeMenu, NodeTypeBranch,
		NodeTypeTextMessage, NodeTypeTags, NodeTypeDelay, NodeTypeLoop:
		return true
	}
	return false
}

// Dimensions holds the measured size reported by the rendering layer
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is a typed unit of the workflow graph. Its Data payload shape is
// determined by Type (see NodeData).
type Node struct {
	ID       string
	Type     NodeType
	Position valueobjects.Position
	Data     NodeData
	Selected bool
	Measured *Dimensions
}

// NewNodeID generates a fresh opaque node identifier
func NewNodeID() string {
	return uuid.New().String()
}

// NewNode creates a node with a fresh id
func NewNode(t NodeType, data NodeData, position valueobjects.Position) *Node {
	return &Node{
		ID:       NewNodeID(),
		Type:     t,
		Position: position,
		Data:     data,
	}
}

// Clone returns a deep copy of the node
func (n *Node) Clone() *Node {
	clone := *n
	if n.Data != nil {
		clone.Data = n.Data.Clone()
	}
	if n.Measured != nil {
		m := *n.Measured
		clone.Measured = &m
	}
	return &clone
}
