package entities

import "github.com/google/uuid"

// EdgeTypeDeletable tags edges the user may remove from the canvas. Every
// edge created through a connect gesture carries it.
const EdgeTypeDeletable = "deletable"

// Edge is a directed connection between two nodes, optionally bound to
// named handles on either end.
type Edge struct {
	ID           string
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
	Type         string
	Selected     bool
}

// Connection describes a requested edge before it is given an identity
type Connection struct {
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
}

// NewEdge builds an edge from a connection with a fresh id and the default
// user-deletable tag. No structural checks happen here: dangling references
// are prevented by cascade deletion, not by rejecting connections.
func NewEdge(conn Connection) *Edge {
	return &Edge{
		ID:           uuid.New().String(),
		Source:       conn.Source,
		Target:       conn.Target,
		SourceHandle: conn.SourceHandle,
		TargetHandle: conn.TargetHandle,
		Type:         EdgeTypeDeletable,
	}
}

// Touches reports whether the edge references the given node on either end
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Clone returns a copy of the edge
func (e *Edge) Clone() *Edge {
	clone := *e
	return &clone
}
