package entities

import "chatflow-backend/domain/core/valueobjects"

// NodeChange is the closed set of change records an editing surface can
// batch against the node list. Processing switches exhaustively over the
// concrete kinds so no change is ever silently dropped.
type NodeChange interface {
	nodeChange()
}

// AddNodeChange inserts a node carrying a full payload. When a node with
// the same id already exists, its data is merged, never dropped.
type AddNodeChange struct {
	Node *Node
}

// RemoveNodeChange deletes a node by id, cascading to its edges
type RemoveNodeChange struct {
	ID string
}

// RepositionNodeChange moves a node to a new position
type RepositionNodeChange struct {
	ID       string
	Position valueobjects.Position
}

// SelectNodeChange sets a node's selection flag
type SelectNodeChange struct {
	ID       string
	Selected bool
}

// DimensionsNodeChange records the measured size of a rendered node
type DimensionsNodeChange struct {
	ID         string
	Dimensions Dimensions
}

func (AddNodeChange) nodeChange()        {}
func (RemoveNodeChange) nodeChange()     {}
func (RepositionNodeChange) nodeChange() {}
func (SelectNodeChange) nodeChange()     {}
func (DimensionsNodeChange) nodeChange() {}

// EdgeChange is the closed set of change records for the edge list
type EdgeChange interface {
	edgeChange()
}

// AddEdgeChange inserts an already-built edge
type AddEdgeChange struct {
	Edge *Edge
}

// RemoveEdgeChange deletes an edge by id
type RemoveEdgeChange struct {
	ID string
}

// SelectEdgeChange sets an edge's selection flag
type SelectEdgeChange struct {
	ID       string
	Selected bool
}

func (AddEdgeChange) edgeChange()    {}
func (RemoveEdgeChange) edgeChange() {}
func (SelectEdgeChange) edgeChange() {}
