// Package services wires the workflow aggregate to the validation
// scheduler: every mutation entry point used by an editing surface passes
// through here so the debounce protocol is never skipped.
package services

import (
	"go.uber.org/zap"

	"chatflow-backend/domain/core/aggregates"
	"chatflow-backend/domain/core/entities"
	"chatflow-backend/domain/core/valueobjects"
)

// FlowService is the mutation façade over one workflow aggregate. Each
// operation applies synchronously and atomically, then arms the scheduler.
type FlowService struct {
	workflow  *aggregates.Workflow
	scheduler *ValidationScheduler
	logger    *zap.Logger
}

// NewFlowService creates a flow service
func NewFlowService(
	workflow *aggregates.Workflow,
	scheduler *ValidationScheduler,
	logger *zap.Logger,
) *FlowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlowService{
		workflow:  workflow,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Workflow exposes the underlying aggregate for read access
func (s *FlowService) Workflow() *aggregates.Workflow {
	return s.workflow
}

// InsertNode creates a node with registry defaults and schedules validation
func (s *FlowService) InsertNode(t entities.NodeType, pos *valueobjects.Position) (*entities.Node, error) {
	node, err := s.workflow.InsertNode(t, pos)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("node inserted",
		zap.String("nodeID", node.ID),
		zap.String("nodeType", string(node.Type)),
	)
	s.scheduler.Arm()
	return node, nil
}

// InsertNodeWithData creates a node carrying the given payload
func (s *FlowService) InsertNodeWithData(t entities.NodeType, data entities.NodeData, pos *valueobjects.Position) (*entities.Node, error) {
	node, err := s.workflow.InsertNodeWithData(t, data, pos)
	if err != nil {
		return nil, err
	}
	s.scheduler.Arm()
	return node, nil
}

// UpdateNodeData merges a partial data patch into a node
func (s *FlowService) UpdateNodeData(id string, patch entities.DataPatch) error {
	if err := s.workflow.UpdateNodeData(id, patch); err != nil {
		return err
	}
	s.scheduler.Arm()
	return nil
}

// DeleteNode removes a node and its edges
func (s *FlowService) DeleteNode(id string) {
	s.workflow.DeleteNode(id)
	s.logger.Debug("node deleted", zap.String("nodeID", id))
	s.scheduler.Arm()
}

// ApplyNodeChanges applies a heterogeneous batch of node changes
func (s *FlowService) ApplyNodeChanges(changes []entities.NodeChange) error {
	if err := s.workflow.ApplyNodeChanges(changes); err != nil {
		return err
	}
	s.scheduler.Arm()
	return nil
}

// Connect adds an edge for the connection
func (s *FlowService) Connect(conn entities.Connection) (*entities.Edge, error) {
	edge, err := s.workflow.Connect(conn)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("edge connected",
		zap.String("edgeID", edge.ID),
		zap.String("source", edge.Source),
		zap.String("target", edge.Target),
	)
	s.scheduler.Arm()
	return edge, nil
}

// RemoveEdge removes an edge by id
func (s *FlowService) RemoveEdge(id string) {
	s.workflow.RemoveEdge(id)
	s.scheduler.Arm()
}

// ApplyEdgeChanges applies a batch of edge changes
func (s *FlowService) ApplyEdgeChanges(changes []entities.EdgeChange) error {
	if err := s.workflow.ApplyEdgeChanges(changes); err != nil {
		return err
	}
	s.scheduler.Arm()
	return nil
}

// SelectNode selects exactly one node
func (s *FlowService) SelectNode(id string) {
	s.workflow.SelectNode(id)
}

// ToggleNodeSelection flips one node's selection (modifier click)
func (s *FlowService) ToggleNodeSelection(id string) {
	s.workflow.ToggleNodeSelection(id)
}

// SelectAll selects everything except the protected terminals
func (s *FlowService) SelectAll() {
	s.workflow.SelectAll()
}

// DeselectAll clears the selection
func (s *FlowService) DeselectAll() {
	s.workflow.DeselectAll()
}

// DeleteSelection bulk-deletes the selection, excluding protected nodes
func (s *FlowService) DeleteSelection() {
	s.workflow.DeleteSelection()
	s.scheduler.Arm()
}

// ReplaceGraph swaps in a freshly loaded node and edge set, e.g. after the
// backing document changed on disk
func (s *FlowService) ReplaceGraph(nodes []*entities.Node, edges []*entities.Edge) error {
	if err := s.workflow.SetNodes(nodes); err != nil {
		return err
	}
	s.workflow.SetEdges(edges)
	s.scheduler.Arm()
	return nil
}

// SetPendingPosition stages where the next insert lands
func (s *FlowService) SetPendingPosition(pos *valueobjects.Position) {
	s.workflow.SetPendingPosition(pos)
}

// ValidateNow bypasses the debounce and validates synchronously; callers
// gating a save on IsValid use this
func (s *FlowService) ValidateNow() aggregates.ValidationState {
	return s.scheduler.FlushNow()
}

// Close tears down the scheduler; no validation callback fires afterwards
func (s *FlowService) Close() {
	s.scheduler.Close()
}
