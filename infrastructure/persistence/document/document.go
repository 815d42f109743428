// Package document implements the persisted workflow document format and
// its mapping onto the workflow aggregate.
package document

import (
	"encoding/json"

	"chatflow-backend/domain/config"
	"chatflow-backend/domain/core/aggregates"
	"chatflow-backend/domain/core/entities"
	"chatflow-backend/domain/core/validators"
	"chatflow-backend/domain/core/valueobjects"
	pkgerrors "chatflow-backend/pkg/errors"
)

// Document is the exchanged shape of a workflow
type Document struct {
	ID           string     `json:"id" validate:"required"`
	Name         string     `json:"name"`
	Nodes        []Node     `json:"nodes" validate:"dive"`
	Edges        []Edge     `json:"edges" validate:"dive"`
	NodePosition *Position  `json:"nodePosition"`
	Validation   Validation `json:"validation"`
	Sidebar      Sidebar    `json:"sidebar"`
}

// Position is a point in graph coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is the document form of a graph node. Data stays raw until the node
// type selects its payload variant.
type Node struct {
	ID       string               `json:"id" validate:"required"`
	Type     string               `json:"type" validate:"required"`
	Position Position             `json:"position"`
	Data     json.RawMessage      `json:"data,omitempty"`
	Selected bool                 `json:"selected,omitempty"`
	Measured *entities.Dimensions `json:"measured,omitempty"`
}

// Edge is the document form of a graph edge
type Edge struct {
	ID           string `json:"id" validate:"required"`
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Type         string `json:"type,omitempty"`
	Selected     bool   `json:"selected,omitempty"`
}

// Validation is the persisted validation snapshot
type Validation struct {
	Errors        []validators.Diagnostic `json:"errors"`
	IsValid       bool                    `json:"isValid"`
	LastValidated *int64                  `json:"lastValidated"`
}

// Sidebar is the persisted sidebar state
type Sidebar struct {
	Active string `json:"active"`
	Panels Panels `json:"panels"`
}

// Panels groups per-panel document state
type Panels struct {
	NodeProperties NodePropertiesPanel `json:"nodeProperties"`
}

// NodePropertiesPanel persists the properties panel selection
type NodePropertiesPanel struct {
	SelectedNode *SelectedNode `json:"selectedNode"`
}

// SelectedNode is the document form of the panel selection
type SelectedNode struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// FromWorkflow maps an aggregate into its document form
func FromWorkflow(w *aggregates.Workflow) (*Document, error) {
	doc := &Document{
		ID:    w.ID(),
		Name:  w.Name(),
		Nodes: make([]Node, 0, w.NodeCount()),
		Edges: make([]Edge, 0, w.EdgeCount()),
	}

	for _, node := range w.Nodes() {
		raw, err := json.Marshal(node.Data)
		if err != nil {
			return nil, pkgerrors.NewInternalError("encoding node data").
				WithDetail("nodeID", node.ID).
				WithCause(err)
		}
		doc.Nodes = append(doc.Nodes, Node{
			ID:       node.ID,
			Type:     string(node.Type),
			Position: Position{X: node.Position.X, Y: node.Position.Y},
			Data:     raw,
			Selected: node.Selected,
			Measured: node.Measured,
		})
	}

	for _, edge := range w.Edges() {
		doc.Edges = append(doc.Edges, Edge{
			ID:           edge.ID,
			Source:       edge.Source,
			Target:       edge.Target,
			SourceHandle: edge.SourceHandle,
			TargetHandle: edge.TargetHandle,
			Type:         edge.Type,
			Selected:     edge.Selected,
		})
	}

	if pending := w.PendingPosition(); pending != nil {
		doc.NodePosition = &Position{X: pending.X, Y: pending.Y}
	}

	state := w.Validation()
	doc.Validation = Validation{
		Errors:        state.Errors,
		IsValid:       state.IsValid,
		LastValidated: state.LastValidated,
	}

	sidebar := w.Sidebar()
	doc.Sidebar = Sidebar{Active: string(sidebar.Active)}
	if ref := sidebar.Panels.NodeProperties.SelectedNode; ref != nil {
		raw, err := json.Marshal(ref.Data)
		if err != nil {
			return nil, pkgerrors.NewInternalError("encoding panel selection").WithCause(err)
		}
		doc.Sidebar.Panels.NodeProperties.SelectedNode = &SelectedNode{
			ID:   ref.ID,
			Type: string(ref.Type),
			Data: raw,
		}
	}

	return doc, nil
}

// ToWorkflow maps a document into a fresh workflow aggregate. Nodes without
// a data payload receive their registry defaults; unknown node types are
// rejected as malformed input.
func ToWorkflow(doc *Document, cfg *config.DomainConfig) (*aggregates.Workflow, error) {
	w := aggregates.NewWorkflow(doc.ID, doc.Name, cfg)

	nodes := make([]*entities.Node, 0, len(doc.Nodes))
	for _, dn := range doc.Nodes {
		nodeType := entities.NodeType(dn.Type)
		if !nodeType.IsKnown() {
			return nil, pkgerrors.NewValidationError("document contains unknown node type").
				WithDetail("nodeID", dn.ID).
				WithDetail("nodeType", dn.Type)
		}
		var data entities.NodeData
		if len(dn.Data) > 0 {
			decoded, err := entities.DecodeData(nodeType, dn.Data)
			if err != nil {
				return nil, err
			}
			data = decoded
		}
		nodes = append(nodes, &entities.Node{
			ID:       dn.ID,
			Type:     nodeType,
			Position: valueobjects.NewPosition(dn.Position.X, dn.Position.Y),
			Data:     data,
			Selected: dn.Selected,
			Measured: dn.Measured,
		})
	}
	if err := w.SetNodes(nodes); err != nil {
		return nil, err
	}

	edges := make([]*entities.Edge, 0, len(doc.Edges))
	for _, de := range doc.Edges {
		edges = append(edges, &entities.Edge{
			ID:           de.ID,
			Source:       de.Source,
			Target:       de.Target,
			SourceHandle: de.SourceHandle,
			TargetHandle: de.TargetHandle,
			Type:         de.Type,
			Selected:     de.Selected,
		})
	}
	w.SetEdges(edges)

	if doc.NodePosition != nil {
		pos := valueobjects.NewPosition(doc.NodePosition.X, doc.NodePosition.Y)
		w.SetPendingPosition(&pos)
	}

	w.SetValidation(aggregates.ValidationState{
		Errors:        doc.Validation.Errors,
		IsValid:       doc.Validation.IsValid,
		LastValidated: doc.Validation.LastValidated,
	})

	if doc.Sidebar.Active != "" {
		w.SetActivePanel(aggregates.PanelKind(doc.Sidebar.Active))
	}
	if sel := doc.Sidebar.Panels.NodeProperties.SelectedNode; sel != nil {
		selType := entities.NodeType(sel.Type)
		if selType.IsKnown() {
			data, err := entities.DecodeData(selType, sel.Data)
			if err != nil {
				return nil, err
			}
			w.SetSelectedNode(&aggregates.SelectedNodeRef{
				ID:   sel.ID,
				Type: selType,
				Data: data,
			})
		}
	}

	return w, nil
}
