package services

import (
	"go.uber.org/zap"

	"chatflow-backend/domain/config"
	"chatflow-backend/domain/core/entities"
	"chatflow-backend/domain/core/valueobjects"
)

// clipboardEntry is a value snapshot of a copied node, detached from the
// live graph so later edits to the original do not leak into a paste
type clipboardEntry struct {
	nodeType entities.NodeType
	data     entities.NodeData
}

// ClipboardService implements copy, duplicate and paste on top of the flow
// service's insert primitives. The clipboard holds a single slot.
type ClipboardService struct {
	flow      *FlowService
	cfg       *config.DomainConfig
	logger    *zap.Logger
	clipboard *clipboardEntry
}

// NewClipboardService creates a clipboard service
func NewClipboardService(flow *FlowService, cfg *config.DomainConfig, logger *zap.Logger) *ClipboardService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClipboardService{flow: flow, cfg: cfg, logger: logger}
}

// HasContent reports whether the clipboard slot is filled
func (s *ClipboardService) HasContent() bool {
	return s.clipboard != nil
}

// Copy snapshots the single currently-selected node into the clipboard.
// It reports whether anything was copied.
func (s *ClipboardService) Copy() bool {
	node := s.singleSelection()
	if node == nil {
		return false
	}
	s.clipboard = &clipboardEntry{
		nodeType: node.Type,
		data:     node.Data.Clone(),
	}
	s.logger.Debug("node copied", zap.String("nodeID", node.ID))
	return true
}

// Duplicate inserts a copy of the selected node at a fixed offset from the
// original. The new node is selected exclusively.
func (s *ClipboardService) Duplicate() (*entities.Node, error) {
	node := s.singleSelection()
	if node == nil {
		return nil, nil
	}
	pos := node.Position.Translate(s.cfg.DuplicateOffsetX, s.cfg.DuplicateOffsetY)
	return s.flow.InsertNodeWithData(node.Type, node.Data, &pos)
}

// Paste inserts the clipboard's node at the current resolved insert
// position (explicit is never given here, so pending position or the
// viewport fallback applies). The new node is selected exclusively.
func (s *ClipboardService) Paste() (*entities.Node, error) {
	if s.clipboard == nil {
		return nil, nil
	}
	return s.flow.InsertNodeWithData(s.clipboard.nodeType, s.clipboard.data, nil)
}

// PasteAt inserts the clipboard's node at an explicit position
func (s *ClipboardService) PasteAt(pos valueobjects.Position) (*entities.Node, error) {
	if s.clipboard == nil {
		return nil, nil
	}
	return s.flow.InsertNodeWithData(s.clipboard.nodeType, s.clipboard.data, &pos)
}

// singleSelection returns the selected node when exactly one is selected
func (s *ClipboardService) singleSelection() *entities.Node {
	selected := s.flow.Workflow().SelectedNodes()
	if len(selected) != 1 {
		return nil
	}
	return selected[0]
}
