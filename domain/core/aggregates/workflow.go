package aggregates

import (
	"encoding/json"

	"github.com/google/uuid"

	"chatflow-backend/domain/config"
	"chatflow-backend/domain/core/entities"
	"chatflow-backend/domain/core/validators"
	"chatflow-backend/domain/core/valueobjects"
	"chatflow-backend/domain/registry"
	pkgerrors "chatflow-backend/pkg/errors"
)

// PanelKind identifies a sidebar panel of the editing surface
type PanelKind string

const (
	PanelNone           PanelKind = "none"
	PanelAvailableNodes PanelKind = "available-nodes"
	PanelNodeProperties PanelKind = "node-properties"
	PanelValidation     PanelKind = "validation"
)

// SelectedNodeRef is the node the properties panel is showing
type SelectedNodeRef struct {
	ID   string
	Type entities.NodeType
	Data entities.NodeData
}

// SidebarState mirrors the sidebar block of the document format
type SidebarState struct {
	Active PanelKind
	Panels SidebarPanels
}

// SidebarPanels groups per-panel state
type SidebarPanels struct {
	NodeProperties NodePropertiesPanel
}

// NodePropertiesPanel holds the properties panel's selection
type NodePropertiesPanel struct {
	SelectedNode *SelectedNodeRef
}

// ValidationState is the snapshot the validation engine last wrote back
type ValidationState struct {
	Errors        []validators.Diagnostic
	IsValid       bool
	LastValidated *int64 // unix milliseconds, nil before the first run
}

// PositionResolver supplies a landing position when neither an explicit nor
// a pending position is available. The editing surface typically maps the
// viewport center into graph coordinates.
type PositionResolver func() valueobjects.Position

// Workflow is the aggregate root for one workflow graph. It owns the node
// and edge lists, the pending-insert position, selection, sidebar state and
// the validation snapshot, and keeps them structurally consistent: every
// mutation completes fully before returning, so no caller ever observes a
// dangling edge.
type Workflow struct {
	id    string
	name  string
	nodes []*entities.Node
	edges []*entities.Edge

	pendingPosition *valueobjects.Position
	fallback        PositionResolver

	validation ValidationState
	sidebar    SidebarState
	tags       []entities.Tag

	cfg *config.DomainConfig
}

// NewWorkflow creates an empty workflow aggregate
func NewWorkflow(id, name string, cfg *config.DomainConfig) *Workflow {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if id == "" {
		id = uuid.New().String()
	}
	if name == "" {
		name = cfg.DefaultWorkflowName
	}
	return &Workflow{
		id:    id,
		name:  name,
		nodes: []*entities.Node{},
		edges: []*entities.Edge{},
		validation: ValidationState{
			Errors: []validators.Diagnostic{},
		},
		sidebar: SidebarState{Active: PanelNone},
		tags:    entities.DefaultTags(),
		cfg:     cfg,
	}
}

// ID returns the workflow's identifier
func (w *Workflow) ID() string { return w.id }

// Name returns the workflow's display name
func (w *Workflow) Name() string { return w.name }

// SetName renames the workflow
func (w *Workflow) SetName(name string) { w.name = name }

// NodeCount returns the number of nodes
func (w *Workflow) NodeCount() int { return len(w.nodes) }

// EdgeCount returns the number of edges
func (w *Workflow) EdgeCount() int { return len(w.edges) }

// Nodes returns the node list. The slice is a copy; the nodes are shared.
func (w *Workflow) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, len(w.nodes))
	copy(nodes, w.nodes)
	return nodes
}

// Edges returns the edge list. The slice is a copy; the edges are shared.
func (w *Workflow) Edges() []*entities.Edge {
	edges := make([]*entities.Edge, len(w.edges))
	copy(edges, w.edges)
	return edges
}

// Node finds a node by id
func (w *Workflow) Node(id string) (*entities.Node, bool) {
	for _, node := range w.nodes {
		if node.ID == id {
			return node, true
		}
	}
	return nil, false
}

// Edge finds an edge by id
func (w *Workflow) Edge(id string) (*entities.Edge, bool) {
	for _, edge := range w.edges {
		if edge.ID == id {
			return edge, true
		}
	}
	return nil, false
}

// SetPendingPosition stages the position the next insert should land at,
// e.g. where a context menu was opened. Pass nil to clear it.
func (w *Workflow) SetPendingPosition(pos *valueobjects.Position) {
	if pos == nil {
		w.pendingPosition = nil
		return
	}
	p := *pos
	w.pendingPosition = &p
}

// PendingPosition returns the staged insert position, if any
func (w *Workflow) PendingPosition() *valueobjects.Position {
	if w.pendingPosition == nil {
		return nil
	}
	p := *w.pendingPosition
	return &p
}

// SetPositionFallback injects the viewport-center resolver used when no
// explicit or pending position is available
func (w *Workflow) SetPositionFallback(fallback PositionResolver) {
	w.fallback = fallback
}

// resolveInsertPosition applies the insert position priority: explicit
// argument, then the pending position (consumed), then the fallback.
func (w *Workflow) resolveInsertPosition(explicit *valueobjects.Position) valueobjects.Position {
	if explicit != nil {
		return *explicit
	}
	if w.pendingPosition != nil {
		pos := *w.pendingPosition
		w.pendingPosition = nil
		return pos
	}
	if w.fallback != nil {
		return w.fallback()
	}
	return valueobjects.Position{}
}

// InsertNode creates a node of the given type with its registry default
// data. The new node is selected exclusively and the properties panel is
// pointed at it.
func (w *Workflow) InsertNode(t entities.NodeType, pos *valueobjects.Position) (*entities.Node, error) {
	def, err := registry.Lookup(t)
	if err != nil {
		return nil, err
	}
	return w.insert(t, def.DefaultData(), pos)
}

// InsertNodeWithData creates a node carrying a copy of the given payload,
// used by duplicate and paste
func (w *Workflow) InsertNodeWithData(t entities.NodeType, data entities.NodeData, pos *valueobjects.Position) (*entities.Node, error) {
	if data == nil {
		return w.InsertNode(t, pos)
	}
	if _, err := registry.Lookup(t); err != nil {
		return nil, err
	}
	return w.insert(t, data.Clone(), pos)
}

func (w *Workflow) insert(t entities.NodeType, data entities.NodeData, pos *valueobjects.Position) (*entities.Node, error) {
	if len(w.nodes) >= w.cfg.MaxNodesPerWorkflow {
		return nil, pkgerrors.NewConflictError("maximum nodes per workflow reached").
			WithDetail("limit", w.cfg.MaxNodesPerWorkflow)
	}

	node := entities.NewNode(t, data, w.resolveInsertPosition(pos))

	for _, other := range w.nodes {
		other.Selected = false
	}
	node.Selected = true
	w.nodes = append(w.nodes, node)

	w.ShowNodeProperties(node.ID)

	return node, nil
}

// UpdateNodeData shallow-merges the patch into the node's data at the top
// level only. A missing id is a silent no-op: the caller may race a
// concurrent deletion.
func (w *Workflow) UpdateNodeData(id string, patch entities.DataPatch) error {
	node, ok := w.Node(id)
	if !ok {
		return nil
	}
	merged, err := entities.MergeData(node.Data, patch)
	if err != nil {
		return err
	}
	node.Data = merged
	return nil
}

// DeleteNode removes the node and cascades to every edge touching it.
// Deleting an already-absent id is a no-op. Protected types may still be
// deleted through this primitive; bulk operations are responsible for
// excluding them.
func (w *Workflow) DeleteNode(id string) {
	kept := w.nodes[:0]
	found := false
	for _, node := range w.nodes {
		if node.ID == id {
			found = true
			continue
		}
		kept = append(kept, node)
	}
	w.nodes = kept
	if !found {
		return
	}

	keptEdges := w.edges[:0]
	for _, edge := range w.edges {
		if edge.Touches(id) {
			continue
		}
		keptEdges = append(keptEdges, edge)
	}
	w.edges = keptEdges

	if ref := w.sidebar.Panels.NodeProperties.SelectedNode; ref != nil && ref.ID == id {
		w.sidebar.Panels.NodeProperties.SelectedNode = nil
	}
}

// ApplyNodeChanges processes a heterogeneous change batch in a single pass.
// Every change kind is handled; an add whose id already exists merges into
// the existing node without dropping its data.
func (w *Workflow) ApplyNodeChanges(changes []entities.NodeChange) error {
	for _, change := range changes {
		switch c := change.(type) {
		case entities.AddNodeChange:
			if err := w.applyAdd(c.Node); err != nil {
				return err
			}
		case entities.RemoveNodeChange:
			w.DeleteNode(c.ID)
		case entities.RepositionNodeChange:
			if node, ok := w.Node(c.ID); ok {
				node.Position = c.Position
			}
		case entities.SelectNodeChange:
			if node, ok := w.Node(c.ID); ok {
				node.Selected = c.Selected
			}
		case entities.DimensionsNodeChange:
			if node, ok := w.Node(c.ID); ok {
				dims := c.Dimensions
				node.Measured = &dims
			}
		default:
			return pkgerrors.NewConfigurationError("unhandled node change kind")
		}
	}
	return nil
}

// applyAdd inserts a full node payload, or merges it into the node already
// carrying that id. The existing data survives unrelated field updates.
func (w *Workflow) applyAdd(incoming *entities.Node) error {
	if incoming == nil {
		return nil
	}
	existing, ok := w.Node(incoming.ID)
	if !ok {
		added := incoming.Clone()
		if added.Data == nil {
			def, err := registry.Lookup(added.Type)
			if err != nil {
				return err
			}
			added.Data = def.DefaultData()
		}
		w.nodes = append(w.nodes, added)
		return nil
	}

	existing.Position = incoming.Position
	existing.Selected = incoming.Selected
	if incoming.Measured != nil {
		dims := *incoming.Measured
		existing.Measured = &dims
	}
	if incoming.Data != nil {
		merged, err := mergeIncomingData(existing.Data, incoming.Data)
		if err != nil {
			return err
		}
		existing.Data = merged
	}
	return nil
}

// mergeIncomingData folds a full replacement payload into the existing one
// at the top level, so fields absent from the incoming payload survive
func mergeIncomingData(existing, incoming entities.NodeData) (entities.NodeData, error) {
	if existing == nil || existing.Kind() != incoming.Kind() {
		return incoming.Clone(), nil
	}
	encoded, err := json.Marshal(incoming)
	if err != nil {
		return nil, pkgerrors.NewInternalError("encoding node data").WithCause(err)
	}
	var patch entities.DataPatch
	if err := json.Unmarshal(encoded, &patch); err != nil {
		return nil, pkgerrors.NewInternalError("decoding node data").WithCause(err)
	}
	return entities.MergeData(existing, patch)
}

// Connect builds an edge from the connection with a fresh id and the
// user-deletable tag. Self-loops and duplicates are not rejected; handle
// names are not checked. Dangling references cannot persist because node
// deletion cascades.
func (w *Workflow) Connect(conn entities.Connection) (*entities.Edge, error) {
	if len(w.edges) >= w.cfg.MaxEdgesPerWorkflow {
		return nil, pkgerrors.NewConflictError("maximum edges per workflow reached").
			WithDetail("limit", w.cfg.MaxEdgesPerWorkflow)
	}
	edge := entities.NewEdge(conn)
	w.edges = append(w.edges, edge)
	return edge, nil
}

// RemoveEdge removes an edge by id. Removing an absent id is a no-op.
func (w *Workflow) RemoveEdge(id string) {
	kept := w.edges[:0]
	for _, edge := range w.edges {
		if edge.ID == id {
			continue
		}
		kept = append(kept, edge)
	}
	w.edges = kept
}

// ApplyEdgeChanges processes a batch of edge change records
func (w *Workflow) ApplyEdgeChanges(changes []entities.EdgeChange) error {
	for _, change := range changes {
		switch c := change.(type) {
		case entities.AddEdgeChange:
			if c.Edge != nil {
				w.edges = append(w.edges, c.Edge.Clone())
			}
		case entities.RemoveEdgeChange:
			w.RemoveEdge(c.ID)
		case entities.SelectEdgeChange:
			if edge, ok := w.Edge(c.ID); ok {
				edge.Selected = c.Selected
			}
		default:
			return pkgerrors.NewConfigurationError("unhandled edge change kind")
		}
	}
	return nil
}

// SelectNode selects exactly the given node and deselects all others
func (w *Workflow) SelectNode(id string) {
	for _, node := range w.nodes {
		node.Selected = node.ID == id
	}
}

// ToggleNodeSelection flips only the given node's selection, leaving the
// rest of the selection untouched (modifier click)
func (w *Workflow) ToggleNodeSelection(id string) {
	if node, ok := w.Node(id); ok {
		node.Selected = !node.Selected
	}
}

// SelectAll selects every node except the protected terminals, plus every
// edge. It only takes effect once the workflow holds more than the
// configured minimum, so a bare start/end pair is unaffected.
func (w *Workflow) SelectAll() {
	if len(w.nodes) <= w.cfg.SelectAllMinNodes {
		return
	}
	for _, node := range w.nodes {
		node.Selected = !node.Type.IsProtected()
	}
	for _, edge := range w.edges {
		edge.Selected = true
	}
}

// DeselectAll clears the selection on every node and edge
func (w *Workflow) DeselectAll() {
	for _, node := range w.nodes {
		node.Selected = false
	}
	for _, edge := range w.edges {
		edge.Selected = false
	}
}

// SelectedNodes returns the currently selected nodes in list order
func (w *Workflow) SelectedNodes() []*entities.Node {
	var selected []*entities.Node
	for _, node := range w.nodes {
		if node.Selected {
			selected = append(selected, node)
		}
	}
	return selected
}

// SelectedEdges returns the currently selected edges in list order
func (w *Workflow) SelectedEdges() []*entities.Edge {
	var selected []*entities.Edge
	for _, edge := range w.edges {
		if edge.Selected {
			selected = append(selected, edge)
		}
	}
	return selected
}

// DeleteSelection removes every selected node except the protected
// terminals, cascading their edges, plus every selected edge
func (w *Workflow) DeleteSelection() {
	var nodeIDs []string
	for _, node := range w.SelectedNodes() {
		if node.Type.IsProtected() {
			continue
		}
		nodeIDs = append(nodeIDs, node.ID)
	}
	var edgeIDs []string
	for _, edge := range w.SelectedEdges() {
		edgeIDs = append(edgeIDs, edge.ID)
	}
	for _, id := range nodeIDs {
		w.DeleteNode(id)
	}
	for _, id := range edgeIDs {
		w.RemoveEdge(id)
	}
}

// SetNodes replaces the node list. Nodes arriving without a data payload
// get their registry defaults.
func (w *Workflow) SetNodes(nodes []*entities.Node) error {
	replaced := make([]*entities.Node, 0, len(nodes))
	for _, node := range nodes {
		added := node.Clone()
		if added.Data == nil {
			def, err := registry.Lookup(added.Type)
			if err != nil {
				return err
			}
			added.Data = def.DefaultData()
		}
		replaced = append(replaced, added)
	}
	w.nodes = replaced
	return nil
}

// SetEdges replaces the edge list
func (w *Workflow) SetEdges(edges []*entities.Edge) {
	replaced := make([]*entities.Edge, 0, len(edges))
	for _, edge := range edges {
		replaced = append(replaced, edge.Clone())
	}
	w.edges = replaced
}

// Validation returns the last validation snapshot
func (w *Workflow) Validation() ValidationState {
	state := w.validation
	state.Errors = make([]validators.Diagnostic, len(w.validation.Errors))
	copy(state.Errors, w.validation.Errors)
	if w.validation.LastValidated != nil {
		ts := *w.validation.LastValidated
		state.LastValidated = &ts
	}
	return state
}

// SetValidation replaces the validation snapshot
func (w *Workflow) SetValidation(state ValidationState) {
	if state.Errors == nil {
		state.Errors = []validators.Diagnostic{}
	}
	w.validation = state
}

// Sidebar returns the sidebar state
func (w *Workflow) Sidebar() SidebarState {
	return w.sidebar
}

// SetActivePanel switches the active sidebar panel
func (w *Workflow) SetActivePanel(panel PanelKind) {
	w.sidebar.Active = panel
}

// ShowNodeProperties points the properties panel at the given node and
// brings the panel to the front. An unknown id clears the panel selection.
func (w *Workflow) ShowNodeProperties(id string) {
	node, ok := w.Node(id)
	if !ok {
		w.sidebar.Panels.NodeProperties.SelectedNode = nil
		return
	}
	w.sidebar.Active = PanelNodeProperties
	w.sidebar.Panels.NodeProperties.SelectedNode = &SelectedNodeRef{
		ID:   node.ID,
		Type: node.Type,
		Data: node.Data.Clone(),
	}
}

// SetSelectedNode sets the properties panel selection directly
func (w *Workflow) SetSelectedNode(ref *SelectedNodeRef) {
	w.sidebar.Panels.NodeProperties.SelectedNode = ref
}

// Tags returns the tag catalog
func (w *Workflow) Tags() []entities.Tag {
	tags := make([]entities.Tag, len(w.tags))
	copy(tags, w.tags)
	return tags
}

// SetTags replaces the tag catalog
func (w *Workflow) SetTags(tags []entities.Tag) {
	w.tags = make([]entities.Tag, len(tags))
	copy(w.tags, tags)
}

// CreateTag appends a tag to the catalog
func (w *Workflow) CreateTag(tag entities.Tag) {
	w.tags = append(w.tags, tag)
}

// UpdateTag replaces the tag with the given value
func (w *Workflow) UpdateTag(value string, updated entities.Tag) {
	for i, tag := range w.tags {
		if tag.Value == value {
			w.tags[i] = updated
			return
		}
	}
}

// DeleteTag removes the tag with the given value
func (w *Workflow) DeleteTag(value string) {
	kept := w.tags[:0]
	for _, tag := range w.tags {
		if tag.Value == value {
			continue
		}
		kept = append(kept, tag)
	}
	w.tags = kept
}
