// Package validators hosts the structural validation engine for workflow
// graphs. Validation is a pure function over a (nodes, edges) snapshot:
// identical input always yields the identical ordered diagnostic list.
package validators

import (
	"chatflow-backend/domain/core/entities"
)

// Severity grades a diagnostic. Only error-severity diagnostics make a
// workflow invalid; warnings never gate.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic categories
const (
	DiagnosticConnection = "connection"
	DiagnosticFlow       = "flow"
)

// FlowNodeID keys flow-level diagnostics that have no single owning node
const FlowNodeID = "flow"

// Loop handle names the engine checks for
const (
	HandleBody = "body"
	HandleExit = "exit"
)

// Diagnostic is a structured validation finding. It is data returned to
// the caller, never an error: editing continues regardless.
type Diagnostic struct {
	NodeID   string   `json:"nodeId"`
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Diagnostic messages
const (
	msgNoIncoming  = "no incoming connections"
	msgNoOutgoing  = "no outgoing connections"
	msgMissingExit = "missing exit connection"
	msgMissingBody = "missing body connection"
	msgNoStart     = "workflow is missing a connected start node"
	msgNoEnd       = "workflow is missing a connected end node"
)

// adjacency partitions a node's connected edges
type adjacency struct {
	incoming []*entities.Edge
	outgoing []*entities.Edge
}

// ValidateFlow checks every node's connectivity plus the flow-level
// start/end requirements and returns the ordered diagnostic list: per-node
// findings in node order, then flow-level findings.
func ValidateFlow(nodes []*entities.Node, edges []*entities.Edge) []Diagnostic {
	byID := make(map[string]*entities.Node, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}

	adjacencies := make(map[string]*adjacency, len(nodes))
	adj := func(id string) *adjacency {
		a, ok := adjacencies[id]
		if !ok {
			a = &adjacency{}
			adjacencies[id] = a
		}
		return a
	}
	for _, edge := range edges {
		adj(edge.Source).outgoing = append(adj(edge.Source).outgoing, edge)
		adj(edge.Target).incoming = append(adj(edge.Target).incoming, edge)
	}

	diagnostics := []Diagnostic{}

	startConnected := false
	endConnected := false

	for _, node := range nodes {
		a := adj(node.ID)

		if node.Type == entities.NodeTypeStart && len(a.outgoing) >= 1 {
			startConnected = true
		}
		if node.Type == entities.NodeTypeEnd && len(a.incoming) >= 1 {
			endConnected = true
		}

		diagnostics = append(diagnostics, validateNode(node, a, byID)...)
	}

	if !startConnected {
		diagnostics = append(diagnostics, Diagnostic{
			NodeID:   FlowNodeID,
			Type:     DiagnosticFlow,
			Message:  msgNoStart,
			Severity: SeverityError,
		})
	}
	if !endConnected {
		diagnostics = append(diagnostics, Diagnostic{
			NodeID:   FlowNodeID,
			Type:     DiagnosticFlow,
			Message:  msgNoEnd,
			Severity: SeverityError,
		})
	}

	return diagnostics
}

// validateNode applies the per-node connectivity rules
func validateNode(node *entities.Node, a *adjacency, byID map[string]*entities.Node) []Diagnostic {
	var diagnostics []Diagnostic

	nodeError := func(message string) {
		diagnostics = append(diagnostics, Diagnostic{
			NodeID:   node.ID,
			Type:     DiagnosticConnection,
			Message:  message,
			Severity: SeverityError,
		})
	}

	// Every node except start must be reachable.
	if node.Type != entities.NodeTypeStart && len(a.incoming) == 0 {
		nodeError(msgNoIncoming)
	}

	switch node.Type {
	case entities.NodeTypeStart:
		if len(a.outgoing) == 0 {
			nodeError(msgNoOutgoing)
		}
	case entities.NodeTypeEnd:
		// Terminal: no outgoing requirement.
	case entities.NodeTypeLoop:
		if !hasOutgoingHandle(a.outgoing, HandleExit) {
			nodeError(msgMissingExit)
		}
		if !hasOutgoingHandle(a.outgoing, HandleBody) {
			nodeError(msgMissingBody)
		}
	default:
		// A direct child of a loop's body handle ends the visible chain;
		// its outgoing requirement is waived.
		if len(a.outgoing) == 0 && !isInLoopBody(a.incoming, byID) {
			nodeError(msgNoOutgoing)
		}
	}

	return diagnostics
}

// hasOutgoingHandle reports whether any outgoing edge leaves through the
// named source handle
func hasOutgoingHandle(outgoing []*entities.Edge, handle string) bool {
	for _, edge := range outgoing {
		if edge.SourceHandle == handle {
			return true
		}
	}
	return false
}

// isInLoopBody reports whether any incoming edge originates from a loop
// node's body handle. Edges from unknown source ids are ignored rather
// than treated as failures.
func isInLoopBody(incoming []*entities.Edge, byID map[string]*entities.Node) bool {
	for _, edge := range incoming {
		source, ok := byID[edge.Source]
		if !ok {
			continue
		}
		if source.Type == entities.NodeTypeLoop && edge.SourceHandle == HandleBody {
			return true
		}
	}
	return false
}

// IsValid reports whether the diagnostic list contains no error-severity
// findings
func IsValid(diagnostics []Diagnostic) bool {
	for _, d := range diagnostics {
		if d.Severity == SeverityError {
			return false
		}
	}
	return true
}
