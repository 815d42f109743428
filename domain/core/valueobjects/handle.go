package valueobjects

// HandleRole distinguishes the two sides of a connection point
type HandleRole string

const (
	HandleRoleSource HandleRole = "source"
	HandleRoleTarget HandleRole = "target"
)

// Handle is a named connection point declared by a node type. Handle names
// are only meaningful relative to the declaring type ("body"/"exit" exist on
// loop nodes, "true"/"false" on branch nodes).
type Handle struct {
	Name string     `json:"name"`
	Role HandleRole `json:"role"`
}

// NewSourceHandle creates a source-role handle
func NewSourceHandle(name string) Handle {
	return Handle{Name: name, Role: HandleRoleSource}
}

// NewTargetHandle creates a target-role handle
func NewTargetHandle(name string) Handle {
	return Handle{Name: name, Role: HandleRoleTarget}
}

// IsSource reports whether the handle is a source connection point
func (h Handle) IsSource() bool {
	return h.Role == HandleRoleSource
}

// IsTarget reports whether the handle is a target connection point
func (h Handle) IsTarget() bool {
	return h.Role == HandleRoleTarget
}
