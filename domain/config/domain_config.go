package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Workflow constraints
	MaxNodesPerWorkflow int
	MaxEdgesPerWorkflow int
	DefaultWorkflowName string

	// Editing behavior
	DuplicateOffsetX float64
	DuplicateOffsetY float64

	// Select-all only applies once the workflow has more than this many
	// nodes, so a bare start/end pair is never bulk-selected.
	SelectAllMinNodes int

	// Validation settings
	DebounceWindow time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerWorkflow: 10000,
		MaxEdgesPerWorkflow: 50000,
		DefaultWorkflowName: "Untitled Workflow",

		DuplicateOffsetX: 100,
		DuplicateOffsetY: 100,

		SelectAllMinNodes: 2,

		DebounceWindow: 300 * time.Millisecond,
	}
}
