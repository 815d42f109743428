package document

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"chatflow-backend/domain/config"
	"chatflow-backend/domain/core/aggregates"
)

// Store reads and writes workflow documents as JSON files
type Store struct {
	validate *validator.Validate
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewStore creates a document store
func NewStore(cfg *config.DomainConfig, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		validate: validator.New(),
		cfg:      cfg,
		logger:   logger,
	}
}

// Parse decodes and structurally validates a raw document
func (s *Store) Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing workflow document: %w", err)
	}
	if err := s.validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("invalid workflow document: %w", err)
	}
	return &doc, nil
}

// Load reads a workflow document file into an aggregate
func (s *Store) Load(path string) (*aggregates.Workflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow document: %w", err)
	}
	doc, err := s.Parse(raw)
	if err != nil {
		return nil, err
	}
	workflow, err := ToWorkflow(doc, s.cfg)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("workflow loaded",
		zap.String("path", path),
		zap.String("workflowID", workflow.ID()),
		zap.Int("nodes", workflow.NodeCount()),
		zap.Int("edges", workflow.EdgeCount()),
	)
	return workflow, nil
}

// Save writes an aggregate to a workflow document file
func (s *Store) Save(path string, workflow *aggregates.Workflow) error {
	doc, err := FromWorkflow(workflow)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding workflow document: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("writing workflow document: %w", err)
	}

	s.logger.Debug("workflow saved",
		zap.String("path", path),
		zap.String("workflowID", workflow.ID()),
	)
	return nil
}
