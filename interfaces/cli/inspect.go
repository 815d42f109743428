package cli

import (
	"github.com/spf13/cobra"

	"chatflow-backend/domain/registry"
	"chatflow-backend/infrastructure/persistence/document"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize a workflow document",
	Long: `Print the nodes and edges of a workflow document, with the catalog
title of each node type.

Example:
  flowctl inspect workflow.json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store := document.NewStore(domainConfigFrom(cfg), logger)
	workflow, err := store.Load(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("workflow %s (%s): %d nodes, %d edges\n",
		workflow.ID(), workflow.Name(), workflow.NodeCount(), workflow.EdgeCount())

	for _, node := range workflow.Nodes() {
		title := string(node.Type)
		if def, err := registry.Lookup(node.Type); err == nil {
			title = def.Title
		}
		cmd.Printf("node\t%s\t%s\t(%.0f, %.0f)\n", node.ID, title, node.Position.X, node.Position.Y)
	}
	for _, edge := range workflow.Edges() {
		label := edge.Source
		if edge.SourceHandle != "" {
			label += "[" + edge.SourceHandle + "]"
		}
		cmd.Printf("edge\t%s\t%s -> %s\n", edge.ID, label, edge.Target)
	}

	state := workflow.Validation()
	if state.LastValidated != nil {
		cmd.Printf("last validated: %d, valid: %t, diagnostics: %d\n",
			*state.LastValidated, state.IsValid, len(state.Errors))
	}
	return nil
}
