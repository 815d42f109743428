package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatflow-backend/application/services"
	domaincfg "chatflow-backend/domain/config"
	"chatflow-backend/domain/core/aggregates"
	"chatflow-backend/domain/core/validators"
	infraconfig "chatflow-backend/infrastructure/config"
	"chatflow-backend/infrastructure/persistence/document"
	"chatflow-backend/pkg/clock"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a workflow document",
	Long: `Load a workflow document and run structural validation against it.

Exits non-zero when any error-severity diagnostic is present, so the
command can gate a save or deploy step.

Examples:
  flowctl validate workflow.json
  flowctl validate workflow.json --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	domainCfg := domainConfigFrom(cfg)
	store := document.NewStore(domainCfg, logger)
	workflow, err := store.Load(args[0])
	if err != nil {
		return err
	}

	scheduler := services.NewValidationScheduler(workflow, cfg.DebounceWindow(), clock.NewReal(), logger)
	defer scheduler.Close()
	state := scheduler.FlushNow()

	printDiagnostics(cmd, state)

	if !state.IsValid {
		return fmt.Errorf("workflow %s is not executable", workflow.ID())
	}
	cmd.Printf("workflow %s is valid\n", workflow.ID())
	return nil
}

func printDiagnostics(cmd *cobra.Command, state aggregates.ValidationState) {
	for _, d := range state.Errors {
		marker := "error"
		if d.Severity == validators.SeverityWarning {
			marker = "warning"
		}
		cmd.Printf("%s\t%s\t%s\n", marker, d.NodeID, d.Message)
	}
}

// domainConfigFrom projects the runtime configuration onto the domain rules
func domainConfigFrom(cfg *infraconfig.Config) *domaincfg.DomainConfig {
	domainCfg := domaincfg.DefaultDomainConfig()
	domainCfg.MaxNodesPerWorkflow = cfg.MaxNodesPerWorkflow
	domainCfg.MaxEdgesPerWorkflow = cfg.MaxEdgesPerWorkflow
	domainCfg.DebounceWindow = cfg.DebounceWindow()
	return domainCfg
}
