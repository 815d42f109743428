package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chatflow-backend/application/services"
	"chatflow-backend/domain/core/aggregates"
	"chatflow-backend/infrastructure/persistence/document"
	"chatflow-backend/pkg/clock"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-validate a workflow document whenever it changes",
	Long: `Watch a workflow document and re-run structural validation after each
change, debounced over the configured quiescence window so editor write
bursts produce a single run.

Example:
  flowctl watch workflow.json`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// validationPrinter builds the observer reporting each validation run. It
// is the only place the watch loop prints diagnostics, so every run shows
// each finding exactly once.
func validationPrinter(cmd *cobra.Command, workflow *aggregates.Workflow) func(aggregates.ValidationState) {
	return func(state aggregates.ValidationState) {
		printDiagnostics(cmd, state)
		if state.IsValid {
			cmd.Printf("workflow %s is valid\n", workflow.ID())
		} else {
			cmd.Printf("workflow %s is not executable\n", workflow.ID())
		}
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

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
	workflow, err := store.Load(path)
	if err != nil {
		return err
	}

	scheduler := services.NewValidationScheduler(workflow, cfg.DebounceWindow(), clock.NewReal(), logger)
	defer scheduler.Close()
	scheduler.SetOnValidated(validationPrinter(cmd, workflow))
	// The timer only signals this channel; validation runs on the loop
	// below, the one goroutine that touches the workflow.
	ready := scheduler.Notify()
	flow := services.NewFlowService(workflow, scheduler, logger)
	defer flow.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return err
	}

	// Validate once before the first change arrives; the observer prints
	// the diagnostics.
	flow.ValidateNow()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ready:
			flow.ValidateNow()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			loaded, err := store.Load(path)
			if err != nil {
				logger.Warn("reload failed", zap.String("path", path), zap.Error(err))
				continue
			}
			if err := flow.ReplaceGraph(loaded.Nodes(), loaded.Edges()); err != nil {
				logger.Warn("replace failed", zap.String("path", path), zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		case <-stop:
			return nil
		}
	}
}
