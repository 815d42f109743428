// Package cli implements the flowctl command-line surface for workflow
// documents: validate, inspect and watch.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	infraconfig "chatflow-backend/infrastructure/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "flowctl",
	Short: "Workflow document tooling",
	Long: `flowctl loads, validates and watches chat workflow documents.

A workflow document is the JSON exchange format of the flow builder:
typed nodes, directed edges through named handles, and the last
validation snapshot.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves runtime configuration from the environment and the
// optional --config file
func loadConfig() (*infraconfig.Config, error) {
	if configPath != "" {
		return infraconfig.LoadConfigFile(configPath)
	}
	return infraconfig.LoadConfig()
}

// newLogger builds the CLI logger
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
