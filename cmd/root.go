// Package cmd holds the command line of the marketplace backend. Running the
// binary without a subcommand starts the HTTP server.
package cmd

import (
	"os"

	"go-market-backend/config"
	"go-market-backend/logger"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "market",
		Short:         "Digital product marketplace backend",
		Long:          "Serves the marketplace API and manages its database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	root.PersistentFlags().Bool("log-json", false, "Log as JSON; overrides LOG_JSON")

	root.AddCommand(
		newServeCommand(),
		newSeedCommand(),
		newCreateAdminCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		logger.New(nil).Error("command failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, logger.Logger) {
	cfg := config.Load()
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON, _ = cmd.Flags().GetBool("log-json")
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.LogLevel(cfg.LogLevel)
	logCfg.JSON = cfg.LogJSON
	return cfg, logger.New(logCfg)
}
