// Package cli provides the command-line interface for the coaching engine.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trading-coach/internal/config"
	"trading-coach/internal/engine"
	"trading-coach/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
	Engine *engine.Engine
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, commands needing data will fail")
	} else {
		app.Store = dataStore
		app.Engine = engine.New(cfg, dataStore, logger)
		logger.Debug().Str("path", cfg.Database.Path).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:     "coach",
		Short:   "Trading psychology analytics and pattern recognition",
		Version: Version,
		Long: `coach analyzes a trader's history for behavioral patterns:
emotional triggers, risk-management lapses, discipline issues, timing
weaknesses, and responses to coaching. Patterns persist across runs and
feed prioritized coaching insights.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Store != nil {
				app.Store.Close()
			}
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newPatternsCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newImportCmd(app))

	return rootCmd
}
