// Package cmd implements the scorecard command line.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fidde/scorecard/internal/config"
	"github.com/fidde/scorecard/internal/logging"
	"github.com/fidde/scorecard/internal/metrics"
	"github.com/fidde/scorecard/internal/report"
	"github.com/fidde/scorecard/internal/storage"
)

var (
	cfgFile   string
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "scorecard",
	Short: "Deployment scorecard service",
	Long: `Serves deployment scorecard grids built from the deployment store:
per-application metric matrices, deployment frequency and environment lag.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file")
	flags.String("backend", "", "store backend: postgres, sqlite or clickhouse (overrides SCORECARD_STORE_BACKEND)")
	flags.String("dsn", "", "store DSN; the database path for sqlite (overrides SCORECARD_STORE_DSN)")
	flags.String("schema", "", "schema holding the scorecard tables (overrides SCORECARD_STORE_SCHEMA)")
	flags.String("log-level", "", "log level: debug, info, warn or error (overrides SCORECARD_LOG_LEVEL)")
	viper.BindPFlag("store.backend", flags.Lookup("backend"))
	viper.BindPFlag("store.dsn", flags.Lookup("dsn"))
	viper.BindPFlag("store.schema", flags.Lookup("schema"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	configErr = nil
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			configErr = fmt.Errorf("reading config file: %w", err)
		}
	}
}

// setup resolves configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	if configErr != nil {
		return nil, nil, configErr
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage.Store, error) {
	store, err := storage.NewStorage(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func newEngine(pool storage.Pool, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*report.Engine, error) {
	return report.NewEngine(pool, report.Options{
		Schema:  cfg.Schema,
		Retry:   cfg.Retry,
		Logger:  logger,
		Metrics: m,
	})
}
