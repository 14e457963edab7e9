package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fidde/scorecard/internal/storage"
	"github.com/fidde/scorecard/internal/storage/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the scorecard schema in a local sqlite store",
	Long: `Creates the scorecard tables and views in a sqlite database and
optionally loads a YAML fixture. Production stores are managed elsewhere.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().String("seed", "", "YAML fixture to load after migrating")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Store.Backend != storage.BackendSQLite {
		return fmt.Errorf("migrate only supports the sqlite backend, got %s", cfg.Store.Backend)
	}

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := sqlite.Migrate(ctx, store.DB()); err != nil {
		return err
	}
	logger.Info("Schema migrated", zap.String("dsn", cfg.Store.DSN))

	seed, _ := cmd.Flags().GetString("seed")
	if seed == "" {
		return nil
	}
	fixture, err := sqlite.LoadFixture(seed)
	if err != nil {
		return err
	}
	if err := sqlite.Seed(ctx, store.DB(), fixture); err != nil {
		return err
	}
	logger.Info("Fixture loaded",
		zap.String("file", seed),
		zap.Int("applications", len(fixture.Applications)),
		zap.Int("deployments", len(fixture.Deployments)),
	)
	return nil
}
