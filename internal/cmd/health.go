package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fidde/scorecard/internal/api"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the store and exit non-zero when it is down",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().Duration("timeout", 5*time.Second, "probe timeout")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	resp := api.HealthResponse{Status: "UP", ServiceName: api.ServiceName}
	store, err := openStore(ctx, cfg, logger)
	if err == nil {
		err = store.Ping(ctx)
		store.Close()
	}
	if err != nil {
		resp.Status = "DOWN"
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if encErr := enc.Encode(resp); encErr != nil {
		return encErr
	}
	if err != nil {
		return fmt.Errorf("store is down: %w", err)
	}
	return nil
}
