package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fidde/scorecard/internal/api"
	"github.com/fidde/scorecard/internal/metrics"
	"github.com/fidde/scorecard/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides SCORECARD_SERVER_ADDR)")
	serveCmd.Flags().String("reports-dir", "", "serve /reports from this directory instead of the embedded assets")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.reports_dir", serveCmd.Flags().Lookup("reports-dir"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing store", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	engine, err := newEngine(store, cfg, logger, m)
	if err != nil {
		return err
	}

	reports, err := web.Reports(cfg.ReportsDir)
	if err != nil {
		return fmt.Errorf("failed to open report assets: %w", err)
	}

	server := api.NewServer(engine, store, api.Options{
		Addr:           cfg.Addr,
		RequestTimeout: cfg.RequestTimeout,
		Reports:        reports,
		Logger:         logger,
		Metrics:        m,
		Gatherer:       registry,
	})

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting scorecard server",
			zap.String("address", cfg.Addr),
			zap.String("backend", cfg.Store.Backend),
		)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down API server", zap.Error(err))
	}
	logger.Info("Shutdown complete")
	return nil
}
