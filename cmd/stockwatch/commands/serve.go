package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stockwatch/internal/api"
	"stockwatch/internal/api/handlers"
	"stockwatch/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health      - Health check
  GET  /metrics     - Prometheus metrics (when enabled)
  POST /api/run     - Trigger an analysis run
  GET  /api/report  - Latest run result
  GET  /api/state   - Engine lifecycle state

Example:
  go run ./cmd/stockwatch serve
  go run ./cmd/stockwatch serve --port 8087`,
	RunE: runServer,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from PORT)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadProcessConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log := logger.New(cfg)

	eng, err := buildEngine(cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to build engine")
		return err
	}

	analysisHandler := handlers.NewAnalysisHandler(eng, log)
	router := api.NewRouter(analysisHandler, cfg.MetricsEnabled, log)
	server := api.New(cfg, log, router)

	// Start server in a goroutine so shutdown can be handled below
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
