package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stockwatch/internal/engine"
	"stockwatch/pkg/logger"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one analysis pass and print the report",
	Long: `Runs the full analysis pipeline once: fetch quote history for every
watchlist symbol, compute momentum and correlation analytics, compose
the report, and hand it to the configured notifier. The full run
result is also printed as JSON.

Example:
  go run ./cmd/stockwatch run
  go run ./cmd/stockwatch run --watchlist config/watchlist.yaml`,
	RunE: runOnce,
}

var runTimeout time.Duration

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "overall run timeout")
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadProcessConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg)

	eng, err := buildEngine(cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to build engine")
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	result, runErr := eng.Run(ctx, engine.Request{Source: "cli"})

	if result != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("analysis run: %w", runErr)
	}

	return nil
}
