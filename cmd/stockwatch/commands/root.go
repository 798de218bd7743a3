package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockwatch/internal/analysisconfig"
	"stockwatch/internal/engine"
	"stockwatch/internal/notify"
	"stockwatch/internal/quotes"
	"stockwatch/pkg/config"
	"stockwatch/pkg/logger"
	"stockwatch/pkg/metrics"
)

var (
	// Global flags
	analysisConfigPath string
	watchlistPath      string
	verbose            bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stockwatch",
	Short: "Stockwatch - watchlist momentum and correlation analysis",
	Long: `Stockwatch analyzes a watchlist of stock symbols: it fetches daily
quote history, computes momentum indicators (RSI, MACD, SMA) and a
pairwise return-correlation matrix, and composes a report with
per-symbol signals and portfolio diversification diagnostics.

Usage:
  go run ./cmd/stockwatch [command]

Examples:
  go run ./cmd/stockwatch run
  go run ./cmd/stockwatch serve
  go run ./cmd/stockwatch scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&analysisConfigPath, "analysis-config", "", "analysis parameters YAML (default from ANALYSIS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&watchlistPath, "watchlist", "", "watchlist YAML (default from WATCHLIST_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadProcessConfig loads process configuration and applies flag overrides.
func loadProcessConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if analysisConfigPath != "" {
		cfg.AnalysisConfigPath = analysisConfigPath
	}
	if watchlistPath != "" {
		cfg.WatchlistPath = watchlistPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// buildEngine wires the full analysis pipeline from configuration.
func buildEngine(cfg *config.Config, log *logger.Logger) (*engine.Engine, error) {
	analysisCfg, err := analysisconfig.Load(cfg.AnalysisConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load analysis config: %w", err)
	}

	watchlist, err := analysisconfig.LoadWatchlist(cfg.WatchlistPath)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	source := quotes.NewYahooSource(log)
	fetcher := quotes.NewFetcher(source, cfg.Fetch, log)

	notifier, err := notify.New(cfg.Notifier, log)
	if err != nil {
		return nil, fmt.Errorf("create notifier: %w", err)
	}

	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.New()
	}

	return engine.New(analysisCfg, watchlist, fetcher, notifier, log, rec), nil
}
