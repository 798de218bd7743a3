package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-level configuration for the engine.
// Analysis parameters and the watchlist live in their own YAML documents
// (internal/analysisconfig); this covers everything the process itself needs.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Configuration documents
	AnalysisConfigPath string
	WatchlistPath      string

	// Notification
	Notifier NotifierConfig

	// Scheduling
	Schedule string // cron expression (with seconds) for the scheduler daemon

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool

	// Fetching
	Fetch FetchConfig
}

// NotifierConfig selects and configures the notification sink.
type NotifierConfig struct {
	Kind       string // "webhook" or "log"
	WebhookURL string
	Timeout    time.Duration
}

// FetchConfig bounds the quote fetcher.
type FetchConfig struct {
	RequestsPerSecond float64
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
}

// Load reads configuration from environment variables, consulting a .env
// file when one is present next to the working directory or binary.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8087"),
		Env:  getEnv("ENV", "development"),

		AnalysisConfigPath: getEnv("ANALYSIS_CONFIG", "config/analysis.yaml"),
		WatchlistPath:      getEnv("WATCHLIST_CONFIG", "config/watchlist.yaml"),

		Notifier: NotifierConfig{
			Kind:       getEnv("NOTIFIER", "log"),
			WebhookURL: getEnv("NOTIFIER_WEBHOOK_URL", ""),
			Timeout:    getEnvAsDuration("NOTIFIER_TIMEOUT", "10s"),
		},

		Schedule: getEnv("RUN_SCHEDULE", "0 0 17 * * MON-FRI"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),

		Fetch: FetchConfig{
			RequestsPerSecond: getEnvAsFloat("FETCH_RPS", 2),
			MaxRetries:        getEnvAsInt("FETCH_MAX_RETRIES", 3),
			InitialDelay:      getEnvAsDuration("FETCH_INITIAL_DELAY", "1s"),
			MaxDelay:          getEnvAsDuration("FETCH_MAX_DELAY", "10s"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks required process configuration.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Notifier.Kind {
	case "log":
	case "webhook":
		if c.Notifier.WebhookURL == "" {
			return fmt.Errorf("NOTIFIER_WEBHOOK_URL is required when NOTIFIER=webhook")
		}
	default:
		return fmt.Errorf("NOTIFIER must be one of: log, webhook")
	}

	if c.Fetch.RequestsPerSecond <= 0 {
		return fmt.Errorf("FETCH_RPS must be > 0")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be >= 0")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
