package analysisconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Load reads the analysis-parameters YAML document. Unknown fields fail
// immediately, defaults are applied to anything the document omits, and
// the result is validated before it is handed to the engine.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis config: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates an analysis-parameters document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // reject typos and unused fields immediately
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse analysis config: %w", err)
	}

	// Zeroed fields in the document fall back to defaults as well.
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(cfg.Momentum.SignalPrecedence) == 0 {
		cfg.Momentum.SignalPrecedence = append([]string(nil), DefaultSignalPrecedence...)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field-level and cross-field constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validate analysis config: %w", err)
	}

	m := cfg.Momentum
	if m.MACDFast >= m.MACDSlow {
		return ValidationError{"momentum", fmt.Sprintf("macd_fast=%d must be < macd_slow=%d", m.MACDFast, m.MACDSlow)}
	}
	if m.SMAShort >= m.SMALong {
		return ValidationError{"momentum", fmt.Sprintf("sma_short=%d must be < sma_long=%d", m.SMAShort, m.SMALong)}
	}

	seen := make(map[string]bool, len(m.SignalPrecedence))
	for _, rule := range m.SignalPrecedence {
		if !knownRule(rule) {
			return ValidationError{"momentum.signal_precedence", fmt.Sprintf("unknown rule %q", rule)}
		}
		if seen[rule] {
			return ValidationError{"momentum.signal_precedence", fmt.Sprintf("duplicate rule %q", rule)}
		}
		seen[rule] = true
	}

	if cfg.Data.LookbackBars < cfg.Correlation.LookbackPeriod+1 {
		return ValidationError{"data.lookback_bars",
			fmt.Sprintf("must be >= correlation.lookback_period+1 (%d)", cfg.Correlation.LookbackPeriod+1)}
	}
	if cfg.Data.LookbackBars < m.MaxLookback() {
		return ValidationError{"data.lookback_bars",
			fmt.Sprintf("must cover the largest momentum window (%d)", m.MaxLookback())}
	}

	return nil
}

// ValidationError reports an invalid configuration field. It is fatal: the
// run aborts before any fetch.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// knownRule reports whether a signal precedence rule name is recognized.
func knownRule(name string) bool {
	switch name {
	case "rsi_overbought", "rsi_oversold", "golden_cross", "death_cross":
		return true
	}
	return false
}

// Hash generates a SHA-256 hash of the effective configuration, used for
// run provenance. Struct (not map) marshalling keeps the hash reproducible.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
