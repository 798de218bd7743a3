package analysisconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Momentum.RSIPeriod)
	assert.Equal(t, 12, cfg.Momentum.MACDFast)
	assert.Equal(t, 26, cfg.Momentum.MACDSlow)
	assert.Equal(t, 9, cfg.Momentum.MACDSignal)
	assert.Equal(t, 20, cfg.Momentum.SMAShort)
	assert.Equal(t, 50, cfg.Momentum.SMALong)
	assert.Equal(t, DefaultSignalPrecedence, cfg.Momentum.SignalPrecedence)

	assert.Equal(t, 60, cfg.Correlation.LookbackPeriod)
	assert.Equal(t, 0.5, cfg.Correlation.MinCorrelation)

	assert.Equal(t, 180, cfg.Data.LookbackBars)
	assert.Equal(t, 4, cfg.Data.Workers)
}

func TestParsePartialDocument(t *testing.T) {
	doc := `
momentum:
  rsi_period: 7
correlation:
  lookback_period: 30
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	// Overridden fields stick, the rest fall back to defaults.
	assert.Equal(t, 7, cfg.Momentum.RSIPeriod)
	assert.Equal(t, 26, cfg.Momentum.MACDSlow)
	assert.Equal(t, 30, cfg.Correlation.LookbackPeriod)
	assert.Equal(t, 0.5, cfg.Correlation.MinCorrelation)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	doc := `
momentum:
  rsi_window: 14
`
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}

func TestValidateCrossFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"macd fast >= slow", "momentum:\n  macd_fast: 26\n  macd_slow: 12\n"},
		{"sma short >= long", "momentum:\n  sma_short: 50\n  sma_long: 20\n"},
		{"unknown precedence rule", "momentum:\n  signal_precedence: [rsi_overbought, momentum_flip]\n"},
		{"duplicate precedence rule", "momentum:\n  signal_precedence: [golden_cross, golden_cross]\n"},
		{"lookback bars below correlation window", "data:\n  lookback_bars: 40\n"},
		{"negative min correlation", "correlation:\n  min_correlation: -0.1\n"},
		{"too many workers", "data:\n  workers: 64\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestMaxLookback(t *testing.T) {
	m := MomentumParams{RSIPeriod: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 9, SMAShort: 20, SMALong: 50}
	assert.Equal(t, 50, m.MaxLookback())

	// MACD window dominates when SMA is short.
	m.SMALong = 30
	assert.Equal(t, 35, m.MaxLookback())
}

func TestHashDeterministic(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	hash2, err := Hash(cfg)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)

	// A parameter change must change the hash.
	cfg.Momentum.RSIPeriod = 21
	hash3, err := Hash(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash3)
}
