package analysisconfig

// Config is the analysis-parameters document. It is loaded from YAML with
// strict field checking, defaults applied, and validated before any
// analysis begins.
type Config struct {
	Momentum    MomentumParams    `yaml:"momentum" json:"momentum"`
	Correlation CorrelationParams `yaml:"correlation" json:"correlation"`
	Data        DataParams        `yaml:"data" json:"data"`
}

// MomentumParams configures per-symbol indicator computation.
type MomentumParams struct {
	RSIPeriod  int `yaml:"rsi_period" json:"rsi_period" default:"14" validate:"gt=0"`
	MACDFast   int `yaml:"macd_fast" json:"macd_fast" default:"12" validate:"gt=0"`
	MACDSlow   int `yaml:"macd_slow" json:"macd_slow" default:"26" validate:"gt=0"`
	MACDSignal int `yaml:"macd_signal" json:"macd_signal" default:"9" validate:"gt=0"`
	SMAShort   int `yaml:"sma_short" json:"sma_short" default:"20" validate:"gt=0"`
	SMALong    int `yaml:"sma_long" json:"sma_long" default:"50" validate:"gt=0"`

	// SignalPrecedence orders the rules used to derive a trading signal;
	// the first matching rule wins. See momentum.KnownRules for valid names.
	SignalPrecedence []string `yaml:"signal_precedence" json:"signal_precedence"`
}

// CorrelationParams configures per-portfolio correlation analysis.
type CorrelationParams struct {
	LookbackPeriod int     `yaml:"lookback_period" json:"lookback_period" default:"60" validate:"gt=0"`
	MinCorrelation float64 `yaml:"min_correlation" json:"min_correlation" default:"0.5" validate:"gte=0,lte=1"`
}

// DataParams bounds data fetching and run parallelism.
type DataParams struct {
	// LookbackBars is how many daily bars to request per symbol. It must
	// cover the largest indicator window.
	LookbackBars int `yaml:"lookback_bars" json:"lookback_bars" default:"180" validate:"gt=0"`

	// Workers caps concurrent per-symbol fetch+analyze workers.
	Workers int `yaml:"workers" json:"workers" default:"4" validate:"gt=0,lte=32"`
}

// DefaultSignalPrecedence is the rule order applied when the document does
// not set one: overbought/oversold RSI first, then MACD crosses.
var DefaultSignalPrecedence = []string{
	"rsi_overbought",
	"rsi_oversold",
	"golden_cross",
	"death_cross",
}

// MaxLookback returns the largest indicator window the momentum parameters
// require, in bars. A series shorter than this can still be analyzed; the
// affected indicators are reported as unavailable.
func (m MomentumParams) MaxLookback() int {
	max := m.RSIPeriod + 1
	if n := m.MACDSlow + m.MACDSignal; n > max {
		max = n
	}
	if m.SMALong > max {
		max = m.SMALong
	}
	return max
}
