package momentum

import (
	"stockwatch/internal/analysisconfig"
	"stockwatch/internal/quotes"
)

// Signal is the trading stance derived from momentum indicators.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Rule names accepted in the signal precedence list.
const (
	RuleRSIOverbought = "rsi_overbought"
	RuleRSIOversold   = "rsi_oversold"
	RuleGoldenCross   = "golden_cross"
	RuleDeathCross    = "death_cross"
)

// KnownRules lists every rule name the analyzer understands.
var KnownRules = []string{RuleRSIOverbought, RuleRSIOversold, RuleGoldenCross, RuleDeathCross}

// IndicatorSet holds the latest indicator values for one symbol. Nil
// fields mean the series was too short for that indicator.
type IndicatorSet struct {
	RSI        *float64 `json:"rsi,omitempty"`
	MACDLine   *float64 `json:"macd_line,omitempty"`
	MACDSignal *float64 `json:"macd_signal,omitempty"`
	MACDHist   *float64 `json:"macd_histogram,omitempty"`
	SMAShort   *float64 `json:"sma_short,omitempty"`
	SMALong    *float64 `json:"sma_long,omitempty"`

	GoldenCross bool `json:"golden_cross"`
	DeathCross  bool `json:"death_cross"`
}

// Analysis is the momentum result for one symbol.
type Analysis struct {
	Symbol     string       `json:"symbol"`
	Indicators IndicatorSet `json:"indicators"`
	Signal     Signal       `json:"signal"`
	Reason     string       `json:"reason"`
}

// Analyzer computes momentum indicators and derives a signal per the
// configured rule precedence.
type Analyzer struct {
	params     analysisconfig.MomentumParams
	precedence []string
}

// NewAnalyzer creates an Analyzer from validated analysis parameters.
func NewAnalyzer(params analysisconfig.MomentumParams) *Analyzer {
	precedence := params.SignalPrecedence
	if len(precedence) == 0 {
		precedence = analysisconfig.DefaultSignalPrecedence
	}
	return &Analyzer{params: params, precedence: precedence}
}

// Analyze derives the indicator set and signal for one series. A
// series too short for every indicator yields HOLD with an
// insufficient data reason rather than an error.
func (a *Analyzer) Analyze(series *quotes.Series) Analysis {
	closes := series.Closes()

	result := Analysis{Symbol: series.Symbol}
	ind := &result.Indicators

	if v, ok := rsi(closes, a.params.RSIPeriod); ok {
		ind.RSI = ptr(v)
	}
	if v, ok := sma(closes, a.params.SMAShort); ok {
		ind.SMAShort = ptr(v)
	}
	if v, ok := sma(closes, a.params.SMALong); ok {
		ind.SMALong = ptr(v)
	}

	line, sig, hist, prevHist, ok, prevOK := macd(closes, a.params.MACDFast, a.params.MACDSlow, a.params.MACDSignal)
	if ok {
		ind.MACDLine = ptr(line)
		ind.MACDSignal = ptr(sig)
		ind.MACDHist = ptr(hist)
	}
	if ok && prevOK {
		ind.GoldenCross = prevHist <= 0 && hist > 0
		ind.DeathCross = prevHist >= 0 && hist < 0
	}

	result.Signal, result.Reason = a.deriveSignal(ind)
	return result
}

// deriveSignal walks the configured rule precedence and returns the
// first matching rule's stance. No match means HOLD.
func (a *Analyzer) deriveSignal(ind *IndicatorSet) (Signal, string) {
	if ind.RSI == nil && ind.MACDHist == nil && ind.SMAShort == nil && ind.SMALong == nil {
		return SignalHold, "insufficient data"
	}

	for _, rule := range a.precedence {
		switch rule {
		case RuleRSIOverbought:
			if ind.RSI != nil && *ind.RSI > 70 {
				// A fresh golden cross dominates an overbought reading.
				if ind.GoldenCross {
					return SignalBuy, "MACD golden cross over RSI overbought"
				}
				return SignalSell, "RSI overbought"
			}
		case RuleRSIOversold:
			if ind.RSI != nil && *ind.RSI < 30 {
				return SignalBuy, "RSI oversold"
			}
		case RuleGoldenCross:
			if ind.GoldenCross && ind.bullishAlignment() {
				return SignalBuy, "MACD golden cross"
			}
		case RuleDeathCross:
			if ind.DeathCross && ind.bearishAlignment() {
				return SignalSell, "MACD death cross"
			}
		}
	}
	return SignalHold, "no active rule"
}

// bullishAlignment reports short SMA above long SMA. When either SMA is
// unavailable the alignment condition drops out of the decision.
func (s *IndicatorSet) bullishAlignment() bool {
	if s.SMAShort == nil || s.SMALong == nil {
		return true
	}
	return *s.SMAShort > *s.SMALong
}

func (s *IndicatorSet) bearishAlignment() bool {
	if s.SMAShort == nil || s.SMALong == nil {
		return true
	}
	return *s.SMAShort < *s.SMALong
}

func ptr(v float64) *float64 { return &v }
