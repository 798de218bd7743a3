package report

import (
	"time"

	"stockwatch/internal/analysisconfig"
	"stockwatch/internal/correlation"
	"stockwatch/internal/momentum"
)

// SymbolReport is the per-symbol section of an analysis report.
type SymbolReport struct {
	Symbol     string                `json:"symbol"`
	Name       string                `json:"name,omitempty"`
	LastClose  float64               `json:"last_close"`
	Indicators momentum.IndicatorSet `json:"indicators"`
	Signal     momentum.Signal       `json:"signal"`
	Reason     string                `json:"reason"`
}

// PortfolioReport carries one portfolio's correlation analysis: its
// own matrix, diversification score, and high-pair list, computed over
// the member symbols only.
type PortfolioReport struct {
	Name                string               `json:"name"`
	Symbols             []string             `json:"symbols"`
	Correlation         correlation.Analysis `json:"correlation"`
	WeightedCorrelation *float64             `json:"weighted_correlation,omitempty"`
}

// Summary aggregates signal counts into a market stance.
type Summary struct {
	BuyCount  int    `json:"buy_count"`
	SellCount int    `json:"sell_count"`
	HoldCount int    `json:"hold_count"`
	Sentiment string `json:"sentiment"`
}

// AnalysisReport is the full output of one analysis run.
type AnalysisReport struct {
	GeneratedAt   time.Time         `json:"generated_at"`
	ConfigHash    string            `json:"config_hash,omitempty"`
	Symbols       []SymbolReport    `json:"symbols"`
	Portfolios    []PortfolioReport `json:"portfolios"`
	Summary       Summary           `json:"summary"`
	FailedSymbols []string          `json:"failed_symbols,omitempty"`
}

// Composer assembles analysis results into a report. It never mutates
// its inputs.
type Composer struct {
	clock func() time.Time
}

func NewComposer() *Composer {
	return &Composer{clock: time.Now}
}

// Compose builds the report. Symbol sections follow watchlist
// declaration order; symbols that failed to fetch are listed
// separately and carry no section. Correlation results are keyed by
// portfolio name; a portfolio with no entry gets an empty analysis.
func (c *Composer) Compose(
	watchlist *analysisconfig.Watchlist,
	analyses map[string]momentum.Analysis,
	lastCloses map[string]float64,
	correlations map[string]correlation.Analysis,
	weighted func(portfolio analysisconfig.Portfolio) (float64, bool),
	failed []string,
) *AnalysisReport {
	rep := &AnalysisReport{
		GeneratedAt:   c.clock().UTC(),
		Symbols:       make([]SymbolReport, 0, len(analyses)),
		Portfolios:    make([]PortfolioReport, 0, len(watchlist.Portfolios)),
		FailedSymbols: append([]string(nil), failed...),
	}

	for _, sym := range watchlist.AllSymbols() {
		analysis, ok := analyses[sym]
		if !ok {
			continue
		}

		rep.Symbols = append(rep.Symbols, SymbolReport{
			Symbol:     sym,
			Name:       watchlist.DisplayName(sym),
			LastClose:  lastCloses[sym],
			Indicators: analysis.Indicators,
			Signal:     analysis.Signal,
			Reason:     analysis.Reason,
		})

		switch analysis.Signal {
		case momentum.SignalBuy:
			rep.Summary.BuyCount++
		case momentum.SignalSell:
			rep.Summary.SellCount++
		default:
			rep.Summary.HoldCount++
		}
	}
	rep.Summary.Sentiment = sentiment(rep.Summary)

	for _, p := range watchlist.Portfolios {
		pr := PortfolioReport{
			Name:        p.Name,
			Symbols:     p.Symbols(),
			Correlation: correlations[p.Name],
		}
		if weighted != nil {
			if v, ok := weighted(p); ok {
				pr.WeightedCorrelation = &v
			}
		}
		rep.Portfolios = append(rep.Portfolios, pr)
	}

	return rep
}

// sentiment maps aggregate signal counts to a market stance. Ties and
// hold-dominated runs read as neutral.
func sentiment(s Summary) string {
	switch {
	case s.BuyCount > s.SellCount && s.BuyCount > s.HoldCount:
		return "BULLISH"
	case s.SellCount > s.BuyCount && s.SellCount > s.HoldCount:
		return "BEARISH"
	default:
		return "NEUTRAL"
	}
}
