package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"stockwatch/pkg/logger"
)

// Source supplies raw daily bars for a symbol. Implementations return
// (nil, nil) for business-level absence of data and an error only for
// transport failures.
type Source interface {
	History(ctx context.Context, symbol string, bars int) ([]Bar, error)
}

// YahooSource fetches daily OHLCV history from Yahoo Finance.
type YahooSource struct {
	logger *logger.Logger
}

// NewYahooSource creates a Yahoo Finance backed Source.
func NewYahooSource(log *logger.Logger) *YahooSource {
	return &YahooSource{logger: log.WithField("source", "yahoo")}
}

// History fetches roughly the last `bars` daily bars for a symbol.
// Trading days are sparser than calendar days, so the request window is
// padded before being converted to a date range.
func (y *YahooSource) History(ctx context.Context, symbol string, bars int) ([]Bar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	end := time.Now()
	// ~7 calendar days per 5 trading days, plus holiday slack
	start := end.AddDate(0, 0, -(bars*7/5 + 14))

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	raw := make([]Bar, 0, bars)
	for iter.Next() {
		b := iter.Bar()
		raw = append(raw, Bar{
			Timestamp: time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:      toFloat(b.Open),
			High:      toFloat(b.High),
			Low:       toFloat(b.Low),
			Close:     toFloat(b.Close),
			Volume:    int64(b.Volume),
		})
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}

	y.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   len(raw),
	}).Debug("Fetched quote history")

	// Trim to the requested window; normalization happens in BuildSeries.
	if len(raw) > bars {
		raw = raw[len(raw)-bars:]
	}

	return raw, nil
}

// toFloat converts a provider decimal to float64. Indicator math runs on
// floats; the explicit recurrences keep results reproducible regardless.
func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
