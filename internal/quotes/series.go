package quotes

import (
	"errors"
	"sort"
	"time"
)

// ErrNoData marks business-level absence of data for one symbol. It is a
// per-symbol condition, never fatal for the run.
var ErrNoData = errors.New("no quote data available")

// Bar is one OHLCV price bar.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Series is a canonical quote series: bars strictly ascending by
// timestamp with no duplicates.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// BuildSeries normalizes raw provider bars into a canonical Series:
// sorted ascending by timestamp, duplicate timestamps collapsed (last one
// wins), bars without a positive close dropped. Empty input yields
// ErrNoData.
func BuildSeries(symbol string, bars []Bar) (*Series, error) {
	cleaned := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 || b.Timestamp.IsZero() {
			continue
		}
		cleaned = append(cleaned, b)
	}

	if len(cleaned) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Timestamp.Before(cleaned[j].Timestamp)
	})

	deduped := cleaned[:0]
	for _, b := range cleaned {
		if n := len(deduped); n > 0 && deduped[n-1].Timestamp.Equal(b.Timestamp) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}

	return &Series{Symbol: symbol, Bars: deduped}, nil
}

// Len returns the number of bars.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// HasWindow reports whether the series carries at least n bars.
func (s *Series) HasWindow(n int) bool {
	return s.Len() >= n
}

// Closes returns the close prices in time order.
func (s *Series) Closes() []float64 {
	closes := make([]float64, 0, s.Len())
	for _, b := range s.Bars {
		closes = append(closes, b.Close)
	}
	return closes
}

// LastClose returns the most recent close, or false when the series is
// empty.
func (s *Series) LastClose() (float64, bool) {
	if s.Len() == 0 {
		return 0, false
	}
	return s.Bars[len(s.Bars)-1].Close, true
}

// Returns computes simple daily returns: (close[i] − close[i−1]) /
// close[i−1]. The result is one element shorter than the series.
func (s *Series) Returns() []float64 {
	closes := s.Closes()
	if len(closes) < 2 {
		return nil
	}

	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		rets = append(rets, (closes[i]-closes[i-1])/closes[i-1])
	}
	return rets
}

// TailReturns returns the trailing n daily returns, or false when the
// series is too short to supply them.
func (s *Series) TailReturns(n int) ([]float64, bool) {
	rets := s.Returns()
	if len(rets) < n {
		return nil, false
	}
	return rets[len(rets)-n:], true
}
