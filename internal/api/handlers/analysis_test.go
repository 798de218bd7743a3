package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/internal/analysisconfig"
	"stockwatch/internal/engine"
	"stockwatch/internal/quotes"
	"stockwatch/internal/report"
	"stockwatch/pkg/logger"
)

type stubFetcher struct {
	series map[string]*quotes.Series
}

func (f *stubFetcher) Fetch(ctx context.Context, symbol string, bars int) (*quotes.Series, error) {
	s, ok := f.series[symbol]
	if !ok {
		return nil, quotes.ErrNoData
	}
	return s, nil
}

type stubNotifier struct{}

func (stubNotifier) Send(ctx context.Context, rep *report.AnalysisReport) error { return nil }

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()

	doc := `
momentum:
  rsi_period: 3
  macd_fast: 2
  macd_slow: 4
  macd_signal: 2
  sma_short: 3
  sma_long: 5
correlation:
  lookback_period: 5
data:
  lookback_bars: 20
  workers: 2
`
	cfg, err := analysisconfig.Parse([]byte(doc))
	require.NoError(t, err)

	wl := &analysisconfig.Watchlist{Portfolios: []analysisconfig.Portfolio{
		{Name: "test", Holdings: []analysisconfig.Holding{{Symbol: "AAPL"}}},
	}}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]quotes.Bar, 0, 20)
	price := 100.0
	for i := 0; i < 20; i++ {
		bars = append(bars, quotes.Bar{Timestamp: start.AddDate(0, 0, i), Close: price})
		if i%2 == 0 {
			price *= 1.01
		} else {
			price *= 0.995
		}
	}
	series, err := quotes.BuildSeries("AAPL", bars)
	require.NoError(t, err)

	fetcher := &stubFetcher{series: map[string]*quotes.Series{"AAPL": series}}
	return engine.New(cfg, wl, fetcher, stubNotifier{}, logger.Nop(), nil)
}

func TestRunEndpoint(t *testing.T) {
	h := NewAnalysisHandler(testEngine(t), logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/run", nil)
	rec := httptest.NewRecorder()
	h.Run(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool          `json:"success"`
		Data    engine.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, engine.StatusCompleted, body.Data.Status)
	require.NotNil(t, body.Data.Report)
	assert.Len(t, body.Data.Report.Symbols, 1)
}

func TestGetReportBeforeAnyRun(t *testing.T) {
	h := NewAnalysisHandler(testEngine(t), logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	rec := httptest.NewRecorder()
	h.GetReport(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReportAfterRun(t *testing.T) {
	h := NewAnalysisHandler(testEngine(t), logger.Nop())

	rec := httptest.NewRecorder()
	h.Run(rec, httptest.NewRequest(http.MethodPost, "/api/run", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetReport(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetState(t *testing.T) {
	h := NewAnalysisHandler(testEngine(t), logger.Nop())

	rec := httptest.NewRecorder()
	h.GetState(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(engine.StateInit), body.Data["state"])
}
