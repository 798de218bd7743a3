package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwatch/internal/report"
	"stockwatch/pkg/config"
	"stockwatch/pkg/logger"
)

func testReport() *report.AnalysisReport {
	return &report.AnalysisReport{
		GeneratedAt: time.Date(2026, 8, 31, 17, 0, 0, 0, time.UTC),
		Symbols: []report.SymbolReport{
			{Symbol: "AAPL", Signal: "BUY", Reason: "RSI oversold"},
		},
		Summary: report.Summary{BuyCount: 1, Sentiment: "BULLISH"},
	}
}

func TestNewSelectsNotifier(t *testing.T) {
	log := logger.Nop()

	n, err := New(config.NotifierConfig{Kind: "log"}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	n, err = New(config.NotifierConfig{Kind: "webhook", WebhookURL: "http://localhost/hook", Timeout: time.Second}, log)
	require.NoError(t, err)
	assert.IsType(t, &WebhookNotifier{}, n)

	_, err = New(config.NotifierConfig{Kind: "carrier-pigeon"}, log)
	assert.Error(t, err)
}

func TestLogNotifierNeverFails(t *testing.T) {
	n := NewLogNotifier(logger.Nop())
	assert.NoError(t, n.Send(context.Background(), testReport()))
}

func TestWebhookNotifierDelivers(t *testing.T) {
	var received report.AnalysisReport
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(config.NotifierConfig{
		Kind:       "webhook",
		WebhookURL: srv.URL,
		Timeout:    5 * time.Second,
	}, logger.Nop())

	err := n.Send(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, "BULLISH", received.Summary.Sentiment)
	require.Len(t, received.Symbols, 1)
	assert.Equal(t, "AAPL", received.Symbols[0].Symbol)
}

func TestWebhookNotifierRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(config.NotifierConfig{
		Kind:       "webhook",
		WebhookURL: srv.URL,
		Timeout:    5 * time.Second,
	}, logger.Nop())

	err := n.Send(context.Background(), testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
