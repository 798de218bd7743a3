package notify

import (
	"context"
	"fmt"

	"stockwatch/internal/report"
	"stockwatch/pkg/config"
	"stockwatch/pkg/httputil"
	"stockwatch/pkg/logger"
)

// Notifier delivers a finished analysis report exactly once per run.
type Notifier interface {
	Send(ctx context.Context, rep *report.AnalysisReport) error
}

// New builds the notifier selected by configuration.
func New(cfg config.NotifierConfig, log *logger.Logger) (Notifier, error) {
	switch cfg.Kind {
	case "webhook":
		return NewWebhookNotifier(cfg, log), nil
	case "log":
		return NewLogNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown notifier kind: %s", cfg.Kind)
	}
}

// LogNotifier writes a report summary to the structured log. It is the
// default sink and never fails.
type LogNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log.WithField("notifier", "log")}
}

func (n *LogNotifier) Send(_ context.Context, rep *report.AnalysisReport) error {
	n.logger.WithFields(map[string]interface{}{
		"generated_at":   rep.GeneratedAt,
		"symbols":        len(rep.Symbols),
		"portfolios":     len(rep.Portfolios),
		"failed_symbols": len(rep.FailedSymbols),
		"buy":            rep.Summary.BuyCount,
		"sell":           rep.Summary.SellCount,
		"hold":           rep.Summary.HoldCount,
		"sentiment":      rep.Summary.Sentiment,
	}).Info("Analysis report ready")
	return nil
}

// WebhookNotifier posts the full report as JSON to a configured URL.
type WebhookNotifier struct {
	url    string
	client *httputil.Client
	logger *logger.Logger
}

func NewWebhookNotifier(cfg config.NotifierConfig, log *logger.Logger) *WebhookNotifier {
	client := httputil.NewWithTimeout(log, cfg.Timeout)
	return &WebhookNotifier{
		url:    cfg.WebhookURL,
		client: client,
		logger: log.WithField("notifier", "webhook"),
	}
}

func (n *WebhookNotifier) Send(ctx context.Context, rep *report.AnalysisReport) error {
	resp, err := n.client.PostJSON(ctx, n.url, rep)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.WithField("status", resp.StatusCode).Debug("Report delivered")
	return nil
}
