package quotes

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"stockwatch/pkg/config"
	"stockwatch/pkg/logger"
)

// Fetcher wraps a Source with rate limiting and bounded retries with
// exponential backoff. Transport errors that survive all retries are
// reported as ErrNoData for the symbol; the run continues without it.
type Fetcher struct {
	source       Source
	limiter      *rate.Limiter
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	logger       *logger.Logger
}

// NewFetcher creates a Fetcher around a Source using the process fetch
// configuration.
func NewFetcher(source Source, cfg config.FetchConfig, log *logger.Logger) *Fetcher {
	return &Fetcher{
		source:       source,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		maxRetries:   cfg.MaxRetries,
		initialDelay: cfg.InitialDelay,
		maxDelay:     cfg.MaxDelay,
		logger:       log.WithField("module", "fetcher"),
	}
}

// Fetch retrieves and normalizes the quote series for one symbol.
func (f *Fetcher) Fetch(ctx context.Context, symbol string, bars int) (*Series, error) {
	raw, err := f.fetchWithRetry(ctx, symbol, bars)
	if err != nil {
		return nil, err
	}

	series, err := BuildSeries(symbol, raw)
	if err != nil {
		return nil, err
	}

	f.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   series.Len(),
	}).Debug("Quote series built")

	return series, nil
}

// fetchWithRetry calls the source with rate limiting and exponential
// backoff. Business-level absence ((nil, nil) from the source) is not
// retried.
func (f *Fetcher) fetchWithRetry(ctx context.Context, symbol string, bars int) ([]Bar, error) {
	delay := f.initialDelay

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}

		raw, err := f.source.History(ctx, symbol, bars)
		if err == nil {
			if len(raw) == 0 {
				return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
			}
			return raw, nil
		}
		lastErr = err

		if attempt == f.maxRetries {
			break
		}

		f.logger.WithFields(map[string]interface{}{
			"symbol":  symbol,
			"attempt": attempt + 1,
			"delay":   delay,
			"error":   err.Error(),
		}).Warn("Retrying quote fetch")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		delay *= 2
		if delay > f.maxDelay {
			delay = f.maxDelay
		}
	}

	// Transport failure after retries: treated as no data for the symbol.
	return nil, fmt.Errorf("%s: %w: %v", symbol, ErrNoData, lastErr)
}
