package engine

import (
	"context"
	"sync"
	"time"

	"stockwatch/internal/analysisconfig"
	"stockwatch/internal/correlation"
	"stockwatch/internal/momentum"
	"stockwatch/internal/notify"
	"stockwatch/internal/quotes"
	"stockwatch/internal/report"
	"stockwatch/pkg/logger"
	"stockwatch/pkg/metrics"
)

// State is the engine's position in the run lifecycle.
type State string

const (
	StateInit      State = "INIT"
	StateFetching  State = "FETCHING"
	StateAnalyzing State = "ANALYZING"
	StateComposing State = "COMPOSING"
	StateNotifying State = "NOTIFYING"
	StateDone      State = "DONE"
	StateFailed    State = "FAILED"
)

// Status describes how a finished run went.
type Status string

const (
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusFailed              Status = "failed"
)

// Request triggers one analysis run.
type Request struct {
	// Source records what initiated the run (cli, api, scheduler).
	Source string
	// ConfigOverride replaces the engine's analysis parameters for
	// this run only. It must already be validated.
	ConfigOverride *analysisconfig.Config
}

// Result is the outcome of one run.
type Result struct {
	Status        Status                 `json:"status"`
	Report        *report.AnalysisReport `json:"report,omitempty"`
	FailedSymbols []string               `json:"failed_symbols,omitempty"`
	// Errors lists every non-fatal error accumulated during the run.
	Errors   []string      `json:"errors,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Fetcher retrieves a normalized quote series for one symbol.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, bars int) (*quotes.Series, error)
}

// Engine orchestrates one analysis run end to end: fetch quote series
// with bounded concurrency, analyze momentum and correlation, compose
// the report, and hand it to the notifier exactly once.
type Engine struct {
	cfg       *analysisconfig.Config
	watchlist *analysisconfig.Watchlist
	fetcher   Fetcher
	composer  *report.Composer
	notifier  notify.Notifier
	logger    *logger.Logger
	metrics   *metrics.Recorder

	mu    sync.RWMutex
	state State
}

// New creates an Engine. The analysis config and watchlist must
// already be validated.
func New(
	cfg *analysisconfig.Config,
	watchlist *analysisconfig.Watchlist,
	fetcher Fetcher,
	notifier notify.Notifier,
	log *logger.Logger,
	rec *metrics.Recorder,
) *Engine {
	return &Engine{
		cfg:       cfg,
		watchlist: watchlist,
		fetcher:   fetcher,
		composer:  report.NewComposer(),
		notifier:  notifier,
		logger:    log.WithField("module", "engine"),
		metrics:   rec,
		state:     StateInit,
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.logger.WithField("state", string(s)).Debug("Engine state changed")
}

// Run executes one analysis run. Per-symbol fetch failures and
// notification failures degrade the result to completed_with_errors;
// only configuration errors fail the run outright.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	e.setState(StateInit)

	cfg := e.cfg
	if req.ConfigOverride != nil {
		if err := analysisconfig.Validate(req.ConfigOverride); err != nil {
			return e.fail(start, &ConfigurationError{Reason: "invalid config override", Err: err})
		}
		cfg = req.ConfigOverride
	}
	cfgHash, _ := analysisconfig.Hash(cfg)

	symbols := e.watchlist.AllSymbols()
	if len(symbols) == 0 {
		return e.fail(start, &ConfigurationError{Reason: "watchlist has no symbols"})
	}

	e.logger.WithFields(map[string]interface{}{
		"source":      req.Source,
		"symbols":     len(symbols),
		"workers":     cfg.Data.Workers,
		"config_hash": cfgHash,
	}).Info("Analysis run started")

	// Fetch all series before any analysis starts.
	e.setState(StateFetching)
	seriesBySymbol, failed, runErrors := e.fetchAll(ctx, symbols, cfg)

	e.setState(StateAnalyzing)
	momAnalyzer := momentum.NewAnalyzer(cfg.Momentum)
	corrAnalyzer := correlation.NewAnalyzer(cfg.Correlation)

	analyses := make(map[string]momentum.Analysis, len(seriesBySymbol))
	lastCloses := make(map[string]float64, len(seriesBySymbol))
	for _, sym := range symbols {
		s, ok := seriesBySymbol[sym]
		if !ok {
			continue
		}
		analysis := momAnalyzer.Analyze(s)
		analyses[sym] = analysis
		if last, ok := s.LastClose(); ok {
			lastCloses[sym] = last
		}
		e.metrics.RecordSignal(string(analysis.Signal))
	}

	// Correlation runs per portfolio, over the member series that made
	// it through the fetch.
	correlations := make(map[string]correlation.Analysis, len(e.watchlist.Portfolios))
	for _, p := range e.watchlist.Portfolios {
		members := make([]*quotes.Series, 0, len(p.Holdings))
		for _, sym := range p.Symbols() {
			if s, ok := seriesBySymbol[sym]; ok {
				members = append(members, s)
			}
		}
		corr := corrAnalyzer.Analyze(members)
		e.logUndefinedPairs(p.Name, &corr.Matrix)
		correlations[p.Name] = corr
	}

	e.setState(StateComposing)
	rep := e.composer.Compose(e.watchlist, analyses, lastCloses, correlations, func(p analysisconfig.Portfolio) (float64, bool) {
		corr := correlations[p.Name]
		return corrAnalyzer.WeightedAverage(&corr.Matrix, p.Weights())
	}, failed)
	rep.ConfigHash = cfgHash

	// The report is handed off exactly once; delivery failure does not
	// discard it.
	e.setState(StateNotifying)
	var notifyErr error
	if err := e.notifier.Send(ctx, rep); err != nil {
		notifyErr = &NotificationDeliveryError{Err: err}
		e.logger.WithError(notifyErr).Error("Report delivery failed")
		runErrors = append(runErrors, notifyErr.Error())
	}

	e.setState(StateDone)

	result := &Result{
		Status:        StatusCompleted,
		Report:        rep,
		FailedSymbols: failed,
		Errors:        runErrors,
		Duration:      time.Since(start),
	}
	if len(failed) > 0 || notifyErr != nil {
		result.Status = StatusCompletedWithErrors
		if notifyErr != nil {
			result.Error = notifyErr.Error()
		}
	}

	e.metrics.RecordRun(string(result.Status), result.Duration)
	e.metrics.RecordSymbols(len(analyses), len(failed))

	e.logger.WithFields(map[string]interface{}{
		"status":   string(result.Status),
		"analyzed": len(analyses),
		"failed":   len(failed),
		"duration": result.Duration,
	}).Info("Analysis run finished")

	return result, nil
}

// fetchAll retrieves every symbol's series using a bounded worker
// pool. Failed symbols are collected, not fatal; their errors come
// back in watchlist order alongside the failure list.
func (e *Engine) fetchAll(ctx context.Context, symbols []string, cfg *analysisconfig.Config) (map[string]*quotes.Series, []string, []string) {
	type fetchResult struct {
		symbol string
		series *quotes.Series
		err    error
	}

	workCh := make(chan string, len(symbols))
	resultCh := make(chan fetchResult, len(symbols))

	workers := cfg.Data.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range workCh {
				series, err := e.fetcher.Fetch(ctx, sym, cfg.Data.LookbackBars)
				resultCh <- fetchResult{symbol: sym, series: series, err: err}
			}
		}()
	}

	for _, sym := range symbols {
		workCh <- sym
	}
	close(workCh)

	wg.Wait()
	close(resultCh)

	seriesBySymbol := make(map[string]*quotes.Series, len(symbols))
	failedErr := make(map[string]error)
	for res := range resultCh {
		if res.err != nil {
			dataErr := &DataUnavailableError{Symbol: res.symbol, Err: res.err}
			e.logger.WithError(dataErr).Warn("Symbol dropped from run")
			failedErr[res.symbol] = dataErr
			continue
		}
		seriesBySymbol[res.symbol] = res.series
	}

	// Failed symbols keep watchlist order.
	var failed []string
	var errs []string
	for _, sym := range symbols {
		if err, ok := failedErr[sym]; ok {
			failed = append(failed, sym)
			errs = append(errs, err.Error())
		}
	}
	return seriesBySymbol, failed, errs
}

// logUndefinedPairs reports every pair the correlation step could not
// compute for one portfolio.
func (e *Engine) logUndefinedPairs(portfolio string, m *correlation.Matrix) {
	for i := 0; i < len(m.Symbols); i++ {
		for j := i + 1; j < len(m.Symbols); j++ {
			if _, ok := m.At(i, j); !ok {
				err := &CorrelationUndefinedError{SymbolA: m.Symbols[i], SymbolB: m.Symbols[j]}
				e.logger.WithError(err).WithField("portfolio", portfolio).Warn("Correlation pair undefined")
			}
		}
	}
}

// fail ends the run in StateFailed. Only configuration errors land
// here.
func (e *Engine) fail(start time.Time, err error) (*Result, error) {
	e.setState(StateFailed)
	e.logger.WithError(err).Error("Analysis run failed")

	result := &Result{
		Status:   StatusFailed,
		Error:    err.Error(),
		Duration: time.Since(start),
	}
	e.metrics.RecordRun(string(result.Status), result.Duration)
	return result, err
}
