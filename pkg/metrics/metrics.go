package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes engine counters through Prometheus.
type Recorder struct {
	runsTotal       *prometheus.CounterVec
	symbolsAnalyzed prometheus.Counter
	symbolsFailed   prometheus.Counter
	signalsTotal    *prometheus.CounterVec
	runDuration     prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockwatch_runs_total",
				Help: "Total number of analysis runs by final status",
			},
			[]string{"status"},
		),
		symbolsAnalyzed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stockwatch_symbols_analyzed_total",
				Help: "Total number of symbols successfully analyzed",
			},
		),
		symbolsFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stockwatch_symbols_failed_total",
				Help: "Total number of symbols that failed to fetch or analyze",
			},
		),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockwatch_signals_total",
				Help: "Total number of trading signals emitted",
			},
			[]string{"signal"},
		),
		runDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stockwatch_run_duration_seconds",
				Help:    "Duration of a full analysis run in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordRun records a completed run with its final status and duration.
func (r *Recorder) RecordRun(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(duration.Seconds())
}

// RecordSymbols records per-run symbol outcomes.
func (r *Recorder) RecordSymbols(analyzed, failed int) {
	if r == nil {
		return
	}
	r.symbolsAnalyzed.Add(float64(analyzed))
	r.symbolsFailed.Add(float64(failed))
}

// RecordSignal records one emitted trading signal.
func (r *Recorder) RecordSignal(signal string) {
	if r == nil {
		return
	}
	r.signalsTotal.WithLabelValues(signal).Inc()
}
