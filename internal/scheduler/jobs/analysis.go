package jobs

import (
	"context"
	"fmt"

	"stockwatch/internal/engine"
	"stockwatch/pkg/config"
	"stockwatch/pkg/logger"
)

// AnalysisJob runs the full analysis pipeline on schedule.
type AnalysisJob struct {
	engine *engine.Engine
	config *config.Config
	logger *logger.Logger
}

// NewAnalysisJob creates a new analysis job
func NewAnalysisJob(eng *engine.Engine, cfg *config.Config, log *logger.Logger) *AnalysisJob {
	return &AnalysisJob{
		engine: eng,
		config: cfg,
		logger: log,
	}
}

// Name returns the job name
func (j *AnalysisJob) Name() string {
	return "analysis_run"
}

// Schedule returns the configured cron schedule (with seconds)
func (j *AnalysisJob) Schedule() string {
	return j.config.Schedule
}

// Run executes one analysis run
func (j *AnalysisJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled analysis run")

	result, err := j.engine.Run(ctx, engine.Request{Source: "scheduler"})
	if err != nil {
		return fmt.Errorf("analysis run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"status":   string(result.Status),
		"failed":   len(result.FailedSymbols),
		"duration": result.Duration,
	}).Info("Scheduled analysis run completed")

	return nil
}
