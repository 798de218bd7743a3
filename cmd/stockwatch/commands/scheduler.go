package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stockwatch/internal/scheduler"
	"stockwatch/internal/scheduler/jobs"
	"stockwatch/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the analysis scheduler daemon",
	Long: `Starts the scheduler daemon. The analysis pipeline runs on the cron
schedule from RUN_SCHEDULE (seconds field included; default is 17:00
on weekdays).

Example:
  go run ./cmd/stockwatch scheduler
  RUN_SCHEDULE="0 30 9 * * *" go run ./cmd/stockwatch scheduler`,
	RunE: runScheduler,
}

var runImmediately bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&runImmediately, "now", false, "run the analysis job once at startup")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, err := loadProcessConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg)

	eng, err := buildEngine(cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to build engine")
		return err
	}

	sched := scheduler.New(log)

	job := jobs.NewAnalysisJob(eng, cfg, log)
	if err := sched.AddJob(job); err != nil {
		log.WithError(err).Error("Failed to register analysis job")
		return err
	}

	sched.Start()

	if runImmediately {
		if err := sched.RunJob(job.Name()); err != nil {
			log.WithError(err).Warn("Immediate run failed to start")
		}
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.WithField("signal", sig.String()).Info("Shutdown signal received")
	sched.Stop()

	return nil
}
