package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/wonny/aegis/momentum/internal/brain"
	"github.com/wonny/aegis/momentum/internal/report"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// DefaultBacktestSchedule 매월 1일 06:00 (월말 데이터 확정 후)
const DefaultBacktestSchedule = "0 0 6 1 * *"

// Pipeline runs the backtest and packages its output
type Pipeline interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
	Artifacts(result *brain.RunResult) report.Artifacts
}

// BacktestJob reruns the momentum backtest and writes results/<run_id>/
type BacktestJob struct {
	pipeline   Pipeline
	schedule   string
	resultsDir string
	options    report.Options
	strict     bool
	logger     *logger.Logger

	mu      sync.Mutex
	lastRun string
}

// NewBacktestJob creates a new backtest job. An empty schedule uses DefaultBacktestSchedule.
func NewBacktestJob(pipeline Pipeline, schedule, resultsDir string, opts report.Options, strictQuality bool, log *logger.Logger) *BacktestJob {
	if schedule == "" {
		schedule = DefaultBacktestSchedule
	}
	return &BacktestJob{
		pipeline:   pipeline,
		schedule:   schedule,
		resultsDir: resultsDir,
		options:    opts,
		strict:     strictQuality,
		logger:     log,
	}
}

// Name returns the job name
func (j *BacktestJob) Name() string {
	return "momentum_backtest"
}

// Schedule returns the cron schedule
func (j *BacktestJob) Schedule() string {
	return j.schedule
}

// LastRunID returns the ID of the last successful run
func (j *BacktestJob) LastRunID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

// Run executes the pipeline and writes its artifacts
func (j *BacktestJob) Run(ctx context.Context) error {
	result, err := j.pipeline.Run(ctx, brain.RunConfig{StrictQuality: j.strict})
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	dir := filepath.Join(j.resultsDir, result.RunID)
	written, err := report.NewWriter(dir, j.options, j.logger).WriteAll(j.pipeline.Artifacts(result))
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	j.mu.Lock()
	j.lastRun = result.RunID
	j.mu.Unlock()

	j.logger.WithFields(map[string]interface{}{
		"run_id":         result.RunID,
		"dir":            dir,
		"files":          len(written),
		"outperformance": result.Summary.Outperformance,
	}).Info("Scheduled backtest completed")

	return nil
}
