package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis/momentum/internal/brain"
	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/internal/report"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

type fakePipeline struct {
	err    error
	strict bool
}

func (p *fakePipeline) Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error) {
	p.strict = config.StrictQuality
	if p.err != nil {
		return nil, p.err
	}
	return &brain.RunResult{
		RunID:   "run-1",
		Summary: &contracts.Summary{StrategyTotalReturn: 0.1, Notional: 20},
	}, nil
}

func (p *fakePipeline) Artifacts(result *brain.RunResult) report.Artifacts {
	return report.Artifacts{Results: report.Results{RunID: result.RunID, TopK: 20, Summary: result.Summary}}
}

func TestBacktestJobRun(t *testing.T) {
	dir := t.TempDir()
	pipeline := &fakePipeline{}
	job := NewBacktestJob(pipeline, "", dir, report.Options{}, true, logger.Nop())

	assert.Equal(t, DefaultBacktestSchedule, job.Schedule())
	assert.Equal(t, "momentum_backtest", job.Name())

	require.NoError(t, job.Run(context.Background()))
	assert.True(t, pipeline.strict)
	assert.Equal(t, "run-1", job.LastRunID())

	_, err := os.Stat(filepath.Join(dir, "run-1", report.ResultsFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "run-1", report.OutliersFile))
	assert.NoError(t, err)
}

func TestBacktestJobPipelineError(t *testing.T) {
	boom := errors.New("source unavailable")
	job := NewBacktestJob(&fakePipeline{err: boom}, "@monthly", t.TempDir(), report.Options{}, false, logger.Nop())

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, job.LastRunID())
}
