package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis/momentum/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32 // 처음 N번 실패
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Run(ctx context.Context) error {
	if j.calls.Add(1) <= j.failures {
		return errors.New("boom")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.Nop(), WithRetry(2, time.Millisecond))
}

func TestRunNowRetries(t *testing.T) {
	tests := []struct {
		name     string
		failures int32
		success  bool
		attempts int
	}{
		{"first try", 0, true, 1},
		{"succeeds on retry", 2, true, 3},
		{"exhausts retries", 5, false, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler()
			job := &countingJob{name: "job", schedule: "@monthly", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			result, err := s.RunNow(context.Background(), "job")
			require.NoError(t, err)
			assert.Equal(t, tt.success, result.Success)
			assert.Equal(t, tt.attempts, result.Attempts)
			if !tt.success {
				assert.Equal(t, "boom", result.Error)
			}

			history, err := s.GetJobHistory("job")
			require.NoError(t, err)
			require.Len(t, history, 1)
		})
	}
}

func TestRunNowCancelledContextStopsRetrying(t *testing.T) {
	s := New(logger.Nop(), WithRetry(5, time.Hour))
	job := &countingJob{name: "job", schedule: "@monthly", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunNow(ctx, "job")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, context.Canceled.Error(), result.Error)
}

func TestAddJobValidation(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 0 6 1 * *"}))

	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "b", schedule: "not a cron"}))
	assert.Equal(t, []string{"a"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@monthly"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.ErrorIs(t, s.RemoveJob("a"), ErrJobNotFound)

	_, err := s.RunNow(context.Background(), "a")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestGetJobStats(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "a", schedule: "@monthly", failures: 3}
	require.NoError(t, s.AddJob(job))

	s.Start(context.Background())
	defer s.Stop()

	_, err := s.RunNow(context.Background(), "a") // 3 attempts, all fail
	require.NoError(t, err)
	_, err = s.RunNow(context.Background(), "a") // succeeds
	require.NoError(t, err)

	st := s.GetJobStats()["a"]
	assert.Equal(t, "@monthly", st.Schedule)
	assert.Equal(t, 2, st.TotalRuns)
	assert.Equal(t, 1, st.SuccessCount)
	assert.Equal(t, 1, st.FailureCount)
	assert.InDelta(t, 0.5, st.SuccessRate, 1e-9)
	require.NotNil(t, st.LastRun)
	assert.True(t, st.LastRun.Success)
	require.NotNil(t, st.NextRun)
	assert.True(t, st.NextRun.After(time.Now()))
}

func TestJobHistoryLimit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.Latest(5), 5)
	assert.Len(t, h.Latest(1000), historyLimit)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
	assert.Zero(t, (&JobHistory{}).SuccessRate())
}
