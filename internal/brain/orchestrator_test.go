package brain

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis/momentum/internal/audit"
	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/internal/strategyconfig"
	"github.com/wonny/aegis/momentum/pkg/logger"
	"github.com/wonny/aegis/momentum/pkg/redis"
)

// memorySource serves a fixed dataset
type memorySource struct {
	raw *contracts.RawDataset
	err error
}

func (s *memorySource) Load(_ context.Context) (*contracts.RawDataset, error) {
	return s.raw, s.err
}

// twoTickerDataset: A는 24개월 $10 고정, B는 12개월간 매월 2배 후 고정
func twoTickerDataset() *contracts.RawDataset {
	raw := &contracts.RawDataset{Source: "memory"}
	b := 1.0
	for i := 0; i < 24; i++ {
		d := time.Date(2015, time.Month(1+i), 15, 0, 0, 0, 0, time.UTC)
		if i > 0 && i < 12 {
			b *= 2
		}
		raw.Prices = append(raw.Prices,
			contracts.DailyObservation{Date: d, Ticker: "A", Price: 10},
			contracts.DailyObservation{Date: d, Ticker: "B", Price: b},
		)
		raw.Benchmark = append(raw.Benchmark, contracts.BenchmarkObservation{
			Date:     d,
			AdjClose: 2000 * math.Pow(1.01, float64(i)),
		})
	}
	return raw
}

func newOrchestrator(t *testing.T, topK int, raw *contracts.RawDataset) *Orchestrator {
	t.Helper()
	cfg := strategyconfig.Default()
	cfg.Selection.TopK = topK
	o, err := New(cfg, &memorySource{raw: raw}, logger.Nop())
	require.NoError(t, err)
	return o
}

func TestOrchestrator_Run_TrendingTickerDominates(t *testing.T) {
	o := newOrchestrator(t, 1, twoTickerDataset())

	result, err := o.Run(context.Background(), RunConfig{})
	require.NoError(t, err)

	assert.Len(t, result.CompletedStages, 7)
	assert.Empty(t, result.Preprocess.Outliers, "exact doubling is not above the +100% threshold")

	dates := result.Signals.Dates()
	require.Len(t, dates, 12, "signals start at month 13")

	// 13~23개월: B의 12개월 평균이 A보다 큼
	for _, d := range dates[:11] {
		sel := result.Signals.SelectedAt(d)
		require.Len(t, sel, 1)
		assert.Equal(t, "B", sel[0].Ticker, d.Format("2006-01"))
	}
	// 24개월: 둘 다 0 → 종목명 순
	last := result.Signals.SelectedAt(dates[11])
	require.Len(t, last, 1)
	assert.Equal(t, "A", last[0].Ticker)

	// 마지막 달은 forward return이 없어 리밸런싱되지 않음
	require.Equal(t, 11, result.Series.Len())
	assert.InDelta(t, 0.0, result.Summary.StrategyTotalReturn, 1e-12)
	assert.InDelta(t, math.Pow(1.01, 11)-1, result.Summary.BenchmarkTotalReturn, 1e-9)
	assert.InDelta(t, 1*(math.Pow(1.01, 11))-1, result.Summary.BenchmarkPnL, 1e-9, "notional is $1 x top_k")

	require.NotNil(t, result.Record)
	assert.Equal(t, result.RunID, result.Record.ID)
	assert.Equal(t, result.ConfigHash, result.Record.ConfigHash)
	assert.NotEmpty(t, result.InputHash)
	assert.False(t, result.CacheHit)
	assert.Nil(t, result.Risk, "11 periods < min_samples")
}

func TestOrchestrator_Run_TailRisk(t *testing.T) {
	ctx := context.Background()
	store, err := audit.NewSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	cfg := strategyconfig.Default()
	cfg.Selection.TopK = 1
	cfg.Risk.MinSamples = 6
	cfg.Risk.Simulations = 200
	o, err := New(cfg, &memorySource{raw: twoTickerDataset()}, logger.Nop())
	require.NoError(t, err)
	o.WithRunStore(store)

	result, err := o.Run(ctx, RunConfig{})
	require.NoError(t, err)
	require.NotNil(t, result.Risk)
	// B는 12개월 이후 고정 → 전략 월수익률이 모두 0
	assert.Zero(t, result.Risk.Historical.VaR)
	require.NotNil(t, result.Risk.MonteCarlo)
	assert.Zero(t, result.Risk.MonteCarlo.ProbOutperform, "benchmark grows 1% a month")

	saved, err := store.GetRun(ctx, result.RunID)
	require.NoError(t, err)
	require.NotNil(t, saved.Risk)
	assert.Equal(t, 200, saved.Risk.MonteCarlo.Paths)

	artifacts := o.Artifacts(result)
	assert.Same(t, result.Risk, artifacts.Results.Risk)
	assert.Equal(t, 1, artifacts.Results.TopK)
}

func TestOrchestrator_Run_ShortSelectionWarns(t *testing.T) {
	o := newOrchestrator(t, 20, twoTickerDataset())

	result, err := o.Run(context.Background(), RunConfig{RunID: "fixed"})
	require.NoError(t, err)

	assert.Equal(t, "fixed", result.RunID)
	assert.Equal(t, 12, result.Warnings.Count(contracts.WarnShortSelection))
	for _, snap := range result.Portfolios {
		assert.LessOrEqual(t, snap.Count(), 20)
	}
	assert.InDelta(t, 20.0, result.Summary.Notional, 1e-12)
}

func TestOrchestrator_Run_PersistsRun(t *testing.T) {
	ctx := context.Background()
	store, err := audit.NewSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	o := newOrchestrator(t, 1, twoTickerDataset()).
		WithRunStore(store).
		WithCache(redis.NewCache(redis.Disabled(), "test"))

	result, err := o.Run(ctx, RunConfig{})
	require.NoError(t, err)

	saved, err := store.GetRun(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, "momentum_top20", saved.Strategy)
	assert.Equal(t, result.Summary.Periods, saved.Summary.Periods)
}

func TestOrchestrator_Run_EmptyDataset(t *testing.T) {
	o := newOrchestrator(t, 20, &contracts.RawDataset{Source: "memory"})

	result, err := o.Run(context.Background(), RunConfig{})
	require.NoError(t, err)

	assert.True(t, result.Warnings.Has(contracts.WarnEmptyPanel))
	assert.True(t, result.Warnings.Has(contracts.WarnNoRebalanceDates))
	assert.Zero(t, result.Summary.Periods)
	assert.Nil(t, result.Report)
}

func TestOrchestrator_Run_StrictQuality(t *testing.T) {
	o := newOrchestrator(t, 20, &contracts.RawDataset{Source: "memory"})

	_, err := o.Run(context.Background(), RunConfig{StrictQuality: true})
	assert.ErrorIs(t, err, ErrQualityGate)
}

func TestOrchestrator_Run_SourceError(t *testing.T) {
	integrity := &contracts.DataIntegrityError{Kind: contracts.ErrDuplicateKey, Ticker: "A"}
	o, err := New(strategyconfig.Default(), &memorySource{err: integrity}, logger.Nop())
	require.NoError(t, err)

	_, err = o.Run(context.Background(), RunConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrDuplicateKey))
}

func TestNew_InvalidStrategy(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Selection.TopK = 0
	_, err := New(cfg, &memorySource{}, logger.Nop())
	assert.Error(t, err)
}
