package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

func month(m time.Month) time.Time {
	return contracts.MonthEnd(time.Date(2021, m, 1, 0, 0, 0, 0, time.UTC))
}

func snapshot(date time.Time, ret contracts.Value) contracts.PortfolioSnapshot {
	return contracts.PortfolioSnapshot{
		Date:            date,
		InvestedTickers: []string{"A"},
		ForwardReturns:  map[string]float64{"A": ret.OrElse(0)},
		PortfolioReturn: ret,
	}
}

func bench(date time.Time, fwd contracts.Value) contracts.BenchmarkRecord {
	return contracts.BenchmarkRecord{Date: date, AdjClose: 100, ForwardReturn: fwd}
}

func TestEngine_Run(t *testing.T) {
	portfolios := []contracts.PortfolioSnapshot{
		snapshot(month(1), contracts.Some(0.10)),
		snapshot(month(2), contracts.None()), // 포트폴리오 수익률 없음
		snapshot(month(3), contracts.Some(-0.05)),
		snapshot(month(4), contracts.Some(0.20)), // 벤치마크 없음
	}
	benchmark := contracts.BenchmarkSeries{
		bench(month(1), contracts.Some(0.05)),
		bench(month(2), contracts.Some(0.01)),
		bench(month(3), contracts.Some(0.02)),
		bench(month(4), contracts.None()),
	}

	engine := NewEngine(DefaultConfig(), logger.Nop())
	series, summary, warnings, err := engine.Run(context.Background(), portfolios, benchmark)
	require.NoError(t, err)

	require.Equal(t, 2, series.Len())
	assert.Equal(t, month(1), series.Points[0].Date)
	assert.Equal(t, month(3), series.Points[1].Date)

	assert.InDelta(t, 1.10, series.Points[0].StrategyCumReturn, 1e-12)
	assert.InDelta(t, 1.10*0.95, series.Points[1].StrategyCumReturn, 1e-12)
	assert.InDelta(t, 1.05*1.02, series.Points[1].BenchmarkCumReturn, 1e-12)

	// $20 notional
	assert.InDelta(t, 20*1.045-20, summary.StrategyPnL, 1e-9)
	assert.InDelta(t, 20*1.071-20, summary.BenchmarkPnL, 1e-9)
	assert.InDelta(t, 0.045, summary.StrategyTotalReturn, 1e-12)
	assert.InDelta(t, 0.071, summary.BenchmarkTotalReturn, 1e-12)
	assert.InDelta(t, 0.045-0.071, summary.Outperformance, 1e-12)
	assert.False(t, summary.IsOutperforming())
	assert.Equal(t, 2, summary.Periods)

	assert.Equal(t, 1, warnings.Count(contracts.WarnNoBenchmarkReturn))
}

func TestEngine_Run_NoRebalanceDates(t *testing.T) {
	engine := NewEngine(DefaultConfig(), logger.Nop())
	series, summary, warnings, err := engine.Run(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Zero(t, series.Len())
	assert.Zero(t, summary.Periods)
	assert.Zero(t, summary.StrategyPnL)
	assert.True(t, warnings.Has(contracts.WarnNoRebalanceDates))
}

func TestEngine_Run_RejectsUnorderedDates(t *testing.T) {
	portfolios := []contracts.PortfolioSnapshot{
		snapshot(month(2), contracts.Some(0.1)),
		snapshot(month(1), contracts.Some(0.1)),
	}
	_, _, _, err := NewEngine(DefaultConfig(), logger.Nop()).Run(context.Background(), portfolios, nil)
	assert.Error(t, err)
}

func TestEngine_Run_InvalidConfig(t *testing.T) {
	_, _, _, err := NewEngine(Config{TopK: 0, NotionalPerPosition: 1}, logger.Nop()).Run(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestCompound_Associative(t *testing.T) {
	returns := []float64{0.1, -0.05, 0.2, 0.03, -0.1, 0.07}

	whole := Compound(returns)
	for split := 0; split <= len(returns); split++ {
		parts := Compound(returns[:split]) * Compound(returns[split:])
		assert.InDelta(t, whole, parts, 1e-12, "split at %d", split)
	}
	assert.Equal(t, 1.0, Compound(nil))
}

func TestSimulator(t *testing.T) {
	sim := NewSimulator(20)
	s, b := sim.Step(0.5, 0.1)
	assert.InDelta(t, 1.5, s, 1e-12)
	assert.InDelta(t, 1.1, b, 1e-12)
	assert.InDelta(t, 10.0, sim.PnL(s), 1e-12)
	assert.Equal(t, 1, sim.Periods())

	sim.Reset()
	assert.Zero(t, sim.Periods())
	s, _ = sim.Step(0, 0)
	assert.Equal(t, 1.0, s)
}

func TestAnnualize(t *testing.T) {
	assert.InDelta(t, 0.1, Annualize(1.21, 24), 1e-12)
	assert.Zero(t, Annualize(1.5, 0))
}
