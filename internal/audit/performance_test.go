package audit

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis/momentum/internal/backtest"
	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

func month(m time.Month) time.Time {
	return contracts.MonthEnd(time.Date(2021, m, 1, 0, 0, 0, 0, time.UTC))
}

func makeSeries(strat, bench []float64) *contracts.PerformanceSeries {
	series := &contracts.PerformanceSeries{Notional: 20}
	for i := range strat {
		series.Points = append(series.Points, contracts.PerformancePoint{
			Date:               month(time.Month(i + 1)),
			StrategyReturn:     strat[i],
			BenchmarkReturn:    bench[i],
			StrategyCumReturn:  backtest.Compound(strat[:i+1]),
			BenchmarkCumReturn: backtest.Compound(bench[:i+1]),
		})
	}
	return series
}

func TestAnalyzer_Analyze(t *testing.T) {
	strat := []float64{0.1, -0.1, 0.05, 0.0}
	bench := []float64{0.05, 0.0, 0.05, -0.05}

	report, err := NewAnalyzer(0, logger.Nop()).Analyze(makeSeries(strat, bench))
	require.NoError(t, err)

	sampleVar := 0.021875 / 3
	assert.Equal(t, 4, report.Periods)
	assert.InDelta(t, math.Sqrt(sampleVar*12), report.Volatility, 1e-9)
	assert.InDelta(t, 0.0125/math.Sqrt(sampleVar)*math.Sqrt(12), report.Sharpe, 1e-9)
	assert.InDelta(t, 0.25*math.Sqrt(12), report.Sortino, 1e-9)
	assert.InDelta(t, -0.1, report.MaxDrawdown, 1e-12)
	assert.InDelta(t, 0.5, report.HitRate, 1e-12)
	assert.InDelta(t, 0.1, report.BestMonth, 1e-12)
	assert.InDelta(t, -0.1, report.WorstMonth, 1e-12)
	assert.InDelta(t, 0.025, report.MedianMonth, 1e-12)
	assert.InDelta(t, backtest.Annualize(backtest.Compound(strat), 4), report.AnnualReturn, 1e-12)
}

func TestAnalyzer_Analyze_Empty(t *testing.T) {
	_, err := NewAnalyzer(0, logger.Nop()).Analyze(&contracts.PerformanceSeries{})
	assert.ErrorIs(t, err, ErrNoPeriods)

	_, err = NewAnalyzer(0, logger.Nop()).Analyze(nil)
	assert.ErrorIs(t, err, ErrNoPeriods)
}

func TestAnalyzer_Analyze_SinglePeriod(t *testing.T) {
	report, err := NewAnalyzer(0, logger.Nop()).Analyze(makeSeries([]float64{0.02}, []float64{0.01}))
	require.NoError(t, err)
	assert.Zero(t, report.Volatility)
	assert.Zero(t, report.Sharpe)
	assert.Zero(t, report.Beta)
	assert.Equal(t, 1.0, report.HitRate)
}

func TestBeta(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.03, 0.015}
	strat := make([]float64, len(bench))
	for i, b := range bench {
		strat[i] = 2 * b
	}
	assert.InDelta(t, 2.0, beta(strat, bench), 1e-9)
	assert.Zero(t, beta(strat, []float64{0.01, 0.01, 0.01, 0.01}), "flat benchmark has no variance")
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name    string
		returns []float64
		want    float64
	}{
		{"no loss", []float64{0.1, 0.2}, 0},
		{"single drop", []float64{0.0, -0.25}, -0.25},
		{"drop from later peak", []float64{0.5, -0.2, -0.5}, -0.6},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxDrawdown(tt.returns), 1e-12)
		})
	}
}

func TestAnalyzer_AnalyzeAttribution(t *testing.T) {
	portfolios := []contracts.PortfolioSnapshot{
		{
			Date:            month(1),
			InvestedTickers: []string{"A", "B"},
			ForwardReturns:  map[string]float64{"A": 0.2, "B": -0.1},
		},
		{
			Date:            month(2),
			InvestedTickers: []string{"A"},
			ForwardReturns:  map[string]float64{"A": 0.1},
		},
		{
			// 리밸런싱되지 않은 달은 제외
			Date:            month(3),
			InvestedTickers: []string{"B"},
			ForwardReturns:  map[string]float64{"B": 5.0},
		},
	}
	series := makeSeries([]float64{0.05, 0.1}, []float64{0, 0})

	attrs := NewAnalyzer(0, logger.Nop()).AnalyzeAttribution(portfolios, series)
	require.Len(t, attrs, 2)

	assert.Equal(t, "A", attrs[0].Ticker)
	assert.InDelta(t, 0.5*0.2+0.1, attrs[0].Contribution, 1e-12)
	assert.Equal(t, 2, attrs[0].Months)
	assert.InDelta(t, 0.15, attrs[0].AvgReturn, 1e-12)

	assert.Equal(t, "B", attrs[1].Ticker)
	assert.InDelta(t, -0.05, attrs[1].Contribution, 1e-12)
	assert.Equal(t, 1, attrs[1].Months)
}
