package audit

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/wonny/aegis/momentum/internal/backtest"
	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// ErrNoPeriods is returned when a series has no rebalancing dates
var ErrNoPeriods = errors.New("performance series has no periods")

const monthsPerYear = 12

// Analyzer implements S7: Performance analysis
// ⭐ SSOT: S7 성과 분석 로직은 여기서만
type Analyzer struct {
	riskFreeRate float64 // 연율
	logger       *logger.Logger
}

// NewAnalyzer creates a new performance analyzer
func NewAnalyzer(riskFreeRate float64, log *logger.Logger) *Analyzer {
	return &Analyzer{
		riskFreeRate: riskFreeRate,
		logger:       log.WithStage("s7"),
	}
}

// Analyze computes risk metrics from monthly strategy and benchmark returns
func (a *Analyzer) Analyze(series *contracts.PerformanceSeries) (*contracts.PerformanceReport, error) {
	if series == nil || series.Len() == 0 {
		return nil, ErrNoPeriods
	}

	strat := series.StrategyReturns()
	bench := series.BenchmarkReturns()
	n := len(strat)
	rfMonthly := a.riskFreeRate / monthsPerYear

	report := &contracts.PerformanceReport{Periods: n}

	// 수익률
	last, _ := series.Last()
	report.AnnualReturn = backtest.Annualize(last.StrategyCumReturn, n)
	report.BenchmarkAnnualReturn = backtest.Annualize(last.BenchmarkCumReturn, n)

	// 리스크
	report.Volatility = annualizedStdev(strat)
	report.BenchmarkVolatility = annualizedStdev(bench)
	report.Sharpe = sharpe(strat, rfMonthly)
	report.Sortino = sortino(strat, rfMonthly)
	report.MaxDrawdown = MaxDrawdown(strat)
	report.BenchmarkDrawdown = MaxDrawdown(bench)

	// 벤치마크 대비
	active := make([]float64, n)
	hits := 0
	for i := range strat {
		active[i] = strat[i] - bench[i]
		if strat[i] > bench[i] {
			hits++
		}
	}
	report.HitRate = float64(hits) / float64(n)
	report.TrackingError = annualizedStdev(active)
	if report.TrackingError > 0 {
		meanActive, _ := stats.Mean(active)
		report.InformationRatio = meanActive * monthsPerYear / report.TrackingError
	}
	report.Beta = beta(strat, bench)

	// 월수익률 분포
	report.BestMonth, _ = stats.Max(strat)
	report.WorstMonth, _ = stats.Min(strat)
	report.MedianMonth, _ = stats.Median(strat)

	a.logger.WithFields(map[string]interface{}{
		"periods":      n,
		"annual":       fmt.Sprintf("%.2f%%", report.AnnualReturn*100),
		"sharpe":       fmt.Sprintf("%.2f", report.Sharpe),
		"max_drawdown": fmt.Sprintf("%.2f%%", report.MaxDrawdown*100),
		"hit_rate":     fmt.Sprintf("%.1f%%", report.HitRate*100),
	}).Info("Performance analysis completed")

	return report, nil
}

// annualizedStdev is the sample standard deviation scaled by √12
func annualizedStdev(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0
	}
	return sd * math.Sqrt(monthsPerYear)
}

func sharpe(returns []float64, rfMonthly float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, _ := stats.Mean(returns)
	sd, _ := stats.StandardDeviationSample(returns)
	if sd == 0 {
		return 0
	}
	return (mean - rfMonthly) / sd * math.Sqrt(monthsPerYear)
}

// sortino uses the downside deviation below the risk-free rate
func sortino(returns []float64, rfMonthly float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean, _ := stats.Mean(returns)

	sumSq := 0.0
	for _, r := range returns {
		if d := r - rfMonthly; d < 0 {
			sumSq += d * d
		}
	}
	downside := math.Sqrt(sumSq / float64(len(returns)))
	if downside == 0 {
		return 0
	}
	return (mean - rfMonthly) / downside * math.Sqrt(monthsPerYear)
}

// beta is cov(strategy, benchmark) / var(benchmark)
func beta(strat, bench []float64) float64 {
	if len(bench) < 2 {
		return 0
	}
	cov, err := stats.Covariance(strat, bench)
	if err != nil {
		return 0
	}
	v, err := stats.SampleVariance(bench)
	if err != nil || v == 0 {
		return 0
	}
	return cov / v
}

// MaxDrawdown is the deepest peak-to-trough fall of the compounded series,
// starting from 1.0. Returned as a non-positive fraction.
func MaxDrawdown(returns []float64) float64 {
	peak := 1.0
	cum := 1.0
	maxDD := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if dd := cum/peak - 1; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
