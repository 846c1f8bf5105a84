package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// Engine runs the monthly backtest over constructed portfolios
// ⭐ SSOT: 백테스팅 실행은 여기서만
type Engine struct {
	config Config
	logger *logger.Logger
}

// Config holds backtest configuration
type Config struct {
	TopK                int     // 월별 선정 종목 수
	NotionalPerPosition float64 // 종목당 투자금 ($)
}

// DefaultConfig returns $1 per position across 20 positions
func DefaultConfig() Config {
	return Config{
		TopK:                20,
		NotionalPerPosition: 1.0,
	}
}

// Notional is the capital applied to both strategy and benchmark
func (c Config) Notional() float64 {
	return c.NotionalPerPosition * float64(c.TopK)
}

// Validate checks the backtest configuration
func (c Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.NotionalPerPosition <= 0 {
		return fmt.Errorf("notional_per_position must be positive, got %v", c.NotionalPerPosition)
	}
	return nil
}

// NewEngine creates a new backtest engine
func NewEngine(config Config, log *logger.Logger) *Engine {
	return &Engine{
		config: config,
		logger: log.WithStage("s6"),
	}
}

// Run compounds the strategy and benchmark over every rebalancing date.
// A date rebalances only when both the portfolio return and the benchmark
// forward return are defined.
func (e *Engine) Run(ctx context.Context, portfolios []contracts.PortfolioSnapshot, benchmark contracts.BenchmarkSeries) (*contracts.PerformanceSeries, *contracts.Summary, contracts.WarningSet, error) {
	var warnings contracts.WarningSet
	if err := e.config.Validate(); err != nil {
		return nil, nil, warnings, fmt.Errorf("backtest config: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"months":   len(portfolios),
		"notional": e.config.Notional(),
	}).Info("Starting backtest")

	notional := e.config.Notional()
	sim := NewSimulator(notional)
	series := &contracts.PerformanceSeries{
		Notional: notional,
		Points:   make([]contracts.PerformancePoint, 0, len(portfolios)),
	}

	for i, snap := range portfolios {
		if err := ctx.Err(); err != nil {
			return nil, nil, warnings, err
		}
		if i > 0 && !snap.Date.After(portfolios[i-1].Date) {
			return nil, nil, warnings, fmt.Errorf("portfolio dates not increasing at %s", snap.Date.Format("2006-01-02"))
		}

		sr, ok := snap.PortfolioReturn.Get()
		if !ok {
			continue
		}
		br, ok := benchmark.ForwardReturnAt(snap.Date).Get()
		if !ok {
			warnings.Add(contracts.WarnNoBenchmarkReturn, "", snap.Date, "benchmark forward return undefined")
			continue
		}

		sCum, bCum := sim.Step(sr, br)
		series.Points = append(series.Points, contracts.PerformancePoint{
			Date:               snap.Date,
			StrategyReturn:     sr,
			BenchmarkReturn:    br,
			StrategyCumReturn:  sCum,
			BenchmarkCumReturn: bCum,
			StrategyPnL:        sim.PnL(sCum),
			BenchmarkPnL:       sim.PnL(bCum),
			Holdings:           snap.Count(),
		})
	}

	if series.Len() == 0 {
		warnings.Add(contracts.WarnNoRebalanceDates, "", time.Time{}, "no rebalancing dates")
	}

	summary := Summarize(series)

	e.logger.WithFields(map[string]interface{}{
		"periods":        summary.Periods,
		"strategy_total": fmt.Sprintf("%.2f%%", summary.StrategyTotalReturn*100),
		"bench_total":    fmt.Sprintf("%.2f%%", summary.BenchmarkTotalReturn*100),
		"outperformance": fmt.Sprintf("%.2f%%", summary.Outperformance*100),
	}).Info("Backtest completed")

	return series, summary, warnings, nil
}

// Summarize derives totals from the last point of a series.
// An empty series has zero totals.
func Summarize(series *contracts.PerformanceSeries) *contracts.Summary {
	summary := &contracts.Summary{Notional: series.Notional}
	last, ok := series.Last()
	if !ok {
		return summary
	}

	summary.Periods = series.Len()
	summary.StartDate = series.Points[0].Date
	summary.EndDate = last.Date
	summary.StrategyTotalReturn = last.StrategyCumReturn - 1
	summary.BenchmarkTotalReturn = last.BenchmarkCumReturn - 1
	summary.Outperformance = summary.StrategyTotalReturn - summary.BenchmarkTotalReturn
	summary.StrategyPnL = last.StrategyPnL
	summary.BenchmarkPnL = last.BenchmarkPnL
	return summary
}
