package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// Engine computes tail risk of the realized monthly strategy returns
// ⭐ SSOT: VaR/Monte Carlo 계산은 여기서만
type Engine struct {
	config Config
	logger *logger.Logger
}

// NewEngine creates a new risk engine
func NewEngine(config Config, log *logger.Logger) *Engine {
	return &Engine{config: config, logger: log}
}

// Validate checks the risk configuration
func (c Config) Validate() error {
	if c.Confidence <= 0.5 || c.Confidence >= 1 {
		return fmt.Errorf("confidence must be in (0.5, 1), got %v", c.Confidence)
	}
	if c.Simulations < 0 {
		return fmt.Errorf("simulations must be >= 0")
	}
	if c.Simulations > 0 && c.HorizonMonths <= 0 {
		return fmt.Errorf("horizon_months must be > 0 when simulations > 0")
	}
	if c.MinSamples < 1 {
		return fmt.Errorf("min_samples must be >= 1")
	}
	return nil
}

// Analyze builds the tail-risk report. Returns ErrInsufficientSamples when
// the series is shorter than MinSamples.
func (e *Engine) Analyze(ctx context.Context, series *contracts.PerformanceSeries) (*Report, error) {
	strat, bench := series.StrategyReturns(), series.BenchmarkReturns()
	if len(strat) < e.config.MinSamples || len(strat) == 0 {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientSamples, len(strat), e.config.MinSamples)
	}

	mean, _ := stats.Mean(strat)
	sd, err := stats.StandardDeviationSample(strat)
	if err != nil {
		sd = 0 // 표본 1개
	}

	report := &Report{
		Config:     e.config,
		Historical: CalculateVaR(strat, e.config.Confidence),
		Parametric: CalculateParametricVaR(mean, sd, e.config.Confidence),
	}

	if e.config.Simulations > 0 {
		mc, err := NewMonteCarloSimulator(e.config).Simulate(ctx, strat, bench)
		switch {
		case errors.Is(err, ErrInsufficientSamples):
			e.logger.WithError(err).Warn("Skipping Monte Carlo")
		case err != nil:
			return nil, fmt.Errorf("monte carlo: %w", err)
		default:
			report.MonteCarlo = mc
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"var":  report.Historical.VaR,
		"cvar": report.Historical.CVaR,
	}).Debug("Risk analysis completed")

	return report, nil
}
