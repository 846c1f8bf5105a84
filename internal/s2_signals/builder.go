package s2_signals

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// Builder runs the momentum calculator over every ticker of a panel
// ⭐ SSOT: 시그널 생성 오케스트레이션은 여기서만
type Builder struct {
	momentum *MomentumCalculator
	workers  int
	logger   *logger.Logger
}

// NewBuilder creates a new signal builder
func NewBuilder(momentum *MomentumCalculator, workers int, log *logger.Logger) *Builder {
	return &Builder{
		momentum: momentum,
		workers:  workers,
		logger:   log.WithStage("s2"),
	}
}

// Generate computes signals per ticker in parallel and merges them in
// (date, ticker) order
func (b *Builder) Generate(ctx context.Context, panel *contracts.MonthlyPanel) (*contracts.SignalPanel, error) {
	result := &contracts.SignalPanel{
		Window:  b.momentum.Window(),
		Records: make([]contracts.SignalRecord, 0),
	}
	if panel.IsEmpty() {
		b.logger.Warn("Empty panel, no signals generated")
		return result, nil
	}

	perTicker := make([][]contracts.SignalRecord, len(panel.Tickers))
	g, gctx := errgroup.WithContext(ctx)
	if b.workers > 0 {
		g.SetLimit(b.workers)
	}
	for i, ticker := range panel.Tickers {
		i, series := i, panel.Series[ticker]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perTicker[i] = b.momentum.Calculate(series)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate signals: %w", err)
	}

	withSignal := 0
	for _, recs := range perTicker {
		if len(recs) > 0 {
			withSignal++
		}
		result.Records = append(result.Records, recs...)
	}
	result.Sort()

	b.logger.WithFields(map[string]interface{}{
		"tickers":     len(panel.Tickers),
		"with_signal": withSignal,
		"signals":     len(result.Records),
		"window":      result.Window,
	}).Info("Signal generation completed")

	return result, nil
}
