package portfolio

import (
	"context"
	"fmt"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// Constructor implements S5: equal-weight portfolio construction
// ⭐ SSOT: S5 포트폴리오 구성 로직은 여기서만
type Constructor struct {
	constraints Constraints
	logger      *logger.Logger
}

// NewConstructor creates a new portfolio constructor
func NewConstructor(constraints Constraints, log *logger.Logger) *Constructor {
	return &Constructor{
		constraints: constraints,
		logger:      log.WithStage("s5"),
	}
}

// Construct builds one snapshot per signal month from the selected tickers.
// Selected tickers without a forward return are excluded with a warning.
func (c *Constructor) Construct(ctx context.Context, signals *contracts.SignalPanel) ([]contracts.PortfolioSnapshot, contracts.WarningSet, error) {
	var warnings contracts.WarningSet
	if err := c.constraints.Validate(); err != nil {
		return nil, warnings, fmt.Errorf("portfolio constraints: %w", err)
	}
	if signals == nil {
		return nil, warnings, nil
	}

	dates := signals.Dates()
	snapshots := make([]contracts.PortfolioSnapshot, 0, len(dates))

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, warnings, err
		}

		selected := signals.SelectedAt(date)
		if len(selected) > c.constraints.MaxPositions {
			return nil, warnings, fmt.Errorf("%s: %d tickers selected, max %d",
				date.Format("2006-01-02"), len(selected), c.constraints.MaxPositions)
		}

		snap := contracts.PortfolioSnapshot{
			Date:            date,
			InvestedTickers: make([]string, 0, len(selected)),
			ForwardReturns:  make(map[string]float64, len(selected)),
		}

		returns := make([]contracts.Value, 0, len(selected))
		for _, rec := range selected {
			fwd, ok := rec.ForwardReturn.Get()
			if !ok {
				snap.Excluded = append(snap.Excluded, rec.Ticker)
				warnings.Add(contracts.WarnMissingForward, rec.Ticker, date,
					"selected ticker has no forward return")
				continue
			}
			snap.InvestedTickers = append(snap.InvestedTickers, rec.Ticker)
			snap.ForwardReturns[rec.Ticker] = fwd
			returns = append(returns, rec.ForwardReturn)
		}

		// 동일 비중: 평균 = 포트폴리오 수익률
		snap.PortfolioReturn = contracts.Mean(returns)
		if len(snap.InvestedTickers) == 0 {
			warnings.Add(contracts.WarnEmptyPortfolio, "", date, "no invested tickers")
		}

		snapshots = append(snapshots, snap)
	}

	c.logger.WithFields(map[string]interface{}{
		"months":   len(snapshots),
		"excluded": warnings.Count(contracts.WarnMissingForward),
		"empty":    warnings.Count(contracts.WarnEmptyPortfolio),
	}).Info("Portfolio construction completed")

	return snapshots, warnings, nil
}
