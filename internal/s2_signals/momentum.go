package s2_signals

import (
	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// DefaultWindow is the trailing window in months
const DefaultWindow = 12

// MomentumCalculator computes the trailing average of monthly returns
// ⭐ SSOT: 모멘텀 시그널 계산은 여기서만
type MomentumCalculator struct {
	window int
	logger *logger.Logger
}

// NewMomentumCalculator creates a new momentum calculator
func NewMomentumCalculator(window int, log *logger.Logger) *MomentumCalculator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &MomentumCalculator{
		window: window,
		logger: log,
	}
}

// Window returns the look-back length in months
func (c *MomentumCalculator) Window() int {
	return c.window
}

// Calculate emits one signal per record whose trailing average is defined.
// The series must be one ticker, ordered by date.
func (c *MomentumCalculator) Calculate(series []contracts.MonthlyRecord) []contracts.SignalRecord {
	out := make([]contracts.SignalRecord, 0, len(series))
	for i, rec := range series {
		avg := TrailingMean(series, i, c.window)
		if !avg.Defined() {
			continue
		}
		out = append(out, contracts.SignalRecord{
			Date:              rec.Date,
			Ticker:            rec.Ticker,
			TrailingAvgReturn: avg,
			ForwardReturn:     rec.ForwardReturn,
		})
	}

	if len(series) > 0 {
		c.logger.WithFields(map[string]interface{}{
			"ticker":  series[0].Ticker,
			"records": len(series),
			"signals": len(out),
		}).Debug("Calculated momentum signal")
	}

	return out
}

// TrailingMean is the mean historical return of the window records ending
// at i. It is undefined unless those records cover window consecutive
// calendar months and every historical return is defined. Only returns at
// or before series[i].Date are read.
func TrailingMean(series []contracts.MonthlyRecord, i, window int) contracts.Value {
	if window <= 0 || i < window-1 || i >= len(series) {
		return contracts.None()
	}

	first := i - window + 1
	if contracts.MonthIndex(series[i].Date)-contracts.MonthIndex(series[first].Date) != window-1 {
		return contracts.None() // 창 안에 빠진 달이 있음
	}

	sum := 0.0
	for j := first; j <= i; j++ {
		r, ok := series[j].HistoricalReturn.Get()
		if !ok {
			return contracts.None()
		}
		sum += r
	}
	return contracts.Some(sum / float64(window))
}
