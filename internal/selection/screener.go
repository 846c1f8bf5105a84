package selection

import (
	"slices"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// Screener implements S3: eligibility filtering before ranking
// ⭐ SSOT: S3 스크리닝 로직은 여기서만
type Screener struct {
	config ScreenerConfig
	logger *logger.Logger
}

// ScreenerConfig defines hard cut conditions
// SSOT: strategy YAML selection.exclude
type ScreenerConfig struct {
	Exclude []string // 제외 종목 리스트
}

// Filter reasons
const (
	ReasonUndefinedSignal = "undefined_signal"
	ReasonExcluded        = "excluded"
)

// NewScreener creates a new screener
func NewScreener(config ScreenerConfig, log *logger.Logger) *Screener {
	return &Screener{
		config: config,
		logger: log,
	}
}

// IsExcluded checks if a ticker is in the exclusion list
func (s *Screener) IsExcluded(ticker string) bool {
	return slices.Contains(s.config.Exclude, ticker)
}

// Screen keeps the records eligible for ranking at one date.
// Records without a defined trailing average never qualify.
func (s *Screener) Screen(records []contracts.SignalRecord) ([]contracts.SignalRecord, map[string]int) {
	passed := make([]contracts.SignalRecord, 0, len(records))
	filtered := make(map[string]int)

	for _, r := range records {
		switch {
		case !r.TrailingAvgReturn.Defined():
			filtered[ReasonUndefinedSignal]++
		case s.IsExcluded(r.Ticker):
			filtered[ReasonExcluded]++
		default:
			passed = append(passed, r)
		}
	}

	if len(filtered) > 0 {
		s.logger.WithFields(map[string]interface{}{
			"input":    len(records),
			"passed":   len(passed),
			"filtered": filtered,
		}).Debug("Screening completed")
	}

	return passed, filtered
}
