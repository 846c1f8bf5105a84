package s1_preprocess

import (
	"fmt"
	"time"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// Replacement modes for outlier prices
const (
	ReplacePrevious    = "previous"
	ReplaceInterpolate = "interpolate"
)

// Imputation modes
const (
	ImputeForwardFill = "forward_fill"
	ImputeNone        = "none"
)

// Config holds the preprocessing rules
type Config struct {
	PriceFloor   float64 `yaml:"price_floor"`   // 0.1
	PriceCeiling float64 `yaml:"price_ceiling"` // 10000

	// 위기 구간 (월 단위, 양끝 포함)
	CrisisStart time.Time `yaml:"-"`
	CrisisEnd   time.Time `yaml:"-"`

	OutlierMaxReturn   float64 `yaml:"outlier_max_return"` // 1.0 = +100%
	OutlierMinReturn   float64 `yaml:"outlier_min_return"` // -0.5 = -50%
	OutlierReplacement string  `yaml:"outlier_replacement"`

	Imputation     string `yaml:"imputation"`
	ImputeFiltered bool   `yaml:"impute_filtered"` // 가격 범위로 제거된 월도 채울지

	Workers int `yaml:"workers"` // 0 = 제한 없음
}

// DefaultConfig returns the standard rules
func DefaultConfig() Config {
	return Config{
		PriceFloor:         0.1,
		PriceCeiling:       10000,
		CrisisStart:        MustParseMonth("2008-01"),
		CrisisEnd:          MustParseMonth("2009-12"),
		OutlierMaxReturn:   1.0,
		OutlierMinReturn:   -0.5,
		OutlierReplacement: ReplacePrevious,
		Imputation:         ImputeForwardFill,
		ImputeFiltered:     false,
		Workers:            8,
	}
}

// Validate checks the rules are coherent
func (c Config) Validate() error {
	if c.PriceFloor <= 0 {
		return fmt.Errorf("price_floor must be > 0, got %g", c.PriceFloor)
	}
	if c.PriceCeiling <= c.PriceFloor {
		return fmt.Errorf("price_ceiling (%g) must be > price_floor (%g)", c.PriceCeiling, c.PriceFloor)
	}
	if !c.CrisisStart.IsZero() && c.CrisisEnd.Before(c.CrisisStart) {
		return fmt.Errorf("crisis_end before crisis_start")
	}
	if c.OutlierMaxReturn <= 0 {
		return fmt.Errorf("outlier_max_return must be > 0, got %g", c.OutlierMaxReturn)
	}
	if c.OutlierMinReturn >= 0 || c.OutlierMinReturn <= -1 {
		return fmt.Errorf("outlier_min_return must be in (-1, 0), got %g", c.OutlierMinReturn)
	}
	if c.OutlierReplacement != ReplacePrevious && c.OutlierReplacement != ReplaceInterpolate {
		return fmt.Errorf("unknown outlier_replacement %q", c.OutlierReplacement)
	}
	if c.Imputation != ImputeForwardFill && c.Imputation != ImputeNone {
		return fmt.Errorf("unknown imputation %q", c.Imputation)
	}
	return nil
}

// InCrisis reports whether date's month lies inside the crisis window
func (c Config) InCrisis(date time.Time) bool {
	if c.CrisisStart.IsZero() || c.CrisisEnd.IsZero() {
		return false
	}
	m := contracts.MonthIndex(date)
	return m >= contracts.MonthIndex(c.CrisisStart) && m <= contracts.MonthIndex(c.CrisisEnd)
}

// Breaches reports whether a return is outside the outlier band
func (c Config) Breaches(r float64) bool {
	return r > c.OutlierMaxReturn || r < c.OutlierMinReturn
}

// breachesValue is Breaches for a defined value; undefined never breaches
func (c Config) breachesValue(v contracts.Value) bool {
	r, ok := v.Get()
	return ok && c.Breaches(r)
}

// ParseMonth parses "2006-01" (or a full date) into that month's end
func ParseMonth(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return contracts.MonthEnd(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM)", s)
}

// MustParseMonth is ParseMonth for constants
func MustParseMonth(s string) time.Time {
	t, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return t
}
