package strategyconfig

import (
	"errors"
	"fmt"
	"regexp"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Preprocess ===
	p := cfg.Preprocess
	if p.PriceFloor <= 0 {
		return ValidationError{"preprocess.price_floor", "must be > 0"}
	}
	if p.PriceCeiling <= p.PriceFloor {
		return ValidationError{"preprocess.price_ceiling", "must be > price_floor"}
	}
	if (p.CrisisStart == "") != (p.CrisisEnd == "") {
		return ValidationError{"preprocess.crisis_start", "crisis_start and crisis_end must be set together"}
	}
	if p.CrisisStart != "" {
		if err := validateMonth(p.CrisisStart); err != nil {
			return ValidationError{"preprocess.crisis_start", err.Error()}
		}
		if err := validateMonth(p.CrisisEnd); err != nil {
			return ValidationError{"preprocess.crisis_end", err.Error()}
		}
		// YYYY-MM 문자열은 사전순 = 시간순
		if p.CrisisEnd < p.CrisisStart {
			return ValidationError{"preprocess.crisis_end", "must not be before crisis_start"}
		}
	}
	if p.OutlierMaxReturn <= 0 {
		return ValidationError{"preprocess.outlier_max_return", "must be > 0"}
	}
	if p.OutlierMinReturn <= -1 || p.OutlierMinReturn >= 0 {
		return ValidationError{"preprocess.outlier_min_return", "must be in (-1, 0)"}
	}
	switch p.OutlierReplacement {
	case "previous", "interpolate":
	default:
		return ValidationError{"preprocess.outlier_replacement", "must be previous or interpolate"}
	}
	switch p.Imputation {
	case "forward_fill", "none":
	default:
		return ValidationError{"preprocess.imputation", "must be forward_fill or none"}
	}
	if p.Workers < 0 {
		return ValidationError{"preprocess.workers", "must be >= 0"}
	}

	// === Signals ===
	if cfg.Signals.WindowMonths < 1 {
		return ValidationError{"signals.window_months", "must be >= 1"}
	}
	if cfg.Signals.Workers < 0 {
		return ValidationError{"signals.workers", "must be >= 0"}
	}

	// === Selection ===
	if cfg.Selection.TopK < 1 {
		return ValidationError{"selection.top_k", "must be >= 1"}
	}
	seen := make(map[string]bool, len(cfg.Selection.Exclude))
	for i, ticker := range cfg.Selection.Exclude {
		if ticker == "" {
			return ValidationError{fmt.Sprintf("selection.exclude[%d]", i), "must not be empty"}
		}
		if seen[ticker] {
			return ValidationError{fmt.Sprintf("selection.exclude[%d]", i), "duplicate ticker " + ticker}
		}
		seen[ticker] = true
	}

	// === Backtest ===
	if cfg.Backtest.NotionalPerPosition <= 0 {
		return ValidationError{"backtest.notional_per_position", "must be > 0"}
	}
	if cfg.Backtest.RiskFreeRate < 0 || cfg.Backtest.RiskFreeRate > 0.2 {
		return ValidationError{"backtest.risk_free_rate", "must be in range [0, 0.2]"}
	}

	// === Quality ===
	q := cfg.Quality
	if err := validatePctRange(q.MinScore, "quality.min_score"); err != nil {
		return err
	}
	if err := validatePctRange(q.MaxImputedRatio, "quality.max_imputed_ratio"); err != nil {
		return err
	}
	if err := validatePctRange(q.MaxOutlierRatio, "quality.max_outlier_ratio"); err != nil {
		return err
	}
	if q.IQRMultiplier <= 0 {
		return ValidationError{"quality.iqr_multiplier", "must be > 0"}
	}
	if q.MinTickers < 0 || q.IQRPerTicker < 0 || q.IQRMaxFindings < 0 {
		return ValidationError{"quality", "counts must be >= 0"}
	}

	// === Risk ===
	if err := cfg.Risk.Validate(); err != nil {
		return ValidationError{"risk", err.Error()}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Selection.TopK < 5 {
		warnings = append(warnings, Warning{
			Code:    "CONCENTRATED",
			Message: "top_k < 5: 종목 집중도 높음",
		})
	}

	if cfg.Signals.WindowMonths < 6 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_WINDOW",
			Message: "window_months < 6: 단기 노이즈에 민감",
		})
	}

	// 위기 구간이 없으면 2008년 급락도 이상치로 교체됨
	if cfg.Preprocess.CrisisStart == "" {
		warnings = append(warnings, Warning{
			Code:    "NO_CRISIS_WINDOW",
			Message: "crisis window unset: 모든 극단 수익률이 교체됨",
		})
	}

	if cfg.Preprocess.Imputation == "none" {
		warnings = append(warnings, Warning{
			Code:    "NO_IMPUTATION",
			Message: "imputation none: 결측 월이 12개월 창을 끊음",
		})
	}

	if cfg.Preprocess.OutlierMaxReturn < 0.3 {
		warnings = append(warnings, Warning{
			Code:    "TIGHT_OUTLIER_BAND",
			Message: "outlier_max_return < 30%: 정상 급등도 교체될 수 있음",
		})
	}

	return warnings
}

// === Helper Functions ===

func validateMonth(s string) error {
	if !monthPattern.MatchString(s) {
		return errors.New("must be YYYY-MM format")
	}
	return nil
}

// validatePctRange는 퍼센트 값이 0~1 범위인지 검증
func validatePctRange(pct float64, field string) error {
	if pct < 0 || pct > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}
