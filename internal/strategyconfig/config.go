package strategyconfig

import (
	"github.com/wonny/aegis/momentum/internal/risk"
	"github.com/wonny/aegis/momentum/internal/s0_data/quality"
)

// Config는 모멘텀 백테스트 전략의 전체 설정
type Config struct {
	Meta       Meta           `yaml:"meta" json:"meta"`
	Preprocess Preprocess     `yaml:"preprocess" json:"preprocess"`
	Signals    Signals        `yaml:"signals" json:"signals"`
	Selection  Selection      `yaml:"selection" json:"selection"`
	Backtest   Backtest       `yaml:"backtest" json:"backtest"`
	Quality    quality.Config `yaml:"quality" json:"quality"`
	Risk       risk.Config    `yaml:"risk" json:"risk"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Preprocess S1: 월별 리샘플링 + 정제
type Preprocess struct {
	PriceFloor         float64 `yaml:"price_floor" json:"price_floor"`
	PriceCeiling       float64 `yaml:"price_ceiling" json:"price_ceiling"`
	CrisisStart        string  `yaml:"crisis_start" json:"crisis_start"` // YYYY-MM, 빈 값 = 위기 구간 없음
	CrisisEnd          string  `yaml:"crisis_end" json:"crisis_end"`
	OutlierMaxReturn   float64 `yaml:"outlier_max_return" json:"outlier_max_return"`
	OutlierMinReturn   float64 `yaml:"outlier_min_return" json:"outlier_min_return"`
	OutlierReplacement string  `yaml:"outlier_replacement" json:"outlier_replacement"` // previous | interpolate
	Imputation         string  `yaml:"imputation" json:"imputation"`                   // forward_fill | none
	ImputeFiltered     bool    `yaml:"impute_filtered" json:"impute_filtered"`
	Workers            int     `yaml:"workers" json:"workers"`
}

// Signals S2: 추세 지표
type Signals struct {
	WindowMonths int `yaml:"window_months" json:"window_months"`
	Workers      int `yaml:"workers" json:"workers"`
}

// Selection S3/S4: 종목 선정
type Selection struct {
	TopK    int      `yaml:"top_k" json:"top_k"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// Backtest S6/S7: 성과 계산
type Backtest struct {
	NotionalPerPosition float64 `yaml:"notional_per_position" json:"notional_per_position"`
	RiskFreeRate        float64 `yaml:"risk_free_rate" json:"risk_free_rate"` // 연율
}

// Default returns the built-in strategy: top 20 by 12-month average return
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "momentum_top20",
			Version:    "1.0.0",
		},
		Preprocess: Preprocess{
			PriceFloor:         0.1,
			PriceCeiling:       10000,
			CrisisStart:        "2008-01",
			CrisisEnd:          "2009-12",
			OutlierMaxReturn:   1.0,
			OutlierMinReturn:   -0.5,
			OutlierReplacement: "previous",
			Imputation:         "forward_fill",
			Workers:            8,
		},
		Signals: Signals{
			WindowMonths: 12,
			Workers:      8,
		},
		Selection: Selection{
			TopK:    20,
			Exclude: []string{},
		},
		Backtest: Backtest{
			NotionalPerPosition: 1.0,
		},
		Quality: quality.DefaultConfig(),
		Risk:    risk.DefaultConfig(),
	}
}
