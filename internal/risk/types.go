package risk

import "errors"

// ErrInsufficientSamples is returned when there are fewer monthly returns
// than Config.MinSamples (fail-closed)
var ErrInsufficientSamples = errors.New("insufficient samples")

// VaRResult VaR 계산 결과
// ⭐ SSOT: VaR/CVaR는 손실을 양수로 표현
// - VaR=0.05 → 95% 신뢰수준에서 한 달 최대 5% 손실 가능
// - CVaR=0.07 → 5% tail에서 평균 7% 손실 예상
type VaRResult struct {
	Confidence float64 `json:"confidence"`
	VaR        float64 `json:"var"`
	CVaR       float64 `json:"cvar"`
}

// Config 월간 리스크 분석 설정
// ⭐ SSOT: 재현성을 위해 모든 설정을 명시적으로 기록
type Config struct {
	Confidence    float64 `yaml:"confidence" json:"confidence"`         // 0.95
	Simulations   int     `yaml:"simulations" json:"simulations"`       // Monte Carlo 경로 수, 0 = 생략
	HorizonMonths int     `yaml:"horizon_months" json:"horizon_months"` // 경로 길이
	Seed          int64   `yaml:"seed" json:"seed"`                     // 0 = 랜덤
	MinSamples    int     `yaml:"min_samples" json:"min_samples"`       // 이보다 적으면 계산 안 함
}

// DefaultConfig 기본 설정
func DefaultConfig() Config {
	return Config{
		Confidence:    0.95,
		Simulations:   10000,
		HorizonMonths: 12,
		Seed:          42,
		MinSamples:    12,
	}
}

// MonteCarloResult bootstraps horizon-month paths from the realized months
type MonteCarloResult struct {
	Paths          int             `json:"paths"`
	HorizonMonths  int             `json:"horizon_months"`
	InputSamples   int             `json:"input_samples"`
	MeanReturn     float64         `json:"mean_return"` // 경로 누적 수익률 평균
	StdDev         float64         `json:"std_dev"`
	VaR            VaRResult       `json:"var"`             // 경로 누적 수익률 기준
	ProbLoss       float64         `json:"prob_loss"`       // 누적 수익률 < 0 비율
	ProbOutperform float64         `json:"prob_outperform"` // 전략 > 벤치마크 비율
	Percentiles    map[int]float64 `json:"percentiles"`     // 5, 25, 50, 75, 95
}

// Report is the S7 tail-risk section of a run
type Report struct {
	Config     Config            `json:"config"`
	Historical VaRResult         `json:"historical"` // 월수익률 기준
	Parametric VaRResult         `json:"parametric"` // 정규분포 가정
	MonteCarlo *MonteCarloResult `json:"monte_carlo,omitempty"`
}
