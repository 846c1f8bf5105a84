package contracts

import "time"

// PerformancePoint is one rebalancing date of the backtest
type PerformancePoint struct {
	Date               time.Time `json:"date"`
	StrategyReturn     float64   `json:"strategy_return"`
	BenchmarkReturn    float64   `json:"benchmark_return"`
	StrategyCumReturn  float64   `json:"strategy_cum_return"` // 1.0에서 시작하는 누적 배수
	BenchmarkCumReturn float64   `json:"benchmark_cum_return"`
	StrategyPnL        float64   `json:"strategy_pnl"`
	BenchmarkPnL       float64   `json:"benchmark_pnl"`
	Holdings           int       `json:"holdings"`
}

// PerformanceSeries is the ordered backtest output. It is not modified
// after the engine returns it.
// ⭐ SSOT: S6 → S7 성과 시계열
type PerformanceSeries struct {
	Notional float64            `json:"notional"`
	Points   []PerformancePoint `json:"points"`
}

// Len returns the number of rebalancing dates
func (s *PerformanceSeries) Len() int {
	return len(s.Points)
}

// Last returns the final point
func (s *PerformanceSeries) Last() (PerformancePoint, bool) {
	if len(s.Points) == 0 {
		return PerformancePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// StrategyReturns extracts the per-period strategy returns
func (s *PerformanceSeries) StrategyReturns() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.StrategyReturn
	}
	return out
}

// BenchmarkReturns extracts the per-period benchmark returns
func (s *PerformanceSeries) BenchmarkReturns() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.BenchmarkReturn
	}
	return out
}

// Summary holds the headline scalars of a backtest
type Summary struct {
	StrategyTotalReturn  float64   `json:"strategy_total_return"`
	BenchmarkTotalReturn float64   `json:"benchmark_total_return"`
	Outperformance       float64   `json:"outperformance"`
	StrategyPnL          float64   `json:"strategy_pnl"`
	BenchmarkPnL         float64   `json:"benchmark_pnl"`
	Notional             float64   `json:"notional"`
	Periods              int       `json:"periods"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
}

// IsOutperforming checks if the strategy beat the benchmark
func (s *Summary) IsOutperforming() bool {
	return s.Outperformance > 0
}

// PerformanceReport is the S7 risk analysis of a performance series
// ⭐ SSOT: S7 성과 분석 결과
type PerformanceReport struct {
	Periods int `json:"periods"`

	// 수익률
	AnnualReturn          float64 `json:"annual_return"`
	BenchmarkAnnualReturn float64 `json:"benchmark_annual_return"`

	// 리스크
	Volatility          float64 `json:"volatility"` // 연환산 (×√12)
	BenchmarkVolatility float64 `json:"benchmark_volatility"`
	Sharpe              float64 `json:"sharpe"`
	Sortino             float64 `json:"sortino"`
	MaxDrawdown         float64 `json:"max_drawdown"` // 음수
	BenchmarkDrawdown   float64 `json:"benchmark_drawdown"`

	// 벤치마크 대비
	HitRate          float64 `json:"hit_rate"` // 전략 > 벤치마크 비율
	TrackingError    float64 `json:"tracking_error"`
	InformationRatio float64 `json:"information_ratio"`
	Beta             float64 `json:"beta"`

	// 월수익률 분포
	BestMonth   float64 `json:"best_month"`
	WorstMonth  float64 `json:"worst_month"`
	MedianMonth float64 `json:"median_month"`
}

// IsHealthy checks if the strategy has healthy risk metrics
func (pr *PerformanceReport) IsHealthy() bool {
	return pr.Sharpe > 0.5 && pr.MaxDrawdown > -0.50
}
