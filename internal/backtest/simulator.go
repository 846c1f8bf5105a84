package backtest

import "math"

// Simulator compounds monthly returns for the strategy and the benchmark
// ⭐ SSOT: 백테스팅 시뮬레이션은 여기서만
type Simulator struct {
	notional float64

	// Current state
	strategyCum  float64
	benchmarkCum float64
	periods      int
}

// NewSimulator creates a simulator that starts both legs at 1.0
func NewSimulator(notional float64) *Simulator {
	s := &Simulator{notional: notional}
	s.Reset()
	return s
}

// Reset restarts compounding from 1.0
func (s *Simulator) Reset() {
	s.strategyCum = 1.0
	s.benchmarkCum = 1.0
	s.periods = 0
}

// Step applies one month of returns and returns the updated growth factors
func (s *Simulator) Step(strategyReturn, benchmarkReturn float64) (strategyCum, benchmarkCum float64) {
	s.strategyCum *= 1 + strategyReturn
	s.benchmarkCum *= 1 + benchmarkReturn
	s.periods++
	return s.strategyCum, s.benchmarkCum
}

// PnL converts a growth factor into dollar profit on the notional
func (s *Simulator) PnL(cum float64) float64 {
	return cum*s.notional - s.notional
}

// Periods returns the number of compounded months
func (s *Simulator) Periods() int {
	return s.periods
}

// Compound is the growth factor of a return sequence starting at 1.0
func Compound(returns []float64) float64 {
	cum := 1.0
	for _, r := range returns {
		cum *= 1 + r
	}
	return cum
}

// Annualize converts a growth factor over months into a yearly rate
func Annualize(cum float64, months int) float64 {
	if months <= 0 || cum <= 0 {
		return 0
	}
	return math.Pow(cum, 12.0/float64(months)) - 1
}
