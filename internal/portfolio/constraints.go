package portfolio

import "fmt"

// Constraints defines portfolio construction constraints
// ⭐ SSOT: 포트폴리오 제약조건은 여기서만
type Constraints struct {
	MaxPositions        int     // 월별 최대 종목 수 (= top_k)
	NotionalPerPosition float64 // 종목당 투자금 ($)
}

// DefaultConstraints returns default constraint configuration
// SSOT: strategy YAML selection.top_k, backtest.notional_per_position
func DefaultConstraints() Constraints {
	return Constraints{
		MaxPositions:        20,
		NotionalPerPosition: 1.0,
	}
}

// Notional is the capital deployed each month by a full portfolio
func (c Constraints) Notional() float64 {
	return c.NotionalPerPosition * float64(c.MaxPositions)
}

// Validate checks the constraint values
func (c Constraints) Validate() error {
	if c.MaxPositions <= 0 {
		return fmt.Errorf("max positions must be positive, got %d", c.MaxPositions)
	}
	if c.NotionalPerPosition <= 0 {
		return fmt.Errorf("notional per position must be positive, got %v", c.NotionalPerPosition)
	}
	return nil
}
