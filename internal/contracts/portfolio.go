package contracts

import "time"

// PortfolioSnapshot is the equal-weight portfolio held over one month
// ⭐ SSOT: S5 → S6 포트폴리오 전달
type PortfolioSnapshot struct {
	Date            time.Time          `json:"date"`
	InvestedTickers []string           `json:"invested_tickers"` // rank 순
	ForwardReturns  map[string]float64 `json:"forward_returns"`
	Excluded        []string           `json:"excluded"` // 선정됐지만 forward return 없음
	PortfolioReturn Value              `json:"portfolio_return"`
}

// Count returns the number of invested tickers
func (p *PortfolioSnapshot) Count() int {
	return len(p.InvestedTickers)
}

// Weight is the equal weight of one invested ticker
func (p *PortfolioSnapshot) Weight() float64 {
	if len(p.InvestedTickers) == 0 {
		return 0
	}
	return 1.0 / float64(len(p.InvestedTickers))
}

// Holds reports whether ticker is invested
func (p *PortfolioSnapshot) Holds(ticker string) bool {
	_, ok := p.ForwardReturns[ticker]
	return ok
}
