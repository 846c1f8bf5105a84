package audit

import (
	"sort"
	"time"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// Attribution is one ticker's contribution to the strategy return
type Attribution struct {
	Ticker       string  `json:"ticker"`
	Contribution float64 `json:"contribution"` // Σ 비중 × forward return
	Months       int     `json:"months"`       // 보유 개월 수
	AvgReturn    float64 `json:"avg_return"`   // 보유 기간 평균 월수익률
}

// AnalyzeAttribution sums each ticker's weighted forward return over the
// rebalancing dates of the series. Sorted by contribution, descending.
func (a *Analyzer) AnalyzeAttribution(portfolios []contracts.PortfolioSnapshot, series *contracts.PerformanceSeries) []Attribution {
	rebalanced := make(map[time.Time]bool)
	if series != nil {
		for _, p := range series.Points {
			rebalanced[p.Date] = true
		}
	}

	byTicker := make(map[string]*Attribution)
	sums := make(map[string]float64)
	for _, snap := range portfolios {
		if !rebalanced[snap.Date] {
			continue
		}
		w := snap.Weight()
		for _, ticker := range snap.InvestedTickers {
			r := snap.ForwardReturns[ticker]
			attr, ok := byTicker[ticker]
			if !ok {
				attr = &Attribution{Ticker: ticker}
				byTicker[ticker] = attr
			}
			attr.Contribution += w * r
			attr.Months++
			sums[ticker] += r
		}
	}

	attrs := make([]Attribution, 0, len(byTicker))
	for ticker, attr := range byTicker {
		attr.AvgReturn = sums[ticker] / float64(attr.Months)
		attrs = append(attrs, *attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		if attrs[i].Contribution != attrs[j].Contribution {
			return attrs[i].Contribution > attrs[j].Contribution
		}
		return attrs[i].Ticker < attrs[j].Ticker
	})

	a.logger.WithFields(map[string]interface{}{
		"tickers": len(attrs),
	}).Debug("Attribution analysis completed")

	return attrs
}
