package s1_preprocess

import (
	"time"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

func me(y int, m time.Month) time.Time {
	return contracts.MonthEnd(time.Date(y, m, 1, 0, 0, 0, 0, time.UTC))
}

// dailyFrom emits one mid-month observation per price starting at (y, m).
// A negative price marks a month with no observation.
func dailyFrom(ticker string, y int, m time.Month, prices ...float64) []contracts.DailyObservation {
	out := make([]contracts.DailyObservation, 0, len(prices))
	for i, p := range prices {
		if p < 0 {
			continue
		}
		out = append(out, contracts.DailyObservation{
			Date:   time.Date(y, m+time.Month(i), 15, 0, 0, 0, 0, time.UTC),
			Ticker: ticker,
			Price:  p,
		})
	}
	return out
}

// monthlyFrom builds a consecutive monthly series with returns computed
func monthlyFrom(ticker string, y int, m time.Month, prices ...float64) []contracts.MonthlyRecord {
	out := make([]contracts.MonthlyRecord, len(prices))
	for i, p := range prices {
		out[i] = contracts.MonthlyRecord{
			Date:   contracts.MonthEnd(time.Date(y, m+time.Month(i), 1, 0, 0, 0, 0, time.UTC)),
			Ticker: ticker,
			Price:  p,
		}
	}
	return ComputeReturns(out)
}

func prices(series []contracts.MonthlyRecord) []float64 {
	out := make([]float64, len(series))
	for i, r := range series {
		out[i] = r.Price
	}
	return out
}
