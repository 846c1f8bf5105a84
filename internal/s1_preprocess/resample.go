package s1_preprocess

import (
	"sort"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// ResampleMonthly keeps the chronologically last observation of each
// (ticker, calendar month). Records are dated at the month-end.
func ResampleMonthly(obs []contracts.DailyObservation) map[string][]contracts.MonthlyRecord {
	last := make(map[string]map[int]contracts.DailyObservation)
	for _, o := range obs {
		months, ok := last[o.Ticker]
		if !ok {
			months = make(map[int]contracts.DailyObservation)
			last[o.Ticker] = months
		}
		idx := contracts.MonthIndex(o.Date)
		if cur, ok := months[idx]; !ok || !o.Date.Before(cur.Date) {
			months[idx] = o
		}
	}

	out := make(map[string][]contracts.MonthlyRecord, len(last))
	for ticker, months := range last {
		idxs := sortedKeys(months)
		series := make([]contracts.MonthlyRecord, 0, len(idxs))
		for _, idx := range idxs {
			series = append(series, contracts.MonthlyRecord{
				Date:   contracts.MonthFromIndex(idx),
				Ticker: ticker,
				Price:  months[idx].Price,
			})
		}
		out[ticker] = series
	}
	return out
}

// ResampleBenchmark applies the same month-end rule to the index
func ResampleBenchmark(obs []contracts.BenchmarkObservation) contracts.BenchmarkSeries {
	months := make(map[int]contracts.BenchmarkObservation)
	for _, o := range obs {
		idx := contracts.MonthIndex(o.Date)
		if cur, ok := months[idx]; !ok || !o.Date.Before(cur.Date) {
			months[idx] = o
		}
	}

	idxs := sortedKeys(months)
	out := make(contracts.BenchmarkSeries, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, contracts.BenchmarkRecord{
			Date:     contracts.MonthFromIndex(idx),
			AdjClose: months[idx].AdjClose,
		})
	}
	return out
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
