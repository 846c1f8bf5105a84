package s1_preprocess

import (
	"github.com/wonny/aegis/momentum/internal/contracts"
)

// ForwardFill inserts the missing months between a ticker's first and last
// record, priced at the last known price and marked IsImputed. Months in
// skip stay absent. Nothing is generated before the first or after the last
// record. Returns the new series and the number of records inserted.
func ForwardFill(series []contracts.MonthlyRecord, skip map[int]bool) ([]contracts.MonthlyRecord, int) {
	if len(series) == 0 {
		return nil, 0
	}

	out := make([]contracts.MonthlyRecord, 0, len(series))
	imputed := 0
	for i, rec := range series {
		if i > 0 {
			prev := series[i-1]
			from := contracts.MonthIndex(prev.Date)
			to := contracts.MonthIndex(rec.Date)
			for m := from + 1; m < to; m++ {
				if skip[m] {
					continue
				}
				out = append(out, contracts.MonthlyRecord{
					Date:      contracts.MonthFromIndex(m),
					Ticker:    rec.Ticker,
					Price:     prev.Price,
					IsImputed: true,
				})
				imputed++
			}
		}
		out = append(out, rec)
	}
	return out, imputed
}

// relinkImputed fills in the returns touching imputed records. Returns
// between real records keep what outlier handling left.
func relinkImputed(series []contracts.MonthlyRecord) []contracts.MonthlyRecord {
	out := make([]contracts.MonthlyRecord, len(series))
	copy(out, series)
	for i := range out {
		if out[i].IsImputed {
			relinkAt(out, i)
		}
	}
	return out
}
