package s1_preprocess

import (
	"github.com/wonny/aegis/momentum/internal/contracts"
)

// returnBetween is b/a - 1 when b is the calendar month right after a
func returnBetween(a, b contracts.MonthlyRecord) contracts.Value {
	if contracts.MonthIndex(b.Date) != contracts.MonthIndex(a.Date)+1 {
		return contracts.None()
	}
	return contracts.PctChange(a.Price, b.Price)
}

// ComputeReturns returns a copy of one ticker's series with historical and
// forward returns filled in. A return across a missing month is undefined.
func ComputeReturns(series []contracts.MonthlyRecord) []contracts.MonthlyRecord {
	out := make([]contracts.MonthlyRecord, len(series))
	copy(out, series)
	for i := range out {
		refreshAt(out, i)
	}
	return out
}

// refreshAt recomputes both returns of out[i] in place
func refreshAt(out []contracts.MonthlyRecord, i int) {
	if i < 0 || i >= len(out) {
		return
	}
	if i > 0 {
		out[i].HistoricalReturn = returnBetween(out[i-1], out[i])
	} else {
		out[i].HistoricalReturn = contracts.None()
	}
	if i+1 < len(out) {
		out[i].ForwardReturn = returnBetween(out[i], out[i+1])
	} else {
		out[i].ForwardReturn = contracts.None()
	}
}

// benchmarkReturns fills the benchmark returns (copy)
func benchmarkReturns(series contracts.BenchmarkSeries) contracts.BenchmarkSeries {
	out := make(contracts.BenchmarkSeries, len(series))
	copy(out, series)
	for i := range out {
		out[i].HistoricalReturn = contracts.None()
		out[i].ForwardReturn = contracts.None()
		if i > 0 && contracts.MonthIndex(out[i].Date) == contracts.MonthIndex(out[i-1].Date)+1 {
			out[i].HistoricalReturn = contracts.PctChange(out[i-1].AdjClose, out[i].AdjClose)
		}
		if i+1 < len(out) && contracts.MonthIndex(out[i+1].Date) == contracts.MonthIndex(out[i].Date)+1 {
			out[i].ForwardReturn = contracts.PctChange(out[i].AdjClose, out[i+1].AdjClose)
		}
	}
	return out
}
