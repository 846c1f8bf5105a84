package contracts

import (
	"time"
)

// DailyObservation is one raw price row
// ⭐ SSOT: S0 → S1 원시 일별 가격
type DailyObservation struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`
	Price  float64   `json:"price"`
}

// BenchmarkObservation is one raw index row
type BenchmarkObservation struct {
	Date     time.Time `json:"date"`
	AdjClose float64   `json:"adj_close"`
}

// RawDataset is everything the loader produces for one run
type RawDataset struct {
	Source    string                 `json:"source"` // "csv:<path>", "postgres"
	Prices    []DailyObservation     `json:"prices"`
	Benchmark []BenchmarkObservation `json:"benchmark"`
}

// Tickers returns the distinct tickers in first-seen order
func (r *RawDataset) Tickers() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, obs := range r.Prices {
		if !seen[obs.Ticker] {
			seen[obs.Ticker] = true
			out = append(out, obs.Ticker)
		}
	}
	return out
}

// MonthEnd returns the last calendar day of t's month (UTC midnight)
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// MonthIndex numbers calendar months consecutively (year*12 + month-1)
func MonthIndex(t time.Time) int {
	y, m, _ := t.Date()
	return y*12 + int(m) - 1
}

// MonthFromIndex is the month-end date of a MonthIndex
func MonthFromIndex(idx int) time.Time {
	return time.Date(idx/12, time.Month(idx%12+1)+1, 0, 0, 0, 0, 0, time.UTC)
}
