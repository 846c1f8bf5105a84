package contracts

import (
	"sort"
	"time"
)

// SignalRecord is the momentum signal of one ticker at one month-end
// ⭐ SSOT: S2 → S4 시그널 전달
type SignalRecord struct {
	Date              time.Time `json:"date"`
	Ticker            string    `json:"ticker"`
	TrailingAvgReturn Value     `json:"trailing_avg_return"`
	ForwardReturn     Value     `json:"forward_return"`
	Selected          bool      `json:"selected"`
	Rank              int       `json:"rank"` // 1-based, 0 = 미선정
}

// SignalPanel holds signal records sorted by (date, ticker)
type SignalPanel struct {
	Window  int            `json:"window"`
	Records []SignalRecord `json:"records"`
}

// Sort orders records by (date, ticker)
func (s *SignalPanel) Sort() {
	sort.Slice(s.Records, func(i, j int) bool {
		a, b := s.Records[i], s.Records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Ticker < b.Ticker
	})
}

// Count returns the number of signal records
func (s *SignalPanel) Count() int {
	return len(s.Records)
}

// Dates returns the distinct signal dates, ascending
func (s *SignalPanel) Dates() []time.Time {
	dates := make([]time.Time, 0)
	for i, r := range s.Records {
		if i == 0 || !r.Date.Equal(s.Records[i-1].Date) {
			dates = append(dates, r.Date)
		}
	}
	return dates
}

// ByDate groups records per date (order inside a date preserved)
func (s *SignalPanel) ByDate() map[time.Time][]SignalRecord {
	out := make(map[time.Time][]SignalRecord)
	for _, r := range s.Records {
		out[r.Date] = append(out[r.Date], r)
	}
	return out
}

// SelectedAt returns the selected records at a date ordered by rank
func (s *SignalPanel) SelectedAt(date time.Time) []SignalRecord {
	out := make([]SignalRecord, 0)
	for _, r := range s.Records {
		if r.Selected && r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// SelectionCounts returns the number of selected tickers per date
func (s *SignalPanel) SelectionCounts() map[time.Time]int {
	out := make(map[time.Time]int)
	for _, r := range s.Records {
		if r.Selected {
			out[r.Date]++
		}
	}
	return out
}
