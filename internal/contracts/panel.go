package contracts

import (
	"sort"
	"time"
)

// MonthlyRecord is one ticker at one calendar month-end
// ⭐ SSOT: S1 → S2 월별 패널 레코드
type MonthlyRecord struct {
	Date             time.Time `json:"date"` // 월말 (UTC)
	Ticker           string    `json:"ticker"`
	Price            float64   `json:"price"`
	HistoricalReturn Value     `json:"historical_return"` // price / price_prev - 1
	ForwardReturn    Value     `json:"forward_return"`    // price_next / price - 1
	IsOutlier        bool      `json:"is_outlier"`
	IsImputed        bool      `json:"is_imputed"`
}

// MonthlyPanel is a per-ticker map of date-ordered monthly records
type MonthlyPanel struct {
	Tickers []string                   `json:"tickers"` // sorted
	Series  map[string][]MonthlyRecord `json:"series"`
}

// NewMonthlyPanel builds a panel, dropping empty series and sorting tickers
func NewMonthlyPanel(series map[string][]MonthlyRecord) *MonthlyPanel {
	p := &MonthlyPanel{
		Tickers: make([]string, 0, len(series)),
		Series:  make(map[string][]MonthlyRecord, len(series)),
	}
	for ticker, recs := range series {
		if len(recs) == 0 {
			continue
		}
		p.Tickers = append(p.Tickers, ticker)
		p.Series[ticker] = recs
	}
	sort.Strings(p.Tickers)
	return p
}

// Get returns a ticker's series
func (p *MonthlyPanel) Get(ticker string) ([]MonthlyRecord, bool) {
	recs, ok := p.Series[ticker]
	return recs, ok
}

// Lookup finds a ticker's record at a month-end. A miss is not an error.
func (p *MonthlyPanel) Lookup(ticker string, date time.Time) (MonthlyRecord, bool) {
	recs := p.Series[ticker]
	i := sort.Search(len(recs), func(i int) bool { return !recs[i].Date.Before(date) })
	if i < len(recs) && recs[i].Date.Equal(date) {
		return recs[i], true
	}
	return MonthlyRecord{}, false
}

// Len is the total number of records
func (p *MonthlyPanel) Len() int {
	n := 0
	for _, recs := range p.Series {
		n += len(recs)
	}
	return n
}

// IsEmpty reports whether the panel has no records
func (p *MonthlyPanel) IsEmpty() bool {
	return p == nil || p.Len() == 0
}

// Dates returns every month-end present in the panel, ascending
func (p *MonthlyPanel) Dates() []time.Time {
	seen := make(map[time.Time]bool)
	dates := make([]time.Time, 0)
	for _, recs := range p.Series {
		for _, r := range recs {
			if !seen[r.Date] {
				seen[r.Date] = true
				dates = append(dates, r.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Records flattens the panel in (ticker, date) order
func (p *MonthlyPanel) Records() []MonthlyRecord {
	out := make([]MonthlyRecord, 0, p.Len())
	for _, ticker := range p.Tickers {
		out = append(out, p.Series[ticker]...)
	}
	return out
}

// BenchmarkRecord is the benchmark at one month-end
type BenchmarkRecord struct {
	Date             time.Time `json:"date"`
	AdjClose         float64   `json:"adj_close"`
	HistoricalReturn Value     `json:"historical_return"`
	ForwardReturn    Value     `json:"forward_return"`
}

// BenchmarkSeries is a date-ordered list of benchmark records
type BenchmarkSeries []BenchmarkRecord

// ForwardReturnAt returns the benchmark forward return at a month-end
func (b BenchmarkSeries) ForwardReturnAt(date time.Time) Value {
	i := sort.Search(len(b), func(i int) bool { return !b[i].Date.Before(date) })
	if i < len(b) && b[i].Date.Equal(date) {
		return b[i].ForwardReturn
	}
	return None()
}

// PreprocessStats counts what S1 did to the panel
type PreprocessStats struct {
	RawObservations   int `json:"raw_observations"`
	Tickers           int `json:"tickers"`
	ResampledRecords  int `json:"resampled_records"`
	FilteredRecords   int `json:"filtered_records"`  // price 범위 밖
	OutliersReplaced  int `json:"outliers_replaced"` // 위기 구간 밖
	CrisisFlagged     int `json:"crisis_flagged"`    // 위기 구간이라 그대로 둔 극단값
	ImputedRecords    int `json:"imputed_records"`
	FinalRecords      int `json:"final_records"`
	MissingHistorical int `json:"missing_historical"` // 정의되지 않은 historical_return 수
	MissingForward    int `json:"missing_forward"`
	BenchmarkMonths   int `json:"benchmark_months"`
}

// PreprocessResult is the S1 output
// ⭐ SSOT: S1 → S2 전처리 결과
type PreprocessResult struct {
	Panel     *MonthlyPanel   `json:"panel"`
	Benchmark BenchmarkSeries `json:"benchmark"`
	Outliers  []OutlierEvent  `json:"outliers"`
	Warnings  WarningSet      `json:"warnings"`
	Stats     PreprocessStats `json:"stats"`
}
