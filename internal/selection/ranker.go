package selection

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// DefaultTopK is the number of tickers held each month
const DefaultTopK = 20

// Ranker implements S4: monthly top-k selection by trailing return
// ⭐ SSOT: S4 랭킹 로직은 여기서만
type Ranker struct {
	topK     int
	screener *Screener
	logger   *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(topK int, screener *Screener, log *logger.Logger) *Ranker {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if screener == nil {
		screener = NewScreener(ScreenerConfig{}, log)
	}
	return &Ranker{
		topK:     topK,
		screener: screener,
		logger:   log.WithStage("s4"),
	}
}

// TopK returns the configured selection size
func (r *Ranker) TopK() int {
	return r.topK
}

// Select marks the top-k tickers per month. The input panel is not
// modified; the returned panel carries Selected and Rank.
func (r *Ranker) Select(ctx context.Context, signals *contracts.SignalPanel) (*contracts.SignalPanel, contracts.WarningSet, error) {
	var warnings contracts.WarningSet
	out := &contracts.SignalPanel{Records: make([]contracts.SignalRecord, 0)}
	if signals == nil {
		return out, warnings, nil
	}
	out.Window = signals.Window

	// 입력 정렬 여부와 무관하게 복사본으로 날짜 순회
	sorted := &contracts.SignalPanel{Records: append([]contracts.SignalRecord(nil), signals.Records...)}
	sorted.Sort()
	byDate := sorted.ByDate()
	dates := sorted.Dates()

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, warnings, fmt.Errorf("select at %s: %w", date.Format("2006-01-02"), err)
		}

		records := byDate[date]
		eligible, _ := r.screener.Screen(records)
		Rank(eligible)

		rank := make(map[string]int, len(eligible))
		for i, rec := range eligible {
			if i >= r.topK {
				break
			}
			rank[rec.Ticker] = i + 1
		}

		for _, rec := range records {
			rec.Selected = false
			rec.Rank = 0
			if n, ok := rank[rec.Ticker]; ok {
				rec.Selected = true
				rec.Rank = n
			}
			out.Records = append(out.Records, rec)
		}

		if len(eligible) < r.topK {
			warnings.Add(contracts.WarnShortSelection, "", date,
				"only %d tickers qualified, wanted %d", len(eligible), r.topK)
		}
	}
	out.Sort()

	r.logger.WithFields(map[string]interface{}{
		"months":         len(dates),
		"top_k":          r.topK,
		"short_months":   warnings.Count(contracts.WarnShortSelection),
		"signal_records": len(out.Records),
	}).Info("Selection completed")

	return out, warnings, nil
}

// Rank orders records by trailing average descending, ticker ascending
func Rank(records []contracts.SignalRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, _ := records[i].TrailingAvgReturn.Get()
		b, _ := records[j].TrailingAvgReturn.Get()
		if a != b {
			return a > b
		}
		return records[i].Ticker < records[j].Ticker
	})
}
