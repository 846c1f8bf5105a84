package s1_preprocess

import (
	"github.com/wonny/aegis/momentum/internal/contracts"
)

// OutlierOutcome is what outlier handling did to one ticker
type OutlierOutcome struct {
	Series        []contracts.MonthlyRecord
	Events        []contracts.OutlierEvent
	CrisisFlagged int // 위기 구간이라 교체하지 않은 극단값
}

// HandleOutliers walks one ticker's series in date order. A record is an
// outlier when its historical return leaves the band both as it came in and
// after earlier repairs. A record without a historical return (series start,
// after a gap) is judged on its forward return instead, unless the next
// record is itself a spike.
// The outlier price is replaced and the neighbouring returns are refreshed
// before the walk continues, so a single spike yields a single event and a
// lasting level shift yields one event, not one per later month.
// Prices and flags inside the crisis window are never changed; their returns
// follow a repaired neighbour.
func HandleOutliers(series []contracts.MonthlyRecord, cfg Config) OutlierOutcome {
	return handleOutliers(series, cfg, nil)
}

// RecheckFilled runs outlier handling on the records whose historical return
// only exists because the gap before them was forward-filled. Everything else
// was judged before imputation.
func RecheckFilled(series []contracts.MonthlyRecord, cfg Config) OutlierOutcome {
	candidates := make(map[int]bool)
	for i := 1; i < len(series); i++ {
		if series[i-1].IsImputed && !series[i].IsImputed && series[i].HistoricalReturn.Defined() {
			candidates[i] = true
		}
	}
	if len(candidates) == 0 {
		return OutlierOutcome{Series: series}
	}
	return handleOutliers(series, cfg, candidates)
}

// handleOutliers judges only the indexes in only (all when nil)
func handleOutliers(series []contracts.MonthlyRecord, cfg Config, only map[int]bool) OutlierOutcome {
	orig := series
	out := make([]contracts.MonthlyRecord, len(series))
	copy(out, series)

	result := OutlierOutcome{}
	for i := range out {
		if only != nil && !only[i] {
			continue
		}
		trigger, value := detect(out, orig, i, cfg)
		if trigger == "" {
			continue
		}
		if cfg.InCrisis(out[i].Date) {
			result.CrisisFlagged++
			continue
		}

		replacement, ok := replacementPrice(out, i, cfg.OutlierReplacement)
		if !ok {
			continue // 단일 레코드: 교체할 값이 없음
		}

		result.Events = append(result.Events, contracts.OutlierEvent{
			Ticker:           out[i].Ticker,
			Date:             out[i].Date,
			Field:            "price",
			OriginalValue:    out[i].Price,
			ReplacementValue: replacement,
			Trigger:          trigger,
			TriggerValue:     value,
		})

		out[i].Price = replacement
		out[i].IsOutlier = true
		relinkAt(out, i)
		breakDisplacedMove(out, orig, i, cfg)
	}

	result.Series = out
	return result
}

// breakDisplacedMove leaves the return after a repaired record undefined when
// the repair pushed a lasting jump onto the next month: that month's own
// return was inside the band before the repair.
func breakDisplacedMove(out, orig []contracts.MonthlyRecord, i int, cfg Config) {
	if i+1 >= len(out) {
		return
	}
	if !cfg.breachesValue(out[i+1].HistoricalReturn) || cfg.breachesValue(orig[i+1].HistoricalReturn) {
		return
	}
	out[i].ForwardReturn = contracts.None()
	out[i+1].HistoricalReturn = contracts.None()
}

// relinkAt recomputes the two returns touching out[i] and mirrors them onto
// the neighbours. Other links keep what earlier repairs left.
func relinkAt(out []contracts.MonthlyRecord, i int) {
	refreshAt(out, i)
	if i > 0 {
		out[i-1].ForwardReturn = out[i].HistoricalReturn
	}
	if i+1 < len(out) {
		out[i+1].HistoricalReturn = out[i].ForwardReturn
	}
}

func detect(out, orig []contracts.MonthlyRecord, i int, cfg Config) (string, float64) {
	if h, ok := out[i].HistoricalReturn.Get(); ok {
		if cfg.Breaches(h) && cfg.breachesValue(orig[i].HistoricalReturn) {
			return "historical_return", h
		}
		return "", 0
	}
	if orig[i].HistoricalReturn.Defined() {
		return "", 0 // 앞선 교체로 끊긴 수익률
	}

	f, ok := out[i].ForwardReturn.Get()
	if !ok || !cfg.Breaches(f) || !cfg.breachesValue(orig[i].ForwardReturn) {
		return "", 0
	}
	// 다음 레코드가 스파이크면 다음 차례에 historical_return으로 잡힘
	if i+1 < len(out) {
		if nf, ok := out[i+1].ForwardReturn.Get(); ok && cfg.Breaches(nf) {
			return "", 0
		}
	}
	return "forward_return", f
}

// replacementPrice picks the previous price, or the time-weighted value
// between both neighbours in interpolate mode. With no previous record the
// next price is used.
func replacementPrice(out []contracts.MonthlyRecord, i int, mode string) (float64, bool) {
	hasPrev := i > 0
	hasNext := i+1 < len(out)

	if mode == ReplaceInterpolate && hasPrev && hasNext {
		prev, next := out[i-1], out[i+1]
		span := float64(contracts.MonthIndex(next.Date) - contracts.MonthIndex(prev.Date))
		step := float64(contracts.MonthIndex(out[i].Date) - contracts.MonthIndex(prev.Date))
		return prev.Price + (next.Price-prev.Price)*step/span, true
	}
	if hasPrev {
		return out[i-1].Price, true
	}
	if hasNext {
		return out[i+1].Price, true
	}
	return 0, false
}
