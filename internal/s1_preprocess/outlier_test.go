package s1_preprocess

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

func TestHandleOutliers_SpikeOutsideCrisis(t *testing.T) {
	series := monthlyFrom("Y", 2015, time.January, 10, 10, 10, 60, 10, 10)

	got := HandleOutliers(series, DefaultConfig())

	require.Len(t, got.Events, 1, "a single spike yields a single event")
	ev := got.Events[0]
	assert.Equal(t, "Y", ev.Ticker)
	assert.Equal(t, me(2015, time.April), ev.Date)
	assert.Equal(t, "price", ev.Field)
	assert.Equal(t, 60.0, ev.OriginalValue)
	assert.Equal(t, 10.0, ev.ReplacementValue)
	assert.Equal(t, "historical_return", ev.Trigger)
	assert.InDelta(t, 5.0, ev.TriggerValue, 1e-12)

	assert.True(t, got.Series[3].IsOutlier)
	assert.Equal(t, []float64{10, 10, 10, 10, 10, 10}, prices(got.Series))
	h, ok := got.Series[4].HistoricalReturn.Get()
	require.True(t, ok)
	assert.Equal(t, 0.0, h, "neighbour returns refreshed")

	assert.Equal(t, 60.0, series[3].Price, "input untouched")
}

func TestHandleOutliers_SpikeInsideCrisis(t *testing.T) {
	series := monthlyFrom("Y", 2008, time.March, 10, 10, 10, 60, 10, 10)

	got := HandleOutliers(series, DefaultConfig())

	assert.Empty(t, got.Events)
	assert.Equal(t, 2, got.CrisisFlagged)
	assert.Equal(t, 60.0, got.Series[3].Price)
	assert.False(t, got.Series[3].IsOutlier)
}

func TestHandleOutliers_CrisisBoundaryIsMonthInclusive(t *testing.T) {
	cfg := DefaultConfig()

	// 2007-12 스파이크는 교체, 2008-01 스파이크는 유지 (월 단위 포함 경계)
	series := monthlyFrom("Z", 2007, time.October, 10, 10, 40, 10, 40, 10)
	got := HandleOutliers(series, cfg)

	require.Len(t, got.Events, 1)
	assert.Equal(t, me(2007, time.December), got.Events[0].Date)
	assert.Equal(t, 40.0, got.Series[4].Price, "2008-02 is inside the crisis window")

	// 2008-01 가격과 플래그는 그대로, 수익률은 교체된 2007-12 가격을 따름
	jan := got.Series[3]
	assert.Equal(t, 10.0, jan.Price)
	assert.False(t, jan.IsOutlier)
	h, ok := jan.HistoricalReturn.Get()
	require.True(t, ok)
	assert.Equal(t, 0.0, h)
}

func TestHandleOutliers_Drop(t *testing.T) {
	series := monthlyFrom("D", 2016, time.January, 10, 10, 2, 10)

	got := HandleOutliers(series, DefaultConfig())

	require.Len(t, got.Events, 1)
	assert.InDelta(t, -0.8, got.Events[0].TriggerValue, 1e-12)
	assert.Equal(t, []float64{10, 10, 10, 10}, prices(got.Series))
}

func TestHandleOutliers_Interpolate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutlierReplacement = ReplaceInterpolate

	series := monthlyFrom("I", 2016, time.January, 10, 10, 60, 20)
	got := HandleOutliers(series, cfg)

	require.Len(t, got.Events, 1)
	assert.Equal(t, 15.0, got.Events[0].ReplacementValue)
	assert.Equal(t, 15.0, got.Series[2].Price)
}

func TestHandleOutliers_SeriesStart(t *testing.T) {
	tests := []struct {
		name       string
		prices     []float64
		wantIdx    int
		wantTrig   string
		wantPrices []float64
	}{
		{
			name:       "bad first record",
			prices:     []float64{60, 10, 10, 10},
			wantIdx:    0,
			wantTrig:   "forward_return",
			wantPrices: []float64{10, 10, 10, 10},
		},
		{
			name:       "spike on second record",
			prices:     []float64{10, 60, 10, 10},
			wantIdx:    1,
			wantTrig:   "historical_return",
			wantPrices: []float64{10, 10, 10, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := monthlyFrom("S", 2016, time.January, tt.prices...)
			got := HandleOutliers(series, DefaultConfig())

			require.Len(t, got.Events, 1)
			assert.Equal(t, series[tt.wantIdx].Date, got.Events[0].Date)
			assert.Equal(t, tt.wantTrig, got.Events[0].Trigger)
			assert.Equal(t, tt.wantPrices, prices(got.Series))
		})
	}
}

func TestHandleOutliers_SingleRecord(t *testing.T) {
	got := HandleOutliers(monthlyFrom("S", 2016, time.January, 10), DefaultConfig())
	assert.Empty(t, got.Events)
	assert.Len(t, got.Series, 1)
}

func TestHandleOutliers_NeverTouchesCrisisRecords(t *testing.T) {
	cfg := DefaultConfig()
	// 2007-06 ~ 2010-05, 위기 구간 안팎에 극단값 배치
	pattern := []float64{10, 25, 10, 4, 10, 10, 30, 10, 10, 3, 10, 12}
	var ps []float64
	for i := 0; i < 3; i++ {
		ps = append(ps, pattern...)
	}
	series := monthlyFrom("C", 2007, time.June, ps...)

	got := HandleOutliers(series, cfg)
	require.Len(t, got.Series, len(series))

	replacedOutside := 0
	for i, rec := range got.Series {
		if cfg.InCrisis(rec.Date) {
			assert.Equal(t, series[i].Price, rec.Price, "crisis price changed at %s", rec.Date)
			assert.False(t, rec.IsOutlier, "crisis record flagged at %s", rec.Date)
		} else if rec.IsOutlier {
			replacedOutside++
		}
	}
	assert.Greater(t, replacedOutside, 0)
	for _, ev := range got.Events {
		assert.False(t, cfg.InCrisis(ev.Date))
	}

	// 위기 구간 수익률도 최종 가격과 일치해야 함
	for i := 1; i < len(got.Series); i++ {
		h, ok := got.Series[i].HistoricalReturn.Get()
		f, fok := got.Series[i-1].ForwardReturn.Get()
		require.Equal(t, ok, fok, "return link at %s", got.Series[i].Date)
		if !ok {
			continue
		}
		assert.InDelta(t, h, f, 1e-12)
		assert.InDelta(t, got.Series[i].Price, (1+h)*got.Series[i-1].Price, 1e-9)
	}
}

func TestHandleOutliers_LevelShiftYieldsOneEvent(t *testing.T) {
	series := monthlyFrom("L", 2012, time.January, 10, 10, 10, 60, 60, 60, 60, 60)

	got := HandleOutliers(series, DefaultConfig())

	require.Len(t, got.Events, 1)
	assert.Equal(t, me(2012, time.April), got.Events[0].Date)
	assert.Equal(t, []float64{10, 10, 10, 10, 60, 60, 60, 60}, prices(got.Series))
	for i, rec := range got.Series {
		assert.Equal(t, i == 3, rec.IsOutlier, "month %s", rec.Date)
	}

	// 밀려난 +500% 는 만들어내지 않고 미정의로 남김
	assert.False(t, got.Series[3].ForwardReturn.Defined())
	assert.False(t, got.Series[4].HistoricalReturn.Defined())
	h, ok := got.Series[5].HistoricalReturn.Get()
	require.True(t, ok)
	assert.Equal(t, 0.0, h)
}

func TestRecheckFilled(t *testing.T) {
	before := monthlyFrom("F", 2015, time.January, 10, 10, 10, 10)
	after := monthlyFrom("F", 2015, time.August, 100, 100, 100)
	filled, imputed := ForwardFill(append(before, after...), nil)
	require.Equal(t, 3, imputed)
	filled = relinkImputed(filled)

	h, ok := filled[7].HistoricalReturn.Get()
	require.True(t, ok, "return across the filled gap")
	require.InDelta(t, 9.0, h, 1e-12)

	got := RecheckFilled(filled, DefaultConfig())

	require.Len(t, got.Events, 1)
	ev := got.Events[0]
	assert.Equal(t, me(2015, time.August), ev.Date)
	assert.Equal(t, 100.0, ev.OriginalValue)
	assert.Equal(t, 10.0, ev.ReplacementValue)
	assert.Equal(t, "historical_return", ev.Trigger)
	assert.True(t, got.Series[7].IsOutlier)
	assert.False(t, got.Series[8].HistoricalReturn.Defined())

	for i := 1; i < 7; i++ {
		assert.False(t, got.Series[i].IsOutlier, "only the record after the gap is judged")
	}
}

func TestRecheckFilled_NoGap(t *testing.T) {
	series := monthlyFrom("N", 2015, time.January, 10, 60, 10)

	got := RecheckFilled(series, DefaultConfig())

	assert.Empty(t, got.Events, "records without a filled gap were judged before imputation")
	assert.Equal(t, series, got.Series)
}

func TestHandleOutliers_ThresholdsAreConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutlierMaxReturn = 0.1

	got := HandleOutliers(monthlyFrom("T", 2016, time.January, 10, 10, 12, 10), cfg)
	require.Len(t, got.Events, 1)
	assert.Equal(t, contracts.MonthEnd(time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)), got.Events[0].Date)
}
