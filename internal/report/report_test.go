package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis/momentum/internal/audit"
	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/internal/risk"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

func me(m time.Month) time.Time {
	return contracts.MonthEnd(time.Date(2021, m, 1, 0, 0, 0, 0, time.UTC))
}

func samplePanel() *contracts.MonthlyPanel {
	return contracts.NewMonthlyPanel(map[string][]contracts.MonthlyRecord{
		"A": {
			{Date: me(1), Ticker: "A", Price: 10, ForwardReturn: contracts.Some(0.1)},
			{Date: me(2), Ticker: "A", Price: 11, HistoricalReturn: contracts.Some(0.1), IsImputed: true},
		},
		"B": {
			{Date: me(1), Ticker: "B", Price: 30, IsOutlier: true},
		},
	})
}

func sampleSeries() *contracts.PerformanceSeries {
	return &contracts.PerformanceSeries{
		Notional: 20,
		Points: []contracts.PerformancePoint{
			{Date: me(1), StrategyCumReturn: 1.1, BenchmarkCumReturn: 1.05, StrategyPnL: 2, BenchmarkPnL: 1},
			{Date: me(2), StrategyCumReturn: 1.2, BenchmarkCumReturn: 1.02, StrategyPnL: 4, BenchmarkPnL: 0.4},
		},
	}
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResults(&buf, Results{
		RunID: "run-1",
		TopK:  20,
		Summary: &contracts.Summary{
			StrategyTotalReturn:  0.2,
			BenchmarkTotalReturn: 0.02,
			Outperformance:       0.18,
			StrategyPnL:          4,
			BenchmarkPnL:         0.4,
			Notional:             20,
			Periods:              2,
			StartDate:            me(1),
			EndDate:              me(2),
		},
		Report:      &contracts.PerformanceReport{Sharpe: 1.5},
		Attribution: []audit.Attribution{{Ticker: "A", Contribution: 0.1, Months: 2}},
		TopN:        5,
		Risk: &risk.Report{
			Config:     risk.DefaultConfig(),
			Historical: risk.VaRResult{Confidence: 0.95, VaR: 0.031, CVaR: 0.045},
			MonteCarlo: &risk.MonteCarloResult{Paths: 100, HorizonMonths: 12, ProbLoss: 0.25, Percentiles: map[int]float64{5: -0.1, 50: 0.08}},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	for _, want := range []string{
		"run_id: run-1",
		"strategy_total_return: 0.2000 (20.00%)",
		"benchmark_total_return: 0.0200 (2.00%)",
		"outperformance: 0.1800 (18.00%)",
		"strategy_pnl: $4.00",
		"benchmark_pnl: $0.40",
		"start_date: 2021-01-31",
		"sharpe: 1.5000",
		"contributor_1: A 0.1000 (2 months)",
		"var_95_monthly: 0.0310",
		"cvar_95_monthly: 0.0450",
		"mc_paths: 100 x 12 months",
		"mc_median_return: 0.0800",
		"mc_prob_loss: 0.2500",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteResults_NoReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, Results{TopK: 20}))
	assert.Contains(t, buf.String(), "periods: 0")
	assert.NotContains(t, buf.String(), "sharpe:")
	assert.NotContains(t, buf.String(), "start_date:")
	assert.NotContains(t, buf.String(), "var_95_monthly:")
}

func TestWriteOutliers(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOutliers(&buf, []contracts.OutlierEvent{
		{Ticker: "X", Date: me(3), Field: "price", OriginalValue: 60, ReplacementValue: 10},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ticker,date,field,original_value,replacement_value", lines[0])
	assert.Equal(t, "X,2021-03-31,price,60,10", lines[1])
}

func TestAveragePriceSeries(t *testing.T) {
	points := AveragePriceSeries(samplePanel())
	require.Len(t, points, 2)
	assert.Equal(t, me(1), points[0].Date)
	assert.InDelta(t, 20.0, points[0].AvgPrice, 1e-12)
	assert.Equal(t, 2, points[0].Count)
	assert.InDelta(t, 11.0, points[1].AvgPrice, 1e-12)

	assert.Nil(t, AveragePriceSeries(contracts.NewMonthlyPanel(nil)))
}

func TestPanelParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.parquet")
	require.NoError(t, WritePanelParquet(path, samplePanel()))

	rows, err := ReadPanelParquet(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "A", rows[0].Ticker)
	assert.Equal(t, me(1).UnixMilli(), rows[0].Date)
	assert.Nil(t, rows[0].HistoricalReturn)
	require.NotNil(t, rows[0].ForwardReturn)
	assert.InDelta(t, 0.1, *rows[0].ForwardReturn, 1e-12)
	assert.True(t, rows[1].IsImputed)
	assert.Equal(t, "B", rows[2].Ticker)
	assert.True(t, rows[2].IsOutlier)
}

func TestWriter_WriteAll(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, Options{Plots: true, Parquet: true}, logger.Nop())

	written, err := w.WriteAll(Artifacts{
		Results: Results{TopK: 20, Summary: &contracts.Summary{Periods: 2}},
		Panel:   samplePanel(),
		Series:  sampleSeries(),
	})
	require.NoError(t, err)

	for _, name := range []string{ResultsFile, OutliersFile, PanelFile, PerformancePlotFile, AveragePricePlotFile} {
		path := w.Path(name)
		assert.Contains(t, written, path)
		info, err := os.Stat(path)
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestWriter_WriteAll_Minimal(t *testing.T) {
	dir := t.TempDir()
	written, err := NewWriter(dir, Options{}, logger.Nop()).WriteAll(Artifacts{})
	require.NoError(t, err)
	assert.Len(t, written, 2)
}
