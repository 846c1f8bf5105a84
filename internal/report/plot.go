package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// PricePoint is the cross-sectional average price at one month-end
type PricePoint struct {
	Date     time.Time
	AvgPrice float64
	Count    int
}

// AveragePriceSeries averages the panel price per month-end
func AveragePriceSeries(panel *contracts.MonthlyPanel) []PricePoint {
	if panel.IsEmpty() {
		return nil
	}

	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, rec := range panel.Records() {
		sums[rec.Date] += rec.Price
		counts[rec.Date]++
	}

	out := make([]PricePoint, 0, len(sums))
	for date, sum := range sums {
		out = append(out, PricePoint{Date: date, AvgPrice: sum / float64(counts[date]), Count: counts[date]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// PlotPerformance draws cumulative strategy and benchmark PnL
func PlotPerformance(series *contracts.PerformanceSeries, path string) error {
	if series == nil || series.Len() == 0 {
		return fmt.Errorf("no performance points to plot")
	}

	strat := make(plotter.XYs, series.Len())
	bench := make(plotter.XYs, series.Len())
	for i, p := range series.Points {
		x := float64(p.Date.Unix())
		strat[i] = plotter.XY{X: x, Y: p.StrategyPnL}
		bench[i] = plotter.XY{X: x, Y: p.BenchmarkPnL}
	}

	p := plot.New()
	p.Title.Text = "Strategy vs Benchmark Cumulative PnL"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = fmt.Sprintf("PnL ($, notional $%.0f)", series.Notional)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	for i, s := range []struct {
		name string
		xys  plotter.XYs
	}{
		{"Strategy (Top-K momentum)", strat},
		{"Benchmark", bench},
	} {
		line, err := plotter.NewLine(s.xys)
		if err != nil {
			return fmt.Errorf("line %s: %w", s.name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return save(p, path)
}

// PlotAveragePrice draws the average panel price over time
func PlotAveragePrice(points []PricePoint, path string) error {
	if len(points) == 0 {
		return fmt.Errorf("no price points to plot")
	}

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: float64(pt.Date.Unix()), Y: pt.AvgPrice}
	}

	p := plot.New()
	p.Title.Text = "Average Stock Price Over Time"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Average Price ($)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("average price line: %w", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line)

	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
