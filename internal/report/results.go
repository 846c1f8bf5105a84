package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/wonny/aegis/momentum/internal/audit"
	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/internal/risk"
)

// Results is everything rendered into results.txt
type Results struct {
	RunID       string
	TopK        int
	Summary     *contracts.Summary
	Report      *contracts.PerformanceReport // nil이면 지표 섹션 생략
	Attribution []audit.Attribution
	TopN        int          // 기여도 상위 N 종목
	Risk        *risk.Report // nil이면 생략
}

// WriteResults renders labeled key-value lines
func WriteResults(w io.Writer, r Results) error {
	bw := bufio.NewWriter(w)
	s := r.Summary
	if s == nil {
		s = &contracts.Summary{}
	}

	fmt.Fprintln(bw, "BACKTESTING RESULTS")
	fmt.Fprintln(bw, "==================")
	if r.RunID != "" {
		fmt.Fprintf(bw, "run_id: %s\n", r.RunID)
	}
	fmt.Fprintf(bw, "top_k: %d\n", r.TopK)
	fmt.Fprintf(bw, "periods: %d\n", s.Periods)
	if s.Periods > 0 {
		fmt.Fprintf(bw, "start_date: %s\n", s.StartDate.Format("2006-01-02"))
		fmt.Fprintf(bw, "end_date: %s\n", s.EndDate.Format("2006-01-02"))
	}
	fmt.Fprintf(bw, "notional: $%.2f\n", s.Notional)
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "strategy_total_return: %.4f (%.2f%%)\n", s.StrategyTotalReturn, s.StrategyTotalReturn*100)
	fmt.Fprintf(bw, "strategy_pnl: $%.2f\n", s.StrategyPnL)
	fmt.Fprintf(bw, "benchmark_total_return: %.4f (%.2f%%)\n", s.BenchmarkTotalReturn, s.BenchmarkTotalReturn*100)
	fmt.Fprintf(bw, "benchmark_pnl: $%.2f\n", s.BenchmarkPnL)
	fmt.Fprintf(bw, "outperformance: %.4f (%.2f%%)\n", s.Outperformance, s.Outperformance*100)

	if rep := r.Report; rep != nil {
		fmt.Fprintln(bw)
		fmt.Fprintf(bw, "annual_return: %.4f\n", rep.AnnualReturn)
		fmt.Fprintf(bw, "benchmark_annual_return: %.4f\n", rep.BenchmarkAnnualReturn)
		fmt.Fprintf(bw, "volatility: %.4f\n", rep.Volatility)
		fmt.Fprintf(bw, "sharpe: %.4f\n", rep.Sharpe)
		fmt.Fprintf(bw, "sortino: %.4f\n", rep.Sortino)
		fmt.Fprintf(bw, "max_drawdown: %.4f\n", rep.MaxDrawdown)
		fmt.Fprintf(bw, "benchmark_max_drawdown: %.4f\n", rep.BenchmarkDrawdown)
		fmt.Fprintf(bw, "hit_rate: %.4f\n", rep.HitRate)
		fmt.Fprintf(bw, "tracking_error: %.4f\n", rep.TrackingError)
		fmt.Fprintf(bw, "information_ratio: %.4f\n", rep.InformationRatio)
		fmt.Fprintf(bw, "beta: %.4f\n", rep.Beta)
		fmt.Fprintf(bw, "best_month: %.4f\n", rep.BestMonth)
		fmt.Fprintf(bw, "worst_month: %.4f\n", rep.WorstMonth)
	}

	if rk := r.Risk; rk != nil {
		pct := int(rk.Config.Confidence*100 + 0.5)
		fmt.Fprintln(bw)
		fmt.Fprintf(bw, "var_%d_monthly: %.4f\n", pct, rk.Historical.VaR)
		fmt.Fprintf(bw, "cvar_%d_monthly: %.4f\n", pct, rk.Historical.CVaR)
		fmt.Fprintf(bw, "parametric_var_%d_monthly: %.4f\n", pct, rk.Parametric.VaR)
		if mc := rk.MonteCarlo; mc != nil {
			fmt.Fprintf(bw, "mc_paths: %d x %d months\n", mc.Paths, mc.HorizonMonths)
			fmt.Fprintf(bw, "mc_median_return: %.4f\n", mc.Percentiles[50])
			fmt.Fprintf(bw, "mc_p5_return: %.4f\n", mc.Percentiles[5])
			fmt.Fprintf(bw, "mc_prob_loss: %.4f\n", mc.ProbLoss)
			fmt.Fprintf(bw, "mc_prob_outperform: %.4f\n", mc.ProbOutperform)
		}
	}

	if len(r.Attribution) > 0 && r.TopN > 0 {
		fmt.Fprintln(bw)
		for i, a := range r.Attribution {
			if i >= r.TopN {
				break
			}
			fmt.Fprintf(bw, "contributor_%d: %s %.4f (%d months)\n", i+1, a.Ticker, a.Contribution, a.Months)
		}
	}

	return bw.Flush()
}

// WriteOutliers renders one line per replaced value
func WriteOutliers(w io.Writer, events []contracts.OutlierEvent) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ticker,date,field,original_value,replacement_value")
	for _, e := range events {
		fmt.Fprintln(bw, e.String())
	}
	return bw.Flush()
}
