package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis/momentum/internal/brain"
	"github.com/wonny/aegis/momentum/internal/report"
	"github.com/wonny/aegis/momentum/internal/risk"
	"github.com/wonny/aegis/momentum/internal/s0_data/quality"
	"github.com/wonny/aegis/momentum/pkg/config"
	"github.com/wonny/aegis/momentum/pkg/database"
	"github.com/wonny/aegis/momentum/pkg/logger"
	"github.com/wonny/aegis/momentum/pkg/redis"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "모멘텀 전략 백테스트",
	Long: `월말 패널에서 12개월 평균 수익률 상위 종목을 동일가중으로 보유하고
S&P 500 지수 대비 누적 성과를 계산합니다.

결과물:
- results.txt (총수익률, PnL, 초과수익, 리스크 지표)
- outliers.txt (대체된 이상치 목록)
- monthly_panel.parquet
- plots/*.png

Example:
  go run ./cmd/quant backtest run --prices data/prices.csv --index data/sp500.csv
  go run ./cmd/quant backtest run --store sqlite:results/runs.db`,
}

var (
	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "백테스트 실행",
		Long: `가격 데이터를 읽어 S0 → S7 파이프라인을 실행합니다.

Flags:
  --prices          일별 종가 CSV (date,ticker,price)
  --index           벤치마크 CSV (date,adj_close)
  --config          전략 YAML (기본: 내장 기본값)
  --results         결과 디렉토리 (기본: RESULTS_DIR)
  --source          csv | postgres
  --store           none | sqlite:<path> | postgres
  --strict-quality  품질 게이트 실패 시 중단
  --no-plots        PNG 차트 생략
  --no-parquet      Parquet 패널 생략

Example:
  go run ./cmd/quant backtest run
  go run ./cmd/quant backtest run --config config/strategy/momentum_top20.yaml --store postgres`,
		RunE: runBacktest,
	}

	// Flags
	backtestPrices        string
	backtestIndex         string
	backtestStrategy      string
	backtestResults       string
	backtestSource        string
	backtestStore         string
	backtestStrictQuality bool
	backtestNoPlots       bool
	backtestNoParquet     bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	backtestRunCmd.Flags().StringVar(&backtestPrices, "prices", "", "daily prices CSV (default: PRICES_PATH)")
	backtestRunCmd.Flags().StringVar(&backtestIndex, "index", "", "benchmark index CSV (default: INDEX_PATH)")
	backtestRunCmd.Flags().StringVar(&backtestStrategy, "config", "", "strategy YAML (default: STRATEGY_CONFIG or built-in)")
	backtestRunCmd.Flags().StringVar(&backtestResults, "results", "", "results directory (default: RESULTS_DIR)")
	backtestRunCmd.Flags().StringVar(&backtestSource, "source", "csv", "price source: csv|postgres")
	backtestRunCmd.Flags().StringVar(&backtestStore, "store", "none", "run store: none|sqlite:<path>|postgres")
	backtestRunCmd.Flags().BoolVar(&backtestStrictQuality, "strict-quality", false, "abort when the quality gate fails")
	backtestRunCmd.Flags().BoolVar(&backtestNoPlots, "no-plots", false, "skip PNG charts")
	backtestRunCmd.Flags().BoolVar(&backtestNoParquet, "no-parquet", false, "skip the parquet panel")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	applyDataFlags(cfg)
	if backtestResults != "" {
		cfg.Data.ResultsDir = backtestResults
	}

	strategy, err := loadStrategy(cfg.Data.StrategyConfig, log)
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(ctx, cfg, backtestSource, cfg.Data.PricesPath, cfg.Data.IndexPath, log)
	if err != nil {
		return err
	}
	defer closeSource()

	orch, err := brain.New(strategy, source, log)
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}

	closeOptional, err := wireOptional(ctx, cfg, orch, log)
	if err != nil {
		return err
	}
	defer closeOptional()

	store, closeStore, err := openStore(ctx, cfg, backtestStore)
	if err != nil {
		return err
	}
	defer closeStore()
	if store != nil {
		orch.WithRunStore(store)
	}

	PrintHeader("Momentum Backtest")
	PrintKeyValue("Strategy", fmt.Sprintf("%s v%s", strategy.Meta.StrategyID, strategy.Meta.Version))
	PrintKeyValue("Config hash", orch.ConfigHash()[:12])
	PrintKeyValue("Source", backtestSource)
	PrintKeyValue("Top K", strategy.Selection.TopK)
	PrintSeparator()

	result, err := orch.Run(ctx, brain.RunConfig{StrictQuality: backtestStrictQuality})
	if err != nil {
		if errors.Is(err, brain.ErrQualityGate) && result != nil && result.QualitySnapshot != nil {
			for _, reason := range result.QualitySnapshot.FailReasons {
				PrintError(reason)
			}
		}
		return fmt.Errorf("backtest failed: %w", err)
	}

	writer := report.NewWriter(cfg.Data.ResultsDir, report.Options{
		Plots:   !backtestNoPlots,
		Parquet: !backtestNoParquet,
	}, log)
	written, err := writer.WriteAll(orch.Artifacts(result))
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	printRunSummary(result)
	PrintSeparator()
	for _, path := range written {
		PrintSuccess("Wrote " + path)
	}
	return nil
}

// applyDataFlags overrides env data paths with CLI flags
func applyDataFlags(cfg *config.Config) {
	if backtestPrices != "" {
		cfg.Data.PricesPath = backtestPrices
	}
	if backtestIndex != "" {
		cfg.Data.IndexPath = backtestIndex
	}
	if backtestStrategy != "" {
		cfg.Data.StrategyConfig = backtestStrategy
	}
}

// wireOptional attaches the Redis panel cache and the Postgres quality
// repository when they are configured
func wireOptional(ctx context.Context, cfg *config.Config, orch *brain.Orchestrator, log *logger.Logger) (func(), error) {
	closers := make([]func(), 0, 2)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Redis.Enabled {
		client, err := redis.New(ctx, cfg)
		if err != nil {
			// 캐시는 선택 사항
			log.WithError(err).Warn("Redis unavailable, running without panel cache")
		} else {
			closers = append(closers, func() { client.Close() })
			orch.WithCache(redis.NewCache(client, "momentum"))
		}
	}

	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		closers = append(closers, db.Close)
		repo := quality.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, err
		}
		orch.WithQualityRepository(repo)
	}

	return closeAll, nil
}

func printRisk(rk *risk.Report) {
	if rk == nil {
		return
	}
	PrintSeparator()
	PrintKeyValue(fmt.Sprintf("VaR %.0f%% (monthly)", rk.Config.Confidence*100), pct(-rk.Historical.VaR))
	PrintKeyValue("CVaR (monthly)", pct(-rk.Historical.CVaR))
	if mc := rk.MonteCarlo; mc != nil {
		PrintKeyValue(fmt.Sprintf("MC %dm median", mc.HorizonMonths), pct(mc.Percentiles[50]))
		PrintKeyValue(fmt.Sprintf("MC %dm 5th pct", mc.HorizonMonths), pct(mc.Percentiles[5]))
		PrintKeyValue("MC P(outperform)", fmt.Sprintf("%.1f%%", mc.ProbOutperform*100))
	}
}

func printRunSummary(result *brain.RunResult) {
	s := result.Summary

	PrintHeader("BACKTESTING RESULTS")
	PrintKeyValue("Run ID", result.RunID)
	PrintKeyValue("Periods", s.Periods)
	if s.Periods > 0 {
		PrintKeyValue("Period", fmt.Sprintf("%s ~ %s", day(s.StartDate), day(s.EndDate)))
	}
	PrintKeyValue("Strategy total return", pct(s.StrategyTotalReturn))
	PrintKeyValue("Strategy PnL", usd(s.StrategyPnL))
	PrintKeyValue("Benchmark total return", pct(s.BenchmarkTotalReturn))
	PrintKeyValue("Benchmark PnL", usd(s.BenchmarkPnL))
	PrintKeyValue("Outperformance", pct(s.Outperformance))

	if r := result.Report; r != nil {
		PrintSeparator()
		PrintKeyValue("Annual return", pct(r.AnnualReturn))
		PrintKeyValue("Volatility", pct(r.Volatility))
		PrintKeyValue("Sharpe", fmt.Sprintf("%.2f", r.Sharpe))
		PrintKeyValue("Max drawdown", pct(r.MaxDrawdown))
		PrintKeyValue("Hit rate", pct(r.HitRate))
	}

	printRisk(result.Risk)

	if q := result.QualitySnapshot; q != nil {
		PrintSeparator()
		PrintKeyValue("Quality score", fmt.Sprintf("%.2f (passed=%v)", q.QualityScore, q.Passed))
	}
	if result.CacheHit {
		PrintInfo("Preprocessed panel served from cache")
	}

	PrintWarningCounts(result.Warnings.ByCode())
	if s.IsOutperforming() {
		PrintSuccess("Strategy outperformed the benchmark")
	} else if s.Periods > 0 {
		PrintWarning("Strategy did not outperform the benchmark")
	}
}
