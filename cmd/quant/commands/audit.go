package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis/momentum/internal/audit"
	"github.com/wonny/aegis/momentum/internal/s0_data/quality"
	"github.com/wonny/aegis/momentum/pkg/database"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "S7 Audit - 실행 기록 조회",
	Long: `저장된 백테스트 실행 기록과 품질 스냅샷을 조회합니다.

명령어:
  runs     최근 실행 목록
  show     실행 상세 (요약 + 리스크 지표)
  quality  실행의 데이터 품질 스냅샷 (PostgreSQL)`,
}

var (
	auditStore string
	auditLimit int
	auditJSON  bool
)

var auditRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "최근 실행 목록",
	Long: `최근 실행 기록을 최신순으로 보여줍니다.

Example:
  go run ./cmd/quant audit runs --store sqlite:results/runs.db
  go run ./cmd/quant audit runs --store postgres --limit 50`,
	RunE: runAuditRuns,
}

var auditShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "실행 상세",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditShow,
}

var auditQualityCmd = &cobra.Command{
	Use:   "quality <run-id>",
	Short: "데이터 품질 스냅샷",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditQuality,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditRunsCmd, auditShowCmd, auditQualityCmd)

	auditCmd.PersistentFlags().StringVar(&auditStore, "store", "sqlite:results/runs.db", "run store: sqlite:<path>|postgres")
	auditCmd.PersistentFlags().BoolVar(&auditJSON, "json", false, "print raw JSON")
	auditRunsCmd.Flags().IntVar(&auditLimit, "limit", 20, "max runs to list")
}

func runAuditRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, _, err := loadRuntime()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, auditStore)
	if err != nil {
		return err
	}
	defer closeStore()
	if store == nil {
		return fmt.Errorf("--store is required")
	}

	runs, err := store.ListRuns(ctx, auditLimit)
	if err != nil {
		return err
	}
	if auditJSON {
		return printJSON(runs)
	}

	PrintHeader(fmt.Sprintf("Backtest Runs (%d)", len(runs)))
	widths := []int{36, 16, 8, 10, 10, 10}
	PrintTableHeader([]string{"ID", "Created", "Periods", "Strategy", "Benchmark", "Excess"}, widths)
	for _, run := range runs {
		PrintTableRow([]string{
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", run.Summary.Periods),
			pct(run.Summary.StrategyTotalReturn),
			pct(run.Summary.BenchmarkTotalReturn),
			pct(run.Summary.Outperformance),
		}, widths)
	}
	return nil
}

func runAuditShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, _, err := loadRuntime()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, auditStore)
	if err != nil {
		return err
	}
	defer closeStore()
	if store == nil {
		return fmt.Errorf("--store is required")
	}

	run, err := store.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	if auditJSON {
		return printJSON(run)
	}
	printRunRecord(run)
	return nil
}

func runAuditQuality(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, _, err := loadRuntime()
	if err != nil {
		return err
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	snapshot, err := quality.NewRepository(db.Pool).GetByRunID(ctx, args[0])
	if err != nil {
		return err
	}
	if auditJSON {
		return printJSON(snapshot)
	}

	PrintHeader("Data Quality Snapshot")
	PrintKeyValue("Run ID", snapshot.RunID)
	PrintKeyValue("Source", snapshot.Source)
	PrintKeyValue("Range", fmt.Sprintf("%s ~ %s", day(snapshot.StartDate), day(snapshot.EndDate)))
	PrintKeyValue("Score", fmt.Sprintf("%.2f", snapshot.QualityScore))
	PrintKeyValue("Passed", snapshot.Passed)
	for _, reason := range snapshot.FailReasons {
		PrintError(reason)
	}
	PrintWarningCounts(snapshot.Warnings)
	return nil
}

func printRunRecord(run *audit.RunRecord) {
	s := run.Summary

	PrintHeader("Run " + run.ID)
	PrintKeyValue("Created", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	PrintKeyValue("Strategy", run.Strategy)
	PrintKeyValue("Config hash", run.ConfigHash)
	PrintKeyValue("Input hash", run.InputHash)
	PrintKeyValue("Quality", fmt.Sprintf("%.2f (passed=%v)", run.QualityScore, run.QualityPassed))
	PrintKeyValue("Outliers replaced", run.Outliers)
	PrintSeparator()
	PrintKeyValue("Periods", s.Periods)
	PrintKeyValue("Strategy total return", pct(s.StrategyTotalReturn))
	PrintKeyValue("Strategy PnL", usd(s.StrategyPnL))
	PrintKeyValue("Benchmark total return", pct(s.BenchmarkTotalReturn))
	PrintKeyValue("Benchmark PnL", usd(s.BenchmarkPnL))
	PrintKeyValue("Outperformance", pct(s.Outperformance))

	if r := run.Report; r != nil {
		PrintSeparator()
		PrintKeyValue("Annual return", pct(r.AnnualReturn))
		PrintKeyValue("Benchmark annual", pct(r.BenchmarkAnnualReturn))
		PrintKeyValue("Volatility", pct(r.Volatility))
		PrintKeyValue("Sharpe", fmt.Sprintf("%.2f", r.Sharpe))
		PrintKeyValue("Sortino", fmt.Sprintf("%.2f", r.Sortino))
		PrintKeyValue("Max drawdown", pct(r.MaxDrawdown))
		PrintKeyValue("Information ratio", fmt.Sprintf("%.2f", r.InformationRatio))
		PrintKeyValue("Beta", fmt.Sprintf("%.2f", r.Beta))
	}
	printRisk(run.Risk)
	PrintWarningCounts(run.Warnings)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
