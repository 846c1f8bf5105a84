package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis/momentum/internal/api"
	"github.com/wonny/aegis/momentum/internal/api/handlers"
	"github.com/wonny/aegis/momentum/internal/brain"
	"github.com/wonny/aegis/momentum/internal/report"
	"github.com/wonny/aegis/momentum/internal/scheduler"
	"github.com/wonny/aegis/momentum/internal/scheduler/jobs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "실행 기록 API 서버 (+ 월간 백테스트 스케줄러)",
	Long: `저장된 실행 기록을 HTTP로 제공합니다. --cron 을 주면 백테스트를
주기적으로 다시 실행하고 결과를 results/<run_id>/ 에 씁니다.

Endpoints:
  GET  /health
  GET  /api/runs?limit=20
  GET  /api/runs/{id}
  GET  /api/jobs
  POST /api/jobs/{name}/run

Example:
  go run ./cmd/quant serve --store sqlite:results/runs.db
  go run ./cmd/quant serve --store postgres --cron "0 0 6 1 * *"`,
	RunE: runServe,
}

var (
	serveStore  string
	serveCron   string
	serveSource string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveStore, "store", "sqlite:results/runs.db", "run store: sqlite:<path>|postgres")
	serveCmd.Flags().StringVar(&serveCron, "cron", "", "backtest schedule with seconds field (empty = no scheduler)")
	serveCmd.Flags().StringVar(&serveSource, "source", "csv", "price source for scheduled runs: csv|postgres")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, serveStore)
	if err != nil {
		return err
	}
	defer closeStore()
	if store == nil {
		return fmt.Errorf("--store is required")
	}

	var jobHandler *handlers.JobHandler
	if serveCron != "" {
		strategy, err := loadStrategy(cfg.Data.StrategyConfig, log)
		if err != nil {
			return err
		}
		source, closeSource, err := openSource(ctx, cfg, serveSource, cfg.Data.PricesPath, cfg.Data.IndexPath, log)
		if err != nil {
			return err
		}
		defer closeSource()

		orch, err := brain.New(strategy, source, log)
		if err != nil {
			return fmt.Errorf("create orchestrator: %w", err)
		}
		orch.WithRunStore(store)
		closeOptional, err := wireOptional(ctx, cfg, orch, log)
		if err != nil {
			return err
		}
		defer closeOptional()

		sched := scheduler.New(log.WithStage("scheduler"))
		job := jobs.NewBacktestJob(orch, serveCron, cfg.Data.ResultsDir, report.Options{Plots: true, Parquet: true}, false, log)
		if err := sched.AddJob(job); err != nil {
			return err
		}
		sched.Start(ctx)
		defer sched.Stop()
		jobHandler = handlers.NewJobHandler(sched, log)
	}

	router := api.NewRouter(handlers.NewRunHandler(store, log), jobHandler, cfg.RateLimit, log)
	return api.New(cfg, log, router, serveStore, jobHandler != nil).Run(ctx)
}
