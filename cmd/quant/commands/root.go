package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis/momentum/internal/audit"
	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/internal/s0_data"
	"github.com/wonny/aegis/momentum/internal/strategyconfig"
	"github.com/wonny/aegis/momentum/pkg/config"
	"github.com/wonny/aegis/momentum/pkg/database"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Monthly momentum backtester",
	Long: `Monthly Momentum Backtester CLI

일별 종가 → 월말 패널 → 12개월 평균 수익률 상위 종목 → S&P 500 대비 성과.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant backtest run --prices data/prices.csv --index data/sp500.csv
  go run ./cmd/quant data-check
  go run ./cmd/quant config validate --config config/strategy/momentum_top20.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadRuntime loads env config and builds the logger
func loadRuntime() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// loadStrategy reads the strategy YAML, or the built-in defaults when path is empty
func loadStrategy(path string, log *logger.Logger) (*strategyconfig.Config, error) {
	if path == "" {
		return strategyconfig.Default(), nil
	}
	strategy, _, err := strategyconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy %s: %w", path, err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}
	return strategy, nil
}

// openSource picks the CSV files or the database as price source
func openSource(ctx context.Context, cfg *config.Config, source, prices, index string, log *logger.Logger) (contracts.PriceSource, func(), error) {
	switch source {
	case "", "csv":
		return s0_data.NewCSVSource(prices, index, log), func() {}, nil
	case "postgres":
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		return s0_data.NewPriceRepository(db.Pool), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q (csv|postgres)", source)
	}
}

// openStore parses --store: none | sqlite:<path> | postgres
func openStore(ctx context.Context, cfg *config.Config, target string) (audit.RunStore, func(), error) {
	switch {
	case target == "" || target == "none":
		return nil, func() {}, nil
	case strings.HasPrefix(target, "sqlite:"):
		store, err := audit.NewSQLiteStore(ctx, strings.TrimPrefix(target, "sqlite:"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case target == "postgres":
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		store := audit.NewPostgresStore(db.Pool)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (none|sqlite:<path>|postgres)", target)
	}
}
