package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis/momentum/internal/s0_data"
	"github.com/wonny/aegis/momentum/pkg/database"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "가격 데이터 관리",
	Long: `가격/지수 데이터를 PostgreSQL로 적재합니다.
적재 후 backtest run --source postgres 로 사용할 수 있습니다.`,
}

var dataImportCmd = &cobra.Command{
	Use:   "import",
	Short: "CSV → PostgreSQL 적재",
	Long: `CSV 파일을 읽어 무결성 검사 후 data.daily_prices / data.benchmark_prices 에 upsert 합니다.

Example:
  go run ./cmd/quant data import --prices data/prices.csv --index data/sp500.csv`,
	RunE: runDataImport,
}

var (
	importPrices string
	importIndex  string
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataImportCmd)

	dataImportCmd.Flags().StringVar(&importPrices, "prices", "", "daily prices CSV (default: PRICES_PATH)")
	dataImportCmd.Flags().StringVar(&importIndex, "index", "", "benchmark index CSV (default: INDEX_PATH)")
}

func runDataImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	if importPrices != "" {
		cfg.Data.PricesPath = importPrices
	}
	if importIndex != "" {
		cfg.Data.IndexPath = importIndex
	}

	raw, err := s0_data.NewCSVSource(cfg.Data.PricesPath, cfg.Data.IndexPath, log).Load(ctx)
	if err != nil {
		return fmt.Errorf("load csv: %w", err)
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := s0_data.NewPriceRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	n, err := repo.SaveDataset(ctx, raw)
	if err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Imported %d rows (%d tickers, fingerprint %s)",
		n, len(raw.Tickers()), s0_data.Fingerprint(raw)[:12]))
	return nil
}
