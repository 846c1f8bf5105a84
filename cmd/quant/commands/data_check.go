package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/internal/s0_data"
	"github.com/wonny/aegis/momentum/internal/s0_data/quality"
	"github.com/wonny/aegis/momentum/internal/s1_preprocess"
)

// dataCheckCmd represents the data check command
var dataCheckCmd = &cobra.Command{
	Use:   "data-check",
	Short: "입력 데이터 상태 확인",
	Long: `가격/지수 데이터를 읽어 S1 전처리와 품질 게이트만 실행합니다.
백테스트 전에 데이터 상태를 확인할 때 사용합니다.

확인 항목:
- 행 수, 빈 가격 수
- 월말 패널 크기, 필터/이상치/대체 건수
- 12개월 평균 계산 가능 종목 수
- 커버리지와 품질 점수
- IQR 기준 원시 가격 이상치

Example:
  go run ./cmd/quant data-check
  go run ./cmd/quant data-check --prices data/prices.csv --index data/sp500.csv`,
	RunE: runDataCheck,
}

var (
	checkPrices   string
	checkIndex    string
	checkStrategy string
	checkSource   string
)

func init() {
	rootCmd.AddCommand(dataCheckCmd)

	dataCheckCmd.Flags().StringVar(&checkPrices, "prices", "", "daily prices CSV (default: PRICES_PATH)")
	dataCheckCmd.Flags().StringVar(&checkIndex, "index", "", "benchmark index CSV (default: INDEX_PATH)")
	dataCheckCmd.Flags().StringVar(&checkStrategy, "config", "", "strategy YAML (default: STRATEGY_CONFIG or built-in)")
	dataCheckCmd.Flags().StringVar(&checkSource, "source", "csv", "price source: csv|postgres")
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	if checkPrices != "" {
		cfg.Data.PricesPath = checkPrices
	}
	if checkIndex != "" {
		cfg.Data.IndexPath = checkIndex
	}
	if checkStrategy != "" {
		cfg.Data.StrategyConfig = checkStrategy
	}

	strategy, err := loadStrategy(cfg.Data.StrategyConfig, log)
	if err != nil {
		return err
	}
	preCfg, err := strategy.PreprocessConfig()
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(ctx, cfg, checkSource, cfg.Data.PricesPath, cfg.Data.IndexPath, log)
	if err != nil {
		return err
	}
	defer closeSource()

	raw, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}

	PrintHeader("Data Check")
	PrintKeyValue("Source", raw.Source)
	PrintKeyValue("Fingerprint", s0_data.Fingerprint(raw)[:16])
	if csv, ok := source.(*s0_data.CSVSource); ok {
		stats := csv.Stats()
		PrintKeyValue("Price rows", fmt.Sprintf("%d (empty: %d)", stats.PriceRows, stats.PriceMissing))
		PrintKeyValue("Benchmark rows", fmt.Sprintf("%d (empty: %d)", stats.BenchmarkRows, stats.BenchmarkMissing))
	}

	pre, err := s1_preprocess.New(preCfg, log.WithStage("s1")).Process(ctx, raw)
	if err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}

	fmt.Println()
	fmt.Println("📋 월말 패널 (S1)")
	PrintSeparator()
	st := pre.Stats
	PrintKeyValue("Tickers", st.Tickers)
	PrintKeyValue("Resampled records", st.ResampledRecords)
	PrintKeyValue("Filtered (price range)", st.FilteredRecords)
	PrintKeyValue("Outliers replaced", st.OutliersReplaced)
	PrintKeyValue("Crisis flagged", st.CrisisFlagged)
	PrintKeyValue("Imputed", st.ImputedRecords)
	PrintKeyValue("Final records", st.FinalRecords)
	PrintKeyValue("Missing historical", st.MissingHistorical)
	PrintKeyValue("Missing forward", st.MissingForward)
	PrintKeyValue("Benchmark months", st.BenchmarkMonths)
	if dates := pre.Panel.Dates(); len(dates) > 0 {
		PrintKeyValue("Months", fmt.Sprintf("%s ~ %s (%d)", day(dates[0]), day(dates[len(dates)-1]), len(dates)))
	}
	PrintKeyValue(fmt.Sprintf("%d-month eligible", strategy.Signals.WindowMonths),
		eligibleTickers(pre.Panel, strategy.Signals.WindowMonths))

	snapshot, err := quality.NewQualityGate(strategy.Quality).Check(ctx, raw, pre)
	if err != nil {
		return fmt.Errorf("quality gate: %w", err)
	}

	fmt.Println()
	fmt.Println("📊 품질 게이트")
	PrintSeparator()
	keys := make([]string, 0, len(snapshot.Coverage))
	for k := range snapshot.Coverage {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		PrintKeyValue("Coverage "+k, fmt.Sprintf("%.1f%%", snapshot.Coverage[k]*100))
	}
	PrintKeyValue("Quality score", fmt.Sprintf("%.2f", snapshot.QualityScore))
	for _, reason := range snapshot.FailReasons {
		PrintError(reason)
	}
	PrintWarningCounts(pre.Warnings.ByCode())

	if n := len(snapshot.PriceOutliers); n > 0 {
		fmt.Println()
		fmt.Printf("🔎 IQR 가격 이상치: %d건\n", n)
		widths := []int{10, 10, 12, 12, 12}
		PrintTableHeader([]string{"Ticker", "Date", "Price", "Lower", "Upper"}, widths)
		for i, o := range snapshot.PriceOutliers {
			if i == 20 {
				PrintInfo(fmt.Sprintf("... %d more", n-i))
				break
			}
			PrintTableRow([]string{
				o.Ticker, day(o.Date),
				fmt.Sprintf("%.2f", o.Price), fmt.Sprintf("%.2f", o.Lower), fmt.Sprintf("%.2f", o.Upper),
			}, widths)
		}
	}

	fmt.Println()
	if snapshot.Passed {
		PrintSuccess("Data passed the quality gate")
	} else {
		PrintWarning("Data failed the quality gate")
	}
	return nil
}

// eligibleTickers counts tickers with at least one full trailing window
func eligibleTickers(panel *contracts.MonthlyPanel, window int) int {
	n := 0
	for _, ticker := range panel.Tickers {
		recs, _ := panel.Get(ticker)
		if len(recs) >= window+1 {
			n++
		}
	}
	return n
}
