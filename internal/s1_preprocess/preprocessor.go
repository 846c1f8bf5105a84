package s1_preprocess

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// Preprocessor turns raw daily observations into the cleaned monthly panel
type Preprocessor struct {
	config Config
	logger *logger.Logger
}

// New creates a new Preprocessor
func New(config Config, log *logger.Logger) *Preprocessor {
	return &Preprocessor{
		config: config,
		logger: log.WithStage("s1"),
	}
}

// tickerOutcome is the result of the per-ticker steps 2–5
type tickerOutcome struct {
	series        []contracts.MonthlyRecord
	events        []contracts.OutlierEvent
	filtered      int
	crisisFlagged int
	imputed       int
}

// Process runs resample → price filter → returns → outliers → imputation.
// The input is not modified.
// ⭐ SSOT: S1 → S2 월별 패널 생성
func (p *Preprocessor) Process(ctx context.Context, raw *contracts.RawDataset) (*contracts.PreprocessResult, error) {
	if err := p.config.Validate(); err != nil {
		return nil, fmt.Errorf("preprocess config: %w", err)
	}
	start := time.Now()

	result := &contracts.PreprocessResult{
		Outliers: make([]contracts.OutlierEvent, 0),
	}
	result.Stats.RawObservations = len(raw.Prices)

	// 1. 월말 리샘플링
	monthly := ResampleMonthly(raw.Prices)
	tickers := make([]string, 0, len(monthly))
	for ticker, series := range monthly {
		tickers = append(tickers, ticker)
		result.Stats.ResampledRecords += len(series)
	}
	sort.Strings(tickers)

	// 2–5. 종목별 독립 처리
	outcomes := make([]tickerOutcome, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	if p.config.Workers > 0 {
		g.SetLimit(p.config.Workers)
	}
	for i, ticker := range tickers {
		i, series := i, monthly[ticker]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.processTicker(series)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("preprocess tickers: %w", err)
	}

	// 병합 (ticker 정렬 순서 유지)
	panelSeries := make(map[string][]contracts.MonthlyRecord, len(tickers))
	for i, ticker := range tickers {
		o := outcomes[i]
		panelSeries[ticker] = o.series
		result.Outliers = append(result.Outliers, o.events...)
		result.Stats.FilteredRecords += o.filtered
		result.Stats.OutliersReplaced += len(o.events)
		result.Stats.CrisisFlagged += o.crisisFlagged
		result.Stats.ImputedRecords += o.imputed
	}
	result.Panel = contracts.NewMonthlyPanel(panelSeries)
	result.Stats.Tickers = len(result.Panel.Tickers)

	for _, rec := range result.Panel.Records() {
		result.Stats.FinalRecords++
		if !rec.HistoricalReturn.Defined() {
			result.Stats.MissingHistorical++
		}
		if !rec.ForwardReturn.Defined() {
			result.Stats.MissingForward++
		}
	}

	// 벤치마크: 리샘플링 + 수익률만
	result.Benchmark = benchmarkReturns(ResampleBenchmark(raw.Benchmark))
	result.Stats.BenchmarkMonths = len(result.Benchmark)

	if result.Panel.IsEmpty() {
		result.Warnings.Add(contracts.WarnEmptyPanel, "", time.Time{},
			"panel is empty after filtering (%d raw observations)", len(raw.Prices))
	}
	if len(result.Benchmark) == 0 {
		result.Warnings.Add(contracts.WarnEmptyBenchmark, "", time.Time{}, "benchmark series is empty")
	}
	for _, w := range result.Warnings {
		p.logger.Warn(w.String())
	}

	p.logger.WithFields(map[string]interface{}{
		"tickers":        result.Stats.Tickers,
		"resampled":      result.Stats.ResampledRecords,
		"filtered":       result.Stats.FilteredRecords,
		"outliers":       result.Stats.OutliersReplaced,
		"crisis_flagged": result.Stats.CrisisFlagged,
		"imputed":        result.Stats.ImputedRecords,
		"final":          result.Stats.FinalRecords,
		"duration_ms":    time.Since(start).Milliseconds(),
	}).Info("Preprocessing completed")

	return result, nil
}

// processTicker runs steps 2–5 on one ticker's monthly series
func (p *Preprocessor) processTicker(series []contracts.MonthlyRecord) tickerOutcome {
	var o tickerOutcome

	// 2. 가격 범위 필터 (제거만, 대체 없음)
	kept, removed := FilterPriceRange(series, p.config.PriceFloor, p.config.PriceCeiling)
	o.filtered = len(removed)

	// 3. 수익률
	withReturns := ComputeReturns(kept)

	// 4. 이상치 (위기 구간 제외)
	handled := HandleOutliers(withReturns, p.config)
	o.events = handled.Events
	o.crisisFlagged = handled.CrisisFlagged

	// 5. 결측 보간 (forward fill)
	final := handled.Series
	if p.config.Imputation == ImputeForwardFill {
		skip := removed
		if p.config.ImputeFiltered {
			skip = nil
		}
		final, o.imputed = ForwardFill(final, skip)
		final = relinkImputed(final)

		// 채운 구간을 건너는 새 수익률도 이상치 검사
		rechecked := RecheckFilled(final, p.config)
		final = rechecked.Series
		o.events = append(o.events, rechecked.Events...)
		o.crisisFlagged += rechecked.CrisisFlagged
	}

	o.series = final
	return o
}
