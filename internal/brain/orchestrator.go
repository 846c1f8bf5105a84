package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/aegis/momentum/internal/audit"
	"github.com/wonny/aegis/momentum/internal/backtest"
	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/internal/portfolio"
	"github.com/wonny/aegis/momentum/internal/risk"
	"github.com/wonny/aegis/momentum/internal/s0_data"
	"github.com/wonny/aegis/momentum/internal/s0_data/quality"
	"github.com/wonny/aegis/momentum/internal/s1_preprocess"
	"github.com/wonny/aegis/momentum/internal/s2_signals"
	"github.com/wonny/aegis/momentum/internal/selection"
	"github.com/wonny/aegis/momentum/internal/strategyconfig"
	"github.com/wonny/aegis/momentum/pkg/logger"
	"github.com/wonny/aegis/momentum/pkg/redis"
)

// Orchestrator coordinates the entire pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	strategy   *strategyconfig.Config
	configHash string

	// Stage components
	source              contracts.PriceSource
	preprocessor        contracts.Preprocessor
	qualityGate         *quality.QualityGate
	signalBuilder       contracts.SignalGenerator
	ranker              contracts.Selector
	portfolioBuilder    contracts.PortfolioConstructor
	engine              contracts.Backtester
	performanceAnalyzer *audit.Analyzer
	riskEngine          *risk.Engine

	// Optional: nil이면 건너뜀
	cache       *redis.Cache
	qualityRepo *quality.Repository
	runStore    audit.RunStore

	logger *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID         string // 빈 값이면 새로 생성
	StrictQuality bool   // 품질 게이트 실패 시 중단
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	ConfigHash      string
	InputHash       string
	CompletedStages []string
	CacheHit        bool

	Raw             *contracts.RawDataset
	Preprocess      *contracts.PreprocessResult
	QualitySnapshot *contracts.DataQualitySnapshot
	Signals         *contracts.SignalPanel
	Portfolios      []contracts.PortfolioSnapshot
	Series          *contracts.PerformanceSeries
	Summary         *contracts.Summary
	Report          *contracts.PerformanceReport // 리밸런싱 월이 없으면 nil
	Attribution     []audit.Attribution
	Risk            *risk.Report // 표본이 부족하면 nil
	Warnings        contracts.WarningSet
	Record          *audit.RunRecord
	Duration        time.Duration
}

// Stage implementations
var (
	_ contracts.Preprocessor         = (*s1_preprocess.Preprocessor)(nil)
	_ contracts.SignalGenerator      = (*s2_signals.Builder)(nil)
	_ contracts.Selector             = (*selection.Ranker)(nil)
	_ contracts.PortfolioConstructor = (*portfolio.Constructor)(nil)
	_ contracts.Backtester           = (*backtest.Engine)(nil)
	_ contracts.Auditor              = (*audit.Analyzer)(nil)
)

// ErrQualityGate is returned in strict mode when the data fails the gate
var ErrQualityGate = errors.New("quality gate failed")

// New wires every stage from a validated strategy config
func New(strategy *strategyconfig.Config, source contracts.PriceSource, log *logger.Logger) (*Orchestrator, error) {
	if err := strategyconfig.Validate(strategy); err != nil {
		return nil, fmt.Errorf("strategy config: %w", err)
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("strategy hash: %w", err)
	}
	preCfg, err := strategy.PreprocessConfig()
	if err != nil {
		return nil, fmt.Errorf("preprocess config: %w", err)
	}

	screener := selection.NewScreener(selection.ScreenerConfig{Exclude: strategy.Selection.Exclude}, log)
	return &Orchestrator{
		strategy:            strategy,
		configHash:          hash,
		source:              source,
		preprocessor:        s1_preprocess.New(preCfg, log),
		qualityGate:         quality.NewQualityGate(strategy.Quality),
		signalBuilder:       s2_signals.NewBuilder(s2_signals.NewMomentumCalculator(strategy.Signals.WindowMonths, log), strategy.Signals.Workers, log),
		ranker:              selection.NewRanker(strategy.Selection.TopK, screener, log),
		portfolioBuilder:    portfolio.NewConstructor(strategy.Constraints(), log),
		engine:              backtest.NewEngine(strategy.BacktestConfig(), log),
		performanceAnalyzer: audit.NewAnalyzer(strategy.Backtest.RiskFreeRate, log),
		riskEngine:          risk.NewEngine(strategy.Risk, log),
		logger:              log,
	}, nil
}

// WithCache enables the preprocessed panel cache
func (o *Orchestrator) WithCache(cache *redis.Cache) *Orchestrator {
	o.cache = cache
	return o
}

// WithQualityRepository persists quality snapshots
func (o *Orchestrator) WithQualityRepository(repo *quality.Repository) *Orchestrator {
	o.qualityRepo = repo
	return o
}

// WithRunStore persists run records
func (o *Orchestrator) WithRunStore(store audit.RunStore) *Orchestrator {
	o.runStore = store
	return o
}

// ConfigHash returns the strategy hash
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// Run executes the complete pipeline
// S0 → S1 → S2 → S3/S4 → S5 → S6 → S7
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()
	if config.RunID == "" {
		config.RunID = audit.NewRunID()
	}

	result := &RunResult{
		RunID:           config.RunID,
		ConfigHash:      o.configHash,
		CompletedStages: make([]string, 0, 7),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"strategy":    o.strategy.Meta.StrategyID,
		"config_hash": o.configHash[:12],
	}).Info("Starting pipeline run")

	// S0: Load + integrity
	raw, err := o.runS0(ctx)
	if err != nil {
		return result, fmt.Errorf("S0 failed: %w", err)
	}
	result.Raw = raw
	result.InputHash = s0_data.Fingerprint(raw)
	result.CompletedStages = append(result.CompletedStages, "S0:Data")

	// S1: Preprocess (+ cache) and quality gate
	pre, hit, err := o.runS1(ctx, result.InputHash, raw)
	if err != nil {
		return result, fmt.Errorf("S1 failed: %w", err)
	}
	result.Preprocess = pre
	result.CacheHit = hit
	result.Warnings.Merge(pre.Warnings)
	result.CompletedStages = append(result.CompletedStages, "S1:Preprocess")

	snapshot, err := o.runQuality(ctx, config, raw, pre)
	if err != nil {
		return result, fmt.Errorf("S1 quality failed: %w", err)
	}
	result.QualitySnapshot = snapshot

	// S2: Signals
	signals, err := o.signalBuilder.Generate(ctx, pre.Panel)
	if err != nil {
		return result, fmt.Errorf("S2 failed: %w", err)
	}
	result.CompletedStages = append(result.CompletedStages, "S2:Signals")

	// S3/S4: Screening + ranking
	selected, warnings, err := o.ranker.Select(ctx, signals)
	if err != nil {
		return result, fmt.Errorf("S4 failed: %w", err)
	}
	result.Signals = selected
	result.Warnings.Merge(warnings)
	result.CompletedStages = append(result.CompletedStages, "S4:Selection")

	// S5: Portfolio
	portfolios, warnings, err := o.portfolioBuilder.Construct(ctx, selected)
	if err != nil {
		return result, fmt.Errorf("S5 failed: %w", err)
	}
	result.Portfolios = portfolios
	result.Warnings.Merge(warnings)
	result.CompletedStages = append(result.CompletedStages, "S5:Portfolio")

	// S6: Backtest
	series, summary, warnings, err := o.engine.Run(ctx, portfolios, pre.Benchmark)
	if err != nil {
		return result, fmt.Errorf("S6 failed: %w", err)
	}
	result.Series = series
	result.Summary = summary
	result.Warnings.Merge(warnings)
	result.CompletedStages = append(result.CompletedStages, "S6:Backtest")

	// S7: Audit
	if err := o.runS7(ctx, result); err != nil {
		return result, fmt.Errorf("S7 failed: %w", err)
	}
	result.CompletedStages = append(result.CompletedStages, "S7:Audit")

	result.Duration = time.Since(startTime)
	o.logWarnings(result.Warnings)
	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
		"periods":  summary.Periods,
		"warnings": len(result.Warnings),
	}).Info("Pipeline run completed successfully")

	return result, nil
}

// runS0 loads the raw dataset
func (o *Orchestrator) runS0(ctx context.Context) (*contracts.RawDataset, error) {
	o.logger.Info("Running S0: Data load")

	raw, err := o.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"source":       raw.Source,
		"observations": len(raw.Prices),
		"benchmark":    len(raw.Benchmark),
	}).Info("S0 completed")

	return raw, nil
}

// runS1 preprocesses the dataset, using the panel cache when enabled
func (o *Orchestrator) runS1(ctx context.Context, inputHash string, raw *contracts.RawDataset) (*contracts.PreprocessResult, bool, error) {
	o.logger.Info("Running S1: Preprocess")

	key := redis.PanelKey(o.configHash, inputHash)
	if o.cache != nil {
		var cached contracts.PreprocessResult
		hit, err := o.cache.Get(ctx, key, &cached)
		if err != nil {
			o.logger.WithError(err).Warn("Panel cache read failed")
		} else if hit && cached.Panel != nil {
			o.logger.WithField("key", key).Info("S1 served from cache")
			return &cached, true, nil
		}
	}

	pre, err := o.preprocessor.Process(ctx, raw)
	if err != nil {
		return nil, false, fmt.Errorf("preprocess: %w", err)
	}

	if o.cache != nil {
		if err := o.cache.Set(ctx, key, pre, redis.TTLDaily); err != nil {
			o.logger.WithError(err).Warn("Panel cache write failed")
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"tickers":  pre.Stats.Tickers,
		"records":  pre.Stats.FinalRecords,
		"outliers": pre.Stats.OutliersReplaced,
		"imputed":  pre.Stats.ImputedRecords,
	}).Info("S1 completed")

	return pre, false, nil
}

// runQuality scores the preprocessed panel and persists the snapshot
func (o *Orchestrator) runQuality(ctx context.Context, config RunConfig, raw *contracts.RawDataset, pre *contracts.PreprocessResult) (*contracts.DataQualitySnapshot, error) {
	snapshot, err := o.qualityGate.Check(ctx, raw, pre)
	if err != nil {
		return nil, fmt.Errorf("quality gate validation: %w", err)
	}
	snapshot.RunID = config.RunID

	if o.qualityRepo != nil {
		if err := o.qualityRepo.SaveSnapshot(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("save quality snapshot: %w", err)
		}
	}

	log := o.logger.WithFields(map[string]interface{}{
		"quality_score": fmt.Sprintf("%.3f", snapshot.QualityScore),
		"passed":        snapshot.Passed,
	})
	if !snapshot.Passed {
		log.WithField("reasons", snapshot.FailReasons).Warn("Quality gate failed")
		if config.StrictQuality {
			return snapshot, fmt.Errorf("%w: score=%.2f", ErrQualityGate, snapshot.QualityScore)
		}
	} else {
		log.Info("Quality gate passed")
	}

	return snapshot, nil
}

// runS7 analyzes performance and records the run
func (o *Orchestrator) runS7(ctx context.Context, result *RunResult) error {
	o.logger.Info("Running S7: Performance Analysis")

	report, err := o.performanceAnalyzer.Analyze(result.Series)
	switch {
	case errors.Is(err, audit.ErrNoPeriods):
		o.logger.Warn("No rebalancing periods, skipping risk metrics")
	case err != nil:
		return fmt.Errorf("performance analysis: %w", err)
	default:
		result.Report = report
	}
	result.Attribution = o.performanceAnalyzer.AnalyzeAttribution(result.Portfolios, result.Series)

	riskReport, err := o.riskEngine.Analyze(ctx, result.Series)
	switch {
	case errors.Is(err, risk.ErrInsufficientSamples):
		o.logger.WithError(err).Warn("Skipping tail-risk analysis")
	case err != nil:
		return fmt.Errorf("risk analysis: %w", err)
	default:
		result.Risk = riskReport
	}

	record := audit.NewRunRecord(o.strategy.Meta.StrategyID, result.ConfigHash, result.InputHash)
	record.ID = result.RunID
	record.Summary = *result.Summary
	record.Report = result.Report
	record.Risk = result.Risk
	record.Outliers = len(result.Preprocess.Outliers)
	record.Warnings = result.Warnings.ByCode()
	if q := result.QualitySnapshot; q != nil {
		record.QualityScore = q.QualityScore
		record.QualityPassed = q.Passed
	}
	result.Record = record

	if o.runStore != nil {
		if err := o.runStore.SaveRun(ctx, record); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":         record.ID,
		"outperformance": result.Summary.Outperformance,
		"persisted":      o.runStore != nil,
	}).Info("S7 completed")

	return nil
}

// logWarnings logs one line per warning code
func (o *Orchestrator) logWarnings(warnings contracts.WarningSet) {
	for code, n := range warnings.ByCode() {
		o.logger.WithFields(map[string]interface{}{
			"code":  code,
			"count": n,
		}).Warn("Data quality warnings")
	}
}
