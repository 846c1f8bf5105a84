package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// QualityGate grades a preprocessing run and builds its snapshot
type QualityGate struct {
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	MinScore        float64 `yaml:"min_score"`         // 0.70
	MinTickers      int     `yaml:"min_tickers"`       // 1
	MaxImputedRatio float64 `yaml:"max_imputed_ratio"` // 0.20
	MaxOutlierRatio float64 `yaml:"max_outlier_ratio"` // 0.05
	IQRMultiplier   float64 `yaml:"iqr_multiplier"`    // 1.5
	IQRPerTicker    int     `yaml:"iqr_per_ticker"`    // 5
	IQRMaxFindings  int     `yaml:"iqr_max_findings"`  // 5
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{
		MinScore:        0.70,
		MinTickers:      1,
		MaxImputedRatio: 0.20,
		MaxOutlierRatio: 0.05,
		IQRMultiplier:   1.5,
		IQRPerTicker:    5,
		IQRMaxFindings:  5,
	}
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	return &QualityGate{config: config}
}

// Check grades the output of S1 against the raw input
// ⭐ SSOT: S0/S1 품질 검증
func (g *QualityGate) Check(ctx context.Context, raw *contracts.RawDataset, result *contracts.PreprocessResult) (*contracts.DataQualitySnapshot, error) {
	if raw == nil || result == nil {
		return nil, fmt.Errorf("quality check: nil input")
	}

	snapshot := &contracts.DataQualitySnapshot{
		CheckedAt: time.Now().UTC(),
		Source:    raw.Source,
		Stats:     result.Stats,
		Coverage:  make(map[string]float64),
		Warnings:  result.Warnings.ByCode(),
	}

	if dates := result.Panel.Dates(); len(dates) > 0 {
		snapshot.StartDate = dates[0]
		snapshot.EndDate = dates[len(dates)-1]
	}

	// 1. 커버리지
	snapshot.Coverage = g.checkCoverage(result)

	// 2. 품질 점수
	snapshot.QualityScore = g.calculateScore(snapshot.Coverage)

	// 3. 원시 가격 IQR 점검
	findings, err := IQRScan(ctx, raw.Prices, g.config.IQRMultiplier, g.config.IQRPerTicker)
	if err != nil {
		return nil, fmt.Errorf("iqr scan: %w", err)
	}
	if g.config.IQRMaxFindings > 0 && len(findings) > g.config.IQRMaxFindings {
		findings = findings[:g.config.IQRMaxFindings]
	}
	snapshot.PriceOutliers = findings

	// 4. 통과 여부
	snapshot.FailReasons = g.failReasons(snapshot)
	snapshot.Passed = len(snapshot.FailReasons) == 0

	return snapshot, nil
}

// checkCoverage calculates the share of defined values per item
func (g *QualityGate) checkCoverage(result *contracts.PreprocessResult) map[string]float64 {
	coverage := make(map[string]float64)
	s := result.Stats

	if s.FinalRecords > 0 {
		final := float64(s.FinalRecords)
		coverage["observed"] = float64(s.FinalRecords-s.ImputedRecords) / final
		coverage["historical_return"] = float64(s.FinalRecords-s.MissingHistorical) / final
		coverage["forward_return"] = float64(s.FinalRecords-s.MissingForward) / final
	} else {
		coverage["observed"] = 0
		coverage["historical_return"] = 0
		coverage["forward_return"] = 0
	}

	defined := 0
	for _, b := range result.Benchmark {
		if b.ForwardReturn.Defined() {
			defined++
		}
	}
	if len(result.Benchmark) > 0 {
		coverage["benchmark"] = float64(defined) / float64(len(result.Benchmark))
	} else {
		coverage["benchmark"] = 0
	}

	return coverage
}

// calculateScore calculates overall quality score using weighted average
func (g *QualityGate) calculateScore(coverage map[string]float64) float64 {
	// 가중치 (합계 = 1.0)
	weights := map[string]float64{
		"observed":          0.40, // 실제 관측 비율
		"historical_return": 0.25,
		"forward_return":    0.15,
		"benchmark":         0.20,
	}

	score := 0.0
	for key, weight := range weights {
		if cov, exists := coverage[key]; exists {
			score += cov * weight
		}
	}

	return score
}

// failReasons lists every threshold the snapshot breaks
func (g *QualityGate) failReasons(s *contracts.DataQualitySnapshot) []string {
	var reasons []string

	if s.Stats.Tickers < g.config.MinTickers {
		reasons = append(reasons, fmt.Sprintf("tickers %d < %d", s.Stats.Tickers, g.config.MinTickers))
	}
	if s.QualityScore < g.config.MinScore {
		reasons = append(reasons, fmt.Sprintf("quality score %.3f < %.3f", s.QualityScore, g.config.MinScore))
	}
	if s.Stats.FinalRecords > 0 {
		imputed := float64(s.Stats.ImputedRecords) / float64(s.Stats.FinalRecords)
		if imputed > g.config.MaxImputedRatio {
			reasons = append(reasons, fmt.Sprintf("imputed ratio %.3f > %.3f", imputed, g.config.MaxImputedRatio))
		}
		outliers := float64(s.Stats.OutliersReplaced) / float64(s.Stats.FinalRecords)
		if outliers > g.config.MaxOutlierRatio {
			reasons = append(reasons, fmt.Sprintf("outlier ratio %.3f > %.3f", outliers, g.config.MaxOutlierRatio))
		}
	}

	return reasons
}
