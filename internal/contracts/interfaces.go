package contracts

import (
	"context"
)

// PriceSource loads raw observations (S0)
// ⭐ SSOT: S0 데이터 로딩 인터페이스
type PriceSource interface {
	Load(ctx context.Context) (*RawDataset, error)
}

// Preprocessor builds the cleaned monthly panel (S1)
// ⭐ SSOT: S1 전처리 인터페이스
type Preprocessor interface {
	Process(ctx context.Context, raw *RawDataset) (*PreprocessResult, error)
}

// SignalGenerator computes trailing-average signals (S2)
// ⭐ SSOT: S2 시그널 생성 인터페이스
type SignalGenerator interface {
	Generate(ctx context.Context, panel *MonthlyPanel) (*SignalPanel, error)
}

// Selector marks the monthly top-K (S4)
// ⭐ SSOT: S4 선정 인터페이스
type Selector interface {
	Select(ctx context.Context, signals *SignalPanel) (*SignalPanel, WarningSet, error)
}

// PortfolioConstructor builds equal-weight snapshots (S5)
// ⭐ SSOT: S5 포트폴리오 구성 인터페이스
type PortfolioConstructor interface {
	Construct(ctx context.Context, signals *SignalPanel) ([]PortfolioSnapshot, WarningSet, error)
}

// Backtester turns snapshots and the benchmark into a performance series (S6)
// ⭐ SSOT: S6 백테스트 인터페이스
type Backtester interface {
	Run(ctx context.Context, portfolios []PortfolioSnapshot, benchmark BenchmarkSeries) (*PerformanceSeries, *Summary, WarningSet, error)
}

// Auditor analyzes a performance series (S7)
// ⭐ SSOT: S7 성과 분석 인터페이스
type Auditor interface {
	Analyze(series *PerformanceSeries) (*PerformanceReport, error)
}
