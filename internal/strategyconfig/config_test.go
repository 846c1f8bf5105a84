package strategyconfig

import (
	"errors"
	"os"
	"testing"

	"github.com/wonny/aegis/momentum/internal/s1_preprocess"
)

func TestLoad(t *testing.T) {
	// 테스트용 YAML 경로
	path := "../../config/strategy/momentum_top20.yaml"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.StrategyID != "momentum_top20" {
		t.Errorf("expected strategy_id=momentum_top20, got %s", cfg.Meta.StrategyID)
	}
	if cfg.Selection.TopK != 20 {
		t.Errorf("expected top_k=20, got %d", cfg.Selection.TopK)
	}

	// 파일 설정 = 기본 설정
	if cfg.Preprocess != Default().Preprocess {
		t.Errorf("preprocess section differs from defaults: %+v", cfg.Preprocess)
	}
	if cfg.Quality != Default().Quality {
		t.Errorf("quality section differs from defaults: %+v", cfg.Quality)
	}

	fileHash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(fileHash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(fileHash))
	}

	t.Logf("config hash: %s", fileHash)
	t.Logf("yaml size: %d bytes", len(yamlData))
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("selection:\n  top_kk: 10\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParse_PartialOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("selection:\n  top_k: 10\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Selection.TopK != 10 {
		t.Errorf("expected top_k=10, got %d", cfg.Selection.TopK)
	}
	if cfg.Signals.WindowMonths != 12 {
		t.Errorf("expected default window 12, got %d", cfg.Signals.WindowMonths)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"default ok", func(c *Config) {}, ""},
		{"missing id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"ceiling below floor", func(c *Config) { c.Preprocess.PriceCeiling = 0.05 }, "preprocess.price_ceiling"},
		{"bad month", func(c *Config) { c.Preprocess.CrisisStart = "2008/01" }, "preprocess.crisis_start"},
		{"crisis reversed", func(c *Config) { c.Preprocess.CrisisEnd = "2007-12" }, "preprocess.crisis_end"},
		{"half crisis", func(c *Config) { c.Preprocess.CrisisEnd = "" }, "preprocess.crisis_start"},
		{"min return", func(c *Config) { c.Preprocess.OutlierMinReturn = -1 }, "preprocess.outlier_min_return"},
		{"replacement", func(c *Config) { c.Preprocess.OutlierReplacement = "median" }, "preprocess.outlier_replacement"},
		{"imputation", func(c *Config) { c.Preprocess.Imputation = "backfill" }, "preprocess.imputation"},
		{"window", func(c *Config) { c.Signals.WindowMonths = 0 }, "signals.window_months"},
		{"top k", func(c *Config) { c.Selection.TopK = 0 }, "selection.top_k"},
		{"duplicate exclude", func(c *Config) { c.Selection.Exclude = []string{"A", "A"} }, "selection.exclude[1]"},
		{"notional", func(c *Config) { c.Backtest.NotionalPerPosition = 0 }, "backtest.notional_per_position"},
		{"min score", func(c *Config) { c.Quality.MinScore = 1.5 }, "quality.min_score"},
		{"risk confidence", func(c *Config) { c.Risk.Confidence = 0.3 }, "risk"},
		{"risk samples", func(c *Config) { c.Risk.MinSamples = 0 }, "risk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)

			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestWarn(t *testing.T) {
	if w := Warn(Default()); len(w) != 0 {
		t.Errorf("default config should not warn, got %v", w)
	}

	cfg := Default()
	cfg.Selection.TopK = 3
	cfg.Preprocess.CrisisStart = ""
	cfg.Preprocess.CrisisEnd = ""

	codes := map[string]bool{}
	for _, w := range Warn(cfg) {
		codes[w.Code] = true
	}
	if !codes["CONCENTRATED"] || !codes["NO_CRISIS_WINDOW"] {
		t.Errorf("missing expected warnings: %v", codes)
	}
}

func TestHash(t *testing.T) {
	a, _ := Hash(Default())
	b, _ := Hash(Default())
	if a != b {
		t.Error("hash not deterministic")
	}

	cfg := Default()
	cfg.Selection.TopK = 10
	c, _ := Hash(cfg)
	if a == c {
		t.Error("hash should change with config")
	}
}

func TestPreprocessConfig(t *testing.T) {
	pc, err := Default().PreprocessConfig()
	if err != nil {
		t.Fatalf("PreprocessConfig failed: %v", err)
	}
	if !pc.CrisisStart.Equal(s1_preprocess.MustParseMonth("2008-01")) {
		t.Errorf("unexpected crisis start %v", pc.CrisisStart)
	}
	if !pc.CrisisEnd.Equal(s1_preprocess.MustParseMonth("2009-12")) {
		t.Errorf("unexpected crisis end %v", pc.CrisisEnd)
	}
	if pc.OutlierMaxReturn != 1.0 || pc.PriceFloor != 0.1 {
		t.Errorf("unexpected thresholds %+v", pc)
	}

	cfg := Default()
	cfg.Preprocess.CrisisStart, cfg.Preprocess.CrisisEnd = "", ""
	pc, err = cfg.PreprocessConfig()
	if err != nil {
		t.Fatalf("PreprocessConfig failed: %v", err)
	}
	if !pc.CrisisStart.IsZero() {
		t.Error("expected no crisis window")
	}
}

func TestSectionConversions(t *testing.T) {
	cfg := Default()
	if n := cfg.BacktestConfig().Notional(); n != 20 {
		t.Errorf("expected notional 20, got %v", n)
	}
	if c := cfg.Constraints(); c.MaxPositions != 20 {
		t.Errorf("expected 20 positions, got %d", c.MaxPositions)
	}
}
