package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/aegis/momentum/internal/backtest"
	"github.com/wonny/aegis/momentum/internal/portfolio"
	"github.com/wonny/aegis/momentum/internal/s1_preprocess"
)

// Load reads YAML file and returns Config with raw bytes.
// Fields missing from the file keep their Default() values.
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return cfg, data, nil
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode strategy config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	// Struct → JSON (결정적 순서)
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// PreprocessConfig converts the preprocess section into S1 rules
func (c *Config) PreprocessConfig() (s1_preprocess.Config, error) {
	p := c.Preprocess
	out := s1_preprocess.Config{
		PriceFloor:         p.PriceFloor,
		PriceCeiling:       p.PriceCeiling,
		OutlierMaxReturn:   p.OutlierMaxReturn,
		OutlierMinReturn:   p.OutlierMinReturn,
		OutlierReplacement: p.OutlierReplacement,
		Imputation:         p.Imputation,
		ImputeFiltered:     p.ImputeFiltered,
		Workers:            p.Workers,
	}

	if p.CrisisStart != "" || p.CrisisEnd != "" {
		start, err := s1_preprocess.ParseMonth(p.CrisisStart)
		if err != nil {
			return out, ValidationError{"preprocess.crisis_start", err.Error()}
		}
		end, err := s1_preprocess.ParseMonth(p.CrisisEnd)
		if err != nil {
			return out, ValidationError{"preprocess.crisis_end", err.Error()}
		}
		out.CrisisStart, out.CrisisEnd = start, end
	}

	return out, out.Validate()
}

// BacktestConfig converts the selection and backtest sections into S6 settings
func (c *Config) BacktestConfig() backtest.Config {
	return backtest.Config{
		TopK:                c.Selection.TopK,
		NotionalPerPosition: c.Backtest.NotionalPerPosition,
	}
}

// Constraints converts the selection and backtest sections into S5 limits
func (c *Config) Constraints() portfolio.Constraints {
	return portfolio.Constraints{
		MaxPositions:        c.Selection.TopK,
		NotionalPerPosition: c.Backtest.NotionalPerPosition,
	}
}
