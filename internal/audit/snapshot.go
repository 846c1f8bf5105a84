package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/internal/risk"
)

// RunRecord is the persisted outcome of one backtest run
type RunRecord struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Strategy   string    `json:"strategy"`
	ConfigHash string    `json:"config_hash"`
	InputHash  string    `json:"input_hash"`

	Summary contracts.Summary            `json:"summary"`
	Report  *contracts.PerformanceReport `json:"report,omitempty"` // 기간이 없으면 nil
	Risk    *risk.Report                 `json:"risk,omitempty"`

	QualityScore  float64                       `json:"quality_score"`
	QualityPassed bool                          `json:"quality_passed"`
	Outliers      int                           `json:"outliers"`
	Warnings      map[contracts.WarningCode]int `json:"warnings"`
}

// NewRunID generates a unique run ID
func NewRunID() string {
	return uuid.NewString()
}

// NewRunRecord stamps a record with a fresh ID and creation time
func NewRunRecord(strategy, configHash, inputHash string) *RunRecord {
	return &RunRecord{
		ID:         NewRunID(),
		CreatedAt:  time.Now().UTC(),
		Strategy:   strategy,
		ConfigHash: configHash,
		InputHash:  inputHash,
		Warnings:   make(map[contracts.WarningCode]int),
	}
}

// IsOutperforming reports whether the run beat its benchmark
func (r *RunRecord) IsOutperforming() bool {
	return r.Summary.IsOutperforming()
}
