package quality

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// Repository handles data quality snapshot persistence
// ⭐ SSOT: 품질 스냅샷 저장/조회
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new quality repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const snapshotSchema = `
	CREATE SCHEMA IF NOT EXISTS audit;
	CREATE TABLE IF NOT EXISTS audit.data_quality_snapshots (
		run_id          TEXT PRIMARY KEY,
		checked_at      TIMESTAMPTZ NOT NULL,
		source          TEXT NOT NULL,
		quality_score   DOUBLE PRECISION NOT NULL,
		passed          BOOLEAN NOT NULL,
		final_records   INTEGER NOT NULL,
		imputed_records INTEGER NOT NULL,
		outliers        INTEGER NOT NULL,
		payload         JSONB NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// EnsureSchema creates the snapshot table when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("ensure quality schema: %w", err)
	}
	return nil
}

// SaveSnapshot saves a data quality snapshot
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *contracts.DataQualitySnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal quality snapshot: %w", err)
	}

	query := `
		INSERT INTO audit.data_quality_snapshots (
			run_id, checked_at, source, quality_score, passed,
			final_records, imputed_records, outliers, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (run_id) DO UPDATE SET
			checked_at = EXCLUDED.checked_at,
			quality_score = EXCLUDED.quality_score,
			passed = EXCLUDED.passed,
			final_records = EXCLUDED.final_records,
			imputed_records = EXCLUDED.imputed_records,
			outliers = EXCLUDED.outliers,
			payload = EXCLUDED.payload,
			updated_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query,
		snapshot.RunID,
		snapshot.CheckedAt,
		snapshot.Source,
		snapshot.QualityScore,
		snapshot.Passed,
		snapshot.Stats.FinalRecords,
		snapshot.Stats.ImputedRecords,
		snapshot.Stats.OutliersReplaced,
		payload,
	)
	if err != nil {
		return fmt.Errorf("save quality snapshot: %w", err)
	}

	return nil
}

// GetByRunID retrieves a quality snapshot by run id
func (r *Repository) GetByRunID(ctx context.Context, runID string) (*contracts.DataQualitySnapshot, error) {
	query := `
		SELECT payload
		FROM audit.data_quality_snapshots
		WHERE run_id = $1
	`

	var payload []byte
	if err := r.pool.QueryRow(ctx, query, runID).Scan(&payload); err != nil {
		return nil, fmt.Errorf("get quality snapshot %s: %w", runID, err)
	}

	var snapshot contracts.DataQualitySnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal quality snapshot: %w", err)
	}

	return &snapshot, nil
}
