package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRunNotFound is returned when a run ID is unknown
var ErrRunNotFound = errors.New("run not found")

// RunStore persists backtest runs
// ⭐ SSOT: Audit 데이터 저장/조회는 여기서만
type RunStore interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}

var (
	_ RunStore = (*PostgresStore)(nil)
	_ RunStore = (*SQLiteStore)(nil)
)

// PostgresStore keeps runs in audit.backtest_runs
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new run store backed by PostgreSQL
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the run table if needed
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE SCHEMA IF NOT EXISTS audit;
		CREATE TABLE IF NOT EXISTS audit.backtest_runs (
			run_id      TEXT PRIMARY KEY,
			created_at  TIMESTAMPTZ NOT NULL,
			strategy    TEXT NOT NULL,
			config_hash TEXT NOT NULL,
			payload     JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_backtest_runs_created ON audit.backtest_runs (created_at DESC);
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure run schema: %w", err)
	}
	return nil
}

// SaveRun upserts a run
func (s *PostgresStore) SaveRun(ctx context.Context, run *RunRecord) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	query := `
		INSERT INTO audit.backtest_runs (run_id, created_at, strategy, config_hash, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO UPDATE SET
			strategy = EXCLUDED.strategy,
			config_hash = EXCLUDED.config_hash,
			payload = EXCLUDED.payload
	`
	if _, err := s.pool.Exec(ctx, query, run.ID, run.CreatedAt, run.Strategy, run.ConfigHash, payload); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *PostgresStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM audit.backtest_runs WHERE run_id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return decodeRun(payload)
}

// ListRuns returns the most recent runs first
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM audit.backtest_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run, err := decodeRun(payload)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func decodeRun(payload []byte) (*RunRecord, error) {
	var run RunRecord
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}
