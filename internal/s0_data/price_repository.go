package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// PriceRepository loads and stores raw observations in PostgreSQL
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

const priceSchema = `
	CREATE SCHEMA IF NOT EXISTS data;
	CREATE TABLE IF NOT EXISTS data.daily_prices (
		ticker     TEXT NOT NULL,
		trade_date DATE NOT NULL,
		price      DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (ticker, trade_date)
	);
	CREATE TABLE IF NOT EXISTS data.benchmark_prices (
		trade_date DATE PRIMARY KEY,
		adj_close  DOUBLE PRECISION NOT NULL
	);
`

// EnsureSchema creates the price tables when missing
func (r *PriceRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, priceSchema); err != nil {
		return fmt.Errorf("ensure price schema: %w", err)
	}
	return nil
}

// Load reads the full dataset ordered per ticker by date.
// Implements contracts.PriceSource.
func (r *PriceRepository) Load(ctx context.Context) (*contracts.RawDataset, error) {
	prices, err := r.GetPrices(ctx)
	if err != nil {
		return nil, err
	}
	bench, err := r.GetBenchmark(ctx)
	if err != nil {
		return nil, err
	}

	raw := &contracts.RawDataset{
		Source:    "postgres",
		Prices:    prices,
		Benchmark: bench,
	}
	if err := CheckIntegrity(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetPrices retrieves every daily observation
func (r *PriceRepository) GetPrices(ctx context.Context) ([]contracts.DailyObservation, error) {
	query := `
		SELECT ticker, trade_date, price
		FROM data.daily_prices
		ORDER BY ticker, trade_date
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query daily prices: %w", err)
	}
	defer rows.Close()

	var out []contracts.DailyObservation
	for rows.Next() {
		var obs contracts.DailyObservation
		if err := rows.Scan(&obs.Ticker, &obs.Date, &obs.Price); err != nil {
			return nil, fmt.Errorf("scan daily price: %w", err)
		}
		obs.Date = obs.Date.UTC()
		out = append(out, obs)
	}
	return out, rows.Err()
}

// GetBenchmark retrieves the benchmark series
func (r *PriceRepository) GetBenchmark(ctx context.Context) ([]contracts.BenchmarkObservation, error) {
	query := `
		SELECT trade_date, adj_close
		FROM data.benchmark_prices
		ORDER BY trade_date
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query benchmark: %w", err)
	}
	defer rows.Close()

	var out []contracts.BenchmarkObservation
	for rows.Next() {
		var obs contracts.BenchmarkObservation
		if err := rows.Scan(&obs.Date, &obs.AdjClose); err != nil {
			return nil, fmt.Errorf("scan benchmark: %w", err)
		}
		obs.Date = obs.Date.UTC()
		out = append(out, obs)
	}
	return out, rows.Err()
}

// SaveDataset upserts a raw dataset (used by `quant data import`)
func (r *PriceRepository) SaveDataset(ctx context.Context, raw *contracts.RawDataset) (int, error) {
	batch := &pgx.Batch{}

	for _, obs := range raw.Prices {
		batch.Queue(`
			INSERT INTO data.daily_prices (ticker, trade_date, price)
			VALUES ($1, $2, $3)
			ON CONFLICT (ticker, trade_date) DO UPDATE SET price = EXCLUDED.price
		`, obs.Ticker, obs.Date, obs.Price)
	}
	for _, obs := range raw.Benchmark {
		batch.Queue(`
			INSERT INTO data.benchmark_prices (trade_date, adj_close)
			VALUES ($1, $2)
			ON CONFLICT (trade_date) DO UPDATE SET adj_close = EXCLUDED.adj_close
		`, obs.Date, obs.AdjClose)
	}

	if batch.Len() == 0 {
		return 0, nil
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("upsert row %d: %w", i, err)
		}
	}
	return batch.Len(), nil
}
