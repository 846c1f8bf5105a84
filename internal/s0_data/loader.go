package s0_data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// Accepted date layouts, tried in order
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
}

// Column aliases accepted in CSV headers
var (
	dateColumns   = []string{"date", "trade_date", "timestamp"}
	tickerColumns = []string{"ticker", "symbol", "code"}
	priceColumns  = []string{"price", "close", "adj_close"}
	indexColumns  = []string{"adj_close", "adj close", "close", "price"}
)

// LoadStats counts rows the loader skipped
type LoadStats struct {
	PriceRows        int
	PriceMissing     int // 가격이 비어있는 행 (관측 없음으로 처리)
	BenchmarkRows    int
	BenchmarkMissing int
}

// CSVSource loads prices and the benchmark index from CSV files
// ⭐ SSOT: CSV 로딩은 여기서만
type CSVSource struct {
	pricesPath string
	indexPath  string
	logger     *logger.Logger
	stats      LoadStats
}

// NewCSVSource creates a new CSV source
func NewCSVSource(pricesPath, indexPath string, log *logger.Logger) *CSVSource {
	return &CSVSource{
		pricesPath: pricesPath,
		indexPath:  indexPath,
		logger:     log.WithStage("s0"),
	}
}

// Stats returns the counters of the last Load
func (s *CSVSource) Stats() LoadStats {
	return s.stats
}

// Load reads both files and validates integrity
func (s *CSVSource) Load(ctx context.Context) (*contracts.RawDataset, error) {
	pf, err := os.Open(s.pricesPath)
	if err != nil {
		return nil, fmt.Errorf("open prices %s: %w", s.pricesPath, err)
	}
	defer pf.Close()

	prices, missing, err := ReadPrices(ctx, pf)
	if err != nil {
		return nil, fmt.Errorf("read prices %s: %w", s.pricesPath, err)
	}
	s.stats.PriceRows = len(prices)
	s.stats.PriceMissing = missing

	xf, err := os.Open(s.indexPath)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", s.indexPath, err)
	}
	defer xf.Close()

	bench, bmissing, err := ReadBenchmark(ctx, xf)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", s.indexPath, err)
	}
	s.stats.BenchmarkRows = len(bench)
	s.stats.BenchmarkMissing = bmissing

	raw := &contracts.RawDataset{
		Source:    "csv:" + s.pricesPath,
		Prices:    prices,
		Benchmark: bench,
	}

	if err := CheckIntegrity(raw); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"price_rows":        s.stats.PriceRows,
		"price_missing":     s.stats.PriceMissing,
		"benchmark_rows":    s.stats.BenchmarkRows,
		"benchmark_missing": s.stats.BenchmarkMissing,
		"tickers":           len(raw.Tickers()),
	}).Info("Loaded CSV inputs")

	return raw, nil
}

// ReadPrices parses a date,ticker,price CSV. Rows with an empty or NaN
// price are not observations and are counted in the second return value.
func ReadPrices(ctx context.Context, r io.Reader) ([]contracts.DailyObservation, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	dateIdx, err := findColumn(header, dateColumns)
	if err != nil {
		return nil, 0, err
	}
	tickerIdx, err := findColumn(header, tickerColumns)
	if err != nil {
		return nil, 0, err
	}
	priceIdx, err := findColumn(header, priceColumns)
	if err != nil {
		return nil, 0, err
	}

	out := make([]contracts.DailyObservation, 0, 1024)
	missing := 0
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}

		ticker := strings.TrimSpace(record[tickerIdx])
		date, err := ParseDate(record[dateIdx])
		if err != nil || ticker == "" {
			return nil, 0, &contracts.DataIntegrityError{
				Kind:   contracts.ErrInvalidRecord,
				Ticker: ticker,
				Date:   date,
				Detail: fmt.Sprintf("line %d: bad date or ticker %q", line, record[dateIdx]),
			}
		}

		price, ok, err := parsePrice(record[priceIdx])
		if err != nil {
			return nil, 0, &contracts.DataIntegrityError{
				Kind:   contracts.ErrInvalidRecord,
				Ticker: ticker,
				Date:   date,
				Detail: fmt.Sprintf("line %d: %v", line, err),
			}
		}
		if !ok {
			missing++
			continue
		}

		out = append(out, contracts.DailyObservation{Date: date, Ticker: ticker, Price: price})
	}

	return out, missing, nil
}

// ReadBenchmark parses a date,adj_close CSV
func ReadBenchmark(ctx context.Context, r io.Reader) ([]contracts.BenchmarkObservation, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	dateIdx, err := findColumn(header, dateColumns)
	if err != nil {
		return nil, 0, err
	}
	closeIdx, err := findColumn(header, indexColumns)
	if err != nil {
		return nil, 0, err
	}

	out := make([]contracts.BenchmarkObservation, 0, 256)
	missing := 0
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		date, err := ParseDate(record[dateIdx])
		if err != nil {
			return nil, 0, &contracts.DataIntegrityError{
				Kind:   contracts.ErrInvalidRecord,
				Detail: fmt.Sprintf("line %d: bad date %q", line, record[dateIdx]),
			}
		}

		value, ok, err := parsePrice(record[closeIdx])
		if err != nil {
			return nil, 0, &contracts.DataIntegrityError{
				Kind:   contracts.ErrInvalidRecord,
				Date:   date,
				Detail: fmt.Sprintf("line %d: %v", line, err),
			}
		}
		if !ok {
			missing++
			continue
		}

		out = append(out, contracts.BenchmarkObservation{Date: date, AdjClose: value})
	}

	return out, missing, nil
}

// ParseDate parses a date in any accepted layout (UTC)
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parsePrice returns ok=false for an empty or NaN cell
func parsePrice(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("bad price %q", s)
	}
	return v, true, nil
}

func findColumn(header []string, names []string) (int, error) {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("missing column %q in header %v", names[0], header)
}
