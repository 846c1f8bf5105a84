package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// PanelRow is the Parquet schema for the preprocessed monthly panel
type PanelRow struct {
	Ticker           string   `parquet:"ticker"`
	Date             int64    `parquet:"date,timestamp(millisecond)"` // Unix ms
	Price            float64  `parquet:"price"`
	HistoricalReturn *float64 `parquet:"historical_return,optional"`
	ForwardReturn    *float64 `parquet:"forward_return,optional"`
	IsOutlier        bool     `parquet:"is_outlier"`
	IsImputed        bool     `parquet:"is_imputed"`
}

// PanelRows flattens a panel in (ticker, date) order
func PanelRows(panel *contracts.MonthlyPanel) []PanelRow {
	if panel.IsEmpty() {
		return nil
	}
	rows := make([]PanelRow, 0, panel.Len())
	for _, ticker := range panel.Tickers {
		for _, rec := range panel.Series[ticker] {
			rows = append(rows, PanelRow{
				Ticker:           rec.Ticker,
				Date:             rec.Date.UnixMilli(),
				Price:            rec.Price,
				HistoricalReturn: rec.HistoricalReturn.Ptr(),
				ForwardReturn:    rec.ForwardReturn.Ptr(),
				IsOutlier:        rec.IsOutlier,
				IsImputed:        rec.IsImputed,
			})
		}
	}
	return rows
}

// WritePanelParquet exports the monthly panel to a Parquet file
func WritePanelParquet(path string, panel *contracts.MonthlyPanel) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, PanelRows(panel)); err != nil {
		return fmt.Errorf("write panel parquet: %w", err)
	}
	return nil
}

// ReadPanelParquet reads rows written by WritePanelParquet
func ReadPanelParquet(path string) ([]PanelRow, error) {
	rows, err := parquet.ReadFile[PanelRow](path)
	if err != nil {
		return nil, fmt.Errorf("read panel parquet: %w", err)
	}
	return rows, nil
}
