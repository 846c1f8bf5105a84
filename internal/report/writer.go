package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// Output file names under the results directory
const (
	ResultsFile          = "results.txt"
	OutliersFile         = "outliers.txt"
	PanelFile            = "monthly_panel.parquet"
	PerformancePlotFile  = "plots/strategy_performance.png"
	AveragePricePlotFile = "plots/average_price_over_time.png"
)

// Artifacts is the output of one run
type Artifacts struct {
	Results  Results
	Outliers []contracts.OutlierEvent
	Panel    *contracts.MonthlyPanel
	Series   *contracts.PerformanceSeries
}

// Options toggles optional outputs
type Options struct {
	Plots   bool
	Parquet bool
}

// Writer writes run artifacts into a results directory
// ⭐ SSOT: 결과 파일 출력은 여기서만
type Writer struct {
	dir    string
	opts   Options
	logger *logger.Logger
}

// NewWriter creates a new artifact writer
func NewWriter(dir string, opts Options, log *logger.Logger) *Writer {
	return &Writer{
		dir:    dir,
		opts:   opts,
		logger: log,
	}
}

// Path joins name onto the results directory
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, filepath.FromSlash(name))
}

// WriteAll writes every artifact and returns the written paths.
// Plot failures are logged, not returned.
func (w *Writer) WriteAll(a Artifacts) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	written := make([]string, 0, 5)

	path := w.Path(ResultsFile)
	if err := writeFile(path, func(f *os.File) error { return WriteResults(f, a.Results) }); err != nil {
		return written, err
	}
	written = append(written, path)

	path = w.Path(OutliersFile)
	if err := writeFile(path, func(f *os.File) error { return WriteOutliers(f, a.Outliers) }); err != nil {
		return written, err
	}
	written = append(written, path)

	if w.opts.Parquet && !a.Panel.IsEmpty() {
		path = w.Path(PanelFile)
		if err := WritePanelParquet(path, a.Panel); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if w.opts.Plots {
		if a.Series != nil && a.Series.Len() > 0 {
			path = w.Path(PerformancePlotFile)
			if err := PlotPerformance(a.Series, path); err != nil {
				w.logger.WithError(err).Warn("Performance plot failed")
			} else {
				written = append(written, path)
			}
		}
		if points := AveragePriceSeries(a.Panel); len(points) > 0 {
			path = w.Path(AveragePricePlotFile)
			if err := PlotAveragePrice(points, path); err != nil {
				w.logger.WithError(err).Warn("Average price plot failed")
			} else {
				written = append(written, path)
			}
		}
	}

	w.logger.WithFields(map[string]interface{}{
		"dir":   w.dir,
		"files": len(written),
	}).Info("Results written")

	return written, nil
}

func writeFile(path string, fn func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
