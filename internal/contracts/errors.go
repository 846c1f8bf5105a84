package contracts

import (
	"errors"
	"fmt"
	"time"
)

// Integrity error kinds. Use errors.Is(err, ErrDuplicateKey) to classify.
var (
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrNonMonotonic  = errors.New("non-monotonic dates")
	ErrInvalidRecord = errors.New("invalid record")
)

// DataIntegrityError aborts a run. It carries the offending key.
// ⭐ SSOT: 치명적 데이터 무결성 오류
type DataIntegrityError struct {
	Kind   error  // ErrDuplicateKey | ErrNonMonotonic | ErrInvalidRecord
	Ticker string // 벤치마크는 빈 문자열
	Date   time.Time
	Detail string
}

func (e *DataIntegrityError) Error() string {
	subject := e.Ticker
	if subject == "" {
		subject = "benchmark"
	}
	msg := fmt.Sprintf("data integrity: %v at (%s, %s)", e.Kind, subject, e.Date.Format("2006-01-02"))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap exposes Kind to errors.Is
func (e *DataIntegrityError) Unwrap() error {
	return e.Kind
}

// AsIntegrityError extracts a *DataIntegrityError from an error chain
func AsIntegrityError(err error) (*DataIntegrityError, bool) {
	var ie *DataIntegrityError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// WarningCode classifies recoverable data-quality conditions
type WarningCode string

const (
	WarnEmptyPanel        WarningCode = "EMPTY_PANEL"
	WarnEmptyBenchmark    WarningCode = "EMPTY_BENCHMARK"
	WarnShortSelection    WarningCode = "SHORT_SELECTION"     // top_k 미만 종목
	WarnMissingForward    WarningCode = "MISSING_FORWARD"     // 선정 종목의 forward return 없음
	WarnNoBenchmarkReturn WarningCode = "NO_BENCHMARK_RETURN" // 해당 월 벤치마크 수익률 없음
	WarnNoRebalanceDates  WarningCode = "NO_REBALANCE_DATES"
	WarnEmptyPortfolio    WarningCode = "EMPTY_PORTFOLIO"
)

// DataQualityWarning is recoverable: it is logged and the run continues
type DataQualityWarning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
	Ticker  string      `json:"ticker,omitempty"`
	Date    time.Time   `json:"date,omitempty"`
}

func (w DataQualityWarning) String() string {
	s := string(w.Code) + ": " + w.Message
	if w.Ticker != "" {
		s += " [" + w.Ticker + "]"
	}
	if !w.Date.IsZero() {
		s += " @" + w.Date.Format("2006-01-02")
	}
	return s
}

// WarningSet collects warnings in emission order
type WarningSet []DataQualityWarning

// Add appends a warning
func (ws *WarningSet) Add(code WarningCode, ticker string, date time.Time, format string, args ...interface{}) {
	*ws = append(*ws, DataQualityWarning{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Ticker:  ticker,
		Date:    date,
	})
}

// Merge appends other
func (ws *WarningSet) Merge(other WarningSet) {
	*ws = append(*ws, other...)
}

// Count returns how many warnings carry code
func (ws WarningSet) Count(code WarningCode) int {
	n := 0
	for _, w := range ws {
		if w.Code == code {
			n++
		}
	}
	return n
}

// Has reports whether a warning with code exists
func (ws WarningSet) Has(code WarningCode) bool {
	return ws.Count(code) > 0
}

// ByCode counts warnings per code
func (ws WarningSet) ByCode() map[WarningCode]int {
	out := make(map[WarningCode]int)
	for _, w := range ws {
		out[w.Code]++
	}
	return out
}
