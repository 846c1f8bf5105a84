package contracts

import (
	"fmt"
	"time"
)

// OutlierEvent records one price replaced by outlier handling
type OutlierEvent struct {
	Ticker           string    `json:"ticker"`
	Date             time.Time `json:"date"`
	Field            string    `json:"field"` // 교체된 필드 ("price")
	OriginalValue    float64   `json:"original_value"`
	ReplacementValue float64   `json:"replacement_value"`
	Trigger          string    `json:"trigger"` // historical_return | forward_return
	TriggerValue     float64   `json:"trigger_value"`
}

// String renders the event as an outliers log line
func (e OutlierEvent) String() string {
	return fmt.Sprintf("%s,%s,%s,%g,%g",
		e.Ticker, e.Date.Format("2006-01-02"), e.Field, e.OriginalValue, e.ReplacementValue)
}
