package contracts

import "time"

// DataQualitySnapshot summarises the data quality of one preprocessing run
// ⭐ SSOT: S0/S1 데이터 품질 정보 전달
type DataQualitySnapshot struct {
	RunID         string              `json:"run_id"`
	CheckedAt     time.Time           `json:"checked_at"`
	Source        string              `json:"source"`
	StartDate     time.Time           `json:"start_date"`
	EndDate       time.Time           `json:"end_date"`
	Stats         PreprocessStats     `json:"stats"`
	Coverage      map[string]float64  `json:"coverage"`      // 항목별 커버리지 (0.0 ~ 1.0)
	QualityScore  float64             `json:"quality_score"` // 0.0 ~ 1.0
	Passed        bool                `json:"passed"`
	FailReasons   []string            `json:"fail_reasons,omitempty"`
	Warnings      map[WarningCode]int `json:"warnings"`
	PriceOutliers []PriceOutlier      `json:"price_outliers,omitempty"`
}

// PriceOutlier is a raw price outside its ticker's IQR fence
type PriceOutlier struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
	Lower  float64   `json:"lower"`
	Upper  float64   `json:"upper"`
}

// CoverageRate returns the average coverage rate across all items
func (d *DataQualitySnapshot) CoverageRate() float64 {
	if len(d.Coverage) == 0 {
		return 0.0
	}

	total := 0.0
	for _, rate := range d.Coverage {
		total += rate
	}

	return total / float64(len(d.Coverage))
}
