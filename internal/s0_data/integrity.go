package s0_data

import (
	"fmt"
	"time"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// CheckIntegrity rejects duplicate keys and per-series dates that go backwards.
// Input order matters: each ticker's rows must appear with increasing dates.
func CheckIntegrity(raw *contracts.RawDataset) error {
	seen := make(map[string]map[time.Time]bool)
	last := make(map[string]time.Time)

	for _, obs := range raw.Prices {
		dates, ok := seen[obs.Ticker]
		if !ok {
			dates = make(map[time.Time]bool)
			seen[obs.Ticker] = dates
		}
		if dates[obs.Date] {
			return &contracts.DataIntegrityError{Kind: contracts.ErrDuplicateKey, Ticker: obs.Ticker, Date: obs.Date}
		}
		if prev, ok := last[obs.Ticker]; ok && obs.Date.Before(prev) {
			return &contracts.DataIntegrityError{
				Kind:   contracts.ErrNonMonotonic,
				Ticker: obs.Ticker,
				Date:   obs.Date,
				Detail: fmt.Sprintf("after %s", prev.Format("2006-01-02")),
			}
		}
		dates[obs.Date] = true
		last[obs.Ticker] = obs.Date
	}

	benchSeen := make(map[time.Time]bool)
	var prev time.Time
	for i, obs := range raw.Benchmark {
		if benchSeen[obs.Date] {
			return &contracts.DataIntegrityError{Kind: contracts.ErrDuplicateKey, Date: obs.Date}
		}
		if i > 0 && obs.Date.Before(prev) {
			return &contracts.DataIntegrityError{
				Kind:   contracts.ErrNonMonotonic,
				Date:   obs.Date,
				Detail: fmt.Sprintf("after %s", prev.Format("2006-01-02")),
			}
		}
		benchSeen[obs.Date] = true
		prev = obs.Date
	}

	return nil
}
