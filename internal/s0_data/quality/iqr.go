package quality

import (
	"context"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

// minIQRPoints is the smallest series Quartile can split into halves
const minIQRPoints = 4

// IQRScan flags raw prices outside [Q1 - k*IQR, Q3 + k*IQR] per ticker.
// At most perTicker findings are kept per ticker (0 = all). Findings are
// ordered by ticker, then date.
func IQRScan(ctx context.Context, prices []contracts.DailyObservation, k float64, perTicker int) ([]contracts.PriceOutlier, error) {
	byTicker := make(map[string][]contracts.DailyObservation)
	for _, obs := range prices {
		byTicker[obs.Ticker] = append(byTicker[obs.Ticker], obs)
	}

	tickers := make([]string, 0, len(byTicker))
	for t := range byTicker {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var out []contracts.PriceOutlier
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series := byTicker[ticker]
		if len(series) < minIQRPoints {
			continue
		}

		values := make(stats.Float64Data, len(series))
		for i, obs := range series {
			values[i] = obs.Price
		}

		q, err := stats.Quartile(values)
		if err != nil {
			return nil, err
		}
		iqr := q.Q3 - q.Q1
		lower := q.Q1 - k*iqr
		upper := q.Q3 + k*iqr

		found := 0
		for _, obs := range series {
			if obs.Price >= lower && obs.Price <= upper {
				continue
			}
			out = append(out, contracts.PriceOutlier{
				Ticker: ticker,
				Date:   obs.Date,
				Price:  obs.Price,
				Lower:  lower,
				Upper:  upper,
			})
			found++
			if perTicker > 0 && found >= perTicker {
				break
			}
		}
	}

	return out, nil
}
