package s0_data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis/momentum/internal/contracts"
)

func TestFingerprint(t *testing.T) {
	d := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	raw := func(price float64) *contracts.RawDataset {
		return &contracts.RawDataset{
			Prices:    []contracts.DailyObservation{{Date: d, Ticker: "AAA", Price: price}},
			Benchmark: []contracts.BenchmarkObservation{{Date: d, AdjClose: 3000}},
		}
	}

	a := Fingerprint(raw(10))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint(raw(10)), "deterministic")
	assert.NotEqual(t, a, Fingerprint(raw(10.01)))

	// 종목명 경계가 섞이지 않음
	ab := &contracts.RawDataset{Prices: []contracts.DailyObservation{
		{Date: d, Ticker: "AB", Price: 1}, {Date: d, Ticker: "C", Price: 1},
	}}
	abc := &contracts.RawDataset{Prices: []contracts.DailyObservation{
		{Date: d, Ticker: "A", Price: 1}, {Date: d, Ticker: "BC", Price: 1},
	}}
	assert.NotEqual(t, Fingerprint(ab), Fingerprint(abc))
}
