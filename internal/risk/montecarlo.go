package risk

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// reportedPercentiles 결과에 기록할 백분위
var reportedPercentiles = []int{5, 25, 50, 75, 95}

// MonteCarloSimulator Monte Carlo 시뮬레이터 (historical bootstrap)
type MonteCarloSimulator struct {
	config Config
	rng    *rand.Rand
}

// NewMonteCarloSimulator 새 시뮬레이터 생성
func NewMonteCarloSimulator(config Config) *MonteCarloSimulator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MonteCarloSimulator{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Simulate resamples months with replacement into HorizonMonths-long paths.
// Strategy and benchmark share the sampled month so their correlation survives.
func (mc *MonteCarloSimulator) Simulate(ctx context.Context, strategy, benchmark []float64) (*MonteCarloResult, error) {
	if len(strategy) != len(benchmark) {
		return nil, fmt.Errorf("length mismatch: strategy=%d benchmark=%d", len(strategy), len(benchmark))
	}
	if len(strategy) < mc.config.MinSamples || len(strategy) == 0 {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientSamples, len(strategy), mc.config.MinSamples)
	}

	n := mc.config.Simulations
	terminal := make([]float64, n)
	outperform := 0
	losses := 0

	for i := 0; i < n; i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		sCum, bCum := 1.0, 1.0
		for m := 0; m < mc.config.HorizonMonths; m++ {
			idx := mc.rng.Intn(len(strategy))
			sCum *= 1 + strategy[idx]
			bCum *= 1 + benchmark[idx]
		}

		terminal[i] = sCum - 1
		if sCum > bCum {
			outperform++
		}
		if sCum < 1 {
			losses++
		}
	}

	sorted := make([]float64, n)
	copy(sorted, terminal)
	sort.Float64s(sorted)

	mean, _ := stats.Mean(terminal)
	sd, _ := stats.StandardDeviationSample(terminal)

	result := &MonteCarloResult{
		Paths:          n,
		HorizonMonths:  mc.config.HorizonMonths,
		InputSamples:   len(strategy),
		MeanReturn:     mean,
		StdDev:         sd,
		VaR:            CalculateVaR(terminal, mc.config.Confidence),
		ProbLoss:       float64(losses) / float64(n),
		ProbOutperform: float64(outperform) / float64(n),
		Percentiles:    make(map[int]float64, len(reportedPercentiles)),
	}
	for _, p := range reportedPercentiles {
		result.Percentiles[p] = Percentile(sorted, float64(p))
	}

	return result, nil
}
