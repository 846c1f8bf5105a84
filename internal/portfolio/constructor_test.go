package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis/momentum/internal/contracts"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

var (
	jan = time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC)
	feb = time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC)
)

func selected(date time.Time, ticker string, rank int, fwd contracts.Value) contracts.SignalRecord {
	return contracts.SignalRecord{
		Date:              date,
		Ticker:            ticker,
		TrailingAvgReturn: contracts.Some(0.01),
		ForwardReturn:     fwd,
		Selected:          rank > 0,
		Rank:              rank,
	}
}

func TestConstructor_Construct(t *testing.T) {
	signals := &contracts.SignalPanel{Records: []contracts.SignalRecord{
		selected(jan, "A", 2, contracts.Some(0.10)),
		selected(jan, "B", 1, contracts.Some(0.20)),
		selected(jan, "C", 0, contracts.Some(0.90)), // 미선정
		selected(feb, "A", 1, contracts.None()),
		selected(feb, "B", 2, contracts.Some(-0.10)),
	}}

	c := NewConstructor(Constraints{MaxPositions: 2, NotionalPerPosition: 1}, logger.Nop())
	snaps, warnings, err := c.Construct(context.Background(), signals)
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	assert.Equal(t, []string{"B", "A"}, snaps[0].InvestedTickers)
	assert.False(t, snaps[0].Holds("C"))
	assert.InDelta(t, 0.15, snaps[0].PortfolioReturn.OrElse(0), 1e-12)
	assert.InDelta(t, 0.5, snaps[0].Weight(), 1e-12)

	assert.Equal(t, []string{"B"}, snaps[1].InvestedTickers)
	assert.Equal(t, []string{"A"}, snaps[1].Excluded)
	assert.InDelta(t, -0.10, snaps[1].PortfolioReturn.OrElse(0), 1e-12)
	assert.Equal(t, 1, warnings.Count(contracts.WarnMissingForward))
}

func TestConstructor_EmptyMonth(t *testing.T) {
	signals := &contracts.SignalPanel{Records: []contracts.SignalRecord{
		selected(jan, "A", 1, contracts.None()),
	}}

	snaps, warnings, err := NewConstructor(DefaultConstraints(), logger.Nop()).Construct(context.Background(), signals)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.False(t, snaps[0].PortfolioReturn.Defined())
	assert.True(t, warnings.Has(contracts.WarnEmptyPortfolio))
}

func TestConstructor_TooManySelected(t *testing.T) {
	signals := &contracts.SignalPanel{Records: []contracts.SignalRecord{
		selected(jan, "A", 1, contracts.Some(0.1)),
		selected(jan, "B", 2, contracts.Some(0.1)),
	}}

	_, _, err := NewConstructor(Constraints{MaxPositions: 1, NotionalPerPosition: 1}, logger.Nop()).
		Construct(context.Background(), signals)
	assert.Error(t, err)
}

func TestConstraints(t *testing.T) {
	c := DefaultConstraints()
	require.NoError(t, c.Validate())
	assert.InDelta(t, 20.0, c.Notional(), 1e-12)

	assert.Error(t, Constraints{MaxPositions: 0, NotionalPerPosition: 1}.Validate())
	assert.Error(t, Constraints{MaxPositions: 1, NotionalPerPosition: 0}.Validate())
}
