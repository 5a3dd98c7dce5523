package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/lineup-engine/optimizer"
	"github.com/stitts-dev/lineup-engine/pkg/types"
)

func newShowdownSimulator(t *testing.T, contest types.Contest, opts SimOptions) (*ContestSimulator, []types.Player) {
	t.Helper()
	pool := showdownPool()
	corr := optimizer.BuildCorrelations(pool)
	sim, err := NewContestSimulator(pool, showdownRuleset(), contest, corr, opts)
	require.NoError(t, err)
	return sim, pool
}

func TestSimulateBasicMetrics(t *testing.T) {
	sim, pool := newShowdownSimulator(t, smallContest(), SimOptions{Draws: 4000, Seed: 1})
	lineup := showdownLineup(pool, "Mahomes", "Rice", "Adams")

	result, err := sim.Simulate(context.Background(), lineup)
	require.NoError(t, err)
	require.Equal(t, 4000, result.Draws)
	assert.False(t, result.Partial)
	assert.False(t, result.Degraded)

	// Mean tracks summed projections; clipping at an asymmetric
	// floor/ceiling shifts it up slightly.
	assert.InDelta(t, lineup.TotalProjection, result.Mean, 4.0)
	assert.Positive(t, result.StdDev)

	assert.LessOrEqual(t, result.P10, result.P25)
	assert.LessOrEqual(t, result.P25, result.P50)
	assert.LessOrEqual(t, result.P50, result.P75)
	assert.LessOrEqual(t, result.P75, result.P90)

	assert.GreaterOrEqual(t, result.WinRate, 0.0)
	assert.LessOrEqual(t, result.WinRate, 1.0)
	assert.GreaterOrEqual(t, result.CashRate, result.WinRate, "cashing is at least as common as winning")
	assert.InDelta(t, result.ROI/result.StdDev, result.Sharpe, 1e-9)
	assert.GreaterOrEqual(t, result.Kelly, 0.0)
	assert.LessOrEqual(t, result.Kelly, 0.25)
}

func TestSimulateAlwaysLosingContest(t *testing.T) {
	contest := smallContest()
	contest.PayoutCurve = nil // nothing ever pays

	sim, pool := newShowdownSimulator(t, contest, SimOptions{Draws: 500, Seed: 2})
	result, err := sim.Simulate(context.Background(), showdownLineup(pool, "Mahomes", "Rice", "Adams"))
	require.NoError(t, err)

	assert.InDelta(t, -1.0, result.ROI, 1e-9, "losing every draw returns exactly -100%")
	assert.Zero(t, result.CashRate)
	assert.Zero(t, result.Kelly)
}

func TestSimulateAlwaysCashingContest(t *testing.T) {
	contest := smallContest()
	// Every rank pays triple.
	contest.PayoutCurve = []types.PayoutTier{{FromRank: 1, ToRank: contest.FieldSize, Multiple: 3}}

	sim, pool := newShowdownSimulator(t, contest, SimOptions{Draws: 500, Seed: 3})
	result, err := sim.Simulate(context.Background(), showdownLineup(pool, "Mahomes", "Rice", "Adams"))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, result.ROI, 1e-9, "flat 3x payout returns exactly +200%")
	assert.InDelta(t, 1.0, result.CashRate, 1e-9)
	assert.InDelta(t, result.ROI/result.StdDev, result.Sharpe, 1e-9,
		"Sharpe is ROI over the score spread")
}

func TestSimulateAllSharesFieldAndDraws(t *testing.T) {
	sim, pool := newShowdownSimulator(t, smallContest(), SimOptions{Draws: 1000, Seed: 4, Workers: 3})
	lineups := []types.Lineup{
		showdownLineup(pool, "Mahomes", "Rice", "Pacheco"),
		showdownLineup(pool, "Garoppolo", "Adams", "Jacobs"),
		showdownLineup(pool, "Mahomes", "Adams", "Rice"),
	}

	results, err := sim.SimulateAll(context.Background(), lineups)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		require.NotNil(t, r, "missing result %d", i)
		assert.Equal(t, lineups[i].ID, r.LineupID)
		assert.Equal(t, 1000, r.Draws)
	}
}

func TestSimulateDeterministicUnderSeed(t *testing.T) {
	contest := smallContest()
	lineupPool := showdownPool()
	lineup := showdownLineup(lineupPool, "Mahomes", "Rice", "Adams")

	run := func() *types.SimulationResult {
		sim, _ := newShowdownSimulator(t, contest, SimOptions{Draws: 800, Seed: 5, Workers: 2})
		result, err := sim.Simulate(context.Background(), lineup)
		require.NoError(t, err)
		return result
	}

	a, b := run(), run()
	assert.Equal(t, *a, *b, "same seed must reproduce every metric exactly")
}

func TestSimulateCancelledContextReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim, pool := newShowdownSimulator(t, smallContest(), SimOptions{Draws: 2000, Seed: 6})
	result, err := sim.Simulate(ctx, showdownLineup(pool, "Mahomes", "Rice", "Adams"))
	require.NoError(t, err)
	assert.True(t, result.Partial)
	assert.Less(t, result.Draws, 2000)
}

func TestSimulateTimeoutReturnsPartial(t *testing.T) {
	sim, pool := newShowdownSimulator(t, smallContest(), SimOptions{Draws: 2000, Seed: 8, Timeout: time.Nanosecond})
	result, err := sim.Simulate(context.Background(), showdownLineup(pool, "Mahomes", "Rice", "Adams"))
	require.NoError(t, err)
	assert.True(t, result.Partial)
	assert.Less(t, result.Draws, 2000)
}

func TestRankByROIOrdersCandidates(t *testing.T) {
	sim, pool := newShowdownSimulator(t, smallContest(), SimOptions{Draws: 500, Seed: 7})
	lineups := []types.Lineup{
		showdownLineup(pool, "Mahomes", "Rice", "Adams"),
		showdownLineup(pool, "Garoppolo", "Jacobs", "Pacheco"),
	}

	ranks, err := sim.RankByROI()(context.Background(), lineups)
	require.NoError(t, err)
	require.Len(t, ranks, 2)
	assert.Greater(t, ranks[0], ranks[1], "the stronger roster should simulate to a better ROI")
}

func TestNewContestSimulatorRejectsBadInput(t *testing.T) {
	pool := showdownPool()
	corr := optimizer.BuildCorrelations(pool)

	bad := smallContest()
	bad.EntryFee = 0
	_, err := NewContestSimulator(pool, showdownRuleset(), bad, corr, SimOptions{})
	assert.Error(t, err)

	dup := append([]types.Player{pool[0]}, pool...)
	_, err = NewContestSimulator(dup, showdownRuleset(), smallContest(), corr, SimOptions{})
	assert.Error(t, err)
}
