package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

func TestSolveSamplingGuidedProducesValidPortfolio(t *testing.T) {
	pool := nflPool()
	ruleset := classicRuleset()
	ruleset.MaxOverlap = 0.8
	solver := NewSolver(Options{Seed: 41})

	result, err := solver.SolveSamplingGuided(context.Background(), pool, ruleset, 5, SamplingOptions{})
	require.NoError(t, err)
	require.True(t, result.Complete(), "stopped: %s (%s)", result.Stopped, result.Reason)

	maxShared := ruleset.MaxSharedPlayers()
	lineups := result.Portfolio.Lineups
	for i, l := range lineups {
		assert.True(t, ValidateWithLocks(l, ruleset, pool).OK, "lineup %d invalid", i)
		for j := i + 1; j < len(lineups); j++ {
			assert.LessOrEqual(t, l.Overlap(lineups[j]), maxShared)
		}
	}
}

func TestSolveSamplingGuidedHonorsLocks(t *testing.T) {
	pool := nflPool()
	poolPlayer(pool, "Kittle").Locked = true
	solver := NewSolver(Options{Seed: 43})

	result, err := solver.SolveSamplingGuided(context.Background(), pool, classicRuleset(), 3, SamplingOptions{})
	require.NoError(t, err)
	require.True(t, result.Complete(), "stopped: %s (%s)", result.Stopped, result.Reason)

	for _, l := range result.Portfolio.Lineups {
		assert.True(t, l.Contains(poolPlayer(pool, "Kittle").ID))
	}
}

func TestSolveSamplingGuidedMinExposure(t *testing.T) {
	pool := nflPool()
	poolPlayer(pool, "Kittle").MinExposure = 60
	ruleset := classicRuleset()
	ruleset.MaxOverlap = 0.8
	solver := NewSolver(Options{Seed: 67})

	result, err := solver.SolveSamplingGuided(context.Background(), pool, ruleset, 5, SamplingOptions{Oversample: 10})
	require.NoError(t, err)
	require.True(t, result.Complete(), "stopped: %s (%s)", result.Stopped, result.Reason)

	// floor(60% of 5) = 3 lineups at least.
	usage := result.Portfolio.Usage(poolPlayer(pool, "Kittle").ID)
	assert.GreaterOrEqual(t, usage, 3)
}

func TestSolveSamplingGuidedUsesRankFunc(t *testing.T) {
	pool := nflPool()
	ruleset := classicRuleset()
	solver := NewSolver(Options{Seed: 47})

	// Invert the default preference: lowest projection ranks first.
	rank := func(ctx context.Context, lineups []types.Lineup) ([]float64, error) {
		out := make([]float64, len(lineups))
		for i, l := range lineups {
			out[i] = -l.TotalProjection
		}
		return out, nil
	}

	inverted, err := solver.SolveSamplingGuided(context.Background(), pool, ruleset, 1, SamplingOptions{Rank: rank})
	require.NoError(t, err)
	straight, err := NewSolver(Options{Seed: 47}).SolveSamplingGuided(context.Background(), pool, ruleset, 1, SamplingOptions{})
	require.NoError(t, err)

	require.Equal(t, 1, inverted.Portfolio.Size())
	require.Equal(t, 1, straight.Portfolio.Size())
	assert.Less(t, inverted.Portfolio.Lineups[0].TotalProjection,
		straight.Portfolio.Lineups[0].TotalProjection)
}

func TestSolveSamplingGuidedDeterministicUnderSeed(t *testing.T) {
	pool := nflPool()
	ruleset := classicRuleset()
	ruleset.MaxOverlap = 0.8

	a, err := NewSolver(Options{Seed: 53}).SolveSamplingGuided(context.Background(), pool, ruleset, 3, SamplingOptions{})
	require.NoError(t, err)
	b, err := NewSolver(Options{Seed: 53}).SolveSamplingGuided(context.Background(), pool, ruleset, 3, SamplingOptions{})
	require.NoError(t, err)

	require.Equal(t, a.Portfolio.Size(), b.Portfolio.Size())
	for i := range a.Portfolio.Lineups {
		assert.Equal(t, lineupNames(a.Portfolio.Lineups[i]), lineupNames(b.Portfolio.Lineups[i]))
	}
}

func TestSolveSamplingGuidedInfeasiblePool(t *testing.T) {
	// Only two WRs for three WR slots: preflight passes per slot, but no
	// sample can ever complete a roster.
	pool := []types.Player{
		testPlayer("QB A", "QB", "KC", "LV", 6000, 20.0),
		testPlayer("RB A", "RB", "KC", "LV", 5000, 12.0),
		testPlayer("RB B", "RB", "SF", "SEA", 5200, 12.5),
		testPlayer("WR A", "WR", "SF", "SEA", 5500, 14.0),
		testPlayer("WR B", "WR", "DAL", "NYG", 5600, 14.5),
	}
	ruleset := types.Ruleset{
		Slots: []types.RosterSlot{
			{Name: "QB", Eligible: []string{"QB"}},
			{Name: "WR1", Eligible: []string{"WR"}},
			{Name: "WR2", Eligible: []string{"WR"}},
			{Name: "WR3", Eligible: []string{"WR"}},
		},
		SalaryCap: 50000,
	}
	solver := NewSolver(Options{Seed: 59})

	result, err := solver.SolveSamplingGuided(context.Background(), pool, ruleset, 2, SamplingOptions{MaxAttempts: 5})
	require.NoError(t, err)
	assert.False(t, result.Complete())
	assert.Equal(t, types.StopInfeasible, result.Stopped)
}
