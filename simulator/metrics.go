package simulator

import (
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// summarize turns one lineup's per-draw scores and payouts into the full
// risk metric set.
func summarize(lineupID uuid.UUID, contest types.Contest, scores, payouts []float64, wins, cashes int, degraded, partial bool) *types.SimulationResult {
	n := len(scores)
	result := &types.SimulationResult{
		LineupID: lineupID,
		Draws:    n,
		Degraded: degraded,
		Partial:  partial,
	}
	if n == 0 {
		return result
	}

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)

	result.Mean = stat.Mean(sorted, nil)
	if n > 1 {
		result.StdDev = stat.StdDev(sorted, nil)
	}
	result.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	result.P25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	result.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	result.P75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	result.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	result.WinRate = float64(wins) / float64(n)
	result.CashRate = float64(cashes) / float64(n)

	// Per-draw return relative to the entry fee; ROI is its mean.
	// Sharpe scales ROI by the score spread, not the payout spread.
	returns := make([]float64, n)
	for i, payout := range payouts {
		returns[i] = (payout - contest.EntryFee) / contest.EntryFee
	}
	result.ROI = stat.Mean(returns, nil)
	if result.StdDev > 0 {
		result.Sharpe = result.ROI / result.StdDev
	}

	result.Kelly = types.KellyFraction(result.WinRate, contest.TopMultiple()-1)
	return result
}
