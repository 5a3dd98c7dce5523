package optimizer

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// objectiveScore computes the base linear objective value for a player.
// Value is scaled to the same magnitude as raw projection so that salary
// pruning bounds stay meaningful across objectives.
func objectiveScore(p types.Player, objective types.Objective) float64 {
	switch objective {
	case types.ObjectiveValue:
		return p.Value()
	case types.ObjectiveLeverage:
		return leverageScore(p)
	default:
		return p.Projection
	}
}

// leverageScore rewards players whose projection is high relative to their
// projected ownership. A chalk player keeps roughly his projection; a low
// owned player with the same projection scores higher.
func leverageScore(p types.Player) float64 {
	ownership := p.Ownership
	if ownership < 0.01 {
		ownership = 0.01
	}
	return p.Projection * (1.0 + 0.5*(0.15-ownership)/0.15)
}

// jitterTable assigns each player a bounded multiplicative perturbation
// drawn once per solve, scaled by the ruleset's randomness coefficient.
// Repeated solves with a shared rng walk through different tables, which
// is the only source of diversity besides the explicit anti-duplicate
// constraints.
type jitterTable map[uuid.UUID]float64

func newJitterTable(pool []types.Player, randomness float64, rng *rand.Rand) jitterTable {
	table := make(jitterTable, len(pool))
	for _, p := range pool {
		// Multiplier in [1-r/4, 1+r/4]: bounded so jitter cannot flip
		// a clearly better player below a clearly worse one.
		table[p.ID] = 1.0 + randomness*(rng.Float64()-0.5)/2.0
	}
	return table
}

func (t jitterTable) score(p types.Player, objective types.Objective) float64 {
	base := objectiveScore(p, objective)
	if m, ok := t[p.ID]; ok {
		return base * m
	}
	return base
}
