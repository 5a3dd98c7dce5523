package simulator

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// fillAttempts bounds the Bernoulli resampling loop before the generator
// falls back to weighted per-slot construction.
const fillAttempts = 20

// FieldGenerator builds the opposing contest field from projected
// ownership: each field lineup includes players roughly in proportion to
// how often the real field rosters them.
type FieldGenerator struct {
	pool      []types.Player
	ruleset   types.Ruleset
	ownership []float64
	rng       *rand.Rand
}

// NewFieldGenerator prepares a generator. When the pool carries no
// ownership projections at all, ownership is synthesized from salary
// value so the field still prefers obvious plays.
func NewFieldGenerator(pool []types.Player, ruleset types.Ruleset, seed int64) *FieldGenerator {
	g := &FieldGenerator{
		pool:    pool,
		ruleset: ruleset,
		rng:     rand.New(rand.NewSource(seed)),
	}
	g.ownership = effectiveOwnership(pool, len(ruleset.Slots))
	return g
}

// effectiveOwnership returns per-player inclusion probabilities. Real
// projections are used as-is; an all-zero pool gets value-proportional
// probabilities normalized so an average field lineup fills its slots.
func effectiveOwnership(pool []types.Player, slots int) []float64 {
	out := make([]float64, len(pool))
	any := false
	for i, p := range pool {
		out[i] = p.Ownership
		if p.Ownership > 0 {
			any = true
		}
	}
	if any {
		return out
	}

	totalValue := 0.0
	for _, p := range pool {
		totalValue += p.Value()
	}
	if totalValue == 0 {
		uniform := float64(slots) / float64(len(pool))
		for i := range out {
			out[i] = clampProb(uniform)
		}
		return out
	}
	for i, p := range pool {
		out[i] = clampProb(p.Value() / totalValue * float64(slots))
	}
	return out
}

func clampProb(p float64) float64 {
	if p < 0.01 {
		return 0.01
	}
	if p > 0.9 {
		return 0.9
	}
	return p
}

// Generate builds size field lineups. Each one is sampled by Bernoulli
// inclusion on ownership and kept only when it forms a structurally
// valid roster: slots fillable, under the cap, no duplicates. Stacking
// and group rules are entrant constraints and do not bind the field.
func (g *FieldGenerator) Generate(size int) []types.Lineup {
	out := make([]types.Lineup, 0, size)
	for len(out) < size {
		lineup, ok := g.generateOne()
		if !ok {
			lineup = g.weightedFill()
		}
		out = append(out, lineup)
	}
	return out
}

func (g *FieldGenerator) generateOne() (types.Lineup, bool) {
	for attempt := 0; attempt < fillAttempts; attempt++ {
		var included []types.Player
		for i, p := range g.pool {
			if p.Banned {
				continue
			}
			if g.rng.Float64() < g.ownership[i] {
				included = append(included, p)
			}
		}
		if lineup, ok := g.assemble(included); ok {
			return lineup, true
		}
	}
	return types.Lineup{}, false
}

// assemble fits the included players into the roster slots greedily,
// most constrained players first within each slot pass.
func (g *FieldGenerator) assemble(included []types.Player) (types.Lineup, bool) {
	used := make(map[uuid.UUID]bool)
	salary := 0
	assignments := make([]types.SlotAssignment, 0, len(g.ruleset.Slots))

	for _, slot := range g.ruleset.Slots {
		placed := false
		for _, p := range included {
			if used[p.ID] || !slot.Allows(p) {
				continue
			}
			if salary+p.Salary > g.ruleset.SalaryCap {
				continue
			}
			used[p.ID] = true
			salary += p.Salary
			assignments = append(assignments, types.SlotAssignment{Slot: slot, Player: p})
			placed = true
			break
		}
		if !placed {
			return types.Lineup{}, false
		}
	}
	return types.NewLineup(assignments), true
}

// weightedFill is the fallback when Bernoulli sampling keeps producing
// unbuildable rosters: fill slot by slot with ownership-weighted picks,
// cheapest-first retry on cap pressure.
func (g *FieldGenerator) weightedFill() types.Lineup {
	used := make(map[uuid.UUID]bool)
	salary := 0
	assignments := make([]types.SlotAssignment, 0, len(g.ruleset.Slots))

	for _, slot := range g.ruleset.Slots {
		var candidates []int
		total := 0.0
		for i, p := range g.pool {
			if p.Banned || used[p.ID] || !slot.Allows(p) {
				continue
			}
			if salary+p.Salary > g.ruleset.SalaryCap {
				continue
			}
			candidates = append(candidates, i)
			total += g.ownership[i]
		}
		if len(candidates) == 0 {
			// Salary pressure: take the cheapest eligible player even
			// over the cap rather than return a short roster.
			cheapest := -1
			for i, p := range g.pool {
				if p.Banned || used[p.ID] || !slot.Allows(p) {
					continue
				}
				if cheapest < 0 || p.Salary < g.pool[cheapest].Salary {
					cheapest = i
				}
			}
			if cheapest < 0 {
				break
			}
			candidates = append(candidates, cheapest)
			total = g.ownership[cheapest]
		}
		r := g.rng.Float64() * total
		chosen := candidates[len(candidates)-1]
		for _, i := range candidates {
			r -= g.ownership[i]
			if r <= 0 {
				chosen = i
				break
			}
		}
		p := g.pool[chosen]
		used[p.ID] = true
		salary += p.Salary
		assignments = append(assignments, types.SlotAssignment{Slot: slot, Player: p})
	}
	return types.NewLineup(assignments)
}
