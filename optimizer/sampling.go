package optimizer

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// RankFunc scores candidate lineups for the sampling-guided solver.
// Higher is better. The simulator package supplies an ROI-based
// implementation; a nil RankFunc falls back to total projection.
type RankFunc func(ctx context.Context, lineups []types.Lineup) ([]float64, error)

// SamplingOptions tunes the sampling-guided solver.
type SamplingOptions struct {
	Oversample  int      // candidate pool multiplier over n, default 3
	MaxAttempts int      // random fill attempts per wanted candidate, default 25
	Rank        RankFunc // nil ranks by total projection
}

// SolveSamplingGuided builds a portfolio by weighted random construction
// instead of exhaustive search: oversample valid candidate lineups, rank
// them, then greedily accept the best that respect overlap and exposure
// bounds. Trades optimality for speed and upside-aware ranking on large
// pools.
func (s *Solver) SolveSamplingGuided(ctx context.Context, pool []types.Player, ruleset types.Ruleset, n int, opts SamplingOptions) (types.PortfolioResult, error) {
	if n <= 0 {
		n = ruleset.NumLineups
	}
	if n <= 0 {
		n = 1
	}
	if opts.Oversample <= 0 {
		opts.Oversample = 3
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 25
	}
	if err := s.preflight(pool, ruleset); err != nil {
		return types.PortfolioResult{}, err
	}

	portfolio := types.NewPortfolio()
	result := types.PortfolioResult{Portfolio: portfolio, Requested: n}

	target := n * opts.Oversample
	candidates := s.sampleCandidates(ctx, pool, ruleset, target, target*opts.MaxAttempts)
	if len(candidates) == 0 {
		result.Stopped = types.StopInfeasible
		result.Reason = "no valid lineup found by sampling"
		return result, nil
	}

	ranks := make([]float64, len(candidates))
	if opts.Rank != nil {
		scored, err := opts.Rank(ctx, candidates)
		if err != nil {
			return result, err
		}
		copy(ranks, scored)
	} else {
		for i, l := range candidates {
			ranks[i] = l.TotalProjection
		}
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return ranks[order[a]] > ranks[order[b]] })

	maxShared := ruleset.MaxSharedPlayers()
	minNeeds := minExposureNeeds(pool, n)
	for _, idx := range order {
		if portfolio.Size() >= n {
			break
		}
		candidate := candidates[idx]
		if !s.admissible(candidate, portfolio, pool, maxShared, n) {
			continue
		}
		// Once the remaining capacity is all spoken for by minimum
		// exposure deficits, only candidates that reduce a deficit may
		// take a seat.
		if deficit := exposureDeficit(minNeeds, portfolio); deficit > 0 && deficit >= n-portfolio.Size() {
			if !reducesDeficit(candidate, minNeeds, portfolio) {
				continue
			}
		}
		portfolio.Add(candidate)
	}

	if portfolio.Size() < n {
		result.Stopped = types.StopDuplicateExhaustion
		if exposureDeficit(minNeeds, portfolio) > 0 {
			result.Reason = "sampling could not satisfy minimum exposure bounds"
			result.BlockedBy = types.FamilyExposure
		} else {
			result.Reason = "sampling produced too few distinct admissible lineups"
			result.BlockedBy = types.FamilyOverlap
		}
	}
	s.log.WithFields(logrus.Fields{
		"requested":  n,
		"produced":   portfolio.Size(),
		"candidates": len(candidates),
	}).Info("Sampling-guided solve finished")
	return result, nil
}

// sampleCandidates fills lineups slot by slot with weighted random picks
// until it has target distinct valid lineups or the attempt budget runs
// out.
func (s *Solver) sampleCandidates(ctx context.Context, pool []types.Player, ruleset types.Ruleset, target, attempts int) []types.Lineup {
	jitter := newJitterTable(pool, 1.0, s.rng)
	mustInclude := make(map[uuid.UUID]bool)
	for _, p := range pool {
		if p.Locked {
			mustInclude[p.ID] = true
		}
	}
	slots := s.buildCandidates(pool, ruleset, solveExtras{}, jitter, mustInclude)

	var out []types.Lineup
	seen := make(map[string]bool)

	for attempt := 0; attempt < attempts && len(out) < target; attempt++ {
		if attempt%256 == 0 {
			select {
			case <-ctx.Done():
				return out
			default:
			}
		}
		lineup, ok := s.sampleOne(slots, ruleset, mustInclude)
		if !ok {
			continue
		}
		if !ValidateWithLocks(lineup, ruleset, pool).OK {
			continue
		}
		key := lineupKey(lineup)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, lineup)
	}
	return out
}

// sampleOne fills every slot with one weighted random pick among the top
// candidates. Locked players are placed greedily at the first slot that
// takes them.
func (s *Solver) sampleOne(slots []slotCandidates, ruleset types.Ruleset, mustInclude map[uuid.UUID]bool) (types.Lineup, bool) {
	used := make(map[uuid.UUID]bool)
	assignments := make([]types.SlotAssignment, 0, len(slots))
	salary := 0

	for i, sc := range slots {
		picked := false

		// Unplaced locked player eligible here takes the slot outright.
		for _, p := range sc.players {
			if mustInclude[p.ID] && !used[p.ID] {
				used[p.ID] = true
				salary += p.Salary
				assignments = append(assignments, types.SlotAssignment{Slot: ruleset.Slots[i], Player: p})
				picked = true
				break
			}
		}
		if picked {
			continue
		}

		var ids []int
		var weights []float64
		totalWeight := 0.0
		for ci, p := range sc.players {
			if used[p.ID] {
				continue
			}
			if salary+p.Salary > ruleset.SalaryCap {
				continue
			}
			w := sc.scores[ci]
			if w <= 0 {
				w = 0.01
			}
			ids = append(ids, ci)
			weights = append(weights, w)
			totalWeight += w
			if len(ids) >= s.opts.CandidatesPerSlot {
				break
			}
		}
		if len(ids) == 0 {
			return types.Lineup{}, false
		}
		r := s.rng.Float64() * totalWeight
		chosen := ids[len(ids)-1]
		for k, ci := range ids {
			r -= weights[k]
			if r <= 0 {
				chosen = ci
				break
			}
		}
		p := sc.players[chosen]
		used[p.ID] = true
		salary += p.Salary
		assignments = append(assignments, types.SlotAssignment{Slot: ruleset.Slots[i], Player: p})
	}
	return types.NewLineup(assignments), true
}

// admissible checks a ranked candidate against the already accepted
// portfolio: overlap bound and per-player maximum exposure.
func (s *Solver) admissible(candidate types.Lineup, portfolio *types.Portfolio, pool []types.Player, maxShared, n int) bool {
	for _, accepted := range portfolio.Lineups {
		if candidate.Overlap(accepted) > maxShared {
			return false
		}
	}
	forcedOut := s.exposureForcedOut(pool, portfolio, n)
	for _, sa := range candidate.Slots {
		if forcedOut[sa.Player.ID] {
			return false
		}
	}
	return true
}

// minExposureNeeds maps each player with a minimum exposure bound to the
// lineup count required for a portfolio of n.
func minExposureNeeds(pool []types.Player, n int) map[uuid.UUID]int {
	needs := make(map[uuid.UUID]int)
	for _, p := range pool {
		if p.MinExposure <= 0 {
			continue
		}
		if need := int(math.Floor(p.MinExposure / 100.0 * float64(n))); need > 0 {
			needs[p.ID] = need
		}
	}
	return needs
}

// exposureDeficit sums the minimum exposure lineups still owed.
func exposureDeficit(needs map[uuid.UUID]int, portfolio *types.Portfolio) int {
	total := 0
	for id, need := range needs {
		if d := need - portfolio.Usage(id); d > 0 {
			total += d
		}
	}
	return total
}

// reducesDeficit reports whether the candidate carries any player still
// short of its minimum exposure.
func reducesDeficit(candidate types.Lineup, needs map[uuid.UUID]int, portfolio *types.Portfolio) bool {
	for _, sa := range candidate.Slots {
		if need, ok := needs[sa.Player.ID]; ok && portfolio.Usage(sa.Player.ID) < need {
			return true
		}
	}
	return false
}

// lineupKey is an order-independent identity over the player set.
func lineupKey(l types.Lineup) string {
	ids := make([]string, 0, len(l.Slots))
	for _, sa := range l.Slots {
		ids = append(ids, sa.Player.ID.String())
	}
	sort.Strings(ids)
	key := ""
	for _, id := range ids {
		key += id
	}
	return key
}
