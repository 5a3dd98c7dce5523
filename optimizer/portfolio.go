package optimizer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// SolveMany produces up to n lineups sequentially, layering three
// portfolio-level constraints on each solve: pairwise overlap against
// every accepted lineup, min/max exposure bounds, and the diversity
// floor. Stopping short is a normal outcome reported on the result, not
// an error.
func (s *Solver) SolveMany(ctx context.Context, pool []types.Player, ruleset types.Ruleset, n int) (types.PortfolioResult, error) {
	if n <= 0 {
		n = ruleset.NumLineups
	}
	if n <= 0 {
		n = 1
	}
	if s.opts.MaxLineups > 0 && n > s.opts.MaxLineups {
		n = s.opts.MaxLineups
	}
	if err := s.preflight(pool, ruleset); err != nil {
		return types.PortfolioResult{}, err
	}

	var deadline time.Time
	if s.opts.TimeBudget > 0 {
		deadline = time.Now().Add(s.opts.TimeBudget)
	}

	portfolio := types.NewPortfolio()
	result := types.PortfolioResult{Portfolio: portfolio, Requested: n}
	maxShared := ruleset.MaxSharedPlayers()
	var acceptedSets []map[uuid.UUID]bool

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			result.Stopped = types.StopCancelled
			result.Reason = "context cancelled"
			return result, nil
		default:
		}

		extras := solveExtras{
			forcedIn:     s.exposureForcedIn(pool, portfolio, i, n),
			forcedOut:    s.exposureForcedOut(pool, portfolio, n),
			acceptedSets: acceptedSets,
			maxShared:    maxShared,
			deadline:     deadline,
		}

		// Tighten the overlap bound when accepted lineups are clustering
		// below the diversity floor.
		if s.opts.DiversityFloor > 0 && portfolio.Size() >= 2 {
			if DiversityScore(portfolio) < s.opts.DiversityFloor && extras.maxShared > 1 {
				extras.maxShared--
			}
		}

		res := s.solve(ctx, pool, ruleset, extras)
		if res.Status != types.SolveOptimal {
			switch {
			case res.Status == types.SolveTimeout:
				result.Stopped = types.StopTimeout
				result.Reason = fmt.Sprintf("time budget exhausted after %d lineups", portfolio.Size())
			case portfolio.Size() > 0 && res.BlockedBy == types.FamilyOverlap:
				result.Stopped = types.StopDuplicateExhaustion
				result.Reason = fmt.Sprintf("no lineup with at most %d shared players remains", extras.maxShared)
				result.BlockedBy = res.BlockedBy
			default:
				result.Stopped = types.StopInfeasible
				result.Reason = fmt.Sprintf("no feasible lineup for iteration %d", i+1)
				result.BlockedBy = res.BlockedBy
			}
			break
		}

		portfolio.Add(*res.Lineup)
		acceptedSets = append(acceptedSets, res.Lineup.PlayerSet())
	}

	s.log.WithFields(logrus.Fields{
		"requested": n,
		"produced":  portfolio.Size(),
		"stopped":   result.Stopped,
	}).Info("Portfolio solve finished")
	return result, nil
}

// exposureForcedOut excludes players that have reached their maximum
// exposure count for a portfolio of n lineups.
func (s *Solver) exposureForcedOut(pool []types.Player, portfolio *types.Portfolio, n int) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool)
	for _, p := range pool {
		if p.MaxExposure <= 0 || p.MaxExposure >= 100 {
			continue
		}
		ceiling := int(math.Ceil(p.MaxExposure / 100.0 * float64(n)))
		if portfolio.Usage(p.ID) >= ceiling {
			out[p.ID] = true
		}
	}
	return out
}

// exposureForcedIn requires players whose minimum exposure can no longer
// be met unless they appear in every remaining lineup. i is the current
// iteration, n the portfolio size.
func (s *Solver) exposureForcedIn(pool []types.Player, portfolio *types.Portfolio, i, n int) map[uuid.UUID]bool {
	in := make(map[uuid.UUID]bool)
	remaining := n - i
	for _, p := range pool {
		if p.MinExposure <= 0 {
			continue
		}
		floor := int(math.Floor(p.MinExposure / 100.0 * float64(n)))
		need := floor - portfolio.Usage(p.ID)
		if need > 0 && need >= remaining {
			in[p.ID] = true
		}
	}
	return in
}
