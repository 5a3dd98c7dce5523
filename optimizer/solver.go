package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-engine/pkg/logger"
	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// Options configures a Solver. Zero values fall back to sensible defaults.
type Options struct {
	TimeBudget        time.Duration // per SolveOne / whole SolveMany budget
	Seed              int64         // rng seed; fixed seed gives deterministic output
	CandidatesPerSlot int           // branching width per slot
	MaxLineups        int           // hard cap on portfolio size, 0 = unlimited
	DiversityFloor    float64       // SolveMany tightens overlap below this score
}

const defaultCandidatesPerSlot = 15

// Solver produces lineups satisfying a ruleset while maximizing the
// configured objective. One solver serves one request; it is not safe for
// concurrent use because of the shared rng.
type Solver struct {
	opts Options
	rng  *rand.Rand
	log  *logrus.Entry
}

// NewSolver creates a solver. A zero Seed seeds from the clock.
func NewSolver(opts Options) *Solver {
	if opts.CandidatesPerSlot <= 0 {
		opts.CandidatesPerSlot = defaultCandidatesPerSlot
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Solver{
		opts: opts,
		rng:  rand.New(rand.NewSource(seed)),
		log:  logger.WithSolveContext(uuid.New().String(), ""),
	}
}

// solveExtras carries the per-iteration constraints SolveMany layers on
// top of the ruleset.
type solveExtras struct {
	forcedIn     map[uuid.UUID]bool
	forcedOut    map[uuid.UUID]bool
	acceptedSets []map[uuid.UUID]bool
	maxShared    int
	deadline     time.Time // zero = no deadline
}

// SolveOne builds and solves one constrained lineup. InvalidRuleset and
// InsufficientPool are returned as errors; Infeasible and Timeout are
// normal statuses on the result.
func (s *Solver) SolveOne(ctx context.Context, pool []types.Player, ruleset types.Ruleset) (types.SolveResult, error) {
	if err := s.preflight(pool, ruleset); err != nil {
		return types.SolveResult{}, err
	}
	extras := solveExtras{maxShared: len(ruleset.Slots)}
	if s.opts.TimeBudget > 0 {
		extras.deadline = time.Now().Add(s.opts.TimeBudget)
	}
	return s.solve(ctx, pool, ruleset, extras), nil
}

// preflight rejects programmer-level errors before any search.
func (s *Solver) preflight(pool []types.Player, ruleset types.Ruleset) error {
	if err := ruleset.Validate(); err != nil {
		return err
	}
	if err := types.ValidatePool(pool); err != nil {
		return err
	}
	for _, slot := range ruleset.Slots {
		eligible := 0
		for _, p := range pool {
			if !p.Banned && slot.Allows(p) {
				eligible++
			}
		}
		if eligible == 0 {
			return fmt.Errorf("%w: no eligible players for slot %s", types.ErrInsufficientPool, slot.Name)
		}
	}
	return nil
}

// slotCandidates holds the scored, ordered branching list for one slot.
type slotCandidates struct {
	players   []types.Player
	scores    []float64
	minSalary int
	maxScore  float64
}

// pruneCounters tracks why branches died, for the best-effort
// infeasibility explanation.
type pruneCounters struct {
	salary   int64
	teamCap  int64
	overlap  int64
	stacking int64
	group    int64
	lockBan  int64
	exposure int64
}

func (pc pruneCounters) dominant() types.ConstraintFamily {
	best := types.FamilySalary
	max := pc.salary
	for _, c := range []struct {
		n int64
		f types.ConstraintFamily
	}{
		{pc.teamCap, types.FamilyTeamLimit},
		{pc.overlap, types.FamilyOverlap},
		{pc.stacking, types.FamilyStacking},
		{pc.group, types.FamilyGroupRules},
		{pc.lockBan, types.FamilyLockBan},
		{pc.exposure, types.FamilyExposure},
	} {
		if c.n > max {
			max = c.n
			best = c.f
		}
	}
	return best
}

func (s *Solver) solve(ctx context.Context, pool []types.Player, ruleset types.Ruleset, extras solveExtras) types.SolveResult {
	start := time.Now()
	jitter := newJitterTable(pool, ruleset.Randomness, s.rng)

	mustInclude := make(map[uuid.UUID]bool)
	for _, p := range pool {
		if p.Locked {
			mustInclude[p.ID] = true
		}
	}
	for id := range extras.forcedIn {
		mustInclude[id] = true
	}

	slots := s.buildCandidates(pool, ruleset, extras, jitter, mustInclude)

	// Suffix bounds over remaining slots for salary pruning and the
	// optimistic branch-and-bound objective bound.
	n := len(slots)
	minSalarySuffix := make([]int, n+1)
	maxScoreSuffix := make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		minSalarySuffix[i] = minSalarySuffix[i+1] + slots[i].minSalary
		maxScoreSuffix[i] = maxScoreSuffix[i+1] + slots[i].maxScore
	}

	var (
		counters   pruneCounters
		nodes      int64
		timedOut   bool
		truncated  bool
		width      = s.opts.CandidatesPerSlot
		best       []types.SlotAssignment
		bestScore  float64
		haveBest   bool
		assignment = make([]types.SlotAssignment, 0, n)
		used       = make(map[uuid.UUID]bool, n)
		teamCount  = make(map[string]int)
		shared     = make([]int, len(extras.acceptedSets))
	)

	expired := func() bool {
		if nodes%1024 != 0 {
			return timedOut
		}
		if timedOut {
			return true
		}
		select {
		case <-ctx.Done():
			timedOut = true
		default:
			if !extras.deadline.IsZero() && time.Now().After(extras.deadline) {
				timedOut = true
			}
		}
		return timedOut
	}

	var dfs func(slotIdx int, salary int, score float64)
	dfs = func(slotIdx int, salary int, score float64) {
		nodes++
		if expired() {
			return
		}
		if slotIdx == n {
			lineup := types.Lineup{Slots: append([]types.SlotAssignment(nil), assignment...)}
			for _, sa := range lineup.Slots {
				lineup.TotalSalary += sa.Player.Salary
				lineup.TotalProjection += sa.Player.Projection
			}
			if !s.acceptLeaf(lineup, ruleset, mustInclude, &counters) {
				return
			}
			if !haveBest || score > bestScore {
				haveBest = true
				bestScore = score
				best = append(best[:0], assignment...)
			}
			return
		}

		// Optimistic bound: even taking the best remaining candidate in
		// every slot cannot beat the incumbent.
		if haveBest && score+maxScoreSuffix[slotIdx] <= bestScore {
			return
		}

		cands := slots[slotIdx]
		tried := 0
		for ci, p := range cands.players {
			if used[p.ID] {
				continue
			}
			if salary+p.Salary+minSalarySuffix[slotIdx+1] > ruleset.SalaryCap {
				counters.salary++
				continue
			}
			if ruleset.MaxPerTeam > 0 && teamCount[p.Team] >= ruleset.MaxPerTeam {
				counters.teamCap++
				continue
			}
			overlapBlocked := false
			for k, set := range extras.acceptedSets {
				if set[p.ID] && shared[k]+1 > extras.maxShared {
					overlapBlocked = true
					break
				}
			}
			if overlapBlocked {
				counters.overlap++
				continue
			}

			// Branch limit keeps worst-case width bounded; locked and
			// forced players sort first so the cap never hides them.
			if tried >= width && !mustInclude[p.ID] {
				truncated = true
				break
			}
			tried++

			used[p.ID] = true
			teamCount[p.Team]++
			for k, set := range extras.acceptedSets {
				if set[p.ID] {
					shared[k]++
				}
			}
			assignment = append(assignment, types.SlotAssignment{Slot: ruleset.Slots[slotIdx], Player: p})

			dfs(slotIdx+1, salary+p.Salary, score+cands.scores[ci])

			assignment = assignment[:len(assignment)-1]
			for k, set := range extras.acceptedSets {
				if set[p.ID] {
					shared[k]--
				}
			}
			teamCount[p.Team]--
			used[p.ID] = false

			if timedOut {
				return
			}
		}
	}

	dfs(0, 0, 0)

	// A capped search that came up empty has not proven anything: the
	// lineup satisfying a stack or group rule may rank below the branch
	// limit. Infeasible must mean proven, so rerun without the cap.
	if !haveBest && !timedOut && truncated {
		counters = pruneCounters{}
		width = len(pool)
		dfs(0, 0, 0)
	}

	elapsed := time.Since(start)
	result := types.SolveResult{Nodes: nodes, ElapsedMS: elapsed.Milliseconds()}

	switch {
	case haveBest:
		lineup := types.NewLineup(best)
		result.Status = types.SolveOptimal
		result.Lineup = &lineup
		s.log.WithFields(logrus.Fields{
			"nodes":        nodes,
			"elapsed_ms":   elapsed.Milliseconds(),
			"total_salary": lineup.TotalSalary,
			"projection":   lineup.TotalProjection,
			"stack":        lineup.Stack,
		}).Debug("Solve completed")
	case timedOut:
		result.Status = types.SolveTimeout
		s.log.WithFields(logrus.Fields{
			"nodes":      nodes,
			"elapsed_ms": elapsed.Milliseconds(),
		}).Warn("Solve timed out before finding a feasible lineup")
	default:
		result.Status = types.SolveInfeasible
		result.BlockedBy = counters.dominant()
		s.log.WithFields(logrus.Fields{
			"nodes":      nodes,
			"blocked_by": result.BlockedBy,
		}).Info("Solve proven infeasible")
	}
	return result
}

// acceptLeaf runs the full rule validation on a complete assignment and
// records the violated family when it fails.
func (s *Solver) acceptLeaf(lineup types.Lineup, ruleset types.Ruleset, mustInclude map[uuid.UUID]bool, counters *pruneCounters) bool {
	set := lineup.PlayerSet()
	for id := range mustInclude {
		if !set[id] {
			counters.lockBan++
			return false
		}
	}
	result := Validate(lineup, ruleset)
	if result.OK {
		return true
	}
	for _, v := range result.Violations {
		switch v.Family {
		case types.FamilySalary:
			counters.salary++
		case types.FamilyTeamLimit:
			counters.teamCap++
		case types.FamilyStacking:
			counters.stacking++
		case types.FamilyGroupRules:
			counters.group++
		case types.FamilyLockBan:
			counters.lockBan++
		default:
			counters.salary++
		}
	}
	return false
}

// buildCandidates assembles the ordered branching list per slot. Locked
// and forced players sort first, then by jittered objective score; ties
// break on ID for determinism.
func (s *Solver) buildCandidates(pool []types.Player, ruleset types.Ruleset, extras solveExtras, jitter jitterTable, mustInclude map[uuid.UUID]bool) []slotCandidates {
	out := make([]slotCandidates, len(ruleset.Slots))
	for i, slot := range ruleset.Slots {
		var players []types.Player
		for _, p := range pool {
			if p.Banned || extras.forcedOut[p.ID] {
				continue
			}
			if slot.Allows(p) {
				players = append(players, p)
			}
		}
		scores := make(map[uuid.UUID]float64, len(players))
		for _, p := range players {
			scores[p.ID] = jitter.score(p, ruleset.Objective)
		}
		sort.Slice(players, func(a, b int) bool {
			pa, pb := players[a], players[b]
			if mustInclude[pa.ID] != mustInclude[pb.ID] {
				return mustInclude[pa.ID]
			}
			if scores[pa.ID] != scores[pb.ID] {
				return scores[pa.ID] > scores[pb.ID]
			}
			return pa.ID.String() < pb.ID.String()
		})

		sc := slotCandidates{players: players, scores: make([]float64, len(players))}
		for j, p := range players {
			sc.scores[j] = scores[p.ID]
			if j == 0 || p.Salary < sc.minSalary {
				sc.minSalary = p.Salary
			}
			if scores[p.ID] > sc.maxScore {
				sc.maxScore = scores[p.ID]
			}
		}
		out[i] = sc
	}
	return out
}
