package simulator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/lineup-engine/optimizer"
	"github.com/stitts-dev/lineup-engine/pkg/cache"
	"github.com/stitts-dev/lineup-engine/pkg/logger"
	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// SimOptions tunes a contest simulation run.
type SimOptions struct {
	Draws   int           // Monte Carlo draws, default 10000
	Workers int           // concurrent lineup evaluations, default 4
	Seed    int64         // rng seed for draws and field generation
	Timeout time.Duration // batch budget; expiry yields partial results, 0 = none
}

const (
	defaultDraws   = 10000
	defaultWorkers = 4
)

// ContestSimulator evaluates entrant lineups against a simulated contest
// field under the pool's correlation structure. One simulator serves one
// pool snapshot and contest.
type ContestSimulator struct {
	pool    []types.Player
	ruleset types.Ruleset
	contest types.Contest
	corr    *optimizer.CorrelationMatrix
	opts    SimOptions
	results *cache.ResultCache
	log     *logrus.Entry
}

// NewContestSimulator builds a simulator. The correlation matrix must
// cover the pool; a mismatched matrix degrades missing pairs to zero.
func NewContestSimulator(pool []types.Player, ruleset types.Ruleset, contest types.Contest, corr *optimizer.CorrelationMatrix, opts SimOptions) (*ContestSimulator, error) {
	if err := contest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid contest: %w", err)
	}
	if err := types.ValidatePool(pool); err != nil {
		return nil, err
	}
	if opts.Draws <= 0 {
		opts.Draws = defaultDraws
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &ContestSimulator{
		pool:    pool,
		ruleset: ruleset,
		contest: contest,
		corr:    corr,
		opts:    opts,
		log:     logger.WithSimulationContext(uuid.New().String(), opts.Draws),
	}, nil
}

// UseCache attaches a result cache scoped by pool fingerprint. Safe to
// skip; a nil cache disables lookups.
func (cs *ContestSimulator) UseCache(rc *cache.ResultCache) {
	cs.results = rc
}

// Simulate evaluates a single lineup.
func (cs *ContestSimulator) Simulate(ctx context.Context, lineup types.Lineup) (*types.SimulationResult, error) {
	results, err := cs.SimulateAll(ctx, []types.Lineup{lineup})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// SimulateAll evaluates a batch of lineups against one shared field and
// draw set, so results across the batch are mutually consistent.
// Cancellation mid-run returns partial results computed from the draws
// completed so far.
func (cs *ContestSimulator) SimulateAll(ctx context.Context, lineups []types.Lineup) ([]*types.SimulationResult, error) {
	if len(lineups) == 0 {
		return nil, nil
	}
	if cs.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cs.opts.Timeout)
		defer cancel()
	}
	fingerprint := types.PoolFingerprint(cs.pool)

	results := make([]*types.SimulationResult, len(lineups))
	var misses []int
	for i, l := range lineups {
		if cs.results.Enabled() {
			cached, err := cs.results.GetSimulationResult(ctx, fingerprint, l.ID)
			if err != nil {
				cs.log.WithError(err).Warn("Simulation cache lookup failed")
			}
			if cached != nil && cached.Draws >= cs.opts.Draws && !cached.Partial {
				results[i] = cached
				continue
			}
		}
		misses = append(misses, i)
	}
	if len(misses) == 0 {
		return results, nil
	}

	sampler := NewSampler(cs.pool, cs.corr, cs.opts.Seed)
	draws := sampler.Draw(cs.opts.Draws)
	if draws.Degraded {
		cs.log.Warn("Correlation matrix not positive semi-definite, falling back to independent draws")
	}

	fieldCount := cs.contest.FieldSize - len(lineups)
	if fieldCount < 0 {
		fieldCount = 0
	}
	fieldGen := NewFieldGenerator(cs.pool, cs.ruleset, cs.opts.Seed+1)
	field := fieldGen.Generate(fieldCount)
	fieldCols := make([][]int, len(field))
	for i, l := range field {
		fieldCols[i] = cs.columns(sampler, l)
	}

	// Field scores are computed once per draw and shared by every
	// entrant lineup; sorted ascending for rank lookup.
	fieldScores, completed := cs.fieldScoresByDraw(ctx, draws, fieldCols)
	partial := completed < draws.Draws()

	winLine := cs.contest.WinLine()
	var wg sync.WaitGroup
	tasks := make(chan int)
	for w := 0; w < cs.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				results[idx] = cs.evaluate(lineups[idx], sampler, draws, fieldScores, completed, winLine, partial)
			}
		}()
	}
	for _, idx := range misses {
		tasks <- idx
	}
	close(tasks)
	wg.Wait()

	if cs.results.Enabled() && !partial {
		for _, idx := range misses {
			if err := cs.results.SetSimulationResult(ctx, fingerprint, results[idx]); err != nil {
				cs.log.WithError(err).Warn("Failed to cache simulation result")
			}
		}
	}

	cs.log.WithFields(logrus.Fields{
		"lineups":    len(lineups),
		"cache_hits": len(lineups) - len(misses),
		"field_size": fieldCount,
		"draws":      completed,
		"partial":    partial,
		"degraded":   draws.Degraded,
	}).Info("Contest simulation completed")
	return results, nil
}

// fieldScoresByDraw computes the sorted field score list per draw,
// stopping early on cancellation. Returns the scores and the number of
// fully completed draws.
func (cs *ContestSimulator) fieldScoresByDraw(ctx context.Context, draws *DrawSet, fieldCols [][]int) ([][]float64, int) {
	n := draws.Draws()
	out := make([][]float64, n)
	for d := 0; d < n; d++ {
		if d%64 == 0 {
			select {
			case <-ctx.Done():
				return out[:d], d
			default:
			}
		}
		scores := make([]float64, len(fieldCols))
		for i, cols := range fieldCols {
			scores[i] = draws.LineupScore(d, cols)
		}
		sort.Float64s(scores)
		out[d] = scores
	}
	return out, n
}

// evaluate runs one entrant lineup through the completed draws.
func (cs *ContestSimulator) evaluate(lineup types.Lineup, sampler *Sampler, draws *DrawSet, fieldScores [][]float64, completed, winLine int, partial bool) *types.SimulationResult {
	cols := cs.columns(sampler, lineup)
	scores := make([]float64, completed)
	payouts := make([]float64, completed)
	wins, cashes := 0, 0

	for d := 0; d < completed; d++ {
		score := draws.LineupScore(d, cols)
		scores[d] = score

		field := fieldScores[d]
		// Rank is one plus the number of field entries strictly beating
		// the entrant; field is sorted ascending.
		beating := len(field) - sort.Search(len(field), func(i int) bool { return field[i] > score })
		rank := 1 + beating

		payout := cs.contest.PayoutForRank(rank)
		payouts[d] = payout
		if rank <= winLine {
			wins++
		}
		if payout > 0 {
			cashes++
		}
	}
	return summarize(lineup.ID, cs.contest, scores, payouts, wins, cashes, draws.Degraded, partial)
}

// columns maps a lineup's players to draw-set columns. Players outside
// the pool snapshot contribute a zero score.
func (cs *ContestSimulator) columns(sampler *Sampler, lineup types.Lineup) []int {
	cols := make([]int, 0, len(lineup.Slots))
	for _, sa := range lineup.Slots {
		if i, ok := sampler.IndexOf(sa.Player.ID); ok {
			cols = append(cols, i)
		}
	}
	return cols
}

// RankByROI adapts the simulator into a ranking function for the
// sampling-guided solver: candidates are ordered by simulated ROI.
func (cs *ContestSimulator) RankByROI() optimizer.RankFunc {
	return func(ctx context.Context, lineups []types.Lineup) ([]float64, error) {
		results, err := cs.SimulateAll(ctx, lineups)
		if err != nil {
			return nil, err
		}
		ranks := make([]float64, len(results))
		for i, r := range results {
			if r != nil {
				ranks[i] = r.ROI
			}
		}
		return ranks, nil
	}
}
