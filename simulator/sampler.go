package simulator

import (
	"math/rand"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/stitts-dev/lineup-engine/optimizer"
	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// Sampler draws correlated score vectors for a player pool. Scores are
// centered on projections with the pool's correlation structure imposed
// through a Cholesky factor of the covariance matrix.
type Sampler struct {
	pool     []types.Player
	index    map[uuid.UUID]int
	stdDevs  []float64
	chol     *mat.Cholesky
	degraded bool
	rng      *rand.Rand
}

// DrawSet holds the sampled scores: one row per draw, one column per
// pool player. Read-only after creation.
type DrawSet struct {
	scores   *mat.Dense
	nDraws   int
	Degraded bool
}

// NewSampler prepares a correlated sampler from a pool and its
// correlation matrix. When the implied covariance is not positive
// semi-definite the sampler degrades to independent draws and flags
// every draw set it produces.
func NewSampler(pool []types.Player, corr *optimizer.CorrelationMatrix, seed int64) *Sampler {
	n := len(pool)
	s := &Sampler{
		pool:    pool,
		index:   make(map[uuid.UUID]int, n),
		stdDevs: make([]float64, n),
		rng:     rand.New(rand.NewSource(seed)),
	}
	for i, p := range pool {
		s.index[p.ID] = i
		s.stdDevs[i] = playerStdDev(p)
	}

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			ci, ok1 := corr.IndexOf(pool[i].ID)
			cj, ok2 := corr.IndexOf(pool[j].ID)
			rho := 0.0
			if ok1 && ok2 {
				rho = corr.At(ci, cj)
			} else if i == j {
				rho = 1.0
			}
			cov.SetSym(i, j, rho*s.stdDevs[i]*s.stdDevs[j])
		}
	}

	var chol mat.Cholesky
	if chol.Factorize(cov) {
		s.chol = &chol
	} else {
		s.degraded = true
	}
	return s
}

// playerStdDev returns the outcome spread for a player, falling back to
// a quarter of the floor-to-ceiling range when no explicit value exists.
func playerStdDev(p types.Player) float64 {
	if p.StdDev > 0 {
		return p.StdDev
	}
	if p.Ceiling > p.Floor {
		return (p.Ceiling - p.Floor) / 4.0
	}
	return 0
}

// Degraded reports whether correlation structure was dropped.
func (s *Sampler) Degraded() bool {
	return s.degraded
}

// IndexOf returns the draw-set column for a player ID.
func (s *Sampler) IndexOf(id uuid.UUID) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Draw produces nDraws correlated score vectors. Each score is clipped
// to the player's floor-ceiling range and then scaled by the
// availability multiplier.
func (s *Sampler) Draw(nDraws int) *DrawSet {
	n := len(s.pool)
	scores := mat.NewDense(nDraws, n, nil)

	var lower *mat.TriDense
	if s.chol != nil {
		lower = &mat.TriDense{}
		s.chol.LTo(lower)
	}

	z := make([]float64, n)
	row := make([]float64, n)
	for d := 0; d < nDraws; d++ {
		for i := range z {
			z[i] = s.rng.NormFloat64()
		}
		if lower != nil {
			// row = L * z, lower-triangular so the inner loop stops at i.
			for i := 0; i < n; i++ {
				sum := 0.0
				for j := 0; j <= i; j++ {
					sum += lower.At(i, j) * z[j]
				}
				row[i] = sum
			}
		} else {
			for i := 0; i < n; i++ {
				row[i] = s.stdDevs[i] * z[i]
			}
		}
		for i, p := range s.pool {
			score := p.Projection + row[i]
			if p.Ceiling > p.Floor {
				if score < p.Floor {
					score = p.Floor
				}
				if score > p.Ceiling {
					score = p.Ceiling
				}
			}
			scores.Set(d, i, score*p.Status.Multiplier())
		}
	}
	return &DrawSet{scores: scores, nDraws: nDraws, Degraded: s.degraded}
}

// Draws returns the number of rows in the set.
func (ds *DrawSet) Draws() int {
	return ds.nDraws
}

// At returns the sampled score for one player column in one draw.
func (ds *DrawSet) At(draw, player int) float64 {
	return ds.scores.At(draw, player)
}

// LineupScore sums the sampled scores for a set of player columns in
// one draw.
func (ds *DrawSet) LineupScore(draw int, players []int) float64 {
	total := 0.0
	for _, i := range players {
		total += ds.scores.At(draw, i)
	}
	return total
}
