package optimizer

import (
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// Correlation bounds. Off-diagonal entries are clamped into this range.
const (
	minCorrelation = -0.5
	maxCorrelation = 0.8
)

const (
	sameTeamBonus = 0.10
	sameGameBonus = 0.05
	dstPenalty    = -0.35
)

// teammateAffinity holds position-pair affinity for same-team players.
// Passer/pass-catcher pairs dominate; backfield pairs cannibalize.
var teammateAffinity = map[string]map[string]float64{
	"QB":  {"WR": 0.35, "TE": 0.28, "RB": 0.08, "QB": 0.0, "DST": -0.10},
	"WR":  {"QB": 0.35, "WR": 0.08, "TE": 0.05, "RB": -0.08},
	"TE":  {"QB": 0.28, "WR": 0.05, "TE": 0.0, "RB": -0.05},
	"RB":  {"QB": 0.08, "WR": -0.08, "TE": -0.05, "RB": -0.25},
	"DST": {"QB": -0.10},
}

// opponentAffinity holds position-pair affinity for players on opposite
// sides of the same game (shootout effects).
var opponentAffinity = map[string]map[string]float64{
	"QB": {"QB": 0.15, "WR": 0.12, "TE": 0.10},
	"WR": {"QB": 0.12},
	"TE": {"QB": 0.10},
}

var offensiveSkill = map[string]bool{"QB": true, "RB": true, "WR": true, "TE": true}

// CorrelationMatrix is a symmetric pairwise outcome correlation over a
// player pool snapshot. Built once per snapshot and read-only afterwards.
type CorrelationMatrix struct {
	players []types.Player
	index   map[uuid.UUID]int
	m       *mat.SymDense
}

// BuildCorrelations derives the correlation matrix for a pool. The rule is
// additive: same-team bonus, same-game bonus, position affinity, and a
// penalty for a defense against opposing offensive skill players, clamped
// to [-0.5, 0.8]. Deterministic given the same pool.
func BuildCorrelations(pool []types.Player) *CorrelationMatrix {
	n := len(pool)
	cm := &CorrelationMatrix{
		players: pool,
		index:   make(map[uuid.UUID]int, n),
		m:       mat.NewSymDense(n, nil),
	}
	for i, p := range pool {
		cm.index[p.ID] = i
		cm.m.SetSym(i, i, 1.0)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			cm.m.SetSym(i, j, pairCorrelation(pool[i], pool[j]))
		}
	}
	return cm
}

func pairCorrelation(a, b types.Player) float64 {
	corr := 0.0
	posA := a.PrimaryPosition()
	posB := b.PrimaryPosition()

	sameTeam := a.Team != "" && a.Team == b.Team
	sameGame := a.GameKey() == b.GameKey() && a.Team != "" && b.Team != ""

	if sameTeam {
		corr += sameTeamBonus
		if aff, ok := teammateAffinity[posA][posB]; ok {
			corr += aff
		}
	}
	if sameGame {
		corr += sameGameBonus
		if !sameTeam {
			if aff, ok := opponentAffinity[posA][posB]; ok {
				corr += aff
			}
			if aff, ok := opponentAffinity[posB][posA]; ok && posA != posB {
				corr += aff
			}
			if (posA == "DST" && offensiveSkill[posB]) || (posB == "DST" && offensiveSkill[posA]) {
				corr += dstPenalty
			}
		}
	}

	if corr < minCorrelation {
		return minCorrelation
	}
	if corr > maxCorrelation {
		return maxCorrelation
	}
	return corr
}

// CorrelationFromSym wraps a prebuilt symmetric matrix over the given pool
// order. Intended for tests and tools that need a specific structure.
func CorrelationFromSym(pool []types.Player, m *mat.SymDense) *CorrelationMatrix {
	index := make(map[uuid.UUID]int, len(pool))
	for i, p := range pool {
		index[p.ID] = i
	}
	return &CorrelationMatrix{players: pool, index: index, m: m}
}

// Dim returns the pool size.
func (cm *CorrelationMatrix) Dim() int {
	return len(cm.players)
}

// At returns the correlation between pool indices i and j.
func (cm *CorrelationMatrix) At(i, j int) float64 {
	return cm.m.At(i, j)
}

// ByID returns the correlation between two players, zero for unknown IDs.
func (cm *CorrelationMatrix) ByID(a, b uuid.UUID) float64 {
	i, ok := cm.index[a]
	if !ok {
		return 0
	}
	j, ok := cm.index[b]
	if !ok {
		return 0
	}
	return cm.m.At(i, j)
}

// Sym exposes the underlying symmetric matrix for covariance scaling.
func (cm *CorrelationMatrix) Sym() *mat.SymDense {
	return cm.m
}

// IndexOf returns the pool index for a player ID.
func (cm *CorrelationMatrix) IndexOf(id uuid.UUID) (int, bool) {
	i, ok := cm.index[id]
	return i, ok
}

// LineupCorrelation averages the pairwise correlation across a lineup,
// used to rank stack-heavy candidates.
func (cm *CorrelationMatrix) LineupCorrelation(lineup types.Lineup) float64 {
	players := lineup.Players()
	if len(players) < 2 {
		return 0
	}
	total := 0.0
	count := 0
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			total += cm.ByID(players[i].ID, players[j].ID)
			count++
		}
	}
	return total / float64(count)
}

// CorrelationCache memoizes correlation matrices per pool snapshot. It is
// an explicitly scoped state object: one per request/session, invalidated
// when the pool snapshot changes.
type CorrelationCache struct {
	mu      sync.Mutex
	entries map[string]*CorrelationMatrix
}

// NewCorrelationCache returns an empty cache.
func NewCorrelationCache() *CorrelationCache {
	return &CorrelationCache{entries: make(map[string]*CorrelationMatrix)}
}

// Get returns the matrix for a pool snapshot, building it on first use.
func (c *CorrelationCache) Get(pool []types.Player) *CorrelationMatrix {
	key := types.PoolFingerprint(pool)
	c.mu.Lock()
	defer c.mu.Unlock()
	if cm, ok := c.entries[key]; ok {
		return cm
	}
	cm := BuildCorrelations(pool)
	c.entries[key] = cm
	return cm
}

// Invalidate drops the matrix for a pool snapshot.
func (c *CorrelationCache) Invalidate(pool []types.Player) {
	key := types.PoolFingerprint(pool)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
