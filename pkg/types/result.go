package types

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/google/uuid"
)

// ConstraintFamily names the group of rules a violation or infeasibility
// belongs to, so callers can decide what to relax.
type ConstraintFamily string

const (
	FamilySlotEligibility ConstraintFamily = "slot_eligibility"
	FamilySalary          ConstraintFamily = "salary"
	FamilyTeamLimit       ConstraintFamily = "team_limit"
	FamilyStacking        ConstraintFamily = "stacking"
	FamilyGroupRules      ConstraintFamily = "group_rules"
	FamilyLockBan         ConstraintFamily = "lock_ban"
	FamilyOverlap         ConstraintFamily = "overlap"
	FamilyExposure        ConstraintFamily = "exposure"
)

// Violation is one failed constraint check.
type Violation struct {
	Family  ConstraintFamily `json:"family"`
	Message string           `json:"message"`
}

// ValidationResult reports all constraint violations for a candidate
// lineup. A bad lineup never produces an error, only violations.
type ValidationResult struct {
	OK         bool        `json:"ok"`
	Violations []Violation `json:"violations"`
}

// SolveStatus is the outcome of a single constrained solve.
type SolveStatus string

const (
	SolveOptimal    SolveStatus = "optimal"
	SolveInfeasible SolveStatus = "infeasible"
	SolveTimeout    SolveStatus = "timeout"
)

// SolveResult is the outcome of one SolveOne call. Infeasible and Timeout
// are normal, reportable outcomes, not errors.
type SolveResult struct {
	Status    SolveStatus      `json:"status"`
	Lineup    *Lineup          `json:"lineup,omitempty"`
	BlockedBy ConstraintFamily `json:"blocked_by,omitempty"` // best-effort explanation when infeasible
	Nodes     int64            `json:"nodes"`
	ElapsedMS int64            `json:"elapsed_ms"`
}

// StopReason explains why SolveMany produced fewer lineups than requested.
type StopReason string

const (
	StopNone                StopReason = ""
	StopInfeasible          StopReason = "infeasible"
	StopTimeout             StopReason = "timeout"
	StopDuplicateExhaustion StopReason = "duplicate_exhaustion"
	StopCancelled           StopReason = "cancelled"
)

// PortfolioResult is the outcome of SolveMany. A partial portfolio with a
// stop reason is a normal outcome.
type PortfolioResult struct {
	Portfolio *Portfolio       `json:"portfolio"`
	Requested int              `json:"requested"`
	Stopped   StopReason       `json:"stopped,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	BlockedBy ConstraintFamily `json:"blocked_by,omitempty"`
}

// Complete reports whether all requested lineups were produced.
func (r PortfolioResult) Complete() bool {
	return r.Portfolio != nil && r.Portfolio.Size() == r.Requested
}

// SimulationResult holds the risk metrics for one lineup evaluated against
// a simulated contest field. Immutable once produced.
type SimulationResult struct {
	LineupID uuid.UUID `json:"lineup_id"`
	Draws    int       `json:"draws"`

	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`

	WinRate  float64 `json:"win_rate"`
	CashRate float64 `json:"cash_rate"`
	ROI      float64 `json:"roi"`
	Sharpe   float64 `json:"sharpe"`
	Kelly    float64 `json:"kelly"`

	Degraded bool `json:"degraded"` // correlation structure fell back to independent draws
	Partial  bool `json:"partial"`  // simulation was cancelled before completing all draws
}

// KellyFraction computes the clamped Kelly stake fraction for win
// probability p and payout-to-entry ratio b.
func KellyFraction(p, b float64) float64 {
	if b <= 0 {
		return 0
	}
	q := 1 - p
	f := (b*p - q) / b
	return math.Max(0, math.Min(0.25, f))
}

// PoolFingerprint returns a stable hash of a player pool snapshot, used to
// scope caches and invalidate them when the snapshot changes.
func PoolFingerprint(pool []Player) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range pool {
		h.Write(p.ID[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(p.Salary))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Projection))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Ownership))
		h.Write(buf[:])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
