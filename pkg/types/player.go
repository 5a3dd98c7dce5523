package types

import (
	"fmt"

	"github.com/google/uuid"
)

// AvailabilityStatus describes whether a player is expected to participate.
type AvailabilityStatus string

const (
	StatusActive       AvailabilityStatus = "active"
	StatusQuestionable AvailabilityStatus = "questionable"
	StatusDoubtful     AvailabilityStatus = "doubtful"
	StatusOut          AvailabilityStatus = "out"
)

// Multiplier returns the outcome multiplier applied to simulated scores.
func (s AvailabilityStatus) Multiplier() float64 {
	switch s {
	case StatusQuestionable:
		return 0.7
	case StatusDoubtful:
		return 0.4
	case StatusOut:
		return 0.1
	default:
		return 1.0
	}
}

// Player is a normalized player record consumed by the optimizer and
// simulator. It is treated as a read-only snapshot for the duration of a
// request.
type Player struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Positions   []string           `json:"positions"` // a player may be eligible for multiple slots
	Team        string             `json:"team"`
	Opponent    string             `json:"opponent"`
	Salary      int                `json:"salary"`
	Projection  float64            `json:"projection"`
	Floor       float64            `json:"floor"`
	Ceiling     float64            `json:"ceiling"`
	StdDev      float64            `json:"std_dev"`
	Ownership   float64            `json:"ownership"` // projected ownership, 0-1
	Status      AvailabilityStatus `json:"status"`
	Locked      bool               `json:"locked"`
	Banned      bool               `json:"banned"`
	MinExposure float64            `json:"min_exposure"` // percent, 0-100
	MaxExposure float64            `json:"max_exposure"` // percent, 0-100
}

// Validate checks the record-level invariants.
func (p Player) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("player %q: missing id", p.Name)
	}
	if len(p.Positions) == 0 {
		return fmt.Errorf("player %q: no eligible positions", p.Name)
	}
	if p.Salary <= 0 {
		return fmt.Errorf("player %q: salary must be positive, got %d", p.Name, p.Salary)
	}
	if p.Floor > p.Projection || p.Projection > p.Ceiling {
		return fmt.Errorf("player %q: floor/projection/ceiling out of order (%.2f/%.2f/%.2f)",
			p.Name, p.Floor, p.Projection, p.Ceiling)
	}
	if p.Locked && p.Banned {
		return fmt.Errorf("player %q: locked and banned are mutually exclusive", p.Name)
	}
	if p.Ownership < 0 || p.Ownership > 1 {
		return fmt.Errorf("player %q: ownership must be in [0,1], got %.3f", p.Name, p.Ownership)
	}
	if p.MinExposure < 0 || p.MaxExposure > 100 || (p.MaxExposure > 0 && p.MinExposure > p.MaxExposure) {
		return fmt.Errorf("player %q: exposure bounds [%.1f,%.1f] invalid", p.Name, p.MinExposure, p.MaxExposure)
	}
	return nil
}

// HasPosition reports whether the player is eligible at the given position.
func (p Player) HasPosition(position string) bool {
	for _, pos := range p.Positions {
		if pos == position {
			return true
		}
	}
	return false
}

// PrimaryPosition returns the first listed position. The correlation model
// and stack classification key off this.
func (p Player) PrimaryPosition() string {
	if len(p.Positions) == 0 {
		return ""
	}
	return p.Positions[0]
}

// Value returns projected points per $1000 of salary.
func (p Player) Value() float64 {
	if p.Salary == 0 {
		return 0
	}
	return p.Projection / float64(p.Salary) * 1000
}

// GameKey returns a canonical identifier for the game the player is in, the
// same for both sides of the matchup.
func (p Player) GameKey() string {
	if p.Team < p.Opponent {
		return fmt.Sprintf("%s@%s", p.Team, p.Opponent)
	}
	return fmt.Sprintf("%s@%s", p.Opponent, p.Team)
}

// ValidatePool validates every player and checks for duplicate IDs.
func ValidatePool(pool []Player) error {
	seen := make(map[uuid.UUID]bool, len(pool))
	for _, p := range pool {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate player id %s (%s)", p.ID, p.Name)
		}
		seen[p.ID] = true
	}
	return nil
}
