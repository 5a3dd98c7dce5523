package types

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidRuleset marks fatal ruleset construction errors. These must be
// rejected before any solve attempt.
var ErrInvalidRuleset = errors.New("invalid ruleset")

// ErrInsufficientPool marks a slot that cannot be filled even ignoring all
// other constraints.
var ErrInsufficientPool = errors.New("insufficient player pool")

// RosterSlot is a named position in a roster template with a set of
// eligible player positions (e.g. FLEX = {RB, WR, TE}).
type RosterSlot struct {
	Name     string   `json:"name"`
	Eligible []string `json:"eligible"`
}

// Allows reports whether a player can fill this slot.
func (s RosterSlot) Allows(p Player) bool {
	for _, pos := range s.Eligible {
		if p.HasPosition(pos) {
			return true
		}
	}
	return false
}

// Objective selects the linear objective the solver maximizes.
type Objective string

const (
	ObjectiveProjection Objective = "projection"
	ObjectiveValue      Objective = "value"
	ObjectiveLeverage   Objective = "leverage" // projection discounted by ownership
)

// StackRuleKind is the closed set of stacking template variants. Templates
// are validated at ruleset construction time, not string-matched at solve
// time.
type StackRuleKind string

const (
	StackSameTeam  StackRuleKind = "same_team"
	StackBringBack StackRuleKind = "bring_back"
	StackGameStack StackRuleKind = "game_stack"
)

// StackRule describes one stacking template.
//
// SameTeam: a player at Anchor plus Count teammates whose position is in
// Partners (empty Partners = any position).
// BringBack: SameTeam plus at least one lineup player from the anchor's
// opposing team.
// GameStack: Count players from a single game with both teams represented.
type StackRule struct {
	Kind     StackRuleKind `json:"kind"`
	Anchor   string        `json:"anchor,omitempty"`
	Partners []string      `json:"partners,omitempty"`
	Count    int           `json:"count"`
}

func (r StackRule) validate() error {
	switch r.Kind {
	case StackSameTeam, StackBringBack:
		if r.Anchor == "" {
			return fmt.Errorf("%s stack requires an anchor position", r.Kind)
		}
		if r.Count < 1 {
			return fmt.Errorf("%s stack requires count >= 1, got %d", r.Kind, r.Count)
		}
	case StackGameStack:
		if r.Count < 2 {
			return fmt.Errorf("game stack requires count >= 2, got %d", r.Count)
		}
	default:
		return fmt.Errorf("unknown stack rule kind %q", r.Kind)
	}
	return nil
}

// GroupRuleKind is the closed set of group rule variants.
type GroupRuleKind string

const (
	GroupIfThenRequire GroupRuleKind = "if_then_require" // If present, require one of Players
	GroupNeverTogether GroupRuleKind = "never_together"
	GroupAtMostOne     GroupRuleKind = "at_most_one"
)

// GroupRule constrains co-occurrence of specific players within one lineup.
type GroupRule struct {
	Kind    GroupRuleKind `json:"kind"`
	If      uuid.UUID     `json:"if,omitempty"` // trigger player for IfThenRequire
	Players []uuid.UUID   `json:"players"`
}

func (r GroupRule) validate() error {
	switch r.Kind {
	case GroupIfThenRequire:
		if r.If == uuid.Nil {
			return errors.New("if_then_require rule missing trigger player")
		}
		if len(r.Players) == 0 {
			return errors.New("if_then_require rule has empty require set")
		}
	case GroupNeverTogether, GroupAtMostOne:
		if len(r.Players) < 2 {
			return fmt.Errorf("%s rule needs at least 2 players, got %d", r.Kind, len(r.Players))
		}
	default:
		return fmt.Errorf("unknown group rule kind %q", r.Kind)
	}
	return nil
}

// Ruleset holds the full set of roster construction rules for one contest.
type Ruleset struct {
	Slots            []RosterSlot `json:"slots"`
	SalaryCap        int          `json:"salary_cap"`
	SalaryFloor      int          `json:"salary_floor"` // 0 = unset
	MaxPerTeam       int          `json:"max_per_team"` // 0 = unlimited
	StackRules       []StackRule  `json:"stack_rules"`
	GroupRules       []GroupRule  `json:"group_rules"`
	Objective        Objective    `json:"objective"`
	Randomness       float64      `json:"randomness"` // 0-1, objective jitter scale
	NumLineups       int          `json:"num_lineups"`
	MaxOverlap       float64      `json:"max_overlap"`         // max shared fraction between any two lineups
	MinUniquePlayers int          `json:"min_unique_players"`  // min differing players between any two lineups
}

// MaxSharedPlayers converts the overlap constraints into a player count.
// The tighter of MaxOverlap and MinUniquePlayers wins.
func (r Ruleset) MaxSharedPlayers() int {
	n := len(r.Slots)
	limit := n
	if r.MaxOverlap > 0 {
		limit = int(r.MaxOverlap * float64(n))
	}
	if r.MinUniquePlayers > 0 && n-r.MinUniquePlayers < limit {
		limit = n - r.MinUniquePlayers
	}
	if limit < 0 {
		limit = 0
	}
	return limit
}

// Validate rejects malformed rulesets before any solve attempt. All
// failures wrap ErrInvalidRuleset.
func (r Ruleset) Validate() error {
	if len(r.Slots) == 0 {
		return fmt.Errorf("%w: no roster slots", ErrInvalidRuleset)
	}
	for i, slot := range r.Slots {
		if slot.Name == "" || len(slot.Eligible) == 0 {
			return fmt.Errorf("%w: slot %d is missing a name or eligible positions", ErrInvalidRuleset, i)
		}
	}
	if r.SalaryCap <= 0 {
		return fmt.Errorf("%w: salary cap must be positive, got %d", ErrInvalidRuleset, r.SalaryCap)
	}
	if r.SalaryFloor < 0 || r.SalaryFloor > r.SalaryCap {
		return fmt.Errorf("%w: salary floor %d outside [0, cap]", ErrInvalidRuleset, r.SalaryFloor)
	}
	if r.MaxPerTeam < 0 {
		return fmt.Errorf("%w: max per team must be >= 0", ErrInvalidRuleset)
	}
	if r.Randomness < 0 || r.Randomness > 1 {
		return fmt.Errorf("%w: randomness must be in [0,1], got %.3f", ErrInvalidRuleset, r.Randomness)
	}
	if r.MaxOverlap < 0 || r.MaxOverlap > 1 {
		return fmt.Errorf("%w: max overlap must be in [0,1], got %.3f", ErrInvalidRuleset, r.MaxOverlap)
	}
	if r.MinUniquePlayers < 0 || r.MinUniquePlayers > len(r.Slots) {
		return fmt.Errorf("%w: min unique players %d outside [0, %d]", ErrInvalidRuleset, r.MinUniquePlayers, len(r.Slots))
	}
	switch r.Objective {
	case "", ObjectiveProjection, ObjectiveValue, ObjectiveLeverage:
	default:
		return fmt.Errorf("%w: unknown objective %q", ErrInvalidRuleset, r.Objective)
	}
	for i, sr := range r.StackRules {
		if err := sr.validate(); err != nil {
			return fmt.Errorf("%w: stack rule %d: %v", ErrInvalidRuleset, i, err)
		}
	}
	for i, gr := range r.GroupRules {
		if err := gr.validate(); err != nil {
			return fmt.Errorf("%w: group rule %d: %v", ErrInvalidRuleset, i, err)
		}
	}
	if err := r.checkGroupContradictions(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRuleset, err)
	}
	return nil
}

// checkGroupContradictions catches if-then-require rules whose entire
// require set is forbidden alongside the trigger by never-together rules.
func (r Ruleset) checkGroupContradictions() error {
	forbidden := func(a, b uuid.UUID) bool {
		for _, gr := range r.GroupRules {
			if gr.Kind != GroupNeverTogether {
				continue
			}
			hasA, hasB := false, false
			for _, id := range gr.Players {
				if id == a {
					hasA = true
				}
				if id == b {
					hasB = true
				}
			}
			if hasA && hasB {
				return true
			}
		}
		return false
	}

	for i, gr := range r.GroupRules {
		if gr.Kind != GroupIfThenRequire {
			continue
		}
		allBlocked := true
		for _, req := range gr.Players {
			if !forbidden(gr.If, req) {
				allBlocked = false
				break
			}
		}
		if allBlocked {
			return fmt.Errorf("group rule %d: every required partner of %s is forbidden by a never-together rule", i, gr.If)
		}
	}
	return nil
}
