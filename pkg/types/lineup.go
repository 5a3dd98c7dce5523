package types

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// StackLabel classifies the dominant construction pattern of a lineup.
type StackLabel string

const (
	StackNone      StackLabel = "none"
	StackTeamLabel StackLabel = "team_stack"
	StackQBLabel   StackLabel = "qb_stack" // passer with a same-team pass catcher
	StackGameLabel StackLabel = "game_stack"
)

// SlotAssignment binds one roster slot to one player.
type SlotAssignment struct {
	Slot   RosterSlot `json:"slot"`
	Player Player     `json:"player"`
}

// Lineup is an ordered mapping of roster slots to players with derived
// totals and stack classification. Built through NewLineup so the derived
// fields are always consistent.
type Lineup struct {
	ID              uuid.UUID        `json:"id"`
	Slots           []SlotAssignment `json:"slots"`
	TotalSalary     int              `json:"total_salary"`
	TotalProjection float64          `json:"total_projection"`
	Stack           StackLabel       `json:"stack"`
}

// NewLineup builds a lineup from slot assignments, computing salary,
// projection, and stack classification. The ID is derived from the
// player set, so the same roster always gets the same ID and repeated
// solves under a fixed seed reproduce identical output.
func NewLineup(slots []SlotAssignment) Lineup {
	l := Lineup{
		ID:    lineupID(slots),
		Slots: slots,
	}
	for _, sa := range slots {
		l.TotalSalary += sa.Player.Salary
		l.TotalProjection += sa.Player.Projection
	}
	l.Stack = classifyStack(l.Players())
	return l
}

// lineupID hashes the sorted player IDs into a stable v5-style UUID.
func lineupID(slots []SlotAssignment) uuid.UUID {
	ids := make([]string, len(slots))
	for i, sa := range slots {
		ids[i] = sa.Player.ID.String()
	}
	sort.Strings(ids)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(ids, ":")))
}

// Players returns the lineup's players in slot order.
func (l Lineup) Players() []Player {
	players := make([]Player, len(l.Slots))
	for i, sa := range l.Slots {
		players[i] = sa.Player
	}
	return players
}

// Contains reports whether the lineup includes the given player.
func (l Lineup) Contains(id uuid.UUID) bool {
	for _, sa := range l.Slots {
		if sa.Player.ID == id {
			return true
		}
	}
	return false
}

// PlayerSet returns the lineup's player IDs as a set.
func (l Lineup) PlayerSet() map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(l.Slots))
	for _, sa := range l.Slots {
		set[sa.Player.ID] = true
	}
	return set
}

// Overlap counts players shared with another lineup.
func (l Lineup) Overlap(other Lineup) int {
	set := l.PlayerSet()
	shared := 0
	for _, sa := range other.Slots {
		if set[sa.Player.ID] {
			shared++
		}
	}
	return shared
}

var passCatchers = map[string]bool{"WR": true, "TE": true}

// classifyStack labels the lineup by its strongest correlation pattern:
// passer stacks first, then team stacks, then game stacks.
func classifyStack(players []Player) StackLabel {
	teamCounts := make(map[string]int)
	gameTeams := make(map[string]map[string]int)
	for _, p := range players {
		teamCounts[p.Team]++
		game := p.GameKey()
		if gameTeams[game] == nil {
			gameTeams[game] = make(map[string]int)
		}
		gameTeams[game][p.Team]++
	}

	for _, p := range players {
		if p.PrimaryPosition() != "QB" {
			continue
		}
		for _, q := range players {
			if q.ID != p.ID && q.Team == p.Team && passCatchers[q.PrimaryPosition()] {
				return StackQBLabel
			}
		}
	}
	for _, count := range teamCounts {
		if count >= 3 {
			return StackTeamLabel
		}
	}
	for _, teams := range gameTeams {
		if len(teams) < 2 {
			continue
		}
		total := 0
		for _, c := range teams {
			total += c
		}
		if total >= 4 {
			return StackGameLabel
		}
	}
	return StackNone
}

// Portfolio is an ordered sequence of lineups with a running per-player
// usage counter. The counter is single-writer: Add must not be called
// concurrently.
type Portfolio struct {
	Lineups []Lineup `json:"lineups"`
	usage   map[uuid.UUID]int
}

// NewPortfolio returns an empty portfolio.
func NewPortfolio() *Portfolio {
	return &Portfolio{usage: make(map[uuid.UUID]int)}
}

// Add appends a lineup and updates usage counts.
func (p *Portfolio) Add(l Lineup) {
	if p.usage == nil {
		p.usage = make(map[uuid.UUID]int)
	}
	p.Lineups = append(p.Lineups, l)
	for _, sa := range l.Slots {
		p.usage[sa.Player.ID]++
	}
}

// Usage returns the number of lineups containing the player.
func (p *Portfolio) Usage(id uuid.UUID) int {
	return p.usage[id]
}

// Exposure returns the fraction of lineups containing the player, 0-1.
func (p *Portfolio) Exposure(id uuid.UUID) float64 {
	if len(p.Lineups) == 0 {
		return 0
	}
	return float64(p.usage[id]) / float64(len(p.Lineups))
}

// Size returns the number of lineups in the portfolio.
func (p *Portfolio) Size() int {
	return len(p.Lineups)
}
