package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func slotFor(name, position, team, opponent string) SlotAssignment {
	return SlotAssignment{
		Slot: RosterSlot{Name: name, Eligible: []string{position}},
		Player: Player{
			ID:        uuid.New(),
			Positions: []string{position},
			Team:      team,
			Opponent:  opponent,
			Salary:    5000,
		},
	}
}

func TestClassifyStackQB(t *testing.T) {
	lineup := NewLineup([]SlotAssignment{
		slotFor("QB", "QB", "KC", "LV"),
		slotFor("WR1", "WR", "KC", "LV"),
		slotFor("RB1", "RB", "DAL", "NYG"),
	})
	assert.Equal(t, StackQBLabel, lineup.Stack)
}

func TestClassifyStackTeam(t *testing.T) {
	lineup := NewLineup([]SlotAssignment{
		slotFor("RB1", "RB", "SF", "SEA"),
		slotFor("WR1", "WR", "SF", "SEA"),
		slotFor("TE", "TE", "SF", "SEA"),
	})
	assert.Equal(t, StackTeamLabel, lineup.Stack)
}

func TestClassifyStackGame(t *testing.T) {
	lineup := NewLineup([]SlotAssignment{
		slotFor("RB1", "RB", "BUF", "MIA"),
		slotFor("RB2", "RB", "MIA", "BUF"),
		slotFor("WR1", "WR", "BUF", "MIA"),
		slotFor("WR2", "WR", "MIA", "BUF"),
	})
	assert.Equal(t, StackGameLabel, lineup.Stack)
}

func TestClassifyStackNone(t *testing.T) {
	lineup := NewLineup([]SlotAssignment{
		slotFor("RB1", "RB", "SF", "SEA"),
		slotFor("WR1", "WR", "KC", "LV"),
		slotFor("TE", "TE", "DAL", "NYG"),
	})
	assert.Equal(t, StackNone, lineup.Stack)
}

func TestNewLineupDeterministicID(t *testing.T) {
	qb := slotFor("QB", "QB", "KC", "LV")
	wr := slotFor("WR1", "WR", "KC", "LV")
	rb := slotFor("RB1", "RB", "SF", "SEA")

	a := NewLineup([]SlotAssignment{qb, wr, rb})
	b := NewLineup([]SlotAssignment{qb, wr, rb})
	assert.Equal(t, a.ID, b.ID, "same roster, same ID")

	reordered := NewLineup([]SlotAssignment{rb, qb, wr})
	assert.Equal(t, a.ID, reordered.ID, "slot order does not change identity")

	other := NewLineup([]SlotAssignment{qb, wr, slotFor("RB1", "RB", "DAL", "NYG")})
	assert.NotEqual(t, a.ID, other.ID, "different roster, different ID")
}

func TestLineupOverlap(t *testing.T) {
	shared := slotFor("WR1", "WR", "KC", "LV")
	a := NewLineup([]SlotAssignment{shared, slotFor("RB1", "RB", "SF", "SEA")})
	b := NewLineup([]SlotAssignment{shared, slotFor("TE", "TE", "DAL", "NYG")})

	assert.Equal(t, 1, a.Overlap(b))
	assert.Equal(t, 1, b.Overlap(a))
	assert.True(t, a.Contains(shared.Player.ID))
}

func TestPortfolioUsageAndExposure(t *testing.T) {
	shared := slotFor("WR1", "WR", "KC", "LV")
	only := slotFor("RB1", "RB", "SF", "SEA")

	p := NewPortfolio()
	p.Add(NewLineup([]SlotAssignment{shared, only}))
	p.Add(NewLineup([]SlotAssignment{shared, slotFor("RB1", "RB", "DAL", "NYG")}))

	assert.Equal(t, 2, p.Size())
	assert.Equal(t, 2, p.Usage(shared.Player.ID))
	assert.Equal(t, 1, p.Usage(only.Player.ID))
	assert.InDelta(t, 1.0, p.Exposure(shared.Player.ID), 1e-9)
	assert.InDelta(t, 0.5, p.Exposure(only.Player.ID), 1e-9)
}
