package simulator

import (
	"github.com/google/uuid"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

func testPlayer(name, position, team, opponent string, salary int, projection float64) types.Player {
	return types.Player{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		Name:       name,
		Positions:  []string{position},
		Team:       team,
		Opponent:   opponent,
		Salary:     salary,
		Projection: projection,
		Floor:      projection * 0.5,
		Ceiling:    projection * 1.8,
		StdDev:     projection * 0.3,
		Ownership:  0.2,
		Status:     types.StatusActive,
	}
}

// showdownPool is a compact six-player slate for a three-slot roster,
// small enough that simulations stay fast.
func showdownPool() []types.Player {
	return []types.Player{
		testPlayer("Mahomes", "QB", "KC", "LV", 11000, 24.0),
		testPlayer("Garoppolo", "QB", "LV", "KC", 8500, 16.0),
		testPlayer("Rice", "WR", "KC", "LV", 9200, 15.0),
		testPlayer("Adams", "WR", "LV", "KC", 9800, 17.0),
		testPlayer("Pacheco", "RB", "KC", "LV", 8800, 14.5),
		testPlayer("Jacobs", "RB", "LV", "KC", 9000, 14.0),
	}
}

func showdownRuleset() types.Ruleset {
	return types.Ruleset{
		Slots: []types.RosterSlot{
			{Name: "QB", Eligible: []string{"QB"}},
			{Name: "FLEX1", Eligible: []string{"RB", "WR"}},
			{Name: "FLEX2", Eligible: []string{"RB", "WR"}},
		},
		SalaryCap: 30000,
	}
}

func showdownLineup(pool []types.Player, names ...string) types.Lineup {
	ruleset := showdownRuleset()
	assignments := make([]types.SlotAssignment, len(names))
	for i, name := range names {
		for _, p := range pool {
			if p.Name == name {
				assignments[i] = types.SlotAssignment{Slot: ruleset.Slots[i], Player: p}
				break
			}
		}
	}
	return types.NewLineup(assignments)
}

func smallContest() types.Contest {
	return types.Contest{
		EntryFee:    10,
		FieldSize:   100,
		ContestType: types.ContestTournament,
		PayoutCurve: []types.PayoutTier{
			{FromRank: 1, ToRank: 1, Multiple: 20},
			{FromRank: 2, ToRank: 20, Multiple: 2},
		},
	}
}
