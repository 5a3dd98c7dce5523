package optimizer

import (
	"github.com/google/uuid"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// testPlayer builds a player fixture with floor/ceiling spread around the
// projection and a deterministic ID derived from the name.
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
		Ownership:  0.15,
		Status:     types.StatusActive,
	}
}

// nflPool is a 32-player slate across four games, enough to fill a
// classic 9-slot roster many times over.
func nflPool() []types.Player {
	return []types.Player{
		testPlayer("Mahomes", "QB", "KC", "LV", 8000, 24.0),
		testPlayer("Purdy", "QB", "SF", "SEA", 6800, 19.5),
		testPlayer("Prescott", "QB", "DAL", "NYG", 6500, 18.0),
		testPlayer("Allen", "QB", "BUF", "MIA", 7800, 23.0),

		testPlayer("McCaffrey", "RB", "SF", "SEA", 9000, 22.0),
		testPlayer("Pacheco", "RB", "KC", "LV", 6200, 14.5),
		testPlayer("Pollard", "RB", "DAL", "NYG", 6000, 13.5),
		testPlayer("Cook", "RB", "BUF", "MIA", 5800, 13.0),
		testPlayer("Jacobs", "RB", "LV", "KC", 6400, 14.0),
		testPlayer("Walker", "RB", "SEA", "SF", 5600, 12.0),
		testPlayer("Achane", "RB", "MIA", "BUF", 5400, 12.5),
		testPlayer("Barkley", "RB", "NYG", "DAL", 6600, 14.8),

		testPlayer("Rice", "WR", "KC", "LV", 6300, 15.0),
		testPlayer("Aiyuk", "WR", "SF", "SEA", 6700, 15.5),
		testPlayer("Lamb", "WR", "DAL", "NYG", 8200, 19.0),
		testPlayer("Diggs", "WR", "BUF", "MIA", 7400, 16.5),
		testPlayer("Adams", "WR", "LV", "KC", 7600, 17.0),
		testPlayer("Metcalf", "WR", "SEA", "SF", 6100, 13.8),
		testPlayer("Hill", "WR", "MIA", "BUF", 8600, 20.5),
		testPlayer("Slayton", "WR", "NYG", "DAL", 3900, 8.5),
		testPlayer("Watson", "WR", "KC", "LV", 3400, 7.0),
		testPlayer("Jennings", "WR", "SF", "SEA", 3600, 7.5),

		testPlayer("Kelce", "TE", "KC", "LV", 7200, 16.0),
		testPlayer("Kittle", "TE", "SF", "SEA", 6000, 13.0),
		testPlayer("Ferguson", "TE", "DAL", "NYG", 3800, 8.0),
		testPlayer("Kincaid", "TE", "BUF", "MIA", 4400, 9.5),

		testPlayer("49ers DST", "DST", "SF", "SEA", 3700, 8.0),
		testPlayer("Chiefs DST", "DST", "KC", "LV", 3500, 7.5),
		testPlayer("Cowboys DST", "DST", "DAL", "NYG", 3300, 7.0),
		testPlayer("Bills DST", "DST", "BUF", "MIA", 3200, 6.8),
		testPlayer("Dolphins DST", "DST", "MIA", "BUF", 2900, 5.5),
		testPlayer("Seahawks DST", "DST", "SEA", "SF", 2800, 5.0),
	}
}

// classicRuleset is the standard 9-slot NFL roster under a $50,000 cap.
func classicRuleset() types.Ruleset {
	return types.Ruleset{
		Slots: []types.RosterSlot{
			{Name: "QB", Eligible: []string{"QB"}},
			{Name: "RB1", Eligible: []string{"RB"}},
			{Name: "RB2", Eligible: []string{"RB"}},
			{Name: "WR1", Eligible: []string{"WR"}},
			{Name: "WR2", Eligible: []string{"WR"}},
			{Name: "WR3", Eligible: []string{"WR"}},
			{Name: "TE", Eligible: []string{"TE"}},
			{Name: "FLEX", Eligible: []string{"RB", "WR", "TE"}},
			{Name: "DST", Eligible: []string{"DST"}},
		},
		SalaryCap: 50000,
	}
}

func poolPlayer(pool []types.Player, name string) *types.Player {
	for i := range pool {
		if pool[i].Name == name {
			return &pool[i]
		}
	}
	return nil
}
