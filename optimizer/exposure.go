package optimizer

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// PlayerExposure reports one player's realized usage across a portfolio.
type PlayerExposure struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	Team     string    `json:"team"`
	Count    int       `json:"count"`
	Pct      float64   `json:"pct"` // 0-100
	MinPct   float64   `json:"min_pct,omitempty"`
	MaxPct   float64   `json:"max_pct,omitempty"`
}

// TeamExposure reports how many lineups contain at least one player from
// a team.
type TeamExposure struct {
	Team  string  `json:"team"`
	Count int     `json:"count"`
	Pct   float64 `json:"pct"` // 0-100
}

// ExposureReport summarizes realized exposures and diversity over a
// finished portfolio.
type ExposureReport struct {
	TotalLineups   int               `json:"total_lineups"`
	Players        []PlayerExposure  `json:"players"`
	Teams          []TeamExposure    `json:"teams"`
	DiversityScore float64           `json:"diversity_score"`
	Violations     []types.Violation `json:"violations,omitempty"`
}

// Summarize builds the exposure report for a portfolio against its pool.
// Bound violations are flagged with a one-lineup rounding tolerance,
// since exact percentage targets are unreachable at small N.
func Summarize(portfolio *types.Portfolio, pool []types.Player) *ExposureReport {
	report := &ExposureReport{TotalLineups: portfolio.Size()}
	if portfolio.Size() == 0 {
		return report
	}
	n := float64(portfolio.Size())
	tolerance := 100.0 / n

	for _, p := range pool {
		count := portfolio.Usage(p.ID)
		if count == 0 && p.MinExposure <= 0 {
			continue
		}
		pct := float64(count) / n * 100.0
		report.Players = append(report.Players, PlayerExposure{
			PlayerID: p.ID,
			Name:     p.Name,
			Team:     p.Team,
			Count:    count,
			Pct:      pct,
			MinPct:   p.MinExposure,
			MaxPct:   p.MaxExposure,
		})
		if p.MinExposure > 0 && pct < p.MinExposure-tolerance {
			report.Violations = append(report.Violations, types.Violation{
				Family:  types.FamilyExposure,
				Message: fmt.Sprintf("%s exposure %.1f%% below minimum %.1f%%", p.Name, pct, p.MinExposure),
			})
		}
		if p.MaxExposure > 0 && pct > p.MaxExposure+tolerance {
			report.Violations = append(report.Violations, types.Violation{
				Family:  types.FamilyExposure,
				Message: fmt.Sprintf("%s exposure %.1f%% above maximum %.1f%%", p.Name, pct, p.MaxExposure),
			})
		}
	}
	sort.Slice(report.Players, func(a, b int) bool {
		if report.Players[a].Count != report.Players[b].Count {
			return report.Players[a].Count > report.Players[b].Count
		}
		return report.Players[a].Name < report.Players[b].Name
	})

	teamCounts := make(map[string]int)
	for _, l := range portfolio.Lineups {
		seen := make(map[string]bool)
		for _, sa := range l.Slots {
			seen[sa.Player.Team] = true
		}
		for team := range seen {
			teamCounts[team]++
		}
	}
	for team, count := range teamCounts {
		report.Teams = append(report.Teams, TeamExposure{
			Team:  team,
			Count: count,
			Pct:   float64(count) / n * 100.0,
		})
	}
	sort.Slice(report.Teams, func(a, b int) bool {
		if report.Teams[a].Count != report.Teams[b].Count {
			return report.Teams[a].Count > report.Teams[b].Count
		}
		return report.Teams[a].Team < report.Teams[b].Team
	})

	report.DiversityScore = DiversityScore(portfolio)
	return report
}

// DiversityScore is one minus the mean pairwise Jaccard similarity of the
// portfolio's player sets. 1.0 means fully disjoint lineups, 0.0 means
// identical ones. A portfolio of fewer than two lineups scores 1.0.
func DiversityScore(portfolio *types.Portfolio) float64 {
	lineups := portfolio.Lineups
	if len(lineups) < 2 {
		return 1.0
	}
	total := 0.0
	pairs := 0
	for i := 0; i < len(lineups); i++ {
		for j := i + 1; j < len(lineups); j++ {
			shared := lineups[i].Overlap(lineups[j])
			union := len(lineups[i].Slots) + len(lineups[j].Slots) - shared
			if union > 0 {
				total += float64(shared) / float64(union)
			}
			pairs++
		}
	}
	return 1.0 - total/float64(pairs)
}
