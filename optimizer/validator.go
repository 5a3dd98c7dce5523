package optimizer

import (
	"fmt"

	"github.com/stitts-dev/lineup-engine/pkg/types"
)

// Validate checks a candidate lineup against a ruleset and returns every
// violation found, in check order: slot eligibility, salary, team limit,
// stacking, group rules, lock/ban. It never fails on a bad lineup and has
// no side effects.
func Validate(lineup types.Lineup, ruleset types.Ruleset) types.ValidationResult {
	var violations []types.Violation

	violations = append(violations, checkSlots(lineup, ruleset)...)
	violations = append(violations, checkSalary(lineup, ruleset)...)
	violations = append(violations, checkTeamLimit(lineup, ruleset)...)
	violations = append(violations, checkStacking(lineup, ruleset)...)
	violations = append(violations, checkGroupRules(lineup, ruleset)...)
	violations = append(violations, checkLockBan(lineup)...)

	return types.ValidationResult{OK: len(violations) == 0, Violations: violations}
}

func checkSlots(lineup types.Lineup, ruleset types.Ruleset) []types.Violation {
	var out []types.Violation

	if len(lineup.Slots) != len(ruleset.Slots) {
		out = append(out, types.Violation{
			Family:  types.FamilySlotEligibility,
			Message: fmt.Sprintf("lineup has %d slots, ruleset requires %d", len(lineup.Slots), len(ruleset.Slots)),
		})
		return out
	}

	seen := make(map[string]bool, len(lineup.Slots))
	for i, sa := range lineup.Slots {
		if sa.Slot.Name != ruleset.Slots[i].Name {
			out = append(out, types.Violation{
				Family:  types.FamilySlotEligibility,
				Message: fmt.Sprintf("slot %d is %q, expected %q", i, sa.Slot.Name, ruleset.Slots[i].Name),
			})
			continue
		}
		if !ruleset.Slots[i].Allows(sa.Player) {
			out = append(out, types.Violation{
				Family: types.FamilySlotEligibility,
				Message: fmt.Sprintf("player %s (%v) is not eligible for slot %s",
					sa.Player.Name, sa.Player.Positions, sa.Slot.Name),
			})
		}
		key := sa.Player.ID.String()
		if seen[key] {
			out = append(out, types.Violation{
				Family:  types.FamilySlotEligibility,
				Message: fmt.Sprintf("player %s appears more than once", sa.Player.Name),
			})
		}
		seen[key] = true
	}
	return out
}

func checkSalary(lineup types.Lineup, ruleset types.Ruleset) []types.Violation {
	var out []types.Violation
	if lineup.TotalSalary > ruleset.SalaryCap {
		out = append(out, types.Violation{
			Family:  types.FamilySalary,
			Message: fmt.Sprintf("total salary %d exceeds cap %d", lineup.TotalSalary, ruleset.SalaryCap),
		})
	}
	if ruleset.SalaryFloor > 0 && lineup.TotalSalary < ruleset.SalaryFloor {
		out = append(out, types.Violation{
			Family:  types.FamilySalary,
			Message: fmt.Sprintf("total salary %d below floor %d", lineup.TotalSalary, ruleset.SalaryFloor),
		})
	}
	return out
}

func checkTeamLimit(lineup types.Lineup, ruleset types.Ruleset) []types.Violation {
	if ruleset.MaxPerTeam <= 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, sa := range lineup.Slots {
		counts[sa.Player.Team]++
	}
	var out []types.Violation
	for team, count := range counts {
		if count > ruleset.MaxPerTeam {
			out = append(out, types.Violation{
				Family:  types.FamilyTeamLimit,
				Message: fmt.Sprintf("%d players from team %s, max %d", count, team, ruleset.MaxPerTeam),
			})
		}
	}
	return out
}

func checkStacking(lineup types.Lineup, ruleset types.Ruleset) []types.Violation {
	var out []types.Violation
	players := lineup.Players()
	for i, rule := range ruleset.StackRules {
		if !stackSatisfied(players, rule) {
			out = append(out, types.Violation{
				Family:  types.FamilyStacking,
				Message: fmt.Sprintf("stack rule %d (%s) not satisfied", i, rule.Kind),
			})
		}
	}
	return out
}

// stackSatisfied checks one stacking template against the lineup players.
func stackSatisfied(players []types.Player, rule types.StackRule) bool {
	switch rule.Kind {
	case types.StackSameTeam, types.StackBringBack:
		for _, anchor := range players {
			if !anchor.HasPosition(rule.Anchor) {
				continue
			}
			partners := 0
			bringBack := false
			for _, p := range players {
				if p.ID == anchor.ID {
					continue
				}
				if p.Team == anchor.Team && positionIn(p, rule.Partners) {
					partners++
				}
				if p.Team == anchor.Opponent {
					bringBack = true
				}
			}
			if partners >= rule.Count && (rule.Kind != types.StackBringBack || bringBack) {
				return true
			}
		}
		return false
	case types.StackGameStack:
		games := make(map[string]map[string]int)
		for _, p := range players {
			key := p.GameKey()
			if games[key] == nil {
				games[key] = make(map[string]int)
			}
			games[key][p.Team]++
		}
		for _, teams := range games {
			if len(teams) < 2 {
				continue
			}
			total := 0
			for _, c := range teams {
				total += c
			}
			if total >= rule.Count {
				return true
			}
		}
		return false
	}
	return true
}

func positionIn(p types.Player, positions []string) bool {
	if len(positions) == 0 {
		return true
	}
	for _, pos := range positions {
		if p.HasPosition(pos) {
			return true
		}
	}
	return false
}

func checkGroupRules(lineup types.Lineup, ruleset types.Ruleset) []types.Violation {
	var out []types.Violation
	set := lineup.PlayerSet()
	for i, rule := range ruleset.GroupRules {
		switch rule.Kind {
		case types.GroupIfThenRequire:
			if !set[rule.If] {
				continue
			}
			found := false
			for _, id := range rule.Players {
				if set[id] {
					found = true
					break
				}
			}
			if !found {
				out = append(out, types.Violation{
					Family:  types.FamilyGroupRules,
					Message: fmt.Sprintf("group rule %d: trigger present but no required partner", i),
				})
			}
		case types.GroupNeverTogether:
			count := 0
			for _, id := range rule.Players {
				if set[id] {
					count++
				}
			}
			if count > 1 {
				out = append(out, types.Violation{
					Family:  types.FamilyGroupRules,
					Message: fmt.Sprintf("group rule %d: %d never-together players present", i, count),
				})
			}
		case types.GroupAtMostOne:
			count := 0
			for _, id := range rule.Players {
				if set[id] {
					count++
				}
			}
			if count > 1 {
				out = append(out, types.Violation{
					Family:  types.FamilyGroupRules,
					Message: fmt.Sprintf("group rule %d: %d of an at-most-one group present", i, count),
				})
			}
		}
	}
	return out
}

func checkLockBan(lineup types.Lineup) []types.Violation {
	var out []types.Violation
	for _, sa := range lineup.Slots {
		if sa.Player.Banned {
			out = append(out, types.Violation{
				Family:  types.FamilyLockBan,
				Message: fmt.Sprintf("banned player %s present", sa.Player.Name),
			})
		}
	}
	return out
}

// ValidateWithLocks extends Validate with the portfolio-level lock check:
// every locked player in the pool must appear in the lineup.
func ValidateWithLocks(lineup types.Lineup, ruleset types.Ruleset, pool []types.Player) types.ValidationResult {
	result := Validate(lineup, ruleset)
	set := lineup.PlayerSet()
	for _, p := range pool {
		if p.Locked && !set[p.ID] {
			result.Violations = append(result.Violations, types.Violation{
				Family:  types.FamilyLockBan,
				Message: fmt.Sprintf("locked player %s missing", p.Name),
			})
		}
	}
	result.OK = len(result.Violations) == 0
	return result
}
