package types

import (
	"fmt"
)

// ContestType distinguishes payout shapes.
type ContestType string

const (
	ContestCash       ContestType = "cash"
	ContestTournament ContestType = "tournament"
)

// PayoutTier maps an inclusive rank range to a payout expressed as a
// multiple of the entry fee. Tiers are ordered by rank and must not
// overlap.
type PayoutTier struct {
	FromRank int     `json:"from_rank"`
	ToRank   int     `json:"to_rank"`
	Multiple float64 `json:"multiple"`
}

// Contest describes the contest a portfolio is evaluated against.
type Contest struct {
	EntryFee    float64      `json:"entry_fee"`
	FieldSize   int          `json:"field_size"`
	ContestType ContestType  `json:"contest_type"`
	PayoutCurve []PayoutTier `json:"payout_curve"`
}

// Validate checks the contest configuration.
func (c Contest) Validate() error {
	if c.EntryFee <= 0 {
		return fmt.Errorf("entry fee must be positive, got %.2f", c.EntryFee)
	}
	if c.FieldSize < 2 {
		return fmt.Errorf("field size must be at least 2, got %d", c.FieldSize)
	}
	prevTo := 0
	for i, tier := range c.PayoutCurve {
		if tier.FromRank <= prevTo {
			return fmt.Errorf("payout tier %d overlaps or is out of order", i)
		}
		if tier.ToRank < tier.FromRank {
			return fmt.Errorf("payout tier %d has to_rank < from_rank", i)
		}
		if tier.Multiple <= 0 {
			return fmt.Errorf("payout tier %d has non-positive multiple", i)
		}
		prevTo = tier.ToRank
	}
	return nil
}

// PayoutForRank returns the payout for a final rank, zero below the cash
// line.
func (c Contest) PayoutForRank(rank int) float64 {
	for _, tier := range c.PayoutCurve {
		if rank >= tier.FromRank && rank <= tier.ToRank {
			return c.EntryFee * tier.Multiple
		}
	}
	return 0
}

// TopMultiple returns the payout multiple of the best tier, used as the
// odds term in the Kelly calculation.
func (c Contest) TopMultiple() float64 {
	best := 0.0
	for _, tier := range c.PayoutCurve {
		if tier.Multiple > best {
			best = tier.Multiple
		}
	}
	return best
}

// WinLine returns the rank at or above which a finish counts as a win:
// the top 1% of the field, at least rank 1.
func (c Contest) WinLine() int {
	line := c.FieldSize / 100
	if line < 1 {
		line = 1
	}
	return line
}
