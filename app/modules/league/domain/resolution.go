package leaguedomain

import (
	"cmp"
	"slices"
)

// Outcome is a member's result when a cohort resolves.
type Outcome string

const (
	OutcomePromoted Outcome = "promoted"
	OutcomeRetained Outcome = "retained"
	OutcomeDemoted  Outcome = "demoted"
)

const (
	retainReward        = 10
	topPromotionReward  = 20
	promotionRewardStep = 2
	undersizedCohort    = 3
)

// Contender is the ranking input for one membership.
type Contender struct {
	MembershipID int64
	UserID       string
	XPInCohort   int64
	StreakDays   int
}

// MemberOutcome is the decision for one ranked member.
type MemberOutcome struct {
	MembershipID int64
	UserID       string
	Rank         int
	XPInCohort   int64
	StreakDays   int
	Outcome      Outcome
	Reward       int
}

// Rank orders contenders by xp desc, streak desc, membership id asc and
// returns a new slice. The order is total so ranking is deterministic.
func Rank(contenders []Contender) []Contender {
	ranked := slices.Clone(contenders)
	slices.SortFunc(ranked, func(a, b Contender) int {
		if c := cmp.Compare(b.XPInCohort, a.XPInCohort); c != 0 {
			return c
		}
		if c := cmp.Compare(b.StreakDays, a.StreakDays); c != 0 {
			return c
		}
		return cmp.Compare(a.MembershipID, b.MembershipID)
	})
	return ranked
}

// PromotionCut is floor(n * 0.30).
func PromotionCut(n int) int { return n * 3 / 10 }

// DemotionCut is floor(n * 0.80).
func DemotionCut(n int) int { return n * 8 / 10 }

// PromotionReward pays 20 gems for rank 1, two fewer per rank below, never
// less than zero.
func PromotionReward(rank int) int {
	return max(0, topPromotionReward-(rank-1)*promotionRewardStep)
}

// Resolve ranks the contenders and applies the promote/retain/demote table
// for a cohort at the given ladder position. It is pure and deterministic.
func Resolve(contenders []Contender, pos TierPosition) []MemberOutcome {
	ranked := Rank(contenders)
	n := len(ranked)
	promotionCut := PromotionCut(n)
	demotionCut := DemotionCut(n)

	out := make([]MemberOutcome, n)
	for i, c := range ranked {
		rank := i + 1
		outcome, reward := decide(pos, n, rank, c.XPInCohort, promotionCut, demotionCut)
		out[i] = MemberOutcome{
			MembershipID: c.MembershipID,
			UserID:       c.UserID,
			Rank:         rank,
			XPInCohort:   c.XPInCohort,
			StreakDays:   c.StreakDays,
			Outcome:      outcome,
			Reward:       reward,
		}
	}
	return out
}

func decide(pos TierPosition, n, rank int, xp int64, promotionCut, demotionCut int) (Outcome, int) {
	switch pos {
	case PositionTop:
		return OutcomeRetained, retainReward
	case PositionBottom:
		if rank <= promotionCut {
			return OutcomePromoted, PromotionReward(rank)
		}
		if xp > 0 {
			return OutcomeRetained, retainReward
		}
		return OutcomeRetained, 0
	}

	if n <= undersizedCohort {
		if xp == 0 {
			return OutcomeDemoted, 0
		}
		return OutcomeRetained, retainReward
	}
	switch {
	case rank <= promotionCut:
		return OutcomePromoted, PromotionReward(rank)
	case rank <= demotionCut:
		return OutcomeRetained, retainReward
	default:
		return OutcomeDemoted, 0
	}
}
