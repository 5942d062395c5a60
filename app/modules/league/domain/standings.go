package leaguedomain

import (
	"fmt"
	"time"
)

// StandingsEntry is one member's row in the provisional view.
type StandingsEntry struct {
	UserID               string  `json:"user_id"`
	DisplayName          string  `json:"display_name"`
	Avatar               string  `json:"avatar"`
	XPInCohort           int64   `json:"xp_in_cohort"`
	StreakDays           int     `json:"streak_days"`
	Rank                 int     `json:"rank"`
	TentativeAdvancement Outcome `json:"tentative_advancement"`
	TentativeReward      int     `json:"tentative_reward"`
}

// StandingsView is the provisional outcome of a cohort as if its window
// ended now. CallingUserRank is zero when the calling user is not a member.
type StandingsView struct {
	CohortID        int64            `json:"cohort_id"`
	Scope           string           `json:"scope"`
	TierName        string           `json:"tier_name"`
	TierLevel       int              `json:"tier_level"`
	WindowStart     time.Time        `json:"window_start"`
	WindowEnd       time.Time        `json:"window_end"`
	CallingUserID   string           `json:"calling_user_id,omitempty"`
	CallingUserRank int              `json:"calling_user_rank"`
	Members         []StandingsEntry `json:"members"`
}

// BuildStandings resolves members at the cohort's ladder position and
// decorates each row with the member's profile. Members with no profile keep
// an empty display name.
func BuildStandings(
	cohort Cohort,
	tier Tier,
	pos TierPosition,
	contenders []Contender,
	profiles map[string]UserProfile,
	callingUserID string,
) *StandingsView {
	outcomes := Resolve(contenders, pos)

	view := &StandingsView{
		CohortID:      cohort.ID,
		Scope:         cohort.Scope.Key(),
		TierName:      tier.Name,
		TierLevel:     tier.Order,
		WindowStart:   cohort.WindowStart,
		WindowEnd:     cohort.WindowEnd,
		CallingUserID: callingUserID,
		Members:       make([]StandingsEntry, 0, len(outcomes)),
	}

	for _, o := range outcomes {
		p := profiles[o.UserID]
		view.Members = append(view.Members, StandingsEntry{
			UserID:               o.UserID,
			DisplayName:          p.DisplayName,
			Avatar:               p.AvatarRef,
			XPInCohort:           o.XPInCohort,
			StreakDays:           o.StreakDays,
			Rank:                 o.Rank,
			TentativeAdvancement: o.Outcome,
			TentativeReward:      o.Reward,
		})
		if o.UserID == callingUserID {
			view.CallingUserRank = o.Rank
		}
	}
	return view
}

// ResolvedMessage is pushed to a member's status channel when their cohort
// resolves.
type ResolvedMessage struct {
	Type      string    `json:"type"`
	CohortID  int64     `json:"cohort_id"`
	TierName  string    `json:"tier_name"`
	TierLevel int       `json:"tier_level"`
	WindowEnd time.Time `json:"window_end"`
	UserRank  int       `json:"user_rank"`
	Outcome   Outcome   `json:"outcome"`
	Reward    int       `json:"reward"`
}

// StandingsMessage is pushed to a cohort channel whenever its standings
// change.
type StandingsMessage struct {
	Type      string         `json:"type"`
	Standings *StandingsView `json:"standings"`
}

// NextLeagueMessage describes the cohort a member was placed into after
// resolution.
type NextLeagueMessage struct {
	Type      string         `json:"type"`
	Standings *StandingsView `json:"standings"`
}

const (
	MessageLeagueResolved = "league_resolved"
	MessageNextLeague     = "next_league"
	MessageStandings      = "standings"
)

// NotificationContent renders the human-readable notification text.
func NotificationContent(outcome Outcome, tierName string, rank, reward int) string {
	switch outcome {
	case OutcomePromoted:
		return fmt.Sprintf("You finished #%d in %s and were promoted. +%d gems", rank, tierName, reward)
	case OutcomeDemoted:
		return fmt.Sprintf("You finished #%d in %s and moved down a tier.", rank, tierName)
	}
	if reward > 0 {
		return fmt.Sprintf("You finished #%d and stay in %s. +%d gems", rank, tierName, reward)
	}
	return fmt.Sprintf("You finished #%d and stay in %s.", rank, tierName)
}
