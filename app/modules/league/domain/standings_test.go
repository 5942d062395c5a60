package leaguedomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStandings(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	cohort := Cohort{
		ID: 12, TierOrder: 5, Scope: CompanyScope("7"),
		WindowStart: start, WindowEnd: start.Add(DefaultWindow), Capacity: 30, State: CohortActive,
	}
	tier, _ := DefaultRegistry().Get(5)

	contenders := []Contender{
		{MembershipID: 1, UserID: "amy", XPInCohort: 10},
		{MembershipID: 2, UserID: "bo", XPInCohort: 300},
		{MembershipID: 3, UserID: "cy", XPInCohort: 0},
		{MembershipID: 4, UserID: "di", XPInCohort: 120},
	}
	profiles := map[string]UserProfile{
		"amy": {UserID: "amy", DisplayName: "Amy", AvatarRef: "a.png", StreakDays: 4},
		"bo":  {UserID: "bo", DisplayName: "Bo"},
	}

	view := BuildStandings(cohort, tier, PositionMiddle, contenders, profiles, "di")

	assert.Equal(t, int64(12), view.CohortID)
	assert.Equal(t, "company_7", view.Scope)
	assert.Equal(t, "Grove", view.TierName)
	assert.Equal(t, 5, view.TierLevel)
	assert.Equal(t, 2, view.CallingUserRank)
	require.Len(t, view.Members, 4)

	assert.Equal(t, "bo", view.Members[0].UserID)
	assert.Equal(t, OutcomePromoted, view.Members[0].TentativeAdvancement)
	assert.Equal(t, 20, view.Members[0].TentativeReward)

	assert.Equal(t, "Amy", view.Members[2].DisplayName)
	assert.Equal(t, "a.png", view.Members[2].Avatar)

	assert.Equal(t, "cy", view.Members[3].UserID)
	assert.Equal(t, OutcomeDemoted, view.Members[3].TentativeAdvancement)
	assert.Empty(t, view.Members[3].DisplayName)
}

func TestBuildStandings_NonMemberCaller(t *testing.T) {
	tier, _ := DefaultRegistry().Get(1)
	view := BuildStandings(Cohort{ID: 1, Scope: GlobalScope()}, tier, PositionBottom,
		[]Contender{{MembershipID: 1, UserID: "a"}}, nil, "stranger")
	assert.Zero(t, view.CallingUserRank)
}

func TestNotificationContent(t *testing.T) {
	assert.Equal(t, "You finished #1 in Grove and were promoted. +20 gems", NotificationContent(OutcomePromoted, "Grove", 1, 20))
	assert.Equal(t, "You finished #9 in Grove and moved down a tier.", NotificationContent(OutcomeDemoted, "Grove", 9, 0))
	assert.Equal(t, "You finished #4 and stay in Grove. +10 gems", NotificationContent(OutcomeRetained, "Grove", 4, 10))
	assert.Equal(t, "You finished #4 and stay in Sprout.", NotificationContent(OutcomeRetained, "Sprout", 4, 0))
}
