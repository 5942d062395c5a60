package leaguedomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlacementPolicy_TargetFor(t *testing.T) {
	policy := DefaultPlacementPolicy()
	full := DefaultRegistry().Ladder(nil)
	company := DefaultRegistry().Ladder([]int{2, 5, 8})

	tests := []struct {
		name    string
		ladder  Ladder
		current int
		outcome Outcome
		want    PlacementTarget
	}{
		{"promote", full, 5, OutcomePromoted, PlacementTarget{TierOrder: 6, Capacity: 30}},
		{"retain", full, 5, OutcomeRetained, PlacementTarget{TierOrder: 5, Capacity: 30}},
		{"demote", full, 5, OutcomeDemoted, PlacementTarget{TierOrder: 4, Capacity: 30}},
		{"demote from bottom goes to fresh small cohort", full, 1, OutcomeDemoted, PlacementTarget{TierOrder: 1, Fresh: true, Capacity: 5}},
		{"promote at apex retains", full, 10, OutcomePromoted, PlacementTarget{TierOrder: 10, Capacity: 30}},
		{"company promote skips inactive tiers", company, 2, OutcomePromoted, PlacementTarget{TierOrder: 5, Capacity: 30}},
		{"company demote skips inactive tiers", company, 8, OutcomeDemoted, PlacementTarget{TierOrder: 5, Capacity: 30}},
		{"company retain on deactivated tier moves down", company, 6, OutcomeRetained, PlacementTarget{TierOrder: 5, Capacity: 30}},
		{"company demote from bottom", company, 2, OutcomeDemoted, PlacementTarget{TierOrder: 2, Fresh: true, Capacity: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.TargetFor(tt.ladder, tt.current, tt.outcome))
		})
	}
}

func TestPlacementPolicy_Admission(t *testing.T) {
	policy := PlacementPolicy{DefaultCapacity: 12, DemotionCapacity: 4, Window: time.Hour}
	assert.Equal(t, PlacementTarget{TierOrder: 1, Capacity: 12}, policy.AdmissionTarget(DefaultRegistry().Ladder(nil)))
	assert.Equal(t, PlacementTarget{TierOrder: 3, Capacity: 12}, policy.AdmissionTarget(DefaultRegistry().Ladder([]int{3, 9})))
}

func TestPlacementPolicy_NewWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.FixedZone("x", 3600))

	start, end := DefaultPlacementPolicy().NewWindow(now)
	assert.Equal(t, now.UTC(), start)
	assert.Equal(t, 7*24*time.Hour, end.Sub(start))

	start, end = PlacementPolicy{}.NewWindow(now)
	assert.Equal(t, DefaultWindow, end.Sub(start))
}

func TestCohort_AcceptsXP(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	c := Cohort{State: CohortActive, WindowEnd: now.Add(time.Minute)}
	assert.True(t, c.AcceptsXP(now))
	assert.False(t, c.Expired(now))

	assert.False(t, c.AcceptsXP(now.Add(time.Minute)))
	assert.True(t, c.Expired(now.Add(time.Minute)))

	c.State = CohortResolving
	assert.False(t, c.AcceptsXP(now))
}
