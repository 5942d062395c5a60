package leagueservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
)

// seedTenMemberCohort creates an expired Bloom cohort with members m01..m10
// holding 500, 450, ... 50, 0 xp.
func seedTenMemberCohort(h *harness) *leaguedb.Cohort {
	xps := map[string]int64{}
	for i := 1; i <= 10; i++ {
		xp := int64(550 - i*50)
		if i == 10 {
			xp = 0
		}
		xps[fmt.Sprintf("m%02d", i)] = xp
	}
	return seedMiddleCohort(h, xps)
}

func outcomesByUser(r *CohortResolution) map[string]leaguedomain.MemberOutcome {
	out := map[string]leaguedomain.MemberOutcome{}
	for _, o := range r.Outcomes {
		out[o.UserID] = o
	}
	return out
}

func TestLeagueService_ResolveCohort(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := seedTenMemberCohort(h)

	res, err := h.svc.ResolveCohort(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 10)
	assert.False(t, res.Replayed)

	assert.Equal(t, leaguedomain.CohortResolved, h.repo.cohort(c.ID).State)

	wantTier := map[leaguedomain.Outcome]int{
		leaguedomain.OutcomePromoted: 5,
		leaguedomain.OutcomeRetained: 4,
		leaguedomain.OutcomeDemoted:  3,
	}
	byUser := outcomesByUser(res)
	active := h.repo.activeIn("global")
	require.Len(t, active, 10, "every member holds exactly one active membership")
	for _, m := range active {
		assert.NotEqual(t, c.ID, m.CohortID)
		next := h.repo.cohort(m.CohortID)
		assert.Equal(t, wantTier[byUser[m.UserID].Outcome], next.TierOrder, m.UserID)
		assert.Equal(t, int64(0), m.XPInCohort)
	}

	wantGems := map[string]int{"m01": 20, "m02": 18, "m03": 16, "m04": 10, "m08": 10, "m09": 0, "m10": 0}
	for user, gems := range wantGems {
		assert.Equal(t, gems, h.wallet.total(user), user)
	}

	for i := 1; i <= 10; i++ {
		user := fmt.Sprintf("m%02d", i)
		notes := h.notifications.forUser(user)
		require.Len(t, notes, 1, user)
		assert.Equal(t, byUser[user].Outcome, notes[0].Kind)

		pushes := h.transport.on(leaguedomain.StatusChannel(leaguedomain.GlobalScope(), user))
		require.Len(t, pushes, 2, user)
		var resolved leaguedomain.ResolvedMessage
		require.NoError(t, json.Unmarshal(pushes[0].Payload, &resolved))
		assert.Equal(t, leaguedomain.MessageLeagueResolved, resolved.Type)
		assert.Equal(t, i, resolved.UserRank)
		assert.Equal(t, "Bloom", resolved.TierName)

		var next leaguedomain.NextLeagueMessage
		require.NoError(t, json.Unmarshal(pushes[1].Payload, &next))
		assert.Equal(t, leaguedomain.MessageNextLeague, next.Type)
		require.NotNil(t, next.Standings)
		assert.Equal(t, user, next.Standings.CallingUserID)
	}

	assert.Len(t, h.live.Calls(), 10)
}

func TestLeagueService_ResolveCohort_RetryPaysOnlyTheRemainder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := seedTenMemberCohort(h)

	failed := false
	h.repo.InsertRewardStampFunc = func(ctx context.Context, db bun.IDB, cohortID int64, userID string, amount int) (bool, error) {
		if userID == "m05" && !failed {
			failed = true
			return false, errors.New("connection reset")
		}
		return h.repo.insertStamp(cohortID, userID, amount)
	}

	_, err := h.svc.ResolveCohort(ctx, c.ID)
	require.Error(t, err)
	cohort := h.repo.cohort(c.ID)
	assert.Equal(t, leaguedomain.CohortResolving, cohort.State)
	assert.Nil(t, cohort.ClaimToken, "claim is released for the next tick")
	assert.Equal(t, 0, h.wallet.total("m05"))
	assert.Len(t, h.repo.activeIn("global"), 10)

	res, err := h.svc.ResolveCohort(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, leaguedomain.CohortResolved, h.repo.cohort(c.ID).State)

	assert.Equal(t, 10, h.wallet.total("m05"))
	assert.Equal(t, 20, h.wallet.total("m01"), "no double credit on retry")
	for i := 1; i <= 10; i++ {
		user := fmt.Sprintf("m%02d", i)
		assert.Len(t, h.notifications.forUser(user), 1, user)
		assert.Len(t, h.transport.on(leaguedomain.StatusChannel(leaguedomain.GlobalScope(), user)), 2, user)
	}
	assert.Len(t, h.repo.activeIn("global"), 10)
}

func TestLeagueService_ResolveCohort_ClaimLost(t *testing.T) {
	ctx := context.Background()

	t.Run("claimed elsewhere", func(t *testing.T) {
		h := newHarness(t)
		c := seedTenMemberCohort(h)
		h.repo.ClaimForResolutionFunc = func(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, now time.Time, lease time.Duration) (bool, error) {
			return false, nil
		}

		_, err := h.svc.ResolveCohort(ctx, c.ID)
		assert.ErrorIs(t, err, leaguedb.ErrClaimLost)
		assert.Empty(t, h.notifications.forUser("m01"))
	})

	t.Run("lost before finalize", func(t *testing.T) {
		h := newHarness(t)
		c := seedTenMemberCohort(h)
		h.repo.FinalizeResolutionFunc = func(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, now time.Time) error {
			return leaguedb.ErrClaimLost
		}

		_, err := h.svc.ResolveCohort(ctx, c.ID)
		assert.ErrorIs(t, err, leaguedb.ErrClaimLost)
		assert.Empty(t, h.live.Calls())
	})

	t.Run("not yet expired", func(t *testing.T) {
		h := newHarness(t)
		c := seedTenMemberCohort(h)
		h.clock.Advance(-time.Hour)

		_, err := h.svc.ResolveCohort(ctx, c.ID)
		assert.ErrorIs(t, err, leaguedb.ErrClaimLost)
		assert.Equal(t, leaguedomain.CohortActive, h.repo.cohort(c.ID).State)
	})
}

func TestLeagueService_ResolveCohort_SkipsMissingUsers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := seedTenMemberCohort(h)
	h.users.remove("m10")

	res, err := h.svc.ResolveCohort(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"m10"}, res.Skipped)
	assert.Len(t, res.Outcomes, 9)

	_, err = h.repo.ActiveMembership(ctx, nil, "m10", leaguedomain.GlobalScope())
	assert.ErrorIs(t, err, leaguedb.ErrNotFound)
	assert.Empty(t, h.notifications.forUser("m10"))
	assert.Len(t, h.repo.activeIn("global"), 9)
}

func TestLeagueService_ResolveCohort_UndersizedDemotesIdleMembers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := seedMiddleCohort(h, map[string]int64{"a": 30, "b": 0})

	res, err := h.svc.ResolveCohort(ctx, c.ID)
	require.NoError(t, err)
	byUser := outcomesByUser(res)
	assert.Equal(t, leaguedomain.OutcomeRetained, byUser["a"].Outcome)
	assert.Equal(t, leaguedomain.OutcomeDemoted, byUser["b"].Outcome)

	m, err := h.repo.ActiveMembership(ctx, nil, "b", leaguedomain.GlobalScope())
	require.NoError(t, err)
	assert.Equal(t, 3, m.Cohort.TierOrder)
}

func TestLeagueService_ResolveCohort_EmptyCohort(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := seedMiddleCohort(h, map[string]int64{})

	res, err := h.svc.ResolveCohort(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Outcomes)
	assert.Equal(t, leaguedomain.CohortResolved, h.repo.cohort(c.ID).State)
}

func TestLeagueService_ResolveExpiredCohorts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	seedTenMemberCohort(h)
	seedMiddleCohort(h, map[string]int64{"g1": 5, "g2": 6})
	h.repo.seedCohort(leaguedb.Cohort{TierOrder: 1, WindowStart: t0, WindowEnd: t0.AddDate(0, 0, 7), Capacity: 30})

	acme := "acme"
	company := h.repo.seedCohort(leaguedb.Cohort{
		TierOrder:   2,
		ScopeKind:   leaguedomain.ScopeCompany,
		CompanyID:   &acme,
		ScopeKey:    leaguedomain.CompanyScope(acme).Key(),
		WindowStart: t0.AddDate(0, 0, -7),
		WindowEnd:   t0,
		Capacity:    30,
	})
	h.users.put(companyProfile("c1", acme, 500))
	h.repo.seedMember(company.ID, "c1", 40)

	report, err := h.svc.ResolveExpiredCohorts(ctx)
	require.NoError(t, err)
	require.Len(t, report.Passes, 2)

	assert.Equal(t, leaguedomain.ScopeGlobal, report.Passes[0].Kind)
	assert.Equal(t, 2, report.Passes[0].Due)
	assert.Equal(t, 2, report.Passes[0].Resolved)
	assert.Equal(t, leaguedomain.ScopeCompany, report.Passes[1].Kind)
	assert.Equal(t, 1, report.Passes[1].Resolved)
	assert.Equal(t, 3, report.Resolved())
	assert.Equal(t, 0, report.Failed())

	trace := h.repo.Trace()
	assert.Less(t, indexOf(trace, "ExpiredCohorts:global"), indexOf(trace, "ExpiredCohorts:company"))

	m, err := h.repo.ActiveMembership(ctx, nil, "c1", leaguedomain.CompanyScope(acme))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Cohort.TierOrder)

	again, err := h.svc.ResolveExpiredCohorts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Resolved())
}

func TestLeagueService_ResolveExpiredCohorts_CompanyLadder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	acme := "acme"
	scope := leaguedomain.CompanyScope(acme)
	require.NoError(t, h.repo.SetCompanyTiers(ctx, nil, acme, []int{3, 5, 7}))

	// Ten members per tier ranked m01..m10 with 500, 450, ... 50, 0 xp.
	member := func(tier, rank int) string { return fmt.Sprintf("t%d-m%02d", tier, rank) }
	for _, tier := range []int{3, 5, 7} {
		c := h.repo.seedCohort(leaguedb.Cohort{
			TierOrder:   tier,
			ScopeKind:   leaguedomain.ScopeCompany,
			CompanyID:   &acme,
			ScopeKey:    scope.Key(),
			WindowStart: t0.AddDate(0, 0, -7),
			WindowEnd:   t0,
			Capacity:    30,
		})
		for rank := 1; rank <= 10; rank++ {
			xp := int64(550 - rank*50)
			if rank == 10 {
				xp = 0
			}
			h.users.put(companyProfile(member(tier, rank), acme, 1000))
			h.repo.seedMember(c.ID, member(tier, rank), xp)
		}
	}

	report, err := h.svc.ResolveExpiredCohorts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Resolved())
	assert.Equal(t, 0, report.Failed())
	require.Len(t, h.repo.activeIn(scope.Key()), 30)

	tests := []struct {
		name     string
		tier     int
		rank     int
		wantTier int
		wantGems int
	}{
		{name: "top tier retains the leader", tier: 7, rank: 1, wantTier: 7, wantGems: 10},
		{name: "top tier retains the idle", tier: 7, rank: 10, wantTier: 7, wantGems: 10},
		{name: "bottom tier promotes past the gap", tier: 3, rank: 1, wantTier: 5, wantGems: 20},
		{name: "bottom tier third promotes", tier: 3, rank: 3, wantTier: 5, wantGems: 16},
		{name: "bottom tier retains the rest", tier: 3, rank: 4, wantTier: 3, wantGems: 10},
		{name: "bottom tier idle retains unpaid", tier: 3, rank: 10, wantTier: 3, wantGems: 0},
		{name: "middle tier promotes to the top", tier: 5, rank: 2, wantTier: 7, wantGems: 18},
		{name: "middle tier retains", tier: 5, rank: 8, wantTier: 5, wantGems: 10},
		{name: "middle tier demotes past the gap", tier: 5, rank: 9, wantTier: 3, wantGems: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := member(tt.tier, tt.rank)
			m, err := h.repo.ActiveMembership(ctx, nil, user, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, m.Cohort.TierOrder)
			assert.Equal(t, tt.wantGems, h.wallet.total(user))
		})
	}
}

func TestLeagueService_ResolveExpiredCohorts_CountsFailures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seedTenMemberCohort(h)
	h.users.GetUsersFunc = func(ctx context.Context, userIDs []string) (map[string]leaguedomain.UserProfile, error) {
		return nil, errors.New("directory unavailable")
	}

	report, err := h.svc.ResolveExpiredCohorts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, leaguedomain.CohortResolving, h.repo.cohort(1).State)
	assert.Nil(t, h.repo.cohort(1).ClaimedAt)
}

func indexOf(items []string, want string) int {
	for i, s := range items {
		if s == want {
			return i
		}
	}
	return -1
}
