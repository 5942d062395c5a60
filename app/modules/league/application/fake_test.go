package leagueservice

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
)

// ------------------------
// Fake Repo
// ------------------------

// FakeLeagueRepo keeps cohorts and memberships in memory. Any XxxFunc field
// overrides the in-memory behaviour of the matching method.
type FakeLeagueRepo struct {
	mu    sync.Mutex
	trace []string

	nextCohortID     int64
	nextMembershipID int64
	cohorts          map[int64]*leaguedb.Cohort
	memberships      []*leaguedb.Membership
	stamps           map[string]int
	companyTiers     map[string][]int

	AcquirePlacementLockFunc func(ctx context.Context, db bun.IDB, tierOrder int, scope leaguedomain.Scope) error
	GetCohortFunc            func(ctx context.Context, db bun.IDB, cohortID int64) (*leaguedb.Cohort, error)
	ListMembersFunc          func(ctx context.Context, db bun.IDB, cohortID int64) ([]leaguedb.Membership, error)
	ActiveMembershipsFunc    func(ctx context.Context, db bun.IDB, userID string) ([]leaguedb.Membership, error)
	IncrementXPFunc          func(ctx context.Context, db bun.IDB, membershipID int64, delta int64, now time.Time) (*leaguedb.Membership, error)
	ExpiredCohortsFunc       func(ctx context.Context, db bun.IDB, kind leaguedomain.ScopeKind, now time.Time, lease time.Duration, limit int) ([]leaguedb.Cohort, error)
	ClaimForResolutionFunc   func(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, now time.Time, lease time.Duration) (bool, error)
	RecordOutcomesFunc       func(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, records []leaguedb.OutcomeRecord, skipped []int64) error
	InsertRewardStampFunc    func(ctx context.Context, db bun.IDB, cohortID int64, userID string, amount int) (bool, error)
	FinalizeResolutionFunc   func(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, now time.Time) error
}

var _ leaguedb.Repository = (*FakeLeagueRepo)(nil)

func NewFakeLeagueRepo() *FakeLeagueRepo {
	return &FakeLeagueRepo{
		cohorts:      map[int64]*leaguedb.Cohort{},
		stamps:       map[string]int{},
		companyTiers: map[string][]int{},
	}
}

func (f *FakeLeagueRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeLeagueRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeLeagueRepo) memberCount(cohortID int64) int {
	n := 0
	for _, m := range f.memberships {
		if m.CohortID == cohortID {
			n++
		}
	}
	return n
}

// seedCohort inserts a cohort directly, bypassing placement.
func (f *FakeLeagueRepo) seedCohort(c leaguedb.Cohort) *leaguedb.Cohort {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == 0 {
		f.nextCohortID++
		c.ID = f.nextCohortID
	} else if c.ID > f.nextCohortID {
		f.nextCohortID = c.ID
	}
	if c.State == "" {
		c.State = leaguedomain.CohortActive
	}
	if c.ScopeKey == "" {
		c.ScopeKey = string(leaguedomain.ScopeGlobal)
		c.ScopeKind = leaguedomain.ScopeGlobal
	}
	f.cohorts[c.ID] = &c
	return &c
}

// seedMember adds an active membership with xp to cohortID.
func (f *FakeLeagueRepo) seedMember(cohortID int64, userID string, xp int64) *leaguedb.Membership {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMembershipID++
	m := &leaguedb.Membership{
		ID:         f.nextMembershipID,
		UserID:     userID,
		CohortID:   cohortID,
		ScopeKey:   f.cohorts[cohortID].ScopeKey,
		XPInCohort: xp,
		Active:     true,
	}
	f.memberships = append(f.memberships, m)
	return m
}

func (f *FakeLeagueRepo) activeIn(scopeKey string) []leaguedb.Membership {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leaguedb.Membership
	for _, m := range f.memberships {
		if m.Active && m.ScopeKey == scopeKey {
			out = append(out, *m)
		}
	}
	return out
}

func (f *FakeLeagueRepo) cohort(id int64) leaguedb.Cohort {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.cohorts[id]
}

func (f *FakeLeagueRepo) ListTiers(ctx context.Context, db bun.IDB) ([]leaguedb.Tier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTiers")
	var out []leaguedb.Tier
	for _, t := range leaguedomain.DefaultTiers {
		out = append(out, leaguedb.Tier{Order: t.Order, Name: t.Name})
	}
	return out, nil
}

func (f *FakeLeagueRepo) CompanyTiers(ctx context.Context, db bun.IDB, companyID string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CompanyTiers")
	return slices.Clone(f.companyTiers[companyID]), nil
}

func (f *FakeLeagueRepo) SetCompanyTiers(ctx context.Context, db bun.IDB, companyID string, orders []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetCompanyTiers")
	f.companyTiers[companyID] = slices.Clone(orders)
	return nil
}

func (f *FakeLeagueRepo) AcquirePlacementLock(ctx context.Context, db bun.IDB, tierOrder int, scope leaguedomain.Scope) error {
	if f.AcquirePlacementLockFunc != nil {
		return f.AcquirePlacementLockFunc(ctx, db, tierOrder, scope)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("AcquirePlacementLock:%d:%s", tierOrder, scope.Key()))
	return nil
}

func (f *FakeLeagueRepo) OpenCohorts(ctx context.Context, db bun.IDB, tierOrder int, scope leaguedomain.Scope, now time.Time) ([]leaguedb.Cohort, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("OpenCohorts")
	var out []leaguedb.Cohort
	for _, c := range f.cohorts {
		count := f.memberCount(c.ID)
		if c.TierOrder == tierOrder && c.ScopeKey == scope.Key() && c.Domain().AcceptsXP(now) && count < c.Capacity {
			cp := *c
			cp.MemberCount = count
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WindowStart.Equal(out[j].WindowStart) {
			return out[i].WindowStart.Before(out[j].WindowStart)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *FakeLeagueRepo) CreateCohort(ctx context.Context, db bun.IDB, in leaguedb.NewCohort) (*leaguedb.Cohort, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateCohort")
	f.nextCohortID++
	c := &leaguedb.Cohort{
		ID:          f.nextCohortID,
		TierOrder:   in.TierOrder,
		ScopeKind:   in.Scope.Kind,
		ScopeKey:    in.Scope.Key(),
		WindowStart: in.WindowStart,
		WindowEnd:   in.WindowEnd,
		Capacity:    in.Capacity,
		State:       leaguedomain.CohortActive,
	}
	if !in.Scope.IsGlobal() {
		id := in.Scope.CompanyID
		c.CompanyID = &id
	}
	f.cohorts[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *FakeLeagueRepo) GetCohort(ctx context.Context, db bun.IDB, cohortID int64) (*leaguedb.Cohort, error) {
	if f.GetCohortFunc != nil {
		return f.GetCohortFunc(ctx, db, cohortID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetCohort")
	c, ok := f.cohorts[cohortID]
	if !ok {
		return nil, leaguedb.ErrNotFound
	}
	cp := *c
	cp.MemberCount = f.memberCount(cohortID)
	return &cp, nil
}

func (f *FakeLeagueRepo) TryAddMembership(ctx context.Context, db bun.IDB, userID string, cohortID int64, now time.Time) (*leaguedb.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TryAddMembership")
	c, ok := f.cohorts[cohortID]
	if !ok {
		return nil, leaguedb.ErrNotFound
	}
	if !c.Domain().AcceptsXP(now) {
		return nil, leaguedb.ErrCohortClosed
	}
	for _, m := range f.memberships {
		if m.Active && m.UserID == userID && m.ScopeKey == c.ScopeKey {
			return nil, leaguedb.ErrAlreadyMember
		}
	}
	if f.memberCount(cohortID) >= c.Capacity {
		return nil, leaguedb.ErrCohortFull
	}
	f.nextMembershipID++
	m := &leaguedb.Membership{
		ID:       f.nextMembershipID,
		UserID:   userID,
		CohortID: cohortID,
		ScopeKey: c.ScopeKey,
		Active:   true,
	}
	f.memberships = append(f.memberships, m)
	cp := *m
	cc := *c
	cp.Cohort = &cc
	return &cp, nil
}

func (f *FakeLeagueRepo) ActiveMembership(ctx context.Context, db bun.IDB, userID string, scope leaguedomain.Scope) (*leaguedb.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ActiveMembership")
	for _, m := range f.memberships {
		if m.Active && m.UserID == userID && m.ScopeKey == scope.Key() {
			cp := *m
			cc := *f.cohorts[m.CohortID]
			cp.Cohort = &cc
			return &cp, nil
		}
	}
	return nil, leaguedb.ErrNotFound
}

func (f *FakeLeagueRepo) ActiveMemberships(ctx context.Context, db bun.IDB, userID string) ([]leaguedb.Membership, error) {
	if f.ActiveMembershipsFunc != nil {
		return f.ActiveMembershipsFunc(ctx, db, userID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ActiveMemberships")
	var out []leaguedb.Membership
	for _, m := range f.memberships {
		if m.Active && m.UserID == userID {
			cp := *m
			cc := *f.cohorts[m.CohortID]
			cp.Cohort = &cc
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f *FakeLeagueRepo) IncrementXP(ctx context.Context, db bun.IDB, membershipID int64, delta int64, now time.Time) (*leaguedb.Membership, error) {
	if f.IncrementXPFunc != nil {
		return f.IncrementXPFunc(ctx, db, membershipID, delta, now)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("IncrementXP")
	for _, m := range f.memberships {
		if m.ID != membershipID {
			continue
		}
		if !m.Active || !f.cohorts[m.CohortID].Domain().AcceptsXP(now) {
			return nil, leaguedb.ErrCohortClosed
		}
		m.XPInCohort += delta
		cp := *m
		return &cp, nil
	}
	return nil, leaguedb.ErrNotFound
}

func (f *FakeLeagueRepo) ListMembers(ctx context.Context, db bun.IDB, cohortID int64) ([]leaguedb.Membership, error) {
	if f.ListMembersFunc != nil {
		return f.ListMembersFunc(ctx, db, cohortID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListMembers")
	var out []leaguedb.Membership
	for _, m := range f.memberships {
		if m.CohortID == cohortID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *FakeLeagueRepo) ExpiredCohorts(ctx context.Context, db bun.IDB, kind leaguedomain.ScopeKind, now time.Time, lease time.Duration, limit int) ([]leaguedb.Cohort, error) {
	if f.ExpiredCohortsFunc != nil {
		return f.ExpiredCohortsFunc(ctx, db, kind, now, lease, limit)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ExpiredCohorts:" + string(kind))
	var out []leaguedb.Cohort
	for _, c := range f.cohorts {
		if c.ScopeKind != kind || !f.due(c, now, lease) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeLeagueRepo) due(c *leaguedb.Cohort, now time.Time, lease time.Duration) bool {
	switch c.State {
	case leaguedomain.CohortActive:
		return !c.WindowEnd.After(now)
	case leaguedomain.CohortResolving:
		return c.ClaimedAt == nil || c.ClaimedAt.Before(now.Add(-lease))
	}
	return false
}

func (f *FakeLeagueRepo) ClaimForResolution(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, now time.Time, lease time.Duration) (bool, error) {
	if f.ClaimForResolutionFunc != nil {
		return f.ClaimForResolutionFunc(ctx, db, cohortID, token, now, lease)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClaimForResolution")
	c, ok := f.cohorts[cohortID]
	if !ok || !f.due(c, now, lease) {
		return false, nil
	}
	c.State = leaguedomain.CohortResolving
	c.ClaimedAt = &now
	c.ClaimToken = &token
	return true, nil
}

func (f *FakeLeagueRepo) ReleaseClaim(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReleaseClaim")
	c, ok := f.cohorts[cohortID]
	if !ok || c.ClaimToken == nil || *c.ClaimToken != token {
		return leaguedb.ErrClaimLost
	}
	c.ClaimedAt = nil
	c.ClaimToken = nil
	return nil
}

func (f *FakeLeagueRepo) RecordOutcomes(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, records []leaguedb.OutcomeRecord, skipped []int64) error {
	if f.RecordOutcomesFunc != nil {
		return f.RecordOutcomesFunc(ctx, db, cohortID, token, records, skipped)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RecordOutcomes")
	c := f.cohorts[cohortID]
	if c.ClaimToken == nil || *c.ClaimToken != token {
		return leaguedb.ErrClaimLost
	}
	for _, rec := range records {
		for _, m := range f.memberships {
			if m.ID == rec.MembershipID {
				rank, outcome, reward := rec.Rank, rec.Outcome, rec.Reward
				m.FinalRank, m.Outcome, m.Reward = &rank, &outcome, &reward
				m.Active = false
			}
		}
	}
	for _, m := range f.memberships {
		if slices.Contains(skipped, m.ID) {
			m.Active = false
		}
	}
	return nil
}

func (f *FakeLeagueRepo) InsertRewardStamp(ctx context.Context, db bun.IDB, cohortID int64, userID string, amount int) (bool, error) {
	if f.InsertRewardStampFunc != nil {
		return f.InsertRewardStampFunc(ctx, db, cohortID, userID, amount)
	}
	return f.insertStamp(cohortID, userID, amount)
}

func (f *FakeLeagueRepo) insertStamp(cohortID int64, userID string, amount int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertRewardStamp")
	key := rewardKey(cohortID, userID)
	if _, ok := f.stamps[key]; ok {
		return false, nil
	}
	f.stamps[key] = amount
	return true, nil
}

func (f *FakeLeagueRepo) FinalizeResolution(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, now time.Time) error {
	if f.FinalizeResolutionFunc != nil {
		return f.FinalizeResolutionFunc(ctx, db, cohortID, token, now)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FinalizeResolution")
	c := f.cohorts[cohortID]
	if c.State != leaguedomain.CohortResolving || c.ClaimToken == nil || *c.ClaimToken != token {
		return leaguedb.ErrClaimLost
	}
	c.State = leaguedomain.CohortResolved
	c.ResolvedAt = &now
	c.ClaimedAt = nil
	c.ClaimToken = nil
	return nil
}

// ------------------------
// Fake Collaborators
// ------------------------

type FakeUserDirectory struct {
	mu    sync.Mutex
	users map[string]leaguedomain.UserProfile

	GetUsersFunc func(ctx context.Context, userIDs []string) (map[string]leaguedomain.UserProfile, error)
}

func NewFakeUserDirectory(profiles ...leaguedomain.UserProfile) *FakeUserDirectory {
	f := &FakeUserDirectory{users: map[string]leaguedomain.UserProfile{}}
	for _, p := range profiles {
		f.users[p.UserID] = p
	}
	return f
}

func (f *FakeUserDirectory) put(p leaguedomain.UserProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[p.UserID] = p
}

func (f *FakeUserDirectory) remove(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
}

func (f *FakeUserDirectory) GetUser(ctx context.Context, userID string) (*leaguedomain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.users[userID]
	if !ok {
		return nil, ErrMissingUser
	}
	return &p, nil
}

func (f *FakeUserDirectory) GetUsers(ctx context.Context, userIDs []string) (map[string]leaguedomain.UserProfile, error) {
	if f.GetUsersFunc != nil {
		return f.GetUsersFunc(ctx, userIDs)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]leaguedomain.UserProfile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := f.users[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type gemCredit struct {
	UserID string
	Amount int
	Key    string
}

type FakeGemWallet struct {
	mu      sync.Mutex
	credits []gemCredit

	CreditGemsFunc func(ctx context.Context, userID string, amount int, key string) error
}

func (f *FakeGemWallet) CreditGems(ctx context.Context, userID string, amount int, key string) error {
	if f.CreditGemsFunc != nil {
		if err := f.CreditGemsFunc(ctx, userID, amount, key); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credits = append(f.credits, gemCredit{UserID: userID, Amount: amount, Key: key})
	return nil
}

func (f *FakeGemWallet) total(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.credits {
		if c.UserID == userID {
			n += c.Amount
		}
	}
	return n
}

type notification struct {
	UserID  string
	Kind    leaguedomain.Outcome
	Content string
}

type FakeNotificationStore struct {
	mu   sync.Mutex
	sent []notification
}

func (f *FakeNotificationStore) RecordNotification(ctx context.Context, userID string, kind leaguedomain.Outcome, content, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{UserID: userID, Kind: kind, Content: content})
	return nil
}

func (f *FakeNotificationStore) forUser(userID string) []notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notification
	for _, n := range f.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type published struct {
	Channel string
	Payload []byte
}

type FakeTransport struct {
	mu   sync.Mutex
	sent []published

	PublishFunc func(ctx context.Context, channel string, payload []byte) error
}

func (f *FakeTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	if f.PublishFunc != nil {
		if err := f.PublishFunc(ctx, channel, payload); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, published{Channel: channel, Payload: slices.Clone(payload)})
	return nil
}

func (f *FakeTransport) on(channel string) []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []published
	for _, p := range f.sent {
		if p.Channel == channel {
			out = append(out, p)
		}
	}
	return out
}

type enqueued struct {
	CohortID int64
	UserID   string
}

type FakeLiveBroadcaster struct {
	mu    sync.Mutex
	calls []enqueued
}

func (f *FakeLiveBroadcaster) Enqueue(cohortID int64, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, enqueued{CohortID: cohortID, UserID: userID})
}

func (f *FakeLiveBroadcaster) Calls() []enqueued {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

type FakeStreaks struct {
	Days int
	Err  error
}

func (f *FakeStreaks) TouchStreak(ctx context.Context, userID string, eventTime time.Time) (int, error) {
	return f.Days, f.Err
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
