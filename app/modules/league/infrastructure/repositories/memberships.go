package leaguedb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
)

func (r *Impl) TryAddMembership(ctx context.Context, db bun.IDB, userID string, cohortID int64, now time.Time) (*Membership, error) {
	db = r.resolveDB(db)

	cohort := new(Cohort)
	err := db.NewSelect().
		Model(cohort).
		Where("c.id = ?", cohortID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storeErr("TryAddMembership", err)
	}

	if !cohort.Domain().AcceptsXP(now) {
		return nil, ErrCohortClosed
	}

	exists, err := db.NewSelect().
		Model((*Membership)(nil)).
		Where("user_id = ?", userID).
		Where("scope_key = ?", cohort.ScopeKey).
		Where("active").
		Exists(ctx)
	if err != nil {
		return nil, storeErr("TryAddMembership", err)
	}
	if exists {
		return nil, ErrAlreadyMember
	}

	count, err := db.NewSelect().
		Model((*Membership)(nil)).
		Where("cohort_id = ?", cohortID).
		Count(ctx)
	if err != nil {
		return nil, storeErr("TryAddMembership", err)
	}
	if count >= cohort.Capacity {
		return nil, ErrCohortFull
	}

	m := &Membership{
		UserID:   userID,
		CohortID: cohortID,
		ScopeKey: cohort.ScopeKey,
		Active:   true,
	}
	res, err := db.NewInsert().
		Model(m).
		On("CONFLICT (user_id, scope_key) WHERE active DO NOTHING").
		Returning("*").
		Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return nil, ErrAlreadyMember
		}
		return nil, storeErr("TryAddMembership", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrAlreadyMember
	}

	m.Cohort = cohort
	return m, nil
}

func (r *Impl) ActiveMembership(ctx context.Context, db bun.IDB, userID string, scope leaguedomain.Scope) (*Membership, error) {
	db = r.resolveDB(db)
	m := new(Membership)
	err := db.NewSelect().
		Model(m).
		Relation("Cohort").
		Where("m.user_id = ?", userID).
		Where("m.scope_key = ?", scope.Key()).
		Where("m.active").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storeErr("ActiveMembership", err)
	}
	return m, nil
}

func (r *Impl) ActiveMemberships(ctx context.Context, db bun.IDB, userID string) ([]Membership, error) {
	db = r.resolveDB(db)
	var memberships []Membership
	err := db.NewSelect().
		Model(&memberships).
		Relation("Cohort").
		Where("m.user_id = ?", userID).
		Where("m.active").
		Order("m.scope_key ASC").
		Scan(ctx)
	if err != nil {
		return nil, storeErr("ActiveMemberships", err)
	}
	return memberships, nil
}

func (r *Impl) IncrementXP(ctx context.Context, db bun.IDB, membershipID int64, delta int64, now time.Time) (*Membership, error) {
	db = r.resolveDB(db)

	// The share lock orders this increment against ClaimForResolution's
	// row update on the same cohort.
	cohort := new(Cohort)
	err := db.NewSelect().
		Model(cohort).
		Where("c.id = (SELECT cohort_id FROM league_memberships WHERE id = ?)", membershipID).
		For("SHARE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storeErr("IncrementXP", err)
	}
	if !cohort.Domain().AcceptsXP(now) {
		return nil, ErrCohortClosed
	}

	m := &Membership{ID: membershipID}
	res, err := db.NewUpdate().
		Model(m).
		Set("xp_in_cohort = xp_in_cohort + ?", delta).
		WherePK().
		Where("active").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, storeErr("IncrementXP", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrCohortClosed
	}

	m.Cohort = cohort
	return m, nil
}

func (r *Impl) ListMembers(ctx context.Context, db bun.IDB, cohortID int64) ([]Membership, error) {
	db = r.resolveDB(db)
	var members []Membership
	err := db.NewSelect().
		Model(&members).
		Where("m.cohort_id = ?", cohortID).
		Order("m.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, storeErr("ListMembers", err)
	}
	return members, nil
}
