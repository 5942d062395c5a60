package leaguedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new league repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

const memberCountExpr = "(SELECT count(*) FROM league_memberships AS mc WHERE mc.cohort_id = c.id)"

func (r *Impl) ListTiers(ctx context.Context, db bun.IDB) ([]Tier, error) {
	db = r.resolveDB(db)
	var tiers []Tier
	if err := db.NewSelect().Model(&tiers).Order("tier_order ASC").Scan(ctx); err != nil {
		return nil, storeErr("ListTiers", err)
	}
	return tiers, nil
}

func (r *Impl) CompanyTiers(ctx context.Context, db bun.IDB, companyID string) ([]int, error) {
	db = r.resolveDB(db)
	var orders []int
	err := db.NewSelect().
		Model((*CompanyTier)(nil)).
		Column("tier_order").
		Where("company_id = ?", companyID).
		Order("tier_order ASC").
		Scan(ctx, &orders)
	if err != nil {
		return nil, storeErr("CompanyTiers", err)
	}
	return orders, nil
}

func (r *Impl) SetCompanyTiers(ctx context.Context, db bun.IDB, companyID string, orders []int) error {
	db = r.resolveDB(db)
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*CompanyTier)(nil)).
			Where("company_id = ?", companyID).
			Exec(ctx); err != nil {
			return storeErr("SetCompanyTiers", err)
		}
		if len(orders) == 0 {
			return nil
		}
		rows := make([]CompanyTier, len(orders))
		for i, o := range orders {
			rows[i] = CompanyTier{CompanyID: companyID, TierOrder: o}
		}
		if _, err := tx.NewInsert().Model(&rows).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
			return storeErr("SetCompanyTiers", err)
		}
		return nil
	})
}

// placementLockKey is hashed by Postgres into the advisory lock id.
func placementLockKey(tierOrder int, scope leaguedomain.Scope) string {
	return fmt.Sprintf("league:%d:%s", tierOrder, scope.Key())
}

func (r *Impl) AcquirePlacementLock(ctx context.Context, db bun.IDB, tierOrder int, scope leaguedomain.Scope) error {
	db = r.resolveDB(db)
	// Use hashtext() for a stable int8 from the lock key
	_, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", placementLockKey(tierOrder, scope)).Exec(ctx)
	if err != nil {
		return storeErr("AcquirePlacementLock", err)
	}
	return nil
}

func (r *Impl) OpenCohorts(ctx context.Context, db bun.IDB, tierOrder int, scope leaguedomain.Scope, now time.Time) ([]Cohort, error) {
	db = r.resolveDB(db)
	var cohorts []Cohort
	err := db.NewSelect().
		Model(&cohorts).
		ColumnExpr("c.*").
		ColumnExpr(memberCountExpr+" AS member_count").
		Where("c.tier_order = ?", tierOrder).
		Where("c.scope_key = ?", scope.Key()).
		Where("c.state = ?", leaguedomain.CohortActive).
		Where("c.window_end > ?", now).
		Where(memberCountExpr + " < c.capacity").
		OrderExpr("c.window_start ASC, c.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, storeErr("OpenCohorts", err)
	}
	return cohorts, nil
}

func (r *Impl) CreateCohort(ctx context.Context, db bun.IDB, in NewCohort) (*Cohort, error) {
	db = r.resolveDB(db)
	if in.Capacity < 1 {
		return nil, fmt.Errorf("leaguedb.CreateCohort: capacity must be positive, got %d", in.Capacity)
	}
	if !in.WindowEnd.After(in.WindowStart) {
		return nil, fmt.Errorf("leaguedb.CreateCohort: window_end must follow window_start")
	}

	cohort := &Cohort{
		TierOrder:   in.TierOrder,
		ScopeKind:   in.Scope.Kind,
		ScopeKey:    in.Scope.Key(),
		WindowStart: in.WindowStart,
		WindowEnd:   in.WindowEnd,
		Capacity:    in.Capacity,
		State:       leaguedomain.CohortActive,
	}
	if in.Scope.Kind == leaguedomain.ScopeCompany {
		companyID := in.Scope.CompanyID
		cohort.CompanyID = &companyID
	}

	if _, err := db.NewInsert().Model(cohort).Returning("*").Exec(ctx); err != nil {
		return nil, storeErr("CreateCohort", err)
	}
	return cohort, nil
}

func (r *Impl) GetCohort(ctx context.Context, db bun.IDB, cohortID int64) (*Cohort, error) {
	db = r.resolveDB(db)
	cohort := new(Cohort)
	err := db.NewSelect().
		Model(cohort).
		ColumnExpr("c.*").
		ColumnExpr(memberCountExpr+" AS member_count").
		Where("c.id = ?", cohortID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storeErr("GetCohort", err)
	}
	return cohort, nil
}

func (r *Impl) ExpiredCohorts(ctx context.Context, db bun.IDB, kind leaguedomain.ScopeKind, now time.Time, lease time.Duration, limit int) ([]Cohort, error) {
	db = r.resolveDB(db)
	var cohorts []Cohort
	q := db.NewSelect().
		Model(&cohorts).
		Where("c.scope_kind = ?", kind).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("c.state = ? AND c.window_end <= ?", leaguedomain.CohortActive, now).
				WhereOr("c.state = ? AND (c.claimed_at IS NULL OR c.claimed_at < ?)", leaguedomain.CohortResolving, now.Add(-lease))
		}).
		OrderExpr("c.window_end ASC, c.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, storeErr("ExpiredCohorts", err)
	}
	return cohorts, nil
}
