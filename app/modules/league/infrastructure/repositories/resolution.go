package leaguedb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
)

func (r *Impl) ClaimForResolution(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, now time.Time, lease time.Duration) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Cohort)(nil)).
		Set("state = ?", leaguedomain.CohortResolving).
		Set("claimed_at = ?", now).
		Set("claim_token = ?", token).
		Where("id = ?", cohortID).
		WhereGroup(" AND ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
			return q.
				Where("state = ? AND window_end <= ?", leaguedomain.CohortActive, now).
				WhereOr("state = ? AND (claimed_at IS NULL OR claimed_at < ?)", leaguedomain.CohortResolving, now.Add(-lease))
		}).
		Exec(ctx)
	if err != nil {
		return false, storeErr("ClaimForResolution", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("ClaimForResolution", err)
	}
	return n == 1, nil
}

func (r *Impl) ReleaseClaim(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Cohort)(nil)).
		Set("claimed_at = NULL").
		Set("claim_token = NULL").
		Where("id = ?", cohortID).
		Where("state = ?", leaguedomain.CohortResolving).
		Where("claim_token = ?", token).
		Exec(ctx)
	if err != nil {
		return storeErr("ReleaseClaim", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClaimLost
	}
	return nil
}

func (r *Impl) holdsClaim(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID) error {
	held, err := db.NewSelect().
		Model((*Cohort)(nil)).
		Where("c.id = ?", cohortID).
		Where("c.state = ?", leaguedomain.CohortResolving).
		Where("c.claim_token = ?", token).
		Exists(ctx)
	if err != nil {
		return storeErr("holdsClaim", err)
	}
	if !held {
		return ErrClaimLost
	}
	return nil
}

func (r *Impl) RecordOutcomes(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, records []OutcomeRecord, skipped []int64) error {
	db = r.resolveDB(db)
	if err := r.holdsClaim(ctx, db, cohortID, token); err != nil {
		return err
	}

	for _, rec := range records {
		res, err := db.NewUpdate().
			Model((*Membership)(nil)).
			Set("final_rank = ?", rec.Rank).
			Set("outcome = ?", rec.Outcome).
			Set("reward = ?", rec.Reward).
			Set("active = false").
			Where("id = ?", rec.MembershipID).
			Where("cohort_id = ?", cohortID).
			Where("active").
			Exec(ctx)
		if err != nil {
			return storeErr("RecordOutcomes", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrClaimLost
		}
	}

	if len(skipped) > 0 {
		_, err := db.NewUpdate().
			Model((*Membership)(nil)).
			Set("active = false").
			Where("id IN (?)", bun.In(skipped)).
			Where("cohort_id = ?", cohortID).
			Exec(ctx)
		if err != nil {
			return storeErr("RecordOutcomes", err)
		}
	}
	return nil
}

func (r *Impl) InsertRewardStamp(ctx context.Context, db bun.IDB, cohortID int64, userID string, amount int) (bool, error) {
	db = r.resolveDB(db)
	stamp := &RewardStamp{CohortID: cohortID, UserID: userID, Amount: amount}
	res, err := db.NewInsert().
		Model(stamp).
		On("CONFLICT (cohort_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, storeErr("InsertRewardStamp", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("InsertRewardStamp", err)
	}
	return n == 1, nil
}

func (r *Impl) FinalizeResolution(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, now time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Cohort)(nil)).
		Set("state = ?", leaguedomain.CohortResolved).
		Set("resolved_at = ?", now).
		Set("claimed_at = NULL").
		Set("claim_token = NULL").
		Where("id = ?", cohortID).
		Where("state = ?", leaguedomain.CohortResolving).
		Where("claim_token = ?", token).
		Exec(ctx)
	if err != nil {
		return storeErr("FinalizeResolution", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClaimLost
	}
	return nil
}
