package leagueservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
	"github.com/wellplay/wellplay-backend/app/shared/utils/results"
)

// IngestXP updates the streak, credits cohorts, and then considers the user
// for admission, in that order.
func (s *LeagueService) IngestXP(ctx context.Context, userID string, delta int64, eventTime time.Time) (results.OperationResult[IngestOutcome, error], error) {
	result, err := withTelemetry(s, ctx, "IngestXP", userID, func(ctx context.Context) (results.OperationResult[IngestOutcome, error], error) {
		if userID == "" {
			return results.FailureResult[IngestOutcome, error](ErrMissingUser), nil
		}
		if delta < 0 {
			return results.FailureResult[IngestOutcome, error](ErrInvalidDelta), nil
		}

		var out IngestOutcome
		if s.streaks != nil {
			days, err := s.streaks.TouchStreak(ctx, userID, eventTime)
			if err != nil {
				if errors.Is(err, ErrMissingUser) {
					return results.FailureResult[IngestOutcome, error](err), nil
				}
				return results.OperationResult[IngestOutcome, error]{}, fmt.Errorf("failed to update streak: %w", err)
			}
			out.StreakDays = days
		}

		credits, err := s.credit(ctx, userID, delta)
		if err != nil {
			return results.OperationResult[IngestOutcome, error]{}, err
		}
		out.Credits = credits

		admitted, err := s.admit(ctx, userID)
		if err == nil && admitted.IsFailure() && !errors.Is(*admitted.Failure, ErrNotQualified) {
			err = *admitted.Failure
		}
		if err != nil {
			// Credits are committed; failing here would make a redelivery
			// credit the same event again.
			if len(out.Credits) == 0 {
				if admitted.IsFailure() {
					return results.FailureResult[IngestOutcome, error](err), nil
				}
				return results.OperationResult[IngestOutcome, error]{}, err
			}
			s.logger.WarnContext(ctx, "Admission deferred after XP credit",
				attr.ExtractCorrelationID(ctx),
				attr.UserID(userID),
				attr.Error(err),
			)
			out.AdmissionDeferred = true
			return results.SuccessResult[IngestOutcome, error](out), nil
		}
		if admitted.IsSuccess() {
			out.Placements = *admitted.Success
		}

		return results.SuccessResult[IngestOutcome, error](out), nil
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}
	s.announceCredits(userID, result.Success.Credits)
	s.announcePlacements(ctx, result.Success.Placements)
	return result, nil
}

// CreditXP adds delta to every active membership of the user whose cohort
// still accepts XP.
func (s *LeagueService) CreditXP(ctx context.Context, userID string, delta int64, eventTime time.Time) (results.OperationResult[[]Credit, error], error) {
	result, err := withTelemetry(s, ctx, "CreditXP", userID, func(ctx context.Context) (results.OperationResult[[]Credit, error], error) {
		if delta < 0 {
			return results.FailureResult[[]Credit, error](ErrInvalidDelta), nil
		}
		credits, err := s.credit(ctx, userID, delta)
		if err != nil {
			return results.OperationResult[[]Credit, error]{}, err
		}
		return results.SuccessResult[[]Credit, error](credits), nil
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}
	s.announceCredits(userID, *result.Success)
	return result, nil
}

func (s *LeagueService) credit(ctx context.Context, userID string, delta int64) ([]Credit, error) {
	if delta == 0 {
		return nil, nil
	}

	res, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]Credit, error], error) {
		memberships, err := s.repo.ActiveMemberships(ctx, db, userID)
		if err != nil {
			return results.OperationResult[[]Credit, error]{}, fmt.Errorf("failed to load memberships: %w", err)
		}

		now := s.now()
		credits := make([]Credit, 0, len(memberships))
		for _, m := range memberships {
			updated, err := s.repo.IncrementXP(ctx, db, m.ID, delta, now)
			switch {
			case err == nil:
			case errors.Is(err, leaguedb.ErrCohortClosed), errors.Is(err, leaguedb.ErrNotFound):
				// The window ended or resolution already claimed the cohort.
				s.logger.DebugContext(ctx, "Skipping XP for closed cohort",
					attr.ExtractCorrelationID(ctx),
					attr.UserID(userID),
					attr.CohortID(m.CohortID),
				)
				continue
			default:
				return results.OperationResult[[]Credit, error]{}, fmt.Errorf("failed to credit cohort %d: %w", m.CohortID, err)
			}

			scope, _ := leaguedomain.ParseScope(updated.ScopeKey)
			credits = append(credits, Credit{
				Scope:        scope,
				CohortID:     updated.CohortID,
				MembershipID: updated.ID,
				Delta:        delta,
				XPInCohort:   updated.XPInCohort,
			})
		}
		return results.SuccessResult[[]Credit, error](credits), nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		for _, c := range *res.Success {
			s.metrics.RecordXPCredited(ctx, c.Scope.Key(), c.Delta)
		}
	}
	return *res.Success, nil
}

func (s *LeagueService) announceCredits(userID string, credits []Credit) {
	for _, c := range credits {
		s.live.Enqueue(c.CohortID, userID)
	}
}
