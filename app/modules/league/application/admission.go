package leagueservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
	"github.com/wellplay/wellplay-backend/app/shared/utils/results"
)

// ConsiderForAdmission places a qualifying user into the entry tier of each
// scope they belong to.
func (s *LeagueService) ConsiderForAdmission(ctx context.Context, userID string) (results.OperationResult[[]Placement, error], error) {
	result, err := withTelemetry(s, ctx, "ConsiderForAdmission", userID, func(ctx context.Context) (results.OperationResult[[]Placement, error], error) {
		return s.admit(ctx, userID)
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}
	s.announcePlacements(ctx, *result.Success)
	return result, nil
}

func (s *LeagueService) admit(ctx context.Context, userID string) (results.OperationResult[[]Placement, error], error) {
	if userID == "" {
		return results.FailureResult[[]Placement, error](ErrMissingUser), nil
	}

	profile, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrMissingUser) {
			return results.FailureResult[[]Placement, error](err), nil
		}
		return results.OperationResult[[]Placement, error]{}, fmt.Errorf("failed to load user: %w", err)
	}
	if profile.LifetimeXP < s.cfg.AdmissionThreshold {
		return results.FailureResult[[]Placement, error](ErrNotQualified), nil
	}

	placements := make([]Placement, 0, 2)
	for _, scope := range leaguedomain.ScopesFor(profile.CompanyID) {
		res, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[Placement, error], error) {
			p, err := s.admitToScope(ctx, db, userID, scope)
			if err != nil {
				return results.OperationResult[Placement, error]{}, err
			}
			return results.SuccessResult[Placement, error](p), nil
		})
		if err != nil {
			return results.OperationResult[[]Placement, error]{}, fmt.Errorf("admission to %s failed: %w", scope, err)
		}
		placements = append(placements, *res.Success)
	}
	return results.SuccessResult[[]Placement, error](placements), nil
}

// admitToScope is idempotent: an existing active membership in scope is
// reported rather than duplicated.
func (s *LeagueService) admitToScope(ctx context.Context, db bun.IDB, userID string, scope leaguedomain.Scope) (Placement, error) {
	existing, err := s.repo.ActiveMembership(ctx, db, userID, scope)
	switch {
	case err == nil:
		return alreadyPlaced(userID, scope, existing), nil
	case !errors.Is(err, leaguedb.ErrNotFound):
		return Placement{}, err
	}

	ladder, err := s.ladderFor(ctx, db, scope)
	if err != nil {
		return Placement{}, err
	}

	p, err := s.placeUser(ctx, db, userID, scope, s.cfg.Policy.AdmissionTarget(ladder), s.now())
	if errors.Is(err, leaguedb.ErrAlreadyMember) {
		// Lost a race with a concurrent admission of the same user.
		existing, lookupErr := s.repo.ActiveMembership(ctx, db, userID, scope)
		if lookupErr != nil {
			return Placement{}, lookupErr
		}
		return alreadyPlaced(userID, scope, existing), nil
	}
	if err != nil {
		return Placement{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordAdmission(ctx, scope.Key(), p.TierOrder, p.NewCohort)
	}
	s.logger.InfoContext(ctx, "User admitted to league",
		attr.ExtractCorrelationID(ctx),
		attr.UserID(userID),
		attr.Scope(scope),
		attr.CohortID(p.CohortID),
		attr.Int("tier", p.TierOrder),
		attr.Bool("new_cohort", p.NewCohort),
	)
	return p, nil
}

func alreadyPlaced(userID string, scope leaguedomain.Scope, m *leaguedb.Membership) Placement {
	p := Placement{
		UserID:        userID,
		Scope:         scope,
		CohortID:      m.CohortID,
		MembershipID:  m.ID,
		AlreadyMember: true,
	}
	if m.Cohort != nil {
		p.TierOrder = m.Cohort.TierOrder
	}
	return p
}

// announcePlacements schedules a live push for every cohort that gained a
// member.
func (s *LeagueService) announcePlacements(ctx context.Context, placements []Placement) {
	for _, p := range placements {
		if p.AlreadyMember {
			continue
		}
		s.live.Enqueue(p.CohortID, p.UserID)
	}
}
