package leagueservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
)

// placeUser finds-or-creates a cohort at target for the user. The caller
// must hold a transaction; the (tier, scope) advisory lock taken here lasts
// until it commits, so concurrent placements in the same tier and scope
// never instance redundant cohorts.
func (s *LeagueService) placeUser(
	ctx context.Context,
	db bun.IDB,
	userID string,
	scope leaguedomain.Scope,
	target leaguedomain.PlacementTarget,
	now time.Time,
) (Placement, error) {
	if err := s.repo.AcquirePlacementLock(ctx, db, target.TierOrder, scope); err != nil {
		return Placement{}, err
	}

	if !target.Fresh {
		open, err := s.repo.OpenCohorts(ctx, db, target.TierOrder, scope, now)
		if err != nil {
			return Placement{}, err
		}
		for _, c := range open {
			m, err := s.repo.TryAddMembership(ctx, db, userID, c.ID, now)
			switch {
			case err == nil:
				return placementFrom(userID, scope, target.TierOrder, m, false), nil
			case errors.Is(err, leaguedb.ErrCohortFull), errors.Is(err, leaguedb.ErrCohortClosed):
				continue
			default:
				return Placement{}, err
			}
		}
	}

	start, end := s.cfg.Policy.NewWindow(now)
	capacity := target.Capacity
	if capacity < 1 {
		capacity = s.cfg.Policy.DefaultCapacity
	}
	cohort, err := s.repo.CreateCohort(ctx, db, leaguedb.NewCohort{
		TierOrder:   target.TierOrder,
		Scope:       scope,
		WindowStart: start,
		WindowEnd:   end,
		Capacity:    capacity,
	})
	if err != nil {
		return Placement{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordCohortCreated(ctx, scope.Key(), target.TierOrder)
	}

	m, err := s.repo.TryAddMembership(ctx, db, userID, cohort.ID, now)
	if err != nil {
		return Placement{}, fmt.Errorf("failed to join new cohort %d: %w", cohort.ID, err)
	}
	return placementFrom(userID, scope, target.TierOrder, m, true), nil
}

func placementFrom(userID string, scope leaguedomain.Scope, tierOrder int, m *leaguedb.Membership, created bool) Placement {
	return Placement{
		UserID:       userID,
		Scope:        scope,
		TierOrder:    tierOrder,
		CohortID:     m.CohortID,
		MembershipID: m.ID,
		NewCohort:    created,
	}
}
