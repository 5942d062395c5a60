package leagueservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
	"github.com/wellplay/wellplay-backend/app/shared/utils/results"
)

// GetStandings returns the provisional view of the user's current cohort in
// scope.
func (s *LeagueService) GetStandings(ctx context.Context, userID string, scope leaguedomain.Scope) (results.OperationResult[*leaguedomain.StandingsView, error], error) {
	return withTelemetry(s, ctx, "GetStandings", userID, func(ctx context.Context) (results.OperationResult[*leaguedomain.StandingsView, error], error) {
		m, err := s.repo.ActiveMembership(ctx, nil, userID, scope)
		if errors.Is(err, leaguedb.ErrNotFound) {
			return results.FailureResult[*leaguedomain.StandingsView, error](ErrNotInLeague), nil
		}
		if err != nil {
			return results.OperationResult[*leaguedomain.StandingsView, error]{}, err
		}

		view, err := s.CohortStandings(ctx, m.CohortID, userID)
		if err != nil {
			return results.OperationResult[*leaguedomain.StandingsView, error]{}, err
		}
		return results.SuccessResult[*leaguedomain.StandingsView, error](view), nil
	})
}

// CohortStandings builds the view as if the cohort's window ended now. It
// runs outside a transaction and may observe XP mid-flight.
func (s *LeagueService) CohortStandings(ctx context.Context, cohortID int64, callingUserID string) (*leaguedomain.StandingsView, error) {
	cohort, members, err := s.loadCohort(ctx, nil, cohortID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.profilesOf(ctx, members)
	if err != nil {
		return nil, err
	}

	ladder, err := s.ladderFor(ctx, nil, cohort.Scope())
	if err != nil {
		return nil, err
	}

	return leaguedomain.BuildStandings(
		cohort.Domain(),
		s.tier(cohort.TierOrder),
		ladder.Position(cohort.TierOrder),
		contendersOf(members, profiles),
		profiles,
		callingUserID,
	), nil
}

// RankCohort returns the cohort's active members in rank order.
func (s *LeagueService) RankCohort(ctx context.Context, cohortID int64) ([]leaguedomain.Contender, error) {
	_, members, err := s.loadCohort(ctx, nil, cohortID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profilesOf(ctx, members)
	if err != nil {
		return nil, err
	}
	return leaguedomain.Rank(contendersOf(members, profiles)), nil
}

func (s *LeagueService) loadCohort(ctx context.Context, db bun.IDB, cohortID int64) (*leaguedb.Cohort, []leaguedb.Membership, error) {
	cohort, err := s.repo.GetCohort(ctx, db, cohortID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cohort %d: %w", cohortID, err)
	}
	members, err := s.repo.ListMembers(ctx, db, cohortID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list members of cohort %d: %w", cohortID, err)
	}
	return cohort, members, nil
}

func (s *LeagueService) profilesOf(ctx context.Context, members []leaguedb.Membership) (map[string]leaguedomain.UserProfile, error) {
	if len(members) == 0 {
		return map[string]leaguedomain.UserProfile{}, nil
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	profiles, err := s.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load member profiles: %w", err)
	}
	return profiles, nil
}

// contendersOf builds the ranking input from memberships. A member missing
// from profiles ranks with a zero streak.
func contendersOf(members []leaguedb.Membership, profiles map[string]leaguedomain.UserProfile) []leaguedomain.Contender {
	out := make([]leaguedomain.Contender, 0, len(members))
	for _, m := range members {
		out = append(out, leaguedomain.Contender{
			MembershipID: m.ID,
			UserID:       m.UserID,
			XPInCohort:   m.XPInCohort,
			StreakDays:   profiles[m.UserID].StreakDays,
		})
	}
	return out
}
