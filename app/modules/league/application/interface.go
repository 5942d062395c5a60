package leagueservice

import (
	"context"
	"time"

	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	"github.com/wellplay/wellplay-backend/app/shared/utils/results"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks github.com/wellplay/wellplay-backend/app/modules/league/application Service

// Service is the league lifecycle engine.
type Service interface {
	// IngestXP is the single XP entry point: streak, then cohort credit, then
	// admission.
	IngestXP(ctx context.Context, userID string, delta int64, eventTime time.Time) (results.OperationResult[IngestOutcome, error], error)

	// CreditXP adds delta to each of the user's active memberships.
	CreditXP(ctx context.Context, userID string, delta int64, eventTime time.Time) (results.OperationResult[[]Credit, error], error)

	// ConsiderForAdmission places a qualifying user into the entry tier of
	// every scope they belong to. Repeated calls are no-ops.
	ConsiderForAdmission(ctx context.Context, userID string) (results.OperationResult[[]Placement, error], error)

	// GetStandings returns the provisional view of the user's cohort in scope.
	GetStandings(ctx context.Context, userID string, scope leaguedomain.Scope) (results.OperationResult[*leaguedomain.StandingsView, error], error)

	// CohortStandings builds the provisional view of a cohort.
	CohortStandings(ctx context.Context, cohortID int64, callingUserID string) (*leaguedomain.StandingsView, error)

	// RankCohort returns the cohort's members in rank order; rank is index+1.
	RankCohort(ctx context.Context, cohortID int64) ([]leaguedomain.Contender, error)

	// ResolveExpiredCohorts runs one scheduler tick over both scope kinds.
	ResolveExpiredCohorts(ctx context.Context) (ResolutionReport, error)

	// ResolveCohort claims and resolves one cohort.
	ResolveCohort(ctx context.Context, cohortID int64) (*CohortResolution, error)
}
