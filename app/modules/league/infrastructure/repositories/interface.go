package leaguedb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
)

// Repository is the cohort store. Every method takes the handle to run on;
// a nil db falls back to the repository's default connection.
type Repository interface {
	// ListTiers returns the seeded ladder ordered by tier_order.
	ListTiers(ctx context.Context, db bun.IDB) ([]Tier, error)

	// CompanyTiers returns the tier orders enabled for a company, ascending.
	// An empty result means the company uses the full ladder.
	CompanyTiers(ctx context.Context, db bun.IDB, companyID string) ([]int, error)

	// SetCompanyTiers replaces the tier restriction for a company.
	SetCompanyTiers(ctx context.Context, db bun.IDB, companyID string, orders []int) error

	// AcquirePlacementLock takes a transaction-scoped advisory lock on
	// (tier, scope). Must be called within a transaction.
	AcquirePlacementLock(ctx context.Context, db bun.IDB, tierOrder int, scope leaguedomain.Scope) error

	// OpenCohorts lists active, unexpired cohorts with free seats ordered by
	// (window_start, id).
	OpenCohorts(ctx context.Context, db bun.IDB, tierOrder int, scope leaguedomain.Scope, now time.Time) ([]Cohort, error)

	// CreateCohort inserts a new active cohort.
	CreateCohort(ctx context.Context, db bun.IDB, in NewCohort) (*Cohort, error)

	// GetCohort loads a cohort with its current member count.
	GetCohort(ctx context.Context, db bun.IDB, cohortID int64) (*Cohort, error)

	// TryAddMembership atomically checks the cohort and inserts the
	// membership. Returns ErrCohortClosed, ErrCohortFull, or ErrAlreadyMember
	// for the expected refusals. Must be called within a transaction.
	TryAddMembership(ctx context.Context, db bun.IDB, userID string, cohortID int64, now time.Time) (*Membership, error)

	// ActiveMembership returns the user's active membership in scope with its
	// cohort loaded, or ErrNotFound.
	ActiveMembership(ctx context.Context, db bun.IDB, userID string, scope leaguedomain.Scope) (*Membership, error)

	// ActiveMemberships returns every active membership of the user.
	ActiveMemberships(ctx context.Context, db bun.IDB, userID string) ([]Membership, error)

	// IncrementXP adds delta to the membership while holding a share lock on
	// its cohort. Returns ErrCohortClosed once the cohort stops accepting XP.
	// Must be called within a transaction.
	IncrementXP(ctx context.Context, db bun.IDB, membershipID int64, delta int64, now time.Time) (*Membership, error)

	// ListMembers returns every membership of a cohort ordered by id.
	ListMembers(ctx context.Context, db bun.IDB, cohortID int64) ([]Membership, error)

	// ExpiredCohorts returns cohorts due for resolution in one scope kind:
	// active ones past window_end, plus resolving ones whose claim was
	// released or has outlived the lease.
	ExpiredCohorts(ctx context.Context, db bun.IDB, kind leaguedomain.ScopeKind, now time.Time, lease time.Duration, limit int) ([]Cohort, error)

	// ClaimForResolution moves a due cohort to resolving under token. It
	// reports whether the caller won the claim.
	ClaimForResolution(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, now time.Time, lease time.Duration) (bool, error)

	// ReleaseClaim clears a claim so the next tick can retry the cohort.
	ReleaseClaim(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID) error

	// RecordOutcomes writes rank, outcome, and reward onto the memberships
	// and deactivates them, together with any skipped memberships. Returns
	// ErrClaimLost if token no longer holds the cohort.
	RecordOutcomes(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, records []OutcomeRecord, skipped []int64) error

	// InsertRewardStamp records a paid reward. It reports false when the
	// stamp already existed.
	InsertRewardStamp(ctx context.Context, db bun.IDB, cohortID int64, userID string, amount int) (bool, error)

	// FinalizeResolution moves the cohort to resolved.
	FinalizeResolution(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID, now time.Time) error
}
