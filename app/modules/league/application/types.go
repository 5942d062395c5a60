package leagueservice

import (
	"time"

	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
)

// Credit is one membership that received XP.
type Credit struct {
	Scope        leaguedomain.Scope
	CohortID     int64
	MembershipID int64
	Delta        int64
	XPInCohort   int64
}

// Placement is where a user landed after admission or reassignment.
type Placement struct {
	UserID        string
	Scope         leaguedomain.Scope
	TierOrder     int
	CohortID      int64
	MembershipID  int64
	NewCohort     bool
	AlreadyMember bool
}

// IngestOutcome summarises one pass of the XP ingress pipeline.
type IngestOutcome struct {
	StreakDays int
	Credits    []Credit
	Placements []Placement
	// AdmissionDeferred is set when cohorts were credited but admission to a
	// further scope failed; the next event or admission request retries it.
	AdmissionDeferred bool
}

// CohortResolution is the result of resolving a single cohort.
type CohortResolution struct {
	CohortID   int64
	Scope      leaguedomain.Scope
	TierOrder  int
	WindowEnd  time.Time
	Outcomes   []leaguedomain.MemberOutcome
	Placements []Placement
	// Skipped lists members dropped because the user directory no longer
	// knows them.
	Skipped []string
	// Replayed is set when outcomes were recorded by an earlier attempt.
	Replayed bool
}

// PassReport covers one scope kind within a scheduler tick.
type PassReport struct {
	Kind      leaguedomain.ScopeKind
	Due       int
	Resolved  int
	Conflicts int
	Failed    int
	Duration  time.Duration
}

// ResolutionReport covers one scheduler tick.
type ResolutionReport struct {
	Passes []PassReport
}

func (r ResolutionReport) Resolved() int {
	n := 0
	for _, p := range r.Passes {
		n += p.Resolved
	}
	return n
}

func (r ResolutionReport) Failed() int {
	n := 0
	for _, p := range r.Passes {
		n += p.Failed
	}
	return n
}

// Config carries the tunables the service reads.
type Config struct {
	AdmissionThreshold int64
	Policy             leaguedomain.PlacementPolicy
	ClaimLease         time.Duration
	ResolutionTimeout  time.Duration
	ResolutionWorkers  int
	ExpiredBatchSize   int
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		AdmissionThreshold: 65,
		Policy:             leaguedomain.DefaultPlacementPolicy(),
		ClaimLease:         5 * time.Minute,
		ResolutionTimeout:  30 * time.Second,
		ResolutionWorkers:  4,
		ExpiredBatchSize:   100,
	}
}
