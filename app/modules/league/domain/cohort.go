package leaguedomain

import "time"

// CohortState tracks a cohort through its single resolution.
type CohortState string

const (
	CohortActive    CohortState = "active"
	CohortResolving CohortState = "resolving"
	CohortResolved  CohortState = "resolved"
)

const (
	DefaultCapacity  = 30
	DemotionCapacity = 5
	DefaultWindow    = 7 * 24 * time.Hour
)

// Cohort is a time-boxed, capacity-bounded group competing at one tier.
type Cohort struct {
	ID          int64
	TierOrder   int
	Scope       Scope
	WindowStart time.Time
	WindowEnd   time.Time
	Capacity    int
	State       CohortState
}

// AcceptsXP reports whether increments may still commit against the cohort.
func (c Cohort) AcceptsXP(now time.Time) bool {
	return c.State == CohortActive && now.Before(c.WindowEnd)
}

// Expired reports whether the window has closed.
func (c Cohort) Expired(now time.Time) bool {
	return !now.Before(c.WindowEnd)
}

// Membership is one user's participation in one cohort.
type Membership struct {
	ID         int64
	UserID     string
	CohortID   int64
	Scope      Scope
	XPInCohort int64
	Active     bool
}

// UserProfile is the read-only view of a user supplied by the user directory.
type UserProfile struct {
	UserID        string
	DisplayName   string
	AvatarRef     string
	StreakDays    int
	CompanyID     string
	LocalTimezone string
	LifetimeXP    int64
}
