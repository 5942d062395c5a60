package leaguedb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
)

// Tier is a seeded ladder rung.
type Tier struct {
	bun.BaseModel `bun:"table:league_tiers,alias:lt"`

	Order int    `bun:"tier_order,pk"`
	Name  string `bun:"name,notnull"`
}

// CompanyTier restricts a company's ladder to the listed tiers. A company
// with no rows uses every tier.
type CompanyTier struct {
	bun.BaseModel `bun:"table:league_company_tiers,alias:lct"`

	CompanyID string `bun:"company_id,pk"`
	TierOrder int    `bun:"tier_order,pk"`
}

// Cohort is one competitive group.
type Cohort struct {
	bun.BaseModel `bun:"table:league_cohorts,alias:c"`

	ID          int64                    `bun:"id,pk,autoincrement"`
	TierOrder   int                      `bun:"tier_order,notnull"`
	ScopeKind   leaguedomain.ScopeKind   `bun:"scope_kind,notnull"`
	CompanyID   *string                  `bun:"company_id"`
	ScopeKey    string                   `bun:"scope_key,notnull"`
	WindowStart time.Time                `bun:"window_start,notnull"`
	WindowEnd   time.Time                `bun:"window_end,notnull"`
	Capacity    int                      `bun:"capacity,notnull"`
	State       leaguedomain.CohortState `bun:"state,notnull,default:'active'"`
	ClaimedAt   *time.Time               `bun:"claimed_at"`
	ClaimToken  *uuid.UUID               `bun:"claim_token,type:uuid"`
	ResolvedAt  *time.Time               `bun:"resolved_at"`
	CreatedAt   time.Time                `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	MemberCount int `bun:"member_count,scanonly"`
}

func (c *Cohort) Scope() leaguedomain.Scope {
	if c.ScopeKind == leaguedomain.ScopeCompany && c.CompanyID != nil {
		return leaguedomain.CompanyScope(*c.CompanyID)
	}
	return leaguedomain.GlobalScope()
}

// Domain converts the row to the domain representation.
func (c *Cohort) Domain() leaguedomain.Cohort {
	return leaguedomain.Cohort{
		ID:          c.ID,
		TierOrder:   c.TierOrder,
		Scope:       c.Scope(),
		WindowStart: c.WindowStart,
		WindowEnd:   c.WindowEnd,
		Capacity:    c.Capacity,
		State:       c.State,
	}
}

// Membership links a user to a cohort. Active is cleared when the cohort
// resolves; FinalRank, Outcome, and Reward are written at the same time.
type Membership struct {
	bun.BaseModel `bun:"table:league_memberships,alias:m"`

	ID         int64                 `bun:"id,pk,autoincrement"`
	UserID     string                `bun:"user_id,notnull"`
	CohortID   int64                 `bun:"cohort_id,notnull"`
	ScopeKey   string                `bun:"scope_key,notnull"`
	XPInCohort int64                 `bun:"xp_in_cohort,notnull,default:0"`
	Active     bool                  `bun:"active,notnull,default:true"`
	FinalRank  *int                  `bun:"final_rank"`
	Outcome    *leaguedomain.Outcome `bun:"outcome"`
	Reward     *int                  `bun:"reward"`
	CreatedAt  time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Cohort *Cohort `bun:"rel:belongs-to,join:cohort_id=id"`
}

// Resolved reports whether a resolution outcome has been recorded.
func (m *Membership) Resolved() bool {
	return m.Outcome != nil
}

func (m *Membership) Domain() leaguedomain.Membership {
	scope, _ := leaguedomain.ParseScope(m.ScopeKey)
	return leaguedomain.Membership{
		ID:         m.ID,
		UserID:     m.UserID,
		CohortID:   m.CohortID,
		Scope:      scope,
		XPInCohort: m.XPInCohort,
		Active:     m.Active,
	}
}

// RewardStamp records that a member's reward for a cohort has been paid.
type RewardStamp struct {
	bun.BaseModel `bun:"table:league_reward_stamps,alias:rs"`

	CohortID  int64     `bun:"cohort_id,pk"`
	UserID    string    `bun:"user_id,pk"`
	Amount    int       `bun:"amount,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// NewCohort describes a cohort to instance.
type NewCohort struct {
	TierOrder   int
	Scope       leaguedomain.Scope
	WindowStart time.Time
	WindowEnd   time.Time
	Capacity    int
}

// OutcomeRecord is the persisted result for one membership.
type OutcomeRecord struct {
	MembershipID int64
	Rank         int
	Outcome      leaguedomain.Outcome
	Reward       int
}
