package leaguedomain

import (
	"fmt"
	"strings"
)

// ScopeKind distinguishes the global ladder from a company ladder.
type ScopeKind string

const (
	ScopeGlobal  ScopeKind = "global"
	ScopeCompany ScopeKind = "company"
)

const companyPrefix = "company_"

// Scope is either the site-wide ladder or one company's ladder. The zero
// value is not a valid scope.
type Scope struct {
	Kind      ScopeKind
	CompanyID string
}

func GlobalScope() Scope { return Scope{Kind: ScopeGlobal} }

func CompanyScope(companyID string) Scope {
	return Scope{Kind: ScopeCompany, CompanyID: companyID}
}

func (s Scope) IsGlobal() bool { return s.Kind == ScopeGlobal }

// Key is the stable string persisted on cohorts and memberships and used in
// channel names: "global" or "company_<id>".
func (s Scope) Key() string {
	if s.Kind == ScopeCompany {
		return companyPrefix + s.CompanyID
	}
	return string(ScopeGlobal)
}

func (s Scope) String() string { return s.Key() }

func (s Scope) Valid() bool {
	switch s.Kind {
	case ScopeGlobal:
		return s.CompanyID == ""
	case ScopeCompany:
		return s.CompanyID != ""
	}
	return false
}

// ParseScope is the inverse of Key.
func ParseScope(key string) (Scope, error) {
	if key == string(ScopeGlobal) {
		return GlobalScope(), nil
	}
	if id, ok := strings.CutPrefix(key, companyPrefix); ok && id != "" {
		return CompanyScope(id), nil
	}
	return Scope{}, fmt.Errorf("invalid league scope %q", key)
}

// ScopesFor lists the ladders a user takes part in: always global, plus their
// company when they have one.
func ScopesFor(companyID string) []Scope {
	if companyID == "" {
		return []Scope{GlobalScope()}
	}
	return []Scope{GlobalScope(), CompanyScope(companyID)}
}

// CohortChannel is the broadcast channel carrying live standings.
func CohortChannel(scope Scope, cohortID int64) string {
	return fmt.Sprintf("cohort:%s:%d", scope.Key(), cohortID)
}

// StatusChannel is a user's personal channel for outcome and next-league pushes.
func StatusChannel(scope Scope, userID string) string {
	return fmt.Sprintf("status:%s:%s", scope.Key(), userID)
}
