// Package leagueevents defines the topics and payloads the league module
// consumes and produces on the event bus.
package leagueevents

import (
	"time"
)

// Inbound topics.
const (
	// XPCreditedV1 carries every XP-granting activity.
	XPCreditedV1 = "league.xp.credited.v1"

	// AdmissionRequestedV1 asks for an explicit admission check, e.g. after a
	// lifetime XP backfill.
	AdmissionRequestedV1 = "league.admission.requested.v1"

	// StandingsRequestedV1 asks for a user's provisional standings.
	StandingsRequestedV1 = "league.standings.requested.v1"
)

// Outbound topics.
const (
	MemberAdmittedV1     = "league.member.admitted.v1"
	XPRejectedV1         = "league.xp.rejected.v1"
	StandingsRetrievedV1 = "league.standings.retrieved.v1"
	StandingsFailedV1    = "league.standings.failed.v1"
)

// XPCreditedPayloadV1 is published by activity sources.
type XPCreditedPayloadV1 struct {
	UserID    string    `json:"user_id"`
	Delta     int64     `json:"delta"`
	EventTime time.Time `json:"event_time"`
	Source    string    `json:"source,omitempty"`
}

type AdmissionRequestedPayloadV1 struct {
	UserID string `json:"user_id"`
}

// PlacementV1 is one scope the user was placed in.
type PlacementV1 struct {
	Scope     string `json:"scope"`
	TierLevel int    `json:"tier_level"`
	CohortID  int64  `json:"cohort_id"`
	NewCohort bool   `json:"new_cohort"`
}

type MemberAdmittedPayloadV1 struct {
	UserID     string        `json:"user_id"`
	Placements []PlacementV1 `json:"placements"`
}

type XPRejectedPayloadV1 struct {
	UserID string `json:"user_id"`
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

type StandingsRequestedPayloadV1 struct {
	UserID string `json:"user_id"`
	Scope  string `json:"scope"`
}

// StandingsRetrievedPayloadV1 carries the provisional standings view.
type StandingsRetrievedPayloadV1 struct {
	UserID    string `json:"user_id"`
	Scope     string `json:"scope"`
	Standings any    `json:"standings"`
}

type StandingsFailedPayloadV1 struct {
	UserID string `json:"user_id"`
	Scope  string `json:"scope"`
	Reason string `json:"reason"`
}
