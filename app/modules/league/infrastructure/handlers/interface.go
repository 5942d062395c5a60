package leaguehandlers

import (
	"context"

	leagueevents "github.com/wellplay/wellplay-backend/app/shared/events/league"
	"github.com/wellplay/wellplay-backend/app/shared/handlerwrapper"
)

// Handlers defines the league event handlers.
type Handlers interface {
	// HandleXPCredited runs the XP ingress pipeline for one activity.
	HandleXPCredited(ctx context.Context, payload *leagueevents.XPCreditedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleAdmissionRequested re-checks a user against the admission threshold.
	HandleAdmissionRequested(ctx context.Context, payload *leagueevents.AdmissionRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleStandingsRequested answers a provisional standings lookup.
	HandleStandingsRequested(ctx context.Context, payload *leagueevents.StandingsRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
