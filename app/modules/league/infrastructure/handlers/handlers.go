package leaguehandlers

import (
	"log/slog"

	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
	leagueevents "github.com/wellplay/wellplay-backend/app/shared/events/league"
	"go.opentelemetry.io/otel/trace"
)

// LeagueHandlers handles league-related events.
type LeagueHandlers struct {
	service leagueservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewLeagueHandlers creates a new instance of LeagueHandlers.
func NewLeagueHandlers(service leagueservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &LeagueHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// admittedPayload keeps only placements that put the user somewhere new.
func admittedPayload(userID string, placements []leagueservice.Placement) *leagueevents.MemberAdmittedPayloadV1 {
	var out []leagueevents.PlacementV1
	for _, p := range placements {
		if p.AlreadyMember {
			continue
		}
		out = append(out, leagueevents.PlacementV1{
			Scope:     p.Scope.Key(),
			TierLevel: p.TierOrder,
			CohortID:  p.CohortID,
			NewCohort: p.NewCohort,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return &leagueevents.MemberAdmittedPayloadV1{UserID: userID, Placements: out}
}
