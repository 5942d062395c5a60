package leaguehandlers

import (
	"context"
	"fmt"

	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leagueevents "github.com/wellplay/wellplay-backend/app/shared/events/league"
	"github.com/wellplay/wellplay-backend/app/shared/handlerwrapper"
)

// HandleStandingsRequested returns the user's provisional standings.
func (h *LeagueHandlers) HandleStandingsRequested(
	ctx context.Context,
	payload *leagueevents.StandingsRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	failed := func(reason string) []handlerwrapper.Result {
		return []handlerwrapper.Result{{
			Topic: leagueevents.StandingsFailedV1,
			Payload: &leagueevents.StandingsFailedPayloadV1{
				UserID: payload.UserID,
				Scope:  payload.Scope,
				Reason: reason,
			},
		}}
	}

	scope := leaguedomain.GlobalScope()
	if payload.Scope != "" {
		parsed, err := leaguedomain.ParseScope(payload.Scope)
		if err != nil {
			return failed(err.Error()), nil
		}
		scope = parsed
	}

	result, err := h.service.GetStandings(ctx, payload.UserID, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}
	if result.Failure != nil {
		return failed((*result.Failure).Error()), nil
	}
	if result.Success == nil {
		return nil, fmt.Errorf("unexpected result from service")
	}

	return []handlerwrapper.Result{{
		Topic: leagueevents.StandingsRetrievedV1,
		Payload: &leagueevents.StandingsRetrievedPayloadV1{
			UserID:    payload.UserID,
			Scope:     scope.Key(),
			Standings: *result.Success,
		},
	}}, nil
}
