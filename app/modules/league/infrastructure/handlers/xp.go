package leaguehandlers

import (
	"context"
	"fmt"

	leagueevents "github.com/wellplay/wellplay-backend/app/shared/events/league"
	"github.com/wellplay/wellplay-backend/app/shared/handlerwrapper"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
)

// HandleXPCredited feeds one activity into the league engine.
func (h *LeagueHandlers) HandleXPCredited(
	ctx context.Context,
	payload *leagueevents.XPCreditedPayloadV1,
) ([]handlerwrapper.Result, error) {
	h.logger.InfoContext(ctx, "Received XPCredited event",
		attr.ExtractCorrelationID(ctx),
		attr.String("user_id", payload.UserID),
		attr.Int64("delta", payload.Delta),
		attr.String("source", payload.Source),
	)

	result, err := h.service.IngestXP(ctx, payload.UserID, payload.Delta, payload.EventTime)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest xp: %w", err)
	}

	if result.Failure != nil {
		h.logger.WarnContext(ctx, "XP rejected",
			attr.ExtractCorrelationID(ctx),
			attr.String("user_id", payload.UserID),
			attr.Error(*result.Failure),
		)
		return []handlerwrapper.Result{{
			Topic: leagueevents.XPRejectedV1,
			Payload: &leagueevents.XPRejectedPayloadV1{
				UserID: payload.UserID,
				Delta:  payload.Delta,
				Reason: (*result.Failure).Error(),
			},
		}}, nil
	}

	if result.Success == nil {
		return nil, fmt.Errorf("unexpected result from service")
	}

	admitted := admittedPayload(payload.UserID, result.Success.Placements)
	if admitted == nil {
		return nil, nil
	}
	return []handlerwrapper.Result{{Topic: leagueevents.MemberAdmittedV1, Payload: admitted}}, nil
}
