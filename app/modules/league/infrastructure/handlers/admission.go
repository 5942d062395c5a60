package leaguehandlers

import (
	"context"
	"errors"
	"fmt"

	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
	leagueevents "github.com/wellplay/wellplay-backend/app/shared/events/league"
	"github.com/wellplay/wellplay-backend/app/shared/handlerwrapper"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
)

// HandleAdmissionRequested places the user if they now qualify.
func (h *LeagueHandlers) HandleAdmissionRequested(
	ctx context.Context,
	payload *leagueevents.AdmissionRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	result, err := h.service.ConsiderForAdmission(ctx, payload.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to consider admission: %w", err)
	}

	if result.Failure != nil {
		// Not qualifying yet is the common case and needs no reply.
		if !errors.Is(*result.Failure, leagueservice.ErrNotQualified) {
			h.logger.WarnContext(ctx, "Admission request rejected",
				attr.ExtractCorrelationID(ctx),
				attr.String("user_id", payload.UserID),
				attr.Error(*result.Failure),
			)
		}
		return nil, nil
	}

	if result.Success == nil {
		return nil, fmt.Errorf("unexpected result from service")
	}

	admitted := admittedPayload(payload.UserID, *result.Success)
	if admitted == nil {
		return nil, nil
	}
	return []handlerwrapper.Result{{Topic: leagueevents.MemberAdmittedV1, Payload: admitted}}, nil
}
