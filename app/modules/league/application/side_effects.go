package leagueservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
	"github.com/wellplay/wellplay-backend/app/shared/utils/results"
)

// rewardKey identifies one member's reward for one cohort in the wallet and
// notification store.
func rewardKey(cohortID int64, userID string) string {
	return fmt.Sprintf("league:%d:%s", cohortID, userID)
}

// applySideEffects pays out every member of a settled cohort. Each member is
// handled in its own transaction guarded by a reward stamp, so a retry skips
// members already paid. Failures are collected and returned together.
func (s *LeagueService) applySideEffects(ctx context.Context, r *CohortResolution) error {
	placed := make(map[string]Placement, len(r.Placements))
	for _, p := range r.Placements {
		placed[p.UserID] = p
	}

	var errs []error
	for _, o := range r.Outcomes {
		if err := s.payOut(ctx, r, o, placed[o.UserID]); err != nil {
			s.logger.ErrorContext(ctx, "Failed to apply resolution side effects",
				attr.ExtractCorrelationID(ctx),
				attr.CohortID(r.CohortID),
				attr.UserID(o.UserID),
				attr.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", o.UserID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *LeagueService) payOut(ctx context.Context, r *CohortResolution, o leaguedomain.MemberOutcome, next Placement) error {
	tier := s.tier(r.TierOrder)
	key := rewardKey(r.CohortID, o.UserID)

	stamped, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		fresh, err := s.repo.InsertRewardStamp(ctx, db, r.CohortID, o.UserID, o.Reward)
		if err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		if !fresh {
			return results.SuccessResult[bool, error](false), nil
		}

		if o.Reward > 0 {
			if err := s.wallet.CreditGems(ctx, o.UserID, o.Reward, key); err != nil {
				return results.OperationResult[bool, error]{}, fmt.Errorf("failed to credit gems: %w", err)
			}
		}
		content := leaguedomain.NotificationContent(o.Outcome, tier.Name, o.Rank, o.Reward)
		if err := s.notifications.RecordNotification(ctx, o.UserID, o.Outcome, content, key); err != nil {
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to record notification: %w", err)
		}
		return results.SuccessResult[bool, error](true), nil
	})
	if err != nil {
		return err
	}
	if !*stamped.Success {
		return nil
	}

	if s.metrics != nil && o.Reward > 0 {
		s.metrics.RecordGemsPaid(ctx, r.Scope.Key(), o.Reward)
	}
	s.pushOutcome(ctx, r, tier, o, next)
	return nil
}

// pushOutcome sends the resolved and next-league messages to the member's
// status channel. Delivery is best effort.
func (s *LeagueService) pushOutcome(ctx context.Context, r *CohortResolution, tier leaguedomain.Tier, o leaguedomain.MemberOutcome, next Placement) {
	if s.transport == nil {
		return
	}
	channel := leaguedomain.StatusChannel(r.Scope, o.UserID)

	s.publish(ctx, channel, leaguedomain.ResolvedMessage{
		Type:      leaguedomain.MessageLeagueResolved,
		CohortID:  r.CohortID,
		TierName:  tier.Name,
		TierLevel: tier.Order,
		WindowEnd: r.WindowEnd,
		UserRank:  o.Rank,
		Outcome:   o.Outcome,
		Reward:    o.Reward,
	})

	if next.CohortID == 0 {
		return
	}
	view, err := s.CohortStandings(ctx, next.CohortID, o.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to build next league standings",
			attr.ExtractCorrelationID(ctx),
			attr.CohortID(next.CohortID),
			attr.UserID(o.UserID),
			attr.Error(err),
		)
		return
	}
	s.publish(ctx, channel, leaguedomain.NextLeagueMessage{
		Type:      leaguedomain.MessageNextLeague,
		Standings: view,
	})
}

func (s *LeagueService) publish(ctx context.Context, channel string, msg any) {
	payload, err := json.Marshal(msg)
	if err == nil {
		err = s.transport.Publish(ctx, channel, payload)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Broadcast failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("channel", channel),
			attr.Error(err),
		)
	}
}
