package leagueservice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
	"github.com/wellplay/wellplay-backend/app/shared/utils/results"
	"golang.org/x/sync/errgroup"
)

const releaseTimeout = 5 * time.Second

// ResolveExpiredCohorts runs one scheduler tick: global cohorts first, then
// company cohorts. A cohort that fails stays due and is retried next tick.
func (s *LeagueService) ResolveExpiredCohorts(ctx context.Context) (ResolutionReport, error) {
	var report ResolutionReport
	for _, kind := range []leaguedomain.ScopeKind{leaguedomain.ScopeGlobal, leaguedomain.ScopeCompany} {
		pass, err := s.resolvePass(ctx, kind)
		report.Passes = append(report.Passes, pass)
		if err != nil {
			return report, fmt.Errorf("%s resolution pass failed: %w", kind, err)
		}
	}
	return report, nil
}

func (s *LeagueService) resolvePass(ctx context.Context, kind leaguedomain.ScopeKind) (PassReport, error) {
	start := time.Now()
	report := PassReport{Kind: kind}

	due, err := s.repo.ExpiredCohorts(ctx, nil, kind, s.now(), s.cfg.ClaimLease, s.cfg.ExpiredBatchSize)
	if err != nil {
		return report, err
	}
	report.Due = len(due)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.cfg.ResolutionWorkers)

	for _, c := range due {
		cohortID := c.ID
		g.Go(func() error {
			_, err := s.ResolveCohort(ctx, cohortID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Resolved++
			case errors.Is(err, leaguedb.ErrClaimLost):
				report.Conflicts++
				if s.metrics != nil {
					s.metrics.RecordClaimConflict(ctx, string(kind))
				}
			default:
				report.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordResolutionPass(ctx, string(kind), report.Resolved, report.Failed, report.Duration)
	}
	if report.Due > 0 {
		s.logger.InfoContext(ctx, "Resolution pass complete",
			attr.String("scope_kind", string(kind)),
			attr.Int("due", report.Due),
			attr.Int("resolved", report.Resolved),
			attr.Int("conflicts", report.Conflicts),
			attr.Int("failed", report.Failed),
			attr.Duration("duration", report.Duration),
		)
	}
	return report, nil
}

// ResolveCohort claims cohortID and drives it to resolved. ErrClaimLost
// means another worker holds the cohort.
func (s *LeagueService) ResolveCohort(ctx context.Context, cohortID int64) (*CohortResolution, error) {
	result, err := withTelemetry(s, ctx, "ResolveCohort", fmt.Sprint(cohortID), func(ctx context.Context) (results.OperationResult[*CohortResolution, error], error) {
		if s.cfg.ResolutionTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.ResolutionTimeout)
			defer cancel()
		}
		return s.resolve(ctx, cohortID)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *LeagueService) resolve(ctx context.Context, cohortID int64) (res results.OperationResult[*CohortResolution, error], err error) {
	token := uuid.New()
	won, err := s.repo.ClaimForResolution(ctx, nil, cohortID, token, s.now(), s.cfg.ClaimLease)
	if err != nil {
		return res, fmt.Errorf("failed to claim cohort %d: %w", cohortID, err)
	}
	if !won {
		return s.claimConflict(ctx, cohortID), nil
	}

	defer func() {
		if err != nil || res.IsFailure() {
			s.releaseClaim(ctx, cohortID, token)
		}
	}()

	settled, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*CohortResolution, error], error) {
		r, err := s.settle(ctx, db, cohortID, token)
		if err != nil {
			return results.OperationResult[*CohortResolution, error]{}, err
		}
		return results.SuccessResult[*CohortResolution, error](r), nil
	})
	if errors.Is(err, leaguedb.ErrClaimLost) {
		return s.claimConflict(ctx, cohortID), nil
	}
	if err != nil {
		return res, err
	}
	resolution := *settled.Success

	if err := s.applySideEffects(ctx, resolution); err != nil {
		return res, fmt.Errorf("side effects incomplete for cohort %d: %w", cohortID, err)
	}

	if err := s.repo.FinalizeResolution(ctx, nil, cohortID, token, s.now()); err != nil {
		if errors.Is(err, leaguedb.ErrClaimLost) {
			return s.claimConflict(ctx, cohortID), nil
		}
		return res, err
	}

	s.recordResolved(ctx, resolution)
	for _, p := range resolution.Placements {
		s.live.Enqueue(p.CohortID, p.UserID)
	}
	return results.SuccessResult[*CohortResolution, error](resolution), nil
}

// settle computes and records outcomes and reassigns every member. It runs
// in one transaction so no member is observed without an active membership.
// If an earlier attempt already settled the cohort, the recorded outcomes are
// returned instead.
func (s *LeagueService) settle(ctx context.Context, db bun.IDB, cohortID int64, token uuid.UUID) (*CohortResolution, error) {
	cohort, members, err := s.loadCohort(ctx, db, cohortID)
	if err != nil {
		return nil, err
	}
	scope := cohort.Scope()

	resolution := &CohortResolution{
		CohortID:  cohortID,
		Scope:     scope,
		TierOrder: cohort.TierOrder,
		WindowEnd: cohort.WindowEnd,
	}

	if slices.ContainsFunc(members, func(m leaguedb.Membership) bool { return m.Resolved() }) {
		return s.replay(ctx, db, resolution, members)
	}

	active := make([]leaguedb.Membership, 0, len(members))
	for _, m := range members {
		if m.Active {
			active = append(active, m)
		}
	}
	profiles, err := s.profilesOf(ctx, active)
	if err != nil {
		return nil, err
	}

	var skipped []int64
	contenders := make([]leaguedomain.Contender, 0, len(active))
	for _, m := range active {
		p, ok := profiles[m.UserID]
		if !ok {
			s.logger.WarnContext(ctx, "Skipping member missing from user directory",
				attr.ExtractCorrelationID(ctx),
				attr.CohortID(cohortID),
				attr.UserID(m.UserID),
			)
			skipped = append(skipped, m.ID)
			resolution.Skipped = append(resolution.Skipped, m.UserID)
			continue
		}
		contenders = append(contenders, leaguedomain.Contender{
			MembershipID: m.ID,
			UserID:       m.UserID,
			XPInCohort:   m.XPInCohort,
			StreakDays:   p.StreakDays,
		})
	}

	ladder, err := s.ladderFor(ctx, db, scope)
	if err != nil {
		return nil, err
	}
	resolution.Outcomes = leaguedomain.Resolve(contenders, ladder.Position(cohort.TierOrder))

	records := make([]leaguedb.OutcomeRecord, 0, len(resolution.Outcomes))
	for _, o := range resolution.Outcomes {
		records = append(records, leaguedb.OutcomeRecord{
			MembershipID: o.MembershipID,
			Rank:         o.Rank,
			Outcome:      o.Outcome,
			Reward:       o.Reward,
		})
	}
	if err := s.repo.RecordOutcomes(ctx, db, cohortID, token, records, skipped); err != nil {
		return nil, err
	}

	placements, err := s.reassign(ctx, db, scope, ladder, cohort.TierOrder, resolution.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("reassignment failed: %w", err)
	}
	resolution.Placements = placements
	return resolution, nil
}

// replay rebuilds the resolution of a cohort whose outcomes and placements
// were committed by an earlier attempt that failed before finalizing.
func (s *LeagueService) replay(ctx context.Context, db bun.IDB, resolution *CohortResolution, members []leaguedb.Membership) (*CohortResolution, error) {
	resolution.Replayed = true
	for _, m := range members {
		if !m.Resolved() {
			resolution.Skipped = append(resolution.Skipped, m.UserID)
			continue
		}
		o := leaguedomain.MemberOutcome{
			MembershipID: m.ID,
			UserID:       m.UserID,
			XPInCohort:   m.XPInCohort,
			Outcome:      *m.Outcome,
		}
		if m.FinalRank != nil {
			o.Rank = *m.FinalRank
		}
		if m.Reward != nil {
			o.Reward = *m.Reward
		}
		resolution.Outcomes = append(resolution.Outcomes, o)

		next, err := s.repo.ActiveMembership(ctx, db, m.UserID, resolution.Scope)
		if err != nil {
			return nil, fmt.Errorf("failed to locate placement of %s: %w", m.UserID, err)
		}
		p := alreadyPlaced(m.UserID, resolution.Scope, next)
		p.AlreadyMember = false
		resolution.Placements = append(resolution.Placements, p)
	}
	slices.SortFunc(resolution.Outcomes, func(a, b leaguedomain.MemberOutcome) int { return a.Rank - b.Rank })
	return resolution, nil
}

// reassign places each member by outcome. Placements are made in ascending
// target tier order so concurrent resolutions take placement locks in the
// same order. Members demoted off the bottom rung share the fresh cohorts
// created for them.
func (s *LeagueService) reassign(
	ctx context.Context,
	db bun.IDB,
	scope leaguedomain.Scope,
	ladder leaguedomain.Ladder,
	current int,
	outcomes []leaguedomain.MemberOutcome,
) ([]Placement, error) {
	type move struct {
		userID string
		target leaguedomain.PlacementTarget
	}
	moves := make([]move, 0, len(outcomes))
	for _, o := range outcomes {
		moves = append(moves, move{userID: o.UserID, target: s.cfg.Policy.TargetFor(ladder, current, o.Outcome)})
	}
	slices.SortStableFunc(moves, func(a, b move) int { return a.target.TierOrder - b.target.TierOrder })

	now := s.now()
	var fresh int64
	placements := make([]Placement, 0, len(moves))
	for _, mv := range moves {
		if mv.target.Fresh && fresh != 0 {
			m, err := s.repo.TryAddMembership(ctx, db, mv.userID, fresh, now)
			if err == nil {
				placements = append(placements, placementFrom(mv.userID, scope, mv.target.TierOrder, m, false))
				continue
			}
			if !errors.Is(err, leaguedb.ErrCohortFull) {
				return nil, err
			}
		}

		p, err := s.placeUser(ctx, db, mv.userID, scope, mv.target, now)
		if err != nil {
			return nil, fmt.Errorf("failed to place %s: %w", mv.userID, err)
		}
		if mv.target.Fresh {
			fresh = p.CohortID
		}
		placements = append(placements, p)
	}
	return placements, nil
}

func (s *LeagueService) claimConflict(ctx context.Context, cohortID int64) results.OperationResult[*CohortResolution, error] {
	s.logger.InfoContext(ctx, "Cohort claimed elsewhere",
		attr.ExtractCorrelationID(ctx),
		attr.CohortID(cohortID),
	)
	return results.FailureResult[*CohortResolution, error](leaguedb.ErrClaimLost)
}

// releaseClaim runs on a detached context so a timed out resolution still
// hands the cohort back.
func (s *LeagueService) releaseClaim(ctx context.Context, cohortID int64, token uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := s.repo.ReleaseClaim(ctx, nil, cohortID, token); err != nil && !errors.Is(err, leaguedb.ErrClaimLost) {
		s.logger.WarnContext(ctx, "Failed to release resolution claim",
			attr.ExtractCorrelationID(ctx),
			attr.CohortID(cohortID),
			attr.Error(err),
		)
	}
}

func (s *LeagueService) recordResolved(ctx context.Context, r *CohortResolution) {
	s.logger.InfoContext(ctx, "Cohort resolved",
		attr.ExtractCorrelationID(ctx),
		attr.CohortID(r.CohortID),
		attr.Scope(r.Scope),
		attr.Int("tier", r.TierOrder),
		attr.Int("members", len(r.Outcomes)),
		attr.Int("skipped", len(r.Skipped)),
		attr.Bool("replayed", r.Replayed),
	)
	if s.metrics == nil {
		return
	}
	s.metrics.RecordCohortResolved(ctx, r.Scope.Key(), r.TierOrder, len(r.Outcomes))
	for _, o := range r.Outcomes {
		s.metrics.RecordOutcome(ctx, r.Scope.Key(), string(o.Outcome))
	}
}
