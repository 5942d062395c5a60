package leaguequeue

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/riverqueue/river"
	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
)

// Resolver is the part of the league service the scheduler drives.
type Resolver interface {
	ResolveExpiredCohorts(ctx context.Context) (leagueservice.ResolutionReport, error)
}

// ResolveExpiredWorker executes ResolveExpiredJob.
type ResolveExpiredWorker struct {
	river.WorkerDefaults[ResolveExpiredJob]

	resolver Resolver
	logger   *slog.Logger
}

func NewResolveExpiredWorker(resolver Resolver, logger *slog.Logger) *ResolveExpiredWorker {
	return &ResolveExpiredWorker{resolver: resolver, logger: logger}
}

// Timeout is disabled; every cohort carries its own deadline.
func (w *ResolveExpiredWorker) Timeout(*river.Job[ResolveExpiredJob]) time.Duration { return -1 }

func (w *ResolveExpiredWorker) Work(ctx context.Context, job *river.Job[ResolveExpiredJob]) error {
	ctx = attr.WithCorrelationID(ctx, job.Kind+"-"+strconv.FormatInt(job.ID, 10))

	report, err := w.resolver.ResolveExpiredCohorts(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Resolution tick failed",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("job_id", job.ID),
			attr.Error(err),
		)
		return err
	}

	w.logger.DebugContext(ctx, "Resolution tick complete",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("job_id", job.ID),
		attr.Int("resolved", report.Resolved()),
		attr.Int("failed", report.Failed()),
	)
	return nil
}
