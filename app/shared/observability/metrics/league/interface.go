// Package leaguemetrics defines the metrics emitted by the league lifecycle
// engine and a Prometheus-backed implementation.
package leaguemetrics

import (
	"context"
	"time"
)

// LeagueMetrics is recorded by the league service, the resolution scheduler,
// and the live ranking broadcaster.
type LeagueMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)

	RecordXPCredited(ctx context.Context, scope string, amount int64)
	RecordAdmission(ctx context.Context, scope string, tier int, newCohort bool)
	RecordCohortCreated(ctx context.Context, scope string, tier int)
	RecordGemsPaid(ctx context.Context, scope string, amount int)
	RecordClaimConflict(ctx context.Context, scope string)
	RecordCohortResolved(ctx context.Context, scope string, tier int, members int)
	RecordOutcome(ctx context.Context, scope, outcome string)
	RecordResolutionPass(ctx context.Context, scope string, resolved, failed int, d time.Duration)

	RecordBroadcastEnqueued(ctx context.Context, kind string)
	RecordBroadcastDropped(ctx context.Context, kind string)
	RecordBroadcastPublished(ctx context.Context, kind string)
	RecordBroadcastFailure(ctx context.Context, kind string)
}
