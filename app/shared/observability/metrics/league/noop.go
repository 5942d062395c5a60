package leaguemetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards every measurement.
type NoOpMetrics struct{}

func NewNoop() LeagueMetrics { return &NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordXPCredited(context.Context, string, int64)                        {}
func (NoOpMetrics) RecordAdmission(context.Context, string, int, bool)                     {}
func (NoOpMetrics) RecordCohortCreated(context.Context, string, int)                       {}
func (NoOpMetrics) RecordGemsPaid(context.Context, string, int)                            {}
func (NoOpMetrics) RecordClaimConflict(context.Context, string)                            {}
func (NoOpMetrics) RecordCohortResolved(context.Context, string, int, int)                 {}
func (NoOpMetrics) RecordOutcome(context.Context, string, string)                          {}
func (NoOpMetrics) RecordResolutionPass(context.Context, string, int, int, time.Duration)  {}
func (NoOpMetrics) RecordBroadcastEnqueued(context.Context, string)                        {}
func (NoOpMetrics) RecordBroadcastDropped(context.Context, string)                         {}
func (NoOpMetrics) RecordBroadcastPublished(context.Context, string)                       {}
func (NoOpMetrics) RecordBroadcastFailure(context.Context, string)                         {}
