package leaguemetrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "league"

// PrometheusMetrics implements LeagueMetrics on top of a Prometheus registerer.
type PrometheusMetrics struct {
	operationAttempts *prometheus.CounterVec
	operationSuccess  *prometheus.CounterVec
	operationFailure  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec

	xpCredited       *prometheus.CounterVec
	admissions       *prometheus.CounterVec
	cohortsCreated   *prometheus.CounterVec
	gemsPaid         *prometheus.CounterVec
	claimConflicts   *prometheus.CounterVec
	cohortsResolved  *prometheus.CounterVec
	resolvedMembers  *prometheus.HistogramVec
	outcomes         *prometheus.CounterVec
	passResolved     *prometheus.CounterVec
	passFailed       *prometheus.CounterVec
	passDuration     *prometheus.HistogramVec
	broadcastQueued  *prometheus.CounterVec
	broadcastDropped *prometheus.CounterVec
	broadcastSent    *prometheus.CounterVec
	broadcastFailed  *prometheus.CounterVec
}

// NewPrometheus registers the league collectors on reg.
func NewPrometheus(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_attempts_total", Help: "Service operations started.",
		}, []string{"operation", "service"}),
		operationSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_success_total", Help: "Service operations completed without infrastructure error.",
		}, []string{"operation", "service"}),
		operationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_failure_total", Help: "Service operations that returned an error or panicked.",
		}, []string{"operation", "service"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "operation_duration_seconds", Help: "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		xpCredited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "xp_credited_total", Help: "XP credited to active memberships.",
		}, []string{"scope"}),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "admissions_total", Help: "Users placed into a cohort by admission.",
		}, []string{"scope", "tier", "new_cohort"}),
		cohortsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cohorts_created_total", Help: "Cohorts instanced by admission or reassignment.",
		}, []string{"scope", "tier"}),
		gemsPaid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "gems_paid_total", Help: "Gems credited as resolution rewards.",
		}, []string{"scope"}),
		claimConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "resolution_claim_conflicts_total", Help: "Resolution claims lost to another worker.",
		}, []string{"scope"}),
		cohortsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cohorts_resolved_total", Help: "Cohorts moved to resolved.",
		}, []string{"scope", "tier"}),
		resolvedMembers: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "resolved_cohort_size", Help: "Member count of resolved cohorts.",
			Buckets: []float64{1, 2, 5, 10, 15, 20, 25, 30},
		}, []string{"scope"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "outcomes_total", Help: "Resolution outcomes by kind.",
		}, []string{"scope", "outcome"}),
		passResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "resolution_pass_resolved_total", Help: "Cohorts resolved by scheduler passes.",
		}, []string{"scope"}),
		passFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "resolution_pass_failed_total", Help: "Cohorts that failed to resolve in a scheduler pass.",
		}, []string{"scope"}),
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "resolution_pass_duration_seconds", Help: "Scheduler pass latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"scope"}),
		broadcastQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "broadcast_enqueued_total", Help: "Broadcast requests accepted.",
		}, []string{"kind"}),
		broadcastDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "broadcast_dropped_total", Help: "Broadcast requests dropped because the queue was full.",
		}, []string{"kind"}),
		broadcastSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "broadcast_published_total", Help: "Broadcast messages published.",
		}, []string{"kind"}),
		broadcastFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "broadcast_failed_total", Help: "Broadcast publishes that failed.",
		}, []string{"kind"}),
	}

	collectors := []prometheus.Collector{
		m.operationAttempts, m.operationSuccess, m.operationFailure, m.operationDuration,
		m.xpCredited, m.admissions, m.cohortsCreated, m.gemsPaid, m.claimConflicts, m.cohortsResolved, m.resolvedMembers, m.outcomes,
		m.passResolved, m.passFailed, m.passDuration,
		m.broadcastQueued, m.broadcastDropped, m.broadcastSent, m.broadcastFailed,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operationAttempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operationSuccess.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operationFailure.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordXPCredited(_ context.Context, scope string, amount int64) {
	m.xpCredited.WithLabelValues(scope).Add(float64(amount))
}

func (m *PrometheusMetrics) RecordAdmission(_ context.Context, scope string, tier int, newCohort bool) {
	m.admissions.WithLabelValues(scope, strconv.Itoa(tier), strconv.FormatBool(newCohort)).Inc()
}

func (m *PrometheusMetrics) RecordCohortCreated(_ context.Context, scope string, tier int) {
	m.cohortsCreated.WithLabelValues(scope, strconv.Itoa(tier)).Inc()
}

func (m *PrometheusMetrics) RecordGemsPaid(_ context.Context, scope string, amount int) {
	m.gemsPaid.WithLabelValues(scope).Add(float64(amount))
}

func (m *PrometheusMetrics) RecordClaimConflict(_ context.Context, scope string) {
	m.claimConflicts.WithLabelValues(scope).Inc()
}

func (m *PrometheusMetrics) RecordCohortResolved(_ context.Context, scope string, tier int, members int) {
	m.cohortsResolved.WithLabelValues(scope, strconv.Itoa(tier)).Inc()
	m.resolvedMembers.WithLabelValues(scope).Observe(float64(members))
}

func (m *PrometheusMetrics) RecordOutcome(_ context.Context, scope, outcome string) {
	m.outcomes.WithLabelValues(scope, outcome).Inc()
}

func (m *PrometheusMetrics) RecordResolutionPass(_ context.Context, scope string, resolved, failed int, d time.Duration) {
	m.passResolved.WithLabelValues(scope).Add(float64(resolved))
	m.passFailed.WithLabelValues(scope).Add(float64(failed))
	m.passDuration.WithLabelValues(scope).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordBroadcastEnqueued(_ context.Context, kind string) {
	m.broadcastQueued.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) RecordBroadcastDropped(_ context.Context, kind string) {
	m.broadcastDropped.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) RecordBroadcastPublished(_ context.Context, kind string) {
	m.broadcastSent.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) RecordBroadcastFailure(_ context.Context, kind string) {
	m.broadcastFailed.WithLabelValues(kind).Inc()
}
