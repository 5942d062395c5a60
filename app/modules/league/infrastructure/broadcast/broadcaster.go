// Package leaguebroadcast pushes provisional cohort standings to clients.
// Requests are queued without blocking the caller, merged per cohort, and
// published at a bounded rate.
package leaguebroadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
	leaguemetrics "github.com/wellplay/wellplay-backend/app/shared/observability/metrics/league"
	"golang.org/x/time/rate"
)

const kindStandings = "standings"

// StandingsSource builds the view pushed for a cohort.
type StandingsSource interface {
	CohortStandings(ctx context.Context, cohortID int64, callingUserID string) (*leaguedomain.StandingsView, error)
}

type request struct {
	cohortID int64
	userID   string
}

// Broadcaster implements leagueservice.LiveBroadcaster.
type Broadcaster struct {
	source    StandingsSource
	transport leagueservice.BroadcastTransport

	coalesce  time.Duration
	queueSize int
	perSecond float64

	queue   chan request
	limiter *rate.Limiter
	running atomic.Bool

	logger  *slog.Logger
	metrics leaguemetrics.LeagueMetrics
}

var _ leagueservice.LiveBroadcaster = (*Broadcaster)(nil)

// New creates a Broadcaster. Call Run to start publishing.
func New(source StandingsSource, transport leagueservice.BroadcastTransport, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		source:    source,
		transport: transport,
		coalesce:  defaultCoalesce,
		queueSize: defaultQueueSize,
		perSecond: defaultRate,
		logger:    slog.Default(),
		metrics:   leaguemetrics.NewNoop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.queue = make(chan request, b.queueSize)
	b.limiter = rate.NewLimiter(rate.Limit(b.perSecond), max(1, int(b.perSecond)))
	return b
}

// Enqueue schedules a push for cohortID. It never blocks; when the queue is
// full the request is dropped and the next change republishes.
func (b *Broadcaster) Enqueue(cohortID int64, callingUserID string) {
	ctx := context.Background()
	select {
	case b.queue <- request{cohortID: cohortID, userID: callingUserID}:
		b.metrics.RecordBroadcastEnqueued(ctx, kindStandings)
	default:
		b.metrics.RecordBroadcastDropped(ctx, kindStandings)
	}
}

// Run drains the queue until ctx is cancelled. Requests that arrive within
// one coalescing window collapse into a single publish per cohort, carrying
// the most recent caller.
func (b *Broadcaster) Run(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return fmt.Errorf("broadcaster already running")
	}
	defer b.running.Store(false)

	pending := make(map[int64]string)
	order := make([]int64, 0, 16)

	timer := time.NewTimer(b.coalesce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case req := <-b.queue:
			if _, ok := pending[req.cohortID]; !ok {
				order = append(order, req.cohortID)
			}
			pending[req.cohortID] = req.userID
			if !armed {
				timer.Reset(b.coalesce)
				armed = true
			}

		case <-timer.C:
			armed = false
			for _, id := range order {
				if err := b.push(ctx, id, pending[id]); err != nil && ctx.Err() != nil {
					return nil
				}
			}
			clear(pending)
			order = order[:0]
		}
	}
}

func (b *Broadcaster) push(ctx context.Context, cohortID int64, userID string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	err := b.publish(ctx, cohortID, userID)
	if err != nil {
		b.metrics.RecordBroadcastFailure(ctx, kindStandings)
		b.logger.WarnContext(ctx, "Standings broadcast failed",
			attr.CohortID(cohortID),
			attr.Error(err),
		)
		return err
	}
	b.metrics.RecordBroadcastPublished(ctx, kindStandings)
	return nil
}

func (b *Broadcaster) publish(ctx context.Context, cohortID int64, userID string) error {
	view, err := b.source.CohortStandings(ctx, cohortID, userID)
	if err != nil {
		return fmt.Errorf("failed to build standings: %w", err)
	}
	scope, err := leaguedomain.ParseScope(view.Scope)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(leaguedomain.StandingsMessage{
		Type:      leaguedomain.MessageStandings,
		Standings: view,
	})
	if err != nil {
		return fmt.Errorf("failed to encode standings: %w", err)
	}
	return b.transport.Publish(ctx, leaguedomain.CohortChannel(scope, cohortID), payload)
}
