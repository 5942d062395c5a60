package leaguequeue

import (
	"time"

	"github.com/riverqueue/river"
)

const (
	// QueueName is the River queue league jobs run on.
	QueueName = "league"

	kindResolveExpired = "league_resolve_expired"
)

// ResolveExpiredJob runs one resolution scheduler tick.
type ResolveExpiredJob struct {
	// RequestedAt is set on manually triggered ticks.
	RequestedAt *time.Time `json:"requested_at,omitempty"`
}

// Kind returns the job type identifier for River
func (ResolveExpiredJob) Kind() string { return kindResolveExpired }

// InsertOpts runs ticks once: a failed tick leaves its cohorts due and the
// next tick picks them up.
func (ResolveExpiredJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueName, MaxAttempts: 1}
}
