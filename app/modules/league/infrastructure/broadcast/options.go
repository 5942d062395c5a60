package leaguebroadcast

import (
	"log/slog"
	"time"

	leaguemetrics "github.com/wellplay/wellplay-backend/app/shared/observability/metrics/league"
)

const (
	defaultCoalesce  = 200 * time.Millisecond
	defaultQueueSize = 1024
	defaultRate      = 500
)

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithCoalesce sets how long requests for one cohort are merged before a
// single publish.
func WithCoalesce(d time.Duration) Option {
	return func(b *Broadcaster) {
		if d > 0 {
			b.coalesce = d
		}
	}
}

// WithQueueSize bounds the number of pending requests. Requests beyond it
// are dropped.
func WithQueueSize(n int) Option {
	return func(b *Broadcaster) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithRate caps publishes per second across all cohorts.
func WithRate(perSecond float64) Option {
	return func(b *Broadcaster) {
		if perSecond > 0 {
			b.perSecond = perSecond
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Broadcaster) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func WithMetrics(m leaguemetrics.LeagueMetrics) Option {
	return func(b *Broadcaster) {
		if m != nil {
			b.metrics = m
		}
	}
}
