package leagueservice

import (
	"context"
	"time"

	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
)

//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks github.com/wellplay/wellplay-backend/app/modules/league/application BroadcastTransport

// UserDirectory is the read-only view of user accounts.
type UserDirectory interface {
	// GetUser returns ErrMissingUser when the user does not exist.
	GetUser(ctx context.Context, userID string) (*leaguedomain.UserProfile, error)
	// GetUsers omits unknown ids from the result.
	GetUsers(ctx context.Context, userIDs []string) (map[string]leaguedomain.UserProfile, error)
}

// GemWallet credits reward gems. Implementations must be idempotent on key.
type GemWallet interface {
	CreditGems(ctx context.Context, userID string, amount int, idempotencyKey string) error
}

// NotificationStore persists in-app notifications. Implementations must be
// idempotent on key.
type NotificationStore interface {
	RecordNotification(ctx context.Context, userID string, kind leaguedomain.Outcome, content, idempotencyKey string) error
}

// BroadcastTransport pushes bytes to a client channel. Best effort.
type BroadcastTransport interface {
	Publish(ctx context.Context, channelKey string, payload []byte) error
}

// LiveBroadcaster schedules a standings push for a cohort. Enqueue never
// blocks.
type LiveBroadcaster interface {
	Enqueue(cohortID int64, callingUserID string)
}

// StreakUpdater records activity for the daily streak and returns the
// resulting streak length.
type StreakUpdater interface {
	TouchStreak(ctx context.Context, userID string, eventTime time.Time) (int, error)
}

// Clock is injectable for tests.
type Clock interface {
	Now() time.Time
}
