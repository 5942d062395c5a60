package leagueadapters

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
)

var _ leagueservice.NotificationStore = (*NotificationStore)(nil)

// NotificationStore writes in-app notifications. A repeated key is ignored.
type NotificationStore struct {
	db bun.IDB
}

func NewNotificationStore(db bun.IDB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) RecordNotification(ctx context.Context, userID string, kind leaguedomain.Outcome, content, idempotencyKey string) error {
	n := &Notification{
		UserID:         userID,
		Kind:           string(kind),
		Content:        content,
		IdempotencyKey: &idempotencyKey,
	}
	if _, err := s.db.NewInsert().Model(n).On("CONFLICT (idempotency_key) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// ForUser lists a user's notifications, newest first.
func (s *NotificationStore) ForUser(ctx context.Context, userID string) ([]Notification, error) {
	var out []Notification
	err := s.db.NewSelect().Model(&out).Where("n.user_id = ?", userID).Order("n.created_at DESC", "n.id DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}
