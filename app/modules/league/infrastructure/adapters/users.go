package leagueadapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	"golang.org/x/sync/singleflight"
)

var _ leagueservice.UserDirectory = (*UserDirectory)(nil)

// UserDirectory reads profiles from the users table. Concurrent lookups of
// the same user share one query.
type UserDirectory struct {
	db    bun.IDB
	group singleflight.Group
}

func NewUserDirectory(db bun.IDB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) GetUser(ctx context.Context, userID string) (*leaguedomain.UserProfile, error) {
	v, err, _ := d.group.Do(userID, func() (any, error) {
		u := new(User)
		err := d.db.NewSelect().Model(u).Where("u.id = ?", userID).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, leagueservice.ErrMissingUser
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
		}
		p := u.Profile()
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*leaguedomain.UserProfile)
	return &p, nil
}

func (d *UserDirectory) GetUsers(ctx context.Context, userIDs []string) (map[string]leaguedomain.UserProfile, error) {
	out := make(map[string]leaguedomain.UserProfile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var users []User
	if err := d.db.NewSelect().Model(&users).Where("u.id IN (?)", bun.In(userIDs)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for i := range users {
		out[users[i].ID] = users[i].Profile()
	}
	return out, nil
}
