package leagueadapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
)

var _ leagueservice.StreakUpdater = (*StreakUpdater)(nil)

// StreakUpdater maintains users.streak_days from activity timestamps,
// counting days in the user's own timezone.
type StreakUpdater struct {
	db bun.IDB
}

func NewStreakUpdater(db bun.IDB) *StreakUpdater {
	return &StreakUpdater{db: db}
}

func (s *StreakUpdater) TouchStreak(ctx context.Context, userID string, eventTime time.Time) (int, error) {
	var days int
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		u := new(User)
		err := tx.NewSelect().
			Model(u).
			Column("id", "streak_days", "last_active_on", "local_timezone").
			Where("u.id = ?", userID).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return leagueservice.ErrMissingUser
		}
		if err != nil {
			return fmt.Errorf("failed to load streak: %w", err)
		}

		day := localDay(eventTime, u.LocalTimezone)
		next, changed := advanceStreak(u.LastActiveOn, u.StreakDays, day)
		days = next
		if !changed {
			return nil
		}

		_, err = tx.NewUpdate().
			Model((*User)(nil)).
			Set("streak_days = ?", next).
			Set("last_active_on = ?", day).
			Where("id = ?", userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update streak: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return days, nil
}

// localDay truncates t to midnight of its calendar day in tz, returned as a
// UTC date. An unknown zone counts as UTC.
func localDay(t time.Time, tz string) time.Time {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// advanceStreak returns the streak after activity on day. Activity on the
// last active day or earlier leaves it unchanged; the following day extends
// it; any gap restarts it at 1.
func advanceStreak(last *time.Time, streak int, day time.Time) (int, bool) {
	if last == nil {
		return 1, true
	}
	prev := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case !day.After(prev):
		if streak == 0 {
			return 1, true
		}
		return streak, false
	case day.Equal(prev.AddDate(0, 0, 1)):
		return streak + 1, true
	default:
		return 1, true
	}
}
