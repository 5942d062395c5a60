package leagueadapters

import (
	"time"

	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
)

// User is the slice of the users table the league engine reads.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            string     `bun:"id,pk"`
	DisplayName   string     `bun:"display_name,notnull"`
	AvatarRef     string     `bun:"avatar_ref,notnull"`
	CompanyID     *string    `bun:"company_id"`
	LifetimeXP    int64      `bun:"lifetime_xp,notnull"`
	StreakDays    int        `bun:"streak_days,notnull"`
	LastActiveOn  *time.Time `bun:"last_active_on,type:date"`
	LocalTimezone string     `bun:"local_timezone,notnull"`
}

func (u *User) Profile() leaguedomain.UserProfile {
	p := leaguedomain.UserProfile{
		UserID:        u.ID,
		DisplayName:   u.DisplayName,
		AvatarRef:     u.AvatarRef,
		StreakDays:    u.StreakDays,
		LocalTimezone: u.LocalTimezone,
		LifetimeXP:    u.LifetimeXP,
	}
	if u.CompanyID != nil {
		p.CompanyID = *u.CompanyID
	}
	return p
}

// GemLedgerEntry is one credit to a user's gem balance.
type GemLedgerEntry struct {
	bun.BaseModel `bun:"table:gem_ledger,alias:gl"`

	ID             int64     `bun:"id,pk,autoincrement"`
	UserID         string    `bun:"user_id,notnull"`
	Amount         int       `bun:"amount,notnull"`
	IdempotencyKey string    `bun:"idempotency_key,notnull,unique"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Notification is an in-app notification row.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID             int64     `bun:"id,pk,autoincrement"`
	UserID         string    `bun:"user_id,notnull"`
	Kind           string    `bun:"kind,notnull"`
	Content        string    `bun:"content,notnull"`
	IdempotencyKey *string   `bun:"idempotency_key,unique"`
	Read           bool      `bun:"read,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
