package leaguemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// The users, gem_ledger, and notifications tables belong to neighbouring
// subsystems. They are created here only if absent so local and test
// databases carry the columns the league adapters read and write.
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating league collaborator tables...")

		statements := []string{
			`CREATE TABLE IF NOT EXISTS users (
				id             text        PRIMARY KEY,
				display_name   text        NOT NULL DEFAULT '',
				avatar_ref     text        NOT NULL DEFAULT '',
				company_id     text        NULL,
				lifetime_xp    bigint      NOT NULL DEFAULT 0,
				streak_days    integer     NOT NULL DEFAULT 0,
				last_active_on date        NULL,
				local_timezone text        NOT NULL DEFAULT 'UTC',
				created_at     timestamptz NOT NULL DEFAULT current_timestamp
			)`,
			`CREATE TABLE IF NOT EXISTS gem_ledger (
				id              bigserial   PRIMARY KEY,
				user_id         text        NOT NULL,
				amount          integer     NOT NULL,
				idempotency_key text        NOT NULL UNIQUE,
				created_at      timestamptz NOT NULL DEFAULT current_timestamp
			)`,
			`CREATE TABLE IF NOT EXISTS notifications (
				id              bigserial   PRIMARY KEY,
				user_id         text        NOT NULL,
				kind            text        NOT NULL,
				content         text        NOT NULL,
				idempotency_key text        NULL UNIQUE,
				read            boolean     NOT NULL DEFAULT false,
				created_at      timestamptz NOT NULL DEFAULT current_timestamp
			)`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC)`,
		}
		for _, stmt := range statements {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create collaborator tables: %w", err)
			}
		}

		fmt.Println("League collaborator tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Leaving collaborator tables in place")
		return nil
	})
}
