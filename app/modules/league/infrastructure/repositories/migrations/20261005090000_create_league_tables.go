package leaguemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating league tables...")

		statements := []string{
			`CREATE TABLE IF NOT EXISTS league_tiers (
				tier_order smallint PRIMARY KEY CHECK (tier_order BETWEEN 1 AND 10),
				name       text     NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS league_company_tiers (
				company_id text     NOT NULL,
				tier_order smallint NOT NULL REFERENCES league_tiers (tier_order),
				PRIMARY KEY (company_id, tier_order)
			)`,
			`CREATE TABLE IF NOT EXISTS league_cohorts (
				id           bigserial   PRIMARY KEY,
				tier_order   smallint    NOT NULL REFERENCES league_tiers (tier_order),
				scope_kind   text        NOT NULL CHECK (scope_kind IN ('global', 'company')),
				company_id   text        NULL,
				scope_key    text        NOT NULL,
				window_start timestamptz NOT NULL,
				window_end   timestamptz NOT NULL,
				capacity     integer     NOT NULL CHECK (capacity > 0),
				state        text        NOT NULL DEFAULT 'active' CHECK (state IN ('active', 'resolving', 'resolved')),
				claimed_at   timestamptz NULL,
				claim_token  uuid        NULL,
				resolved_at  timestamptz NULL,
				created_at   timestamptz NOT NULL DEFAULT current_timestamp,
				CHECK (window_end > window_start),
				CHECK ((scope_kind = 'company') = (company_id IS NOT NULL))
			)`,
			`CREATE INDEX IF NOT EXISTS idx_league_cohorts_state_window_end
				ON league_cohorts (state, window_end)`,
			`CREATE INDEX IF NOT EXISTS idx_league_cohorts_placement
				ON league_cohorts (tier_order, scope_key, state, window_start, id)`,
			`CREATE TABLE IF NOT EXISTS league_memberships (
				id           bigserial   PRIMARY KEY,
				user_id      text        NOT NULL,
				cohort_id    bigint      NOT NULL REFERENCES league_cohorts (id),
				scope_key    text        NOT NULL,
				xp_in_cohort bigint      NOT NULL DEFAULT 0 CHECK (xp_in_cohort >= 0),
				active       boolean     NOT NULL DEFAULT true,
				final_rank   integer     NULL,
				outcome      text        NULL CHECK (outcome IN ('promoted', 'retained', 'demoted')),
				reward       integer     NULL,
				created_at   timestamptz NOT NULL DEFAULT current_timestamp,
				UNIQUE (user_id, cohort_id)
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS uq_league_memberships_active_scope
				ON league_memberships (user_id, scope_key) WHERE active`,
			`CREATE INDEX IF NOT EXISTS idx_league_memberships_cohort
				ON league_memberships (cohort_id)`,
			`CREATE TABLE IF NOT EXISTS league_reward_stamps (
				cohort_id  bigint      NOT NULL REFERENCES league_cohorts (id),
				user_id    text        NOT NULL,
				amount     integer     NOT NULL,
				created_at timestamptz NOT NULL DEFAULT current_timestamp,
				PRIMARY KEY (cohort_id, user_id)
			)`,
		}
		for _, stmt := range statements {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create league schema: %w", err)
			}
		}

		fmt.Println("League tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping league tables...")

		for _, table := range []string{"league_reward_stamps", "league_memberships", "league_cohorts", "league_company_tiers", "league_tiers"} {
			if _, err := db.NewRaw("DROP TABLE IF EXISTS ? CASCADE", bun.Ident(table)).Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("League tables dropped successfully!")
		return nil
	})
}
