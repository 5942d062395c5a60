package leaguemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Seeding league tiers...")

		tiers := make([]leaguedb.Tier, len(leaguedomain.DefaultTiers))
		for i, t := range leaguedomain.DefaultTiers {
			tiers[i] = leaguedb.Tier{Order: t.Order, Name: t.Name}
		}
		if _, err := db.NewInsert().
			Model(&tiers).
			On("CONFLICT (tier_order) DO UPDATE").
			Set("name = EXCLUDED.name").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed league tiers: %w", err)
		}

		fmt.Println("League tiers seeded successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Removing league tiers...")

		if _, err := db.NewDelete().Model((*leaguedb.Tier)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
