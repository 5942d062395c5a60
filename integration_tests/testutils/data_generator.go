package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/uptrace/bun"

	leagueadapters "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/adapters"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// GenerateUsers creates count users with the given lifetime XP. An empty
// companyID leaves them without a company.
func (g *TestDataGenerator) GenerateUsers(count int, companyID string, lifetimeXP int64) []leagueadapters.User {
	users := make([]leagueadapters.User, count)
	for i := range users {
		u := leagueadapters.User{
			ID:            g.faker.UUID(),
			DisplayName:   g.faker.Name(),
			AvatarRef:     g.faker.URL(),
			LifetimeXP:    lifetimeXP,
			StreakDays:    g.faker.Number(0, 30),
			LocalTimezone: g.faker.RandomString([]string{"UTC", "Europe/Berlin", "America/New_York", "Asia/Tokyo"}),
		}
		if companyID != "" {
			c := companyID
			u.CompanyID = &c
		}
		users[i] = u
	}
	return users
}

// InsertUsers writes users to the users table.
func InsertUsers(ctx context.Context, db bun.IDB, users []leagueadapters.User) error {
	if len(users) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&users).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert users: %w", err)
	}
	return nil
}
