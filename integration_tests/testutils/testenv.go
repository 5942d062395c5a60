package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wellplay/wellplay-backend/app/shared/eventbus"
	"github.com/wellplay/wellplay-backend/config"
	"github.com/wellplay/wellplay-backend/db/bundb"
	"github.com/wellplay/wellplay-backend/integration_tests/containers"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	DBService     *bundb.DBService
	EventBus      eventbus.EventBus
	NatsConn      *nats.Conn
	Config        *config.Config
}

var (
	sharedEnv     *TestEnvironment
	sharedEnvErr  error
	sharedEnvOnce sync.Once
)

// GetOrCreateTestEnv returns the package-wide environment, starting the
// containers on first use. Integration tests are skipped under -short.
func GetOrCreateTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	sharedEnvOnce.Do(func() {
		sharedEnv, sharedEnvErr = NewTestEnvironment(context.Background())
	})
	if sharedEnvErr != nil {
		t.Fatalf("Failed to set up test environment: %v", sharedEnvErr)
	}

	if err := CleanupDatabase(sharedEnv.Ctx, sharedEnv.DB); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}
	return sharedEnv
}

// ShutdownSharedEnv tears down the environment created by GetOrCreateTestEnv.
func ShutdownSharedEnv() {
	if sharedEnv != nil {
		sharedEnv.Cleanup()
	}
}

// NewTestEnvironment creates a new test environment with Postgres and NATS containers
func NewTestEnvironment(parent context.Context) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(parent)
	env := &TestEnvironment{Ctx: ctx, CancelContext: cancel}

	if err := env.setupContainers(ctx); err != nil {
		cancel()
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setupContainers(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		cleanupContainers(ctx, pgContainer, nil)
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to open sql DB connection: %w", err)
	}

	db := bundb.BunDB(sqlDB)
	env.DB = db

	if err := runMigrations(ctx, db, pgConnStr); err != nil {
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	env.DBService = bundb.NewTestDBService(db)

	natsConn, err := nats.Connect(natsURL, nats.Timeout(10*time.Second))
	if err != nil {
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	env.NatsConn = natsConn

	cfg := &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL, QueueGroup: "league-test"},
	}
	env.Config = cfg

	eventBus, err := eventbus.NewEventBus(ctx, eventbus.Config{
		URL:        natsURL,
		QueueGroup: cfg.NATS.QueueGroup,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		natsConn.Close()
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to create EventBus: %w", err)
	}
	env.EventBus = eventBus

	return nil
}

// Cleanup tears down all resources created for testing
func (env *TestEnvironment) Cleanup() {
	log.Println("Cleaning up test environment...")
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.NatsConn != nil {
		env.NatsConn.Close()
	}
	if env.DB != nil {
		env.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cleanupContainers(ctx, env.PgContainer, env.NatsContainer)
	log.Println("Cleanup complete.")
}

func cleanupContainers(ctx context.Context, pg *postgres.PostgresContainer, nats testcontainers.Container) {
	if pg != nil {
		if err := pg.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
	if nats != nil {
		if err := nats.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
}
