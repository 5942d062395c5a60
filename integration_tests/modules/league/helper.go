package leagueintegration_tests

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leagueadapters "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/adapters"
	leaguebroadcast "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/broadcast"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
	leaguemetrics "github.com/wellplay/wellplay-backend/app/shared/observability/metrics/league"
	"github.com/wellplay/wellplay-backend/integration_tests/testutils"
	"go.opentelemetry.io/otel/trace/noop"
)

const broadcastPrefix = "league.test"

// testClock is a settable clock shared by the service under test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// LeagueTestDeps holds shared dependencies for league integration tests.
type LeagueTestDeps struct {
	*testutils.TestEnvironment
	Service   *leagueservice.LeagueService
	Repo      leaguedb.Repository
	Wallet    *leagueadapters.GemWallet
	Notes     *leagueadapters.NotificationStore
	Transport *leaguebroadcast.NATSTransport
	Clock     *testClock
	Data      *testutils.TestDataGenerator
}

// SetupLeagueTest builds a league service over the shared containers.
func SetupLeagueTest(t *testing.T) LeagueTestDeps {
	t.Helper()
	env := testutils.GetOrCreateTestEnv(t)

	repo := leaguedb.NewRepository(env.DB)
	wallet := leagueadapters.NewGemWallet(env.DB)
	notes := leagueadapters.NewNotificationStore(env.DB)
	transport := leaguebroadcast.NewNATSTransport(env.NatsConn, broadcastPrefix)
	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}

	svc := leagueservice.NewLeagueService(
		repo,
		leaguedomain.DefaultRegistry(),
		leagueservice.Collaborators{
			Users:         leagueadapters.NewUserDirectory(env.DB),
			Wallet:        wallet,
			Notifications: notes,
			Transport:     transport,
			Streaks:       leagueadapters.NewStreakUpdater(env.DB),
			Clock:         clock,
		},
		leagueservice.DefaultConfig(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		leaguemetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		env.DB,
	)

	return LeagueTestDeps{
		TestEnvironment: env,
		Service:         svc,
		Repo:            repo,
		Wallet:          wallet,
		Notes:           notes,
		Transport:       transport,
		Clock:           clock,
		Data:            testutils.NewTestDataGenerator(42),
	}
}
