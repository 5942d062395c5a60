package leagueservice

import (
	"io"
	"log/slog"
	"testing"
	"time"

	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguemetrics "github.com/wellplay/wellplay-backend/app/shared/observability/metrics/league"
	"go.opentelemetry.io/otel/trace/noop"
)

var t0 = time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc           *LeagueService
	repo          *FakeLeagueRepo
	users         *FakeUserDirectory
	wallet        *FakeGemWallet
	notifications *FakeNotificationStore
	transport     *FakeTransport
	streaks       *FakeStreaks
	live          *FakeLiveBroadcaster
	clock         *fixedClock
}

func newHarness(t *testing.T, profiles ...leaguedomain.UserProfile) *harness {
	t.Helper()
	h := &harness{
		repo:          NewFakeLeagueRepo(),
		users:         NewFakeUserDirectory(profiles...),
		wallet:        &FakeGemWallet{},
		notifications: &FakeNotificationStore{},
		transport:     &FakeTransport{},
		streaks:       &FakeStreaks{Days: 1},
		live:          &FakeLiveBroadcaster{},
		clock:         &fixedClock{t: t0},
	}
	h.svc = NewLeagueService(
		h.repo,
		leaguedomain.DefaultRegistry(),
		Collaborators{
			Users:         h.users,
			Wallet:        h.wallet,
			Notifications: h.notifications,
			Transport:     h.transport,
			Streaks:       h.streaks,
			Clock:         h.clock,
		},
		DefaultConfig(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		leaguemetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
	)
	h.svc.SetLiveBroadcaster(h.live)
	return h
}

func profile(id string, lifetimeXP int64) leaguedomain.UserProfile {
	return leaguedomain.UserProfile{UserID: id, DisplayName: "User " + id, LifetimeXP: lifetimeXP}
}

func companyProfile(id, company string, lifetimeXP int64) leaguedomain.UserProfile {
	p := profile(id, lifetimeXP)
	p.CompanyID = company
	return p
}
