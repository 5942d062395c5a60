package league

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leagueadapters "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/adapters"
	leaguebroadcast "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/broadcast"
	leaguehandlers "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/handlers"
	leaguequeue "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/queue"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
	leaguerouter "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/router"
	"github.com/wellplay/wellplay-backend/app/shared/eventbus"
	"github.com/wellplay/wellplay-backend/app/shared/observability"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
	"github.com/wellplay/wellplay-backend/config"
)

// Module represents the league module.
type Module struct {
	LeagueService leagueservice.Service
	LeagueRouter  *leaguerouter.LeagueRouter
	Broadcaster   *leaguebroadcast.Broadcaster
	Queue         *leaguequeue.Service

	transport     *leaguebroadcast.NATSTransport
	config        *config.Config
	observability observability.Observability
	cancelFunc    context.CancelFunc
}

// NewLeagueModule creates a new instance of the League module.
func NewLeagueModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Provider.Logger
	metrics := obs.Registry.LeagueMetrics
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "league.NewLeagueModule called")

	repo := leaguedb.NewRepository(db)

	registry, err := LoadRegistry(ctx, repo)
	if err != nil {
		return nil, err
	}

	transport, err := leaguebroadcast.DialNATS(cfg.NATS.URL, cfg.NATS.NKeySeed, cfg.League.BroadcastSubject)
	if err != nil {
		return nil, fmt.Errorf("failed to connect broadcast transport: %w", err)
	}

	service := leagueservice.NewLeagueService(
		repo,
		registry,
		leagueservice.Collaborators{
			Users:         leagueadapters.NewUserDirectory(db),
			Wallet:        leagueadapters.NewGemWallet(db),
			Notifications: leagueadapters.NewNotificationStore(db),
			Transport:     transport,
			Streaks:       leagueadapters.NewStreakUpdater(db),
		},
		ServiceConfig(cfg.League),
		logger,
		metrics,
		tracer,
		db,
	)

	broadcaster := leaguebroadcast.New(service, transport,
		leaguebroadcast.WithCoalesce(cfg.League.BroadcastCoalesce),
		leaguebroadcast.WithQueueSize(cfg.League.BroadcastQueueSize),
		leaguebroadcast.WithRate(cfg.League.BroadcastRate),
		leaguebroadcast.WithLogger(logger),
		leaguebroadcast.WithMetrics(metrics),
	)
	service.SetLiveBroadcaster(broadcaster)

	leagueRouter := leaguerouter.NewLeagueRouter(logger, router, eventBus, eventBus, tracer, obs.Registry.Prometheus)
	if err := leagueRouter.Configure(ctx, leaguehandlers.NewLeagueHandlers(service, logger, tracer)); err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to configure league router: %w", err)
	}

	queue, err := leaguequeue.NewService(ctx, leaguequeue.Config{
		DSN:        cfg.Postgres.DSN,
		Interval:   cfg.League.ResolutionInterval,
		MaxWorkers: 1,
	}, service, logger, metrics)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create league queue: %w", err)
	}

	return &Module{
		LeagueService: service,
		LeagueRouter:  leagueRouter,
		Broadcaster:   broadcaster,
		Queue:         queue,
		transport:     transport,
		config:        cfg,
		observability: obs,
	}, nil
}

// ServiceConfig maps the league section of the app config onto the engine.
func ServiceConfig(c config.LeagueConfig) leagueservice.Config {
	policy := leaguedomain.DefaultPlacementPolicy()
	policy.DefaultCapacity = c.DefaultCapacity
	policy.DemotionCapacity = c.DemotionCapacity
	policy.Window = c.Window

	return leagueservice.Config{
		AdmissionThreshold: c.AdmissionThreshold,
		Policy:             policy,
		ClaimLease:         c.ClaimLease,
		ResolutionTimeout:  c.ResolutionTimeout,
		ResolutionWorkers:  c.ResolutionWorkers,
		ExpiredBatchSize:   c.ExpiredBatchSize,
	}
}

// LoadRegistry builds the tier registry from the seeded tiers table, falling
// back to the built-in ladder when the table is empty.
func LoadRegistry(ctx context.Context, repo leaguedb.Repository) (*leaguedomain.Registry, error) {
	rows, err := repo.ListTiers(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load league tiers: %w", err)
	}
	if len(rows) == 0 {
		return leaguedomain.DefaultRegistry(), nil
	}
	tiers := make([]leaguedomain.Tier, len(rows))
	for i, r := range rows {
		tiers[i] = leaguedomain.Tier{Order: r.Order, Name: r.Name}
	}
	return leaguedomain.NewRegistry(tiers)
}

// Run starts the scheduler and the live broadcaster and blocks until ctx is
// canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting league module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.Queue.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to start league queue", attr.Error(err))
		return
	}

	if err := m.Broadcaster.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "League broadcaster stopped", attr.Error(err))
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "League module goroutine stopped")
}

// Close stops the league module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping league module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.config.League.ResolutionTimeout)
	defer cancel()

	var errs []error
	if m.Queue != nil {
		errs = append(errs, m.Queue.Stop(ctx))
	}
	if m.transport != nil {
		errs = append(errs, m.transport.Close())
	}

	logger.Info("League module stopped")
	return errors.Join(errs...)
}
