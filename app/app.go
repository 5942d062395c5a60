package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/wellplay/wellplay-backend/app/modules/league"
	"github.com/wellplay/wellplay-backend/app/shared/eventbus"
	"github.com/wellplay/wellplay-backend/app/shared/observability"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
	"github.com/wellplay/wellplay-backend/config"
	"github.com/wellplay/wellplay-backend/db/bundb"
)

// App is the composition root: database, event bus, watermill router, the
// league module, and the metrics/health HTTP server.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bundb.DBService
	EventBus      eventbus.EventBus
	Router        *message.Router
	LeagueModule  *league.Module

	httpServer *http.Server
	wg         sync.WaitGroup
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Provider.Logger

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	eventBus, err := eventbus.NewEventBus(ctx, eventbus.Config{
		URL:        cfg.NATS.URL,
		NKeySeed:   cfg.NATS.NKeySeed,
		QueueGroup: cfg.NATS.QueueGroup,
	}, logger)
	if err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = eventBus.Close()
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	leagueModule, err := league.NewLeagueModule(ctx, cfg, obs, dbService.GetDB(), eventBus, router)
	if err != nil {
		_ = eventBus.Close()
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to initialize league module: %w", err)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            dbService,
		EventBus:      eventBus,
		Router:        router,
		LeagueModule:  leagueModule,
	}
	app.httpServer = &http.Server{
		Addr:    cfg.Observability.MetricsAddress,
		Handler: app.HTTPRouter(),
	}
	return app, nil
}

// Run starts every component and blocks until ctx is canceled or the
// watermill router stops.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Provider.Logger

	app.wg.Add(1)
	go app.LeagueModule.Run(ctx, &app.wg)

	if app.httpServer.Addr != "" {
		go func() {
			logger.Info("Starting HTTP server", attr.String("address", app.httpServer.Addr))
			if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server failed", attr.Error(err))
			}
		}()
	}

	if err := app.Router.Run(ctx); err != nil {
		return fmt.Errorf("watermill router stopped: %w", err)
	}
	return nil
}
