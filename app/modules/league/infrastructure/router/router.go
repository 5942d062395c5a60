package leaguerouter

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	leaguehandlers "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/handlers"
	"github.com/wellplay/wellplay-backend/app/shared/eventbus"
	leagueevents "github.com/wellplay/wellplay-backend/app/shared/events/league"
	"github.com/wellplay/wellplay-backend/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

type LeagueRouter struct {
	logger             *slog.Logger
	Router             *message.Router
	subscriber         eventbus.EventBus
	publisher          eventbus.EventBus
	tracer             trace.Tracer
	metricsBuilder     *metrics.PrometheusMetricsBuilder
	prometheusRegistry *prometheus.Registry
	metricsEnabled     bool
}

// NewLeagueRouter creates a new instance of the router.
func NewLeagueRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *LeagueRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &LeagueRouter{
		logger:             logger,
		Router:             router,
		subscriber:         subscriber,
		publisher:          publisher,
		tracer:             tracer,
		metricsBuilder:     metricsBuilder,
		prometheusRegistry: prometheusRegistry,
		metricsEnabled:     metricsBuilder != nil,
	}
}

// Configure sets up the middlewares and registers the league event handlers.
func (r *LeagueRouter) Configure(routerCtx context.Context, handlers leaguehandlers.Handlers) error {
	if r.metricsEnabled {
		r.logger.Info("Adding Prometheus router metrics middleware for League")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Multiplier:      2,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
		middleware.Recoverer,
	)

	return r.RegisterHandlers(routerCtx, handlers)
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
}

func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "league." + topic
	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(handlerName, deps.logger, deps.tracer, handler),
	)
}

// RegisterHandlers binds the inbound league topics to their handlers.
func (r *LeagueRouter) RegisterHandlers(ctx context.Context, handlers leaguehandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering League Event Handlers")

	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, leagueevents.XPCreditedV1, handlers.HandleXPCredited)
	registerHandler(deps, leagueevents.AdmissionRequestedV1, handlers.HandleAdmissionRequested)
	registerHandler(deps, leagueevents.StandingsRequestedV1, handlers.HandleStandingsRequested)

	return nil
}

// Close stops the router and cleans up resources.
func (r *LeagueRouter) Close() error {
	return r.Router.Close()
}
