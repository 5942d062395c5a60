package leagueservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguedb "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/repositories"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
	leaguemetrics "github.com/wellplay/wellplay-backend/app/shared/observability/metrics/league"
	"github.com/wellplay/wellplay-backend/app/shared/utils/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "LeagueService"

// Collaborators groups the outbound ports the engine talks to.
type Collaborators struct {
	Users         UserDirectory
	Wallet        GemWallet
	Notifications NotificationStore
	Transport     BroadcastTransport
	Streaks       StreakUpdater
	Clock         Clock
}

// LeagueService implements the Service interface.
type LeagueService struct {
	repo     leaguedb.Repository
	registry *leaguedomain.Registry
	cfg      Config

	users         UserDirectory
	wallet        GemWallet
	notifications NotificationStore
	transport     BroadcastTransport
	streaks       StreakUpdater
	clock         Clock
	live          LiveBroadcaster

	logger  *slog.Logger
	metrics leaguemetrics.LeagueMetrics
	tracer  trace.Tracer
	db      *bun.DB
}

// NewLeagueService creates a new LeagueService.
func NewLeagueService(
	repo leaguedb.Repository,
	registry *leaguedomain.Registry,
	collab Collaborators,
	cfg Config,
	logger *slog.Logger,
	metrics leaguemetrics.LeagueMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *LeagueService {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = leaguedomain.DefaultRegistry()
	}
	if collab.Clock == nil {
		collab.Clock = systemClock{}
	}
	if cfg.ResolutionWorkers < 1 {
		cfg.ResolutionWorkers = 1
	}
	return &LeagueService{
		repo:          repo,
		registry:      registry,
		cfg:           cfg,
		users:         collab.Users,
		wallet:        collab.Wallet,
		notifications: collab.Notifications,
		transport:     collab.Transport,
		streaks:       collab.Streaks,
		clock:         collab.Clock,
		live:          noopBroadcaster{},
		logger:        logger,
		metrics:       metrics,
		tracer:        tracer,
		db:            db,
	}
}

// SetLiveBroadcaster attaches the live standings broadcaster. The
// broadcaster reads standings back from the service, so it is wired after
// construction.
func (s *LeagueService) SetLiveBroadcaster(b LiveBroadcaster) {
	if b == nil {
		b = noopBroadcaster{}
	}
	s.live = b
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type noopBroadcaster struct{}

func (noopBroadcaster) Enqueue(int64, string) {}

func (s *LeagueService) now() time.Time {
	return s.clock.Now().UTC()
}

// ladderFor returns the active tiers of scope. Global scope always uses the
// full registry.
func (s *LeagueService) ladderFor(ctx context.Context, db bun.IDB, scope leaguedomain.Scope) (leaguedomain.Ladder, error) {
	if scope.IsGlobal() {
		return s.registry.Ladder(nil), nil
	}
	orders, err := s.repo.CompanyTiers(ctx, db, scope.CompanyID)
	if err != nil {
		return leaguedomain.Ladder{}, fmt.Errorf("failed to load company tiers: %w", err)
	}
	return s.registry.Ladder(orders), nil
}

func (s *LeagueService) tier(order int) leaguedomain.Tier {
	if t, ok := s.registry.Get(order); ok {
		return t
	}
	return leaguedomain.Tier{Order: order, Name: fmt.Sprintf("Tier %d", order)}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LeagueService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {

	// Start span
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	// Record attempt
	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	// Track duration
	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.DebugContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	// Execute operation
	result, err = op(ctx)

	// Handle Infrastructure Error
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	// Handle Domain Failure
	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	// Handle Success
	if result.IsSuccess() {
		s.logger.DebugContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *LeagueService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {

	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
