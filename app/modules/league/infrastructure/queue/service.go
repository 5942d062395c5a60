package leaguequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/wellplay/wellplay-backend/app/shared/observability/attr"
	leaguemetrics "github.com/wellplay/wellplay-backend/app/shared/observability/metrics/league"
)

const defaultInterval = time.Minute

// Config tunes the resolution scheduler.
type Config struct {
	DSN        string
	Interval   time.Duration
	MaxWorkers int
}

// Service runs the periodic resolution job on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics leaguemetrics.LeagueMetrics
}

// NewService creates the River client with the resolution tick registered
// as a periodic job. Only the elected River leader enqueues ticks, so
// replicas do not double-schedule.
func NewService(ctx context.Context, cfg Config, resolver Resolver, logger *slog.Logger, metrics leaguemetrics.LeagueMetrics) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_league_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing league queue service")

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), riverConfig(cfg, resolver, ctxLogger))
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("League queue service initialized")
	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: metrics}, nil
}

func riverConfig(cfg Config, resolver Resolver, logger *slog.Logger) *river.Config {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	maxWorkers := cfg.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewResolveExpiredWorker(resolver, logger))

	return &river.Config{
		Logger: logger,
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(interval),
				func() (river.JobArgs, *river.InsertOpts) {
					return ResolveExpiredJob{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	}
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting league queue service")
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	return nil
}

// Stop waits for running jobs, then closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping league queue service")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	return nil
}

// TriggerResolution enqueues an immediate tick.
func (s *Service) TriggerResolution(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	res, err := s.client.Insert(ctx, ResolveExpiredJob{RequestedAt: &now}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue resolution tick: %w", err)
	}
	return res.Job.ID, nil
}

// HealthCheck verifies the queue's database is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
