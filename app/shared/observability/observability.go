// Package observability builds the logger, tracer, and metric registry shared by
// every module of the service.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	leaguemetrics "github.com/wellplay/wellplay-backend/app/shared/observability/metrics/league"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config controls how observability is initialised.
type Config struct {
	ServiceName    string
	Environment    string
	Version        string
	LogLevel       string
	MetricsAddress string
}

// Provider exposes the process-wide logger and tracer provider.
type Provider struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
}

// Registry holds module-facing instruments.
type Registry struct {
	Tracer        trace.Tracer
	Prometheus    *prometheus.Registry
	LeagueMetrics leaguemetrics.LeagueMetrics
}

// Observability bundles the provider and registry handed to modules.
type Observability struct {
	Provider *Provider
	Registry *Registry
}

// Init configures structured JSON logging, the global tracer, and a Prometheus
// registry with the league collectors registered.
func Init(ctx context.Context, cfg Config) (Observability, error) {
	level := parseLevel(cfg.LogLevel)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("version", cfg.Version),
	)
	slog.SetDefault(logger)

	tp := otel.GetTracerProvider()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	lm, err := leaguemetrics.NewPrometheus(reg)
	if err != nil {
		return Observability{}, fmt.Errorf("failed to register league metrics: %w", err)
	}

	logger.InfoContext(ctx, "Observability initialized",
		slog.String("log_level", level.String()),
		slog.String("metrics_address", cfg.MetricsAddress),
	)

	return Observability{
		Provider: &Provider{Logger: logger, TracerProvider: tp},
		Registry: &Registry{
			Tracer:        tp.Tracer(cfg.ServiceName),
			Prometheus:    reg,
			LeagueMetrics: lm,
		},
	}, nil
}

// NewNoop returns an Observability that discards logs, spans, and metrics.
func NewNoop() Observability {
	tp := noop.NewTracerProvider()
	return Observability{
		Provider: &Provider{
			Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
			TracerProvider: tp,
		},
		Registry: &Registry{
			Tracer:        tp.Tracer("noop"),
			Prometheus:    prometheus.NewRegistry(),
			LeagueMetrics: leaguemetrics.NewNoop(),
		},
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
