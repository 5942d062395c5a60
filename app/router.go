package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ResolutionTrigger enqueues an out-of-schedule resolution tick.
type ResolutionTrigger interface {
	TriggerResolution(ctx context.Context) (int64, error)
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// HTTPRouter serves /metrics, /healthz and the resolution trigger.
func (app *App) HTTPRouter() http.Handler {
	checks := map[string]HealthChecker{
		"postgres": healthFunc(func(ctx context.Context) error { return app.DB.GetDB().PingContext(ctx) }),
	}
	var trigger ResolutionTrigger
	if app.LeagueModule != nil && app.LeagueModule.Queue != nil {
		checks["river"] = app.LeagueModule.Queue
		trigger = app.LeagueModule.Queue
	}
	return NewHTTPRouter(app.Observability.Registry.Prometheus, checks, trigger)
}

// NewHTTPRouter builds the operational HTTP surface. A nil trigger leaves
// POST /admin/resolutions unregistered.
func NewHTTPRouter(reg *prometheus.Registry, checks map[string]HealthChecker, trigger ResolutionTrigger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := make(map[string]string, len(checks))
		for name, c := range checks {
			if err := c.HealthCheck(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}

		writeJSON(w, status, body)
	})

	if trigger != nil {
		r.Post("/admin/resolutions", func(w http.ResponseWriter, req *http.Request) {
			id, err := trigger.TriggerResolution(req.Context())
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusAccepted, map[string]int64{"job_id": id})
		})
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
