package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRouter_Healthz(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthChecker
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name:       "all healthy",
			checks:     map[string]HealthChecker{"postgres": healthFunc(func(context.Context) error { return nil })},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"postgres": "ok"},
		},
		{
			name: "one failing",
			checks: map[string]HealthChecker{
				"postgres": healthFunc(func(context.Context) error { return nil }),
				"river":    healthFunc(func(context.Context) error { return errors.New("stopped") }),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"postgres": "ok", "river": "stopped"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(NewHTTPRouter(nil, tt.checks, nil))
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/healthz")
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestHTTPRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "league_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	srv := httptest.NewServer(NewHTTPRouter(reg, nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type fakeTrigger struct {
	jobID int64
	err   error
	calls int
}

func (f *fakeTrigger) TriggerResolution(context.Context) (int64, error) {
	f.calls++
	return f.jobID, f.err
}

func TestHTTPRouter_TriggerResolution(t *testing.T) {
	t.Run("enqueues a tick", func(t *testing.T) {
		trigger := &fakeTrigger{jobID: 42}
		srv := httptest.NewServer(NewHTTPRouter(nil, nil, trigger))
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/admin/resolutions", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		var body map[string]int64
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, int64(42), body["job_id"])
		assert.Equal(t, 1, trigger.calls)
	})

	t.Run("queue failure", func(t *testing.T) {
		trigger := &fakeTrigger{err: errors.New("pool closed")}
		srv := httptest.NewServer(NewHTTPRouter(nil, nil, trigger))
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/admin/resolutions", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("not registered without a queue", func(t *testing.T) {
		srv := httptest.NewServer(NewHTTPRouter(nil, nil, nil))
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/admin/resolutions", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
