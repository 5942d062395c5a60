package leaguemetrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordXPCredited(ctx, "global", 40)
	m.RecordXPCredited(ctx, "global", 2)
	m.RecordAdmission(ctx, "company_7", 1, true)
	m.RecordBroadcastDropped(ctx, "cohort")

	assert.Equal(t, float64(42), testutil.ToFloat64(m.xpCredited.WithLabelValues("global")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.admissions.WithLabelValues("company_7", "1", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.broadcastDropped.WithLabelValues("cohort")))
}

func TestNewPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}
