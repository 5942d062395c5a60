package leaguerouter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
	"github.com/wellplay/wellplay-backend/app/modules/league/application/mocks"
	leaguedomain "github.com/wellplay/wellplay-backend/app/modules/league/domain"
	leaguehandlers "github.com/wellplay/wellplay-backend/app/modules/league/infrastructure/handlers"
	"github.com/wellplay/wellplay-backend/app/shared/eventbus"
	leagueevents "github.com/wellplay/wellplay-backend/app/shared/events/league"
	"github.com/wellplay/wellplay-backend/app/shared/utils/results"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"
)

func TestLeagueRouter_XPCreditedPublishesAdmission(t *testing.T) {
	t.Setenv(TestEnvironmentFlag, TestEnvironmentValue)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	bus := eventbus.NewInMemory(logger)

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().IngestXP(gomock.Any(), "u1", int64(70), gomock.Any()).Return(
		results.SuccessResult[leagueservice.IngestOutcome, error](leagueservice.IngestOutcome{
			Placements: []leagueservice.Placement{
				{UserID: "u1", Scope: leaguedomain.GlobalScope(), TierOrder: 4, CohortID: 11, NewCohort: true},
			},
		}), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admitted, err := bus.Subscribe(ctx, leagueevents.MemberAdmittedV1)
	require.NoError(t, err)

	wm, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	r := NewLeagueRouter(logger, wm, bus, bus, tracer, nil)
	require.NoError(t, r.Configure(ctx, leaguehandlers.NewLeagueHandlers(svc, logger, tracer)))

	go func() { _ = wm.Run(ctx) }()
	defer r.Close()
	<-wm.Running()

	body, err := json.Marshal(leagueevents.XPCreditedPayloadV1{UserID: "u1", Delta: 70, EventTime: time.Now()})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(leagueevents.XPCreditedV1, message.NewMessage(watermill.NewUUID(), body)))

	select {
	case msg := <-admitted:
		msg.Ack()
		var got leagueevents.MemberAdmittedPayloadV1
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, "u1", got.UserID)
		require.Len(t, got.Placements, 1)
		assert.Equal(t, int64(11), got.Placements[0].CohortID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for member admitted event")
	}
}

func TestNewLeagueRouter_MetricsDisabledInTest(t *testing.T) {
	t.Setenv(TestEnvironmentFlag, TestEnvironmentValue)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewLeagueRouter(logger, nil, nil, nil, noop.NewTracerProvider().Tracer("test"), nil)
	assert.False(t, r.metricsEnabled)
	assert.Nil(t, r.metricsBuilder)
}
