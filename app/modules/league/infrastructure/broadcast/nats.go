package leaguebroadcast

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	leagueservice "github.com/wellplay/wellplay-backend/app/modules/league/application"
	"github.com/wellplay/wellplay-backend/app/shared/eventbus"
)

// NATSTransport publishes client pushes on core NATS. A channel key such as
// "cohort:global:12" is published on "<prefix>.cohort:global:12".
type NATSTransport struct {
	conn   *nats.Conn
	prefix string
	owned  bool
}

var _ leagueservice.BroadcastTransport = (*NATSTransport)(nil)

// DialNATS opens a dedicated connection for client pushes.
func DialNATS(url, nkeySeed, prefix string) (*NATSTransport, error) {
	opts, err := eventbus.ConnectOptions(nkeySeed)
	if err != nil {
		return nil, err
	}
	opts = append(opts, nats.Name("league-broadcast"))
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	t := NewNATSTransport(conn, prefix)
	t.owned = true
	return t, nil
}

// NewNATSTransport wraps an existing connection.
func NewNATSTransport(conn *nats.Conn, prefix string) *NATSTransport {
	return &NATSTransport{conn: conn, prefix: strings.TrimSuffix(prefix, ".")}
}

// Subject returns the NATS subject for a channel key.
func (t *NATSTransport) Subject(channelKey string) string {
	if t.prefix == "" {
		return channelKey
	}
	return t.prefix + "." + channelKey
}

func (t *NATSTransport) Publish(ctx context.Context, channelKey string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.conn.Publish(t.Subject(channelKey), payload); err != nil {
		return fmt.Errorf("nats publish %s: %w", channelKey, err)
	}
	return nil
}

// Close drains the connection if this transport opened it.
func (t *NATSTransport) Close() error {
	if !t.owned {
		return nil
	}
	return t.conn.Drain()
}
