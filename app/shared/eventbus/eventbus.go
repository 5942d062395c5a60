// Package eventbus connects watermill publishers and subscribers to NATS.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

// TopicMetadataKey names the message metadata entry that carries the
// destination topic when a handler returns messages for several topics.
const TopicMetadataKey = "topic"

// EventBus publishes and subscribes watermill messages.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config holds the connection settings for the NATS-backed bus.
type Config struct {
	URL         string
	NKeySeed    string
	QueueGroup  string
	Subscribers int
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	inMemory   bool
	logger     *slog.Logger
}

// NewEventBus dials NATS and returns a bus whose Publish routes messages to
// the topic stored in their metadata when called with an empty topic.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	opts, err := ConnectOptions(cfg.NKeySeed)
	if err != nil {
		return nil, err
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: opts,
			Marshaler:   marshaler,
			JetStream:   wmnats.JetStreamConfig{Disabled: true},
		},
		wmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscribers := cfg.Subscribers
	if subscribers <= 0 {
		subscribers = 1
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:              cfg.URL,
			QueueGroupPrefix: cfg.QueueGroup,
			SubscribersCount: subscribers,
			CloseTimeout:     30 * time.Second,
			AckWaitTimeout:   30 * time.Second,
			NatsOptions:      opts,
			Unmarshaler:      marshaler,
			JetStream:        wmnats.JetStreamConfig{Disabled: true},
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.InfoContext(ctx, "Event bus connected", slog.String("nats_url", cfg.URL))

	return &eventBus{publisher: publisher, subscriber: subscriber, logger: logger}, nil
}

// NewInMemory returns a bus backed by watermill's go channel pub/sub.
func NewInMemory(logger *slog.Logger) EventBus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, watermill.NewSlogLogger(logger))
	return &eventBus{publisher: pubsub, subscriber: pubsub, inMemory: true, logger: logger}
}

// ConnectOptions returns the nats.go options shared by every connection the
// service opens. A non-empty seed enables nkey authentication.
func ConnectOptions(nkeySeed string) ([]nc.Option, error) {
	opts := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(time.Second),
		nc.MaxReconnects(-1),
	}
	if nkeySeed == "" {
		return opts, nil
	}

	kp, err := nkeys.FromSeed([]byte(nkeySeed))
	if err != nil {
		return nil, fmt.Errorf("invalid NATS nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
	}
	return append(opts, nc.Nkey(pub, kp.Sign)), nil
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	if topic != "" {
		return eb.publisher.Publish(topic, messages...)
	}
	for _, msg := range messages {
		target := msg.Metadata.Get(TopicMetadataKey)
		if target == "" {
			return fmt.Errorf("message %s has no topic metadata", msg.UUID)
		}
		if err := eb.publisher.Publish(target, msg); err != nil {
			return err
		}
	}
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return eb.subscriber.Subscribe(ctx, topic)
}

func (eb *eventBus) Close() error {
	pubErr := eb.publisher.Close()
	if eb.inMemory {
		return pubErr
	}
	return errors.Join(pubErr, eb.subscriber.Close())
}
