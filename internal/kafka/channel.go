package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/broker"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Channel is the Kafka-backed broker.Channel. Each destination maps to one
// topic and every service consumes its queue through one consumer group.
type Channel struct {
	brokers        []string
	group          string
	workers        int
	handlerTimeout time.Duration
	producer       *Producer
	log            *zap.Logger
}

type ChannelConfig struct {
	Brokers        []string
	Group          string
	Workers        int
	HandlerTimeout time.Duration
}

var _ broker.Channel = (*Channel)(nil)

func NewChannel(cfg ChannelConfig, log *zap.Logger) *Channel {
	return &Channel{
		brokers:        cfg.Brokers,
		group:          cfg.Group,
		workers:        cfg.Workers,
		handlerTimeout: cfg.HandlerTimeout,
		producer:       NewProducer(cfg.Brokers),
		log:            logging.OrNop(log),
	}
}

func (c *Channel) Publish(ctx context.Context, dest broker.Destination, key, payload []byte) error {
	err := c.producer.Publish(ctx, dest.Topic(), key, payload,
		kafka.Header{Key: "x-destination", Value: []byte(dest)},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", broker.ErrBrokerUnavailable, err)
	}
	return nil
}

func (c *Channel) Subscribe(ctx context.Context, queue broker.Destination, h broker.Handler) error {
	cons := NewConsumer(ConsumerConfig{
		Brokers:        c.brokers,
		Group:          c.group,
		Topic:          queue.Topic(),
		Workers:        c.workers,
		HandlerTimeout: c.handlerTimeout,
	}, c.log)
	c.log.Info("consumer started",
		zap.String("group", c.group),
		zap.String("topic", queue.Topic()),
		zap.Int("workers", c.workers),
	)
	if err := cons.Start(ctx, func(ctx context.Context, m kafka.Message) error {
		return h(ctx, m.Value)
	}); err != nil {
		return fmt.Errorf("%w: consume %s: %v", broker.ErrBrokerUnavailable, queue.Topic(), err)
	}
	return nil
}

func (c *Channel) Close() error { return c.producer.Close() }
