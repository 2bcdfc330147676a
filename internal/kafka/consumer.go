package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler returns nil only when the message was processed and its offset may
// be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type ConsumerConfig struct {
	Brokers        []string
	Group          string
	Topic          string
	Workers        int
	HandlerTimeout time.Duration
	MinBackoff     time.Duration
	MaxBackoff     time.Duration
}

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r   messageReader
	cfg ConsumerConfig
	log *zap.Logger
}

func NewConsumer(cfg ConsumerConfig, log *zap.Logger) *Consumer {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 10 * time.Second
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = 30 * time.Second
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.Group,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return &Consumer{r: r, cfg: cfg, log: logging.OrNop(log).With(zap.String("topic", cfg.Topic))}
}

// Start fetches messages until ctx is cancelled. A message is committed only
// after h succeeds; on failure it is handed to h again with backoff, so h
// must be idempotent. Each partition is pinned to one worker, which handles
// its messages one at a time, so offsets are committed in order and a
// message still being retried is never committed past.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make([]chan kafka.Message, c.cfg.Workers)
	var wg sync.WaitGroup
	for i := range jobs {
		jobs[i] = make(chan kafka.Message, 1)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				c.process(ctx, h, m)
			}
		}(jobs[i])
	}
	defer wg.Wait()
	defer func() {
		for _, in := range jobs {
			close(in)
		}
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case jobs[workerFor(m.Partition, len(jobs))] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func workerFor(partition, workers int) int {
	if partition < 0 {
		partition = -partition
	}
	return partition % workers
}

func (c *Consumer) process(ctx context.Context, h Handler, m kafka.Message) {
	for attempt := 1; ; attempt++ {
		hctx, cancel := context.WithTimeout(ctx, c.cfg.HandlerTimeout)
		err := h(hctx, m)
		cancel()
		if err == nil {
			if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
				c.log.Error("commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
			}
			return
		}

		wait := c.backoff(attempt)
		c.log.Warn("handler failed, redelivering",
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (c *Consumer) backoff(attempt int) time.Duration {
	d := c.cfg.MinBackoff
	for i := 1; i < attempt && d < c.cfg.MaxBackoff; i++ {
		d *= 2
	}
	if d > c.cfg.MaxBackoff {
		d = c.cfg.MaxBackoff
	}
	return d
}
