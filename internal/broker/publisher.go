package broker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-sync/internal/events"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"go.uber.org/zap"
)

type Publisher struct {
	ch  Channel
	log *zap.Logger
}

func NewPublisher(ch Channel, log *zap.Logger) *Publisher {
	return &Publisher{ch: ch, log: logging.OrNop(log)}
}

// Publish encodes env and sends it to dest, keyed by the customer id so one
// customer's events share a partition where the transport supports it.
func (p *Publisher) Publish(ctx context.Context, dest Destination, env events.Envelope) error {
	b, err := events.Encode(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", env.Event, err)
	}
	if err := p.ch.Publish(ctx, dest, []byte(env.Data.UserID), b); err != nil {
		return fmt.Errorf("publish %s to %s: %w", env.Event, dest, err)
	}
	p.log.Debug("event published",
		zap.String("event", string(env.Event)),
		zap.String("destination", string(dest)),
		zap.String("user_id", env.Data.UserID),
	)
	return nil
}

// PublishAll sends env to every destination, attempting all of them even
// when one fails.
func (p *Publisher) PublishAll(ctx context.Context, env events.Envelope, dests ...Destination) error {
	var errs []error
	for _, d := range dests {
		if err := p.Publish(ctx, d, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
