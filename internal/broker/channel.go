package broker

import (
	"context"
	"errors"
)

var ErrBrokerUnavailable = errors.New("broker unavailable")

// Destination names a service's inbound queue.
type Destination string

const (
	Customer Destination = "customer"
	Shopping Destination = "shopping"
	Catalog  Destination = "catalog"
)

func (d Destination) Topic() string { return "storefront." + string(d) }

// Handler must return nil only when the message was processed and may be
// acknowledged. A non-nil error leaves it unacknowledged for re-delivery.
type Handler func(ctx context.Context, payload []byte) error

// Channel is a publish/subscribe transport with at-least-once delivery and
// no ordering or deduplication guarantees.
type Channel interface {
	// Publish fails with ErrBrokerUnavailable when the transport cannot take
	// the message.
	Publish(ctx context.Context, dest Destination, key, payload []byte) error
	// Subscribe blocks, feeding messages from queue to h until ctx is done.
	Subscribe(ctx context.Context, queue Destination, h Handler) error
}
