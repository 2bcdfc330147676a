package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-sync/internal/events"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, ev events.Event) error

// Dispatcher routes decoded events to the handler registered for their
// kind. It keeps no state besides the handler table, so handlers must not
// rely on the order in which events for one customer arrive.
type Dispatcher struct {
	handlers map[events.Kind]HandlerFunc
	log      *zap.Logger
}

func New(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[events.Kind]HandlerFunc),
		log:      logging.OrNop(log),
	}
}

// On registers fn for the event variant T, replacing any earlier handler.
func On[T events.Event](d *Dispatcher, fn func(ctx context.Context, ev T) error) {
	var zero T
	d.handlers[zero.Kind()] = func(ctx context.Context, ev events.Event) error {
		return fn(ctx, ev.(T))
	}
}

// Handles reports whether a handler is registered for kind.
func (d *Dispatcher) Handles(kind events.Kind) bool {
	_, ok := d.handlers[kind]
	return ok
}

// Handle is a broker.Handler. Malformed payloads are logged and dropped
// (nil) so they are acknowledged instead of redelivered forever; handler
// errors are returned so the message stays unacknowledged.
func (d *Dispatcher) Handle(ctx context.Context, payload []byte) error {
	ev, err := events.Decode(payload)
	if err != nil {
		if errors.Is(err, events.ErrMalformedPayload) {
			d.log.Warn("dropping malformed message",
				zap.Error(err),
				zap.ByteString("payload", clip(payload, 512)),
			)
			return nil
		}
		return err
	}

	if _, ok := ev.(events.Unknown); ok {
		d.log.Debug("ignoring unknown event", zap.String("event", string(ev.Kind())))
		return nil
	}
	h, ok := d.handlers[ev.Kind()]
	if !ok {
		d.log.Debug("no handler for event", zap.String("event", string(ev.Kind())))
		return nil
	}
	if err := h(ctx, ev); err != nil {
		return fmt.Errorf("handle %s for %s: %w", ev.Kind(), ev.Customer(), err)
	}
	return nil
}

func clip(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
