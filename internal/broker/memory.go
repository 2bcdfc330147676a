package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"go.uber.org/zap"
)

// Memory is an in-process Channel. A message whose handler fails goes back
// to the tail of its queue, so delivery is at-least-once and unordered
// after a failure, the same contract the Kafka channel gives.
type Memory struct {
	mu        sync.Mutex
	queues    map[Destination]*queue
	down      bool
	duplicate bool

	retryDelay     time.Duration
	handlerTimeout time.Duration
	log            *zap.Logger
}

type queue struct {
	msgs   [][]byte
	notify chan struct{}
}

type MemoryOption func(*Memory)

// WithDuplicates delivers every published message twice.
func WithDuplicates() MemoryOption { return func(m *Memory) { m.duplicate = true } }

func WithRetryDelay(d time.Duration) MemoryOption { return func(m *Memory) { m.retryDelay = d } }

func WithHandlerTimeout(d time.Duration) MemoryOption {
	return func(m *Memory) { m.handlerTimeout = d }
}

func WithLogger(l *zap.Logger) MemoryOption { return func(m *Memory) { m.log = l } }

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		queues:         make(map[Destination]*queue),
		retryDelay:     50 * time.Millisecond,
		handlerTimeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(m)
	}
	m.log = logging.OrNop(m.log)
	return m
}

// SetAvailable simulates losing or regaining the broker connection.
func (m *Memory) SetAvailable(ok bool) {
	m.mu.Lock()
	m.down = !ok
	m.mu.Unlock()
}

func (m *Memory) Publish(ctx context.Context, dest Destination, _, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrBrokerUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return ErrBrokerUnavailable
	}
	q := m.queueLocked(dest)
	q.push(append([]byte(nil), payload...))
	if m.duplicate {
		q.push(append([]byte(nil), payload...))
	}
	return nil
}

// Pending reports how many messages wait in queue.
func (m *Memory) Pending(queue Destination) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queueLocked(queue).msgs)
}

func (m *Memory) Subscribe(ctx context.Context, dest Destination, h Handler) error {
	m.mu.Lock()
	q := m.queueLocked(dest)
	m.mu.Unlock()

	for {
		msg, ok := m.pop(q)
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-q.notify:
			}
			continue
		}
		if err := m.deliver(ctx, dest, h, msg); err != nil {
			m.requeue(q, msg)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(m.retryDelay):
			}
		}
	}
}

// Drain synchronously delivers every message currently queued for dest,
// including any redelivered while draining. It stops at the first handler
// error, leaving the failed message requeued.
func (m *Memory) Drain(ctx context.Context, dest Destination, h Handler) error {
	m.mu.Lock()
	q := m.queueLocked(dest)
	m.mu.Unlock()

	for {
		msg, ok := m.pop(q)
		if !ok {
			return nil
		}
		if err := m.deliver(ctx, dest, h, msg); err != nil {
			m.requeue(q, msg)
			return err
		}
	}
}

func (m *Memory) deliver(ctx context.Context, dest Destination, h Handler, msg []byte) error {
	hctx, cancel := context.WithTimeout(ctx, m.handlerTimeout)
	defer cancel()
	if err := h(hctx, msg); err != nil {
		m.log.Warn("handler failed, message requeued",
			zap.String("queue", string(dest)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (m *Memory) queueLocked(dest Destination) *queue {
	q, ok := m.queues[dest]
	if !ok {
		q = &queue{notify: make(chan struct{}, 1)}
		m.queues[dest] = q
	}
	return q
}

func (m *Memory) pop(q *queue) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(q.msgs) == 0 {
		return nil, false
	}
	msg := q.msgs[0]
	q.msgs = q.msgs[1:]
	return msg, true
}

func (m *Memory) requeue(q *queue, msg []byte) {
	m.mu.Lock()
	q.push(msg)
	m.mu.Unlock()
}

func (q *queue) push(msg []byte) {
	q.msgs = append(q.msgs, msg)
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
