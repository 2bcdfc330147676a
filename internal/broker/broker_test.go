package broker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/events"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_PublishEncodesEnvelope(t *testing.T) {
	ch := NewMemory()
	pub := NewPublisher(ch, nil)
	ctx := context.Background()

	env := events.Cart("u1", storefront.ProductSnapshot{ID: "p1"}, 2, false)
	require.NoError(t, pub.Publish(ctx, Shopping, env))
	assert.Equal(t, 1, ch.Pending(Shopping))
	assert.Equal(t, 0, ch.Pending(Customer))

	var got []events.Event
	err := ch.Drain(ctx, Shopping, func(_ context.Context, b []byte) error {
		ev, err := events.Decode(b)
		require.NoError(t, err)
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, events.AddToCart{UserID: "u1", Product: storefront.ProductSnapshot{ID: "p1"}, Qty: 2}, got[0])
}

func TestPublisher_BrokerUnavailable(t *testing.T) {
	ch := NewMemory()
	ch.SetAvailable(false)
	pub := NewPublisher(ch, nil)

	err := pub.PublishAll(context.Background(), events.ProfileDeleted("u1"), Customer, Shopping)
	assert.ErrorIs(t, err, ErrBrokerUnavailable)
	assert.Equal(t, 0, ch.Pending(Customer))

	ch.SetAvailable(true)
	require.NoError(t, pub.PublishAll(context.Background(), events.ProfileDeleted("u1"), Customer, Shopping))
	assert.Equal(t, 1, ch.Pending(Customer))
	assert.Equal(t, 1, ch.Pending(Shopping))
}

func TestMemory_PublishOnCancelledContext(t *testing.T) {
	ch := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ch.Publish(ctx, Customer, []byte("u1"), []byte(`{}`))
	assert.ErrorIs(t, err, ErrBrokerUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ch.Pending(Customer))
}

func TestMemory_Duplicates(t *testing.T) {
	ch := NewMemory(WithDuplicates())
	require.NoError(t, ch.Publish(context.Background(), Catalog, nil, []byte("x")))
	assert.Equal(t, 2, ch.Pending(Catalog))
}

func TestMemory_DrainRequeuesOnHandlerError(t *testing.T) {
	ch := NewMemory()
	ctx := context.Background()
	require.NoError(t, ch.Publish(ctx, Customer, nil, []byte("a")))
	require.NoError(t, ch.Publish(ctx, Customer, nil, []byte("b")))

	boom := errors.New("boom")
	err := ch.Drain(ctx, Customer, func(_ context.Context, b []byte) error {
		if string(b) == "a" {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, ch.Pending(Customer))

	var order []string
	require.NoError(t, ch.Drain(ctx, Customer, func(_ context.Context, b []byte) error {
		order = append(order, string(b))
		return nil
	}))
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestMemory_SubscribeRedeliversUntilSuccess(t *testing.T) {
	ch := NewMemory(WithRetryDelay(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})
	go func() {
		_ = ch.Subscribe(ctx, Catalog, func(context.Context, []byte) error {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			close(done)
			return nil
		})
	}()

	require.NoError(t, ch.Publish(ctx, Catalog, nil, []byte("m")))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not redelivered")
	}
	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()
}

func TestMemory_HandlerTimeout(t *testing.T) {
	ch := NewMemory(WithHandlerTimeout(10 * time.Millisecond))
	ctx := context.Background()
	require.NoError(t, ch.Publish(ctx, Customer, nil, []byte("slow")))

	err := ch.Drain(ctx, Customer, func(hctx context.Context, _ []byte) error {
		<-hctx.Done()
		return hctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, ch.Pending(Customer))
}

func TestDestination_Topic(t *testing.T) {
	assert.Equal(t, "storefront.catalog", Catalog.Topic())
}
