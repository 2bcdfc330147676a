package customer

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/broker"
	"github.com/ariefcatur/go-storefront-sync/internal/cart"
	"github.com/ariefcatur/go-storefront-sync/internal/dispatch"
	"github.com/ariefcatur/go-storefront-sync/internal/events"
	"github.com/ariefcatur/go-storefront-sync/internal/orders"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/ariefcatur/go-storefront-sync/internal/wishlist"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mango = storefront.ProductSnapshot{ID: "p1", Name: "Mango", Price: "10"}

type fixture struct {
	svc *Service
	ch  *broker.Memory
	d   *dispatch.Dispatcher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ch := broker.NewMemory()
	svc := New(
		wishlist.NewMutator(wishlist.NewMemoryStore(), nil),
		cart.NewMutator(cart.NewMemoryStore(), nil),
		orders.NewMemoryStore(),
		broker.NewPublisher(ch, nil),
		nil,
	)
	d := dispatch.New(nil)
	svc.Register(d)
	return fixture{svc: svc, ch: ch, d: d}
}

func (f fixture) deliver(t *testing.T, env events.Envelope) {
	t.Helper()
	raw, err := events.Encode(env)
	require.NoError(t, err)
	require.NoError(t, f.d.Handle(context.Background(), raw))
}

func TestWishlistEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.deliver(t, events.Wishlist("u1", mango, false))
	wl, err := f.svc.Wishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []storefront.ProductSnapshot{mango}, wl)

	f.deliver(t, events.Wishlist("u1", mango, true))
	f.deliver(t, events.Wishlist("u1", mango, true))
	wl, _ = f.svc.Wishlist(ctx, "u1")
	assert.Empty(t, wl)
}

func TestCartMirrorAndOrderHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.deliver(t, events.Cart("u1", mango, 2, false))
	f.deliver(t, events.Cart("u1", mango, 2, false))
	c, err := f.svc.Cart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Unit)

	order := storefront.Order{
		OrderID:    "o1",
		CustomerID: "u1",
		Amount:     decimal.NewFromInt(20),
		Status:     storefront.StatusReceived,
		Items:      c.Items,
		CreatedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	f.deliver(t, events.OrderCreated("u1", order))
	f.deliver(t, events.OrderCreated("u1", order))

	history, err := f.svc.Orders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "o1", history[0].OrderID)
	assert.True(t, history[0].Amount.Equal(decimal.NewFromInt(20)))

	c, _ = f.svc.Cart(ctx, "u1")
	assert.Empty(t, c.Items)
}

func TestCreateOrderReplayKeepsNewerCartLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kiwi := storefront.ProductSnapshot{ID: "p2", Name: "Kiwi", Price: "5"}

	f.deliver(t, events.Cart("u1", mango, 2, false))
	order := storefront.Order{
		OrderID: "o1",
		Items:   []storefront.CartLineItem{{Product: mango, Unit: 2}},
	}
	f.deliver(t, events.OrderCreated("u1", order))
	c, _ := f.svc.Cart(ctx, "u1")
	require.Empty(t, c.Items)

	f.deliver(t, events.Cart("u1", kiwi, 1, false))
	f.deliver(t, events.OrderCreated("u1", order))

	c, err := f.svc.Cart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].Product.ID)

	history, _ := f.svc.Orders(ctx, "u1")
	require.Len(t, history, 1)
	assert.Equal(t, "u1", history[0].CustomerID)
}

func TestCreateOrderKeepsLinesAddedBeforeItArrives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kiwi := storefront.ProductSnapshot{ID: "p2", Name: "Kiwi", Price: "5"}

	f.deliver(t, events.Cart("u1", mango, 2, false))
	f.deliver(t, events.Cart("u1", kiwi, 1, false))
	f.deliver(t, events.OrderCreated("u1", storefront.Order{
		OrderID: "o1",
		Items:   []storefront.CartLineItem{{Product: mango, Unit: 2}},
	}))

	c, err := f.svc.Cart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].Product.ID)
}

func TestDeleteProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.deliver(t, events.Wishlist("u1", mango, false))
	f.deliver(t, events.Cart("u1", mango, 1, false))
	f.deliver(t, events.OrderCreated("u1", storefront.Order{OrderID: "o1", CustomerID: "u1"}))
	f.deliver(t, events.Wishlist("u2", mango, false))

	require.NoError(t, f.svc.DeleteProfile(ctx, "u1"))

	wl, _ := f.svc.Wishlist(ctx, "u1")
	assert.Empty(t, wl)
	c, _ := f.svc.Cart(ctx, "u1")
	assert.Empty(t, c.Items)
	history, _ := f.svc.Orders(ctx, "u1")
	assert.Empty(t, history)

	wl, _ = f.svc.Wishlist(ctx, "u2")
	assert.Len(t, wl, 1)

	assert.Equal(t, 1, f.ch.Pending(broker.Shopping))
	require.NoError(t, f.ch.Drain(ctx, broker.Shopping, func(_ context.Context, b []byte) error {
		ev, err := events.Decode(b)
		require.NoError(t, err)
		assert.Equal(t, events.DeleteProfile{UserID: "u1"}, ev)
		return nil
	}))
}

func TestDeleteProfile_BrokerDownStillDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.deliver(t, events.Wishlist("u1", mango, false))
	f.ch.SetAvailable(false)

	require.NoError(t, f.svc.DeleteProfile(ctx, "u1"))
	wl, _ := f.svc.Wishlist(ctx, "u1")
	assert.Empty(t, wl)
}

func TestDeleteProfileEventDoesNotEcho(t *testing.T) {
	f := newFixture(t)
	f.deliver(t, events.ProfileDeleted("u1"))
	assert.Equal(t, 0, f.ch.Pending(broker.Shopping))
}
