package events

import (
	"testing"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RemoveFromCart(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"REMOVE_FROM_CART","data":{"userId":"u1","product":{"_id":"p9"}}}`))
	require.NoError(t, err)

	rm, ok := ev.(RemoveFromCart)
	require.True(t, ok)
	assert.Equal(t, "u1", rm.UserID)
	assert.Equal(t, "p9", rm.Product.ID)
	assert.Equal(t, 0, rm.Qty)
}

func TestDecode_RoundTripFromConstructors(t *testing.T) {
	p := storefront.ProductSnapshot{ID: "p1", Name: "Mango", Price: "10", Banner: "mango.png"}
	order := storefront.Order{
		OrderID:    "o-1",
		CustomerID: "u1",
		Amount:     decimal.NewFromInt(20),
		Status:     storefront.StatusReceived,
		Items:      []storefront.CartLineItem{{Product: p, Unit: 2}},
	}

	cases := []struct {
		env  Envelope
		want Event
	}{
		{Wishlist("u1", p, false), AddToWishlist{UserID: "u1", Product: p}},
		{Wishlist("u1", p, true), RemoveFromWishlist{UserID: "u1", Product: p}},
		{Cart("u1", p, 3, false), AddToCart{UserID: "u1", Product: p, Qty: 3}},
		{Cart("u1", p, 1, true), RemoveFromCart{UserID: "u1", Product: p, Qty: 1}},
		{ProfileDeleted("u1"), DeleteProfile{UserID: "u1"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.env.Event), func(t *testing.T) {
			b, err := Encode(tc.env)
			require.NoError(t, err)
			got, err := Decode(b)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	b, err := Encode(OrderCreated("u1", order))
	require.NoError(t, err)
	got, err := Decode(b)
	require.NoError(t, err)
	co, ok := got.(CreateOrder)
	require.True(t, ok)
	assert.Equal(t, "o-1", co.Order.OrderID)
	assert.True(t, co.Order.Amount.Equal(decimal.NewFromInt(20)))
	assert.Len(t, co.Order.Items, 1)
}

func TestDecode_UnknownKindIsIgnorable(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"APPLY_COUPON","data":{"userId":"u1","code":"X"}}`))
	require.NoError(t, err)
	assert.Equal(t, Unknown{Name: "APPLY_COUPON", UserID: "u1"}, ev)
}

func TestDecode_Malformed(t *testing.T) {
	payloads := map[string]string{
		"not json":           `{event`,
		"array":              `[1,2]`,
		"no event":           `{"data":{"userId":"u1"}}`,
		"no data":            `{"event":"ADD_TO_CART"}`,
		"null data":          `{"event":"ADD_TO_CART","data":null}`,
		"data not object":    `{"event":"ADD_TO_CART","data":"u1"}`,
		"missing user":       `{"event":"DELETE_PROFILE","data":{}}`,
		"missing product":    `{"event":"ADD_TO_WISHLIST","data":{"userId":"u1"}}`,
		"product without id": `{"event":"REMOVE_FROM_WISHLIST","data":{"userId":"u1","product":{"name":"x"}}}`,
		"cart without qty":   `{"event":"ADD_TO_CART","data":{"userId":"u1","product":{"_id":"p1"}}}`,
		"cart zero qty":      `{"event":"ADD_TO_CART","data":{"userId":"u1","product":{"_id":"p1"},"qty":0}}`,
		"qty not numeric":    `{"event":"ADD_TO_CART","data":{"userId":"u1","product":{"_id":"p1"},"qty":"two"}}`,
		"order missing":      `{"event":"CREATE_ORDER","data":{"userId":"u1"}}`,
		"order without id":   `{"event":"CREATE_ORDER","data":{"userId":"u1","order":{"amount":"3"}}}`,
	}
	for name, raw := range payloads {
		t.Run(name, func(t *testing.T) {
			ev, err := Decode([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformedPayload)
			assert.Nil(t, ev)
		})
	}
}

func TestOrderCreated_DoesNotShareItems(t *testing.T) {
	order := storefront.Order{OrderID: "o-1", Items: []storefront.CartLineItem{{Unit: 1}}}
	env := OrderCreated("u1", order)

	order.Items[0].Unit = 99
	assert.Equal(t, 1, env.Data.Order.Items[0].Unit)
}

func TestCart_CopiesProduct(t *testing.T) {
	p := storefront.ProductSnapshot{ID: "p1", Name: "before"}
	env := Cart("u1", p, 1, false)
	p.Name = "after"
	assert.Equal(t, "before", env.Data.Product.Name)
}
