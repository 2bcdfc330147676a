package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
)

var ErrMalformedPayload = errors.New("malformed payload")

// Decode parses a transport payload into its Event variant. Any failure is
// reported as ErrMalformedPayload; unknown kinds decode to Unknown.
func Decode(b []byte) (Event, error) {
	var raw struct {
		Event *Kind            `json:"event"`
		Data  *json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, malformed("envelope: %v", err)
	}
	if raw.Event == nil || *raw.Event == "" {
		return nil, malformed("missing event")
	}
	if raw.Data == nil {
		return nil, malformed("%s: missing data", *raw.Event)
	}
	var d Data
	if err := json.Unmarshal(*raw.Data, &d); err != nil {
		return nil, malformed("%s: data: %v", *raw.Event, err)
	}

	kind := *raw.Event
	switch kind {
	case KindAddToWishlist, KindRemoveFromWishlist, KindAddToCart, KindRemoveFromCart,
		KindCreateOrder, KindDeleteProfile:
		if d.UserID == "" {
			return nil, malformed("%s: missing userId", kind)
		}
	}

	switch kind {
	case KindAddToWishlist:
		p, err := product(kind, d)
		if err != nil {
			return nil, err
		}
		return AddToWishlist{UserID: d.UserID, Product: p}, nil
	case KindRemoveFromWishlist:
		p, err := product(kind, d)
		if err != nil {
			return nil, err
		}
		return RemoveFromWishlist{UserID: d.UserID, Product: p}, nil
	case KindAddToCart:
		p, err := product(kind, d)
		if err != nil {
			return nil, err
		}
		if d.Qty == nil || *d.Qty <= 0 {
			return nil, malformed("%s: qty must be positive", kind)
		}
		return AddToCart{UserID: d.UserID, Product: p, Qty: *d.Qty}, nil
	case KindRemoveFromCart:
		p, err := product(kind, d)
		if err != nil {
			return nil, err
		}
		ev := RemoveFromCart{UserID: d.UserID, Product: p}
		if d.Qty != nil {
			ev.Qty = *d.Qty
		}
		return ev, nil
	case KindCreateOrder:
		if d.Order == nil || d.Order.OrderID == "" {
			return nil, malformed("%s: missing order", kind)
		}
		return CreateOrder{UserID: d.UserID, Order: *d.Order}, nil
	case KindDeleteProfile:
		return DeleteProfile{UserID: d.UserID}, nil
	default:
		return Unknown{Name: kind, UserID: d.UserID}, nil
	}
}

func product(kind Kind, d Data) (storefront.ProductSnapshot, error) {
	if d.Product == nil || d.Product.ID == "" {
		return storefront.ProductSnapshot{}, malformed("%s: missing product", kind)
	}
	return *d.Product, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}
