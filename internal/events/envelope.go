package events

import (
	"encoding/json"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
)

type Kind string

const (
	KindAddToWishlist      Kind = "ADD_TO_WISHLIST"
	KindRemoveFromWishlist Kind = "REMOVE_FROM_WISHLIST"
	KindAddToCart          Kind = "ADD_TO_CART"
	KindRemoveFromCart     Kind = "REMOVE_FROM_CART"
	KindCreateOrder        Kind = "CREATE_ORDER"
	KindDeleteProfile      Kind = "DELETE_PROFILE"
)

// Envelope is the wire form of every notification exchanged between
// services. Build it with the constructors below so no pointer inside Data
// is shared with the caller.
type Envelope struct {
	Event Kind `json:"event"`
	Data  Data `json:"data"`
}

type Data struct {
	UserID  string                      `json:"userId"`
	Product *storefront.ProductSnapshot `json:"product,omitempty"`
	Qty     *int                        `json:"qty,omitempty"`
	Order   *storefront.Order           `json:"order,omitempty"`
}

func Wishlist(userID string, product storefront.ProductSnapshot, remove bool) Envelope {
	kind := KindAddToWishlist
	if remove {
		kind = KindRemoveFromWishlist
	}
	return Envelope{Event: kind, Data: Data{UserID: userID, Product: &product}}
}

func Cart(userID string, product storefront.ProductSnapshot, qty int, remove bool) Envelope {
	kind := KindAddToCart
	if remove {
		kind = KindRemoveFromCart
	}
	return Envelope{Event: kind, Data: Data{UserID: userID, Product: &product, Qty: &qty}}
}

func OrderCreated(userID string, order storefront.Order) Envelope {
	order.Items = append([]storefront.CartLineItem(nil), order.Items...)
	return Envelope{Event: KindCreateOrder, Data: Data{UserID: userID, Order: &order}}
}

func ProfileDeleted(userID string) Envelope {
	return Envelope{Event: KindDeleteProfile, Data: Data{UserID: userID}}
}

func Encode(e Envelope) ([]byte, error) {
	return json.Marshal(e)
}
