package events

import (
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
)

// Event is the decoded form of an Envelope. The set of variants is closed:
// one type per known kind plus Unknown for anything else.
type Event interface {
	Kind() Kind
	Customer() string
	isEvent()
}

type AddToWishlist struct {
	UserID  string
	Product storefront.ProductSnapshot
}

type RemoveFromWishlist struct {
	UserID  string
	Product storefront.ProductSnapshot
}

type AddToCart struct {
	UserID  string
	Product storefront.ProductSnapshot
	Qty     int
}

type RemoveFromCart struct {
	UserID  string
	Product storefront.ProductSnapshot
	Qty     int
}

type CreateOrder struct {
	UserID string
	Order  storefront.Order
}

type DeleteProfile struct {
	UserID string
}

// Unknown is an event kind this build does not understand. Receivers ignore it.
type Unknown struct {
	Name   Kind
	UserID string
}

func (AddToWishlist) Kind() Kind      { return KindAddToWishlist }
func (RemoveFromWishlist) Kind() Kind { return KindRemoveFromWishlist }
func (AddToCart) Kind() Kind          { return KindAddToCart }
func (RemoveFromCart) Kind() Kind     { return KindRemoveFromCart }
func (CreateOrder) Kind() Kind        { return KindCreateOrder }
func (DeleteProfile) Kind() Kind      { return KindDeleteProfile }
func (e Unknown) Kind() Kind          { return e.Name }

func (e AddToWishlist) Customer() string      { return e.UserID }
func (e RemoveFromWishlist) Customer() string { return e.UserID }
func (e AddToCart) Customer() string          { return e.UserID }
func (e RemoveFromCart) Customer() string     { return e.UserID }
func (e CreateOrder) Customer() string        { return e.UserID }
func (e DeleteProfile) Customer() string      { return e.UserID }
func (e Unknown) Customer() string            { return e.UserID }

func (AddToWishlist) isEvent()      {}
func (RemoveFromWishlist) isEvent() {}
func (AddToCart) isEvent()          {}
func (RemoveFromCart) isEvent()     {}
func (CreateOrder) isEvent()        {}
func (DeleteProfile) isEvent()      {}
func (Unknown) isEvent()            {}
