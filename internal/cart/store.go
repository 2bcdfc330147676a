package cart

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrVersionConflict = errors.New("cart version conflict")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Store persists one cart per customer.
type Store interface {
	// Get returns ErrCartNotFound when the customer has no cart.
	Get(ctx context.Context, customerID string) (*storefront.Cart, error)
	// Save writes c if the stored version still equals c.Version (zero means
	// "must not exist yet") and bumps c.Version on success. A stale version
	// fails with ErrVersionConflict.
	Save(ctx context.Context, c *storefront.Cart) error
	// Delete removes the cart. Deleting a missing cart is not an error.
	Delete(ctx context.Context, customerID string) error
	// DeleteIfVersion removes the cart only while its stored version still
	// equals version. A newer cart fails with ErrVersionConflict; a missing
	// one is not an error.
	DeleteIfVersion(ctx context.Context, customerID string, version int64) error
}
