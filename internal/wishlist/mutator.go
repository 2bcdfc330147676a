package wishlist

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"go.uber.org/zap"
)

type Mutator struct {
	store Store
	log   *zap.Logger
}

func NewMutator(store Store, log *zap.Logger) *Mutator {
	return &Mutator{store: store, log: logging.OrNop(log)}
}

// ToggleWishlist flips product's membership in the customer's wishlist:
//
//	present, remove   -> deleted
//	present, !remove  -> deleted (toggle-off)
//	absent,  !remove  -> inserted
//	absent,  remove   -> no-op
//
// A repeated ADD_TO_WISHLIST therefore removes the product again. Membership
// is keyed by product id and can never hold duplicates.
func (m *Mutator) ToggleWishlist(ctx context.Context, customerID string, product storefront.ProductSnapshot, remove bool) ([]storefront.ProductSnapshot, error) {
	cur, err := m.store.Get(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load wishlist %s: %w", customerID, err)
	}

	next := make([]storefront.ProductSnapshot, 0, len(cur)+1)
	present := false
	for _, p := range cur {
		if p.ID == product.ID {
			present = true
			continue
		}
		next = append(next, p)
	}
	if !present && remove {
		return cur, nil
	}
	if !present {
		next = append(next, product)
	}

	if err := m.store.Put(ctx, customerID, next); err != nil {
		return nil, fmt.Errorf("save wishlist %s: %w", customerID, err)
	}
	m.log.Debug("wishlist toggled",
		zap.String("customer_id", customerID),
		zap.String("product_id", product.ID),
		zap.Bool("added", !present),
	)
	return next, nil
}

func (m *Mutator) Get(ctx context.Context, customerID string) ([]storefront.ProductSnapshot, error) {
	items, err := m.store.Get(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load wishlist %s: %w", customerID, err)
	}
	return items, nil
}

func (m *Mutator) Clear(ctx context.Context, customerID string) error {
	if err := m.store.Delete(ctx, customerID); err != nil {
		return fmt.Errorf("clear wishlist %s: %w", customerID, err)
	}
	return nil
}
