package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"go.uber.org/zap"
)

const maxSaveAttempts = 5

// Mutator applies line-item changes to a customer's cart. Every change is
// idempotent: applying it again leaves the cart as it was after the first
// application, which is what makes broker re-delivery safe.
type Mutator struct {
	store Store
	fresh func(ctx context.Context, customerID string) (*storefront.Cart, error)
	log   *zap.Logger
}

// freshReader is implemented by stores that may answer Get from a cache.
type freshReader interface {
	GetFresh(ctx context.Context, customerID string) (*storefront.Cart, error)
}

func NewMutator(store Store, log *zap.Logger) *Mutator {
	m := &Mutator{store: store, fresh: store.Get, log: logging.OrNop(log)}
	if f, ok := store.(freshReader); ok {
		m.fresh = f.GetFresh
	}
	return m
}

// ApplyCartChange sets the unit count of product in the cart to qty (not an
// increment), appending the line if needed, or deletes the line when remove
// is true. Removing a product that is not in the cart is a no-op.
func (m *Mutator) ApplyCartChange(ctx context.Context, customerID string, product storefront.ProductSnapshot, qty int, remove bool) (*storefront.Cart, error) {
	if !remove && qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	for attempt := 1; ; attempt++ {
		cur, err := m.load(ctx, customerID, m.fresh)
		if err != nil {
			return nil, err
		}
		next, changed := apply(*cur, product, qty, remove)
		if !changed {
			return cur, nil
		}
		err = m.store.Save(ctx, next)
		if err == nil {
			return next, nil
		}
		if errors.Is(err, ErrVersionConflict) && attempt < maxSaveAttempts {
			m.log.Debug("cart changed concurrently, reapplying",
				zap.String("customer_id", customerID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return nil, fmt.Errorf("save cart %s: %w", customerID, err)
	}
}

// Get returns the customer's cart, or an empty one when none exists.
func (m *Mutator) Get(ctx context.Context, customerID string) (*storefront.Cart, error) {
	return m.load(ctx, customerID, m.store.Get)
}

// Latest is Get without the cache.
func (m *Mutator) Latest(ctx context.Context, customerID string) (*storefront.Cart, error) {
	return m.load(ctx, customerID, m.fresh)
}

// Clear deletes every line of the customer's cart.
func (m *Mutator) Clear(ctx context.Context, customerID string) error {
	if err := m.store.Delete(ctx, customerID); err != nil {
		return fmt.Errorf("clear cart %s: %w", customerID, err)
	}
	return nil
}

// ClearIfUnchanged deletes c only while the stored cart is still at
// c.Version. It fails with ErrVersionConflict when the cart moved on.
func (m *Mutator) ClearIfUnchanged(ctx context.Context, c *storefront.Cart) error {
	if c.Version == 0 {
		return nil
	}
	if err := m.store.DeleteIfVersion(ctx, c.CustomerID, c.Version); err != nil {
		return fmt.Errorf("clear cart %s: %w", c.CustomerID, err)
	}
	return nil
}

// RemoveOrdered takes ordered lines out of the cart. A line goes only while
// it still matches what was ordered (same product, same unit); lines added
// or changed since stay. The cart is deleted once nothing is left.
func (m *Mutator) RemoveOrdered(ctx context.Context, customerID string, ordered []storefront.CartLineItem) error {
	for attempt := 1; ; attempt++ {
		cur, err := m.load(ctx, customerID, m.fresh)
		if err != nil {
			return err
		}
		rest, changed := without(*cur, ordered)
		if !changed || cur.Version == 0 {
			return nil
		}
		if len(rest.Items) == 0 {
			err = m.store.DeleteIfVersion(ctx, customerID, cur.Version)
		} else {
			err = m.store.Save(ctx, rest)
		}
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrVersionConflict) && attempt < maxSaveAttempts {
			continue
		}
		return fmt.Errorf("remove ordered lines from cart %s: %w", customerID, err)
	}
}

func (m *Mutator) load(ctx context.Context, customerID string, get func(context.Context, string) (*storefront.Cart, error)) (*storefront.Cart, error) {
	c, err := get(ctx, customerID)
	if errors.Is(err, ErrCartNotFound) {
		return &storefront.Cart{CustomerID: customerID, Items: []storefront.CartLineItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", customerID, err)
	}
	return c, nil
}

// apply rebuilds the line sequence rather than splicing it in place. changed
// is false when the change leaves the cart as it already is.
func apply(c storefront.Cart, product storefront.ProductSnapshot, qty int, remove bool) (*storefront.Cart, bool) {
	items := make([]storefront.CartLineItem, 0, len(c.Items)+1)
	found, changed := false, false
	for _, it := range c.Items {
		if it.Product.ID != product.ID {
			items = append(items, it)
			continue
		}
		found = true
		if remove {
			changed = true
			continue
		}
		if it.Unit != qty {
			it.Unit = qty
			changed = true
		}
		items = append(items, it)
	}
	if !found && !remove {
		items = append(items, storefront.CartLineItem{Product: product, Unit: qty})
		changed = true
	}
	c.Items = items
	return &c, changed
}

func without(c storefront.Cart, ordered []storefront.CartLineItem) (*storefront.Cart, bool) {
	take := make(map[string]int, len(ordered))
	for _, it := range ordered {
		take[it.Product.ID] = it.Unit
	}
	items := make([]storefront.CartLineItem, 0, len(c.Items))
	for _, it := range c.Items {
		if unit, ok := take[it.Product.ID]; ok && unit == it.Unit {
			continue
		}
		items = append(items, it)
	}
	changed := len(items) != len(c.Items)
	c.Items = items
	return &c, changed
}
