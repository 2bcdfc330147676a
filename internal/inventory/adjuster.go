package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"go.uber.org/zap"
)

// Deduper remembers orders already applied in full. *redisx.Dedup
// satisfies it.
type Deduper interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
}

type Adjuster struct {
	store Store
	dedup Deduper
	log   *zap.Logger
}

// NewAdjuster builds an Adjuster. dedup may be nil; the store ledger alone
// keeps order application idempotent.
func NewAdjuster(store Store, dedup Deduper, log *zap.Logger) *Adjuster {
	return &Adjuster{store: store, dedup: dedup, log: logging.OrNop(log)}
}

// AdjustStock increments or decrements a product's stock by qty and returns
// the new count. A decrement that would go below zero leaves stock unchanged
// and fails with ErrInsufficientStock.
func (a *Adjuster) AdjustStock(ctx context.Context, productID string, qty int, isAddition bool) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	delta := qty
	if !isAddition {
		delta = -qty
	}
	n, err := a.store.Adjust(ctx, productID, delta)
	if err != nil {
		return 0, err
	}
	a.log.Debug("stock adjusted",
		zap.String("product_id", productID),
		zap.Int("delta", delta),
		zap.Int("stock", n),
	)
	return n, nil
}

func (a *Adjuster) Stock(ctx context.Context, productID string) (int, error) {
	return a.store.Stock(ctx, productID)
}

type LineResult struct {
	ProductID string
	Qty       int
	Stock     int
	// Applied is false for a line that was applied by an earlier delivery.
	Applied bool
	// Err is ErrInsufficientStock or ErrProductNotFound for a rejected line.
	Err error
}

type OrderResult struct {
	OrderID string
	Lines   []LineResult
	// Replayed is set when the whole order was skipped as already applied.
	Replayed bool
}

func (r OrderResult) Rejected() []LineResult {
	var out []LineResult
	for _, l := range r.Lines {
		if l.Err != nil {
			out = append(out, l)
		}
	}
	return out
}

// ApplyOrder decrements stock for every line of order, once per product no
// matter how often the order is delivered. Lines that cannot be fulfilled
// are reported in the result and stay rejected on later deliveries, even
// after a restock; any other failure is returned so the caller
// can retry, and lines applied before it stay applied.
func (a *Adjuster) ApplyOrder(ctx context.Context, order storefront.Order) (OrderResult, error) {
	res := OrderResult{OrderID: order.OrderID}
	log := a.log.With(zap.String("order_id", order.OrderID))

	if a.dedup != nil {
		seen, err := a.dedup.Seen(ctx, order.OrderID)
		if err != nil {
			log.Warn("dedup lookup failed", zap.Error(err))
		}
		if seen {
			res.Replayed = true
			return res, nil
		}
	}

	for _, l := range orderLines(order.Items) {
		stock, applied, err := a.store.ApplyOrderLine(ctx, order.OrderID, l.ProductID, l.Qty)
		switch {
		case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrProductNotFound):
			log.Warn("order line not fulfilled",
				zap.String("product_id", l.ProductID),
				zap.Int("qty", l.Qty),
				zap.Error(err),
			)
			l.Err = err
		case err != nil:
			return res, fmt.Errorf("apply order %s line %s: %w", order.OrderID, l.ProductID, err)
		default:
			l.Stock, l.Applied = stock, applied
		}
		res.Lines = append(res.Lines, l)
	}

	if a.dedup != nil {
		if err := a.dedup.Mark(ctx, order.OrderID); err != nil {
			log.Warn("dedup mark failed", zap.Error(err))
		}
	}
	log.Info("order applied to stock",
		zap.Int("lines", len(res.Lines)),
		zap.Int("rejected", len(res.Rejected())),
	)
	return res, nil
}

// orderLines sums units per product, keeping first-seen order and dropping
// non-positive quantities.
func orderLines(items []storefront.CartLineItem) []LineResult {
	idx := make(map[string]int, len(items))
	var out []LineResult
	for _, it := range items {
		if it.Unit <= 0 || it.Product.ID == "" {
			continue
		}
		if i, ok := idx[it.Product.ID]; ok {
			out[i].Qty += it.Unit
			continue
		}
		idx[it.Product.ID] = len(out)
		out = append(out, LineResult{ProductID: it.Product.ID, Qty: it.Unit})
	}
	return out
}
