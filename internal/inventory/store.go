package inventory

import (
	"context"
	"errors"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// Store performs conditional stock updates. Every update is a single atomic
// check-and-set: stock is never observed negative.
type Store interface {
	// Adjust adds delta (negative to decrement) to the product's stock and
	// returns the new count. It fails with ErrInsufficientStock when the
	// result would drop below zero.
	Adjust(ctx context.Context, productID string, delta int) (int, error)
	// ApplyOrderLine decrements stock by qty at most once per (orderID,
	// productID). applied is false when the line was seen before. The
	// outcome of the first attempt is recorded, rejections included, so a
	// later delivery of the same line gets the same answer even after a
	// restock.
	ApplyOrderLine(ctx context.Context, orderID, productID string, qty int) (stock int, applied bool, err error)
	Stock(ctx context.Context, productID string) (int, error)
}
