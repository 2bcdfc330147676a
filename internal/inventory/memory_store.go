package inventory

import (
	"context"
	"sync"
)

type ledgerKey struct{ orderID, productID string }

type MemoryStore struct {
	mu    sync.Mutex
	stock map[string]int
	// ledger holds the outcome of every order line: nil for applied, the
	// rejection error otherwise.
	ledger map[ledgerKey]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stock:  make(map[string]int),
		ledger: make(map[ledgerKey]error),
	}
}

// SetStock creates or overwrites a product's stock count.
func (s *MemoryStore) SetStock(productID string, unit int) {
	s.mu.Lock()
	s.stock[productID] = unit
	s.mu.Unlock()
}

func (s *MemoryStore) Adjust(_ context.Context, productID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustLocked(productID, delta)
}

func (s *MemoryStore) ApplyOrderLine(_ context.Context, orderID, productID string, qty int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := ledgerKey{orderID, productID}
	if outcome, ok := s.ledger[k]; ok {
		if outcome != nil {
			return 0, false, outcome
		}
		cur, ok := s.stock[productID]
		if !ok {
			return 0, false, ErrProductNotFound
		}
		return cur, false, nil
	}
	n, err := s.adjustLocked(productID, -qty)
	s.ledger[k] = err
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (s *MemoryStore) Stock(_ context.Context, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.stock[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	return cur, nil
}

func (s *MemoryStore) adjustLocked(productID string, delta int) (int, error) {
	cur, ok := s.stock[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	if cur+delta < 0 {
		return 0, ErrInsufficientStock
	}
	s.stock[productID] = cur + delta
	return cur + delta, nil
}
