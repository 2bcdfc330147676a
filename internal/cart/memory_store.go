package cart

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
)

type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]storefront.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]storefront.Cart)}
}

func (s *MemoryStore) Get(_ context.Context, customerID string) (*storefront.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[customerID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return clone(c), nil
}

func (s *MemoryStore) Save(_ context.Context, c *storefront.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.carts[c.CustomerID]
	switch {
	case !ok && c.Version != 0:
		return ErrVersionConflict
	case ok && cur.Version != c.Version:
		return ErrVersionConflict
	}
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	s.carts[c.CustomerID] = *clone(*c)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, customerID)
	return nil
}

func (s *MemoryStore) DeleteIfVersion(_ context.Context, customerID string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.carts[customerID]
	if !ok {
		return nil
	}
	if cur.Version != version {
		return ErrVersionConflict
	}
	delete(s.carts, customerID)
	return nil
}

func clone(c storefront.Cart) *storefront.Cart {
	c.Items = append([]storefront.CartLineItem(nil), c.Items...)
	return &c
}
