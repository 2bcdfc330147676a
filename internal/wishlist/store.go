package wishlist

import (
	"context"
	"sync"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
)

type Store interface {
	// Get returns the customer's wishlist, empty when there is none.
	Get(ctx context.Context, customerID string) ([]storefront.ProductSnapshot, error)
	Put(ctx context.Context, customerID string, items []storefront.ProductSnapshot) error
	Delete(ctx context.Context, customerID string) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	lists map[string][]storefront.ProductSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string][]storefront.ProductSnapshot)}
}

func (s *MemoryStore) Get(_ context.Context, customerID string) ([]storefront.ProductSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]storefront.ProductSnapshot{}, s.lists[customerID]...), nil
}

func (s *MemoryStore) Put(_ context.Context, customerID string, items []storefront.ProductSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[customerID] = append([]storefront.ProductSnapshot(nil), items...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, customerID)
	return nil
}
