package orders

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
)

var ErrOrderNotFound = errors.New("order not found")

// Store keeps immutable order records. Create is idempotent by order id: a
// second Create for an existing id keeps the first record.
type Store interface {
	Create(ctx context.Context, o *storefront.Order) error
	Get(ctx context.Context, orderID string) (*storefront.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]storefront.Order, error)
	DeleteByCustomer(ctx context.Context, customerID string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]storefront.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]storefront.Order)}
}

func (s *MemoryStore) Create(_ context.Context, o *storefront.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.OrderID]; ok {
		return nil
	}
	s.orders[o.OrderID] = copyOrder(*o)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, orderID string) (*storefront.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	c := copyOrder(o)
	return &c, nil
}

func (s *MemoryStore) ListByCustomer(_ context.Context, customerID string) ([]storefront.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []storefront.Order{}
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].OrderID < out[j].OrderID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) DeleteByCustomer(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.orders {
		if o.CustomerID == customerID {
			delete(s.orders, id)
		}
	}
	return nil
}

func copyOrder(o storefront.Order) storefront.Order {
	o.Items = append([]storefront.CartLineItem(nil), o.Items...)
	return o
}
