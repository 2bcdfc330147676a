package shopping

import (
	"context"

	"github.com/ariefcatur/go-storefront-sync/internal/broker"
	"github.com/ariefcatur/go-storefront-sync/internal/cart"
	"github.com/ariefcatur/go-storefront-sync/internal/dispatch"
	"github.com/ariefcatur/go-storefront-sync/internal/events"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/ariefcatur/go-storefront-sync/internal/orders"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"go.uber.org/zap"
)

// Service owns carts and orders.
type Service struct {
	carts  *cart.Mutator
	orders *orders.Assembler
	pub    *broker.Publisher
	log    *zap.Logger
}

func New(carts *cart.Mutator, assembler *orders.Assembler, pub *broker.Publisher, log *zap.Logger) *Service {
	return &Service{carts: carts, orders: assembler, pub: pub, log: logging.OrNop(log)}
}

// AddToCart sets the product's unit count in the local cart, then tells the
// customer service. A publish failure is logged; the cart change stands.
func (s *Service) AddToCart(ctx context.Context, customerID string, product storefront.ProductSnapshot, qty int) (*storefront.Cart, error) {
	c, err := s.carts.ApplyCartChange(ctx, customerID, product, qty, false)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, events.Cart(customerID, product, qty, false))
	return c, nil
}

func (s *Service) RemoveFromCart(ctx context.Context, customerID, productID string) (*storefront.Cart, error) {
	product := storefront.ProductSnapshot{ID: productID}
	c, err := s.carts.ApplyCartChange(ctx, customerID, product, 0, true)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, events.Cart(customerID, product, 0, true))
	return c, nil
}

// Cart returns the customer's cart. A cart that was ordered but not cleared
// (its last change predates the customer's latest order) is cleared here.
func (s *Service) Cart(ctx context.Context, customerID string) (*storefront.Cart, error) {
	c, err := s.carts.Get(ctx, customerID)
	if err != nil || len(c.Items) == 0 || c.UpdatedAt.IsZero() {
		return c, err
	}
	placed, err := s.orders.Orders(ctx, customerID)
	if err != nil || len(placed) == 0 {
		return c, nil
	}
	latest := placed[len(placed)-1]
	if latest.CreatedAt.Before(c.UpdatedAt) {
		return c, nil
	}
	if err := s.carts.ClearIfUnchanged(ctx, c); err != nil {
		s.log.Warn("stale cart not repaired", zap.String("customer_id", customerID), zap.Error(err))
		return c, nil
	}
	s.log.Info("cleared cart left behind by order",
		zap.String("customer_id", customerID),
		zap.String("order_id", latest.OrderID),
	)
	return &storefront.Cart{CustomerID: customerID, Items: []storefront.CartLineItem{}}, nil
}

func (s *Service) PlaceOrder(ctx context.Context, customerID, txnID string) (*storefront.Order, error) {
	return s.orders.PlaceOrder(ctx, customerID, txnID)
}

func (s *Service) Orders(ctx context.Context, customerID string) ([]storefront.Order, error) {
	return s.orders.Orders(ctx, customerID)
}

func (s *Service) Order(ctx context.Context, orderID string) (*storefront.Order, error) {
	return s.orders.Order(ctx, orderID)
}

// Register subscribes the shopping queue: cart actions that originate in the
// catalog, and profile deletion from the customer service.
func (s *Service) Register(d *dispatch.Dispatcher) {
	dispatch.On(d, func(ctx context.Context, ev events.AddToCart) error {
		_, err := s.carts.ApplyCartChange(ctx, ev.UserID, ev.Product, ev.Qty, false)
		return err
	})
	dispatch.On(d, func(ctx context.Context, ev events.RemoveFromCart) error {
		_, err := s.carts.ApplyCartChange(ctx, ev.UserID, ev.Product, ev.Qty, true)
		return err
	})
	dispatch.On(d, func(ctx context.Context, ev events.DeleteProfile) error {
		return s.carts.Clear(ctx, ev.UserID)
	})
}

func (s *Service) notify(ctx context.Context, env events.Envelope) {
	if err := s.pub.Publish(ctx, broker.Customer, env); err != nil {
		s.log.Error("cart event not published",
			zap.String("event", string(env.Event)),
			zap.String("user_id", env.Data.UserID),
			zap.Error(err),
		)
	}
}
