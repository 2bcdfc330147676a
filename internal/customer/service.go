package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-sync/internal/broker"
	"github.com/ariefcatur/go-storefront-sync/internal/cart"
	"github.com/ariefcatur/go-storefront-sync/internal/dispatch"
	"github.com/ariefcatur/go-storefront-sync/internal/events"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/ariefcatur/go-storefront-sync/internal/orders"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/ariefcatur/go-storefront-sync/internal/wishlist"
	"go.uber.org/zap"
)

// Service owns the customer profile: wishlist, a mirror of the cart and the
// order history. All three are rebuilt from events sent by the other
// services.
type Service struct {
	wishlist *wishlist.Mutator
	cart     *cart.Mutator
	history  orders.Store
	pub      *broker.Publisher
	log      *zap.Logger
}

func New(wl *wishlist.Mutator, carts *cart.Mutator, history orders.Store, pub *broker.Publisher, log *zap.Logger) *Service {
	return &Service{wishlist: wl, cart: carts, history: history, pub: pub, log: logging.OrNop(log)}
}

func (s *Service) Wishlist(ctx context.Context, customerID string) ([]storefront.ProductSnapshot, error) {
	return s.wishlist.Get(ctx, customerID)
}

func (s *Service) Cart(ctx context.Context, customerID string) (*storefront.Cart, error) {
	return s.cart.Get(ctx, customerID)
}

func (s *Service) Orders(ctx context.Context, customerID string) ([]storefront.Order, error) {
	return s.history.ListByCustomer(ctx, customerID)
}

// DeleteProfile wipes the local profile and asks the shopping service to
// drop the customer's cart. Placed orders are kept by shopping.
func (s *Service) DeleteProfile(ctx context.Context, customerID string) error {
	if err := s.wipe(ctx, customerID); err != nil {
		return err
	}
	if err := s.pub.Publish(ctx, broker.Shopping, events.ProfileDeleted(customerID)); err != nil {
		s.log.Error("DELETE_PROFILE not published", zap.String("user_id", customerID), zap.Error(err))
	}
	return nil
}

func (s *Service) Register(d *dispatch.Dispatcher) {
	dispatch.On(d, func(ctx context.Context, ev events.AddToWishlist) error {
		_, err := s.wishlist.ToggleWishlist(ctx, ev.UserID, ev.Product, false)
		return err
	})
	dispatch.On(d, func(ctx context.Context, ev events.RemoveFromWishlist) error {
		_, err := s.wishlist.ToggleWishlist(ctx, ev.UserID, ev.Product, true)
		return err
	})
	dispatch.On(d, func(ctx context.Context, ev events.AddToCart) error {
		_, err := s.cart.ApplyCartChange(ctx, ev.UserID, ev.Product, ev.Qty, false)
		return err
	})
	dispatch.On(d, func(ctx context.Context, ev events.RemoveFromCart) error {
		_, err := s.cart.ApplyCartChange(ctx, ev.UserID, ev.Product, ev.Qty, true)
		return err
	})
	dispatch.On(d, s.onCreateOrder)
	dispatch.On(d, func(ctx context.Context, ev events.DeleteProfile) error {
		return s.wipe(ctx, ev.UserID)
	})
}

// onCreateOrder takes the ordered lines out of the mirrored cart and records
// the order in the history. An order already in the history is a
// re-delivery and changes nothing, so lines added after the order survive
// it. The history write comes last so a failed delivery is retried whole.
func (s *Service) onCreateOrder(ctx context.Context, ev events.CreateOrder) error {
	o := ev.Order
	if o.CustomerID == "" {
		o.CustomerID = ev.UserID
	}
	_, err := s.history.Get(ctx, o.OrderID)
	switch {
	case err == nil:
		s.log.Debug("order already recorded", zap.String("order_id", o.OrderID))
		return nil
	case !errors.Is(err, orders.ErrOrderNotFound):
		return fmt.Errorf("lookup order %s: %w", o.OrderID, err)
	}
	if err := s.cart.RemoveOrdered(ctx, ev.UserID, o.Items); err != nil {
		return err
	}
	if err := s.history.Create(ctx, &o); err != nil {
		return fmt.Errorf("record order %s: %w", o.OrderID, err)
	}
	return nil
}

func (s *Service) wipe(ctx context.Context, customerID string) error {
	err := errors.Join(
		s.wishlist.Clear(ctx, customerID),
		s.cart.Clear(ctx, customerID),
		s.history.DeleteByCustomer(ctx, customerID),
	)
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", customerID, err)
	}
	s.log.Info("profile deleted", zap.String("customer_id", customerID))
	return nil
}
