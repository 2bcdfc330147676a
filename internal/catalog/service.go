package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront-sync/internal/broker"
	"github.com/ariefcatur/go-storefront-sync/internal/dispatch"
	"github.com/ariefcatur/go-storefront-sync/internal/events"
	"github.com/ariefcatur/go-storefront-sync/internal/inventory"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedEvent = errors.New("not a product event")
	ErrInvalidProduct   = errors.New("invalid product")
)

// Service owns products and stock. It is where wishlist and cart actions
// originate: it builds the envelope from its own product record and fans it
// out to the services that mirror that state.
type Service struct {
	products Products
	stock    *inventory.Adjuster
	pub      *broker.Publisher
	log      *zap.Logger
}

func New(products Products, stock *inventory.Adjuster, pub *broker.Publisher, log *zap.Logger) *Service {
	return &Service{products: products, stock: stock, pub: pub, log: logging.OrNop(log)}
}

// ProductPayload builds the envelope for a wishlist or cart action on
// productID.
func (s *Service) ProductPayload(ctx context.Context, userID, productID string, qty int, kind events.Kind) (events.Envelope, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return events.Envelope{}, err
	}
	switch kind {
	case events.KindAddToWishlist, events.KindRemoveFromWishlist:
		return events.Wishlist(userID, p.ProductSnapshot, kind == events.KindRemoveFromWishlist), nil
	case events.KindAddToCart:
		if qty <= 0 {
			return events.Envelope{}, inventory.ErrInvalidQuantity
		}
		return events.Cart(userID, p.ProductSnapshot, qty, false), nil
	case events.KindRemoveFromCart:
		return events.Cart(userID, p.ProductSnapshot, qty, true), nil
	}
	return events.Envelope{}, fmt.Errorf("%w: %s", ErrUnsupportedEvent, kind)
}

// EmitProductEvent publishes a wishlist action to customer, and a cart action
// to customer and shopping. The returned error wraps
// broker.ErrBrokerUnavailable when any destination could not be reached.
func (s *Service) EmitProductEvent(ctx context.Context, userID, productID string, qty int, kind events.Kind) (events.Envelope, error) {
	env, err := s.ProductPayload(ctx, userID, productID, qty, kind)
	if err != nil {
		return env, err
	}
	dests := []broker.Destination{broker.Customer}
	if kind == events.KindAddToCart || kind == events.KindRemoveFromCart {
		dests = append(dests, broker.Shopping)
	}
	if err := s.pub.PublishAll(ctx, env, dests...); err != nil {
		s.log.Error("product event not published",
			zap.String("event", string(kind)),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return env, err
	}
	return env, nil
}

func (s *Service) AdjustStock(ctx context.Context, productID string, qty int, isAddition bool) (int, error) {
	return s.stock.AdjustStock(ctx, productID, qty, isAddition)
}

// CreateProduct adds a product with p.Unit as its opening stock. A product
// without an id gets a generated one.
func (s *Service) CreateProduct(ctx context.Context, p Product) (Product, error) {
	switch price, ok := p.Price.Decimal(); {
	case p.Name == "":
		return Product{}, fmt.Errorf("%w: missing name", ErrInvalidProduct)
	case !ok || price.IsNegative():
		return Product{}, fmt.Errorf("%w: price %q", ErrInvalidProduct, p.Price)
	case p.Unit < 0:
		return Product{}, fmt.Errorf("%w: negative unit", ErrInvalidProduct)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.products.Create(ctx, p); err != nil {
		return Product{}, err
	}
	s.log.Info("product created",
		zap.String("product_id", p.ID),
		zap.String("type", p.Type),
		zap.Int("unit", p.Unit),
	)
	return p, nil
}

// Product returns the product record with its current stock.
func (s *Service) Product(ctx context.Context, productID string) (Product, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return Product{}, err
	}
	unit, err := s.stock.Stock(ctx, productID)
	if err != nil && !errors.Is(err, inventory.ErrProductNotFound) {
		return Product{}, err
	}
	p.Unit = unit
	return p, nil
}

// Products lists the catalog, narrowed to one type when typ is set.
func (s *Service) Products(ctx context.Context, typ string) ([]Product, error) {
	return s.products.List(ctx, typ)
}

// SelectedProducts returns the products among ids that exist. Unknown ids
// are skipped.
func (s *Service) SelectedProducts(ctx context.Context, ids []string) ([]Product, error) {
	return s.products.FindMany(ctx, ids)
}

// Register subscribes the catalog to CREATE_ORDER so placed orders draw
// stock down.
func (s *Service) Register(d *dispatch.Dispatcher) {
	dispatch.On(d, s.onCreateOrder)
}

func (s *Service) onCreateOrder(ctx context.Context, ev events.CreateOrder) error {
	res, err := s.stock.ApplyOrder(ctx, ev.Order)
	if err != nil {
		return err
	}
	if rej := res.Rejected(); len(rej) > 0 {
		s.log.Warn("order oversold",
			zap.String("order_id", ev.Order.OrderID),
			zap.Int("rejected_lines", len(rej)),
		)
	}
	return nil
}
