package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/broker"
	"github.com/ariefcatur/go-storefront-sync/internal/cart"
	"github.com/ariefcatur/go-storefront-sync/internal/events"
	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoActiveCart        = errors.New("no active cart")
	ErrOrderCreationFailed = errors.New("order creation failed")
)

// Emitter is satisfied by *broker.Publisher.
type Emitter interface {
	PublishAll(ctx context.Context, env events.Envelope, dests ...broker.Destination) error
}

// Assembler turns a customer's cart into an order. It is one local step of
// the order saga: the order record is the commit point, and everything after
// it (clearing the cart, telling the other services) is best effort.
type Assembler struct {
	carts  *cart.Mutator
	orders Store
	emit   Emitter
	log    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewAssembler(carts cart.Store, orders Store, emit Emitter, log *zap.Logger) *Assembler {
	return &Assembler{
		carts:  cart.NewMutator(carts, log),
		orders: orders,
		emit:   emit,
		log:    logging.OrNop(log),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (a *Assembler) PlaceOrder(ctx context.Context, customerID, txnID string) (*storefront.Order, error) {
	c, err := a.carts.Latest(ctx, customerID)
	switch {
	case err != nil:
		return nil, fmt.Errorf("%w: load cart: %w", ErrOrderCreationFailed, err)
	case len(c.Items) == 0:
		return nil, ErrNoActiveCart
	}

	order := &storefront.Order{
		OrderID:    a.newID(),
		CustomerID: customerID,
		Amount:     Amount(c.Items),
		TxnID:      txnID,
		Status:     storefront.StatusReceived,
		Items:      append([]storefront.CartLineItem(nil), c.Items...),
		CreatedAt:  a.now(),
	}
	if err := a.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: persist order: %w", ErrOrderCreationFailed, err)
	}

	log := a.log.With(zap.String("order_id", order.OrderID), zap.String("customer_id", customerID))
	log.Info("order created",
		zap.String("amount", order.Amount.String()),
		zap.Int("items", len(order.Items)),
	)

	// The order is committed; from here on failures are logged only. A cart
	// left behind is repaired on the next cart read.
	if err := a.clearCart(ctx, c, log); err != nil {
		log.Warn("cart not cleared after order", zap.Error(err))
	}
	if a.emit != nil {
		env := events.OrderCreated(customerID, *order)
		if err := a.emit.PublishAll(ctx, env, broker.Customer, broker.Catalog); err != nil {
			log.Error("CREATE_ORDER not published", zap.Error(err))
		}
	}
	return order, nil
}

// clearCart deletes the cart the order was built from. If the customer
// changed it meanwhile, only the ordered lines are taken out.
func (a *Assembler) clearCart(ctx context.Context, c *storefront.Cart, log *zap.Logger) error {
	err := a.carts.ClearIfUnchanged(ctx, c)
	if !errors.Is(err, cart.ErrVersionConflict) {
		return err
	}
	log.Info("cart changed while ordering, keeping newer lines")
	return a.carts.RemoveOrdered(ctx, c.CustomerID, c.Items)
}

func (a *Assembler) Order(ctx context.Context, orderID string) (*storefront.Order, error) {
	return a.orders.Get(ctx, orderID)
}

func (a *Assembler) Orders(ctx context.Context, customerID string) ([]storefront.Order, error) {
	return a.orders.ListByCustomer(ctx, customerID)
}
