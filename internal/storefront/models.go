package storefront

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSnapshot is the denormalized copy of a catalog product carried in
// carts, wishlists and orders.
type ProductSnapshot struct {
	ID     string `json:"_id" bson:"_id"`
	Name   string `json:"name,omitempty" bson:"name,omitempty"`
	Price  Price  `json:"price,omitempty" bson:"price,omitempty"`
	Banner string `json:"banner,omitempty" bson:"banner,omitempty"`
}

type CartLineItem struct {
	Product ProductSnapshot `json:"product" bson:"product"`
	Unit    int             `json:"unit" bson:"unit"`
}

// Cart lines are unique by product id. Version is the optimistic
// concurrency token; zero means the cart has never been stored.
type Cart struct {
	CustomerID string         `json:"customerId" bson:"_id"`
	Items      []CartLineItem `json:"items" bson:"items"`
	Version    int64          `json:"version,omitempty" bson:"version"`
	UpdatedAt  time.Time      `json:"updatedAt" bson:"updated_at"`
}

// Index returns the position of the line for productID, or -1.
func (c *Cart) Index(productID string) int {
	for i, it := range c.Items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

type Order struct {
	OrderID    string          `json:"orderId"`
	CustomerID string          `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
	TxnID      string          `json:"txnId"`
	Status     Status          `json:"status"`
	Items      []CartLineItem  `json:"items"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// InventoryRecord is the stock count for one product. Unit never goes negative.
type InventoryRecord struct {
	ProductID string `json:"productId"`
	Unit      int    `json:"unit"`
}
