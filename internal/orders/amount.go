package orders

import (
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/shopspring/decimal"
)

// Amount sums price x unit over the lines. A line whose price is not a
// number, or whose unit is not positive, is skipped so that one corrupt line
// cannot spoil the whole total.
func Amount(items []storefront.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		price, ok := it.Product.Price.Decimal()
		if !ok || it.Unit <= 0 {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Unit))))
	}
	return total
}
