package storefront

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Price keeps the textual form of a product price exactly as it arrived,
// number or string, so a corrupt value survives transport and is only
// rejected when it is summed.
type Price string

func PriceOf(d decimal.Decimal) Price { return Price(d.String()) }

// Decimal parses the price. ok is false for anything that is not a finite
// decimal number.
func (p Price) Decimal() (d decimal.Decimal, ok bool) {
	s := strings.TrimSpace(string(p))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func (p Price) MarshalJSON() ([]byte, error) {
	if b, err := json.Marshal(json.Number(p)); err == nil && p != "" {
		return b, nil
	}
	return json.Marshal(string(p))
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*p = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("price: unexpected %s", data[:1])
	default:
		*p = Price(data)
	}
	return nil
}
