package domain

import (
	"github.com/shopspring/decimal"
)

// DefaultVariantID is used when a caller adds a product without naming a variant.
// It matches the master variant id of commerce products.
const DefaultVariantID = 1

// Cart is a session-owned shopping cart. A nil *Cart is the absent cart.
type Cart struct {
	ID         string          `json:"id"`
	Version    int             `json:"version"`
	Items      []LineItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Currency   string          `json:"currency"`
}

type LineItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Image     string          `json:"image,omitempty"`
	Variant   LineVariant     `json:"variant"`
}

// LineVariant identifies the variant a line item was added for.
type LineVariant struct {
	ID         int            `json:"id"`
	SKU        string         `json:"sku,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Total returns price × quantity for the line.
func (l LineItem) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ItemCount sums line quantities. It is 0 for the absent cart.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Recalculate sets TotalPrice to the sum of the line totals.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Total())
	}
	c.TotalPrice = total
}

// Clone returns a deep copy so callers can't mutate store-owned state.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]LineItem, len(c.Items))
	for i, item := range c.Items {
		if item.Variant.Attributes != nil {
			attrs := make(map[string]any, len(item.Variant.Attributes))
			for k, v := range item.Variant.Attributes {
				attrs[k] = v
			}
			item.Variant.Attributes = attrs
		}
		out.Items[i] = item
	}
	return &out
}

// Validate reports whether a cart satisfies the invariants a live cart must hold.
func (c *Cart) Validate() bool {
	if c == nil || c.Version < 1 || len(c.Items) == 0 {
		return false
	}
	for _, item := range c.Items {
		if item.ID == "" || item.ProductID == "" || item.Quantity < 1 {
			return false
		}
	}
	return true
}
