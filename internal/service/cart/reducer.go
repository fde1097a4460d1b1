package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

const (
	defaultItemName = "Product"
	defaultCurrency = "USD"

	// MaxLineQuantity caps the quantity of a single line.
	MaxLineQuantity = 999
)

// AddItemInput describes one add-to-cart call. Zero values mean "not
// supplied": VariantID falls back to domain.DefaultVariantID, Quantity to 1,
// Name/Price/Currency to placeholders.
type AddItemInput struct {
	ProductID  string          `json:"productId"`
	VariantID  int             `json:"variantId,omitempty"`
	SKU        string          `json:"sku,omitempty"`
	Attributes map[string]any  `json:"attributes,omitempty"`
	Quantity   int             `json:"quantity,omitempty"`
	Name       string          `json:"name,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency,omitempty"`
	Image      string          `json:"image,omitempty"`
}

func (in AddItemInput) normalized() AddItemInput {
	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.VariantID == 0 {
		in.VariantID = domain.DefaultVariantID
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if strings.TrimSpace(in.Name) == "" {
		in.Name = defaultItemName
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = defaultCurrency
	}
	return in
}

// addItem returns the cart after adding in and whether anything changed. The
// input must be normalized and carry a quantity in 1..MaxLineQuantity. A merge
// stops at MaxLineQuantity. c is not modified.
func addItem(c *domain.Cart, in AddItemInput, now time.Time) (*domain.Cart, bool) {
	if c == nil {
		item := newLineItem(nil, in, now)
		next := &domain.Cart{
			ID:       fmt.Sprintf("local-%d", now.UnixMilli()),
			Version:  1,
			Items:    []domain.LineItem{item},
			Currency: item.Currency,
		}
		next.Recalculate()
		return next, true
	}

	next := c.Clone()
	if idx := findPair(next.Items, in.ProductID, in.VariantID); idx >= 0 {
		// first write wins: only the quantity of an existing pair changes
		have := next.Items[idx].Quantity
		if have >= MaxLineQuantity {
			return c, false
		}
		next.Items[idx].Quantity = min(have+in.Quantity, MaxLineQuantity)
	} else {
		next.Items = append(next.Items, newLineItem(next.Items, in, now))
	}
	next.Version++
	next.Recalculate()
	return next, true
}

// removeItem returns the cart without lineItemID and whether anything changed.
// The result is nil when the last item is removed.
func removeItem(c *domain.Cart, lineItemID string) (*domain.Cart, bool) {
	if c == nil || findLine(c.Items, lineItemID) < 0 {
		return c, false
	}
	next := c.Clone()
	kept := next.Items[:0]
	for _, item := range next.Items {
		if item.ID != lineItemID {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return nil, true
	}
	next.Items = kept
	next.Version++
	next.Recalculate()
	return next, true
}

// setQuantity replaces the quantity of lineItemID in place, capped at
// MaxLineQuantity. quantity must be positive.
func setQuantity(c *domain.Cart, lineItemID string, quantity int) (*domain.Cart, bool) {
	quantity = min(quantity, MaxLineQuantity)
	if c == nil {
		return c, false
	}
	idx := findLine(c.Items, lineItemID)
	if idx < 0 {
		return c, false
	}
	next := c.Clone()
	next.Items[idx].Quantity = quantity
	next.Version++
	next.Recalculate()
	return next, true
}

func newLineItem(existing []domain.LineItem, in AddItemInput, now time.Time) domain.LineItem {
	var attrs map[string]any
	if len(in.Attributes) > 0 {
		attrs = make(map[string]any, len(in.Attributes))
		for k, v := range in.Attributes {
			attrs[k] = v
		}
	}
	return domain.LineItem{
		ID:        lineItemID(existing, in.ProductID, in.VariantID, now),
		ProductID: in.ProductID,
		Name:      in.Name,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Currency:  in.Currency,
		Image:     in.Image,
		Variant: domain.LineVariant{
			ID:         in.VariantID,
			SKU:        in.SKU,
			Attributes: attrs,
		},
	}
}

// lineItemID derives <product>-<variant>-<millis>, bumping the millis until
// the id is unused within the cart.
func lineItemID(existing []domain.LineItem, productID string, variantID int, now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := fmt.Sprintf("%s-%d-%d", productID, variantID, ms)
		if findLine(existing, id) < 0 {
			return id
		}
		ms++
	}
}

func findPair(items []domain.LineItem, productID string, variantID int) int {
	for i, item := range items {
		if item.ProductID == productID && item.Variant.ID == variantID {
			return i
		}
	}
	return -1
}

func findLine(items []domain.LineItem, lineItemID string) int {
	for i, item := range items {
		if item.ID == lineItemID {
			return i
		}
	}
	return -1
}
