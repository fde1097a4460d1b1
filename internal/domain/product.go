package domain

import (
	"github.com/shopspring/decimal"
)

// LocalizedString maps a locale (e.g. "en", "en-GB") to a value.
type LocalizedString map[string]string

// Get returns the value for locale, falling back to "en" and then to any value.
func (l LocalizedString) Get(locale string) string {
	if len(l) == 0 {
		return ""
	}
	if v := l[locale]; v != "" {
		return v
	}
	if v := l["en"]; v != "" {
		return v
	}
	for _, v := range l {
		if v != "" {
			return v
		}
	}
	return ""
}

type Product struct {
	ID            string           `json:"id"`
	Key           string           `json:"key,omitempty"`
	Version       int              `json:"version"`
	Name          LocalizedString  `json:"name"`
	Description   LocalizedString  `json:"description,omitempty"`
	Slug          LocalizedString  `json:"slug"`
	MasterVariant ProductVariant   `json:"masterVariant"`
	Variants      []ProductVariant `json:"variants"`
	CategoryIDs   []string         `json:"categoryIds,omitempty"`
}

// AllVariants returns the master variant followed by the alternates.
func (p Product) AllVariants() []ProductVariant {
	out := make([]ProductVariant, 0, len(p.Variants)+1)
	out = append(out, p.MasterVariant)
	return append(out, p.Variants...)
}

// Variant looks up a variant by id.
func (p Product) Variant(id int) (ProductVariant, bool) {
	for _, v := range p.AllVariants() {
		if v.ID == id {
			return v, true
		}
	}
	return ProductVariant{}, false
}

type ProductVariant struct {
	ID         int            `json:"id"`
	SKU        string         `json:"sku,omitempty"`
	Key        string         `json:"key,omitempty"`
	Prices     []Price        `json:"prices"`
	Images     []Image        `json:"images"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Price is an amount in minor currency units.
type Price struct {
	CentAmount     int64  `json:"centAmount"`
	CurrencyCode   string `json:"currencyCode"`
	FractionDigits int    `json:"fractionDigits"`
}

// Amount converts the minor-unit amount to major units.
func (p Price) Amount() decimal.Decimal {
	return decimal.New(p.CentAmount, -int32(p.FractionDigits))
}

type Image struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}
