package commerce

import (
	"strings"

	"storefront/internal/domain"
)

type pagedResponse[T any] struct {
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Count   int `json:"count"`
	Total   int `json:"total,omitempty"`
	Results []T `json:"results"`
}

type ctProductProjection struct {
	ID            string            `json:"id"`
	Key           string            `json:"key,omitempty"`
	Version       int               `json:"version"`
	Name          map[string]string `json:"name"`
	Description   map[string]string `json:"description,omitempty"`
	Slug          map[string]string `json:"slug"`
	MasterVariant ctVariant         `json:"masterVariant"`
	Variants      []ctVariant       `json:"variants"`
	Categories    []ctRef           `json:"categories"`
}

type ctVariant struct {
	ID         int           `json:"id"`
	SKU        string        `json:"sku,omitempty"`
	Key        string        `json:"key,omitempty"`
	Prices     []ctPrice     `json:"prices"`
	Images     []ctImage     `json:"images"`
	Attributes []ctAttribute `json:"attributes"`
}

type ctAttribute struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type ctPrice struct {
	ID    string       `json:"id,omitempty"`
	Value ctPriceValue `json:"value"`
}

type ctPriceValue struct {
	Type           string `json:"type"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits"`
}

type ctImage struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

type ctRef struct {
	TypeID string `json:"typeId,omitempty"`
	ID     string `json:"id,omitempty"`
}

type ctCategory struct {
	ID          string            `json:"id"`
	Key         string            `json:"key,omitempty"`
	Name        map[string]string `json:"name"`
	Slug        map[string]string `json:"slug"`
	Description map[string]string `json:"description,omitempty"`
	OrderHint   string            `json:"orderHint,omitempty"`
	Parent      *ctRef            `json:"parent,omitempty"`
}

type ctCart struct {
	ID                    string       `json:"id"`
	Version               int          `json:"version"`
	CartState             string       `json:"cartState"`
	LineItems             []ctLineItem `json:"lineItems"`
	TotalPrice            ctPriceValue `json:"totalPrice"`
	TotalLineItemQuantity int          `json:"totalLineItemQuantity,omitempty"`
}

type ctLineItem struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"productId"`
	Name       map[string]string `json:"name"`
	Variant    ctVariant         `json:"variant"`
	Price      ctPrice           `json:"price"`
	Quantity   int               `json:"quantity"`
	TotalPrice ctPriceValue      `json:"totalPrice"`
}

func (p ctProductProjection) toDomain() domain.Product {
	out := domain.Product{
		ID:            p.ID,
		Key:           p.Key,
		Version:       p.Version,
		Name:          p.Name,
		Description:   p.Description,
		Slug:          p.Slug,
		MasterVariant: p.MasterVariant.toDomain(),
		Variants:      make([]domain.ProductVariant, 0, len(p.Variants)),
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, v.toDomain())
	}
	for _, c := range p.Categories {
		if c.ID != "" {
			out.CategoryIDs = append(out.CategoryIDs, c.ID)
		}
	}
	return out
}

func (v ctVariant) toDomain() domain.ProductVariant {
	out := domain.ProductVariant{
		ID:     v.ID,
		SKU:    v.SKU,
		Key:    v.Key,
		Prices: make([]domain.Price, 0, len(v.Prices)),
		Images: make([]domain.Image, 0, len(v.Images)),
	}
	for _, p := range v.Prices {
		out.Prices = append(out.Prices, p.Value.toDomain())
	}
	for _, img := range v.Images {
		if strings.TrimSpace(img.URL) == "" {
			continue
		}
		out.Images = append(out.Images, domain.Image{URL: img.URL, Label: img.Label})
	}
	if len(v.Attributes) > 0 {
		out.Attributes = make(map[string]any, len(v.Attributes))
		for _, a := range v.Attributes {
			out.Attributes[a.Name] = a.Value
		}
	}
	return out
}

func (p ctPriceValue) toDomain() domain.Price {
	return domain.Price{
		CentAmount:     p.CentAmount,
		CurrencyCode:   p.CurrencyCode,
		FractionDigits: p.FractionDigits,
	}
}

func (c ctCategory) toDomain() domain.Category {
	out := domain.Category{
		ID:          c.ID,
		Key:         c.Key,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		OrderHint:   c.OrderHint,
	}
	if c.Parent != nil {
		out.ParentID = c.Parent.ID
	}
	return out
}

func (c ctCart) toCart() *Cart {
	out := &Cart{
		ID:                    c.ID,
		Version:               c.Version,
		State:                 c.CartState,
		Currency:              c.TotalPrice.CurrencyCode,
		TotalPrice:            c.TotalPrice.toDomain(),
		TotalLineItemQuantity: c.TotalLineItemQuantity,
		LineItems:             make([]CartLineItem, 0, len(c.LineItems)),
	}
	for _, li := range c.LineItems {
		out.LineItems = append(out.LineItems, CartLineItem{
			ID:         li.ID,
			ProductID:  li.ProductID,
			VariantID:  li.Variant.ID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			Price:      li.Price.Value.toDomain(),
			TotalPrice: li.TotalPrice.toDomain(),
		})
	}
	return out
}
