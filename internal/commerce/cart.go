package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/domain"
)

// Cart is the backend cart as returned by the commerce API.
type Cart struct {
	ID                    string         `json:"id"`
	Version               int            `json:"version"`
	State                 string         `json:"state,omitempty"`
	Currency              string         `json:"currency"`
	TotalPrice            domain.Price   `json:"totalPrice"`
	TotalLineItemQuantity int            `json:"totalLineItemQuantity"`
	LineItems             []CartLineItem `json:"lineItems"`
}

type CartLineItem struct {
	ID         string                 `json:"id"`
	ProductID  string                 `json:"productId"`
	VariantID  int                    `json:"variantId"`
	Name       domain.LocalizedString `json:"name"`
	Quantity   int                    `json:"quantity"`
	Price      domain.Price           `json:"price"`
	TotalPrice domain.Price           `json:"totalPrice"`
}

// CartAction is one cart update action. Only the fields used by Action are set.
type CartAction struct {
	Action     string `json:"action"`
	ProductID  string `json:"productId,omitempty"`
	VariantID  int    `json:"variantId,omitempty"`
	LineItemID string `json:"lineItemId,omitempty"`
	Quantity   *int   `json:"quantity,omitempty"`
}

func AddLineItem(productID string, variantID, quantity int) CartAction {
	return CartAction{Action: "addLineItem", ProductID: productID, VariantID: variantID, Quantity: &quantity}
}

func RemoveLineItem(lineItemID string) CartAction {
	return CartAction{Action: "removeLineItem", LineItemID: lineItemID}
}

func ChangeLineItemQuantity(lineItemID string, quantity int) CartAction {
	return CartAction{Action: "changeLineItemQuantity", LineItemID: lineItemID, Quantity: &quantity}
}

type cartDraft struct {
	Currency string `json:"currency"`
	Country  string `json:"country,omitempty"`
}

type cartUpdate struct {
	Version int          `json:"version"`
	Actions []CartAction `json:"actions"`
}

// CreateCart creates an empty backend cart.
func (c *Client) CreateCart(ctx context.Context, currency, country string) (*Cart, error) {
	draft := cartDraft{
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
		Country:  strings.ToUpper(strings.TrimSpace(country)),
	}
	if draft.Currency == "" {
		draft.Currency = "USD"
	}
	var out ctCart
	if err := c.do(ctx, http.MethodPost, "carts", nil, draft, &out); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return out.toCart(), nil
}

// UpdateCart applies actions against version. A stale version is rejected by
// the backend with a 409, surfaced as *StatusError.
func (c *Client) UpdateCart(ctx context.Context, id string, version int, actions []CartAction) (*Cart, error) {
	var out ctCart
	body := cartUpdate{Version: version, Actions: actions}
	if err := c.do(ctx, http.MethodPost, "carts/"+url.PathEscape(id), nil, body, &out); err != nil {
		return nil, fmt.Errorf("update cart %s: %w", id, err)
	}
	return out.toCart(), nil
}
