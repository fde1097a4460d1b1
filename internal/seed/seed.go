package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/service/cart"
)

type itemSeed struct {
	ProductID  string
	SKU        string
	Name       string
	PriceCents int64
	Currency   string
	Quantity   int
}

var demoItems = []itemSeed{
	{
		ProductID:  "demo-shirt",
		SKU:        "SKU-DEMO-TSHIRT",
		Name:       "Demo T-Shirt",
		PriceCents: 1999,
		Currency:   "USD",
		Quantity:   2,
	},
	{
		ProductID:  "demo-mug",
		SKU:        "SKU-DEMO-MUG",
		Name:       "Demo Mug",
		PriceCents: 1299,
		Currency:   "USD",
		Quantity:   1,
	},
}

// Apply replaces the cart of sessionID with the demo items for manual
// testing. Running it again yields the same cart.
func Apply(ctx context.Context, sessions *cart.Sessions, sessionID string) (*domain.Cart, error) {
	st, err := sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	st.Clear(ctx)

	for _, item := range demoItems {
		in := cart.AddItemInput{
			ProductID: item.ProductID,
			VariantID: domain.DefaultVariantID,
			SKU:       item.SKU,
			Name:      item.Name,
			Price:     decimal.New(item.PriceCents, -2),
			Currency:  item.Currency,
			Quantity:  item.Quantity,
		}
		if err := st.AddItem(ctx, in); err != nil {
			return nil, fmt.Errorf("add %s: %w", item.ProductID, err)
		}
	}
	return st.Cart(), nil
}
