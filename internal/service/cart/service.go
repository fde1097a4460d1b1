package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"storefront/internal/commerce"
	"storefront/internal/domain"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUnavailableItem = errors.New("cart item is no longer available")
)

// Backend is the remote cart API a checkout is replayed into.
type Backend interface {
	ProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateCart(ctx context.Context, currency, country string) (*commerce.Cart, error)
	UpdateCart(ctx context.Context, id string, version int, actions []commerce.CartAction) (*commerce.Cart, error)
}

// Service ties session stores to the commerce backend.
type Service struct {
	sessions *Sessions
	backend  Backend
	country  string
	logger   zerolog.Logger
}

func NewService(sessions *Sessions, backend Backend, country string, logger zerolog.Logger) *Service {
	return &Service{sessions: sessions, backend: backend, country: country, logger: logger}
}

// Store returns the cart store of sessionID.
func (s *Service) Store(ctx context.Context, sessionID string) (*Store, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Checkout creates a backend cart holding every local line item and, once the
// backend accepted them, empties the local cart. On failure the local cart is
// left as it was.
func (s *Service) Checkout(ctx context.Context, sessionID string) (*commerce.Cart, error) {
	st, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.backend == nil {
		return nil, errors.New("checkout backend not configured")
	}

	var remote *commerce.Cart
	err = st.drain(ctx, func(local *domain.Cart) error {
		if local == nil || len(local.Items) == 0 {
			return ErrEmptyCart
		}
		if err := s.checkVariants(ctx, local); err != nil {
			return err
		}
		created, err := s.backend.CreateCart(ctx, local.Currency, s.country)
		if err != nil {
			return fmt.Errorf("create backend cart: %w", err)
		}
		updated, err := s.backend.UpdateCart(ctx, created.ID, created.Version, lineItemActions(local))
		if err != nil {
			return fmt.Errorf("add line items to backend cart %s: %w", created.ID, err)
		}
		remote = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("backend_cart_id", remote.ID).
		Int("backend_version", remote.Version).
		Msg("cart checked out")
	return remote, nil
}

// checkVariants makes sure every line still names a product variant the
// backend knows, fetching each product once.
func (s *Service) checkVariants(ctx context.Context, c *domain.Cart) error {
	products := make(map[string]*domain.Product, len(c.Items))
	for _, item := range c.Items {
		p, ok := products[item.ProductID]
		if !ok {
			var err error
			p, err = s.backend.ProductByID(ctx, item.ProductID)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("line %s: product %s: %w", item.ID, item.ProductID, ErrUnavailableItem)
			}
			if err != nil {
				return fmt.Errorf("look up product %s: %w", item.ProductID, err)
			}
			products[item.ProductID] = p
		}
		if _, ok := p.Variant(item.Variant.ID); !ok {
			return fmt.Errorf("line %s: variant %d of product %s: %w", item.ID, item.Variant.ID, item.ProductID, ErrUnavailableItem)
		}
	}
	return nil
}

func lineItemActions(c *domain.Cart) []commerce.CartAction {
	actions := make([]commerce.CartAction, 0, len(c.Items))
	for _, item := range c.Items {
		actions = append(actions, commerce.AddLineItem(item.ProductID, item.Variant.ID, item.Quantity))
	}
	return actions
}
