package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"storefront/internal/domain"
	"storefront/internal/repository/cartslot"
)

var (
	ErrProductRequired = errors.New("product id is required")
	ErrQuantityRange   = fmt.Errorf("quantity must not exceed %d", MaxLineQuantity)
	ErrNegativePrice   = errors.New("price must not be negative")
)

// Store owns one session's cart. Operations are serialised; each runs to
// completion, including its persistence write, before the next starts.
type Store struct {
	key    string
	slot   cartslot.Repository
	logger zerolog.Logger
	now    func() time.Time

	mu   sync.Mutex
	cart *domain.Cart

	busy     atomic.Bool
	lastUsed atomic.Int64
}

// loadStore reads key once. A missing slot yields an empty store; a payload
// that does not decode or fails validation is discarded and the slot cleared.
// Only a failing read is returned as an error.
func loadStore(ctx context.Context, key string, slot cartslot.Repository, logger zerolog.Logger, now func() time.Time) (*Store, error) {
	s := &Store{
		key:    key,
		slot:   slot,
		logger: logger.With().Str("cart_slot", key).Logger(),
		now:    now,
	}
	s.touch()

	payload, err := slot.Load(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart slot: %w", err)
	}

	var stored domain.Cart
	if err := json.Unmarshal(payload, &stored); err != nil || !stored.Validate() {
		s.logger.Warn().Err(err).Msg("discarding unreadable cart slot")
		if err := slot.Clear(ctx, key); err != nil {
			s.logger.Error().Err(err).Msg("clear cart slot")
		}
		return s, nil
	}
	stored.Recalculate()
	s.cart = &stored
	return s, nil
}

// AddItem adds in to the cart, merging quantities with an existing line for
// the same product and variant. A negative quantity is ignored; a merged line
// stops at MaxLineQuantity.
func (s *Store) AddItem(ctx context.Context, in AddItemInput) error {
	if strings.TrimSpace(in.ProductID) == "" {
		return ErrProductRequired
	}
	if in.Quantity > MaxLineQuantity {
		return ErrQuantityRange
	}
	if in.Price.IsNegative() {
		return ErrNegativePrice
	}
	in = in.normalized()
	if in.Quantity < 0 {
		return nil
	}

	s.run(ctx, func(current *domain.Cart) (*domain.Cart, bool) {
		if current != nil && in.Currency != current.Currency && findPair(current.Items, in.ProductID, in.VariantID) < 0 {
			s.logger.Warn().
				Str("cart_currency", current.Currency).
				Str("item_currency", in.Currency).
				Str("product_id", in.ProductID).
				Msg("adding item in a different currency")
		}
		return addItem(current, in, s.now())
	})
	return nil
}

// RemoveItem drops a line. Unknown ids are ignored. Removing the last line
// empties the cart and clears the persisted slot.
func (s *Store) RemoveItem(ctx context.Context, lineItemID string) {
	s.run(ctx, func(current *domain.Cart) (*domain.Cart, bool) {
		return removeItem(current, lineItemID)
	})
}

// UpdateQuantity sets a line's quantity. quantity <= 0 removes the line and
// anything above MaxLineQuantity is capped.
func (s *Store) UpdateQuantity(ctx context.Context, lineItemID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, lineItemID)
		return
	}
	s.run(ctx, func(current *domain.Cart) (*domain.Cart, bool) {
		return setQuantity(current, lineItemID, quantity)
	})
}

// Clear empties the cart and its slot.
func (s *Store) Clear(ctx context.Context) {
	s.run(ctx, func(current *domain.Cart) (*domain.Cart, bool) {
		return nil, current != nil
	})
}

// Cart returns a copy of the current cart, or nil when there is none.
func (s *Store) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.cart.Clone()
}

// Snapshot returns a copy of the cart and its item count, read together.
func (s *Store) Snapshot() (*domain.Cart, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.cart.Clone(), s.cart.ItemCount()
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// Busy reports whether an operation is in flight. It is advisory only.
func (s *Store) Busy() bool {
	return s.busy.Load()
}

// drain hands the current cart to fn and empties the store when fn succeeds.
// The cart is left untouched when fn fails.
func (s *Store) drain(ctx context.Context, fn func(*domain.Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy.Store(true)
	defer s.busy.Store(false)
	s.touch()

	if err := fn(s.cart.Clone()); err != nil {
		return err
	}
	s.cart = nil
	s.persist(ctx)
	return nil
}

func (s *Store) run(ctx context.Context, mutate func(*domain.Cart) (*domain.Cart, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy.Store(true)
	defer s.busy.Store(false)
	s.touch()

	next, changed := mutate(s.cart)
	if !changed {
		return
	}
	s.cart = next
	s.persist(ctx)
}

// persist writes the current cart or clears the slot when the cart is
// absent. Failures are logged; in-memory state stays authoritative.
func (s *Store) persist(ctx context.Context) {
	if s.cart == nil {
		if err := s.slot.Clear(ctx, s.key); err != nil {
			s.logger.Error().Err(err).Msg("clear cart slot")
		}
		return
	}
	payload, err := json.Marshal(s.cart)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode cart")
		return
	}
	if err := s.slot.Save(ctx, s.key, payload); err != nil {
		s.logger.Error().Err(err).Int("version", s.cart.Version).Msg("save cart slot")
	}
}

func (s *Store) touch() {
	s.lastUsed.Store(s.now().UnixNano())
}

func (s *Store) idleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}
