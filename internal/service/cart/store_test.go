package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repository/cartslot"
)

const testKey = "bt-cart:session-1"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

// Now advances by a millisecond per call so generated ids differ.
func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type failingSlot struct {
	loadErr  error
	payload  []byte
	saveErr  error
	clearErr error
	saves    int
	clears   int
}

func (f *failingSlot) Load(context.Context, string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.payload == nil {
		return nil, domain.ErrNotFound
	}
	return f.payload, nil
}

func (f *failingSlot) Save(context.Context, string, []byte) error {
	f.saves++
	return f.saveErr
}

func (f *failingSlot) Clear(context.Context, string) error {
	f.clears++
	return f.clearErr
}

func newTestStore(t *testing.T) (*Store, *cartslot.Memory) {
	t.Helper()
	mem := cartslot.NewMemory()
	st, err := loadStore(context.Background(), testKey, mem, zerolog.Nop(), newTestClock().Now)
	require.NoError(t, err)
	return st, mem
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func persisted(t *testing.T, mem *cartslot.Memory) *domain.Cart {
	t.Helper()
	payload, err := mem.Load(context.Background(), testKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	require.NoError(t, err)
	var c domain.Cart
	require.NoError(t, json.Unmarshal(payload, &c))
	return &c
}

func TestAddItemCreatesCartWithDefaults(t *testing.T) {
	st, mem := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1"}))

	c := st.Cart()
	require.NotNil(t, c)
	assert.Equal(t, 1, c.Version)
	assert.Regexp(t, `^local-\d+$`, c.ID)
	assert.Equal(t, "USD", c.Currency)
	require.Len(t, c.Items, 1)

	item := c.Items[0]
	assert.Regexp(t, `^p1-1-\d+$`, item.ID)
	assert.Equal(t, "Product", item.Name)
	assert.True(t, item.Price.IsZero())
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, domain.DefaultVariantID, item.Variant.ID)
	assert.Equal(t, 1, st.ItemCount())

	stored := persisted(t, mem)
	require.NotNil(t, stored)
	assert.Equal(t, c.ID, stored.ID)
	assert.Equal(t, c.Version, stored.Version)
}

func TestAddItemSamePairMergesAndKeepsFirstWrite(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1", Name: "Phone", Price: dec("100"), Currency: "USD"}))
	first := st.Cart().Items[0].ID
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1", Name: "Phone2", Price: dec("200"), Currency: "EUR", Quantity: 2}))

	c := st.Cart()
	require.Len(t, c.Items, 1)
	item := c.Items[0]
	assert.Equal(t, first, item.ID)
	assert.Equal(t, "Phone", item.Name)
	assert.True(t, item.Price.Equal(dec("100")))
	assert.Equal(t, "USD", item.Currency)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, c.TotalPrice.Equal(dec("300")), c.TotalPrice.String())
	assert.Equal(t, 2, c.Version)
	assert.Equal(t, 3, st.ItemCount())
}

func TestAddItemDistinctLinesTotal(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "a", Price: dec("10"), Quantity: 2}))
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "b", Price: dec("20")}))

	c := st.Cart()
	require.Len(t, c.Items, 2)
	assert.Equal(t, "a", c.Items[0].ProductID)
	assert.Equal(t, "b", c.Items[1].ProductID)
	assert.True(t, c.TotalPrice.Equal(dec("40")), c.TotalPrice.String())
	assert.Equal(t, 3, st.ItemCount())
}

func TestAddItemVariantsAreSeparateLines(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1", VariantID: 1}))
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1", VariantID: 2, SKU: "sku-2", Attributes: map[string]any{"color": "red"}}))
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p2", VariantID: 1}))

	c := st.Cart()
	require.Len(t, c.Items, 3)
	assert.Equal(t, 2, c.Items[1].Variant.ID)
	assert.Equal(t, "sku-2", c.Items[1].Variant.SKU)
	assert.Equal(t, "red", c.Items[1].Variant.Attributes["color"])
}

func TestAddItemRejectsMissingProduct(t *testing.T) {
	st, mem := newTestStore(t)

	err := st.AddItem(context.Background(), AddItemInput{ProductID: "  "})
	assert.ErrorIs(t, err, ErrProductRequired)
	assert.Nil(t, st.Cart())
	assert.Nil(t, persisted(t, mem))
}

func TestAddItemNegativeQuantityIsIgnored(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1"}))

	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1", Quantity: -3}))

	c := st.Cart()
	assert.Equal(t, 1, c.Version)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestAddItemMixedCurrencyKeepsItemCurrency(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1", Price: dec("1"), Currency: "gbp"}))
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p2", Price: dec("2"), Currency: "EUR"}))

	c := st.Cart()
	assert.Equal(t, "GBP", c.Currency)
	assert.Equal(t, "EUR", c.Items[1].Currency)
	assert.True(t, c.TotalPrice.Equal(dec("3")))
}

func TestRemoveItem(t *testing.T) {
	st, mem := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "a", Price: dec("10"), Quantity: 2}))
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "b", Price: dec("20")}))
	c := st.Cart()

	st.RemoveItem(ctx, "missing")
	assert.Equal(t, c.Version, st.Cart().Version)

	st.RemoveItem(ctx, c.Items[0].ID)
	after := st.Cart()
	require.Len(t, after.Items, 1)
	assert.Equal(t, "b", after.Items[0].ProductID)
	assert.Equal(t, c.Version+1, after.Version)
	assert.True(t, after.TotalPrice.Equal(dec("20")))

	st.RemoveItem(ctx, after.Items[0].ID)
	assert.Nil(t, st.Cart())
	assert.Equal(t, 0, st.ItemCount())
	assert.Nil(t, persisted(t, mem))
}

func TestRemoveItemOnAbsentCart(t *testing.T) {
	st, _ := newTestStore(t)
	st.RemoveItem(context.Background(), "anything")
	assert.Nil(t, st.Cart())
}

func TestUpdateQuantity(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "a", Price: dec("2.50")}))
	id := st.Cart().Items[0].ID

	st.UpdateQuantity(ctx, id, 4)
	c := st.Cart()
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.True(t, c.TotalPrice.Equal(dec("10")))
	assert.Equal(t, 2, c.Version)

	st.UpdateQuantity(ctx, "missing", 9)
	assert.Equal(t, 2, st.Cart().Version)
}

func TestUpdateQuantityNonPositiveRemoves(t *testing.T) {
	for _, qty := range []int{0, -5} {
		t.Run(fmt.Sprint(qty), func(t *testing.T) {
			st, mem := newTestStore(t)
			ctx := context.Background()
			require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "a"}))

			st.UpdateQuantity(ctx, st.Cart().Items[0].ID, qty)

			assert.Nil(t, st.Cart())
			assert.Nil(t, persisted(t, mem))
		})
	}
}

func TestClear(t *testing.T) {
	st, mem := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "a"}))

	st.Clear(ctx)
	assert.Nil(t, st.Cart())
	assert.Nil(t, persisted(t, mem))

	st.Clear(ctx)
	assert.Nil(t, st.Cart())
}

func TestCartReturnsCopy(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "a", Attributes: map[string]any{"size": "M"}}))

	c := st.Cart()
	c.Items[0].Quantity = 99
	c.Items[0].Variant.Attributes["size"] = "XL"

	fresh := st.Cart()
	assert.Equal(t, 1, fresh.Items[0].Quantity)
	assert.Equal(t, "M", fresh.Items[0].Variant.Attributes["size"])
}

func TestLoadStoreRestoresSlot(t *testing.T) {
	mem := cartslot.NewMemory()
	ctx := context.Background()
	payload := []byte(`{"id":"local-1","version":3,"currency":"USD","totalPrice":"0",
		"items":[{"id":"a-1-1","productId":"a","name":"A","quantity":2,"price":"5","currency":"USD","variant":{"id":1}}]}`)
	require.NoError(t, mem.Save(ctx, testKey, payload))

	st, err := loadStore(ctx, testKey, mem, zerolog.Nop(), newTestClock().Now)
	require.NoError(t, err)

	c := st.Cart()
	require.NotNil(t, c)
	assert.Equal(t, 3, c.Version)
	assert.True(t, c.TotalPrice.Equal(dec("10")), "total is recomputed on load")
	assert.Equal(t, 2, st.ItemCount())
}

func TestLoadStoreDiscardsBadSlot(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"id":`,
		"no items":      `{"id":"local-1","version":1,"items":[]}`,
		"zero quantity": `{"id":"local-1","version":1,"items":[{"id":"a","productId":"a","quantity":0}]}`,
		"zero version":  `{"id":"local-1","version":0,"items":[{"id":"a","productId":"a","quantity":1}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			mem := cartslot.NewMemory()
			ctx := context.Background()
			require.NoError(t, mem.Save(ctx, testKey, []byte(payload)))

			st, err := loadStore(ctx, testKey, mem, zerolog.Nop(), newTestClock().Now)
			require.NoError(t, err)
			assert.Nil(t, st.Cart())
			assert.Nil(t, persisted(t, mem))
		})
	}
}

func TestLoadStoreReturnsReadFailure(t *testing.T) {
	slot := &failingSlot{loadErr: errors.New("connection refused")}
	_, err := loadStore(context.Background(), testKey, slot, zerolog.Nop(), time.Now)
	assert.ErrorContains(t, err, "connection refused")
}

func TestPersistenceFailuresAreNotSurfaced(t *testing.T) {
	slot := &failingSlot{saveErr: errors.New("disk full"), clearErr: errors.New("disk full")}
	st, err := loadStore(context.Background(), testKey, slot, zerolog.Nop(), newTestClock().Now)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "a", Quantity: 2}))
	assert.Equal(t, 2, st.ItemCount())
	assert.Equal(t, 1, slot.saves)

	st.RemoveItem(ctx, st.Cart().Items[0].ID)
	assert.Nil(t, st.Cart())
	assert.Equal(t, 1, slot.clears)
}

func TestLineQuantityIsCapped(t *testing.T) {
	st, mem := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1", Quantity: 900, Price: dec("2")}))
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1", Quantity: 200}))
	c := st.Cart()
	require.Len(t, c.Items, 1)
	assert.Equal(t, MaxLineQuantity, c.Items[0].Quantity)
	assert.Equal(t, 2, c.Version)
	assert.True(t, c.TotalPrice.Equal(dec("1998")))

	// already at the cap: nothing changes
	require.NoError(t, st.AddItem(ctx, AddItemInput{ProductID: "p1", Quantity: 1}))
	assert.Equal(t, 2, st.Cart().Version)

	st.UpdateQuantity(ctx, c.Items[0].ID, math.MaxInt)
	c = st.Cart()
	assert.Equal(t, MaxLineQuantity, c.Items[0].Quantity)
	assert.Equal(t, 3, c.Version)

	assert.ErrorIs(t, st.AddItem(ctx, AddItemInput{ProductID: "p1", Quantity: math.MaxInt}), ErrQuantityRange)
	assert.ErrorIs(t, st.AddItem(ctx, AddItemInput{ProductID: "p2", Quantity: MaxLineQuantity + 1}), ErrQuantityRange)
	assert.Equal(t, 3, st.Cart().Version)

	reloaded, err := loadStore(ctx, testKey, mem, zerolog.Nop(), newTestClock().Now)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Cart())
	assert.Equal(t, MaxLineQuantity, reloaded.ItemCount())
}

func TestAddItemRejectsNegativePrice(t *testing.T) {
	st, mem := newTestStore(t)

	err := st.AddItem(context.Background(), AddItemInput{ProductID: "p1", Price: dec("-1")})
	assert.ErrorIs(t, err, ErrNegativePrice)
	assert.Nil(t, st.Cart())
	assert.Nil(t, persisted(t, mem))
}

func TestBusyIsFalseBetweenOperations(t *testing.T) {
	st, _ := newTestStore(t)
	assert.False(t, st.Busy())
	require.NoError(t, st.AddItem(context.Background(), AddItemInput{ProductID: "a"}))
	assert.False(t, st.Busy())
}

// Random operation sequences must keep the total, count and version rules
// and leave the slot mirroring memory after every step. A mutation bumps the
// version by exactly one; a no-op leaves it alone.
func TestRandomSequencesHoldInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []string{"a", "b", "c"}
	prices := []string{"0", "1.99", "10", "0.01"}

	for run := 0; run < 50; run++ {
		st, mem := newTestStore(t)
		ctx := context.Background()

		for step := 0; step < 40; step++ {
			before := st.Cart()
			mutated := true
			switch op := rng.Intn(4); {
			case op == 0 || before == nil:
				qty := rng.Intn(4) - 1
				mutated = qty >= 0
				err := st.AddItem(ctx, AddItemInput{
					ProductID: products[rng.Intn(len(products))],
					VariantID: rng.Intn(3),
					Quantity:  qty,
					Price:     dec(prices[rng.Intn(len(prices))]),
				})
				require.NoError(t, err)
			case op == 1:
				st.RemoveItem(ctx, before.Items[rng.Intn(len(before.Items))].ID)
			case op == 2:
				st.UpdateQuantity(ctx, before.Items[rng.Intn(len(before.Items))].ID, rng.Intn(5)-1)
			default:
				mutated = false
				if rng.Intn(2) == 0 {
					st.RemoveItem(ctx, "unknown")
				} else {
					st.UpdateQuantity(ctx, "unknown", rng.Intn(3)+1)
				}
			}

			c := st.Cart()
			stored := persisted(t, mem)
			if c == nil {
				assert.Nil(t, stored)
				assert.Equal(t, 0, st.ItemCount())
				if !mutated {
					assert.Nil(t, before)
				}
				continue
			}

			switch {
			case !mutated:
				require.NotNil(t, before)
				assert.Equal(t, before.Version, c.Version, "no-op changed the version")
			case before == nil:
				assert.Equal(t, 1, c.Version)
			default:
				assert.Equal(t, before.Version+1, c.Version, "mutation must bump the version once")
			}

			require.NotNil(t, stored)
			assert.Equal(t, c.Version, stored.Version)

			total := decimal.Zero
			count := 0
			ids := map[string]bool{}
			pairs := map[string]bool{}
			for _, item := range c.Items {
				require.GreaterOrEqual(t, item.Quantity, 1)
				require.LessOrEqual(t, item.Quantity, MaxLineQuantity)
				total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
				count += item.Quantity
				assert.False(t, ids[item.ID], "duplicate line id %s", item.ID)
				ids[item.ID] = true
				pair := fmt.Sprintf("%s/%d", item.ProductID, item.Variant.ID)
				assert.False(t, pairs[pair], "duplicate pair %s", pair)
				pairs[pair] = true
			}
			assert.True(t, c.TotalPrice.Equal(total), "total %s != %s", c.TotalPrice, total)
			assert.True(t, stored.TotalPrice.Equal(total))
			assert.Equal(t, count, st.ItemCount())
		}
	}
}

func TestConcurrentAddsAreSerialised(t *testing.T) {
	st, mem := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.AddItem(ctx, AddItemInput{ProductID: "a", Price: dec("1")})
		}()
	}
	wg.Wait()

	c := st.Cart()
	assert.Equal(t, 20, st.ItemCount())
	assert.Equal(t, 20, c.Version)
	assert.Equal(t, 20, persisted(t, mem).Version)
}
