package mirror_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/kvstore"
	"github.com/nikolayk812/cartmirror/internal/mirror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

const itemsKey = "cart_items"

func TestMirror_MergeAdd(t *testing.T) {
	m := mirror.New(kvstore.NewMemory(), itemsKey)

	m.MergeAdd(newItem("X", 2))
	snapshot := m.MergeAdd(newItem("X", 3))

	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, 5, snapshot.Items[0].Quantity)
	assert.Equal(t, 5, snapshot.TotalItems)
	assert.True(t, m.Contains("X"))
}

func TestMirror_Replace(t *testing.T) {
	m := mirror.New(kvstore.NewMemory(), itemsKey)
	m.MergeAdd(newItem("old", 9))

	snapshot := m.Replace([]domain.CartItem{newItem("X", 1), newItem("Y", 2), newItem("X", 1)})

	assertSnapshot(t, []domain.CartItem{newItem("X", 2), newItem("Y", 2)}, snapshot)
	assert.False(t, m.Contains("old"))
}

func TestMirror_Remove(t *testing.T) {
	m := mirror.New(kvstore.NewMemory(), itemsKey)
	m.Replace([]domain.CartItem{newItem("X", 2), newItem("Y", 3)})

	snapshot, removed := m.Remove("X")
	assert.True(t, removed)
	assertSnapshot(t, []domain.CartItem{newItem("Y", 3)}, snapshot)

	snapshot, removed = m.Remove("X")
	assert.False(t, removed)
	assertSnapshot(t, []domain.CartItem{newItem("Y", 3)}, snapshot)
}

func TestMirror_SnapshotIsACopy(t *testing.T) {
	m := mirror.New(kvstore.NewMemory(), itemsKey)
	m.MergeAdd(newItem("X", 1))

	snapshot := m.Snapshot()
	snapshot.Items[0].Quantity = 100

	assert.Equal(t, 1, m.Snapshot().Items[0].Quantity)
}

func TestMirror_PersistLoadRoundTrip(t *testing.T) {
	ctx := t.Context()
	store := kvstore.NewMemory()

	written := mirror.New(store, itemsKey)
	for range 5 {
		written.MergeAdd(domain.CartItem{
			CartID:    "cart-1",
			ProductID: gofakeit.UUID(),
			Price: domain.Money{
				Amount:   decimal.NewFromFloat(gofakeit.Price(1, 2000)).Round(2),
				Currency: currency.EUR,
			},
			Quantity: gofakeit.Number(1, 9),
		})
	}
	require.NoError(t, written.Persist(ctx))

	read := mirror.New(store, itemsKey)
	snapshot, err := read.Load(ctx)
	require.NoError(t, err)

	assertSnapshot(t, written.Snapshot().Items, snapshot)
}

func TestMirror_Load(t *testing.T) {
	tests := []struct {
		name      string
		stored    *string
		wantItems []domain.CartItem
		wantError string
	}{
		{
			name:      "nothing persisted: empty cart",
			stored:    nil,
			wantItems: []domain.CartItem{},
		},
		{
			name:      "persisted list: ok",
			stored:    ptr(`[{"cartId":"cart-1","productId":"X","priceAmount":"10","priceCurrency":"USD","quantity":2}]`),
			wantItems: []domain.CartItem{newItem("X", 2)},
		},
		{
			name:      "zero quantity line: dropped",
			stored:    ptr(`[{"cartId":"cart-1","productId":"X","priceAmount":"10","priceCurrency":"USD","quantity":2},{"cartId":"cart-1","productId":"Y","priceAmount":"5","priceCurrency":"USD","quantity":0}]`),
			wantItems: []domain.CartItem{newItem("X", 2)},
		},
		{
			name:      "corrupted value: persistence failure",
			stored:    ptr(`[{"cartId":`),
			wantError: "decodeItems: json.Unmarshal",
		},
		{
			name:      "unknown currency: persistence failure",
			stored:    ptr(`[{"cartId":"cart-1","productId":"X","priceAmount":"10","priceCurrency":"ZZZ1","quantity":2}]`),
			wantError: "currency[ZZZ1] is not valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			store := kvstore.NewMemory()
			if tt.stored != nil {
				require.NoError(t, store.Set(ctx, itemsKey, *tt.stored))
			}

			snapshot, err := mirror.New(store, itemsKey).Load(ctx)
			if tt.wantError != "" {
				require.ErrorIs(t, err, domain.ErrPersistence)
				require.ErrorContains(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assertSnapshot(t, tt.wantItems, snapshot)
		})
	}
}

func TestMirror_Clear(t *testing.T) {
	ctx := t.Context()
	store := kvstore.NewMemory()
	m := mirror.New(store, itemsKey)

	m.MergeAdd(newItem("X", 2))
	require.NoError(t, m.Persist(ctx))

	require.NoError(t, m.Clear(ctx))

	assert.True(t, m.Snapshot().IsEmpty())
	_, err := store.Get(ctx, itemsKey)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestMirror_PersistFailure(t *testing.T) {
	m := mirror.New(brokenStore{}, itemsKey)
	m.MergeAdd(newItem("X", 1))

	err := m.Persist(t.Context())
	assert.ErrorIs(t, err, domain.ErrPersistence)

	err = m.Clear(t.Context())
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, m.Snapshot().IsEmpty())
}

func newItem(productID string, quantity int) domain.CartItem {
	return domain.CartItem{
		CartID:    "cart-1",
		ProductID: productID,
		Price:     domain.Money{Amount: decimal.NewFromInt(10), Currency: currency.USD},
		Quantity:  quantity,
	}
}

func assertSnapshot(t *testing.T, wantItems []domain.CartItem, actual domain.Snapshot) {
	t.Helper()

	currencyComparer := cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})

	assert.Empty(t, cmp.Diff(wantItems, actual.Items, currencyComparer))
	assert.Equal(t, domain.TotalQuantity(wantItems), actual.TotalItems)
}

func ptr(s string) *string {
	return &s
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, error) {
	return "", errors.New("disk full")
}

func (brokenStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func (brokenStore) Remove(context.Context, string) error {
	return errors.New("disk full")
}
