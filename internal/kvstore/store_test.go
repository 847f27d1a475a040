package kvstore_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore checks the KVStore contract shared by every adapter.
func testStore(t *testing.T, store port.KVStore) {
	t.Helper()

	t.Run("get missing key: key not found", func(t *testing.T) {
		_, err := store.Get(t.Context(), gofakeit.UUID())
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("set then get: ok", func(t *testing.T) {
		ctx := t.Context()
		key, value := gofakeit.UUID(), gofakeit.Sentence(5)

		require.NoError(t, store.Set(ctx, key, value))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("set overwrites: ok", func(t *testing.T) {
		ctx := t.Context()
		key := gofakeit.UUID()

		require.NoError(t, store.Set(ctx, key, "first"))
		require.NoError(t, store.Set(ctx, key, "second"))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("remove then get: key not found", func(t *testing.T) {
		ctx := t.Context()
		key := gofakeit.UUID()

		require.NoError(t, store.Set(ctx, key, "value"))
		require.NoError(t, store.Remove(ctx, key))

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("remove missing key: ok", func(t *testing.T) {
		assert.NoError(t, store.Remove(t.Context(), gofakeit.UUID()))
	})
}
