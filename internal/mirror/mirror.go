// Package mirror holds the local, persisted approximation of the remote cart.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/port"
)

// Mirror owns the cart snapshot. In-memory mutations are serialized; persistence writes
// the snapshot current at the time of the call, so interleaved operations resolve as last
// write wins.
type Mirror struct {
	store port.KVStore
	key   string

	mu       sync.RWMutex
	snapshot domain.Snapshot
}

func New(store port.KVStore, key string) *Mirror {
	return &Mirror{
		store:    store,
		key:      key,
		snapshot: domain.NewSnapshot(nil),
	}
}

// Snapshot returns a copy of the current snapshot.
func (m *Mirror) Snapshot() domain.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshot.Clone()
}

func (m *Mirror) Contains(productID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.snapshot.Find(productID)
	return ok
}

// Replace overwrites the items, recomputing the total from scratch.
func (m *Mirror) Replace(items []domain.CartItem) domain.Snapshot {
	return m.mutate(func(domain.Snapshot) domain.Snapshot {
		return domain.NewSnapshot(items)
	})
}

func (m *Mirror) MergeAdd(item domain.CartItem) domain.Snapshot {
	return m.mutate(func(s domain.Snapshot) domain.Snapshot {
		return s.MergeAdd(item)
	})
}

// Remove drops productID and reports whether it was present.
func (m *Mirror) Remove(productID string) (domain.Snapshot, bool) {
	var removed bool

	snapshot := m.mutate(func(s domain.Snapshot) domain.Snapshot {
		var next domain.Snapshot
		next, removed = s.Without(productID)
		return next
	})

	return snapshot, removed
}

// Persist writes the current items to the store.
func (m *Mirror) Persist(ctx context.Context) error {
	value, err := encodeItems(m.Snapshot().Items)
	if err != nil {
		return errors.Join(domain.ErrPersistence, fmt.Errorf("encodeItems: %w", err))
	}

	if err := m.store.Set(ctx, m.key, value); err != nil {
		return errors.Join(domain.ErrPersistence, fmt.Errorf("store.Set: %w", err))
	}

	return nil
}

// Load replaces the in-memory snapshot with the persisted items. A missing entry is an
// empty cart.
func (m *Mirror) Load(ctx context.Context) (domain.Snapshot, error) {
	value, err := m.store.Get(ctx, m.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return m.Replace(nil), nil
	}
	if err != nil {
		return domain.Snapshot{}, errors.Join(domain.ErrPersistence, fmt.Errorf("store.Get: %w", err))
	}

	items, err := decodeItems(value)
	if err != nil {
		return domain.Snapshot{}, errors.Join(domain.ErrPersistence, fmt.Errorf("decodeItems: %w", err))
	}

	return m.Replace(items), nil
}

// Clear removes the persisted items and empties the snapshot. The snapshot is emptied
// even when the store fails.
func (m *Mirror) Clear(ctx context.Context) error {
	m.Replace(nil)

	if err := m.store.Remove(ctx, m.key); err != nil {
		return errors.Join(domain.ErrPersistence, fmt.Errorf("store.Remove: %w", err))
	}
	return nil
}

func (m *Mirror) mutate(fn func(domain.Snapshot) domain.Snapshot) domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = fn(m.snapshot)
	return m.snapshot.Clone()
}
