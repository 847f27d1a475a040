// Package identity keeps the durable cart identifier of the current device.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/port"
	"golang.org/x/sync/singleflight"
)

type Manager struct {
	store port.KVStore
	key   string
	sfg   singleflight.Group
	newID func() string
}

func NewManager(store port.KVStore, key string) *Manager {
	return &Manager{
		store: store,
		key:   key,
		newID: uuid.NewString,
	}
}

// GetOrCreate returns the persisted cart ID, generating and persisting a new one when
// absent. An ID that could not be persisted is never returned. A caller whose ctx ends
// returns ctx.Err() while the shared generation keeps going for the others.
func (m *Manager) GetOrCreate(ctx context.Context) (domain.CartID, error) {
	// Concurrent first calls share one generation so they agree on the ID.
	ch := m.sfg.DoChan(m.key, func() (any, error) {
		return m.getOrCreate(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(domain.CartID), nil
	}
}

func (m *Manager) getOrCreate(ctx context.Context) (domain.CartID, error) {
	id, found, err := m.Current(ctx)
	if err != nil {
		return "", err
	}
	if found {
		return id, nil
	}

	id = domain.CartID(m.newID())
	if err := m.store.Set(ctx, m.key, id.String()); err != nil {
		return "", errors.Join(domain.ErrPersistence, fmt.Errorf("store.Set: %w", err))
	}

	return id, nil
}

// Current reads the persisted cart ID without creating one.
func (m *Manager) Current(ctx context.Context) (domain.CartID, bool, error) {
	value, err := m.store.Get(ctx, m.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Join(domain.ErrPersistence, fmt.Errorf("store.Get: %w", err))
	}
	if value == "" {
		return "", false, nil
	}

	return domain.CartID(value), true, nil
}

// Clear forgets the cart ID. The next GetOrCreate generates a fresh one.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Remove(ctx, m.key); err != nil {
		return errors.Join(domain.ErrPersistence, fmt.Errorf("store.Remove: %w", err))
	}
	return nil
}
