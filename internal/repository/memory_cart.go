package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/port"
)

var _ port.CartRepository = (*MemoryCart)(nil)

// MemoryCart is an in-process CartRepository with the same merge semantics as the
// postgres one.
type MemoryCart struct {
	mu    sync.RWMutex
	carts map[domain.CartID][]domain.CartItem
}

func NewMemoryCart() *MemoryCart {
	return &MemoryCart{
		carts: make(map[domain.CartID][]domain.CartItem),
	}
}

func (r *MemoryCart) GetCart(_ context.Context, cartID domain.CartID) ([]domain.CartItem, error) {
	if cartID == "" {
		return nil, fmt.Errorf("cartID is empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.CartItem, len(r.carts[cartID]))
	copy(items, r.carts[cartID])

	return items, nil
}

func (r *MemoryCart) AddItem(_ context.Context, item domain.CartItem) (domain.CartItem, error) {
	if item.CartID == "" {
		return domain.CartItem{}, fmt.Errorf("cartID is empty")
	}
	if item.ProductID == "" {
		return domain.CartItem{}, fmt.Errorf("productID is empty")
	}
	if item.Quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("quantity must be positive")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := domain.NewSnapshot(r.carts[item.CartID]).MergeAdd(item)
	r.carts[item.CartID] = snapshot.Items

	stored, _ := snapshot.Find(item.ProductID)
	return stored, nil
}

func (r *MemoryCart) UpdateQuantity(_ context.Context, cartID domain.CartID, productID string, quantity int) (bool, error) {
	if cartID == "" {
		return false, fmt.Errorf("cartID is empty")
	}
	if quantity < 1 {
		return false, fmt.Errorf("quantity must be positive")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.carts[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			return true, nil
		}
	}

	return false, nil
}

func (r *MemoryCart) DeleteItem(_ context.Context, cartID domain.CartID, productID string) (bool, error) {
	if cartID == "" {
		return false, fmt.Errorf("cartID is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot, deleted := domain.NewSnapshot(r.carts[cartID]).Without(productID)
	if deleted {
		r.carts[cartID] = snapshot.Items
	}

	return deleted, nil
}
