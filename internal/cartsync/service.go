// Package cartsync keeps the local cart mirror consistent with the remote cart.
//
// Add, UpdateQuantity and Delete call the remote service first and mutate the mirror only
// after it confirmed. Reload is the only operation that shows data without a fresh remote
// confirmation, and Clear is the only one that forgets the cart identifier. Concurrent
// operations on the same product are not serialized: the last mirror write wins.
package cartsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/identity"
	"github.com/nikolayk812/cartmirror/internal/mirror"
	"github.com/nikolayk812/cartmirror/internal/port"
)

const (
	cartIDKey    = "cart_id"
	cartItemsKey = "cart_items"
)

type Service struct {
	remote   port.RemoteCart
	identity *identity.Manager
	mirror   *mirror.Mirror
	logger   *slog.Logger

	tracker *tracker
}

func New(remote port.RemoteCart, ids *identity.Manager, m *mirror.Mirror, logger *slog.Logger) *Service {
	return &Service{
		remote:   remote,
		identity: ids,
		mirror:   m,
		logger:   logger,
		tracker:  newTracker(),
	}
}

// NewWithStore wires the identity manager and mirror over one store, with keys
// namespaced by keyPrefix.
func NewWithStore(remote port.RemoteCart, store port.KVStore, keyPrefix string, logger *slog.Logger) *Service {
	return New(
		remote,
		identity.NewManager(store, keyPrefix+cartIDKey),
		mirror.New(store, keyPrefix+cartItemsKey),
		logger,
	)
}

// Add adds quantity of productID to the remote cart, creating the cart identifier on
// first use, and merges the line into the mirror once the remote accepted it.
func (s *Service) Add(ctx context.Context, productID string, price domain.Money, quantity int) error {
	if err := validateProductID(productID); err != nil {
		return s.reject(domain.OpAdd, productID, err)
	}
	if quantity < 1 {
		return s.reject(domain.OpAdd, productID, fmt.Errorf("quantity must be positive"))
	}

	f := s.begin(domain.OpAdd, productID)

	cartID, err := s.identity.GetOrCreate(ctx)
	if err != nil {
		return f.fail(err)
	}

	item := domain.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Price:     price,
		Quantity:  quantity,
	}

	stored, err := s.remote.AddItem(ctx, item)
	if err != nil {
		return f.fail(err)
	}

	// the remote price is authoritative, the quantity delta is ours
	if stored.ProductID == productID {
		item.Price = stored.Price
	}

	return f.commit(func() error {
		s.mirror.MergeAdd(item)
		return s.mirror.Persist(ctx)
	})
}

// UpdateQuantity sets the quantity of productID and then reconciles the mirror with the
// full remote cart. A quantity below one deletes the line. When no cart identifier is
// persisted there is no remote cart to reconcile with, so the line is removed locally
// whatever the requested quantity.
func (s *Service) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if err := validateProductID(productID); err != nil {
		return s.reject(domain.OpUpdateQuantity, productID, err)
	}
	if quantity < 1 {
		return s.Delete(ctx, productID)
	}
	if !s.mirror.Contains(productID) {
		s.logger.Debug("update of product absent from cart ignored", "product_id", productID)
		return nil
	}

	f := s.begin(domain.OpUpdateQuantity, productID)

	cartID, found, err := s.identity.Current(ctx)
	if err != nil {
		return f.fail(err)
	}
	if !found {
		return f.commit(s.removeLocal(ctx, productID))
	}

	err = s.remote.UpdateItem(ctx, cartID, productID, quantity)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return f.fail(err)
	}

	items, err := s.remote.GetCart(ctx, cartID)
	if err != nil {
		return f.fail(err)
	}

	return f.commit(func() error {
		s.mirror.Replace(items)
		return s.mirror.Persist(ctx)
	})
}

// Delete removes productID remotely and then locally. Deleting a product the mirror does
// not hold is a successful no-op.
func (s *Service) Delete(ctx context.Context, productID string) error {
	if err := validateProductID(productID); err != nil {
		return s.reject(domain.OpDelete, productID, err)
	}
	if !s.mirror.Contains(productID) {
		s.logger.Debug("delete of product absent from cart ignored", "product_id", productID)
		return nil
	}

	f := s.begin(domain.OpDelete, productID)

	cartID, found, err := s.identity.Current(ctx)
	if err != nil {
		return f.fail(err)
	}

	if found {
		err := s.remote.DeleteItem(ctx, cartID, productID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return f.fail(err)
		}
	}

	return f.commit(s.removeLocal(ctx, productID))
}

// Clear forgets the persisted items and the cart identifier. The next Add starts a new
// cart.
func (s *Service) Clear(ctx context.Context) error {
	f := s.begin(domain.OpClear, "")

	return f.commit(func() error {
		return errors.Join(s.mirror.Clear(ctx), s.identity.Clear(ctx))
	})
}

// Reload re-hydrates the mirror from persistence without a network round trip.
func (s *Service) Reload(ctx context.Context) error {
	f := s.begin(domain.OpReload, "")

	return f.commit(func() error {
		_, err := s.mirror.Load(ctx)
		return err
	})
}

func (s *Service) removeLocal(ctx context.Context, productID string) func() error {
	return func() error {
		s.mirror.Remove(productID)
		return s.mirror.Persist(ctx)
	}
}

// reject fails an operation whose input was invalid before it reached Requesting.
func (s *Service) reject(kind domain.OpKind, productID string, err error) error {
	opErr := &domain.OpError{
		Op:        kind,
		ProductID: productID,
		Err:       errors.Join(domain.ErrInvalidArgument, err),
	}
	s.logger.Warn("cart operation rejected", "op", kind, "product_id", productID, "error", err)
	return opErr
}

func validateProductID(productID string) error {
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("productID is empty")
	}
	return nil
}
