package port

import (
	"context"

	"github.com/nikolayk812/cartmirror/internal/domain"
)

// RemoteCart is the authoritative cart resource keyed by a cart ID.
type RemoteCart interface {
	AddItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error)
	GetCart(ctx context.Context, cartID domain.CartID) ([]domain.CartItem, error)
	UpdateItem(ctx context.Context, cartID domain.CartID, productID string, quantity int) error
	DeleteItem(ctx context.Context, cartID domain.CartID, productID string) error
}

// CartRepository stores carts on the serving side of RemoteCart.
type CartRepository interface {
	GetCart(ctx context.Context, cartID domain.CartID) ([]domain.CartItem, error)
	AddItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error)
	UpdateQuantity(ctx context.Context, cartID domain.CartID, productID string, quantity int) (bool, error)
	DeleteItem(ctx context.Context, cartID domain.CartID, productID string) (bool, error)
}
