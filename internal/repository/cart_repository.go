package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartmirror/internal/domain"
	"github.com/nikolayk812/cartmirror/internal/port"
)

type cartRepository struct {
	q    querier
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    pool,
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    tx,
		pool: nil, // use provided transaction instead
	}
}

const getCartSQL = `
SELECT cart_id, product_id, price_amount::text, price_currency, quantity
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at, product_id`

const touchCartSQL = `
INSERT INTO carts (cart_id) VALUES ($1)
ON CONFLICT (cart_id) DO UPDATE SET updated_at = NOW()`

const addItemSQL = `
INSERT INTO cart_items (cart_id, product_id, price_amount, price_currency, quantity)
VALUES ($1, $2, $3::numeric, $4, $5)
ON CONFLICT (cart_id, product_id) DO UPDATE
    SET quantity       = cart_items.quantity + EXCLUDED.quantity,
        price_amount   = EXCLUDED.price_amount,
        price_currency = EXCLUDED.price_currency
RETURNING cart_id, product_id, price_amount::text, price_currency, quantity`

const updateQuantitySQL = `
UPDATE cart_items SET quantity = $3
WHERE cart_id = $1 AND product_id = $2`

const deleteItemSQL = `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_id = $2`

func (r *cartRepository) GetCart(ctx context.Context, cartID domain.CartID) ([]domain.CartItem, error) {
	if cartID == "" {
		return nil, fmt.Errorf("cartID is empty")
	}

	rows, err := r.q.Query(ctx, getCartSQL, cartID.String())
	if err != nil {
		return nil, fmt.Errorf("q.Query: %w", err)
	}

	dbRows, err := pgx.CollectRows(rows, pgx.RowToStructByPos[cartItemRow])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}

	items, err := mapCartItemRowsToDomain(dbRows)
	if err != nil {
		return nil, fmt.Errorf("mapCartItemRowsToDomain: %w", err)
	}

	return items, nil
}

// AddItem creates the cart on first use and merges the quantity into an existing line.
func (r *cartRepository) AddItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error) {
	if item.CartID == "" {
		return domain.CartItem{}, fmt.Errorf("cartID is empty")
	}
	if item.ProductID == "" {
		return domain.CartItem{}, fmt.Errorf("productID is empty")
	}
	if item.Quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("quantity must be positive")
	}

	return withTx(ctx, r.pool, r.q, func(q querier) (domain.CartItem, error) {
		if _, err := q.Exec(ctx, touchCartSQL, item.CartID.String()); err != nil {
			return domain.CartItem{}, fmt.Errorf("q.Exec touchCart: %w", err)
		}

		rows, err := q.Query(ctx, addItemSQL,
			item.CartID.String(),
			item.ProductID,
			item.Price.Amount.String(),
			item.Price.Currency.String(),
			item.Quantity,
		)
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("q.Query addItem: %w", err)
		}

		row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[cartItemRow])
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("pgx.CollectExactlyOneRow: %w", err)
		}

		return mapCartItemRowToDomain(row)
	})
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, cartID domain.CartID, productID string, quantity int) (bool, error) {
	if cartID == "" {
		return false, fmt.Errorf("cartID is empty")
	}
	if quantity < 1 {
		return false, fmt.Errorf("quantity must be positive")
	}

	tag, err := r.q.Exec(ctx, updateQuantitySQL, cartID.String(), productID, quantity)
	if err != nil {
		return false, fmt.Errorf("q.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID domain.CartID, productID string) (bool, error) {
	if cartID == "" {
		return false, fmt.Errorf("cartID is empty")
	}

	tag, err := r.q.Exec(ctx, deleteItemSQL, cartID.String(), productID)
	if err != nil {
		return false, fmt.Errorf("q.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

type cartItemRow struct {
	CartID        string
	ProductID     string
	PriceAmount   string
	PriceCurrency string
	Quantity      int32
}

func mapCartItemRowToDomain(row cartItemRow) (domain.CartItem, error) {
	price, err := domain.ParseMoney(row.PriceAmount, row.PriceCurrency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("domain.ParseMoney: %w", err)
	}

	return domain.CartItem{
		CartID:    domain.CartID(row.CartID),
		ProductID: row.ProductID,
		Price:     price,
		Quantity:  int(row.Quantity),
	}, nil
}

func mapCartItemRowsToDomain(rows []cartItemRow) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0, len(rows))

	for _, row := range rows {
		item, err := mapCartItemRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartItemRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
