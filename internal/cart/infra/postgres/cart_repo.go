package postgres

import (
	"context"
	"fmt"

	"github.com/dwikikusuma/shoping-checkout/internal/cart/app"
	"github.com/dwikikusuma/shoping-checkout/internal/cart/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
	"github.com/dwikikusuma/shoping-checkout/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepo struct {
	pool *pgxpool.Pool
}

func NewCartRepo(pool *pgxpool.Pool) *CartRepo {
	return &CartRepo{pool: pool}
}

const cartItemColumns = `cart_key, product_id::text, quantity, unit_price, created_at, updated_at`

const upsertAddItemIncrement = `
INSERT INTO cart_items (cart_key, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_key, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
RETURNING ` + cartItemColumns + `, (xmax = 0) AS created`

func (r *CartRepo) UpsertIncrement(ctx context.Context, item domain.CartItem) (domain.CartItem, bool, error) {
	productUUID, err := parseProductID(item.ProductID)
	if err != nil {
		return domain.CartItem{}, false, err
	}

	var created bool
	row := r.pool.QueryRow(ctx, upsertAddItemIncrement, item.CartKey, productUUID, item.Quantity, item.UnitPrice)
	saved, err := scanCartItem(row, &created)
	if err != nil {
		return domain.CartItem{}, false, mapErr(err)
	}
	return saved, created, nil
}

const getCartItem = `
SELECT ` + cartItemColumns + `
FROM cart_items
WHERE cart_key = $1 AND product_id = $2`

func (r *CartRepo) Get(ctx context.Context, cartKey, productID string) (domain.CartItem, error) {
	productUUID, err := parseProductID(productID)
	if err != nil {
		return domain.CartItem{}, err
	}

	item, err := scanCartItem(r.pool.QueryRow(ctx, getCartItem, cartKey, productUUID))
	if err != nil {
		return domain.CartItem{}, mapErr(err)
	}
	return item, nil
}

const setItemQuantity = `
UPDATE cart_items
SET quantity = $3, updated_at = now()
WHERE cart_key = $1 AND product_id = $2
RETURNING ` + cartItemColumns

func (r *CartRepo) UpdateQuantity(ctx context.Context, cartKey, productID string, quantity int32) (domain.CartItem, error) {
	productUUID, err := parseProductID(productID)
	if err != nil {
		return domain.CartItem{}, err
	}

	item, err := scanCartItem(r.pool.QueryRow(ctx, setItemQuantity, cartKey, productUUID, quantity))
	if err != nil {
		return domain.CartItem{}, mapErr(err)
	}
	return item, nil
}

const removeItem = `DELETE FROM cart_items WHERE cart_key = $1 AND product_id = $2`

func (r *CartRepo) RemoveItem(ctx context.Context, cartKey, productID string) error {
	productUUID, err := parseProductID(productID)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, removeItem, cartKey, productUUID)
	return err
}

const listCartItems = `
SELECT ` + cartItemColumns + `
FROM cart_items
WHERE cart_key = $1
ORDER BY created_at, product_id`

func (r *CartRepo) List(ctx context.Context, cartKey string) ([]domain.CartItem, error) {
	rows, err := r.pool.Query(ctx, listCartItems, cartKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const mergeCartLines = `
INSERT INTO cart_items (cart_key, product_id, quantity, unit_price, created_at)
SELECT $2, product_id, quantity, unit_price, created_at
FROM cart_items
WHERE cart_key = $1
ON CONFLICT (cart_key, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`

const clearCart = `DELETE FROM cart_items WHERE cart_key = $1`

func (r *CartRepo) Rekey(ctx context.Context, fromKey, toKey string) error {
	err := postgres.ExecTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, mergeCartLines, fromKey, toKey); err != nil {
			return fmt.Errorf("merge lines: %w", err)
		}
		if _, err := tx.Exec(ctx, clearCart, fromKey); err != nil {
			return fmt.Errorf("clear source cart: %w", err)
		}
		return nil
	})
	return mapErr(err)
}

func scanCartItem(row pgx.Row, extra ...any) (domain.CartItem, error) {
	var item domain.CartItem
	dest := []any{&item.CartKey, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.CreatedAt, &item.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.CartItem{}, err
	}
	return item, nil
}

func parseProductID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("product id %q: %w", id, apperr.ErrValidation)
	}
	return u, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case postgres.IsNoRows(err):
		return app.ErrItemNotFound
	case postgres.IsCheckViolation(err):
		return app.ErrInvalidQuantity
	case postgres.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
	default:
		return err
	}
}
