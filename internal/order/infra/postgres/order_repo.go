package postgres

import (
	"context"
	"fmt"

	"github.com/dwikikusuma/shoping-checkout/internal/order/app"
	"github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const (
	insertOrder = `
INSERT INTO orders (id, user_id, status, payment_option, created_at, modified_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	insertOrderItem = `
INSERT INTO order_items (id, order_id, position, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6)`

	// The two release statements run per line inside the order tx: a line
	// fully consumed is deleted, otherwise the ordered units are taken off.
	deleteConsumedLine = `
DELETE FROM cart_items
WHERE cart_key = $1 AND product_id = $2 AND quantity <= $3`

	decrementCartLine = `
UPDATE cart_items
SET quantity = quantity - $3, updated_at = now()
WHERE cart_key = $1 AND product_id = $2 AND quantity > $3`

	orderColumns = `id::text, user_id, status, payment_option, created_at, modified_at`

	selectOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	selectOrderForUpdate = selectOrder + ` FOR UPDATE`

	selectOrdersByUser = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC, id`

	selectOrderItems = `
SELECT id::text, order_id::text, product_id::text, quantity, unit_price
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position`

	updateOrder = `
UPDATE orders
SET status = $2, payment_option = $3, modified_at = $4
WHERE id = $1`
)

func (r *OrderRepo) CreateOrderTx(ctx context.Context, order domain.Order, release domain.CartRelease) (domain.Order, error) {
	err := postgres.ExecTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertOrder,
			order.ID, order.UserID, order.Status, order.PaymentOption, order.CreatedAt, order.ModifiedAt)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i, item := range order.Items {
			_, err := tx.Exec(ctx, insertOrderItem, item.ID, order.ID, i, item.ProductID, item.Quantity, item.UnitPrice)
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}
		}

		if release.CartKey == "" {
			return nil
		}
		for _, ln := range release.Lines {
			if err := releaseLine(ctx, tx, release.CartKey, ln); err != nil {
				return fmt.Errorf("failed to release cart line %s: %w", ln.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func releaseLine(ctx context.Context, tx pgx.Tx, cartKey string, ln domain.Line) error {
	tag, err := tx.Exec(ctx, deleteConsumedLine, cartKey, ln.ProductID, ln.Quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	_, err = tx.Exec(ctx, decrementCartLine, cartKey, ln.ProductID, ln.Quantity)
	return err
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	if !validOrderID(id) {
		return domain.Order{}, app.ErrNotFound
	}
	return getOrder(ctx, r.pool, selectOrder, id)
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, selectOrdersByUser, userID)
	if err != nil {
		return nil, err
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *OrderRepo) Update(ctx context.Context, id string, fn func(o *domain.Order) (bool, error)) (domain.Order, error) {
	if !validOrderID(id) {
		return domain.Order{}, app.ErrNotFound
	}

	var updated domain.Order
	err := postgres.ExecTx(ctx, r.pool, func(tx pgx.Tx) error {
		o, err := getOrder(ctx, tx, selectOrderForUpdate, id)
		if err != nil {
			return err
		}

		changed, err := fn(&o)
		if err != nil {
			return err
		}
		if changed {
			if _, err := tx.Exec(ctx, updateOrder, o.ID, o.Status, o.PaymentOption, o.ModifiedAt); err != nil {
				return fmt.Errorf("failed to update order: %w", err)
			}
		}
		updated = o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return updated, nil
}

// validOrderID rejects references that cannot match the uuid primary key,
// so a gateway retrying a bogus reference gets a 404 rather than a 500.
func validOrderID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func getOrder(ctx context.Context, q querier, query, id string) (domain.Order, error) {
	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return domain.Order{}, err
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if postgres.IsNoRows(err) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	items, err := loadItems(ctx, q, []string{o.ID})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func loadItems(ctx context.Context, q querier, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := q.Query(ctx, selectOrderItems, orderIDs)
	if err != nil {
		return nil, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OrderItem, error) {
		var it domain.OrderItem
		err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice)
		return it, err
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string][]domain.OrderItem, len(orderIDs))
	for _, it := range items {
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, nil
}

func scanOrder(row pgx.CollectableRow) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentOption, &o.CreatedAt, &o.ModifiedAt)
	return o, err
}
