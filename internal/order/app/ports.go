package app

import (
	"context"

	"github.com/dwikikusuma/shoping-checkout/internal/order/domain"
)

type OrderRepo interface {
	// CreateOrderTx stores the order with its items and deletes the released
	// cart lines in one transaction.
	CreateOrderTx(ctx context.Context, order domain.Order, release domain.CartRelease) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// Update loads the order under a write lock and hands it to fn. The
	// order is persisted only when fn reports a change.
	Update(ctx context.Context, id string, fn func(o *domain.Order) (changed bool, err error)) (domain.Order, error)
}

type Metrics interface {
	OrderCreated()
}
