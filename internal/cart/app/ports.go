package app

import (
	"context"

	"github.com/dwikikusuma/shoping-checkout/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
)

type CartRepo interface {
	// UpsertIncrement atomically adds item.Quantity to the (CartKey, ProductID)
	// line, inserting it with item.UnitPrice when absent. created reports
	// whether a new line was inserted.
	UpsertIncrement(ctx context.Context, item domain.CartItem) (saved domain.CartItem, created bool, err error)
	Get(ctx context.Context, cartKey, productID string) (domain.CartItem, error)
	UpdateQuantity(ctx context.Context, cartKey, productID string, quantity int32) (domain.CartItem, error)
	RemoveItem(ctx context.Context, cartKey, productID string) error
	List(ctx context.Context, cartKey string) ([]domain.CartItem, error)
	// Rekey moves every line of fromKey to toKey, summing quantities of
	// products present under both keys.
	Rekey(ctx context.Context, fromKey, toKey string) error
}

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (catalogdomain.Product, error)
}

type Metrics interface {
	CartMutation(kind string)
}
