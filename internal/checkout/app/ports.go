package app

import (
	"context"

	orderdomain "github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	"github.com/shopspring/decimal"
)

type CartReader interface {
	GetCart(ctx context.Context, cartKey string) ([]CartItem, error)
}

type CartItem struct {
	ProductID string
	Quantity  int32
	UnitPrice decimal.Decimal
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Product struct {
	ID   string
	Name string
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, userID, cartKey string, lines []orderdomain.Line) (orderdomain.Order, error)
}

type PaymentStarter interface {
	StartPayment(ctx context.Context, userID, orderID string, option orderdomain.PaymentOption) (string, error)
}

type OrderEvents interface {
	OrderCreated(ctx context.Context, o orderdomain.Order) error
}
