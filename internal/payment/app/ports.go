package app

import (
	"context"

	accountdomain "github.com/dwikikusuma/shoping-checkout/internal/account/domain"
	catalogdomain "github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	"github.com/dwikikusuma/shoping-checkout/internal/payment/domain"
)

type OrderStore interface {
	Get(ctx context.Context, id string) (orderdomain.Order, error)
	Update(ctx context.Context, id string, fn func(o *orderdomain.Order) (bool, error)) (orderdomain.Order, error)
}

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (catalogdomain.Product, error)
}

type UserDirectory interface {
	GetUser(ctx context.Context, id string) (accountdomain.User, error)
}

// Gateway submits a payment request and returns the URL the shopper is
// sent to.
type Gateway interface {
	Submit(ctx context.Context, option orderdomain.PaymentOption, req domain.Request) (string, error)
}

type StatusPublisher interface {
	StatusChanged(ctx context.Context, o orderdomain.Order, previous orderdomain.Status) error
}

type Metrics interface {
	Notification(outcome string)
}
