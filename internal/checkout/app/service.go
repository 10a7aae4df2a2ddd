package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dwikikusuma/shoping-checkout/internal/checkout/domain"
	orderapp "github.com/dwikikusuma/shoping-checkout/internal/order/app"
	orderdomain "github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	paymentapp "github.com/dwikikusuma/shoping-checkout/internal/payment/app"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	Cart     CartReader
	Catalog  CatalogReader
	Orders   OrderCreator
	Payments PaymentStarter
	Events   OrderEvents

	log           *slog.Logger
	maxConcurrent int
}

func NewService(cart CartReader, catalog CatalogReader, orders OrderCreator, payments PaymentStarter, events OrderEvents, log *slog.Logger, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if events == nil {
		events = noopEvents{}
	}

	return &Service{
		Cart:          cart,
		Catalog:       catalog,
		Orders:        orders,
		Payments:      payments,
		Events:        events,
		log:           log,
		maxConcurrent: maxConcurrent,
	}
}

type noopEvents struct{}

func (noopEvents) OrderCreated(context.Context, orderdomain.Order) error { return nil }

// ErrEmptyCart is returned when there is nothing to quote or check out.
var ErrEmptyCart = orderapp.ErrEmptyCart

// Quote prices the cart at its snapshotted unit prices.
func (s *Service) Quote(ctx context.Context, cartKey string) (domain.Quote, error) {
	items, err := s.Cart.GetCart(ctx, cartKey)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		idx := idx
		g.Go(func() error {
			it := items[idx]
			product, err := s.Catalog.GetProduct(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}

			lines[idx] = domain.QuoteLine{
				ProductID: it.ProductID,
				Name:      product.Name,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				LineTotal: it.UnitPrice.Mul(decimal.NewFromInt32(it.Quantity)),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}

	return domain.Quote{Lines: lines, Total: total}, nil
}

type Result struct {
	Order orderdomain.Order
	// RedirectURL is where the shopper completes a gateway payment; empty
	// for deposit orders.
	RedirectURL string
}

// Checkout converts the cart into an order and starts its payment. When
// the gateway fails the order is still returned, awaiting payment, along
// with the gateway error.
func (s *Service) Checkout(ctx context.Context, userID, cartKey string, option orderdomain.PaymentOption) (Result, error) {
	if option == "" {
		option = orderdomain.PaymentDeposit
	}
	if !option.Valid() {
		return Result{}, paymentapp.ErrInvalidOption
	}

	items, err := s.Cart.GetCart(ctx, cartKey)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}

	lines := make([]orderdomain.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, orderdomain.Line{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	order, err := s.Orders.CreateOrder(ctx, userID, cartKey, lines)
	if err != nil {
		return Result{}, err
	}

	if err := s.Events.OrderCreated(ctx, order); err != nil {
		s.log.Warn("order created event not published", slog.String("order_id", order.ID), slog.Any("err", err))
	}

	if option == orderdomain.PaymentDeposit {
		return Result{Order: order}, nil
	}

	redirect, err := s.Payments.StartPayment(ctx, userID, order.ID, option)
	if err != nil {
		return Result{Order: order}, err
	}
	order.PaymentOption = option
	return Result{Order: order, RedirectURL: redirect}, nil
}
