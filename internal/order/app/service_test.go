package app_test

import (
	"context"
	"errors"
	"testing"

	cartapp "github.com/dwikikusuma/shoping-checkout/internal/cart/app"
	catalogapp "github.com/dwikikusuma/shoping-checkout/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
	"github.com/dwikikusuma/shoping-checkout/internal/order/app"
	"github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	"github.com/dwikikusuma/shoping-checkout/internal/storage/memory"
	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
	"github.com/dwikikusuma/shoping-checkout/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db     *memory.DB
	cart   *cartapp.Service
	orders *app.Service
}

func newFixture() fixture {
	db := memory.New()
	return fixture{
		db:     db,
		cart:   cartapp.NewService(db.Carts(), catalogapp.NewService(db.Products()), nil, logger.Discard()),
		orders: app.NewService(db.Orders(), nil, logger.Discard()),
	}
}

func (f fixture) product(name, price string) string {
	id := uuid.NewString()
	f.db.PutProduct(catalogdomain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)})
	return id
}

// linesOf converts the current cart into order lines the way checkout does.
func (f fixture) linesOf(t *testing.T, cartKey string) []domain.Line {
	t.Helper()
	items, err := f.cart.Items(context.Background(), cartKey)
	require.NoError(t, err)
	lines := make([]domain.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.Line{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return lines
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	f := newFixture()
	_, err := f.orders.CreateOrder(context.Background(), "user-1", "cart-1", nil)
	require.ErrorIs(t, err, app.ErrEmptyCart)
	require.ErrorIs(t, err, apperr.ErrValidation)

	list, err := f.orders.ListOrders(context.Background(), "user-1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCreateOrderRequiresUser(t *testing.T) {
	f := newFixture()
	_, err := f.orders.CreateOrder(context.Background(), " ", "cart-1", []domain.Line{{ProductID: "p", Quantity: 1}})
	require.ErrorIs(t, err, app.ErrInvalidUser)
}

func TestCreateOrderSnapshotsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mug := f.product("Mug", "10.00")
	pen := f.product("Pen", "2.50")

	_, _, err := f.cart.AddQuantity(ctx, "cart-1", mug, 2)
	require.NoError(t, err)
	_, _, err = f.cart.AddItem(ctx, "cart-1", pen)
	require.NoError(t, err)

	order, err := f.orders.CreateOrder(ctx, "user-1", "cart-1", f.linesOf(t, "cart-1"))
	require.NoError(t, err)
	require.Equal(t, domain.StatusAwaitingPayment, order.Status)
	require.Equal(t, domain.PaymentDeposit, order.PaymentOption)
	require.Len(t, order.Items, 2)
	require.True(t, order.Total().Valid)
	require.Equal(t, "22.50", order.Total().Decimal.StringFixed(2))
	for _, it := range order.Items {
		require.Equal(t, order.ID, it.OrderID)
	}

	t.Run("cart lines are released", func(t *testing.T) {
		items, err := f.cart.Items(ctx, "cart-1")
		require.NoError(t, err)
		require.Empty(t, items)
	})

	t.Run("later price changes do not reach the order", func(t *testing.T) {
		f.db.PutProduct(catalogdomain.Product{ID: mug, Name: "Mug", Price: decimal.RequireFromString("99.00")})

		stored, err := f.orders.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		require.Equal(t, "22.50", stored.Total().Decimal.StringFixed(2))
		for _, it := range stored.Items {
			if it.ProductID == mug {
				require.Equal(t, "10.00", it.UnitPrice.StringFixed(2))
				require.EqualValues(t, 2, it.Quantity)
			}
		}
	})
}

func TestCreateOrderFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mug := f.product("Mug", "10.00")

	_, _, err := f.cart.AddItem(ctx, "cart-1", mug)
	require.NoError(t, err)

	boom := errors.New("disk full")
	f.db.FailOrderWrites(boom)

	_, err = f.orders.CreateOrder(ctx, "user-1", "cart-1", f.linesOf(t, "cart-1"))
	require.ErrorIs(t, err, boom)

	list, err := f.orders.ListOrders(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, list)

	items, err := f.cart.Items(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestCreateOrderRejectsBadLines(t *testing.T) {
	f := newFixture()
	cases := []struct {
		name string
		line domain.Line
	}{
		{"zero quantity", domain.Line{ProductID: "p", Quantity: 0, UnitPrice: decimal.NewFromInt(1)}},
		{"negative price", domain.Line{ProductID: "p", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(context.Background(), "user-1", "cart-1", []domain.Line{tc.line})
			require.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestGetUserOrderHidesOtherUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	line := domain.Line{ProductID: f.product("Mug", "10.00"), Quantity: 1, UnitPrice: decimal.NewFromInt(10)}

	order, err := f.orders.CreateOrder(ctx, "user-1", "cart-1", []domain.Line{line})
	require.NoError(t, err)

	_, err = f.orders.GetUserOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)

	_, err = f.orders.GetUserOrder(ctx, "user-2", order.ID)
	require.ErrorIs(t, err, app.ErrNotFound)

	_, err = f.orders.GetOrder(ctx, uuid.NewString())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	line := domain.Line{ProductID: f.product("Mug", "10.00"), Quantity: 1, UnitPrice: decimal.NewFromInt(10)}

	first, err := f.orders.CreateOrder(ctx, "user-1", "cart-a", []domain.Line{line})
	require.NoError(t, err)
	second, err := f.orders.CreateOrder(ctx, "user-1", "cart-b", []domain.Line{line})
	require.NoError(t, err)
	_, err = f.orders.CreateOrder(ctx, "user-2", "cart-c", []domain.Line{line})
	require.NoError(t, err)

	list, err := f.orders.ListOrders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	if first.CreatedAt.Equal(second.CreatedAt) {
		return
	}
	require.Equal(t, second.ID, list[0].ID)
}

func TestCreateOrderReleasesOnlyOrderedUnits(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	mug := f.product("Mug", "10.00")
	pen := f.product("Pen", "2.50")

	_, _, err := f.cart.AddQuantity(ctx, "cart-1", mug, 3)
	require.NoError(t, err)
	_, _, err = f.cart.AddItem(ctx, "cart-1", pen)
	require.NoError(t, err)

	lines := []domain.Line{
		{ProductID: mug, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
		{ProductID: pen, Quantity: 1, UnitPrice: decimal.RequireFromString("2.50")},
	}
	_, err = f.orders.CreateOrder(ctx, "user-1", "cart-1", lines)
	require.NoError(t, err)

	items, err := f.cart.Items(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, mug, items[0].ProductID)
	require.EqualValues(t, 2, items[0].Quantity)
}
