package app_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/dwikikusuma/shoping-checkout/internal/cart/app"
	"github.com/dwikikusuma/shoping-checkout/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/shoping-checkout/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
	"github.com/dwikikusuma/shoping-checkout/internal/storage/memory"
	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
	"github.com/dwikikusuma/shoping-checkout/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*app.Service, *memory.DB) {
	t.Helper()
	db := memory.New()
	catalog := catalogapp.NewService(db.Products())
	return app.NewService(db.Carts(), catalog, nil, logger.Discard()), db
}

func seedProduct(db *memory.DB, name, price string) string {
	id := uuid.NewString()
	db.PutProduct(catalogdomain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)})
	return id
}

func TestAddItemTwiceIncrements(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	productID := seedProduct(db, "Mug", "7.50")

	first, created, err := svc.AddItem(ctx, "cart-1", productID)
	require.NoError(t, err)
	require.True(t, created)
	require.EqualValues(t, 1, first.Quantity)
	require.Equal(t, "7.50", first.UnitPrice.StringFixed(2))

	second, created, err := svc.AddItem(ctx, "cart-1", productID)
	require.NoError(t, err)
	require.False(t, created)
	require.EqualValues(t, 2, second.Quantity)

	items, err := svc.Items(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.EqualValues(t, 2, items[0].Quantity)
}

func TestAddItemKeepsFirstPriceSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	productID := seedProduct(db, "Mug", "7.50")

	_, _, err := svc.AddItem(ctx, "cart-1", productID)
	require.NoError(t, err)

	db.PutProduct(catalogdomain.Product{ID: productID, Name: "Mug", Price: decimal.RequireFromString("9.00")})
	item, _, err := svc.AddItem(ctx, "cart-1", productID)
	require.NoError(t, err)
	require.Equal(t, "7.50", item.UnitPrice.StringFixed(2))
}

func TestCartsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	productID := seedProduct(db, "Mug", "7.50")

	_, _, err := svc.AddItem(ctx, "cart-a", productID)
	require.NoError(t, err)
	_, created, err := svc.AddItem(ctx, "cart-b", productID)
	require.NoError(t, err)
	require.True(t, created)
}

func TestAddItemValidation(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	productID := seedProduct(db, "Mug", "7.50")

	t.Run("blank cart key", func(t *testing.T) {
		_, _, err := svc.AddItem(ctx, "  ", productID)
		require.ErrorIs(t, err, app.ErrInvalidCartKey)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		for _, qty := range []int32{0, -3} {
			_, _, err := svc.AddQuantity(ctx, "cart-1", productID, qty)
			require.ErrorIs(t, err, app.ErrInvalidQuantity)
			require.ErrorIs(t, err, apperr.ErrValidation)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		_, _, err := svc.AddItem(ctx, "cart-1", uuid.NewString())
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestSetQuantityBelowOneDeletes(t *testing.T) {
	ctx := context.Background()

	for _, prior := range []int32{1, 2, 7} {
		for _, next := range []int32{0, -1, -20} {
			svc, db := newTestService(t)
			productID := seedProduct(db, "Mug", "7.50")

			_, _, err := svc.AddQuantity(ctx, "cart-1", productID, prior)
			require.NoError(t, err)

			_, removed, err := svc.SetQuantity(ctx, "cart-1", productID, next)
			require.NoError(t, err)
			require.True(t, removed, "prior=%d next=%d", prior, next)

			items, err := svc.Items(ctx, "cart-1")
			require.NoError(t, err)
			require.Empty(t, items, "prior=%d next=%d", prior, next)
		}
	}
}

func TestSetQuantityUpdates(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	productID := seedProduct(db, "Mug", "7.50")

	_, _, err := svc.AddItem(ctx, "cart-1", productID)
	require.NoError(t, err)

	item, removed, err := svc.SetQuantity(ctx, "cart-1", productID, 4)
	require.NoError(t, err)
	require.False(t, removed)
	require.EqualValues(t, 4, item.Quantity)
	require.Equal(t, "30.00", item.Subtotal().StringFixed(2))
}

func TestSetQuantityMissingLine(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.SetQuantity(context.Background(), "cart-1", uuid.NewString(), 3)
	require.True(t, errors.Is(err, app.ErrItemNotFound))
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	keep := seedProduct(db, "Mug", "7.50")
	drop := seedProduct(db, "Pen", "1.00")

	for _, id := range []string{keep, drop} {
		_, _, err := svc.AddItem(ctx, "cart-1", id)
		require.NoError(t, err)
	}
	require.NoError(t, svc.RemoveItem(ctx, "cart-1", drop))

	items, err := svc.Items(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, keep, items[0].ProductID)
}

func TestRekeyMergesLines(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	shared := seedProduct(db, "Mug", "7.50")
	onlyOld := seedProduct(db, "Pen", "1.00")

	_, _, err := svc.AddQuantity(ctx, "session-old", shared, 2)
	require.NoError(t, err)
	_, _, err = svc.AddItem(ctx, "session-old", onlyOld)
	require.NoError(t, err)
	_, _, err = svc.AddQuantity(ctx, "session-new", shared, 3)
	require.NoError(t, err)

	require.NoError(t, svc.Rekey(ctx, "session-old", "session-new"))

	old, err := svc.Items(ctx, "session-old")
	require.NoError(t, err)
	require.Empty(t, old)

	merged, err := svc.Items(ctx, "session-new")
	require.NoError(t, err)
	require.Len(t, merged, 2)

	qty := map[string]int32{}
	for _, it := range merged {
		require.Equal(t, "session-new", it.CartKey)
		qty[it.ProductID] = it.Quantity
	}
	require.EqualValues(t, 5, qty[shared])
	require.EqualValues(t, 1, qty[onlyOld])
}

func TestRekeyValidation(t *testing.T) {
	svc, _ := newTestService(t)
	require.ErrorIs(t, svc.Rekey(context.Background(), "", "new"), app.ErrInvalidCartKey)
	require.NoError(t, svc.Rekey(context.Background(), "same", "same"))
}

func TestAddQuantityRejectsOverflow(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	productID := seedProduct(db, "Mug", "7.50")

	_, _, err := svc.AddQuantity(ctx, "cart-1", productID, 5)
	require.NoError(t, err)

	for _, qty := range []int32{math.MaxInt32, domain.MaxQuantity + 1, domain.MaxQuantity - 4} {
		_, _, err = svc.AddQuantity(ctx, "cart-1", productID, qty)
		require.ErrorIs(t, err, app.ErrInvalidQuantity, "qty=%d", qty)
	}

	items, err := svc.Items(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.EqualValues(t, 5, items[0].Quantity)

	item, _, err := svc.AddQuantity(ctx, "cart-1", productID, domain.MaxQuantity-5)
	require.NoError(t, err)
	require.Equal(t, domain.MaxQuantity, item.Quantity)
}

func TestSetQuantityValidation(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	productID := seedProduct(db, "Mug", "7.50")

	_, _, err := svc.AddItem(ctx, "cart-1", productID)
	require.NoError(t, err)

	t.Run("blank cart key", func(t *testing.T) {
		_, _, err := svc.SetQuantity(ctx, " ", productID, 2)
		require.ErrorIs(t, err, app.ErrInvalidCartKey)
		require.ErrorIs(t, svc.RemoveItem(ctx, "", productID), app.ErrInvalidCartKey)
	})

	t.Run("above the cap", func(t *testing.T) {
		_, _, err := svc.SetQuantity(ctx, "cart-1", productID, domain.MaxQuantity+1)
		require.ErrorIs(t, err, app.ErrInvalidQuantity)

		items, err := svc.Items(ctx, "cart-1")
		require.NoError(t, err)
		require.EqualValues(t, 1, items[0].Quantity)
	})
}

func TestRekeyRejectsMergeAboveCap(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	productID := seedProduct(db, "Mug", "7.50")

	_, _, err := svc.AddQuantity(ctx, "old", productID, domain.MaxQuantity)
	require.NoError(t, err)
	_, _, err = svc.AddItem(ctx, "new", productID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Rekey(ctx, "old", "new"), app.ErrInvalidQuantity)

	old, err := svc.Items(ctx, "old")
	require.NoError(t, err)
	require.Len(t, old, 1)
}
