package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/shoping-checkout/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/shoping-checkout/internal/checkout/app"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) GetCart(ctx context.Context, cartKey string) ([]checkoutapp.CartItem, error) {
	lines, err := r.svc.Items(ctx, cartKey)
	if err != nil {
		return nil, err
	}

	items := make([]checkoutapp.CartItem, 0, len(lines))
	for _, it := range lines {
		items = append(items, checkoutapp.CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return items, nil
}
