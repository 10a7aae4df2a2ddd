package app

import (
	"context"

	"github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
)

type ProductRepo interface {
	Get(ctx context.Context, id string) (domain.Product, error)
}
