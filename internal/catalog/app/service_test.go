package app

import (
	"context"
	"errors"
	"testing"

	"github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	products map[string]domain.Product
}

func (f fakeRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return p, nil
}

func TestGetProduct(t *testing.T) {
	svc := NewService(fakeRepo{products: map[string]domain.Product{
		"p1":  {ID: "p1", Name: "Keyboard", Price: decimal.RequireFromString("10.00")},
		"bad": {ID: "bad", Name: "Broken", Price: decimal.RequireFromString("-1")},
	}})

	t.Run("blank id -> invalid", func(t *testing.T) {
		_, err := svc.GetProduct(context.Background(), "   ")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("missing -> not found", func(t *testing.T) {
		_, err := svc.GetProduct(context.Background(), "nope")
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("negative price -> validation", func(t *testing.T) {
		_, err := svc.GetProduct(context.Background(), "bad")
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("found", func(t *testing.T) {
		p, err := svc.GetProduct(context.Background(), " p1 ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "Keyboard" || !p.Price.Equal(decimal.RequireFromString("10")) {
			t.Fatalf("unexpected product: %+v", p)
		}
	})
}
