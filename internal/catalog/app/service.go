package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dwikikusuma/shoping-checkout/internal/catalog/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
)

var (
	ErrInvalidInput = apperr.New(apperr.ErrValidation, "INVALID_PRODUCT", "invalid product id")
	ErrNotFound     = apperr.New(apperr.ErrNotFound, "PRODUCT_NOT_FOUND", "product not found")
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, ErrInvalidInput
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, err)
	}
	if p.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("product %s has negative price %s: %w", id, p.Price, apperr.ErrValidation)
	}
	return p, nil
}
