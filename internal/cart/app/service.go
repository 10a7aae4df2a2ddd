package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dwikikusuma/shoping-checkout/internal/cart/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
)

var (
	ErrInvalidCartKey  = apperr.New(apperr.ErrValidation, "INVALID_CART_KEY", "cart key is required")
	ErrInvalidQuantity = apperr.New(apperr.ErrValidation, "INVALID_QUANTITY",
		fmt.Sprintf("quantity must be between 1 and %d", domain.MaxQuantity))
	ErrItemNotFound    = apperr.New(apperr.ErrNotFound, "CART_ITEM_NOT_FOUND", "item is not in the cart")
)

const maxUpsertAttempts = 3

type Service struct {
	repo     CartRepo
	products ProductReader
	metrics  Metrics
	log      *slog.Logger
}

type noopMetrics struct{}

func (noopMetrics) CartMutation(string) {}

func NewService(repo CartRepo, products ProductReader, metrics Metrics, log *slog.Logger) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		repo:     repo,
		products: products,
		metrics:  metrics,
		log:      log,
	}
}

// AddItem puts one unit of productID into the cart.
func (s *Service) AddItem(ctx context.Context, cartKey, productID string) (domain.CartItem, bool, error) {
	return s.AddQuantity(ctx, cartKey, productID, 1)
}

// AddQuantity increments the line by qty, creating it at the product's
// current price when the cart does not hold the product yet.
func (s *Service) AddQuantity(ctx context.Context, cartKey, productID string, qty int32) (domain.CartItem, bool, error) {
	cartKey = strings.TrimSpace(cartKey)
	if cartKey == "" {
		return domain.CartItem{}, false, ErrInvalidCartKey
	}
	if qty <= 0 || qty > domain.MaxQuantity {
		return domain.CartItem{}, false, ErrInvalidQuantity
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartItem{}, false, err
	}

	item := domain.CartItem{
		CartKey:   cartKey,
		ProductID: product.ID,
		Quantity:  qty,
		UnitPrice: product.Price.Round(2),
	}

	var (
		saved   domain.CartItem
		created bool
	)
	for attempt := 1; ; attempt++ {
		saved, created, err = s.repo.UpsertIncrement(ctx, item)
		if err == nil {
			break
		}
		if !errors.Is(err, apperr.ErrConflict) || attempt == maxUpsertAttempts {
			return domain.CartItem{}, false, fmt.Errorf("add %s to cart: %w", product.ID, err)
		}
		s.log.Debug("cart upsert conflict, retrying",
			slog.String("cart_key", cartKey),
			slog.String("product_id", product.ID),
			slog.Int("attempt", attempt))
	}

	saved, _, err = s.enforceQuantity(ctx, saved)
	if err != nil {
		return domain.CartItem{}, false, err
	}

	s.metrics.CartMutation("add")
	return saved, created, nil
}

// SetQuantity overwrites the quantity of an existing line. A quantity below
// one removes the line; removed reports that outcome.
func (s *Service) SetQuantity(ctx context.Context, cartKey, productID string, qty int32) (item domain.CartItem, removed bool, err error) {
	cartKey = strings.TrimSpace(cartKey)
	if cartKey == "" {
		return domain.CartItem{}, false, ErrInvalidCartKey
	}
	if qty > domain.MaxQuantity {
		return domain.CartItem{}, false, ErrInvalidQuantity
	}

	current, err := s.repo.Get(ctx, cartKey, productID)
	if err != nil {
		return domain.CartItem{}, false, err
	}

	current.Quantity = qty
	if current.Retained() {
		current, err = s.repo.UpdateQuantity(ctx, cartKey, productID, qty)
		if err != nil {
			return domain.CartItem{}, false, fmt.Errorf("set quantity: %w", err)
		}
	}

	item, removed, err = s.enforceQuantity(ctx, current)
	if err != nil {
		return domain.CartItem{}, false, err
	}

	if removed {
		s.metrics.CartMutation("remove")
	} else {
		s.metrics.CartMutation("set")
	}
	return item, removed, nil
}

func (s *Service) RemoveItem(ctx context.Context, cartKey, productID string) error {
	_, _, err := s.SetQuantity(ctx, cartKey, productID, 0)
	return err
}

func (s *Service) Items(ctx context.Context, cartKey string) ([]domain.CartItem, error) {
	if strings.TrimSpace(cartKey) == "" {
		return nil, ErrInvalidCartKey
	}
	return s.repo.List(ctx, cartKey)
}

// Rekey moves a cart to a new key, e.g. when an anonymous session is
// replaced after sign-in.
func (s *Service) Rekey(ctx context.Context, fromKey, toKey string) error {
	fromKey, toKey = strings.TrimSpace(fromKey), strings.TrimSpace(toKey)
	if fromKey == "" || toKey == "" {
		return ErrInvalidCartKey
	}
	if fromKey == toKey {
		return nil
	}

	if err := s.repo.Rekey(ctx, fromKey, toKey); err != nil {
		return fmt.Errorf("rekey cart: %w", err)
	}
	s.metrics.CartMutation("rekey")
	return nil
}

// enforceQuantity is the post-save step shared by every mutation path: a
// line whose quantity fell below one is deleted.
func (s *Service) enforceQuantity(ctx context.Context, item domain.CartItem) (domain.CartItem, bool, error) {
	if item.Retained() {
		return item, false, nil
	}
	if err := s.repo.RemoveItem(ctx, item.CartKey, item.ProductID); err != nil {
		return domain.CartItem{}, false, fmt.Errorf("remove depleted line: %w", err)
	}
	return item, true, nil
}
