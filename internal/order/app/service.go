package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart   = apperr.New(apperr.ErrValidation, "EMPTY_CART", "cart is empty")
	ErrInvalidUser = apperr.New(apperr.ErrValidation, "INVALID_USER", "user id is required")
	ErrNotFound    = apperr.New(apperr.ErrNotFound, "ORDER_NOT_FOUND", "order not found")
)

type Service struct {
	repo    OrderRepo
	metrics Metrics
	log     *slog.Logger
	now     func() time.Time
}

type noopMetrics struct{}

func (noopMetrics) OrderCreated() {}

func NewService(repo OrderRepo, metrics Metrics, log *slog.Logger) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{repo: repo, metrics: metrics, log: log, now: time.Now}
}

// CreateOrder materializes an order for userID from the given cart lines.
// Quantities and unit prices are copied; the lines are released from
// cartKey in the same transaction.
func (s *Service) CreateOrder(ctx context.Context, userID, cartKey string, lines []domain.Line) (domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Order{}, ErrInvalidUser
	}
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	now := s.now().UTC()
	order := domain.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Status:        domain.StatusAwaitingPayment,
		PaymentOption: domain.PaymentDeposit,
		Items:         make([]domain.OrderItem, 0, len(lines)),
		CreatedAt:     now,
		ModifiedAt:    now,
	}
	release := domain.CartRelease{CartKey: cartKey, Lines: make([]domain.Line, 0, len(lines))}

	for i, ln := range lines {
		if ln.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("line %d: quantity must be positive, got %d: %w", i, ln.Quantity, apperr.ErrValidation)
		}
		if ln.UnitPrice.IsNegative() {
			return domain.Order{}, fmt.Errorf("line %d: unit price cannot be negative, got %s: %w", i, ln.UnitPrice, apperr.ErrValidation)
		}

		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: ln.ProductID,
			Quantity:  ln.Quantity,
			UnitPrice: ln.UnitPrice.Round(2),
		})
		release.Lines = append(release.Lines, ln)
	}

	created, err := s.repo.CreateOrderTx(ctx, order, release)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.metrics.OrderCreated()
	s.log.Info("order created",
		slog.String("order_id", created.ID),
		slog.String("user_id", userID),
		slog.Int("items", len(created.Items)),
		slog.String("total", created.Total().Decimal.StringFixed(2)))
	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// GetUserOrder returns the order only when it belongs to userID.
func (s *Service) GetUserOrder(ctx context.Context, userID, id string) (domain.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.UserID != userID {
		return domain.Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUser
	}
	return s.repo.ListByUser(ctx, userID)
}
