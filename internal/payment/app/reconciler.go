package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	orderdomain "github.com/dwikikusuma/shoping-checkout/internal/order/domain"
	"github.com/dwikikusuma/shoping-checkout/internal/payment/domain"
	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidOption   = apperr.New(apperr.ErrValidation, "INVALID_PAYMENT_OPTION", "unknown payment option")
	ErrOrderNotPayable = apperr.New(apperr.ErrValidation, "ORDER_NOT_PAYABLE", "order is not awaiting payment")
	ErrOrderNotFound   = apperr.New(apperr.ErrNotFound, "ORDER_NOT_FOUND", "order not found")
)

type Config struct {
	// Receiver is the merchant account email registered with the gateway.
	Receiver string
	Sandbox  bool
	// LookupConcurrency bounds parallel product lookups per request.
	LookupConcurrency int
}

type Deps struct {
	Orders   OrderStore
	Products ProductReader
	Users    UserDirectory
	Gateway  Gateway
	Events   StatusPublisher
	Metrics  Metrics
	Log      *slog.Logger
}

// Reconciler turns orders into gateway payment requests and applies the
// gateway's asynchronous status notifications to them.
type Reconciler struct {
	cfg  Config
	deps Deps
	now  func() time.Time
}

type noop struct{}

func (noop) Notification(string) {}

func (noop) StatusChanged(context.Context, orderdomain.Order, orderdomain.Status) error { return nil }

func NewReconciler(cfg Config, deps Deps) *Reconciler {
	if cfg.LookupConcurrency <= 0 {
		cfg.LookupConcurrency = 10
	}
	if deps.Metrics == nil {
		deps.Metrics = noop{}
	}
	if deps.Events == nil {
		deps.Events = noop{}
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Reconciler{cfg: cfg, deps: deps, now: time.Now}
}

// BuildRequest shapes the gateway payload for an order.
func (r *Reconciler) BuildRequest(ctx context.Context, orderID string) (domain.Request, error) {
	o, err := r.deps.Orders.Get(ctx, orderID)
	if err != nil {
		return domain.Request{}, err
	}
	return r.buildRequest(ctx, o)
}

func (r *Reconciler) buildRequest(ctx context.Context, o orderdomain.Order) (domain.Request, error) {
	if len(o.Items) == 0 {
		return domain.Request{}, fmt.Errorf("order %s has no items: %w", o.ID, apperr.ErrValidation)
	}

	user, err := r.deps.Users.GetUser(ctx, o.UserID)
	if err != nil {
		return domain.Request{}, fmt.Errorf("%w: sender %s: %v", apperr.ErrGateway, o.UserID, err)
	}

	productIDs := o.Products()
	names := make([]string, len(productIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.LookupConcurrency)

	for idx, id := range productIDs {
		idx, id := idx, id
		g.Go(func() error {
			p, err := r.deps.Products.GetProduct(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to get product %s: %v", id, err)
			}
			names[idx] = p.Name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Request{}, fmt.Errorf("%w: %v", apperr.ErrGateway, err)
	}

	nameByID := make(map[string]string, len(productIDs))
	for i, id := range productIDs {
		nameByID[id] = names[i]
	}

	req := domain.Request{
		Reference: o.ID,
		Sender:    user.Email,
		Receiver:  r.cfg.Receiver,
		Sandbox:   r.cfg.Sandbox,
		Items:     make([]domain.Line, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		req.Items = append(req.Items, domain.Line{
			ID:          it.ProductID,
			Description: nameByID[it.ProductID],
			Quantity:    it.Quantity,
			Amount:      it.UnitPrice.StringFixed(2),
		})
	}
	return req, nil
}

// StartPayment records the shopper's payment option and, for gateway
// options, submits the payment request. Deposit orders need no gateway
// round trip and return an empty redirect.
func (r *Reconciler) StartPayment(ctx context.Context, userID, orderID string, option orderdomain.PaymentOption) (string, error) {
	if !option.Valid() {
		return "", ErrInvalidOption
	}

	o, err := r.deps.Orders.Update(ctx, orderID, func(o *orderdomain.Order) (bool, error) {
		if o.UserID != userID {
			return false, ErrOrderNotFound
		}
		if o.Status != orderdomain.StatusAwaitingPayment {
			return false, ErrOrderNotPayable
		}
		if o.PaymentOption == option {
			return false, nil
		}
		o.PaymentOption = option
		o.ModifiedAt = r.now().UTC()
		return true, nil
	})
	if err != nil {
		return "", err
	}

	if option == orderdomain.PaymentDeposit {
		return "", nil
	}

	req, err := r.buildRequest(ctx, o)
	if err != nil {
		return "", err
	}

	redirect, err := r.deps.Gateway.Submit(ctx, option, req)
	if err != nil {
		r.deps.Log.Error("payment submission failed",
			slog.String("order_id", o.ID),
			slog.String("option", string(option)),
			slog.Any("err", err))
		return "", fmt.Errorf("%w: %v", apperr.ErrGateway, err)
	}

	r.deps.Log.Info("payment submitted", slog.String("order_id", o.ID), slog.String("option", string(option)))
	return redirect, nil
}

// ApplyNotification moves the order according to the gateway status code.
// Unknown codes and notifications for orders already in a terminal status
// are ignored, which keeps gateway retries idempotent.
func (r *Reconciler) ApplyNotification(ctx context.Context, orderID, code string) (orderdomain.Order, domain.Outcome, error) {
	var (
		previous orderdomain.Status
		applied  bool
	)
	o, err := r.deps.Orders.Update(ctx, orderID, func(o *orderdomain.Order) (bool, error) {
		previous = o.Status
		applied = o.Transition(code, r.now().UTC()) == nil
		return applied, nil
	})
	if err != nil {
		return orderdomain.Order{}, "", err
	}

	if !applied {
		r.deps.Metrics.Notification(string(domain.OutcomeIgnored))
		r.deps.Log.Info("payment notification ignored",
			slog.String("order_id", orderID),
			slog.String("code", code),
			slog.String("status", string(o.Status)))
		return o, domain.OutcomeIgnored, nil
	}

	r.deps.Metrics.Notification(string(domain.OutcomeApplied))
	r.deps.Log.Info("order status changed",
		slog.String("order_id", o.ID),
		slog.String("from", string(previous)),
		slog.String("to", string(o.Status)))

	if err := r.deps.Events.StatusChanged(ctx, o, previous); err != nil {
		r.deps.Log.Warn("status event not published", slog.String("order_id", o.ID), slog.Any("err", err))
	}
	return o, domain.OutcomeApplied, nil
}
