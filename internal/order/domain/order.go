package domain

import (
	"time"

	"github.com/dwikikusuma/shoping-checkout/pkg/apperr"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentOption string

const (
	PaymentDeposit   PaymentOption = "deposit"
	PaymentPagSeguro PaymentOption = "pagseguro"
	PaymentPayPal    PaymentOption = "paypal"
)

func (p PaymentOption) Valid() bool {
	switch p {
	case PaymentDeposit, PaymentPagSeguro, PaymentPayPal:
		return true
	}
	return false
}

// Gateway codes sent by the payment processor.
const (
	CodePaid     = "3"
	CodeCanceled = "7"
)

var ErrUnknownTransition = apperr.New(apperr.ErrUnknownTransition, "UNKNOWN_TRANSITION", "no transition for status code")

type Order struct {
	ID            string
	UserID        string
	Status        Status
	PaymentOption PaymentOption
	Items         []OrderItem
	CreatedAt     time.Time
	ModifiedAt    time.Time
}

// OrderItem is a snapshot of a cart line; it never follows later price changes.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int32
	UnitPrice decimal.Decimal
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// Line is the input used to materialize one OrderItem.
type Line struct {
	ProductID string
	Quantity  int32
	UnitPrice decimal.Decimal
}

// CartRelease names the cart lines consumed by an order. Each line gives
// back only the units that were ordered; units added to the cart after it
// was read stay there.
type CartRelease struct {
	CartKey string
	Lines   []Line
}

// Products returns the distinct product ids in first-seen order.
func (o Order) Products() []string {
	seen := make(map[string]struct{}, len(o.Items))
	out := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		out = append(out, it.ProductID)
	}
	return out
}

// Total sums unit price times quantity over all items. An order without
// items has no total: the result is invalid rather than zero.
func (o Order) Total() decimal.NullDecimal {
	if len(o.Items) == 0 {
		return decimal.NullDecimal{}
	}
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal())
	}
	return decimal.NewNullDecimal(sum)
}

// Transition applies a gateway status code. Only awaiting_payment moves;
// every other (status, code) pair returns ErrUnknownTransition and leaves
// the order untouched.
func (o *Order) Transition(code string, now time.Time) error {
	if o.Status != StatusAwaitingPayment {
		return ErrUnknownTransition
	}

	switch code {
	case CodePaid:
		o.Status = StatusCompleted
	case CodeCanceled:
		o.Status = StatusCancelled
	default:
		return ErrUnknownTransition
	}
	o.ModifiedAt = now
	return nil
}
