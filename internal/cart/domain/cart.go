package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity caps the units of one product in one cart.
const MaxQuantity int32 = 9999

// CartItem is one product's line in one cart. At most one exists per
// (CartKey, ProductID).
type CartItem struct {
	CartKey   string
	ProductID string
	Quantity  int32
	// UnitPrice is the product price when the line was first added.
	UnitPrice decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Retained reports whether the line may stay persisted. Lines with a
// quantity below one are removed by every mutation path.
func (i CartItem) Retained() bool {
	return i.Quantity >= 1
}

// CanAdd reports whether n more units keep the line within MaxQuantity.
func (i CartItem) CanAdd(n int32) bool {
	return int64(i.Quantity)+int64(n) <= int64(MaxQuantity)
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}
