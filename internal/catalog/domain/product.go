package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is owned by the catalog; the checkout flow only reads it.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
