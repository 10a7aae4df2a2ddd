package domain

import "github.com/shopspring/decimal"

type QuoteLine struct {
	ProductID string
	Name      string
	Quantity  int32
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Quote previews what an order created from the cart right now would cost.
type Quote struct {
	Lines []QuoteLine
	Total decimal.Decimal
}
