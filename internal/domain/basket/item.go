package basket

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Item is a single line in a basket. Totals are derived on every access so
// that mutating any field is immediately reflected downstream.
type Item struct {
	ID                 string
	Name               string
	UnitPrice          decimal.Decimal
	Quantity           int
	Discounted         bool
	DiscountPercentage decimal.Decimal
}

// TotalPrice returns unit price multiplied by quantity, before any discount.
func (i Item) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalPriceWithDiscount returns the line total after the per-item discount.
// An item not marked as discounted keeps its full price regardless of the
// DiscountPercentage value.
func (i Item) TotalPriceWithDiscount() decimal.Decimal {
	if !i.Discounted {
		return i.TotalPrice()
	}
	return i.TotalPrice().Mul(one.Sub(i.DiscountPercentage.Div(hundred)))
}
