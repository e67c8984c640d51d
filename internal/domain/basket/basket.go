package basket

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultShippingCountry is assigned to every newly created basket.
const DefaultShippingCountry = "UK"

// Pricing constants. VAT is charged on the goods subtotal only, never on
// shipping. Exactly one shipping rate applies at a time, selected solely by
// the basket's shipping country.
var (
	VATRate                   = decimal.RequireFromString("0.20")
	UKShippingCost            = decimal.RequireFromString("5.99")
	InternationalShippingCost = decimal.RequireFromString("15.99")
)

// Basket owns an ordered list of items plus discount-code and shipping
// state. Every monetary figure is recomputed from the current fields on each
// call; nothing is cached. Values keep full decimal precision here and are
// rounded at the transport boundary only.
type Basket struct {
	ID                     string
	Items                  []Item
	DiscountCode           string
	DiscountCodePercentage decimal.Decimal
	ShippingCountry        string
}

// New returns an empty basket with the given id and the default shipping
// country.
func New(id string) *Basket {
	return &Basket{
		ID:              id,
		ShippingCountry: DefaultShippingCountry,
	}
}

// UpsertItem appends the item, or merges it into an existing line with the
// same id: quantities add up while the remaining fields take the incoming
// values. Insertion order is preserved.
func (b *Basket) UpsertItem(item Item) {
	for idx := range b.Items {
		if b.Items[idx].ID == item.ID {
			item.Quantity += b.Items[idx].Quantity
			b.Items[idx] = item
			return
		}
	}
	b.Items = append(b.Items, item)
}

// RemoveItem deletes the first item with the given id and reports whether
// anything changed. Removing an unknown id is a no-op, not an error.
func (b *Basket) RemoveItem(itemID string) bool {
	for idx := range b.Items {
		if b.Items[idx].ID == itemID {
			b.Items = append(b.Items[:idx], b.Items[idx+1:]...)
			return true
		}
	}
	return false
}

// SetDiscount records an applied discount code and its percentage. The two
// fields are only ever set together.
func (b *Basket) SetDiscount(code string, percentage decimal.Decimal) {
	b.DiscountCode = code
	b.DiscountCodePercentage = percentage
}

// SubtotalExcludingVAT computes the goods subtotal. The basket-level code
// reduces only the non-discounted portion: lines that already carry a
// per-item discount are never discounted twice.
func (b *Basket) SubtotalExcludingVAT() decimal.Decimal {
	nonDiscounted := decimal.Zero
	discounted := decimal.Zero
	for _, item := range b.Items {
		if item.Discounted {
			discounted = discounted.Add(item.TotalPriceWithDiscount())
		} else {
			nonDiscounted = nonDiscounted.Add(item.TotalPrice())
		}
	}
	reduction := nonDiscounted.Mul(b.DiscountCodePercentage.Div(hundred))
	return nonDiscounted.Sub(reduction).Add(discounted)
}

// ShippingCost selects between the domestic and international flat rates.
// Anything that does not match "UK" case-insensitively ships internationally.
func (b *Basket) ShippingCost() decimal.Decimal {
	if strings.EqualFold(b.ShippingCountry, DefaultShippingCountry) {
		return UKShippingCost
	}
	return InternationalShippingCost
}

// VATAmount returns the VAT charged on the goods subtotal.
func (b *Basket) VATAmount() decimal.Decimal {
	return b.SubtotalExcludingVAT().Mul(VATRate)
}

// TotalExcludingVAT returns subtotal plus shipping, without VAT.
func (b *Basket) TotalExcludingVAT() decimal.Decimal {
	return b.SubtotalExcludingVAT().Add(b.ShippingCost())
}

// TotalIncludingVAT returns subtotal plus VAT plus shipping.
func (b *Basket) TotalIncludingVAT() decimal.Decimal {
	return b.SubtotalExcludingVAT().Add(b.VATAmount()).Add(b.ShippingCost())
}

// Clone returns a deep copy. The store hands out clones so that callers
// compute derived values over a snapshot that cannot change underneath them.
func (b *Basket) Clone() *Basket {
	c := *b
	c.Items = make([]Item, len(b.Items))
	copy(c.Items, b.Items)
	return &c
}
