package basket

import (
	"context"

	"github.com/shopbasket/basket-api/internal/domain/discount"
)

// Store abstracts the concurrent basket collection. Get materializes an
// empty basket on first reference, so lookups never fail for an unknown id.
// Update must run get-or-create plus fn atomically for the given basket id
// and return a snapshot of the mutated basket; when fn returns an error the
// basket state is left unchanged.
type Store interface {
	Get(ctx context.Context, id string) (*Basket, error)
	Update(ctx context.Context, id string, fn func(*Basket) error) (*Basket, error)
}

// Service implements the basket use cases on top of a Store and the
// discount code registry.
type Service struct {
	baskets Store
	codes   *discount.Registry
}

// NewService creates a Service with the required dependencies.
func NewService(baskets Store, codes *discount.Registry) *Service {
	return &Service{
		baskets: baskets,
		codes:   codes,
	}
}

// GetBasket resolves the basket, creating an empty one on first reference.
func (s *Service) GetBasket(ctx context.Context, basketID string) (*Basket, error) {
	return s.baskets.Get(ctx, basketID)
}

// AddItem appends the item, or merges it into an existing line with the
// same id.
func (s *Service) AddItem(ctx context.Context, basketID string, item Item) (*Basket, error) {
	return s.baskets.Update(ctx, basketID, func(b *Basket) error {
		b.UpsertItem(item)
		return nil
	})
}

// AddItems applies the items one by one in input order. The batch is not
// atomic: a failure partway leaves earlier items applied.
func (s *Service) AddItems(ctx context.Context, basketID string, items []Item) (*Basket, error) {
	last := (*Basket)(nil)
	for _, item := range items {
		b, err := s.AddItem(ctx, basketID, item)
		if err != nil {
			return nil, err
		}
		last = b
	}
	if last == nil {
		return s.baskets.Get(ctx, basketID)
	}
	return last, nil
}

// RemoveItem drops the item when present; an unknown item id is a silent
// no-op.
func (s *Service) RemoveItem(ctx context.Context, basketID, itemID string) (*Basket, error) {
	return s.baskets.Update(ctx, basketID, func(b *Basket) error {
		b.RemoveItem(itemID)
		return nil
	})
}

// ApplyDiscountCode looks the code up in the registry and stores the
// canonical code together with its percentage. An unknown or inactive code
// yields discount.ErrInvalidCode and leaves the basket's discount state
// untouched; the basket itself is still materialized.
func (s *Service) ApplyDiscountCode(ctx context.Context, basketID, code string) (*Basket, error) {
	return s.baskets.Update(ctx, basketID, func(b *Basket) error {
		dc, err := s.codes.Find(code)
		if err != nil {
			return err
		}
		b.SetDiscount(dc.Code, dc.Percentage)
		return nil
	})
}

// SetShippingDestination overwrites the shipping country unconditionally.
// Unrecognized values are priced at the international rate.
func (s *Service) SetShippingDestination(ctx context.Context, basketID, country string) (*Basket, error) {
	return s.baskets.Update(ctx, basketID, func(b *Basket) error {
		b.ShippingCountry = country
		return nil
	})
}

// ListDiscountCodes returns the active codes in registry order.
func (s *Service) ListDiscountCodes() []discount.Code {
	return s.codes.List()
}
