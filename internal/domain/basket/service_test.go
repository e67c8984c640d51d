package basket

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbasket/basket-api/internal/domain/discount"
)

// stubStore is a minimal, single-goroutine Store for service tests.
type stubStore struct {
	baskets map[string]*Basket
}

func newStubStore() *stubStore {
	return &stubStore{baskets: make(map[string]*Basket)}
}

func (s *stubStore) Get(ctx context.Context, id string) (*Basket, error) {
	return s.Update(ctx, id, nil)
}

func (s *stubStore) Update(_ context.Context, id string, fn func(*Basket) error) (*Basket, error) {
	b, ok := s.baskets[id]
	if !ok {
		b = New(id)
		s.baskets[id] = b
	}
	if fn != nil {
		if err := fn(b); err != nil {
			return nil, err
		}
	}
	return b.Clone(), nil
}

func newTestService() (*Service, *stubStore) {
	store := newStubStore()
	return NewService(store, discount.NewRegistry(discount.DefaultCodes())), store
}

func TestGetBasket_CreatesOnFirstReference(t *testing.T) {
	svc, store := newTestService()

	b, err := svc.GetBasket(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	assert.Empty(t, b.Items)
	assert.Equal(t, DefaultShippingCountry, b.ShippingCountry)
	assert.Len(t, store.baskets, 1)
}

func TestAddItem(t *testing.T) {
	svc, _ := newTestService()

	b, err := svc.AddItem(context.Background(), "b1", Item{
		ID: "A", Name: "Widget", UnitPrice: dec("10.00"), Quantity: 2,
	})
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.True(t, dec("20.00").Equal(b.Items[0].TotalPrice()))
}

func TestAddItem_DuplicateMergesIntoSingleLine(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "b1", Item{ID: "A", Name: "Widget", UnitPrice: dec("10.00"), Quantity: 1})
	require.NoError(t, err)
	b, err := svc.AddItem(ctx, "b1", Item{ID: "A", Name: "Widget", UnitPrice: dec("10.00"), Quantity: 1})
	require.NoError(t, err)

	require.Len(t, b.Items, 1)
	assert.Equal(t, 2, b.Items[0].Quantity)
}

func TestAddItems_AppliedInOrder(t *testing.T) {
	svc, _ := newTestService()

	b, err := svc.AddItems(context.Background(), "b1", []Item{
		{ID: "A", UnitPrice: dec("1.00"), Quantity: 1},
		{ID: "B", UnitPrice: dec("2.00"), Quantity: 1},
		{ID: "A", UnitPrice: dec("1.00"), Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, b.Items, 2)
	assert.Equal(t, "A", b.Items[0].ID)
	assert.Equal(t, 3, b.Items[0].Quantity)
	assert.Equal(t, "B", b.Items[1].ID)
}

func TestAddItems_EmptyReturnsBasket(t *testing.T) {
	svc, _ := newTestService()

	b, err := svc.AddItems(context.Background(), "b1", nil)
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	assert.Empty(t, b.Items)
}

func TestRemoveItem_UnknownIDIsNoop(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "b1", Item{ID: "A", UnitPrice: dec("1.00"), Quantity: 1})
	require.NoError(t, err)

	b, err := svc.RemoveItem(ctx, "b1", "missing")
	require.NoError(t, err)
	assert.Len(t, b.Items, 1)

	b, err = svc.RemoveItem(ctx, "b1", "A")
	require.NoError(t, err)
	assert.Empty(t, b.Items)
}

func TestApplyDiscountCode_CaseInsensitiveCanonicalizes(t *testing.T) {
	svc, _ := newTestService()

	b, err := svc.ApplyDiscountCode(context.Background(), "b1", "save10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", b.DiscountCode)
	assert.True(t, decimal.NewFromInt(10).Equal(b.DiscountCodePercentage))
}

func TestApplyDiscountCode_UnknownLeavesStateUnchanged(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.ApplyDiscountCode(ctx, "b1", "WELCOME20")
	require.NoError(t, err)

	_, err = svc.ApplyDiscountCode(ctx, "b1", "BOGUS")
	require.ErrorIs(t, err, discount.ErrInvalidCode)

	b, err := svc.GetBasket(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "WELCOME20", b.DiscountCode)
	assert.True(t, decimal.NewFromInt(20).Equal(b.DiscountCodePercentage))
}

func TestApplyDiscountCode_FailureStillMaterializesBasket(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.ApplyDiscountCode(context.Background(), "b1", "BOGUS")
	require.ErrorIs(t, err, discount.ErrInvalidCode)
	assert.Len(t, store.baskets, 1)
}

func TestSetShippingDestination_Unconditional(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b, err := svc.SetShippingDestination(ctx, "b1", "France")
	require.NoError(t, err)
	assert.Equal(t, "France", b.ShippingCountry)
	assert.True(t, InternationalShippingCost.Equal(b.ShippingCost()))

	// Any string is accepted; the shipping rule decides the rate.
	b, err = svc.SetShippingDestination(ctx, "b1", "not-a-country")
	require.NoError(t, err)
	assert.Equal(t, "not-a-country", b.ShippingCountry)
}

func TestListDiscountCodes(t *testing.T) {
	svc, _ := newTestService()

	codes := svc.ListDiscountCodes()
	require.Len(t, codes, 3)
	assert.Equal(t, "SAVE10", codes[0].Code)
	assert.Equal(t, "WELCOME20", codes[1].Code)
	assert.Equal(t, "SUMMER15", codes[2].Code)
}
