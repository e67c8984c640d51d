package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shopbasket/basket-api/internal/domain/basket"
	"github.com/shopbasket/basket-api/internal/domain/discount"
)

// addItemRequest carries one item payload. Quantity is a pointer so an
// omitted field defaults to 1 while an explicit zero is rejected.
type addItemRequest struct {
	ID                 string          `json:"id" validate:"required"`
	Name               string          `json:"name" validate:"required"`
	UnitPrice          decimal.Decimal `json:"unitPrice" validate:"gt=0"`
	Quantity           *int            `json:"quantity" validate:"required,min=1"`
	IsDiscounted       bool            `json:"isDiscounted"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage" validate:"gte=0,lte=100"`
}

func (r *addItemRequest) applyDefaults() {
	if r.Quantity == nil {
		qty := 1
		r.Quantity = &qty
	}
}

func (r addItemRequest) toItem() basket.Item {
	return basket.Item{
		ID:                 r.ID,
		Name:               r.Name,
		UnitPrice:          r.UnitPrice,
		Quantity:           *r.Quantity,
		Discounted:         r.IsDiscounted,
		DiscountPercentage: r.DiscountPercentage,
	}
}

type addItemsRequest struct {
	Items []addItemRequest `json:"items" validate:"dive"`
}

func (r *addItemsRequest) applyDefaults() {
	for i := range r.Items {
		r.Items[i].applyDefaults()
	}
}

type applyDiscountCodeRequest struct {
	DiscountCode string `json:"discountCode" validate:"required"`
}

type setShippingRequest struct {
	Country string `json:"country" validate:"required"`
}

// GetBasket returns the basket summary, materializing an empty basket on
// first reference.
func (h *Handler) GetBasket(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBasket(r.Context(), chi.URLParam(r, "basketID"))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryFromBasket(b))
}

// AddItem adds a single item to the basket.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, err := h.service.AddItem(r.Context(), chi.URLParam(r, "basketID"), req.toItem())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryFromBasket(b))
}

// AddItems adds a list of items in input order. The batch is not atomic.
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	var req addItemsRequest
	if !h.decode(w, r, &req) {
		return
	}
	items := make([]basket.Item, len(req.Items))
	for i, ir := range req.Items {
		items[i] = ir.toItem()
	}
	b, err := h.service.AddItems(r.Context(), chi.URLParam(r, "basketID"), items)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryFromBasket(b))
}

// RemoveItem removes an item from the basket. Removing an unknown item id
// still returns the (unchanged) summary.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.RemoveItem(r.Context(),
		chi.URLParam(r, "basketID"), chi.URLParam(r, "itemID"))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryFromBasket(b))
}

// TotalWithVAT returns the grand total as a bare number rounded to 2 dp.
func (h *Handler) TotalWithVAT(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBasket(r.Context(), chi.URLParam(r, "basketID"))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roundMoney(b.TotalIncludingVAT()))
}

// TotalWithoutVAT returns subtotal plus shipping as a bare number rounded
// to 2 dp.
func (h *Handler) TotalWithoutVAT(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBasket(r.Context(), chi.URLParam(r, "basketID"))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roundMoney(b.TotalExcludingVAT()))
}

// ApplyDiscountCode applies a registry code to the basket. Unknown or
// inactive codes are a 400 and leave the basket unchanged.
func (h *Handler) ApplyDiscountCode(w http.ResponseWriter, r *http.Request) {
	var req applyDiscountCodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, err := h.service.ApplyDiscountCode(r.Context(), chi.URLParam(r, "basketID"), req.DiscountCode)
	if err != nil {
		if errors.Is(err, discount.ErrInvalidCode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryFromBasket(b))
}

// SetShipping overwrites the basket's shipping destination.
func (h *Handler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var req setShippingRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, err := h.service.SetShippingDestination(r.Context(), chi.URLParam(r, "basketID"), req.Country)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryFromBasket(b))
}

// ListDiscountCodes returns the active discount codes in registry order.
func (h *Handler) ListDiscountCodes(w http.ResponseWriter, _ *http.Request) {
	codes := h.service.ListDiscountCodes()
	resp := make([]discountCodeResponse, len(codes))
	for i, c := range codes {
		resp[i] = discountCodeResponse{
			Code:        c.Code,
			Percentage:  c.Percentage.InexactFloat64(),
			IsActive:    c.Active,
			Description: c.Description,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type discountCodeResponse struct {
	Code        string  `json:"code"`
	Percentage  float64 `json:"percentage"`
	IsActive    bool    `json:"isActive"`
	Description string  `json:"description"`
}

type basketItemResponse struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	UnitPrice              float64 `json:"unitPrice"`
	Quantity               int     `json:"quantity"`
	IsDiscounted           bool    `json:"isDiscounted"`
	DiscountPercentage     float64 `json:"discountPercentage"`
	TotalPrice             float64 `json:"totalPrice"`
	TotalPriceWithDiscount float64 `json:"totalPriceWithDiscount"`
}

// basketSummaryResponse is the full cost breakdown. Monetary fields are
// rounded to 2 decimal places here and nowhere else.
type basketSummaryResponse struct {
	BasketID               string               `json:"basketId"`
	Items                  []basketItemResponse `json:"items"`
	DiscountCode           string               `json:"discountCode,omitempty"`
	DiscountCodePercentage float64              `json:"discountCodePercentage"`
	ShippingCountry        string               `json:"shippingCountry"`
	SubtotalExcludingVat   float64              `json:"subtotalExcludingVat"`
	ShippingCost           float64              `json:"shippingCost"`
	VatAmount              float64              `json:"vatAmount"`
	TotalExcludingVat      float64              `json:"totalExcludingVat"`
	TotalIncludingVat      float64              `json:"totalIncludingVat"`
}

func summaryFromBasket(b *basket.Basket) basketSummaryResponse {
	items := make([]basketItemResponse, len(b.Items))
	for i, item := range b.Items {
		items[i] = basketItemResponse{
			ID:                     item.ID,
			Name:                   item.Name,
			UnitPrice:              roundMoney(item.UnitPrice),
			Quantity:               item.Quantity,
			IsDiscounted:           item.Discounted,
			DiscountPercentage:     item.DiscountPercentage.InexactFloat64(),
			TotalPrice:             roundMoney(item.TotalPrice()),
			TotalPriceWithDiscount: roundMoney(item.TotalPriceWithDiscount()),
		}
	}
	return basketSummaryResponse{
		BasketID:               b.ID,
		Items:                  items,
		DiscountCode:           b.DiscountCode,
		DiscountCodePercentage: b.DiscountCodePercentage.InexactFloat64(),
		ShippingCountry:        b.ShippingCountry,
		SubtotalExcludingVat:   roundMoney(b.SubtotalExcludingVAT()),
		ShippingCost:           roundMoney(b.ShippingCost()),
		VatAmount:              roundMoney(b.VATAmount()),
		TotalExcludingVat:      roundMoney(b.TotalExcludingVAT()),
		TotalIncludingVat:      roundMoney(b.TotalIncludingVAT()),
	}
}

func roundMoney(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
