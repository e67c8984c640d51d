// Package handler exposes the basket service over HTTP. It owns request
// decoding and validation, monetary rounding, and mapping domain errors to
// status codes; all behaviour lives in the basket service.
package handler

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopbasket/basket-api/internal/domain/basket"
)

// Handler serves the /api/basket subtree.
type Handler struct {
	service  *basket.Service
	validate *validator.Validate
}

// NewHandler constructs a Handler around the given basket service.
func NewHandler(service *basket.Service) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Numeric tags (gt, gte, lte) need a primitive view of decimal fields.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	return &Handler{
		service:  service,
		validate: v,
	}
}

// Routes returns the router for the basket API. Mount it under /api/basket.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/discount-codes", h.ListDiscountCodes)
	r.Route("/{basketID}", func(r chi.Router) {
		r.Get("/", h.GetBasket)
		r.Post("/items", h.AddItem)
		r.Post("/items/bulk", h.AddItems)
		r.Delete("/items/{itemID}", h.RemoveItem)
		r.Get("/total-with-vat", h.TotalWithVAT)
		r.Get("/total-without-vat", h.TotalWithoutVAT)
		r.Post("/discount-code", h.ApplyDiscountCode)
		r.Post("/shipping", h.SetShipping)
	})
	return r
}

// errorResponse is the JSON body for all rejected requests.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// decode unmarshals the request body into dst and validates it. On failure
// it writes a 400 response and reports false; the core is never invoked for
// a malformed request.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if defaulter, ok := dst.(interface{ applyDefaults() }); ok {
		defaulter.applyDefaults()
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns the first field error into a caller-friendly
// message using the JSON field name.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "validation failed"
	}
	fe := fieldErrs[0]
	field := jsonFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte", "min":
		return field + " must be at least " + fe.Param()
	case "lte", "max":
		return field + " must be at most " + fe.Param()
	default:
		return field + " is invalid"
	}
}

// jsonFieldName lowercases the first rune of an exported field name, which
// matches the camelCase JSON tags used by the request DTOs.
func jsonFieldName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// internalError logs the error with the request-scoped logger and responds
// with a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
