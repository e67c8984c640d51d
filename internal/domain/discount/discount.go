// Package discount holds the read-only discount code registry. The registry
// is constructed once at startup from configuration and injected into the
// basket service; there is no mutation API.
package discount

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidCode is returned when a code is unknown or inactive.
var ErrInvalidCode = errors.New("invalid or inactive discount code")

// Code is a named percentage discount.
type Code struct {
	Code        string
	Percentage  decimal.Decimal
	Active      bool
	Description string
}

// Registry is a fixed set of discount codes. Lookup is case-insensitive and
// restricted to active codes; listing preserves seed order.
type Registry struct {
	codes []Code
	index map[string]int
}

// NewRegistry builds a registry from the seed set. When two codes collide
// case-insensitively, the later one wins the lookup.
func NewRegistry(codes []Code) *Registry {
	r := &Registry{
		codes: make([]Code, len(codes)),
		index: make(map[string]int, len(codes)),
	}
	copy(r.codes, codes)
	for i, c := range r.codes {
		r.index[strings.ToUpper(c.Code)] = i
	}
	return r
}

// Find returns the active code matching the given string case-insensitively.
// Unknown and inactive codes both yield ErrInvalidCode.
func (r *Registry) Find(code string) (Code, error) {
	i, ok := r.index[strings.ToUpper(code)]
	if !ok || !r.codes[i].Active {
		return Code{}, ErrInvalidCode
	}
	return r.codes[i], nil
}

// List returns the active codes in registry order.
func (r *Registry) List() []Code {
	out := make([]Code, 0, len(r.codes))
	for _, c := range r.codes {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

// DefaultCodes is the seed set used when configuration does not provide one.
func DefaultCodes() []Code {
	return []Code{
		{Code: "SAVE10", Percentage: decimal.NewFromInt(10), Active: true, Description: "10% off your order"},
		{Code: "WELCOME20", Percentage: decimal.NewFromInt(20), Active: true, Description: "20% off for new customers"},
		{Code: "SUMMER15", Percentage: decimal.NewFromInt(15), Active: true, Description: "15% summer discount"},
	}
}
