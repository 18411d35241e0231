package models

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// DefaultImageWidth is used when a record has no usable image_width
const DefaultImageWidth = 200

// Product represents a cosmetic product in the catalog file
type Product struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Price       string  `json:"price" validate:"required"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	ImageWidth  int     `json:"image_width"`
}

// Catalog is the ordered product list for a single request.
// It is never mutated after loading.
type Catalog []Product

// NumericPrice converts the display price to an amount.
// ok is false when the price cannot be parsed; such products never
// satisfy a price bound.
func (p Product) NumericPrice() (amount float64, ok bool) {
	return ParsePrice(p.Price)
}

// ParsePrice strips a leading currency symbol and thousands separators and
// parses the remainder, e.g. "$25" -> 25, "₩12,000" -> 12000.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.Is(unicode.Sc, r) || unicode.IsSpace(r)
	})
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Names returns product names in catalog order
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name
	}
	return names
}
