// Package catalog holds the filtering and recommendation rules applied to a
// loaded catalog. All functions are pure: they never modify their input and
// always return results in catalog order.
package catalog

import "github.com/Lixing-Zhang/kbeauty-catalog/internal/models"

// Status tells the presentation layer why a recommendation list looks the way it does
type Status string

const (
	StatusNoSelection    Status = "no_selection"
	StatusUnknownProduct Status = "unknown_product"
	StatusNoSiblings     Status = "no_siblings"
	StatusMatched        Status = "matched"
)

// Recommendation is the same-category lookup result for one selected product
type Recommendation struct {
	Status   Status          `json:"status"`
	Selected *models.Product `json:"selected,omitempty"`
	Products models.Catalog  `json:"products"`
}

// Criteria constrains Filter. A nil field places no constraint.
type Criteria struct {
	Category *string
	MaxPrice *float64
}

// Recommend returns every product sharing the selected product's category,
// excluding the selected product. An unknown name yields an empty result.
func Recommend(c models.Catalog, selectedName string) Recommendation {
	rec := Recommendation{Products: models.Catalog{}}

	if selectedName == "" {
		rec.Status = StatusNoSelection
		return rec
	}

	idx := indexOf(c, selectedName)
	if idx < 0 {
		rec.Status = StatusUnknownProduct
		return rec
	}

	selected := c[idx]
	rec.Selected = &selected

	for _, p := range c {
		if p.Category == selected.Category && p.Name != selectedName {
			rec.Products = append(rec.Products, p)
		}
	}

	if len(rec.Products) == 0 {
		rec.Status = StatusNoSiblings
	} else {
		rec.Status = StatusMatched
	}
	return rec
}

// Filter returns the products matching every constraint in f.
// Products without a numeric price never satisfy a price bound.
func Filter(c models.Catalog, f Criteria) models.Catalog {
	out := make(models.Catalog, 0, len(c))
	for _, p := range c {
		if f.Category != nil && p.Category != *f.Category {
			continue
		}
		if f.MaxPrice != nil {
			price, ok := p.NumericPrice()
			if !ok || price > *f.MaxPrice {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Categories lists distinct categories in order of first appearance
func Categories(c models.Catalog) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, p := range c {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

func indexOf(c models.Catalog, name string) int {
	for i, p := range c {
		if p.Name == name {
			return i
		}
	}
	return -1
}
