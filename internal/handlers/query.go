package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/kbeauty-catalog/internal/catalog"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/validation"
)

// filterQuery is the category/price part of a catalog query string
type filterQuery struct {
	Category string
	MaxPrice *float64 `validate:"omitempty,gte=0"`
}

// parseFilterQuery reads ?category= and ?max_price=. Empty values mean no constraint.
func parseFilterQuery(r *http.Request) (catalog.Criteria, error) {
	q := r.URL.Query()
	fq := filterQuery{Category: strings.TrimSpace(q.Get("category"))}

	if raw := strings.TrimSpace(q.Get("max_price")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return catalog.Criteria{}, errors.New("max_price must be a number")
		}
		fq.MaxPrice = &v
	}

	if err := validation.Struct(fq); err != nil {
		return catalog.Criteria{}, err
	}

	var criteria catalog.Criteria
	if fq.Category != "" {
		criteria.Category = &fq.Category
	}
	criteria.MaxPrice = fq.MaxPrice
	return criteria, nil
}
