package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Lixing-Zhang/kbeauty-catalog/internal/catalog"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/service"
	"github.com/go-chi/chi/v5"
)

// ProductHandler serves the catalog as JSON
type ProductHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// RecommendationResponse is the body of GET /api/product/{name}/recommendations
type RecommendationResponse struct {
	Query string `json:"query"`
	catalog.Recommendation
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ListProducts handles GET /api/product
// Optional ?category= and ?max_price= narrow the result; without them the
// whole catalog is returned in file order.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseFilterQuery(r)
	if err != nil {
		h.logger.Warn("invalid product query", "query", r.URL.RawQuery, "error", err)
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	products, err := h.service.FilterProducts(r.Context(), criteria)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, catalogErrorMessage(err), h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products, h.logger)
}

// ListCategories handles GET /api/product/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, catalogErrorMessage(err), h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, categories, h.logger)
}

// GetRecommendations handles GET /api/product/{name}/recommendations
// An unknown name is not an error: the response carries status
// "unknown_product" and an empty product list.
func (h *ProductHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, leaving the param escaped
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	if name == "" {
		WriteError(w, http.StatusBadRequest, "Product name is required", h.logger)
		return
	}

	rec, err := h.service.Recommend(r.Context(), name)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, catalogErrorMessage(err), h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, RecommendationResponse{Query: name, Recommendation: rec}, h.logger)
}
