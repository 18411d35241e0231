package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/kbeauty-catalog/internal/models"
)

// catalogLister is the part of the catalog service the health check needs
type catalogLister interface {
	ListProducts(ctx context.Context) (models.Catalog, error)
}

// HealthHandler reports whether the catalog file can currently be loaded
type HealthHandler struct {
	catalog catalogLister
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(catalog catalogLister, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Products  int       `json:"products"`
	Error     string    `json:"error,omitempty"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}

	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		response.Status = "unhealthy"
		response.Error = catalogErrorMessage(err)
		WriteJSON(w, http.StatusServiceUnavailable, response, h.logger)
		return
	}

	response.Products = len(products)
	WriteJSON(w, http.StatusOK, response, h.logger)
}
