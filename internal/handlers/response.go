package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kbeauty-catalog/internal/repository"
	"github.com/goccy/go-json"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, map[string]string{"error": message}, logger)
}

// catalogErrorMessage maps a load failure to a user-facing message
func catalogErrorMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrCatalogNotFound):
		return "Catalog unavailable: product file not found"
	case errors.Is(err, repository.ErrCatalogFormat):
		return "Catalog unavailable: product file is malformed"
	default:
		return "Internal server error"
	}
}
