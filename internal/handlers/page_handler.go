package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/kbeauty-catalog/internal/catalog"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/metrics"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/models"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// ImagePathPrefix is where product images are served from
const ImagePathPrefix = "/images/"

// PageHandler renders the catalog browsing page
type PageHandler struct {
	service   *service.CatalogService
	templates *template.Template
	imageRoot string
	logger    *slog.Logger
}

// card is one product as shown on the page
type card struct {
	models.Product
	ImageURL     string
	ImageMissing bool
}

type pageData struct {
	Title            string
	Categories       []string
	SelectedCategory string
	MaxPrice         string
	Names            []string
	Catalog          []card
	Filtered         []card
	Filtering        bool
	Selected         string
	Recommendation   catalog.Recommendation
	Recommended      []card
	Error            string
}

const pageTitle = "K-Beauty AI Store"

// NewPageHandler parses the embedded templates
func NewPageHandler(service *service.CatalogService, imageRoot string, logger *slog.Logger) (*PageHandler, error) {
	funcMap := template.FuncMap{
		"rating": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &PageHandler{
		service:   service,
		templates: tmpl,
		imageRoot: imageRoot,
		logger:    logger,
	}, nil
}

// ServeHTTP handles GET /
// Query: category, max_price (filter form) and product (selection).
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseFilterQuery(r)
	if err != nil {
		h.logger.Warn("invalid page query", "query", r.URL.RawQuery, "error", err)
		h.render(w, http.StatusBadRequest, "error.html", pageData{Title: pageTitle, Error: err.Error()})
		return
	}

	selected := strings.TrimSpace(r.URL.Query().Get("product"))

	result, err := h.service.Browse(r.Context(), service.BrowseRequest{
		Criteria:     criteria,
		SelectedName: selected,
	})
	if err != nil {
		h.render(w, http.StatusInternalServerError, "error.html", pageData{Title: pageTitle, Error: catalogErrorMessage(err)})
		return
	}

	data := pageData{
		Title:          pageTitle,
		Categories:     result.Categories,
		MaxPrice:       r.URL.Query().Get("max_price"),
		Names:          result.Catalog.Names(),
		Catalog:        h.cards(result.Catalog),
		Filtering:      criteria.Category != nil || criteria.MaxPrice != nil,
		Selected:       selected,
		Recommendation: result.Recommendation,
	}
	if criteria.Category != nil {
		data.SelectedCategory = *criteria.Category
	}
	if data.Filtering {
		data.Filtered = h.cards(result.Filtered)
	}
	data.Recommended = h.cards(result.Recommendation.Products)

	h.render(w, http.StatusOK, "catalog.html", data)
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	// Render fully before writing so a template failure never leaves half a page
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write page", "error", err)
	}
}

func (h *PageHandler) cards(products models.Catalog) []card {
	out := make([]card, len(products))
	for i, p := range products {
		out[i] = card{Product: p}
		rel, ok := imageRelPath(p.Image)
		if !ok {
			out[i].ImageMissing = true
		} else if _, err := os.Stat(filepath.Join(h.imageRoot, filepath.FromSlash(rel))); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				h.logger.Warn("failed to stat product image", "product", p.Name, "image", p.Image, "error", err)
			}
			out[i].ImageMissing = true
		} else {
			out[i].ImageURL = ImagePathPrefix + rel
		}

		if out[i].ImageMissing {
			metrics.MissingImages.Inc()
			h.logger.Debug("product image missing", "product", p.Name, "image", p.Image)
		}
	}
	return out
}

// imageRelPath confines an image path to the image root, returning it in
// slash form without a leading slash
func imageRelPath(image string) (string, bool) {
	if strings.TrimSpace(image) == "" {
		return "", false
	}
	rel := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(image)), "/")
	if rel == "" {
		return "", false
	}
	return rel, true
}
