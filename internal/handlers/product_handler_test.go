package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Lixing-Zhang/kbeauty-catalog/internal/catalog"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/models"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/repository"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/service"
	"github.com/Lixing-Zhang/kbeauty-catalog/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const testCatalogJSON = `[
  {"name": "A", "category": "lip", "price": "$10", "rating": 4.5, "description": "Velvet tint", "image": "images/a.png"},
  {"name": "B", "category": "lip", "price": "$12", "rating": 4.1, "description": "Glow balm", "image": "images/missing.png"},
  {"name": "C", "category": "eye", "price": "$8", "rating": 3.9, "description": "Liner", "image": "images/c.png", "image_width": 120},
  {"name": "Rose Cushion", "category": "base", "price": "N/A", "rating": 4.8, "description": "Cushion", "image": ""}
]`

// setupCatalog writes the catalog and two of its images into a temp dir
// and returns the catalog path and image root
func setupCatalog(t *testing.T, content string) (string, string) {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "images"), 0755); err != nil {
		t.Fatalf("failed to create image dir: %v", err)
	}
	for _, name := range []string{"a.png", "c.png"} {
		if err := os.WriteFile(filepath.Join(root, "images", name), []byte("png"), 0644); err != nil {
			t.Fatalf("failed to create image: %v", err)
		}
	}

	path := filepath.Join(root, "products.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	return path, root
}

func newTestService(path string) *service.CatalogService {
	return service.NewCatalogService(repository.NewJSONFileProductRepository(path, false), logger.New("error"))
}

func newProductRouter(t *testing.T, path string) http.Handler {
	t.Helper()

	handler := NewProductHandler(newTestService(path), logger.New("error"))

	r := chi.NewRouter()
	r.Get("/api/product", handler.ListProducts)
	r.Get("/api/product/categories", handler.ListCategories)
	r.Get("/api/product/{name}/recommendations", handler.GetRecommendations)
	return r
}

func TestListProducts(t *testing.T) {
	path, _ := setupCatalog(t, testCatalogJSON)
	r := newProductRouter(t, path)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"full catalog", "", []string{"A", "B", "C", "Rose Cushion"}},
		{"empty params", "?category=&max_price=", []string{"A", "B", "C", "Rose Cushion"}},
		{"category", "?category=lip", []string{"A", "B"}},
		{"max price", "?max_price=10", []string{"A", "C"}},
		{"category and max price", "?category=lip&max_price=11.5", []string{"A"}},
		{"no matches", "?category=nail", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/product"+tc.query, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}

			var products models.Catalog
			if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if got := products.Names(); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestListProducts_ProductFields(t *testing.T) {
	path, _ := setupCatalog(t, testCatalogJSON)
	r := newProductRouter(t, path)

	req := httptest.NewRequest(http.MethodGet, "/api/product?category=eye", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var products []models.Product
	if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}

	p := products[0]
	if p.Name != "C" || p.Price != "$8" || p.Rating != 3.9 || p.ImageWidth != 120 {
		t.Errorf("unexpected product %+v", p)
	}
}

func TestListProducts_InvalidQuery(t *testing.T) {
	path, _ := setupCatalog(t, testCatalogJSON)
	r := newProductRouter(t, path)

	testCases := []struct {
		name  string
		query string
	}{
		{"letters", "?max_price=cheap"},
		{"negative", "?max_price=-1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/product"+tc.query, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}

			var response map[string]string
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if response["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestListProducts_CatalogUnavailable(t *testing.T) {
	testCases := []struct {
		name    string
		path    func(t *testing.T) string
		message string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") },
			message: "Catalog unavailable: product file not found",
		},
		{
			name: "malformed file",
			path: func(t *testing.T) string {
				path, _ := setupCatalog(t, `{"not": "an array"}`)
				return path
			},
			message: "Catalog unavailable: product file is malformed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newProductRouter(t, tc.path(t))

			req := httptest.NewRequest(http.MethodGet, "/api/product", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("expected status 500, got %d", w.Code)
			}

			var response map[string]string
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if response["error"] != tc.message {
				t.Errorf("expected error %q, got %q", tc.message, response["error"])
			}
		})
	}
}

func TestListCategories(t *testing.T) {
	path, _ := setupCatalog(t, testCatalogJSON)
	r := newProductRouter(t, path)

	req := httptest.NewRequest(http.MethodGet, "/api/product/categories", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var categories []string
	if err := json.NewDecoder(w.Body).Decode(&categories); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if want := []string{"lip", "eye", "base"}; !reflect.DeepEqual(categories, want) {
		t.Errorf("expected %v, got %v", want, categories)
	}
}

func TestGetRecommendations(t *testing.T) {
	path, _ := setupCatalog(t, testCatalogJSON)
	r := newProductRouter(t, path)

	testCases := []struct {
		name       string
		product    string
		wantQuery  string
		wantStatus catalog.Status
		wantNames  []string
		wantChosen string
	}{
		{"matched", "A", "A", catalog.StatusMatched, []string{"B"}, "A"},
		{"no siblings", "C", "C", catalog.StatusNoSiblings, []string{}, "C"},
		{"escaped name", "Rose%20Cushion", "Rose Cushion", catalog.StatusNoSiblings, []string{}, "Rose Cushion"},
		{"unknown product", "Nope", "Nope", catalog.StatusUnknownProduct, []string{}, ""},
		{"escaped percent decoded once", "Tint%20%2541", "Tint %41", catalog.StatusUnknownProduct, []string{}, ""},
		{"escaped slash", "A%2FB", "A/B", catalog.StatusUnknownProduct, []string{}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/product/"+tc.product+"/recommendations", nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}

			var response RecommendationResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if response.Query != tc.wantQuery {
				t.Errorf("expected query %q, got %q", tc.wantQuery, response.Query)
			}
			if response.Status != tc.wantStatus {
				t.Errorf("expected status %s, got %s", tc.wantStatus, response.Status)
			}
			if response.Products == nil {
				t.Fatal("expected products to be an array, got null")
			}
			if got := response.Products.Names(); !reflect.DeepEqual(got, tc.wantNames) {
				t.Errorf("expected %v, got %v", tc.wantNames, got)
			}

			chosen := ""
			if response.Selected != nil {
				chosen = response.Selected.Name
			}
			if chosen != tc.wantChosen {
				t.Errorf("expected selected %q, got %q", tc.wantChosen, chosen)
			}
		})
	}
}
