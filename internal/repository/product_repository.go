package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Lixing-Zhang/kbeauty-catalog/internal/metrics"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/models"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/validation"
	"github.com/goccy/go-json"
)

var (
	ErrCatalogNotFound = errors.New("catalog file not found")
	ErrCatalogFormat   = errors.New("catalog file is malformed")
)

// maxImageWidth caps image_width; larger values fall back to the default
const maxImageWidth = 4096

// FormatError reports an unparsable catalog document or an invalid record.
// Index is the offending record position, or -1 when the whole document is bad.
type FormatError struct {
	Path  string
	Index int
	Err   error
}

func (e *FormatError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("catalog %s: product %d: %v", e.Path, e.Index, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	return target == ErrCatalogFormat
}

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	Load(ctx context.Context) (models.Catalog, error)
}

// JSONFileProductRepository reads the catalog from a JSON array on disk.
// Every Load reads the file again unless caching is enabled, in which case
// the parsed catalog is reused while the file's mtime and size are unchanged.
type JSONFileProductRepository struct {
	path  string
	cache bool

	mu    sync.RWMutex
	entry *cacheEntry
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	catalog models.Catalog
}

// rawProduct accepts loosely typed fields so that display-only values
// never fail a load.
type rawProduct struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       interface{} `json:"price"`
	Rating      interface{} `json:"rating"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ImageWidth  interface{} `json:"image_width"`
}

// NewJSONFileProductRepository creates a repository for the catalog at path
func NewJSONFileProductRepository(path string, cache bool) *JSONFileProductRepository {
	return &JSONFileProductRepository{
		path:  path,
		cache: cache,
	}
}

// Path returns the catalog file location
func (r *JSONFileProductRepository) Path() string {
	return r.path
}

// Load returns the catalog in file order. On error no catalog is returned.
func (r *JSONFileProductRepository) Load(ctx context.Context) (models.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metrics.RecordCatalogLoad("not_found", 0)
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, r.path)
		}
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}

	if r.cache {
		if c, ok := r.cached(info); ok {
			metrics.RecordCatalogLoad("cached", len(c))
			return c, nil
		}
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metrics.RecordCatalogLoad("not_found", 0)
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, r.path)
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	catalog, err := decodeCatalog(r.path, data)
	if err != nil {
		metrics.RecordCatalogLoad("format_error", 0)
		return nil, err
	}

	if r.cache {
		r.mu.Lock()
		r.entry = &cacheEntry{modTime: info.ModTime(), size: info.Size(), catalog: catalog}
		r.mu.Unlock()
		catalog = clone(catalog)
	}

	metrics.RecordCatalogLoad("ok", len(catalog))
	return catalog, nil
}

func (r *JSONFileProductRepository) cached(info fs.FileInfo) (models.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.entry == nil || !r.entry.modTime.Equal(info.ModTime()) || r.entry.size != info.Size() {
		return nil, false
	}
	return clone(r.entry.catalog), true
}

// clone gives each caller its own slice so the cached copy stays untouched
func clone(c models.Catalog) models.Catalog {
	out := make(models.Catalog, len(c))
	copy(out, c)
	return out
}

func decodeCatalog(path string, data []byte) (models.Catalog, error) {
	var raw []rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Path: path, Index: -1, Err: err}
	}
	if raw == nil {
		return nil, &FormatError{Path: path, Index: -1, Err: errors.New("expected a JSON array of products")}
	}

	catalog := make(models.Catalog, 0, len(raw))
	for i, rp := range raw {
		p := models.Product{
			Name:        rp.Name,
			Category:    rp.Category,
			Price:       priceText(rp.Price),
			Rating:      number(rp.Rating),
			Description: rp.Description,
			Image:       rp.Image,
			ImageWidth:  imageWidth(rp.ImageWidth),
		}
		if err := validation.Struct(p); err != nil {
			return nil, &FormatError{Path: path, Index: i, Err: err}
		}
		catalog = append(catalog, p)
	}

	return catalog, nil
}

func priceText(v interface{}) string {
	switch p := v.(type) {
	case string:
		return p
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	default:
		return ""
	}
}

func number(v interface{}) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}

func imageWidth(v interface{}) int {
	f, ok := v.(float64)
	if !ok || f < 1 || f > maxImageWidth {
		return models.DefaultImageWidth
	}
	return int(f)
}
