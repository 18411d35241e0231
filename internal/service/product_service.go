package service

import (
	"context"
	"log/slog"

	"github.com/Lixing-Zhang/kbeauty-catalog/internal/catalog"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/metrics"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/models"
	"github.com/Lixing-Zhang/kbeauty-catalog/internal/repository"
)

// CatalogService loads the catalog once per call and runs the
// filter and recommendation rules against that snapshot
type CatalogService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// BrowseRequest is one page render's worth of user selections
type BrowseRequest struct {
	Criteria     catalog.Criteria
	SelectedName string
}

// BrowseResult carries everything a page needs, computed from a single load
type BrowseResult struct {
	Catalog        models.Catalog
	Categories     []string
	Filtered       models.Catalog
	Recommendation catalog.Recommendation
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
	}
}

// ListProducts returns the full catalog in file order
func (s *CatalogService) ListProducts(ctx context.Context) (models.Catalog, error) {
	return s.load(ctx)
}

// Categories returns the distinct catalog categories
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Categories(c), nil
}

// FilterProducts returns the products matching the criteria
func (s *CatalogService) FilterProducts(ctx context.Context, criteria catalog.Criteria) (models.Catalog, error) {
	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(c, criteria), nil
}

// Recommend returns same-category products for the named product
func (s *CatalogService) Recommend(ctx context.Context, name string) (catalog.Recommendation, error) {
	c, err := s.load(ctx)
	if err != nil {
		return catalog.Recommendation{}, err
	}
	return s.recommend(c, name), nil
}

// Browse computes the full catalog, the filtered view and the
// recommendation for one render
func (s *CatalogService) Browse(ctx context.Context, req BrowseRequest) (*BrowseResult, error) {
	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return &BrowseResult{
		Catalog:        c,
		Categories:     catalog.Categories(c),
		Filtered:       catalog.Filter(c, req.Criteria),
		Recommendation: s.recommend(c, req.SelectedName),
	}, nil
}

func (s *CatalogService) recommend(c models.Catalog, name string) catalog.Recommendation {
	rec := catalog.Recommend(c, name)
	metrics.Recommendations.WithLabelValues(string(rec.Status)).Inc()
	if rec.Status != catalog.StatusNoSelection {
		s.logger.Debug("recommendation computed",
			"selected", name,
			"status", rec.Status,
			"count", len(rec.Products),
		)
	}
	return rec
}

func (s *CatalogService) load(ctx context.Context) (models.Catalog, error) {
	c, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load catalog", "error", err)
		return nil, err
	}
	return c, nil
}
