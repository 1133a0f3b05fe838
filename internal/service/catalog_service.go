package service

import (
	"context"

	"family-store/internal/model"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	catalog Catalog
	logger  zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(catalog Catalog, logger zerolog.Logger) CatalogService {
	return &catalogService{
		catalog: catalog,
		logger:  logger.With().Str("service", "catalog").Logger(),
	}
}

// Products returns every product, or the products of one category.
func (s *catalogService) Products(ctx context.Context, category string) ([]model.Product, error) {
	if category == "" {
		return s.catalog.All(), nil
	}

	c, err := model.ParseCategory(category)
	if err != nil {
		s.logger.Warn().Str("category", category).Msg("unknown category filter")
		return nil, model.ErrInvalidCategory
	}

	products := s.catalog.ByCategory(c)
	s.logger.Debug().
		Str("category", string(c)).
		Int("count", len(products)).
		Msg("retrieved products by category")

	return products, nil
}

// Sections returns the catalogue grouped by store.
func (s *catalogService) Sections(ctx context.Context) ([]model.Section, error) {
	return s.catalog.Sections(), nil
}

// GetByID retrieves a single product by ID.
func (s *catalogService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, ok := s.catalog.ByID(id)
	if !ok {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return &product, nil
}

// AddCustom adds a user-entered product.
func (s *catalogService) AddCustom(ctx context.Context, req *model.CustomProductRequest) (*model.Product, error) {
	product, err := s.catalog.AddCustom(req)
	if err != nil {
		s.logger.Warn().Err(err).Msg("custom product rejected")
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("category", string(product.Category)).
		Int("price", product.Price).
		Msg("custom product added")

	return &product, nil
}
