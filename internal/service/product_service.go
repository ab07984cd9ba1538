package service

import (
	"context"

	"github.com/tatylu/storefront/internal/models"
	"github.com/tatylu/storefront/internal/repository"
)

// ProductService handles business logic for the catalog surface.
type ProductService struct {
	catalog repository.Catalog
}

// NewProductService creates a new product service.
func NewProductService(catalog repository.Catalog) *ProductService {
	return &ProductService{
		catalog: catalog,
	}
}

// ListProducts returns the catalog, optionally narrowed to one category.
func (s *ProductService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.catalog.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return products, nil
	}

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetProduct returns a product by key in either key space.
func (s *ProductService) GetProduct(ctx context.Context, key string) (*models.Product, error) {
	return s.catalog.GetByKey(ctx, key)
}
