package catalog

import (
	"context"

	"github.com/averix-dev/catalog-gateway/internal/domain/product"
)

// Service is the use-case entry point for callers outside the domain layer.
// It is a pass-through over Repository, kept so the transport layer depends
// on a stable surface rather than on the orchestration type directly.
type Service struct {
	repo *Repository
}

// NewService creates a Service around the given repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetProducts returns the current product list, see Repository.GetProducts.
func (s *Service) GetProducts(ctx context.Context) ([]product.Product, error) {
	return s.repo.GetProducts(ctx)
}
