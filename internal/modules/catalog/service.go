package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sheetpos/internal/apperr"
)

// Service defines the catalog business logic.
type Service interface {
	// List returns all products, served from the cache unless forced.
	List(ctx context.Context, forceRefresh bool) ([]Product, error)

	// Get returns one product by ID.
	Get(ctx context.Context, id string) (*Product, error)

	// Search matches q against name, category, and description.
	Search(ctx context.Context, q string) ([]Product, error)

	// Categories returns category names with their product counts.
	Categories(ctx context.Context) (map[string]int, error)

	// ByCategory returns products in one category, case-insensitive.
	ByCategory(ctx context.Context, category string) ([]Product, error)

	// Add creates a product and invalidates the cache.
	Add(ctx context.Context, req AddProductRequest) (*Product, error)

	// Update applies a partial update and invalidates the cache.
	Update(ctx context.Context, id string, req UpdateProductRequest) (*Product, error)
}

type service struct {
	cache *Cache
	repo  Repository
	log   *zap.Logger
}

// NewService creates a new catalog service.
func NewService(cache *Cache, repo Repository, log *zap.Logger) Service {
	return &service{cache: cache, repo: repo, log: log}
}

// List degrades to an empty catalog when the store is unreachable: browsing
// an empty storefront beats a crash, and the failure is logged for operators.
func (s *service) List(ctx context.Context, forceRefresh bool) ([]Product, error) {
	products, err := s.cache.Products(ctx, forceRefresh)
	if err != nil {
		s.log.Error("catalog read failed, serving empty list", zap.Error(err))
		return []Product{}, nil
	}
	return products, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	products, err := s.cache.Products(ctx, false)
	if err != nil {
		return nil, apperr.Dependencyf(err, "product catalog unavailable")
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, apperr.NotFoundf("product %s not found", id)
}

func (s *service) Search(ctx context.Context, q string) ([]Product, error) {
	products, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return products, nil
	}
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *service) Categories(ctx context.Context) (map[string]int, error) {
	products, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, p := range products {
		counts[p.Category]++
	}
	return counts, nil
}

func (s *service) ByCategory(ctx context.Context, category string) ([]Product, error) {
	products, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *service) Add(ctx context.Context, req AddProductRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validationf("product name is required")
	}
	if req.Price < 0 || req.Stock < 0 || req.ImportPrice < 0 {
		return nil, apperr.Validationf("price, stock and import price must not be negative")
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "General"
	}

	now := time.Now().UTC().Format(time.RFC3339)
	p := &Product{
		ID:          NewProductID(),
		Name:        name,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		ImportPrice: req.ImportPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Append(ctx, p); err != nil {
		return nil, apperr.Dependencyf(err, "could not save product")
	}
	s.cache.Invalidate()
	s.log.Info("product added", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperr.Validationf("product name cannot be blank")
	}
	if err := s.repo.UpdateFields(ctx, id, req); err != nil {
		return nil, apperr.Dependencyf(fmt.Errorf("update product %s: %w", id, err), "could not update product")
	}
	s.cache.Invalidate()
	return s.Get(ctx, id)
}
