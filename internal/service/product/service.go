package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lovmeds/internal/domain"
	productrepo "lovmeds/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, filter)
}

// Get looks a product up by uuid, falling back to slug for anything else.
func (s *Service) Get(ctx context.Context, idOrSlug string) (*domain.Product, error) {
	key := strings.TrimSpace(idOrSlug)
	if key == "" {
		return nil, domain.ErrNotFound
	}
	if _, err := uuid.Parse(key); err == nil {
		return s.repo.GetByID(ctx, key)
	}
	return s.repo.GetBySlug(ctx, key)
}

// GetActive is Get restricted to products visible in the storefront.
func (s *Service) GetActive(ctx context.Context, idOrSlug string) (*domain.Product, error) {
	p, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, p domain.Product) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func normalize(p domain.Product) (domain.Product, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return p, fmt.Errorf("%w: title required", domain.ErrInvalidInput)
	}
	p.Slug = domain.Slugify(p.Slug)
	if p.Slug == "" {
		p.Slug = domain.Slugify(p.Title)
	}
	if p.Slug == "" {
		return p, fmt.Errorf("%w: title must contain letters or digits", domain.ErrInvalidInput)
	}
	if p.NormalPrice.IsNegative() || p.CostPrice.IsNegative() {
		return p, fmt.Errorf("%w: prices must not be negative", domain.ErrInvalidInput)
	}
	if p.SalePrice != nil && p.SalePrice.IsNegative() {
		return p, fmt.Errorf("%w: sale price must not be negative", domain.ErrInvalidInput)
	}
	if p.Stock < 0 {
		return p, fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
	}
	for i, v := range p.Variants {
		p.Variants[i].Name = strings.TrimSpace(v.Name)
		if p.Variants[i].Name == "" {
			return p, fmt.Errorf("%w: variant %d name required", domain.ErrInvalidInput, i+1)
		}
		if v.Price.IsNegative() || (v.SalePrice != nil && v.SalePrice.IsNegative()) {
			return p, fmt.Errorf("%w: variant %q price must not be negative", domain.ErrInvalidInput, v.Name)
		}
	}
	for _, id := range p.CategoryIDs {
		if _, err := uuid.Parse(id); err != nil {
			return p, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, id)
		}
	}
	return p, nil
}
