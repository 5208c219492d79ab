package category

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lovmeds/internal/domain"
	"lovmeds/internal/repository/category"
)

type Service struct {
	repo category.Repository
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
}

func (s *Service) Create(ctx context.Context, c domain.Category) (*domain.Category, error) {
	c, err := normalize(c)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id string, c domain.Category) (*domain.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	c, err := normalize(c)
	if err != nil {
		return nil, err
	}
	if c.ParentID != nil && *c.ParentID == id {
		return nil, fmt.Errorf("%w: category cannot be its own parent", domain.ErrInvalidInput)
	}
	c.ID = id
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// normalize trims the name and derives the slug from it when none is given.
func normalize(c domain.Category) (domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	c.Slug = domain.Slugify(c.Slug)
	if c.Slug == "" {
		c.Slug = domain.Slugify(c.Name)
	}
	if c.Slug == "" {
		return c, fmt.Errorf("%w: name must contain letters or digits", domain.ErrInvalidInput)
	}
	if c.ParentID != nil {
		parent := strings.TrimSpace(*c.ParentID)
		if parent == "" {
			c.ParentID = nil
		} else if _, err := uuid.Parse(parent); err != nil {
			return c, fmt.Errorf("%w: unknown parent category", domain.ErrInvalidInput)
		} else {
			c.ParentID = &parent
		}
	}
	return c, nil
}
