package promo

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"lovmeds/internal/domain"
	promorepo "lovmeds/internal/repository/promo"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type Service struct {
	repo promorepo.Repository
}

func New(repo promorepo.Repository) *Service {
	return &Service{repo: repo}
}

// Current returns the banner as stored, active or not.
func (s *Service) Current(ctx context.Context) (*domain.PromoMessage, error) {
	return s.repo.Current(ctx)
}

// Active returns the banner only when it should be shown to shoppers.
func (s *Service) Active(ctx context.Context) (*domain.PromoMessage, error) {
	p, err := s.repo.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !p.IsActive || strings.TrimSpace(p.Message) == "" {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) Save(ctx context.Context, p domain.PromoMessage) (*domain.PromoMessage, error) {
	p.Message = strings.TrimSpace(p.Message)
	if p.Message == "" {
		return nil, fmt.Errorf("%w: message required", domain.ErrInvalidInput)
	}
	p.LinkURL = strings.TrimSpace(p.LinkURL)
	p.LinkText = strings.TrimSpace(p.LinkText)
	if p.LinkText != "" && p.LinkURL == "" {
		return nil, fmt.Errorf("%w: link text needs a link url", domain.ErrInvalidInput)
	}

	if p.BackgroundColor == "" {
		p.BackgroundColor = domain.DefaultPromoBackground
	}
	if p.TextColor == "" {
		p.TextColor = domain.DefaultPromoText
	}
	for _, c := range []string{p.BackgroundColor, p.TextColor} {
		if !hexColor.MatchString(c) {
			return nil, fmt.Errorf("%w: color %q must look like #RRGGBB", domain.ErrInvalidInput, c)
		}
	}
	return s.repo.Save(ctx, p)
}
