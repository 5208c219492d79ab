package promo

import (
	"context"
	"errors"
	"testing"

	"lovmeds/internal/domain"
)

type stubRepo struct {
	current *domain.PromoMessage
	err     error
	saved   domain.PromoMessage
}

func (s *stubRepo) Current(_ context.Context) (*domain.PromoMessage, error) {
	return s.current, s.err
}

func (s *stubRepo) Save(_ context.Context, p domain.PromoMessage) (*domain.PromoMessage, error) {
	s.saved = p
	return &p, nil
}

func TestActive(t *testing.T) {
	inactive := &stubRepo{current: &domain.PromoMessage{Message: "Sale", IsActive: false}}
	if _, err := New(inactive).Active(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive promo, got %v", err)
	}

	missing := &stubRepo{err: domain.ErrNotFound}
	if _, err := New(missing).Active(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	active := &stubRepo{current: &domain.PromoMessage{Message: "Sale", IsActive: true}}
	p, err := New(active).Active(context.Background())
	if err != nil || p.Message != "Sale" {
		t.Fatalf("unexpected %+v %v", p, err)
	}
}

func TestSave_AppliesDefaultColors(t *testing.T) {
	repo := &stubRepo{}
	if _, err := New(repo).Save(context.Background(), domain.PromoMessage{Message: " Free delivery ", IsActive: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if repo.saved.BackgroundColor != "#A33D4A" || repo.saved.TextColor != "#FFFFFF" || repo.saved.Message != "Free delivery" {
		t.Fatalf("unexpected promo %+v", repo.saved)
	}
}

func TestSave_Validation(t *testing.T) {
	cases := map[string]domain.PromoMessage{
		"empty message": {Message: " "},
		"bad color":     {Message: "x", BackgroundColor: "red"},
		"orphan text":   {Message: "x", LinkText: "Shop now"},
	}
	for name, p := range cases {
		if _, err := New(&stubRepo{}).Save(context.Background(), p); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}
