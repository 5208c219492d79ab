package order

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"lovmeds/internal/domain"
	orderrepo "lovmeds/internal/repository/order"
)

// Service backs the dashboard's order pages. Updates are last-write-wins.
type Service struct {
	repo orderrepo.Repository
}

func New(repo orderrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Patch holds the fields an operator may change; nil fields are left as is.
type Patch struct {
	Status *string `json:"status"`
	Paid   *bool   `json:"paid"`
}

func (s *Service) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// Get accepts either the order id or its ORD-YYYYMMDD-NNNN number.
func (s *Service) Get(ctx context.Context, idOrNumber string) (*domain.Order, error) {
	key := strings.TrimSpace(idOrNumber)
	if _, err := uuid.Parse(key); err == nil {
		return s.repo.GetByID(ctx, key)
	}
	if key == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByNumber(ctx, strings.ToUpper(key))
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*domain.Order, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	status := current.Status
	if p.Status != nil {
		if status, err = domain.ParseOrderStatus(*p.Status); err != nil {
			return nil, err
		}
	}
	paid := current.Paid
	if p.Paid != nil {
		paid = *p.Paid
	}
	if status == domain.StatusCompleted && !paid {
		return nil, domain.ErrCompletedRequiresPaid
	}
	if status == current.Status && paid == current.Paid {
		return current, nil
	}
	return s.repo.UpdateStatus(ctx, current.ID, status, paid)
}

func (s *Service) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	raw := string(status)
	return s.Update(ctx, id, Patch{Status: &raw})
}

func (s *Service) SetPaid(ctx context.Context, id string, paid bool) (*domain.Order, error) {
	return s.Update(ctx, id, Patch{Paid: &paid})
}

func (s *Service) Overview(ctx context.Context) (*domain.Overview, error) {
	return s.repo.Overview(ctx)
}
