package order

import (
	"context"

	"lovmeds/internal/domain"
)

// LowStockThreshold is the stock level at or below which active products are
// flagged on the dashboard.
const LowStockThreshold = 5

type Repository interface {
	// Create assigns the next order number for o.PlacedAt's UTC day and writes
	// the header and every item in one transaction.
	Create(ctx context.Context, o domain.NewOrder) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, paid bool) (*domain.Order, error)
	Overview(ctx context.Context) (*domain.Overview, error)
}
