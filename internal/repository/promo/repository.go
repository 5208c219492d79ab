package promo

import (
	"context"

	"lovmeds/internal/domain"
)

type Repository interface {
	// Current returns the most recently created promo row.
	Current(ctx context.Context) (*domain.PromoMessage, error)
	// Save updates the current row, or inserts one when none exists.
	Save(ctx context.Context, p domain.PromoMessage) (*domain.PromoMessage, error)
}
