package promo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lovmeds/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const columns = `id::text, message, is_active, COALESCE(link_url, ''), COALESCE(link_text, ''), background_color, text_color, created_at, updated_at`

func (r *postgresRepo) Current(ctx context.Context) (*domain.PromoMessage, error) {
	const q = `
SELECT ` + columns + `
FROM promo_messages
ORDER BY created_at DESC
LIMIT 1
`
	p, err := scanPromo(r.pool.QueryRow(ctx, q))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Save(ctx context.Context, p domain.PromoMessage) (*domain.PromoMessage, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `SELECT id::text FROM promo_messages ORDER BY created_at DESC LIMIT 1 FOR UPDATE`).Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var out domain.PromoMessage
	if id == "" {
		out, err = scanPromo(tx.QueryRow(ctx, `
INSERT INTO promo_messages (message, is_active, link_url, link_text, background_color, text_color)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
RETURNING `+columns,
			p.Message, p.IsActive, p.LinkURL, p.LinkText, p.BackgroundColor, p.TextColor))
	} else {
		out, err = scanPromo(tx.QueryRow(ctx, `
UPDATE promo_messages
SET message = $2,
    is_active = $3,
    link_url = NULLIF($4, ''),
    link_text = NULLIF($5, ''),
    background_color = $6,
    text_color = $7,
    updated_at = now()
WHERE id = $1
RETURNING `+columns,
			id, p.Message, p.IsActive, p.LinkURL, p.LinkText, p.BackgroundColor, p.TextColor))
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func scanPromo(row pgx.Row) (domain.PromoMessage, error) {
	var p domain.PromoMessage
	err := row.Scan(&p.ID, &p.Message, &p.IsActive, &p.LinkURL, &p.LinkText, &p.BackgroundColor, &p.TextColor, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
