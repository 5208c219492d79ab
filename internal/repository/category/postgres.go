package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lovmeds/internal/db"
	"lovmeds/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const columns = `id::text, name, slug, COALESCE(description, ''), COALESCE(image_url, ''), parent_id::text, display_order, is_active, created_at`

func (r *postgresRepo) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	const q = `
SELECT ` + columns + `
FROM product_categories
WHERE is_active OR NOT $1
ORDER BY display_order ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM product_categories WHERE id = $1`, id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM product_categories WHERE slug = $1`, slug)
}

func (r *postgresRepo) getOne(ctx context.Context, q string, key string) (*domain.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, q, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO product_categories (name, slug, description, image_url, parent_id, display_order, is_active)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
RETURNING ` + columns
	out, err := scanCategory(r.pool.QueryRow(ctx, q, c.Name, c.Slug, c.Description, c.ImageURL, c.ParentID, c.DisplayOrder, c.IsActive))
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
UPDATE product_categories
SET name = $2,
    slug = $3,
    description = NULLIF($4, ''),
    image_url = NULLIF($5, ''),
    parent_id = $6,
    display_order = $7,
    is_active = $8,
    updated_at = now()
WHERE id = $1
RETURNING ` + columns
	out, err := scanCategory(r.pool.QueryRow(ctx, q, c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.ParentID, c.DisplayOrder, c.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translate(err)
	}
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM product_categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.ParentID, &c.DisplayOrder, &c.IsActive, &c.CreatedAt)
	return c, err
}

func translate(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return fmt.Errorf("category slug: %w", domain.ErrAlreadyExists)
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("unknown parent category: %w", domain.ErrInvalidInput)
	}
	return err
}
