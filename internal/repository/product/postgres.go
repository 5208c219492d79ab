package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"lovmeds/internal/db"
	"lovmeds/internal/domain"
	"lovmeds/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *logrus.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrDiscard(logger)}
}

const productColumns = `
p.id::text, p.slug, p.title, COALESCE(p.description, ''), COALESCE(p.image_url, ''),
p.normal_price, p.sale_price, p.cost_price, p.stock, p.featured, p.is_active, p.created_at, p.updated_at`

func (r *postgresRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.ActiveOnly {
		where = append(where, "p.is_active")
	}
	if filter.Featured != nil {
		where = append(where, "p.featured = "+arg(*filter.Featured))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, "p.title ILIKE '%' || "+arg(s)+" || '%'")
	}
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		where = append(where, `EXISTS (
	SELECT 1
	FROM product_category_relations r
	JOIN product_categories c ON c.id = r.category_id
	WHERE r.product_id = p.id AND c.slug = `+arg(slug)+`
)`)
	}

	q := "SELECT" + productColumns + "\nFROM products p"
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, "\n  AND ")
	}
	q += "\nORDER BY p.featured DESC, p.created_at DESC, p.title ASC"
	if filter.Limit > 0 {
		q += "\nLIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		q += "\nOFFSET " + arg(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.WithError(err).Error("product repo: list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attach(ctx, result); err != nil {
		return nil, err
	}
	r.logger.WithField("count", len(result)).Debug("product repo: list")
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getOne(ctx, "p.slug = $1", slug)
}

func (r *postgresRepo) getOne(ctx context.Context, cond string, key string) (*domain.Product, error) {
	q := "SELECT" + productColumns + "\nFROM products p\nWHERE " + cond
	p, err := scanProduct(r.pool.QueryRow(ctx, q, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.WithError(err).WithField("key", key).Error("product repo: get")
		return nil, err
	}
	list := []domain.Product{p}
	if err := r.attach(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (slug, title, description, image_url, normal_price, sale_price, cost_price, stock, featured, is_active)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
RETURNING id::text
`
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, q,
		p.Slug, p.Title, p.Description, p.ImageURL,
		p.NormalPrice, nullDecimal(p.SalePrice), p.CostPrice,
		p.Stock, p.Featured, p.IsActive,
	).Scan(&id)
	if err != nil {
		return nil, translate(err)
	}
	if err := replaceChildren(ctx, tx, id, p); err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{"id": id, "slug": p.Slug}).Info("product repo: created")
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET slug = $2,
    title = $3,
    description = NULLIF($4, ''),
    image_url = NULLIF($5, ''),
    normal_price = $6,
    sale_price = $7,
    cost_price = $8,
    stock = $9,
    featured = $10,
    is_active = $11,
    updated_at = now()
WHERE id = $1
`
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, q,
		p.ID, p.Slug, p.Title, p.Description, p.ImageURL,
		p.NormalPrice, nullDecimal(p.SalePrice), p.CostPrice,
		p.Stock, p.Featured, p.IsActive,
	)
	if err != nil {
		return nil, translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	if err := replaceChildren(ctx, tx, p.ID, p); err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{"id": p.ID, "slug": p.Slug}).Info("product repo: updated")
	return r.GetByID(ctx, p.ID)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.WithField("id", id).Info("product repo: deleted")
	return nil
}

// replaceChildren rewrites the variants and category links of productID.
func replaceChildren(ctx context.Context, tx pgx.Tx, productID string, p domain.Product) error {
	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for i, v := range p.Variants {
		if _, err := tx.Exec(ctx, `
INSERT INTO product_variants (product_id, name, price, sale_price, position)
VALUES ($1, $2, $3, $4, $5)
`, productID, v.Name, v.Price, nullDecimal(v.SalePrice), i); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_category_relations WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for _, categoryID := range p.CategoryIDs {
		if _, err := tx.Exec(ctx, `
INSERT INTO product_category_relations (product_id, category_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, productID, categoryID); err != nil {
			return err
		}
	}
	return nil
}

// attach loads variants and category ids for products in one round trip each.
func (r *postgresRepo) attach(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
		products[i].Variants = []domain.ProductVariant{}
		products[i].CategoryIDs = []string{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, product_id::text, name, price, sale_price
FROM product_variants
WHERE product_id::text = ANY($1)
ORDER BY position ASC
`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var (
			v    domain.ProductVariant
			sale decimal.NullDecimal
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &sale); err != nil {
			rows.Close()
			return err
		}
		v.SalePrice = fromNull(sale)
		i := index[v.ProductID]
		products[i].Variants = append(products[i].Variants, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
SELECT r.product_id::text, r.category_id::text
FROM product_category_relations r
JOIN product_categories c ON c.id = r.category_id
WHERE r.product_id::text = ANY($1)
ORDER BY c.display_order ASC, c.name ASC
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var productID, categoryID string
		if err := rows.Scan(&productID, &categoryID); err != nil {
			return err
		}
		i := index[productID]
		products[i].CategoryIDs = append(products[i].CategoryIDs, categoryID)
	}
	return rows.Err()
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p    domain.Product
		sale decimal.NullDecimal
	)
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.ImageURL,
		&p.NormalPrice, &sale, &p.CostPrice, &p.Stock, &p.Featured, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.SalePrice = fromNull(sale)
	return p, nil
}

func translate(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return fmt.Errorf("product slug: %w", domain.ErrAlreadyExists)
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("unknown category: %w", domain.ErrInvalidInput)
	case db.IsCheckViolation(err):
		return fmt.Errorf("%s: %w", db.ConstraintName(err), domain.ErrInvalidInput)
	}
	return err
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func fromNull(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}
