package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type categorySeed struct {
	Slug  string
	Name  string
	Order int
}

type variantSeed struct {
	Name  string
	Price string
}

type productSeed struct {
	Slug        string
	Title       string
	Description string
	NormalPrice string
	SalePrice   string
	CostPrice   string
	Stock       int
	Featured    bool
	Categories  []string
	Variants    []variantSeed
}

var categories = []categorySeed{
	{Slug: "skin-care", Name: "Skin Care", Order: 1},
	{Slug: "hair-care", Name: "Hair Care", Order: 2},
	{Slug: "wellness", Name: "Wellness", Order: 3},
}

var products = []productSeed{
	{
		Slug:        "face-oil",
		Title:       "Face Oil",
		Description: "Lightweight botanical oil for daily glow.",
		NormalPrice: "15.50",
		CostPrice:   "6.00",
		Stock:       40,
		Featured:    true,
		Categories:  []string{"skin-care"},
	},
	{
		Slug:        "shea-body-butter",
		Title:       "Shea Body Butter",
		Description: "Whipped unrefined shea with coconut oil.",
		NormalPrice: "22.00",
		SalePrice:   "18.00",
		CostPrice:   "8.50",
		Stock:       25,
		Featured:    true,
		Categories:  []string{"skin-care"},
		Variants: []variantSeed{
			{Name: "100ml", Price: "22.00"},
			{Name: "250ml", Price: "45.00"},
		},
	},
	{
		Slug:        "african-black-soap",
		Title:       "African Black Soap",
		Description: "Handmade cleansing bar.",
		NormalPrice: "9.99",
		CostPrice:   "3.00",
		Stock:       4,
		Categories:  []string{"skin-care"},
	},
	{
		Slug:        "hair-growth-oil",
		Title:       "Hair Growth Oil",
		Description: "Rosemary and castor blend for scalp care.",
		NormalPrice: "30.00",
		CostPrice:   "11.00",
		Stock:       15,
		Categories:  []string{"hair-care", "wellness"},
	},
}

const promoMessage = "Free delivery in Accra on orders this week"

// Apply loads the demo catalog. It is idempotent: rows are matched by slug
// and variants and category links are replaced on every run.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		categoryIDs := make(map[string]string, len(categories))
		for _, c := range categories {
			id, err := upsertCategory(ctx, tx, c)
			if err != nil {
				return fmt.Errorf("upsert category %s: %w", c.Slug, err)
			}
			categoryIDs[c.Slug] = id
		}

		for _, p := range products {
			if err := upsertProduct(ctx, tx, p, categoryIDs); err != nil {
				return fmt.Errorf("upsert product %s: %w", p.Slug, err)
			}
		}

		if err := ensurePromo(ctx, tx); err != nil {
			return fmt.Errorf("ensure promo: %w", err)
		}
		return nil
	})
}

func upsertCategory(ctx context.Context, tx pgx.Tx, c categorySeed) (string, error) {
	const q = `
INSERT INTO product_categories (name, slug, display_order)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    display_order = EXCLUDED.display_order,
    updated_at = now()
RETURNING id::text
`
	var id string
	if err := tx.QueryRow(ctx, q, c.Name, c.Slug, c.Order).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, tx pgx.Tx, p productSeed, categoryIDs map[string]string) error {
	const q = `
INSERT INTO products (slug, title, description, normal_price, sale_price, cost_price, stock, featured)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (slug) DO UPDATE
SET title = EXCLUDED.title,
    description = EXCLUDED.description,
    normal_price = EXCLUDED.normal_price,
    sale_price = EXCLUDED.sale_price,
    cost_price = EXCLUDED.cost_price,
    stock = EXCLUDED.stock,
    featured = EXCLUDED.featured,
    updated_at = now()
RETURNING id::text
`
	var sale decimal.NullDecimal
	if p.SalePrice != "" {
		sale = decimal.NewNullDecimal(decimal.RequireFromString(p.SalePrice))
	}
	var id string
	err := tx.QueryRow(ctx, q,
		p.Slug, p.Title, p.Description,
		decimal.RequireFromString(p.NormalPrice), sale, decimal.RequireFromString(p.CostPrice),
		p.Stock, p.Featured,
	).Scan(&id)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, id); err != nil {
		return err
	}
	for i, v := range p.Variants {
		_, err := tx.Exec(ctx,
			`INSERT INTO product_variants (product_id, name, price, position) VALUES ($1, $2, $3, $4)`,
			id, v.Name, decimal.RequireFromString(v.Price), i)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_category_relations WHERE product_id = $1`, id); err != nil {
		return err
	}
	for _, slug := range p.Categories {
		categoryID, ok := categoryIDs[slug]
		if !ok {
			return fmt.Errorf("unknown category %q", slug)
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO product_category_relations (product_id, category_id) VALUES ($1, $2)`,
			id, categoryID)
		if err != nil {
			return err
		}
	}
	return nil
}

// ensurePromo inserts the demo banner only when no promo exists yet, so
// admin edits survive a reseed.
func ensurePromo(ctx context.Context, tx pgx.Tx) error {
	const q = `
INSERT INTO promo_messages (message, is_active)
SELECT $1, true
WHERE NOT EXISTS (SELECT 1 FROM promo_messages)
`
	_, err := tx.Exec(ctx, q, promoMessage)
	return err
}
