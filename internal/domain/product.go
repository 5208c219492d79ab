package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string           `json:"id"`
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	ImageURL    string           `json:"imageUrl,omitempty"`
	NormalPrice decimal.Decimal  `json:"normalPrice"`
	SalePrice   *decimal.Decimal `json:"salePrice,omitempty"`
	CostPrice   decimal.Decimal  `json:"costPrice"`
	Stock       int              `json:"stock"`
	Featured    bool             `json:"featured"`
	IsActive    bool             `json:"isActive"`
	Variants    []ProductVariant `json:"variants"`
	CategoryIDs []string         `json:"categoryIds"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type ProductVariant struct {
	ID        string           `json:"id,omitempty"`
	ProductID string           `json:"productId,omitempty"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"salePrice,omitempty"`
}

// EffectivePrice is the price a shopper pays: the sale price when one is set
// below the normal price, otherwise the normal price.
func (p Product) EffectivePrice() decimal.Decimal {
	return effective(p.NormalPrice, p.SalePrice)
}

func (v ProductVariant) EffectivePrice() decimal.Decimal {
	return effective(v.Price, v.SalePrice)
}

func effective(normal decimal.Decimal, sale *decimal.Decimal) decimal.Decimal {
	if sale != nil && sale.LessThan(normal) {
		return *sale
	}
	return normal
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	CategorySlug string
	Featured     *bool
	ActiveOnly   bool
	Search       string
	Limit        int
	Offset       int
}
