package httpserver

import (
	"github.com/shopspring/decimal"

	"lovmeds/internal/domain"
)

type productRequest struct {
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ImageURL    string           `json:"imageUrl"`
	NormalPrice decimal.Decimal  `json:"normalPrice"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	CostPrice   decimal.Decimal  `json:"costPrice"`
	Stock       int              `json:"stock"`
	Featured    bool             `json:"featured"`
	IsActive    *bool            `json:"isActive"`
	Variants    []variantRequest `json:"variants"`
	CategoryIDs []string         `json:"categoryIds"`
}

type variantRequest struct {
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"salePrice"`
}

// toDomain maps the payload; products are active unless isActive is false.
func (r productRequest) toDomain() domain.Product {
	p := domain.Product{
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		NormalPrice: r.NormalPrice,
		SalePrice:   r.SalePrice,
		CostPrice:   r.CostPrice,
		Stock:       r.Stock,
		Featured:    r.Featured,
		IsActive:    r.IsActive == nil || *r.IsActive,
		CategoryIDs: r.CategoryIDs,
	}
	for _, v := range r.Variants {
		p.Variants = append(p.Variants, domain.ProductVariant{Name: v.Name, Price: v.Price, SalePrice: v.SalePrice})
	}
	return p
}

type categoryRequest struct {
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"imageUrl"`
	ParentID     *string `json:"parentId"`
	DisplayOrder int     `json:"displayOrder"`
	IsActive     *bool   `json:"isActive"`
}

func (r categoryRequest) toDomain() domain.Category {
	return domain.Category{
		Name:         r.Name,
		Slug:         r.Slug,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		ParentID:     r.ParentID,
		DisplayOrder: r.DisplayOrder,
		IsActive:     r.IsActive == nil || *r.IsActive,
	}
}

type promoRequest struct {
	Message         string `json:"message"`
	IsActive        bool   `json:"isActive"`
	LinkURL         string `json:"linkUrl"`
	LinkText        string `json:"linkText"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
}

func (r promoRequest) toDomain() domain.PromoMessage {
	return domain.PromoMessage{
		Message:         r.Message,
		IsActive:        r.IsActive,
		LinkURL:         r.LinkURL,
		LinkText:        r.LinkText,
		BackgroundColor: r.BackgroundColor,
		TextColor:       r.TextColor,
	}
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}
