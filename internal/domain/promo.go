package domain

import "time"

const (
	DefaultPromoBackground = "#A33D4A"
	DefaultPromoText       = "#FFFFFF"
)

// PromoMessage is the storefront banner; only the most recent row is used.
type PromoMessage struct {
	ID              string    `json:"id"`
	Message         string    `json:"message"`
	IsActive        bool      `json:"isActive"`
	LinkURL         string    `json:"linkUrl,omitempty"`
	LinkText        string    `json:"linkText,omitempty"`
	BackgroundColor string    `json:"backgroundColor"`
	TextColor       string    `json:"textColor"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
