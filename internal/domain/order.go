package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in dashboard display order.
var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseOrderStatus accepts any casing of a known status.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidInput
	}
	return s, nil
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Lines returns the non-empty address parts in display order.
func (a Address) Lines() []string {
	var out []string
	for _, part := range []string{a.Street, a.City, a.Region, a.PostalCode} {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	Customer        Customer        `json:"customer"`
	ShippingAddress Address         `json:"shippingAddress"`
	BillingAddress  Address         `json:"billingAddress"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	Paid            bool            `json:"paid"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID          string          `json:"id,omitempty"`
	OrderID     string          `json:"orderId,omitempty"`
	ProductID   *string         `json:"productId,omitempty"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder is everything the checkout hands to the order store; the store
// assigns the id, order number and timestamps.
type NewOrder struct {
	Customer        Customer
	ShippingAddress Address
	BillingAddress  Address
	Items           []OrderItem
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Total           decimal.Decimal
	Notes           string
	PlacedAt        time.Time
}

type OrderFilter struct {
	Status *OrderStatus
	Paid   *bool
	Limit  int
	Offset int
}

// Overview aggregates the dashboard landing page figures.
type Overview struct {
	TotalOrders    int                 `json:"totalOrders"`
	OrdersByStatus map[OrderStatus]int `json:"ordersByStatus"`
	PaidOrders     int                 `json:"paidOrders"`
	Revenue        decimal.Decimal     `json:"revenue"`
	TotalProducts  int                 `json:"totalProducts"`
	LowStock       []Product           `json:"lowStock"`
	RecentOrders   []Order             `json:"recentOrders"`
}
