// Package catalog defines the domain model and collaborator contracts for the
// product catalog service: products, categories, orders with their line items,
// the order status enum, the error taxonomy, and the store interfaces the
// services operate against.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Inventory is never negative and is
// mutated only through the inventory ledger. Deletion is logical: IsActive is
// flipped to false, the row stays.
type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	CategoryID  *int64          `json:"categoryId" gorm:"index"`
	ImageURL    string          `json:"imageUrl"`
	IsActive    bool            `json:"isActive" gorm:"not null;default:true"`
	Inventory   int             `json:"inventory" gorm:"not null;default:0"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Category is a node in the category tree. ParentCategoryID is nil for root
// categories. Writes validate that the parent chain stays acyclic.
type Category struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"not null"`
	Description      string    `json:"description"`
	ParentCategoryID *int64    `json:"parentCategoryId" gorm:"index"`
	CreatedAt        time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Order owns its items. OrderNumber is server-assigned and unique. Status
// mutates only through the status machine; items are immutable once created.
type Order struct {
	ID              int64           `json:"id" gorm:"primaryKey"`
	OrderNumber     string          `json:"orderNumber" gorm:"uniqueIndex;not null"`
	CustomerID      int64           `json:"customerId" gorm:"index;not null"`
	Status          OrderStatus     `json:"status" gorm:"index;not null"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:numeric(14,2);not null"`
	ShippingAddress string          `json:"shippingAddress" gorm:"type:text"`
	BillingAddress  string          `json:"billingAddress" gorm:"type:text"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"index;autoCreateTime"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
	Items           []OrderItem     `json:"items" gorm:"-"`
}

// OrderItem references a product without owning it. PriceAtOrder is the
// product price snapshot captured when the order was created; it is never
// re-derived from the current product price.
type OrderItem struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	OrderID      int64           `json:"orderId" gorm:"index;not null"`
	ProductID    int64           `json:"productId" gorm:"index;not null"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	PriceAtOrder decimal.Decimal `json:"priceAtOrder" gorm:"type:numeric(12,2);not null"`
	CreatedAt    time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName keeps the orders table name explicit; "order" is a reserved word
// in most SQL dialects.
func (Order) TableName() string { return "orders" }
