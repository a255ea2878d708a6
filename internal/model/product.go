package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item in the store catalogue.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Season      string          `json:"season" db:"season"`
	HasImage    bool            `json:"hasImage" db:"has_image"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// ProductInput represents the payload for creating or updating a product.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Season      string          `json:"season"`
}

// ProductSales represents aggregated sales figures for one product.
type ProductSales struct {
	ProductID int64           `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	UnitsSold int64           `json:"unitsSold" db:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue" db:"revenue"`
}
