package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine represents one product entry in a user's cart. At most one line
// exists per (user, product); repeat adds accumulate the quantity. The unit
// price is captured at the time the product is first added.
type CartLine struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"userId" db:"user_id"`
	ProductID int64           `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// CartItemView is a cart line joined with the current product name for display.
type CartItemView struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the full cart as returned to the client. Count and Total are
// derived from the lines on every read; they are never stored.
type CartView struct {
	Items []CartItemView  `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// AddToCartRequest represents the request payload for adding a product to the cart.
type AddToCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}
