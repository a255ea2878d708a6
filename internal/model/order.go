package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a committed sale. Once created it is immutable.
type Order struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         int64     `json:"userId" db:"user_id"`
	IdempotencyKey *string   `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// OrderLine represents a line item in a committed order. The unit price is
// the price agreed at cart time, never re-read from the live product row.
type OrderLine struct {
	ID        int64           `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID int64           `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// CheckoutLine is a single submitted cart line in a checkout request.
// UnitPrice is the price the client agreed to at cart time.
type CheckoutLine struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CheckoutRequest represents the request payload for a checkout.
// IdempotencyKey is optional and comes from the Idempotency-Key header.
type CheckoutRequest struct {
	IdempotencyKey string         `json:"-"`
	Lines          []CheckoutLine `json:"lines"`
}

// CheckoutResponse represents the result of a successful (or deduplicated) checkout.
type CheckoutResponse struct {
	OrderID   uuid.UUID       `json:"orderId"`
	Lines     []OrderLine     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	Duplicate bool            `json:"duplicate,omitempty"`
}

// OrderHistoryLine is one line of a past order, joined with the product name.
type OrderHistoryLine struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderHistoryEntry groups one past order with its lines and computed total.
type OrderHistoryEntry struct {
	OrderID   uuid.UUID          `json:"orderId"`
	CreatedAt time.Time          `json:"createdAt"`
	Lines     []OrderHistoryLine `json:"lines"`
	Total     decimal.Decimal    `json:"total"`
}
