package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInvalidLine         = "INVALID_LINE"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeProductInUse        = "PRODUCT_IN_USE"
	ErrCodeCartEmpty           = "CART_EMPTY"
	ErrCodeInvalidKey          = "INVALID_IDEMPOTENCY_KEY"
	ErrCodeKeyConflict         = "IDEMPOTENCY_CONFLICT"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeWeakPassword        = "WEAK_PASSWORD"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	ErrCodeCheckoutAbortFailed = "CHECKOUT_ABORT_FAILED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a business-logic error with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrUnauthorised       = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "Access denied")
	ErrInvalidLine        = NewDomainError(ErrCodeInvalidLine, "Each line requires a product ID and a quantity of at least one")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrProductInUse       = NewDomainError(ErrCodeProductInUse, "Product has recorded sales and cannot be deleted")
	ErrCartEmpty          = NewDomainError(ErrCodeCartEmpty, "Cart is empty")
	ErrInvalidKey         = NewDomainError(ErrCodeInvalidKey, "Idempotency key must be at most 255 characters")
	ErrKeyConflict        = NewDomainError(ErrCodeKeyConflict, "A checkout with this idempotency key is already in progress")
	ErrEmailTaken         = NewDomainError(ErrCodeEmailTaken, "Email is already registered")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid credentials")
	ErrUserNotFound       = NewDomainError(ErrCodeNotFound, "User not found")
	ErrNoProfileImage     = NewDomainError(ErrCodeNotFound, "Profile image not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeNotFound, "Order not found")
)

// InsufficientStockError identifies the product whose stock could not cover
// a checkout line and the shortfall observed inside the transaction.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// CheckoutAbortError reports a checkout whose rollback failed. The durable
// state can no longer be guaranteed by the coordinator and needs out-of-band
// reconciliation, so this is fatal and non-retryable.
type CheckoutAbortError struct {
	UserID     int64
	Cause      error
	AbortCause error
}

func (e *CheckoutAbortError) Error() string {
	return fmt.Sprintf("checkout abort failed for user %d: %v (original failure: %v)",
		e.UserID, e.AbortCause, e.Cause)
}

func (e *CheckoutAbortError) Unwrap() error {
	return e.AbortCause
}
