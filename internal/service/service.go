package service

import (
	"context"

	"tiendita/internal/model"

	"github.com/google/uuid"
)

// CheckoutService converts a user's submitted cart into an immutable order
// while atomically adjusting catalogue stock.
type CheckoutService interface {
	// Checkout validates the submitted lines and commits them as a single
	// all-or-nothing unit: one order row, one order line per distinct
	// product, a stock decrement per product, and removal of the matching
	// cart lines. On any failure the store is left exactly as before.
	Checkout(ctx context.Context, userID int64, req model.CheckoutRequest) (*model.CheckoutResponse, error)
}

// CartService defines operations on a user's mutable pre-checkout cart.
type CartService interface {
	// Get retrieves the user's cart with derived count and total.
	Get(ctx context.Context, userID int64) (*model.CartView, error)

	// Add puts qty of a product in the user's cart, accumulating quantity on
	// repeat adds and snapshotting the current unit price on the first add.
	Add(ctx context.Context, userID int64, req model.AddToCartRequest) (*model.CartView, error)

	// RemoveLine deletes one cart line. Removing an absent line is a no-op.
	RemoveLine(ctx context.Context, userID, lineID int64) (*model.CartView, error)
}

// ProductService defines operations for catalogue management.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// Create adds a product to the catalogue (admin).
	Create(ctx context.Context, in model.ProductInput) (*model.Product, error)

	// Update replaces a product's mutable fields (admin).
	Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error)

	// Delete removes a product and its stored image, if any (admin).
	Delete(ctx context.Context, id int64) error

	// SetImage stores the product's image and flags it on the row (admin).
	SetImage(ctx context.Context, id int64, data []byte) error

	// GetImage retrieves the product's image and its sniffed MIME type.
	GetImage(ctx context.Context, id int64) ([]byte, string, error)
}

// OrderService defines read-only operations over the sales ledger.
type OrderService interface {
	// History retrieves all of a user's orders grouped with their lines and
	// computed totals, newest first.
	History(ctx context.Context, userID int64) ([]model.OrderHistoryEntry, error)

	// GetByID retrieves one of the user's orders by ID.
	GetByID(ctx context.Context, userID int64, orderID uuid.UUID) (*model.OrderHistoryEntry, error)

	// SalesByProduct aggregates units sold and revenue per product (admin).
	SalesByProduct(ctx context.Context) ([]model.ProductSales, error)
}

// AuthService defines account registration and session handling.
type AuthService interface {
	// Register creates a new customer account.
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)

	// Login verifies credentials and opens a new session.
	Login(ctx context.Context, req model.LoginRequest) (*model.User, *model.Session, error)

	// Logout destroys a session. Unknown tokens are ignored.
	Logout(ctx context.Context, token uuid.UUID) error

	// Authenticate resolves a session token to its user. Returns
	// ErrUnauthorised for unknown or expired tokens.
	Authenticate(ctx context.Context, token uuid.UUID) (*model.User, error)

	// ResetPassword replaces the password of the user matching name and email.
	ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error

	// UpdateProfile changes the caller's own name and/or password. Empty
	// fields are left unchanged.
	UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error)

	// SetProfileImage stores the caller's profile picture, replacing any
	// previous one.
	SetProfileImage(ctx context.Context, userID int64, data []byte) error

	// GetProfileImage retrieves a user's profile picture and its sniffed
	// MIME type.
	GetProfileImage(ctx context.Context, userID int64) ([]byte, string, error)
}

// UserService defines administrative operations on the user roster.
type UserService interface {
	// List retrieves all users.
	List(ctx context.Context) ([]model.User, error)

	// GetByID retrieves a single user.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// Create adds a user with a generated temporary password, which is
	// returned so the admin can hand it over.
	Create(ctx context.Context, in model.UserInput) (*model.User, string, error)

	// Update replaces a user's name, email and role.
	Update(ctx context.Context, id int64, in model.UserInput) (*model.User, error)

	// Delete removes a user account.
	Delete(ctx context.Context, id int64) error
}
