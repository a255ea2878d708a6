package repository

import (
	"context"

	"tiendita/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDTx retrieves a single product inside the given transaction,
	// observing that transaction's uncommitted writes.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error)

	// Create inserts a new product and returns its ID.
	Create(ctx context.Context, in model.ProductInput) (int64, error)

	// Update replaces the mutable fields of a product.
	Update(ctx context.Context, id int64, in model.ProductInput) error

	// Delete removes a product from the catalogue.
	Delete(ctx context.Context, id int64) error

	// SetHasImage flags whether a stored image exists for the product.
	SetHasImage(ctx context.Context, id int64, hasImage bool) error

	// DecrementStock decreases a product's stock by qty inside the given
	// transaction, but only if the remaining stock covers it. Returns false
	// when the product is missing or the stock is insufficient.
	DecrementStock(ctx context.Context, tx pgx.Tx, id int64, qty int) (bool, error)
}

// CartRepository defines the interface for per-user cart data access.
type CartRepository interface {
	// Upsert adds qty of a product to the user's cart. A repeat add for the
	// same product accumulates the quantity; the unit price is kept from the
	// first add.
	Upsert(ctx context.Context, userID, productID int64, qty int, unitPrice decimal.Decimal) error

	// ListByUser retrieves the user's cart lines joined with current product
	// names, in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]model.CartItemView, error)

	// DeleteLine removes a single cart line owned by the user. Deleting an
	// absent line is not an error.
	DeleteLine(ctx context.Context, userID, lineID int64) error

	// DeleteForProduct removes the user's cart line for a product inside the
	// given transaction. Used by checkout; absent lines are ignored.
	DeleteForProduct(ctx context.Context, tx pgx.Tx, userID, productID int64) error
}

// OrderRepository defines the interface for the append-only sales ledger.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// FindByIdempotencyKey retrieves the order a user previously created with
	// the given idempotency key, along with its lines. Returns nil when no
	// such order exists. Runs inside the given transaction.
	FindByIdempotencyKey(ctx context.Context, tx pgx.Tx, userID int64, key string) (*model.Order, []model.OrderLine, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts the order's line items within the provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// GetByID retrieves an order by its ID along with its lines.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderLine, error)

	// ListByUser retrieves all of a user's orders grouped with their lines
	// and computed totals, newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.OrderHistoryEntry, error)

	// SalesByProduct aggregates units sold and revenue per product across the
	// whole ledger, ordered by units sold descending.
	SalesByProduct(ctx context.Context) ([]model.ProductSales, error)
}

// UserRepository defines the interface for account data access.
type UserRepository interface {
	// Create inserts a new user and returns its ID.
	Create(ctx context.Context, name, email, passwordHash, role string) (int64, error)

	// GetByID retrieves a user by ID. Returns nil when absent.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// GetByEmail retrieves a user by email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByNameAndEmail retrieves a user matching both name and email.
	// Returns nil when absent. Used by password reset.
	GetByNameAndEmail(ctx context.Context, name, email string) (*model.User, error)

	// List retrieves all users.
	List(ctx context.Context) ([]model.User, error)

	// Update replaces a user's name, email and role.
	Update(ctx context.Context, id int64, in model.UserInput) error

	// UpdatePassword replaces a user's password hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// Delete removes a user account.
	Delete(ctx context.Context, id int64) error
}

// SessionRepository defines the interface for server-side login sessions.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *model.Session) error

	// Get retrieves a session by token. Returns nil when absent.
	Get(ctx context.Context, token uuid.UUID) (*model.Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, token uuid.UUID) error

	// DeleteExpired removes all sessions past their expiry and reports how
	// many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
