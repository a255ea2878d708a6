package repository

import (
	"context"
	"fmt"
	"time"

	"tiendita/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// FindByIdempotencyKey retrieves the order a user previously created with
// the given idempotency key, along with its lines.
func (r *orderRepository) FindByIdempotencyKey(ctx context.Context, tx pgx.Tx, userID int64, key string) (*model.Order, []model.OrderLine, error) {
	query := `
		SELECT id, user_id, idempotency_key, created_at
		FROM orders
		WHERE user_id = $1 AND idempotency_key = $2
	`

	var order model.Order
	err := tx.QueryRow(ctx, query, userID, key).Scan(
		&order.ID,
		&order.UserID,
		&order.IdempotencyKey,
		&order.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query order by idempotency key")
		return nil, nil, fmt.Errorf("failed to query order by idempotency key: %w", err)
	}

	lines, err := r.linesByOrderID(ctx, tx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	return &order, lines, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := tx.Exec(ctx, query, order.ID, order.UserID, order.IdempotencyKey, order.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int64("user_id", order.UserID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderLines inserts the order's line items within the provided transaction.
func (r *orderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(lines); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", lines[i].OrderID.String()).
				Int64("product_id", lines[i].ProductID).
				Msg("failed to create order line")
			return fmt.Errorf("failed to create order line: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(lines)).
		Msg("order lines created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its lines.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderLine, error) {
	query := `
		SELECT id, user_id, idempotency_key, created_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.IdempotencyKey,
		&order.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	lines, err := r.linesByOrderID(ctx, r.pool, order.ID)
	if err != nil {
		return nil, nil, err
	}

	return &order, lines, nil
}

// querier is the subset of pgx operations shared by pools and transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) linesByOrderID(ctx context.Context, q querier, orderID uuid.UUID) ([]model.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order lines")
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []model.OrderLine
	for rows.Next() {
		var line model.OrderLine
		err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPrice, &line.Subtotal)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line rows")
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return lines, nil
}

// ListByUser retrieves all of a user's orders with their lines grouped into
// one entry per order. The underlying query returns one row per line; rows
// for the same order arrive consecutively and are folded here.
func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.OrderHistoryEntry, error) {
	query := `
		SELECT o.id, o.created_at, l.product_id, p.name, l.quantity, l.unit_price, l.subtotal
		FROM orders o
		JOIN order_lines l ON l.order_id = o.id
		JOIN products p ON p.id = l.product_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id, l.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query order history")
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	var (
		entries []model.OrderHistoryEntry
		current *model.OrderHistoryEntry
	)

	for rows.Next() {
		var (
			orderID   uuid.UUID
			createdAt time.Time
			line      model.OrderHistoryLine
		)
		err := rows.Scan(&orderID, &createdAt, &line.ProductID, &line.Name, &line.Quantity, &line.UnitPrice, &line.Subtotal)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order history row")
			return nil, fmt.Errorf("failed to scan order history: %w", err)
		}

		if current == nil || current.OrderID != orderID {
			entries = append(entries, model.OrderHistoryEntry{
				OrderID:   orderID,
				CreatedAt: createdAt,
				Total:     decimal.Zero,
			})
			current = &entries[len(entries)-1]
		}

		current.Lines = append(current.Lines, line)
		current.Total = current.Total.Add(line.Subtotal)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order history rows")
		return nil, fmt.Errorf("error iterating order history: %w", err)
	}

	return entries, nil
}

// SalesByProduct aggregates units sold and revenue per product across the
// whole ledger.
func (r *orderRepository) SalesByProduct(ctx context.Context) ([]model.ProductSales, error) {
	query := `
		SELECT p.id, p.name, SUM(l.quantity) AS units_sold, SUM(l.subtotal) AS revenue
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		GROUP BY p.id, p.name
		ORDER BY units_sold DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query sales by product")
		return nil, fmt.Errorf("failed to query sales by product: %w", err)
	}
	defer rows.Close()

	var sales []model.ProductSales
	for rows.Next() {
		var s model.ProductSales
		if err := rows.Scan(&s.ProductID, &s.Name, &s.UnitsSold, &s.Revenue); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan sales row")
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		sales = append(sales, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating sales rows")
		return nil, fmt.Errorf("error iterating sales rows: %w", err)
	}

	return sales, nil
}
