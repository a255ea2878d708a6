package repository

import (
	"context"
	"fmt"

	"tiendita/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Upsert adds qty of a product to the user's cart. The UNIQUE (user_id,
// product_id) constraint turns a repeat add into a quantity accumulation;
// the unit price stays frozen at the first add.
func (r *cartRepository) Upsert(ctx context.Context, userID, productID int64, qty int, unitPrice decimal.Decimal) error {
	query := `
		INSERT INTO cart_lines (user_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, userID, productID, qty, unitPrice)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("user_id", userID).
			Int64("product_id", productID).
			Int("quantity", qty).
			Msg("failed to upsert cart line")
		return fmt.Errorf("failed to upsert cart line: %w", err)
	}

	return nil
}

// ListByUser retrieves the user's cart lines joined with current product names.
func (r *cartRepository) ListByUser(ctx context.Context, userID int64) ([]model.CartItemView, error) {
	query := `
		SELECT c.id, c.product_id, p.name, c.unit_price, c.quantity
		FROM cart_lines c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	var items []model.CartItemView
	for rows.Next() {
		var it model.CartItemView
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart line row")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart line rows")
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return items, nil
}

// DeleteLine removes a single cart line owned by the user.
func (r *cartRepository) DeleteLine(ctx context.Context, userID, lineID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1 AND user_id = $2`, lineID, userID)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("user_id", userID).
			Int64("cart_line_id", lineID).
			Msg("failed to delete cart line")
		return fmt.Errorf("failed to delete cart line: %w", err)
	}

	return nil
}

// DeleteForProduct removes the user's cart line for a product inside the
// given transaction.
func (r *cartRepository) DeleteForProduct(ctx context.Context, tx pgx.Tx, userID, productID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("user_id", userID).
			Int64("product_id", productID).
			Msg("failed to delete cart line in transaction")
		return fmt.Errorf("failed to delete cart line: %w", err)
	}

	return nil
}
