package repository

import (
	"context"
	"fmt"

	"tiendita/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, name, description, price, stock, season, has_image, created_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Season, &p.HasImage, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAll retrieves all products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetByIDTx retrieves a single product inside the given transaction.
func (r *productRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product in transaction")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// Create inserts a new product and returns its ID.
func (r *productRepository) Create(ctx context.Context, in model.ProductInput) (int64, error) {
	query := `
		INSERT INTO products (name, description, price, stock, season)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, in.Name, in.Description, in.Price, in.Stock, in.Season).Scan(&id)
	if err != nil {
		r.logger.Error().Err(err).Str("name", in.Name).Msg("failed to create product")
		return 0, fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Int64("product_id", id).Str("name", in.Name).Msg("product created")

	return id, nil
}

// Update replaces the mutable fields of a product.
func (r *productRepository) Update(ctx context.Context, id int64, in model.ProductInput) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, season = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, in.Name, in.Description, in.Price, in.Stock, in.Season)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the catalogue. Products referenced by order
// lines cannot be deleted; the ledger is append-only.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrProductInUse
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	r.logger.Debug().Int64("product_id", id).Msg("product deleted")

	return nil
}

// SetHasImage flags whether a stored image exists for the product.
func (r *productRepository) SetHasImage(ctx context.Context, id int64, hasImage bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET has_image = $2 WHERE id = $1`, id, hasImage)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product image flag")
		return fmt.Errorf("failed to update product image flag: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// DecrementStock decreases a product's stock inside the given transaction,
// but only when the remaining stock covers the requested quantity. The
// condition rides on the UPDATE itself so concurrent checkouts serialize on
// the product row instead of both succeeding against stale stock.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id int64, qty int) (bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("product_id", id).
			Int("quantity", qty).
			Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
