package repository

import (
	"context"
	"errors"
	"fmt"

	"tiendita/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

const userColumns = `id, name, email, password_hash, role, created_at`

// Postgres error codes for constraint breaches.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user and returns its ID.
func (r *userRepository) Create(ctx context.Context, name, email, passwordHash, role string) (int64, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, name, email, passwordHash, role).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Str("email", email).Msg("failed to create user")
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug().Int64("user_id", id).Msg("user created")

	return id, nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user by email")
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return u, nil
}

// GetByNameAndEmail retrieves a user matching both name and email.
func (r *userRepository) GetByNameAndEmail(ctx context.Context, name, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name = $1 AND email = $2`

	u, err := scanUser(r.pool.QueryRow(ctx, query, name, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user by name and email")
		return nil, fmt.Errorf("failed to query user by name and email: %w", err)
	}
	return u, nil
}

// List retrieves all users.
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query users")
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan user row")
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating user rows")
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// Update replaces a user's name, email and role.
func (r *userRepository) Update(ctx context.Context, id int64, in model.UserInput) error {
	query := `UPDATE users SET name = $2, email = $3, role = $4 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, in.Name, in.Email, in.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update user")
		return fmt.Errorf("failed to update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// UpdatePassword replaces a user's password hash.
func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update password")
		return fmt.Errorf("failed to update password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// Delete removes a user account.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	r.logger.Debug().Int64("user_id", id).Msg("user deleted")

	return nil
}
