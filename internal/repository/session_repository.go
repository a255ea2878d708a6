package repository

import (
	"context"
	"fmt"

	"tiendita/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// sessionRepository implements the SessionRepository interface using PostgreSQL.
type sessionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSessionRepository creates a new PostgreSQL-backed session repository.
func NewSessionRepository(pool *pgxpool.Pool, logger zerolog.Logger) SessionRepository {
	return &sessionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "session").Logger(),
	}
}

// Create persists a new session.
func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", session.UserID).Msg("failed to create session")
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get retrieves a session by token.
func (r *sessionRepository) Get(ctx context.Context, token uuid.UUID) (*model.Session, error) {
	query := `
		SELECT token, user_id, expires_at, created_at
		FROM sessions
		WHERE token = $1
	`

	var s model.Session
	err := r.pool.QueryRow(ctx, query, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query session")
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return &s, nil
}

// Delete removes a session.
func (r *sessionRepository) Delete(ctx context.Context, token uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to delete expired sessions")
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}
