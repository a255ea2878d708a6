package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User represents an account in the store.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Session represents a server-side login session. The token doubles as the
// cookie value handed to the client.
type Session struct {
	Token     uuid.UUID `json:"-" db:"token"`
	UserID    int64     `json:"-" db:"user_id"`
	ExpiresAt time.Time `json:"-" db:"expires_at"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// RegisterRequest represents the request payload for account registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request payload for a login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents the request payload for a password reset.
type ResetPasswordRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfileRequest represents the payload for a user's self-service
// profile update. Empty fields are left unchanged.
type UpdateProfileRequest struct {
	Name        string `json:"name"`
	NewPassword string `json:"newPassword"`
}

// UserInput represents the admin payload for creating or updating a user.
type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
