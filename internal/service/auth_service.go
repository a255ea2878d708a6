package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"tiendita/internal/imagestore"
	"tiendita/internal/model"
	"tiendita/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the store has always used for password
// hashes; raising it invalidates no existing hash but slows new logins.
const bcryptCost = 10

// authService implements AuthService.
type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	images      imagestore.Store
	sessionTTL  time.Duration
	logger      zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	images imagestore.Store,
	sessionTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		images:      images,
		sessionTTL:  sessionTTL,
		logger:      logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates a new customer account.
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" || email == "" || req.Password == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Name, email and password are required")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.userRepo.Create(ctx, name, email, string(hash), model.RoleCustomer)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("user registered")

	return s.userRepo.GetByID(ctx, id)
}

// Login verifies credentials and opens a new session.
func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.User, *model.Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, nil, model.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to log in: %w", err)
	}
	if user == nil {
		return nil, nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn().Int64("user_id", user.ID).Msg("failed login attempt")
		return nil, nil, model.ErrInvalidCredentials
	}

	now := time.Now()
	session := &model.Session{
		Token:     uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to open session: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")

	return user, session, nil
}

// Logout destroys a session. Unknown tokens are ignored.
func (s *authService) Logout(ctx context.Context, token uuid.UUID) error {
	return s.sessionRepo.Delete(ctx, token)
}

// Authenticate resolves a session token to its user.
func (s *authService) Authenticate(ctx context.Context, token uuid.UUID) (*model.User, error) {
	session, err := s.sessionRepo.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	if session == nil {
		return nil, model.ErrUnauthorised
	}

	if session.Expired(time.Now()) {
		_ = s.sessionRepo.Delete(ctx, token)
		return nil, model.ErrUnauthorised
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthorised
	}

	return user, nil
}

// ResetPassword replaces the password of the user matching name and email.
func (s *authService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" || email == "" || req.NewPassword == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Name, email and new password are required")
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByNameAndEmail(ctx, name, email)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if user == nil {
		return model.ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password reset")

	return nil
}

// UpdateProfile changes the caller's own name and/or password. Empty fields
// are left unchanged; an empty request returns the profile as is.
func (s *authService) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	if name := strings.TrimSpace(req.Name); name != "" && name != user.Name {
		in := model.UserInput{Name: name, Email: user.Email, Role: user.Role}
		if err := s.userRepo.Update(ctx, userID, in); err != nil {
			return nil, err
		}
	}

	if req.NewPassword != "" {
		if err := validatePassword(req.NewPassword); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Int64("user_id", userID).Msg("profile updated")

	return s.userRepo.GetByID(ctx, userID)
}

// SetProfileImage stores the caller's profile picture, replacing any
// previous one.
func (s *authService) SetProfileImage(ctx context.Context, userID int64, data []byte) error {
	if len(data) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "Image data is required")
	}

	if err := s.images.Put(ctx, profileImageKey(userID), data); err != nil {
		return fmt.Errorf("failed to store profile image: %w", err)
	}

	s.logger.Debug().Int64("user_id", userID).Int("bytes", len(data)).Msg("profile image stored")

	return nil
}

// GetProfileImage retrieves a user's profile picture and its sniffed MIME type.
func (s *authService) GetProfileImage(ctx context.Context, userID int64) ([]byte, string, error) {
	if userID <= 0 {
		return nil, "", model.ErrNoProfileImage
	}

	data, err := s.images.Get(ctx, profileImageKey(userID))
	if err != nil {
		if errors.Is(err, imagestore.ErrNotFound) {
			return nil, "", model.ErrNoProfileImage
		}
		return nil, "", fmt.Errorf("failed to load profile image: %w", err)
	}

	return data, imagestore.SniffMIME(data), nil
}

func profileImageKey(id int64) string {
	return "user_" + strconv.FormatInt(id, 10)
}

// validatePassword enforces the account password policy: at least eight
// characters with an upper-case letter, a lower-case letter, a digit and a
// special character.
func validatePassword(password string) error {
	if len(password) < 8 {
		return model.NewDomainError(model.ErrCodeWeakPassword, "Password must be at least 8 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper {
		return model.NewDomainError(model.ErrCodeWeakPassword, "Password must contain an upper-case letter")
	}
	if !hasLower {
		return model.NewDomainError(model.ErrCodeWeakPassword, "Password must contain a lower-case letter")
	}
	if !hasDigit {
		return model.NewDomainError(model.ErrCodeWeakPassword, "Password must contain a digit")
	}
	if !hasSpecial {
		return model.NewDomainError(model.ErrCodeWeakPassword, "Password must contain a special character")
	}

	return nil
}
