package service

import (
	"context"
	"fmt"
	"strings"

	"tiendita/internal/model"
	"tiendita/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// userService implements UserService (admin roster management).
type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new user roster service.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// List retrieves all users.
func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	if users == nil {
		users = []model.User{}
	}

	return users, nil
}

// GetByID retrieves a single user.
func (s *userService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, model.ErrUserNotFound
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	return user, nil
}

// Create adds a user with a generated temporary password.
func (s *userService) Create(ctx context.Context, in model.UserInput) (*model.User, string, error) {
	in, err := normalizeUserInput(in)
	if err != nil {
		return nil, "", err
	}

	tempPassword := uuid.NewString()[:13]
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash temporary password: %w", err)
	}

	id, err := s.userRepo.Create(ctx, in.Name, in.Email, string(hash), in.Role)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Int64("user_id", id).Str("role", in.Role).Msg("user created by admin")

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get created user: %w", err)
	}

	return user, tempPassword, nil
}

// Update replaces a user's name, email and role.
func (s *userService) Update(ctx context.Context, id int64, in model.UserInput) (*model.User, error) {
	if id <= 0 {
		return nil, model.ErrUserNotFound
	}

	in, err := normalizeUserInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, id, in); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("user updated by admin")

	return s.GetByID(ctx, id)
}

// Delete removes a user account.
func (s *userService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.ErrUserNotFound
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", id).Msg("user deleted by admin")

	return nil
}

// normalizeUserInput trims the payload and whitelists the role, defaulting
// anything unrecognised to customer.
func normalizeUserInput(in model.UserInput) (model.UserInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" || in.Email == "" {
		return in, model.NewDomainError(model.ErrCodeMissingField, "Name and email are required")
	}

	if in.Role != model.RoleAdmin {
		in.Role = model.RoleCustomer
	}

	return in, nil
}
