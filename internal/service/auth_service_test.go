package service

import (
	"context"
	"testing"
	"time"

	"tiendita/internal/imagestore"
	"tiendita/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, name, email, passwordHash, role string) (int64, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByNameAndEmail(ctx context.Context, name, email string) (*model.User, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id int64, in model.UserInput) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, token uuid.UUID) (*model.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, token uuid.UUID) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestAuthService_Register_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	created := &model.User{ID: 3, Name: "Ana", Email: "ana@example.com", Role: model.RoleCustomer}

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

	mockUsers.On("Create", ctx, "Ana", "ana@example.com", mock.AnythingOfType("string"), model.RoleCustomer).
		Return(int64(3), nil)
	mockUsers.On("GetByID", ctx, int64(3)).Return(created, nil)

	user, err := service.Register(ctx, model.RegisterRequest{
		Name:     "  Ana  ",
		Email:    "ANA@Example.com",
		Password: "Str0ng!pass",
	})

	require.NoError(t, err)
	assert.Equal(t, created, user)
	mockUsers.AssertExpectations(t)

	// The stored hash must verify against the original password.
	hash := mockUsers.Calls[0].Arguments.String(3)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Str0ng!pass")))
}

func TestAuthService_Register_WeakPasswords(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

	tests := []struct {
		name     string
		password string
	}{
		{name: "Too short", password: "Ab1!"},
		{name: "No upper case", password: "str0ng!pass"},
		{name: "No lower case", password: "STR0NG!PASS"},
		{name: "No digit", password: "Strong!pass"},
		{name: "No special character", password: "Str0ngpass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := service.Register(ctx, model.RegisterRequest{
				Name:     "Ana",
				Email:    "ana@example.com",
				Password: tt.password,
			})

			require.Error(t, err)
			assert.Nil(t, user)

			var domErr *model.DomainError
			require.ErrorAs(t, err, &domErr)
			assert.Equal(t, model.ErrCodeWeakPassword, domErr.Code)
		})
	}

	mockUsers.AssertNotCalled(t, "Create")
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

	mockUsers.On("Create", ctx, "Ana", "ana@example.com", mock.AnythingOfType("string"), model.RoleCustomer).
		Return(int64(0), model.ErrEmailTaken)

	user, err := service.Register(ctx, model.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "Str0ng!pass",
	})

	require.Error(t, err)
	assert.Equal(t, model.ErrEmailTaken, err)
	assert.Nil(t, user)
}

func TestAuthService_Login_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &model.User{ID: 3, Name: "Ana", Email: "ana@example.com", PasswordHash: string(hash)}

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), 2*time.Hour, logger)

	mockUsers.On("GetByEmail", ctx, "ana@example.com").Return(stored, nil)
	mockSessions.On("Create", ctx, mock.AnythingOfType("*model.Session")).Return(nil)

	user, session, err := service.Login(ctx, model.LoginRequest{Email: "ana@example.com", Password: "Str0ng!pass"})

	require.NoError(t, err)
	assert.Equal(t, stored, user)
	require.NotNil(t, session)
	assert.NotEqual(t, uuid.Nil, session.Token)
	assert.Equal(t, int64(3), session.UserID)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), session.ExpiresAt, time.Minute)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &model.User{ID: 3, Email: "ana@example.com", PasswordHash: string(hash)}

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

	mockUsers.On("GetByEmail", ctx, "ana@example.com").Return(stored, nil)

	user, session, err := service.Login(ctx, model.LoginRequest{Email: "ana@example.com", Password: "wrong"})

	require.Error(t, err)
	assert.Equal(t, model.ErrInvalidCredentials, err)
	assert.Nil(t, user)
	assert.Nil(t, session)
	mockSessions.AssertNotCalled(t, "Create")
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

	mockUsers.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)

	user, session, err := service.Login(ctx, model.LoginRequest{Email: "ghost@example.com", Password: "whatever"})

	require.Error(t, err)
	// Unknown accounts and bad passwords are indistinguishable to the caller.
	assert.Equal(t, model.ErrInvalidCredentials, err)
	assert.Nil(t, user)
	assert.Nil(t, session)
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	token := uuid.New()
	session := &model.Session{Token: token, UserID: 3, ExpiresAt: time.Now().Add(time.Hour)}
	stored := &model.User{ID: 3, Name: "Ana"}

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

	mockSessions.On("Get", ctx, token).Return(session, nil)
	mockUsers.On("GetByID", ctx, int64(3)).Return(stored, nil)

	user, err := service.Authenticate(ctx, token)

	require.NoError(t, err)
	assert.Equal(t, stored, user)
}

func TestAuthService_Authenticate_ExpiredSessionIsDeleted(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	token := uuid.New()
	session := &model.Session{Token: token, UserID: 3, ExpiresAt: time.Now().Add(-time.Minute)}

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

	mockSessions.On("Get", ctx, token).Return(session, nil)
	mockSessions.On("Delete", ctx, token).Return(nil)

	user, err := service.Authenticate(ctx, token)

	require.Error(t, err)
	assert.Equal(t, model.ErrUnauthorised, err)
	assert.Nil(t, user)
	mockSessions.AssertExpectations(t)
}

func TestAuthService_Authenticate_UnknownToken(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	token := uuid.New()

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

	mockSessions.On("Get", ctx, token).Return(nil, nil)

	user, err := service.Authenticate(ctx, token)

	require.Error(t, err)
	assert.Equal(t, model.ErrUnauthorised, err)
	assert.Nil(t, user)
}

func TestAuthService_ResetPassword(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	stored := &model.User{ID: 3, Name: "Ana", Email: "ana@example.com"}

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

	mockUsers.On("GetByNameAndEmail", ctx, "Ana", "ana@example.com").Return(stored, nil)
	mockUsers.On("UpdatePassword", ctx, int64(3), mock.AnythingOfType("string")).Return(nil)

	err := service.ResetPassword(ctx, model.ResetPasswordRequest{
		Name:        "Ana",
		Email:       "ana@example.com",
		NewPassword: "N3w!passw0rd",
	})

	require.NoError(t, err)
	mockUsers.AssertExpectations(t)
}

func TestAuthService_ResetPassword_NoMatch(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockUsers := new(MockUserRepository)
	mockSessions := new(MockSessionRepository)
	service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

	mockUsers.On("GetByNameAndEmail", ctx, "Ana", "ana@example.com").Return(nil, nil)

	err := service.ResetPassword(ctx, model.ResetPasswordRequest{
		Name:        "Ana",
		Email:       "ana@example.com",
		NewPassword: "N3w!passw0rd",
	})

	require.Error(t, err)
	assert.Equal(t, model.ErrUserNotFound, err)
	mockUsers.AssertNotCalled(t, "UpdatePassword")
}

func TestAuthService_UpdateProfile(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	stored := &model.User{ID: 3, Name: "Ana", Email: "ana@example.com", Role: model.RoleCustomer}

	t.Run("Name change", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockSessions := new(MockSessionRepository)
		service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

		renamed := &model.User{ID: 3, Name: "Ana Maria", Email: "ana@example.com", Role: model.RoleCustomer}
		mockUsers.On("GetByID", ctx, int64(3)).Return(stored, nil).Once()
		mockUsers.On("Update", ctx, int64(3), model.UserInput{
			Name: "Ana Maria", Email: "ana@example.com", Role: model.RoleCustomer,
		}).Return(nil)
		mockUsers.On("GetByID", ctx, int64(3)).Return(renamed, nil).Once()

		user, err := service.UpdateProfile(ctx, 3, model.UpdateProfileRequest{Name: "  Ana Maria "})

		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", user.Name)
		mockUsers.AssertNotCalled(t, "UpdatePassword")
	})

	t.Run("Password change", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockSessions := new(MockSessionRepository)
		service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

		var hash string
		mockUsers.On("GetByID", ctx, int64(3)).Return(stored, nil)
		mockUsers.On("UpdatePassword", ctx, int64(3), mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { hash = args.String(2) }).Return(nil)

		_, err := service.UpdateProfile(ctx, 3, model.UpdateProfileRequest{NewPassword: "N3w!passw0rd"})

		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("N3w!passw0rd")))
		mockUsers.AssertNotCalled(t, "Update")
	})

	t.Run("Weak password rejected", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockSessions := new(MockSessionRepository)
		service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

		mockUsers.On("GetByID", ctx, int64(3)).Return(stored, nil)

		_, err := service.UpdateProfile(ctx, 3, model.UpdateProfileRequest{NewPassword: "short"})

		require.Error(t, err)
		mockUsers.AssertNotCalled(t, "UpdatePassword")
	})

	t.Run("Empty request leaves profile untouched", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockSessions := new(MockSessionRepository)
		service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

		mockUsers.On("GetByID", ctx, int64(3)).Return(stored, nil)

		user, err := service.UpdateProfile(ctx, 3, model.UpdateProfileRequest{})

		require.NoError(t, err)
		assert.Equal(t, "Ana", user.Name)
		mockUsers.AssertNotCalled(t, "Update")
		mockUsers.AssertNotCalled(t, "UpdatePassword")
	})

	t.Run("Unknown user", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockSessions := new(MockSessionRepository)
		service := NewAuthService(mockUsers, mockSessions, new(MockImageStore), time.Hour, logger)

		mockUsers.On("GetByID", ctx, int64(99)).Return(nil, nil)

		_, err := service.UpdateProfile(ctx, 99, model.UpdateProfileRequest{Name: "Nadie"})

		require.Error(t, err)
		assert.Equal(t, model.ErrUserNotFound, err)
	})
}

func TestAuthService_ProfileImage(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a}

	t.Run("Set and get", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockSessions := new(MockSessionRepository)
		mockImages := new(MockImageStore)
		service := NewAuthService(mockUsers, mockSessions, mockImages, time.Hour, logger)

		mockImages.On("Put", ctx, "user_3", png).Return(nil)
		mockImages.On("Get", ctx, "user_3").Return(png, nil)

		require.NoError(t, service.SetProfileImage(ctx, 3, png))

		data, mime, err := service.GetProfileImage(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, png, data)
		assert.Equal(t, "image/png", mime)
	})

	t.Run("Empty image rejected", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockSessions := new(MockSessionRepository)
		mockImages := new(MockImageStore)
		service := NewAuthService(mockUsers, mockSessions, mockImages, time.Hour, logger)

		require.Error(t, service.SetProfileImage(ctx, 3, nil))
		mockImages.AssertNotCalled(t, "Put")
	})

	t.Run("Missing image", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockSessions := new(MockSessionRepository)
		mockImages := new(MockImageStore)
		service := NewAuthService(mockUsers, mockSessions, mockImages, time.Hour, logger)

		mockImages.On("Get", ctx, "user_9").Return(nil, imagestore.ErrNotFound)

		_, _, err := service.GetProfileImage(ctx, 9)
		assert.Equal(t, model.ErrNoProfileImage, err)
	})
}
