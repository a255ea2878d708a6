package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tiendita/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) FindByIdempotencyKey(ctx context.Context, tx pgx.Tx, userID int64, key string) (*model.Order, []model.OrderLine, error) {
	args := m.Called(ctx, tx, userID, key)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderLine), args.Error(2)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	args := m.Called(ctx, tx, lines)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderLine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderLine), args.Error(2)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.OrderHistoryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderHistoryEntry), args.Error(1)
}

func (m *MockOrderRepository) SalesByProduct(ctx context.Context) ([]model.ProductSales, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductSales), args.Error(1)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Upsert(ctx context.Context, userID, productID int64, qty int, unitPrice decimal.Decimal) error {
	args := m.Called(ctx, userID, productID, qty, unitPrice)
	return args.Error(0)
}

func (m *MockCartRepository) ListByUser(ctx context.Context, userID int64) ([]model.CartItemView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItemView), args.Error(1)
}

func (m *MockCartRepository) DeleteLine(ctx context.Context, userID, lineID int64) error {
	args := m.Called(ctx, userID, lineID)
	return args.Error(0)
}

func (m *MockCartRepository) DeleteForProduct(ctx context.Context, tx pgx.Tx, userID, productID int64) error {
	args := m.Called(ctx, tx, userID, productID)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCheckoutService_Checkout_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := int64(7)

	req := model.CheckoutRequest{
		Lines: []model.CheckoutLine{
			{ProductID: 1, Quantity: 2, UnitPrice: price("10.50")},
			{ProductID: 2, Quantity: 1, UnitPrice: price("4.25")},
		},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(1), 2).Return(true, nil)
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(2), 1).Return(true, nil)
	mockCartRepo.On("DeleteForProduct", ctx, mockTx, userID, int64(1)).Return(nil)
	mockCartRepo.On("DeleteForProduct", ctx, mockTx, userID, int64(2)).Return(nil)
	mockOrderRepo.On("CreateOrderLines", ctx, mockTx, mock.AnythingOfType("[]model.OrderLine")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	resp, err := service.Checkout(ctx, userID, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEqual(t, uuid.Nil, resp.OrderID)
	assert.False(t, resp.Duplicate)
	require.Len(t, resp.Lines, 2)
	// Total is the sum of each line's quantity times its agreed unit price.
	assert.True(t, resp.Total.Equal(price("25.25")), "got total %s", resp.Total)
	assert.True(t, resp.Lines[0].Subtotal.Equal(price("21.00")))
	assert.True(t, resp.Lines[1].Subtotal.Equal(price("4.25")))

	mockOrderRepo.AssertExpectations(t)
	mockProductRepo.AssertExpectations(t)
	mockCartRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
	assert.True(t, mockTx.committed)
	assert.False(t, mockTx.rolledBack)
}

func TestCheckoutService_Checkout_MergesDuplicateLines(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := int64(7)

	req := model.CheckoutRequest{
		Lines: []model.CheckoutLine{
			{ProductID: 1, Quantity: 2, UnitPrice: price("3.00")},
			{ProductID: 1, Quantity: 3, UnitPrice: price("3.00")},
		},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	// One decrement for the merged quantity, not one per submitted line.
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(1), 5).Return(true, nil)
	mockCartRepo.On("DeleteForProduct", ctx, mockTx, userID, int64(1)).Return(nil)
	mockOrderRepo.On("CreateOrderLines", ctx, mockTx, mock.AnythingOfType("[]model.OrderLine")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	resp, err := service.Checkout(ctx, userID, req)

	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 5, resp.Lines[0].Quantity)
	assert.True(t, resp.Total.Equal(price("15.00")))

	mockProductRepo.AssertExpectations(t)
}

func TestCheckoutService_Checkout_ValidationErrors(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	tests := []struct {
		name        string
		userID      int64
		req         model.CheckoutRequest
		expectedErr error
	}{
		{
			name:        "Anonymous user",
			userID:      0,
			req:         model.CheckoutRequest{Lines: []model.CheckoutLine{{ProductID: 1, Quantity: 1}}},
			expectedErr: model.ErrUnauthorised,
		},
		{
			name:        "Empty lines",
			userID:      7,
			req:         model.CheckoutRequest{Lines: []model.CheckoutLine{}},
			expectedErr: model.ErrCartEmpty,
		},
		{
			name:        "Zero quantity",
			userID:      7,
			req:         model.CheckoutRequest{Lines: []model.CheckoutLine{{ProductID: 1, Quantity: 0}}},
			expectedErr: model.ErrInvalidLine,
		},
		{
			name:        "Negative quantity",
			userID:      7,
			req:         model.CheckoutRequest{Lines: []model.CheckoutLine{{ProductID: 1, Quantity: -5}}},
			expectedErr: model.ErrInvalidLine,
		},
		{
			name:        "Missing product ID",
			userID:      7,
			req:         model.CheckoutRequest{Lines: []model.CheckoutLine{{ProductID: 0, Quantity: 1}}},
			expectedErr: model.ErrInvalidLine,
		},
		{
			name:   "Negative unit price",
			userID: 7,
			req: model.CheckoutRequest{
				Lines: []model.CheckoutLine{{ProductID: 1, Quantity: 1, UnitPrice: price("-1.00")}},
			},
			expectedErr: model.ErrInvalidLine,
		},
		{
			name:   "Duplicate lines with mismatched prices",
			userID: 7,
			req: model.CheckoutRequest{
				Lines: []model.CheckoutLine{
					{ProductID: 1, Quantity: 1, UnitPrice: price("2.00")},
					{ProductID: 1, Quantity: 2, UnitPrice: price("2.50")},
				},
			},
			expectedErr: model.ErrInvalidLine,
		},
		{
			name:   "Oversized idempotency key",
			userID: 7,
			req: model.CheckoutRequest{
				IdempotencyKey: string(make([]byte, 256)),
				Lines:          []model.CheckoutLine{{ProductID: 1, Quantity: 1, UnitPrice: price("1.00")}},
			},
			expectedErr: model.ErrInvalidKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := service.Checkout(ctx, tt.userID, tt.req)

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.expectedErr, err)
		})
	}

	// Validation failures never open a transaction.
	mockOrderRepo.AssertNotCalled(t, "BeginTx")
}

func TestCheckoutService_Checkout_InsufficientStock(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := int64(7)

	req := model.CheckoutRequest{
		Lines: []model.CheckoutLine{
			{ProductID: 1, Quantity: 1, UnitPrice: price("2.00")},
			{ProductID: 2, Quantity: 5, UnitPrice: price("8.00")},
		},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(1), 1).Return(true, nil)
	mockCartRepo.On("DeleteForProduct", ctx, mockTx, userID, int64(1)).Return(nil)
	// The second line cannot be covered; the in-transaction read reports the shortfall.
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(2), 5).Return(false, nil)
	mockProductRepo.On("GetByIDTx", ctx, mockTx, int64(2)).Return(&model.Product{ID: 2, Stock: 3}, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	resp, err := service.Checkout(ctx, userID, req)

	require.Error(t, err)
	assert.Nil(t, resp)

	var stockErr *model.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(2), stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// Nothing commits, including the decrement that succeeded first.
	mockOrderRepo.AssertNotCalled(t, "CreateOrderLines")
	mockTx.AssertNotCalled(t, "Commit")
	assert.True(t, mockTx.rolledBack)
}

func TestCheckoutService_Checkout_ProductNotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := int64(7)

	req := model.CheckoutRequest{
		Lines: []model.CheckoutLine{{ProductID: 99, Quantity: 1, UnitPrice: price("2.00")}},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(99), 1).Return(false, nil)
	mockProductRepo.On("GetByIDTx", ctx, mockTx, int64(99)).Return(nil, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	resp, err := service.Checkout(ctx, userID, req)

	require.Error(t, err)
	assert.Equal(t, model.ErrProductNotFound, err)
	assert.Nil(t, resp)
	assert.True(t, mockTx.rolledBack)
}

func TestCheckoutService_Checkout_MidTransactionFailureRollsBack(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := int64(7)

	req := model.CheckoutRequest{
		Lines: []model.CheckoutLine{{ProductID: 1, Quantity: 1, UnitPrice: price("2.00")}},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(1), 1).Return(true, nil)
	mockCartRepo.On("DeleteForProduct", ctx, mockTx, userID, int64(1)).Return(nil)
	mockOrderRepo.On("CreateOrderLines", ctx, mockTx, mock.AnythingOfType("[]model.OrderLine")).
		Return(errors.New("connection reset"))
	mockTx.On("Rollback", ctx).Return(nil)

	resp, err := service.Checkout(ctx, userID, req)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)

	// A clean rollback keeps the original cause, not an abort failure.
	var abortErr *model.CheckoutAbortError
	assert.False(t, errors.As(err, &abortErr))
}

func TestCheckoutService_Checkout_AbortFailureEscalates(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := int64(7)

	req := model.CheckoutRequest{
		Lines: []model.CheckoutLine{{ProductID: 1, Quantity: 1, UnitPrice: price("2.00")}},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	cause := errors.New("connection reset")
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(cause)
	mockTx.On("Rollback", ctx).Return(errors.New("connection gone"))

	resp, err := service.Checkout(ctx, userID, req)

	require.Error(t, err)
	assert.Nil(t, resp)

	var abortErr *model.CheckoutAbortError
	require.ErrorAs(t, err, &abortErr)
	assert.Equal(t, userID, abortErr.UserID)
	assert.Equal(t, cause, abortErr.Cause)
}

func TestCheckoutService_Checkout_RollbackAfterCommitIsBenign(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := int64(7)

	req := model.CheckoutRequest{
		Lines: []model.CheckoutLine{{ProductID: 1, Quantity: 1, UnitPrice: price("2.00")}},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockProductRepo.On("DecrementStock", ctx, mockTx, int64(1), 1).Return(true, nil)
	mockCartRepo.On("DeleteForProduct", ctx, mockTx, userID, int64(1)).Return(nil)
	mockOrderRepo.On("CreateOrderLines", ctx, mockTx, mock.AnythingOfType("[]model.OrderLine")).Return(nil)
	// Commit fails with the transaction already closed; the follow-up
	// rollback reports ErrTxClosed, which must not escalate.
	mockTx.On("Commit", ctx).Return(errors.New("commit timeout"))
	mockTx.On("Rollback", ctx).Return(pgx.ErrTxClosed)

	resp, err := service.Checkout(ctx, userID, req)

	require.Error(t, err)
	assert.Nil(t, resp)

	var abortErr *model.CheckoutAbortError
	assert.False(t, errors.As(err, &abortErr))
}

func TestCheckoutService_Checkout_IdempotentReplay(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := int64(7)
	key := "retry-abc123"

	existingID := uuid.New()
	existing := &model.Order{
		ID:             existingID,
		UserID:         userID,
		IdempotencyKey: &key,
		CreatedAt:      time.Now(),
	}
	existingLines := []model.OrderLine{
		{OrderID: existingID, ProductID: 1, Quantity: 2, UnitPrice: price("10.50"), Subtotal: price("21.00")},
	}

	req := model.CheckoutRequest{
		IdempotencyKey: key,
		Lines:          []model.CheckoutLine{{ProductID: 1, Quantity: 2, UnitPrice: price("10.50")}},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("FindByIdempotencyKey", ctx, mockTx, userID, key).Return(existing, existingLines, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	resp, err := service.Checkout(ctx, userID, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Duplicate)
	assert.Equal(t, existingID, resp.OrderID)
	assert.True(t, resp.Total.Equal(price("21.00")))

	// The replay produces no new writes.
	mockOrderRepo.AssertNotCalled(t, "CreateOrder")
	mockProductRepo.AssertNotCalled(t, "DecrementStock")
	mockCartRepo.AssertNotCalled(t, "DeleteForProduct")
	mockTx.AssertNotCalled(t, "Commit")
}

func TestCheckoutService_Checkout_ReplayRollbackFailureIsBenign(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := int64(7)
	key := "retry-abc123"

	existingID := uuid.New()
	existing := &model.Order{ID: existingID, UserID: userID, IdempotencyKey: &key, CreatedAt: time.Now()}
	existingLines := []model.OrderLine{
		{OrderID: existingID, ProductID: 1, Quantity: 1, UnitPrice: price("2.00"), Subtotal: price("2.00")},
	}

	req := model.CheckoutRequest{
		IdempotencyKey: key,
		Lines:          []model.CheckoutLine{{ProductID: 1, Quantity: 1, UnitPrice: price("2.00")}},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("FindByIdempotencyKey", ctx, mockTx, userID, key).Return(existing, existingLines, nil)
	// A read-only transaction that fails to roll back still replays.
	mockTx.On("Rollback", ctx).Return(errors.New("connection lost"))

	resp, err := service.Checkout(ctx, userID, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Duplicate)
	assert.Equal(t, existingID, resp.OrderID)
}

func TestCheckoutService_Checkout_ConcurrentKeyInsertLosesRace(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := int64(7)
	key := "retry-abc123"

	req := model.CheckoutRequest{
		IdempotencyKey: key,
		Lines:          []model.CheckoutLine{{ProductID: 1, Quantity: 1, UnitPrice: price("2.00")}},
	}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockCartRepo := new(MockCartRepository)
	mockTx := new(MockTx)

	service := NewCheckoutService(mockOrderRepo, mockProductRepo, mockCartRepo, logger)

	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("FindByIdempotencyKey", ctx, mockTx, userID, key).Return(nil, nil, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).
		Return(&pgconn.PgError{Code: "23505"})
	mockTx.On("Rollback", ctx).Return(nil)

	resp, err := service.Checkout(ctx, userID, req)

	require.Error(t, err)
	assert.Equal(t, model.ErrKeyConflict, err)
	assert.Nil(t, resp)
	assert.True(t, mockTx.rolledBack)
}
