package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tiendita/internal/model"
	"tiendita/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxIdempotencyKeyLen bounds client-supplied idempotency keys.
const maxIdempotencyKeyLen = 255

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout coordinator.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout converts the submitted cart lines into an immutable order inside
// one database transaction: the order row, its lines, the conditional stock
// decrements and the cart-line deletions become visible together or not at
// all. Validation runs before the transaction opens, so a malformed request
// never touches the store.
func (s *checkoutService) Checkout(ctx context.Context, userID int64, req model.CheckoutRequest) (resp *model.CheckoutResponse, err error) {
	if userID <= 0 {
		return nil, model.ErrUnauthorised
	}

	lines, err := foldLines(req.Lines)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return nil, model.ErrInvalidKey
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start checkout: %w", err)
	}

	// The abort path must run before control returns to the caller. A
	// rollback that itself fails means the coordinator can no longer vouch
	// for the durable state, so the error escalates to a fatal abort
	// failure carrying enough context to reconstruct intent.
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			abortErr := &model.CheckoutAbortError{UserID: userID, Cause: err, AbortCause: rbErr}
			s.logger.Error().
				Int64("user_id", userID).
				Interface("lines", lines).
				AnErr("cause", err).
				AnErr("abort_cause", rbErr).
				Msg("checkout abort failed, durable state needs reconciliation")
			err = abortErr
		}
	}()

	// Same key, same result: a retry with an idempotency key returns the
	// order it created before, with no further side effects.
	if key != "" {
		existing, existingLines, findErr := s.orderRepo.FindByIdempotencyKey(ctx, tx, userID, key)
		if findErr != nil {
			err = fmt.Errorf("failed to check idempotency key: %w", findErr)
			return nil, err
		}
		if existing != nil {
			// The transaction only read; a failed rollback leaks a
			// connection at worst, never durable state.
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Debug().Err(rbErr).Int64("user_id", userID).Msg("rollback after idempotent replay failed")
			}
			s.logger.Info().
				Int64("user_id", userID).
				Str("order_id", existing.ID.String()).
				Msg("checkout deduplicated by idempotency key")
			return &model.CheckoutResponse{
				OrderID:   existing.ID,
				Lines:     existingLines,
				Total:     sumSubtotals(existingLines),
				Duplicate: true,
			}, nil
		}
	}

	order := &model.Order{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		// A concurrent checkout with the same key won the insert race.
		if isUniqueViolation(err) {
			err = model.ErrKeyConflict
		}
		return nil, err
	}

	orderLines := make([]model.OrderLine, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		ok, decErr := s.productRepo.DecrementStock(ctx, tx, line.ProductID, line.Quantity)
		if decErr != nil {
			err = fmt.Errorf("failed to adjust stock: %w", decErr)
			return nil, err
		}
		if !ok {
			// The conditional update did not fire: either the product is
			// gone or its stock cannot cover the line. Distinguish inside
			// the same transaction.
			p, getErr := s.productRepo.GetByIDTx(ctx, tx, line.ProductID)
			if getErr != nil {
				err = fmt.Errorf("failed to inspect product %d: %w", line.ProductID, getErr)
				return nil, err
			}
			if p == nil {
				err = model.ErrProductNotFound
				return nil, err
			}
			err = &model.InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: p.Stock,
			}
			return nil, err
		}

		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		orderLines = append(orderLines, model.OrderLine{
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)

		if err = s.cartRepo.DeleteForProduct(ctx, tx, userID, line.ProductID); err != nil {
			return nil, err
		}
	}

	if err = s.orderRepo.CreateOrderLines(ctx, tx, orderLines); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("failed to commit checkout: %w", err)
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", userID).
		Str("order_id", order.ID.String()).
		Int("line_count", len(orderLines)).
		Str("total", total.String()).
		Msg("checkout committed")

	return &model.CheckoutResponse{
		OrderID: order.ID,
		Lines:   orderLines,
		Total:   total,
	}, nil
}

// foldLines validates the submitted lines and merges duplicates of the same
// product into one line, so the order carries one line per distinct product.
// Duplicate lines must agree on the unit price; folding them under one price
// would charge something the client never itemized.
func foldLines(lines []model.CheckoutLine) ([]model.CheckoutLine, error) {
	if len(lines) == 0 {
		return nil, model.ErrCartEmpty
	}

	index := make(map[int64]int, len(lines))
	folded := make([]model.CheckoutLine, 0, len(lines))

	for _, line := range lines {
		if line.ProductID <= 0 || line.Quantity < 1 || line.UnitPrice.IsNegative() {
			return nil, model.ErrInvalidLine
		}
		if i, seen := index[line.ProductID]; seen {
			if !folded[i].UnitPrice.Equal(line.UnitPrice) {
				return nil, model.ErrInvalidLine
			}
			folded[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(folded)
		folded = append(folded, line)
	}

	return folded, nil
}

func sumSubtotals(lines []model.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
