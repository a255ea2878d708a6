package service

import (
	"context"
	"fmt"

	"tiendita/internal/model"
	"tiendita/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get retrieves the user's cart with derived count and total.
func (s *cartService) Get(ctx context.Context, userID int64) (*model.CartView, error) {
	if userID <= 0 {
		return nil, model.ErrUnauthorised
	}
	return s.buildView(ctx, userID)
}

// Add puts qty of a product in the user's cart. The stock check here is a
// point-in-time courtesy for the UI; the authoritative check happens inside
// the checkout transaction.
func (s *cartService) Add(ctx context.Context, userID int64, req model.AddToCartRequest) (*model.CartView, error) {
	if userID <= 0 {
		return nil, model.ErrUnauthorised
	}
	if req.ProductID <= 0 || req.Quantity < 1 {
		return nil, model.ErrInvalidLine
	}

	p, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}

	// The accumulated quantity, not just this add, must fit the stock.
	existing := 0
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	for _, it := range items {
		if it.ProductID == req.ProductID {
			existing = it.Quantity
			break
		}
	}

	if existing+req.Quantity > p.Stock {
		return nil, &model.InsufficientStockError{
			ProductID: req.ProductID,
			Requested: existing + req.Quantity,
			Available: p.Stock,
		}
	}

	if err := s.cartRepo.Upsert(ctx, userID, req.ProductID, req.Quantity, p.Price); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Debug().
		Int64("user_id", userID).
		Int64("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Msg("product added to cart")

	return s.buildView(ctx, userID)
}

// RemoveLine deletes one cart line. Removing an absent line is a no-op.
func (s *cartService) RemoveLine(ctx context.Context, userID, lineID int64) (*model.CartView, error) {
	if userID <= 0 {
		return nil, model.ErrUnauthorised
	}
	if lineID <= 0 {
		return nil, model.ErrInvalidLine
	}

	if err := s.cartRepo.DeleteLine(ctx, userID, lineID); err != nil {
		return nil, fmt.Errorf("failed to remove cart line: %w", err)
	}

	return s.buildView(ctx, userID)
}

// buildView assembles the cart response. Count and total are recomputed from
// the lines on every read rather than maintained as separate state.
func (s *cartService) buildView(ctx context.Context, userID int64) (*model.CartView, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}

	view := &model.CartView{
		Items: items,
		Total: decimal.Zero,
	}
	if view.Items == nil {
		view.Items = []model.CartItemView{}
	}

	for _, it := range items {
		view.Count += it.Quantity
		view.Total = view.Total.Add(it.Subtotal)
	}

	return view, nil
}
