package service

import (
	"context"
	"fmt"

	"tiendita/internal/model"
	"tiendita/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewOrderService creates a new order history service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// History retrieves all of a user's orders grouped with their lines and totals.
func (s *orderService) History(ctx context.Context, userID int64) ([]model.OrderHistoryEntry, error) {
	if userID <= 0 {
		return nil, model.ErrUnauthorised
	}

	entries, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}

	if entries == nil {
		entries = []model.OrderHistoryEntry{}
	}

	return entries, nil
}

// GetByID retrieves one of the user's orders by ID. Another user's order is
// treated as nonexistent.
func (s *orderService) GetByID(ctx context.Context, userID int64, orderID uuid.UUID) (*model.OrderHistoryEntry, error) {
	if userID <= 0 {
		return nil, model.ErrUnauthorised
	}

	order, lines, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}

	entry := &model.OrderHistoryEntry{
		OrderID:   order.ID,
		CreatedAt: order.CreatedAt,
		Total:     sumSubtotals(lines),
	}

	for _, line := range lines {
		p, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to get order: %w", err)
		}
		name := ""
		if p != nil {
			name = p.Name
		}
		entry.Lines = append(entry.Lines, model.OrderHistoryLine{
			ProductID: line.ProductID,
			Name:      name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
	}

	return entry, nil
}

// SalesByProduct aggregates units sold and revenue per product.
func (s *orderService) SalesByProduct(ctx context.Context) ([]model.ProductSales, error) {
	sales, err := s.orderRepo.SalesByProduct(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales report: %w", err)
	}

	if sales == nil {
		sales = []model.ProductSales{}
	}

	return sales, nil
}
