package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tiendita/internal/imagestore"
	"tiendita/internal/model"
	"tiendita/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	images      imagestore.Store
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	images imagestore.Store,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		images:      images,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves all products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if products == nil {
		products = []model.Product{}
	}

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, model.ErrProductNotFound
	}

	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, model.ErrProductNotFound
	}

	return p, nil
}

// Create adds a product to the catalogue.
func (s *productService) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	id, err := s.productRepo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Int64("product_id", id).Str("name", in.Name).Msg("product created")

	return s.GetByID(ctx, id)
}

// Update replaces a product's mutable fields.
func (s *productService) Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	if id <= 0 {
		return nil, model.ErrProductNotFound
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, id, in); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated")

	return s.GetByID(ctx, id)
}

// Delete removes a product and its stored image, if any.
func (s *productService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.ErrProductNotFound
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	// The row is gone; a missing image is not an error here.
	if err := s.images.Delete(ctx, imageKey(id)); err != nil && !errors.Is(err, imagestore.ErrNotFound) {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("failed to delete product image")
	}

	s.logger.Info().Int64("product_id", id).Msg("product deleted")

	return nil
}

// SetImage stores the product's image and flags it on the row.
func (s *productService) SetImage(ctx context.Context, id int64, data []byte) error {
	if len(data) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "Image data is required")
	}

	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to set product image: %w", err)
	}
	if p == nil {
		return model.ErrProductNotFound
	}

	if err := s.images.Put(ctx, imageKey(id), data); err != nil {
		return fmt.Errorf("failed to store product image: %w", err)
	}

	if err := s.productRepo.SetHasImage(ctx, id, true); err != nil {
		return err
	}

	s.logger.Debug().Int64("product_id", id).Int("bytes", len(data)).Msg("product image stored")

	return nil
}

// GetImage retrieves the product's image and its sniffed MIME type.
func (s *productService) GetImage(ctx context.Context, id int64) ([]byte, string, error) {
	if id <= 0 {
		return nil, "", model.ErrProductNotFound
	}

	data, err := s.images.Get(ctx, imageKey(id))
	if err != nil {
		if errors.Is(err, imagestore.ErrNotFound) {
			return nil, "", model.ErrProductNotFound
		}
		return nil, "", fmt.Errorf("failed to load product image: %w", err)
	}

	return data, imagestore.SniffMIME(data), nil
}

func imageKey(id int64) string {
	return "product_" + strconv.FormatInt(id, 10)
}

// validateProductInput checks the admin payload for a create or update.
func validateProductInput(in model.ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Product name is required")
	}
	if strings.TrimSpace(in.Season) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Product season is required")
	}
	if in.Price.IsNegative() {
		return model.NewDomainError(model.ErrCodeMissingField, "Product price cannot be negative")
	}
	if in.Stock < 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "Product stock cannot be negative")
	}
	return nil
}
