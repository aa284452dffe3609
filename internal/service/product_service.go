package service

import (
	"context"
	"math"
	"strings"

	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

type ProductService interface {
	Create(ctx context.Context, input *domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, input *domain.UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error)
	// Invalidate drops any cached copies of the given products.
	Invalidate(ctx context.Context, ids ...int64)
}

type productService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
	tracer      trace.Tracer
}

func NewProductService(productRepo repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger,
		tracer:      otel.Tracer("service/product_service"),
	}
}

func validateProductInput(input *domain.ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return NewValidationError("name is required")
	}
	if strings.TrimSpace(input.SKU) == "" {
		return NewValidationError("sku is required")
	}
	if input.Price.IsNegative() {
		return NewValidationError("price must not be negative")
	}
	if input.Stock < 0 {
		return NewValidationError("stock must not be negative")
	}
	if input.Stock > math.MaxInt32 {
		return NewValidationError("stock must be at most %d", math.MaxInt32)
	}
	if len(input.Images) == 0 {
		return NewValidationError("at least one image is required")
	}

	return nil
}

func (s *productService) Create(ctx context.Context, input *domain.ProductInput) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer span.End()

	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.Create(ctx, &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		SKU:         strings.TrimSpace(input.SKU),
		Price:       input.Price.Round(2),
		Stock:       input.Stock,
		Images:      input.Images,
		CategoryID:  input.CategoryID,
		Variants:    input.Variants,
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("product_id", product.ID))
	mylogger.Info(ctx, s.logger, "Product created", zap.Int64("product_id", product.ID))

	return product, nil
}

func (s *productService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) (*domain.Product, error) {
	if input.Price != nil && input.Price.IsNegative() {
		return nil, NewValidationError("price must not be negative")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, NewValidationError("stock must not be negative")
	}
	if input.Stock != nil && *input.Stock > math.MaxInt32 {
		return nil, NewValidationError("stock must be at most %d", math.MaxInt32)
	}
	if input.Images != nil && len(input.Images) == 0 {
		return nil, NewValidationError("at least one image is required")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, NewValidationError("name must not be empty")
	}

	return s.productRepo.Update(ctx, id, input)
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	return s.productRepo.DeleteByID(ctx, id)
}

func (s *productService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultProductLimit
	}
	if filter.Limit > maxProductLimit {
		filter.Limit = maxProductLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return s.productRepo.List(ctx, filter)
}

func (s *productService) Invalidate(context.Context, ...int64) {}
