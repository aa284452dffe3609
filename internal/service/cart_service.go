package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/metrics"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CartService interface {
	AddToCart(ctx context.Context, userID, productID int64, quantity int32, variants domain.VariantSelection) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, cartItemID int64, quantity int32) (*domain.CartItem, error)
	Remove(ctx context.Context, userID, cartItemID int64) error
	Clear(ctx context.Context, userID int64) error
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
}

type cartService struct {
	pool        *pgxpool.Pool
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
	tracer      trace.Tracer
}

func NewCartService(
	pool *pgxpool.Pool,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) CartService {
	return &cartService{
		pool:        pool,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		metrics:     m,
		logger:      logger,
		tracer:      otel.Tracer("service/cart_service"),
	}
}

func (s *cartService) AddToCart(
	ctx context.Context,
	userID, productID int64,
	quantity int32,
	variants domain.VariantSelection,
) (*domain.CartItem, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddToCart")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("product_id", productID),
		attribute.Int("quantity", int(quantity)),
	)

	if quantity < 1 {
		return nil, invalid(ErrInvalidQuantity)
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	item, err := s.cartRepo.Upsert(ctx, &domain.CartItem{
		UserID:      userID,
		ProductID:   productID,
		Quantity:    quantity,
		VariantInfo: variants,
	})
	if err != nil {
		if errors.Is(err, repository.ErrQuantityOutOfRange) {
			return nil, invalid(err)
		}
		return nil, err
	}

	s.metrics.CartItemsAdded.Inc()
	mylogger.Debug(
		ctx,
		s.logger,
		"Cart line merged",
		zap.Int64("cart_item_id", item.ID),
		zap.Int32("quantity", item.Quantity),
	)

	return item, nil
}

// owned loads a cart line and checks it belongs to userID.
func (s *cartService) owned(ctx context.Context, userID, cartItemID int64) (*domain.CartItem, error) {
	item, err := s.cartRepo.GetByID(ctx, cartItemID)
	if err != nil {
		return nil, err
	}

	if item.UserID != userID {
		mylogger.Warn(
			ctx,
			s.logger,
			"Cart item belongs to another user",
			zap.Int64("user_id", userID),
			zap.Int64("cart_item_id", cartItemID),
		)

		return nil, ErrForbidden
	}

	return item, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, cartItemID int64, quantity int32) (*domain.CartItem, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateQuantity")
	defer span.End()

	if quantity < 1 {
		return nil, invalid(ErrInvalidQuantity)
	}

	if _, err := s.owned(ctx, userID, cartItemID); err != nil {
		return nil, err
	}

	return s.cartRepo.UpdateQuantity(ctx, cartItemID, quantity)
}

func (s *cartService) Remove(ctx context.Context, userID, cartItemID int64) error {
	ctx, span := s.tracer.Start(ctx, "CartService.Remove")
	defer span.End()

	if _, err := s.owned(ctx, userID, cartItemID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil
		}
		return err
	}

	return s.cartRepo.Delete(ctx, cartItemID)
}

func (s *cartService) Clear(ctx context.Context, userID int64) error {
	ctx, span := s.tracer.Start(ctx, "CartService.Clear")
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	if _, err := s.cartRepo.ClearByUser(ctx, tx, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *cartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return domain.NewCart(lines), nil
}
