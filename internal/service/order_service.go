package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/metrics"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	outboxRepository "github.com/jainam01/FOURKID-sub000/pkg/outbox/repository"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var totalTolerance = decimal.RequireFromString("0.01")

type OrderService interface {
	CreateOrder(ctx context.Context, input *domain.CreateOrderInput) (*domain.Order, error)
	CheckoutCart(ctx context.Context, userID int64, address string, paymentMethod *string) (*domain.Order, error)
	GetOrderWithItems(ctx context.Context, requester domain.Requester, orderID int64) (*domain.OrderWithItems, error)
	ListOrders(ctx context.Context, requester domain.Requester) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error)
}

type ProductCacheInvalidator interface {
	Invalidate(ctx context.Context, ids ...int64)
}

type OrderConfig struct {
	TaxRate decimal.Decimal
	Topic   string
}

type orderService struct {
	pool        *pgxpool.Pool
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	outboxRepo  outboxRepository.OutboxRepository
	cache       ProductCacheInvalidator
	cfg         OrderConfig
	metrics     *metrics.Metrics
	logger      *zap.Logger
	tracer      trace.Tracer
}

func NewOrderService(
	pool *pgxpool.Pool,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	outboxRepo outboxRepository.OutboxRepository,
	cache ProductCacheInvalidator,
	cfg OrderConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		pool:        pool,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		outboxRepo:  outboxRepo,
		cache:       cache,
		cfg:         cfg,
		metrics:     m,
		logger:      logger,
		tracer:      otel.Tracer("service/order_service"),
	}
}

func (s *orderService) validateOrder(input *domain.CreateOrderInput) error {
	if len(input.Items) == 0 {
		return ErrEmptyOrder
	}

	if strings.TrimSpace(input.Address) == "" {
		return NewValidationError("address is required")
	}

	for i, item := range input.Items {
		if item.ProductID <= 0 {
			return NewValidationError("items[%d]: productId is required", i)
		}
		if item.Quantity < 1 {
			return &ValidationError{
				Message: fmt.Sprintf("items[%d]: %s", i, ErrInvalidQuantity),
				Err:     ErrInvalidQuantity,
			}
		}
		if item.Price.IsNegative() {
			return NewValidationError("items[%d]: price must not be negative", i)
		}
	}

	expected := domain.TotalWithTax(domain.Subtotal(input.Items), s.cfg.TaxRate)
	if input.Total.Sub(expected).Abs().GreaterThan(totalTolerance) {
		return NewValidationError("total %s does not match expected %s", input.Total.StringFixed(2), expected.StringFixed(2))
	}

	return nil
}

// CreateOrder commits an order in a single transaction: the order row, its
// items, the stock decrement of every item, clearing the user's cart and the
// OrderCreated event either all happen or none do.
func (s *orderService) CreateOrder(ctx context.Context, input *domain.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", input.UserID),
		attribute.Int("items_count", len(input.Items)),
	)

	if err := s.validateOrder(input); err != nil {
		s.metrics.OrderFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	order, err := s.commitOrder(ctx, input)
	if err != nil {
		span.RecordError(err)
		s.metrics.OrderFailures.WithLabelValues(failureReason(err)).Inc()

		mylogger.Warn(
			ctx,
			s.logger,
			"Order commit failed",
			zap.Int64("user_id", input.UserID),
			zap.Error(err),
		)

		return nil, err
	}

	s.cache.Invalidate(ctx, productIDs(input.Items)...)
	s.metrics.OrdersCreated.Inc()

	mylogger.Info(
		ctx,
		s.logger,
		"Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", order.UserID),
		zap.String("total", order.Total.StringFixed(2)),
	)

	return order, nil
}

func (s *orderService) commitOrder(ctx context.Context, input *domain.CreateOrderInput) (*domain.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	order := &domain.Order{
		UserID:        input.UserID,
		Status:        domain.OrderStatusPending,
		Total:         input.Total.Round(2),
		Address:       strings.TrimSpace(input.Address),
		PaymentMethod: input.PaymentMethod,
	}
	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	eventItems := make([]domain.OrderItemEvent, 0, len(input.Items))
	for _, in := range input.Items {
		item := &domain.OrderItem{
			OrderID:     order.ID,
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			Price:       in.Price.Round(2),
			VariantInfo: in.VariantInfo,
		}
		if err := s.orderRepo.CreateOrderItem(ctx, tx, item); err != nil {
			return nil, err
		}

		eventItems = append(eventItems, domain.OrderItemEvent{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := s.decreaseStock(ctx, tx, input.Items); err != nil {
		return nil, err
	}

	if err := s.clearOrderedCart(ctx, tx, input); err != nil {
		return nil, err
	}

	err = emitEvent(
		ctx,
		tx,
		s.outboxRepo,
		s.cfg.Topic,
		domain.AggregateOrder,
		strconv.FormatInt(order.ID, 10),
		domain.EventOrderCreated,
		&domain.OrderCreatedEvent{
			OrderID: order.ID,
			UserID:  order.UserID,
			Total:   order.Total,
			Items:   eventItems,
		},
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, nil
}

// clearOrderedCart empties the cart after a direct order. A checkout only
// removes what it ordered from the lines it read.
func (s *orderService) clearOrderedCart(ctx context.Context, tx pgx.Tx, input *domain.CreateOrderInput) error {
	checkout := false
	for _, item := range input.Items {
		if item.CartItemID == 0 {
			continue
		}
		checkout = true

		if err := s.cartRepo.RemoveOrdered(ctx, tx, input.UserID, item.CartItemID, item.Quantity); err != nil {
			return err
		}
	}

	if checkout {
		return nil
	}

	_, err := s.cartRepo.ClearByUser(ctx, tx, input.UserID)
	return err
}

// decreaseStock takes stock for every item, locking product rows in id order
// so concurrent orders cannot deadlock. The price read under the lock must
// match the price the caller saw.
func (s *orderService) decreaseStock(ctx context.Context, tx pgx.Tx, items []domain.OrderItemInput) error {
	sorted := make([]domain.OrderItemInput, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProductID < sorted[j].ProductID
	})

	for _, item := range sorted {
		livePrice, err := s.productRepo.DecreaseStock(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) || errors.Is(err, repository.ErrProductNotFound) {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
			return err
		}

		if !livePrice.Equal(item.Price.Round(2)) {
			return fmt.Errorf(
				"%w: product %d costs %s, not %s",
				ErrPriceChanged,
				item.ProductID,
				livePrice.StringFixed(2),
				item.Price.StringFixed(2),
			)
		}
	}

	return nil
}

func (s *orderService) CheckoutCart(ctx context.Context, userID int64, address string, paymentMethod *string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CheckoutCart")
	defer span.End()

	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		s.metrics.OrderFailures.WithLabelValues("empty").Inc()
		return nil, ErrEmptyOrder
	}

	items := make([]domain.OrderItemInput, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItemInput{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			Price:       line.Product.Price,
			VariantInfo: line.VariantInfo,
			CartItemID:  line.ID,
		})
	}

	return s.CreateOrder(ctx, &domain.CreateOrderInput{
		UserID:        userID,
		Address:       address,
		Items:         items,
		Total:         domain.TotalWithTax(domain.Subtotal(items), s.cfg.TaxRate),
		PaymentMethod: paymentMethod,
	})
}

func (s *orderService) GetOrderWithItems(ctx context.Context, requester domain.Requester, orderID int64) (*domain.OrderWithItems, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrderWithItems")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", orderID))

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !requester.IsAdmin() && order.UserID != requester.UserID {
		return nil, ErrForbidden
	}

	items, err := s.orderRepo.ListItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &domain.OrderWithItems{Order: *order, Items: items}, nil
}

func (s *orderService) ListOrders(ctx context.Context, requester domain.Requester) ([]domain.Order, error) {
	if requester.IsAdmin() {
		return s.orderRepo.List(ctx, nil)
	}

	return s.orderRepo.List(ctx, &requester.UserID)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("status", status),
	)

	target, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, invalid(ErrInvalidStatus)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	current, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if current.Status == target {
		return current, nil
	}

	if !current.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, target)
	}

	updated, err := s.orderRepo.ChangeOrderStatus(ctx, tx, orderID, target)
	if err != nil {
		return nil, err
	}

	var restocked []int64
	if target == domain.OrderStatusCancelled {
		restocked, err = s.restock(ctx, tx, updated)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.cache.Invalidate(ctx, restocked...)
	s.metrics.OrderStatusChanges.WithLabelValues(string(target)).Inc()

	mylogger.Info(
		ctx,
		s.logger,
		"Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(target)),
	)

	return updated, nil
}

// restock returns the stock of every item of a cancelled order and emits
// OrderCancelled. Items whose product was deleted are skipped.
func (s *orderService) restock(ctx context.Context, tx pgx.Tx, order *domain.Order) ([]int64, error) {
	items, err := s.orderRepo.ListItemsTx(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ProductID < items[j].ProductID
	})

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if err := s.productRepo.IncreaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			return nil, err
		}
		ids = append(ids, item.ProductID)
	}

	err = emitEvent(
		ctx,
		tx,
		s.outboxRepo,
		s.cfg.Topic,
		domain.AggregateOrder,
		strconv.FormatInt(order.ID, 10),
		domain.EventOrderCancelled,
		&domain.OrderCancelledEvent{OrderID: order.ID, UserID: order.UserID},
	)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func productIDs(items []domain.OrderItemInput) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, repository.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrPriceChanged):
		return "price_changed"
	default:
		return "internal"
	}
}
