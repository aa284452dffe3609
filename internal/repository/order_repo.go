package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	CreateOrderItem(ctx context.Context, tx pgx.Tx, item *domain.OrderItem) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Order, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	ListItemsTx(ctx context.Context, tx pgx.Tx, orderID int64) ([]domain.OrderItem, error)
	List(ctx context.Context, userID *int64) ([]domain.Order, error)
	ChangeOrderStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.OrderStatus) (*domain.Order, error)
}

const orderColumns = `id, user_id, status, total, address, payment_method, payment_intent_id, created_at, updated_at`

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/order_repo"),
	}
}

func scanOrder(row pgx.Row, o *domain.Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.Total,
		&o.Address,
		&o.PaymentMethod,
		&o.PaymentIntentID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func (r *orderRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", order.UserID),
	)

	query := `
		INSERT INTO orders (user_id, status, total, address, payment_method, payment_intent_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + orderColumns

	if err := scanOrder(tx.QueryRow(
		ctx,
		query,
		order.UserID,
		order.Status,
		order.Total,
		order.Address,
		order.PaymentMethod,
		order.PaymentIntentID,
	), order); err != nil {
		span.RecordError(err)

		mylogger.Warn(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (r *orderRepo) CreateOrderItem(ctx context.Context, tx pgx.Tx, item *domain.OrderItem) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrderItem")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", item.OrderID),
		attribute.Int64("product_id", item.ProductID),
	)

	query := `
		INSERT INTO order_items (order_id, product_id, quantity, price, variant_info)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := tx.QueryRow(
		ctx,
		query,
		item.OrderID,
		item.ProductID,
		item.Quantity,
		item.Price,
		item.VariantInfo.Canonical(),
	).Scan(&item.ID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to insert item",
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order item: %w", err)
	}

	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	var o domain.Order
	if err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to get order", zap.Int64("order_id", id), zap.Error(err))

		return nil, fmt.Errorf("error getting order: %w", err)
	}

	return &o, nil
}

func (r *orderRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByIDForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	var o domain.Order
	if err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("error locking order: %w", err)
	}

	return &o, nil
}

func (r *orderRepo) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListItems")
	defer span.End()

	return r.listItems(ctx, span, r.pool, orderID)
}

func (r *orderRepo) ListItemsTx(ctx context.Context, tx pgx.Tx, orderID int64) ([]domain.OrderItem, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListItemsTx")
	defer span.End()

	return r.listItems(ctx, span, tx, orderID)
}

func (r *orderRepo) listItems(ctx context.Context, span trace.Span, q queryer, orderID int64) ([]domain.OrderItem, error) {
	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	query := `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.price, i.variant_info, COALESCE(p.name, '')
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query order_items",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error listing order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
			&item.VariantInfo,
			&item.ProductName,
		); err != nil {
			span.RecordError(err)

			mylogger.Error(
				ctx,
				r.logger,
				"Failed to scan row",
				zap.Error(err),
			)

			return nil, fmt.Errorf("error scanning order item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}

// List returns orders newest first, restricted to userID when it is set.
func (r *orderRepo) List(ctx context.Context, userID *int64) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []interface{}
	if userID != nil {
		span.SetAttributes(attribute.Int64("user_id", *userID))

		query += ` WHERE user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to list orders", zap.Error(err))

		return nil, fmt.Errorf("error listing orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning order: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

func (r *orderRepo) ChangeOrderStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.OrderStatus) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ChangeOrderStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + orderColumns

	var o domain.Order
	if err := scanOrder(tx.QueryRow(ctx, query, status, id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			mylogger.Warn(
				ctx,
				r.logger,
				"Order not found",
				zap.Int64("order_id", id),
			)

			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update order",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	return &o, nil
}
