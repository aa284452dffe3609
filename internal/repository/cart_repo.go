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

type CartRepository interface {
	Upsert(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error)
	GetByID(ctx context.Context, id int64) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int32) (*domain.CartItem, error)
	Delete(ctx context.Context, id int64) error
	ClearByUser(ctx context.Context, tx pgx.Tx, userID int64) (int64, error)
	RemoveOrdered(ctx context.Context, tx pgx.Tx, userID, cartItemID int64, quantity int32) error
	ListByUser(ctx context.Context, userID int64) ([]domain.CartLine, error)
}

const cartColumns = `id, user_id, product_id, quantity, variant_info, created_at`

type cartRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewCartRepository(pool *pgxpool.Pool, logger *zap.Logger) CartRepository {
	return &cartRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/cart_repo"),
	}
}

func scanCartItem(row pgx.Row, c *domain.CartItem) error {
	return row.Scan(&c.ID, &c.UserID, &c.ProductID, &c.Quantity, &c.VariantInfo, &c.CreatedAt)
}

// Upsert merges item into the user's cart. Lines are identified by user,
// product and the canonical variant key; a matching line has its quantity
// increased instead of a second line being inserted.
func (r *cartRepo) Upsert(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.Upsert")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", item.UserID),
		attribute.Int64("product_id", item.ProductID),
		attribute.Int("quantity", int(item.Quantity)),
	)

	variants := item.VariantInfo.Canonical()

	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, variant_info, variant_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id, variant_key)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING ` + cartColumns

	var res domain.CartItem
	err := scanCartItem(r.pool.QueryRow(
		ctx,
		query,
		item.UserID,
		item.ProductID,
		item.Quantity,
		variants,
		variants.Key(),
	), &res)
	if err != nil {
		span.RecordError(err)

		if isOutOfRange(err) {
			return nil, ErrQuantityOutOfRange
		}

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to upsert cart item",
			zap.Int64("user_id", item.UserID),
			zap.Int64("product_id", item.ProductID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error adding to cart: %w", err)
	}

	return &res, nil
}

func (r *cartRepo) GetByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	var res domain.CartItem
	if err := scanCartItem(r.pool.QueryRow(ctx, `SELECT `+cartColumns+` FROM cart_items WHERE id = $1`, id), &res); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("error getting cart item: %w", err)
	}

	return &res, nil
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, id int64, quantity int32) (*domain.CartItem, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.UpdateQuantity")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Int("quantity", int(quantity)),
	)

	query := `UPDATE cart_items SET quantity = $1 WHERE id = $2 RETURNING ` + cartColumns

	var res domain.CartItem
	if err := scanCartItem(r.pool.QueryRow(ctx, query, quantity, id), &res); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update cart item quantity",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error updating cart item: %w", err)
	}

	return &res, nil
}

func (r *cartRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id); err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to delete cart item", zap.Int64("id", id), zap.Error(err))

		return fmt.Errorf("error deleting cart item: %w", err)
	}

	return nil
}

func (r *cartRepo) ClearByUser(ctx context.Context, tx pgx.Tx, userID int64) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.ClearByUser")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	commandTag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to clear cart", zap.Int64("user_id", userID), zap.Error(err))

		return 0, fmt.Errorf("error clearing cart: %w", err)
	}

	return commandTag.RowsAffected(), nil
}

// RemoveOrdered takes an ordered quantity off a cart line. The line is deleted
// when nothing is left; quantity merged into it after checkout read the cart
// stays in the cart.
func (r *cartRepo) RemoveOrdered(ctx context.Context, tx pgx.Tx, userID, cartItemID int64, quantity int32) error {
	ctx, span := r.tracer.Start(ctx, "CartRepository.RemoveOrdered")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("cart_item_id", cartItemID),
		attribute.Int("quantity", int(quantity)),
	)

	deleteQuery := `
		DELETE FROM cart_items
		WHERE id = $1 AND user_id = $2 AND quantity <= $3
	`

	if _, err := tx.Exec(ctx, deleteQuery, cartItemID, userID, quantity); err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to remove ordered cart line", zap.Int64("id", cartItemID), zap.Error(err))

		return fmt.Errorf("error removing ordered cart line: %w", err)
	}

	updateQuery := `
		UPDATE cart_items
		SET quantity = quantity - $3
		WHERE id = $1 AND user_id = $2 AND quantity > $3
	`

	if _, err := tx.Exec(ctx, updateQuery, cartItemID, userID, quantity); err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to reduce ordered cart line", zap.Int64("id", cartItemID), zap.Error(err))

		return fmt.Errorf("error reducing ordered cart line: %w", err)
	}

	return nil
}

func (r *cartRepo) ListByUser(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	ctx, span := r.tracer.Start(ctx, "CartRepository.ListByUser")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.variant_info, c.created_at,
			p.id, p.name, p.description, p.sku, p.price, p.stock, p.images,
			p.category_id, p.variants, p.created_at, p.updated_at
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to list cart", zap.Int64("user_id", userID), zap.Error(err))

		return nil, fmt.Errorf("error listing cart: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var l domain.CartLine
		p := &l.Product
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.VariantInfo, &l.CreatedAt,
			&p.ID, &p.Name, &p.Description, &p.SKU, &p.Price, &p.Stock, &p.Images,
			&p.CategoryID, &p.Variants, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return lines, nil
}
