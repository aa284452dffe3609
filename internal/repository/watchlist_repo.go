package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type WatchlistRepository interface {
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
	ListByUser(ctx context.Context, userID int64) ([]domain.WatchlistItem, error)
}

type watchlistRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewWatchlistRepository(pool *pgxpool.Pool, logger *zap.Logger) WatchlistRepository {
	return &watchlistRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/watchlist_repo"),
	}
}

func (r *watchlistRepo) Add(ctx context.Context, userID, productID int64) error {
	ctx, span := r.tracer.Start(ctx, "WatchlistRepository.Add")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("product_id", productID),
	)

	query := `
		INSERT INTO watchlist_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, userID, productID); err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to add to watchlist", zap.Error(err))

		return fmt.Errorf("error adding to watchlist: %w", err)
	}

	return nil
}

func (r *watchlistRepo) Remove(ctx context.Context, userID, productID int64) error {
	ctx, span := r.tracer.Start(ctx, "WatchlistRepository.Remove")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("product_id", productID),
	)

	query := `DELETE FROM watchlist_items WHERE user_id = $1 AND product_id = $2`

	if _, err := r.pool.Exec(ctx, query, userID, productID); err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to remove from watchlist", zap.Error(err))

		return fmt.Errorf("error removing from watchlist: %w", err)
	}

	return nil
}

func (r *watchlistRepo) ListByUser(ctx context.Context, userID int64) ([]domain.WatchlistItem, error) {
	ctx, span := r.tracer.Start(ctx, "WatchlistRepository.ListByUser")
	defer span.End()

	query := `
		SELECT w.id, w.user_id, w.product_id, w.created_at,
			p.id, p.name, p.description, p.sku, p.price, p.stock, p.images,
			p.category_id, p.variants, p.created_at, p.updated_at
		FROM watchlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC, w.id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to list watchlist", zap.Error(err))

		return nil, fmt.Errorf("error listing watchlist: %w", err)
	}
	defer rows.Close()

	items := make([]domain.WatchlistItem, 0)
	for rows.Next() {
		var w domain.WatchlistItem
		var p domain.Product
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.ProductID, &w.CreatedAt,
			&p.ID, &p.Name, &p.Description, &p.SKU, &p.Price, &p.Stock, &p.Images,
			&p.CategoryID, &p.Variants, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning watchlist item: %w", err)
		}
		w.Product = &p
		items = append(items, w)
	}

	return items, rows.Err()
}
