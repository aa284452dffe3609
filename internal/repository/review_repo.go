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

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID int64, status domain.ReviewStatus) ([]domain.Review, error)
	ListByStatus(ctx context.Context, status domain.ReviewStatus) ([]domain.Review, error)
	SetStatus(ctx context.Context, id int64, status domain.ReviewStatus) (*domain.Review, error)
	DeleteByID(ctx context.Context, id int64) error
}

const reviewColumns = `r.id, r.user_id, r.product_id, r.rating, r.comment, r.status, r.created_at, COALESCE(u.name, '')`

type reviewRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewReviewRepository(pool *pgxpool.Pool, logger *zap.Logger) ReviewRepository {
	return &reviewRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/review_repo"),
	}
}

func scanReview(row pgx.Row, rv *domain.Review) error {
	return row.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.Status, &rv.CreatedAt, &rv.UserName)
}

func (r *reviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", review.UserID),
		attribute.Int64("product_id", review.ProductID),
	)

	query := `
		WITH r AS (
			INSERT INTO reviews (user_id, product_id, rating, comment, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT ` + reviewColumns + `
		FROM r LEFT JOIN users u ON u.id = r.user_id
	`

	var created domain.Review
	if err := scanReview(r.pool.QueryRow(
		ctx,
		query,
		review.UserID,
		review.ProductID,
		review.Rating,
		review.Comment,
		review.Status,
	), &created); err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to create review", zap.Error(err))

		return nil, fmt.Errorf("error creating review: %w", err)
	}

	return &created, nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID int64, status domain.ReviewStatus) ([]domain.Review, error) {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.ListByProduct")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", productID),
	)

	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1 AND r.status = $2
		ORDER BY r.created_at DESC, r.id DESC
	`

	return r.list(ctx, span, query, productID, status)
}

func (r *reviewRepo) ListByStatus(ctx context.Context, status domain.ReviewStatus) ([]domain.Review, error) {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.ListByStatus")
	defer span.End()

	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.status = $1
		ORDER BY r.created_at, r.id
	`

	return r.list(ctx, span, query, status)
}

func (r *reviewRepo) list(ctx context.Context, span trace.Span, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to list reviews", zap.Error(err))

		return nil, fmt.Errorf("error listing reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rv domain.Review
		if err := scanReview(rows, &rv); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	return reviews, rows.Err()
}

func (r *reviewRepo) SetStatus(ctx context.Context, id int64, status domain.ReviewStatus) (*domain.Review, error) {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.SetStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.String("status", string(status)),
	)

	query := `
		WITH r AS (
			UPDATE reviews SET status = $1 WHERE id = $2
			RETURNING *
		)
		SELECT ` + reviewColumns + `
		FROM r LEFT JOIN users u ON u.id = r.user_id
	`

	var rv domain.Review
	if err := scanReview(r.pool.QueryRow(ctx, query, status, id), &rv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReviewNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("error updating review: %w", err)
	}

	return &rv, nil
}

func (r *reviewRepo) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ReviewRepository.DeleteByID")
	defer span.End()

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("error deleting review: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	return nil
}
