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

type CategoryRepository interface {
	Create(ctx context.Context, input *domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id int64, input *domain.CategoryInput) (*domain.Category, error)
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type categoryRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewCategoryRepository(pool *pgxpool.Pool, logger *zap.Logger) CategoryRepository {
	return &categoryRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/category_repo"),
	}
}

func (r *categoryRepo) Create(ctx context.Context, input *domain.CategoryInput) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("slug", input.Slug),
	)

	query := `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, slug, description
	`

	var c domain.Category
	if err := r.pool.QueryRow(ctx, query, input.Name, input.Slug, input.Description).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
		span.RecordError(err)

		if isUniqueViolation(err) {
			return nil, ErrCategoryAlreadyExists
		}

		mylogger.Error(ctx, r.logger, "Failed to create category", zap.Error(err))

		return nil, fmt.Errorf("error creating category: %w", err)
	}

	return &c, nil
}

func (r *categoryRepo) Update(ctx context.Context, id int64, input *domain.CategoryInput) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		UPDATE categories
		SET name = $1, slug = $2, description = $3
		WHERE id = $4
		RETURNING id, name, slug, description
	`

	var c domain.Category
	if err := r.pool.QueryRow(ctx, query, input.Name, input.Slug, input.Description, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}

		span.RecordError(err)

		if isUniqueViolation(err) {
			return nil, ErrCategoryAlreadyExists
		}

		mylogger.Error(ctx, r.logger, "Failed to update category", zap.Int64("id", id), zap.Error(err))

		return nil, fmt.Errorf("error updating category: %w", err)
	}

	return &c, nil
}

func (r *categoryRepo) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.DeleteByID")
	defer span.End()

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to delete category", zap.Int64("id", id), zap.Error(err))

		return fmt.Errorf("error deleting category: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (r *categoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.List")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, description FROM categories ORDER BY name`)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to list categories", zap.Error(err))

		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.GetBySlug")
	defer span.End()

	span.SetAttributes(
		attribute.String("slug", slug),
	)

	var c domain.Category
	if err := r.pool.QueryRow(ctx, `SELECT id, name, slug, description FROM categories WHERE slug = $1`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("error getting category: %w", err)
	}

	return &c, nil
}
