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

type BannerRepository interface {
	Create(ctx context.Context, input *domain.BannerInput) (*domain.Banner, error)
	Update(ctx context.Context, id int64, input *domain.BannerInput) (*domain.Banner, error)
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool) ([]domain.Banner, error)
}

const bannerColumns = `id, title, images, link, type, active, position, created_at`

type bannerRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewBannerRepository(pool *pgxpool.Pool, logger *zap.Logger) BannerRepository {
	return &bannerRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/banner_repo"),
	}
}

func scanBanner(row pgx.Row, b *domain.Banner) error {
	return row.Scan(&b.ID, &b.Title, &b.Images, &b.Link, &b.Type, &b.Active, &b.Position, &b.CreatedAt)
}

func (r *bannerRepo) Create(ctx context.Context, input *domain.BannerInput) (*domain.Banner, error) {
	ctx, span := r.tracer.Start(ctx, "BannerRepository.Create")
	defer span.End()

	query := `
		INSERT INTO banners (title, images, link, type, active, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + bannerColumns

	var b domain.Banner
	err := scanBanner(r.pool.QueryRow(
		ctx,
		query,
		input.Title,
		nonNilStrings(input.Images),
		input.Link,
		input.Type,
		input.Active,
		input.Position,
	), &b)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to create banner", zap.Error(err))

		return nil, fmt.Errorf("error creating banner: %w", err)
	}

	return &b, nil
}

func (r *bannerRepo) Update(ctx context.Context, id int64, input *domain.BannerInput) (*domain.Banner, error) {
	ctx, span := r.tracer.Start(ctx, "BannerRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		UPDATE banners
		SET title = $1, images = $2, link = $3, type = $4, active = $5, position = $6
		WHERE id = $7
		RETURNING ` + bannerColumns

	var b domain.Banner
	err := scanBanner(r.pool.QueryRow(
		ctx,
		query,
		input.Title,
		nonNilStrings(input.Images),
		input.Link,
		input.Type,
		input.Active,
		input.Position,
		id,
	), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBannerNotFound
		}

		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to update banner", zap.Int64("id", id), zap.Error(err))

		return nil, fmt.Errorf("error updating banner: %w", err)
	}

	return &b, nil
}

func (r *bannerRepo) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "BannerRepository.DeleteByID")
	defer span.End()

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("error deleting banner: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrBannerNotFound
	}

	return nil
}

func (r *bannerRepo) List(ctx context.Context, activeOnly bool) ([]domain.Banner, error) {
	ctx, span := r.tracer.Start(ctx, "BannerRepository.List")
	defer span.End()

	span.SetAttributes(
		attribute.Bool("active_only", activeOnly),
	)

	query := `SELECT ` + bannerColumns + ` FROM banners`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY position, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to list banners", zap.Error(err))

		return nil, fmt.Errorf("error listing banners: %w", err)
	}
	defer rows.Close()

	banners := make([]domain.Banner, 0)
	for rows.Next() {
		var b domain.Banner
		if err := scanBanner(rows, &b); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning banner: %w", err)
		}
		banners = append(banners, b)
	}

	return banners, rows.Err()
}
