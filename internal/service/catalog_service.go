package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"go.uber.org/zap"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CatalogService manages categories and banners.
type CatalogService interface {
	CreateCategory(ctx context.Context, input *domain.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, input *domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)

	CreateBanner(ctx context.Context, input *domain.BannerInput) (*domain.Banner, error)
	UpdateBanner(ctx context.Context, id int64, input *domain.BannerInput) (*domain.Banner, error)
	DeleteBanner(ctx context.Context, id int64) error
	ListBanners(ctx context.Context, activeOnly bool) ([]domain.Banner, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	bannerRepo   repository.BannerRepository
	logger       *zap.Logger
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	bannerRepo repository.BannerRepository,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		bannerRepo:   bannerRepo,
		logger:       logger,
	}
}

func normalizeCategory(input *domain.CategoryInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))

	if input.Name == "" {
		return NewValidationError("name is required")
	}
	if !slugPattern.MatchString(input.Slug) {
		return NewValidationError("slug must contain lowercase letters, digits and single dashes")
	}

	return nil
}

func (s *catalogService) CreateCategory(ctx context.Context, input *domain.CategoryInput) (*domain.Category, error) {
	if err := normalizeCategory(input); err != nil {
		return nil, err
	}

	return s.categoryRepo.Create(ctx, input)
}

func (s *catalogService) UpdateCategory(ctx context.Context, id int64, input *domain.CategoryInput) (*domain.Category, error) {
	if err := normalizeCategory(input); err != nil {
		return nil, err
	}

	return s.categoryRepo.Update(ctx, id, input)
}

func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	return s.categoryRepo.DeleteByID(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogService) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return s.categoryRepo.GetBySlug(ctx, strings.ToLower(slug))
}

func validateBanner(input *domain.BannerInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return NewValidationError("title is required")
	}
	if len(input.Images) == 0 {
		return NewValidationError("at least one image is required")
	}
	if input.Type == "" {
		input.Type = "hero"
	}

	return nil
}

func (s *catalogService) CreateBanner(ctx context.Context, input *domain.BannerInput) (*domain.Banner, error) {
	if err := validateBanner(input); err != nil {
		return nil, err
	}

	return s.bannerRepo.Create(ctx, input)
}

func (s *catalogService) UpdateBanner(ctx context.Context, id int64, input *domain.BannerInput) (*domain.Banner, error) {
	if err := validateBanner(input); err != nil {
		return nil, err
	}

	return s.bannerRepo.Update(ctx, id, input)
}

func (s *catalogService) DeleteBanner(ctx context.Context, id int64) error {
	return s.bannerRepo.DeleteByID(ctx, id)
}

func (s *catalogService) ListBanners(ctx context.Context, activeOnly bool) ([]domain.Banner, error) {
	return s.bannerRepo.List(ctx, activeOnly)
}
