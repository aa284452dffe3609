package service

import (
	"context"
	"strings"

	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"go.uber.org/zap"
)

type ReviewService interface {
	Create(ctx context.Context, userID, productID int64, input *domain.ReviewInput) (*domain.Review, error)
	ListApproved(ctx context.Context, productID int64) ([]domain.Review, error)
	ListPending(ctx context.Context) ([]domain.Review, error)
	Approve(ctx context.Context, id int64) (*domain.Review, error)
	Delete(ctx context.Context, id int64) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Create stores a review awaiting moderation.
func (s *reviewService) Create(ctx context.Context, userID, productID int64, input *domain.ReviewInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, NewValidationError("rating must be between 1 and 5")
	}

	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, NewValidationError("comment is required")
	}

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.Create(ctx, &domain.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    input.Rating,
		Comment:   comment,
		Status:    domain.ReviewStatusPending,
	})
	if err != nil {
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Review submitted", zap.Int64("review_id", review.ID))

	return review, nil
}

func (s *reviewService) ListApproved(ctx context.Context, productID int64) ([]domain.Review, error) {
	return s.reviewRepo.ListByProduct(ctx, productID, domain.ReviewStatusApproved)
}

func (s *reviewService) ListPending(ctx context.Context) ([]domain.Review, error) {
	return s.reviewRepo.ListByStatus(ctx, domain.ReviewStatusPending)
}

func (s *reviewService) Approve(ctx context.Context, id int64) (*domain.Review, error) {
	return s.reviewRepo.SetStatus(ctx, id, domain.ReviewStatusApproved)
}

func (s *reviewService) Delete(ctx context.Context, id int64) error {
	return s.reviewRepo.DeleteByID(ctx, id)
}
