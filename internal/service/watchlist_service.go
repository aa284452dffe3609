package service

import (
	"context"

	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"go.uber.org/zap"
)

type WatchlistService interface {
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
	List(ctx context.Context, userID int64) ([]domain.WatchlistItem, error)
}

type watchlistService struct {
	watchlistRepo repository.WatchlistRepository
	productRepo   repository.ProductRepository
	logger        *zap.Logger
}

func NewWatchlistService(
	watchlistRepo repository.WatchlistRepository,
	productRepo repository.ProductRepository,
	logger *zap.Logger,
) WatchlistService {
	return &watchlistService{
		watchlistRepo: watchlistRepo,
		productRepo:   productRepo,
		logger:        logger,
	}
}

func (s *watchlistService) Add(ctx context.Context, userID, productID int64) error {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return err
	}

	return s.watchlistRepo.Add(ctx, userID, productID)
}

func (s *watchlistService) Remove(ctx context.Context, userID, productID int64) error {
	return s.watchlistRepo.Remove(ctx, userID, productID)
}

func (s *watchlistService) List(ctx context.Context, userID int64) ([]domain.WatchlistItem, error) {
	return s.watchlistRepo.ListByUser(ctx, userID)
}
