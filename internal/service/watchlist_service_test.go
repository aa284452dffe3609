package service_test

import (
	"github.com/jainam01/FOURKID-sub000/internal/repository"
)

func (s *IntegrationTestSuite) TestWatchlist_AddIsIdempotent() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "12.00", 10)

	s.Require().NoError(s.WatchlistService.Add(s.Ctx, userID, productID))
	s.Require().NoError(s.WatchlistService.Add(s.Ctx, userID, productID))

	s.Require().Equal(1, s.CountRows(`SELECT COUNT(*) FROM watchlist_items WHERE user_id = $1`, userID))

	items, err := s.WatchlistService.List(s.Ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Require().Equal(productID, items[0].Product.ID)
	s.Require().Equal("12.00", items[0].Product.Price.StringFixed(2))
}

func (s *IntegrationTestSuite) TestWatchlist_Remove() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "12.00", 10)

	s.Require().NoError(s.WatchlistService.Remove(s.Ctx, userID, productID))

	s.Require().NoError(s.WatchlistService.Add(s.Ctx, userID, productID))
	s.Require().NoError(s.WatchlistService.Remove(s.Ctx, userID, productID))
	s.Require().NoError(s.WatchlistService.Remove(s.Ctx, userID, productID))

	items, err := s.WatchlistService.List(s.Ctx, userID)
	s.Require().NoError(err)
	s.Require().Empty(items)
}

func (s *IntegrationTestSuite) TestWatchlist_MissingProduct() {
	userID := s.seedUser("buyer@example.com")

	err := s.WatchlistService.Add(s.Ctx, userID, 9999)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM watchlist_items`))
}
