package service_test

import (
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/internal/service"
)

func (s *IntegrationTestSuite) TestAddToCart_MergesSameLine() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "12.00", 10)

	first, err := s.CartService.AddToCart(s.Ctx, userID, productID, 2, nil)
	s.Require().NoError(err)

	second, err := s.CartService.AddToCart(s.Ctx, userID, productID, 2, nil)
	s.Require().NoError(err)

	s.Require().Equal(first.ID, second.ID)
	s.Require().Equal(int32(4), second.Quantity)
	s.Require().Equal(1, s.CountRows(`SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID))
}

func (s *IntegrationTestSuite) TestAddToCart_VariantOrderDoesNotMatter() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "12.00", 10)

	first, err := s.CartService.AddToCart(s.Ctx, userID, productID, 1, domain.VariantSelection{
		{Name: "size", Value: "M"},
		{Name: "color", Value: "red"},
	})
	s.Require().NoError(err)

	second, err := s.CartService.AddToCart(s.Ctx, userID, productID, 1, domain.VariantSelection{
		{Name: "color", Value: "red"},
		{Name: "size", Value: "M"},
	})
	s.Require().NoError(err)
	s.Require().Equal(first.ID, second.ID)
	s.Require().Equal(int32(2), second.Quantity)

	other, err := s.CartService.AddToCart(s.Ctx, userID, productID, 1, domain.VariantSelection{
		{Name: "size", Value: "L"},
	})
	s.Require().NoError(err)
	s.Require().NotEqual(first.ID, other.ID)
}

func (s *IntegrationTestSuite) TestAddToCart_MergedQuantityOutOfRange() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "12.00", 10)

	_, err := s.CartService.AddToCart(s.Ctx, userID, productID, 2_000_000_000, nil)
	s.Require().NoError(err)

	_, err = s.CartService.AddToCart(s.Ctx, userID, productID, 2_000_000_000, nil)
	s.Require().Error(err)
	s.Require().True(service.IsValidationError(err))
	s.Require().ErrorIs(err, repository.ErrQuantityOutOfRange)

	var quantity int32
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, `SELECT quantity FROM cart_items WHERE user_id = $1`, userID).Scan(&quantity))
	s.Require().Equal(int32(2_000_000_000), quantity)
}

func (s *IntegrationTestSuite) TestAddToCart_NilAndEmptyVariantsMatch() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "12.00", 10)

	first, err := s.CartService.AddToCart(s.Ctx, userID, productID, 1, nil)
	s.Require().NoError(err)

	second, err := s.CartService.AddToCart(s.Ctx, userID, productID, 1, domain.VariantSelection{})
	s.Require().NoError(err)
	s.Require().Equal(first.ID, second.ID)
}

func (s *IntegrationTestSuite) TestAddToCart_Validation() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "12.00", 10)

	_, err := s.CartService.AddToCart(s.Ctx, userID, productID, 0, nil)
	s.Require().ErrorIs(err, service.ErrInvalidQuantity)

	_, err = s.CartService.AddToCart(s.Ctx, userID, 999999, 1, nil)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestCart_Ownership() {
	owner := s.seedUser("owner@example.com")
	other := s.seedUser("other@example.com")
	productID := s.seedProduct("SHIRT-1", "12.00", 10)

	line, err := s.CartService.AddToCart(s.Ctx, owner, productID, 1, nil)
	s.Require().NoError(err)

	_, err = s.CartService.UpdateQuantity(s.Ctx, other, line.ID, 5)
	s.Require().ErrorIs(err, service.ErrForbidden)

	err = s.CartService.Remove(s.Ctx, other, line.ID)
	s.Require().ErrorIs(err, service.ErrForbidden)

	updated, err := s.CartService.UpdateQuantity(s.Ctx, owner, line.ID, 5)
	s.Require().NoError(err)
	s.Require().Equal(int32(5), updated.Quantity)

	_, err = s.CartService.UpdateQuantity(s.Ctx, owner, line.ID, 0)
	s.Require().ErrorIs(err, service.ErrInvalidQuantity)

	_, err = s.CartService.UpdateQuantity(s.Ctx, owner, 999999, 2)
	s.Require().ErrorIs(err, repository.ErrCartItemNotFound)
}

func (s *IntegrationTestSuite) TestCart_RemoveAndClearAreIdempotent() {
	userID := s.seedUser("buyer@example.com")
	shirt := s.seedProduct("SHIRT-1", "12.00", 10)
	jeans := s.seedProduct("JEANS-1", "30.00", 10)

	line, err := s.CartService.AddToCart(s.Ctx, userID, shirt, 1, nil)
	s.Require().NoError(err)
	_, err = s.CartService.AddToCart(s.Ctx, userID, jeans, 2, nil)
	s.Require().NoError(err)

	s.Require().NoError(s.CartService.Remove(s.Ctx, userID, line.ID))
	s.Require().NoError(s.CartService.Remove(s.Ctx, userID, line.ID))

	cart, err := s.CartService.GetCart(s.Ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(cart.Items, 1)
	s.Require().Equal("60.00", cart.Subtotal.StringFixed(2))
	s.Require().Equal(jeans, cart.Items[0].Product.ID)

	s.Require().NoError(s.CartService.Clear(s.Ctx, userID))
	s.Require().NoError(s.CartService.Clear(s.Ctx, userID))

	cart, err = s.CartService.GetCart(s.Ctx, userID)
	s.Require().NoError(err)
	s.Require().Empty(cart.Items)
}
