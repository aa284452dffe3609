package service_test

import (
	"math"
	"strconv"

	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestCreateProduct() {
	product, err := s.ProductService.Create(s.Ctx, &domain.ProductInput{
		Name:   "Cotton Kurta",
		SKU:    "KURTA-1",
		Price:  decimal.RequireFromString("499.50"),
		Stock:  25,
		Images: []string{"https://cdn.example.com/kurta.jpg"},
		Variants: domain.VariantSelection{
			{Name: "size", Value: "M"},
			{Name: "size", Value: "L"},
		},
	})
	s.Require().NoError(err)
	s.Require().Equal("499.50", product.Price.StringFixed(2))
	s.Require().Len(product.Variants, 2)

	_, err = s.ProductService.Create(s.Ctx, &domain.ProductInput{
		Name:   "Duplicate",
		SKU:    "KURTA-1",
		Price:  decimal.RequireFromString("10"),
		Images: []string{"https://cdn.example.com/dup.jpg"},
	})
	s.Require().ErrorIs(err, repository.ErrProductAlreadyExists)

	_, err = s.ProductService.Create(s.Ctx, &domain.ProductInput{
		Name:   "Negative",
		SKU:    "NEG-1",
		Price:  decimal.RequireFromString("-1"),
		Images: []string{"https://cdn.example.com/neg.jpg"},
	})
	s.Require().True(service.IsValidationError(err))
}

func (s *IntegrationTestSuite) TestCreateProduct_StockOutOfRange() {
	_, err := s.ProductService.Create(s.Ctx, &domain.ProductInput{
		Name:   "Bulk Socks",
		SKU:    "SOCKS-1",
		Price:  decimal.RequireFromString("5"),
		Stock:  math.MaxInt32 + 1,
		Images: []string{"https://cdn.example.com/socks.jpg"},
	})
	s.Require().True(service.IsValidationError(err))
	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM products`))

	productID := s.seedProduct("SOCKS-2", "5.00", 10)

	stock := int64(math.MaxInt32) + 1
	_, err = s.ProductService.Update(s.Ctx, productID, &domain.UpdateProductInput{Stock: &stock})
	s.Require().True(service.IsValidationError(err))
	s.Require().Equal(int64(10), s.stockOf(productID))
}

func (s *IntegrationTestSuite) TestFindByID_UsesCache() {
	productID := s.seedProduct("SHIRT-1", "10.00", 10)

	product, err := s.ProductService.FindByID(s.Ctx, productID)
	s.Require().NoError(err)
	s.Require().Equal(int64(10), product.Stock)

	exists, err := s.Redis.Exists(s.Ctx, "product:"+strconv.FormatInt(productID, 10)).Result()
	s.Require().NoError(err)
	s.Require().Equal(int64(1), exists)

	// a direct write is invisible until the entry is invalidated
	_, err = s.DbPool.Exec(s.Ctx, `UPDATE products SET stock = 3 WHERE id = $1`, productID)
	s.Require().NoError(err)

	cached, err := s.ProductService.FindByID(s.Ctx, productID)
	s.Require().NoError(err)
	s.Require().Equal(int64(10), cached.Stock)

	s.ProductService.Invalidate(s.Ctx, productID)

	fresh, err := s.ProductService.FindByID(s.Ctx, productID)
	s.Require().NoError(err)
	s.Require().Equal(int64(3), fresh.Stock)
}

func (s *IntegrationTestSuite) TestCreateOrder_InvalidatesProductCache() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "10.00", 10)

	_, err := s.ProductService.FindByID(s.Ctx, productID)
	s.Require().NoError(err)

	_, err = s.OrderService.CreateOrder(s.Ctx, orderInput(userID, item(productID, 4, "10.00")))
	s.Require().NoError(err)

	product, err := s.ProductService.FindByID(s.Ctx, productID)
	s.Require().NoError(err)
	s.Require().Equal(int64(6), product.Stock)
}

func (s *IntegrationTestSuite) TestListProducts() {
	s.seedProduct("SHIRT-1", "10.00", 10)
	s.seedProduct("SHIRT-2", "12.00", 10)
	s.seedProduct("JEANS-1", "30.00", 10)

	products, total, err := s.ProductService.List(s.Ctx, domain.ProductFilter{Search: "shirt", Limit: 1})
	s.Require().NoError(err)
	s.Require().Equal(int64(2), total)
	s.Require().Len(products, 1)
}

func (s *IntegrationTestSuite) TestReviews_ModerationFlow() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "10.00", 10)

	review, err := s.ReviewService.Create(s.Ctx, userID, productID, &domain.ReviewInput{Rating: 5, Comment: "Great fabric"})
	s.Require().NoError(err)
	s.Require().Equal(domain.ReviewStatusPending, review.Status)

	approved, err := s.ReviewService.ListApproved(s.Ctx, productID)
	s.Require().NoError(err)
	s.Require().Empty(approved)

	pending, err := s.ReviewService.ListPending(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)

	_, err = s.ReviewService.Approve(s.Ctx, review.ID)
	s.Require().NoError(err)

	approved, err = s.ReviewService.ListApproved(s.Ctx, productID)
	s.Require().NoError(err)
	s.Require().Len(approved, 1)
	s.Require().Equal("Test Buyer", approved[0].UserName)

	_, err = s.ReviewService.Create(s.Ctx, userID, productID, &domain.ReviewInput{Rating: 6, Comment: "Too good"})
	s.Require().True(service.IsValidationError(err))

	s.Require().NoError(s.ReviewService.Delete(s.Ctx, review.ID))
	s.Require().ErrorIs(s.ReviewService.Delete(s.Ctx, review.ID), repository.ErrReviewNotFound)
}
