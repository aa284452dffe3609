package service_test

import (
	"errors"
	"sync"

	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/shopspring/decimal"
)

func (s *IntegrationTestSuite) TestCreateOrder_Success() {
	userID := s.seedUser("buyer@example.com")
	shirt := s.seedProduct("SHIRT-1", "249.99", 10)
	jeans := s.seedProduct("JEANS-1", "100.00", 5)

	_, err := s.CartService.AddToCart(s.Ctx, userID, shirt, 1, nil)
	s.Require().NoError(err)

	input := orderInput(userID, item(shirt, 2, "249.99"), item(jeans, 1, "100.00"))
	order, err := s.OrderService.CreateOrder(s.Ctx, input)
	s.Require().NoError(err)

	s.Require().Equal(domain.OrderStatusPending, order.Status)
	s.Require().Equal("707.98", order.Total.StringFixed(2))

	s.Require().Equal(int64(8), s.stockOf(shirt))
	s.Require().Equal(int64(4), s.stockOf(jeans))
	s.Require().Equal(2, s.CountRows(`SELECT COUNT(*) FROM order_items WHERE order_id = $1`, order.ID))
	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID))
	s.Require().Equal(1, s.CountRows(
		`SELECT COUNT(*) FROM outbox WHERE event_type = $1 AND topic = $2`,
		domain.EventOrderCreated,
		orderTopic,
	))
}

func (s *IntegrationTestSuite) TestCreateOrder_FreezesLinePrices() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "249.99", 10)

	order, err := s.OrderService.CreateOrder(s.Ctx, orderInput(userID, item(productID, 1, "249.99")))
	s.Require().NoError(err)

	newPrice := decimal.RequireFromString("399.00")
	_, err = s.ProductService.Update(s.Ctx, productID, &domain.UpdateProductInput{Price: &newPrice})
	s.Require().NoError(err)

	withItems, err := s.OrderService.GetOrderWithItems(s.Ctx, domain.Requester{UserID: userID, Role: domain.RoleUser}, order.ID)
	s.Require().NoError(err)
	s.Require().Len(withItems.Items, 1)
	s.Require().Equal("249.99", withItems.Items[0].Price.StringFixed(2))
	s.Require().Equal("Product SHIRT-1", withItems.Items[0].ProductName)
}

func (s *IntegrationTestSuite) TestCreateOrder_RollsBackWhenLaterItemFails() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "10.00", 10)

	_, err := s.CartService.AddToCart(s.Ctx, userID, productID, 3, nil)
	s.Require().NoError(err)

	input := orderInput(userID, item(productID, 2, "10.00"), item(999999, 1, "5.00"))
	_, err = s.OrderService.CreateOrder(s.Ctx, input)
	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrProductNotFound))

	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM orders`))
	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM order_items`))
	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM outbox`))
	s.Require().Equal(int64(10), s.stockOf(productID))
	s.Require().Equal(1, s.CountRows(`SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID))
}

func (s *IntegrationTestSuite) TestCreateOrder_InsufficientStock() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "10.00", 2)

	_, err := s.OrderService.CreateOrder(s.Ctx, orderInput(userID, item(productID, 3, "10.00")))
	s.Require().Error(err)
	s.Require().True(errors.Is(err, repository.ErrInsufficientStock))

	s.Require().Equal(int64(2), s.stockOf(productID))
	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM orders`))
}

func (s *IntegrationTestSuite) TestCreateOrder_ConcurrentOrdersNeverOversell() {
	productID := s.seedProduct("SHIRT-1", "10.00", 5)

	users := make([]int64, 10)
	for i := range users {
		users[i] = s.seedUser("buyer" + string(rune('a'+i)) + "@example.com")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, userID := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()

			_, err := s.OrderService.CreateOrder(s.Ctx, orderInput(userID, item(productID, 1, "10.00")))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(userID)
	}
	wg.Wait()

	s.Require().Equal(5, succeeded)
	s.Require().Equal(int64(0), s.stockOf(productID))
}

func (s *IntegrationTestSuite) TestCreateOrder_PriceChanged() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "12.00", 10)

	_, err := s.OrderService.CreateOrder(s.Ctx, orderInput(userID, item(productID, 1, "10.00")))
	s.Require().Error(err)
	s.Require().True(errors.Is(err, service.ErrPriceChanged))

	s.Require().Equal(int64(10), s.stockOf(productID))
}

func (s *IntegrationTestSuite) TestCreateOrder_EmptyItems() {
	userID := s.seedUser("buyer@example.com")

	_, err := s.OrderService.CreateOrder(s.Ctx, orderInput(userID))
	s.Require().ErrorIs(err, service.ErrEmptyOrder)

	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM orders`))
}

func (s *IntegrationTestSuite) TestCreateOrder_TotalMismatch() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "10.00", 10)

	input := orderInput(userID, item(productID, 1, "10.00"))
	input.Total = decimal.RequireFromString("10.00")

	_, err := s.OrderService.CreateOrder(s.Ctx, input)
	s.Require().Error(err)
	s.Require().True(service.IsValidationError(err))
	s.Require().Equal(int64(10), s.stockOf(productID))
}

func (s *IntegrationTestSuite) TestCheckoutCart() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "12.00", 10)

	_, err := s.CartService.AddToCart(s.Ctx, userID, productID, 3, domain.VariantSelection{{Name: "size", Value: "M"}})
	s.Require().NoError(err)

	order, err := s.OrderService.CheckoutCart(s.Ctx, userID, "12 Market Road, Surat", nil)
	s.Require().NoError(err)
	s.Require().Equal("42.48", order.Total.StringFixed(2))

	s.Require().Equal(int64(7), s.stockOf(productID))
	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID))

	_, err = s.OrderService.CheckoutCart(s.Ctx, userID, "12 Market Road, Surat", nil)
	s.Require().ErrorIs(err, service.ErrEmptyOrder)
}

// A checkout commits the lines it read; anything merged into the cart after
// that read stays in the cart.
func (s *IntegrationTestSuite) TestCheckoutLines_KeepLaterAdditions() {
	userID := s.seedUser("buyer@example.com")
	shirt := s.seedProduct("SHIRT-1", "12.00", 10)
	hat := s.seedProduct("HAT-1", "5.00", 10)

	line, err := s.CartService.AddToCart(s.Ctx, userID, shirt, 3, nil)
	s.Require().NoError(err)

	checkedOut := item(shirt, 3, "12.00")
	checkedOut.CartItemID = line.ID
	input := orderInput(userID, checkedOut)

	_, err = s.CartService.AddToCart(s.Ctx, userID, shirt, 2, nil)
	s.Require().NoError(err)
	later, err := s.CartService.AddToCart(s.Ctx, userID, hat, 1, nil)
	s.Require().NoError(err)

	_, err = s.OrderService.CreateOrder(s.Ctx, input)
	s.Require().NoError(err)

	cart, err := s.CartService.GetCart(s.Ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(cart.Items, 2)

	quantities := map[int64]int32{}
	for _, l := range cart.Items {
		quantities[l.ID] = l.Quantity
	}
	s.Require().Equal(int32(2), quantities[line.ID])
	s.Require().Equal(int32(1), quantities[later.ID])
}

func (s *IntegrationTestSuite) TestGetOrderWithItems_Ownership() {
	owner := s.seedUser("owner@example.com")
	other := s.seedUser("other@example.com")
	admin := s.seedAdmin("admin@example.com")
	productID := s.seedProduct("SHIRT-1", "10.00", 10)

	order, err := s.OrderService.CreateOrder(s.Ctx, orderInput(owner, item(productID, 1, "10.00")))
	s.Require().NoError(err)

	_, err = s.OrderService.GetOrderWithItems(s.Ctx, domain.Requester{UserID: other, Role: domain.RoleUser}, order.ID)
	s.Require().ErrorIs(err, service.ErrForbidden)

	got, err := s.OrderService.GetOrderWithItems(s.Ctx, domain.Requester{UserID: admin, Role: domain.RoleAdmin}, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(order.ID, got.ID)

	own, err := s.OrderService.ListOrders(s.Ctx, domain.Requester{UserID: other, Role: domain.RoleUser})
	s.Require().NoError(err)
	s.Require().Empty(own)

	all, err := s.OrderService.ListOrders(s.Ctx, domain.Requester{UserID: admin, Role: domain.RoleAdmin})
	s.Require().NoError(err)
	s.Require().Len(all, 1)
}

func (s *IntegrationTestSuite) TestUpdateOrderStatus_ForwardOnly() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "10.00", 10)

	order, err := s.OrderService.CreateOrder(s.Ctx, orderInput(userID, item(productID, 1, "10.00")))
	s.Require().NoError(err)

	_, err = s.OrderService.UpdateOrderStatus(s.Ctx, order.ID, "shipped")
	s.Require().ErrorIs(err, service.ErrInvalidTransition)

	updated, err := s.OrderService.UpdateOrderStatus(s.Ctx, order.ID, "processing")
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusProcessing, updated.Status)

	same, err := s.OrderService.UpdateOrderStatus(s.Ctx, order.ID, "processing")
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusProcessing, same.Status)

	_, err = s.OrderService.UpdateOrderStatus(s.Ctx, order.ID, "pending")
	s.Require().ErrorIs(err, service.ErrInvalidTransition)

	_, err = s.OrderService.UpdateOrderStatus(s.Ctx, order.ID, "lost")
	s.Require().ErrorIs(err, service.ErrInvalidStatus)

	_, err = s.OrderService.UpdateOrderStatus(s.Ctx, 999999, "processing")
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *IntegrationTestSuite) TestUpdateOrderStatus_CancelRestocks() {
	userID := s.seedUser("buyer@example.com")
	productID := s.seedProduct("SHIRT-1", "10.00", 10)

	order, err := s.OrderService.CreateOrder(s.Ctx, orderInput(userID, item(productID, 4, "10.00")))
	s.Require().NoError(err)
	s.Require().Equal(int64(6), s.stockOf(productID))

	cancelled, err := s.OrderService.UpdateOrderStatus(s.Ctx, order.ID, "cancelled")
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusCancelled, cancelled.Status)

	s.Require().Equal(int64(10), s.stockOf(productID))
	s.Require().Equal(1, s.CountRows(`SELECT COUNT(*) FROM outbox WHERE event_type = $1`, domain.EventOrderCancelled))

	_, err = s.OrderService.UpdateOrderStatus(s.Ctx, order.ID, "processing")
	s.Require().ErrorIs(err, service.ErrInvalidTransition)
}
