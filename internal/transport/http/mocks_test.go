package http

import (
	"context"

	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/token"
	"github.com/stretchr/testify/mock"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, input *domain.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*domain.User, *token.Pair, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*domain.User)
	pair, _ := args.Get(1).(*token.Pair)
	return user, pair, args.Error(2)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *token.Pair, error) {
	args := m.Called(ctx, refreshToken)
	user, _ := args.Get(0).(*domain.User)
	pair, _ := args.Get(1).(*token.Pair)
	return user, pair, args.Error(2)
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *mockAuthService) Authenticate(ctx context.Context, accessToken string) (*domain.Requester, error) {
	args := m.Called(ctx, accessToken)
	requester, _ := args.Get(0).(*domain.Requester)
	return requester, args.Error(1)
}

func (m *mockAuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, id int64, input *domain.UpdateProfileInput) (*domain.User, error) {
	args := m.Called(ctx, id, input)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	return m.Called(ctx, id, oldPassword, newPassword).Error(0)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	return m.Called(ctx, resetToken, newPassword).Error(0)
}

func (m *mockAuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *mockAuthService) SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	args := m.Called(ctx, id, role)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

type mockCartService struct {
	mock.Mock
}

func (m *mockCartService) AddToCart(ctx context.Context, userID, productID int64, quantity int32, variants domain.VariantSelection) (*domain.CartItem, error) {
	args := m.Called(ctx, userID, productID, quantity, variants)
	item, _ := args.Get(0).(*domain.CartItem)
	return item, args.Error(1)
}

func (m *mockCartService) UpdateQuantity(ctx context.Context, userID, cartItemID int64, quantity int32) (*domain.CartItem, error) {
	args := m.Called(ctx, userID, cartItemID, quantity)
	item, _ := args.Get(0).(*domain.CartItem)
	return item, args.Error(1)
}

func (m *mockCartService) Remove(ctx context.Context, userID, cartItemID int64) error {
	return m.Called(ctx, userID, cartItemID).Error(0)
}

func (m *mockCartService) Clear(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockCartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	cart, _ := args.Get(0).(*domain.Cart)
	return cart, args.Error(1)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) CreateOrder(ctx context.Context, input *domain.CreateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, input)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderService) CheckoutCart(ctx context.Context, userID int64, address string, paymentMethod *string) (*domain.Order, error) {
	args := m.Called(ctx, userID, address, paymentMethod)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderService) GetOrderWithItems(ctx context.Context, requester domain.Requester, orderID int64) (*domain.OrderWithItems, error) {
	args := m.Called(ctx, requester, orderID)
	order, _ := args.Get(0).(*domain.OrderWithItems)
	return order, args.Error(1)
}

func (m *mockOrderService) ListOrders(ctx context.Context, requester domain.Requester) ([]domain.Order, error) {
	args := m.Called(ctx, requester)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *mockOrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, status)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}
