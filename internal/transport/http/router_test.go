package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/jainam01/FOURKID-sub000/internal/token"
	"github.com/jainam01/FOURKID-sub000/internal/transport/http/handler"
	"github.com/jainam01/FOURKID-sub000/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

type testApp struct {
	app    *fiber.App
	auth   *mockAuthService
	cart   *mockCartService
	orders *mockOrderService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := zap.NewNop()
	ta := &testApp{
		auth:   new(mockAuthService),
		cart:   new(mockCartService),
		orders: new(mockOrderService),
	}

	ta.auth.On("Authenticate", mock.Anything, userToken).
		Return(&domain.Requester{UserID: 1, Role: domain.RoleUser}, nil).Maybe()
	ta.auth.On("Authenticate", mock.Anything, adminToken).
		Return(&domain.Requester{UserID: 99, Role: domain.RoleAdmin}, nil).Maybe()
	ta.auth.On("Authenticate", mock.Anything, mock.Anything).
		Return(nil, service.ErrInvalidToken).Maybe()

	ta.app = NewApp(config.HTTP{Timeout: time.Second}, config.Limiter{})
	RegisterRoutes(ta.app, &Handlers{
		Auth:      handler.NewAuthHandler(ta.auth, handler.CookieConfig{AccessTTL: time.Minute}, logger),
		Product:   handler.NewProductHandler(nil, nil, logger),
		Catalog:   handler.NewCatalogHandler(nil, logger),
		Cart:      handler.NewCartHandler(ta.cart, logger),
		Watchlist: handler.NewWatchlistHandler(nil, logger),
		Order:     handler.NewOrderHandler(ta.orders, logger),
		Review:    handler.NewReviewHandler(nil, logger),
	}, ta.auth, "/metrics", prometheus.NewRegistry())

	t.Cleanup(func() {
		ta.cart.AssertExpectations(t)
		ta.orders.AssertExpectations(t)
	})

	return ta
}

func (ta *testApp) do(t *testing.T, method, path, bearer, body string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}

	return resp.StatusCode, decoded
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)

	code, body := ta.do(t, fiber.MethodGet, "/health", "", "")
	require.Equal(t, fiber.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	ta := newTestApp(t)

	code, _ := ta.do(t, fiber.MethodGet, "/metrics", "", "")
	require.Equal(t, fiber.StatusOK, code)
}

func TestCart_RequiresAuth(t *testing.T) {
	ta := newTestApp(t)

	code, body := ta.do(t, fiber.MethodGet, "/api/cart", "", "")
	require.Equal(t, fiber.StatusUnauthorized, code)
	require.Contains(t, body["message"], "Unauthorized")

	code, _ = ta.do(t, fiber.MethodGet, "/api/cart", "forged", "")
	require.Equal(t, fiber.StatusUnauthorized, code)
}

func TestCart_AddTwiceMergesLine(t *testing.T) {
	ta := newTestApp(t)

	ta.cart.On("AddToCart", mock.Anything, int64(1), int64(42), int32(2), mock.Anything).
		Return(&domain.CartItem{ID: 7, UserID: 1, ProductID: 42, Quantity: 2}, nil).Once()
	ta.cart.On("AddToCart", mock.Anything, int64(1), int64(42), int32(2), mock.Anything).
		Return(&domain.CartItem{ID: 7, UserID: 1, ProductID: 42, Quantity: 4}, nil).Once()

	payload := `{"productId": 42, "quantity": 2}`

	code, first := ta.do(t, fiber.MethodPost, "/api/cart", userToken, payload)
	require.Equal(t, fiber.StatusOK, code)

	code, second := ta.do(t, fiber.MethodPost, "/api/cart", userToken, payload)
	require.Equal(t, fiber.StatusOK, code)

	require.Equal(t, first["id"], second["id"])
	require.Equal(t, float64(4), second["quantity"])
}

func TestCart_AddValidatesBody(t *testing.T) {
	ta := newTestApp(t)

	code, body := ta.do(t, fiber.MethodPost, "/api/cart", userToken, `{"quantity": 1}`)
	require.Equal(t, fiber.StatusBadRequest, code)

	fields, ok := body["errors"].(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, fields, "productId")

	code, _ = ta.do(t, fiber.MethodPost, "/api/cart", userToken, `{not json`)
	require.Equal(t, fiber.StatusBadRequest, code)
}

func TestCart_OtherUsersLineIsForbidden(t *testing.T) {
	ta := newTestApp(t)

	ta.cart.On("UpdateQuantity", mock.Anything, int64(1), int64(5), int32(3)).
		Return(nil, service.ErrForbidden).Once()
	ta.cart.On("Remove", mock.Anything, int64(1), int64(5)).
		Return(service.ErrForbidden).Once()

	code, body := ta.do(t, fiber.MethodPut, "/api/cart/5", userToken, `{"quantity": 3}`)
	require.Equal(t, fiber.StatusForbidden, code)
	require.Equal(t, "forbidden", body["message"])

	code, _ = ta.do(t, fiber.MethodDelete, "/api/cart/5", userToken, "")
	require.Equal(t, fiber.StatusForbidden, code)
}

func TestCart_AccessTokenCookie(t *testing.T) {
	ta := newTestApp(t)

	ta.cart.On("GetCart", mock.Anything, int64(1)).
		Return(domain.NewCart(nil), nil).Once()

	req := httptest.NewRequest(fiber.MethodGet, "/api/cart", nil)
	req.Header.Set(fiber.HeaderCookie, "access_token="+userToken)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	ta := newTestApp(t)

	ta.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in *domain.CreateOrderInput) bool {
		return in.UserID == 1 && len(in.Items) == 0
	})).Return(nil, service.ErrEmptyOrder).Once()

	code, body := ta.do(t, fiber.MethodPost, "/api/orders", userToken, `{"items": [], "address": "12 Market Road", "total": "0"}`)
	require.Equal(t, fiber.StatusBadRequest, code)
	require.Equal(t, service.ErrEmptyOrder.Error(), body["message"])
}

func TestCreateOrder_ValidatesItems(t *testing.T) {
	ta := newTestApp(t)

	payload := `{"items": [{"productId": 0, "quantity": 0, "price": "10.00"}], "address": "12 Market Road", "total": "0"}`
	code, body := ta.do(t, fiber.MethodPost, "/api/orders", userToken, payload)
	require.Equal(t, fiber.StatusBadRequest, code)

	fields, ok := body["errors"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "productId must be greater than 0", fields["productId"])
	require.Equal(t, "quantity must be greater than or equal to 1", fields["quantity"])

	ta.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"insufficient stock", fmt.Errorf("product 3: %w", repository.ErrInsufficientStock), fiber.StatusConflict},
		{"price changed", fmt.Errorf("%w: product 3", service.ErrPriceChanged), fiber.StatusConflict},
		{"missing product", fmt.Errorf("product 3: %w", repository.ErrProductNotFound), fiber.StatusNotFound},
		{"total mismatch", service.NewValidationError("total does not match"), fiber.StatusBadRequest},
		{"database down", errors.New("connection refused"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t)

			ta.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			payload := `{"items": [{"productId": 3, "quantity": 1, "price": "10.00"}], "address": "12 Market Road", "total": "11.80"}`
			code, body := ta.do(t, fiber.MethodPost, "/api/orders", userToken, payload)
			require.Equal(t, tc.code, code)
			require.NotEmpty(t, body["message"])
		})
	}
}

func TestCreateOrder_Success(t *testing.T) {
	ta := newTestApp(t)

	ta.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in *domain.CreateOrderInput) bool {
		return in.UserID == 1 &&
			len(in.Items) == 1 &&
			in.Items[0].Price.Equal(decimal.RequireFromString("10.00")) &&
			in.Total.Equal(decimal.RequireFromString("11.80"))
	})).Return(&domain.Order{ID: 11, UserID: 1, Status: domain.OrderStatusPending}, nil).Once()

	payload := `{"items": [{"productId": 3, "quantity": 1, "price": "10.00"}], "address": "12 Market Road", "total": "11.80"}`
	code, body := ta.do(t, fiber.MethodPost, "/api/orders", userToken, payload)
	require.Equal(t, fiber.StatusCreated, code)
	require.Equal(t, float64(11), body["id"])
	require.Equal(t, "pending", body["status"])
}

func TestUpdateOrderStatus_AdminOnly(t *testing.T) {
	ta := newTestApp(t)

	code, _ := ta.do(t, fiber.MethodPut, "/api/orders/11/status", userToken, `{"status": "processing"}`)
	require.Equal(t, fiber.StatusForbidden, code)

	ta.orders.On("UpdateOrderStatus", mock.Anything, int64(11), "shipped").
		Return(nil, service.ErrInvalidTransition).Once()

	code, _ = ta.do(t, fiber.MethodPut, "/api/orders/11/status", adminToken, `{"status": "shipped"}`)
	require.Equal(t, fiber.StatusConflict, code)
}

func TestAdminRoutes_RejectUsers(t *testing.T) {
	ta := newTestApp(t)

	code, _ := ta.do(t, fiber.MethodGet, "/api/admin/users", userToken, "")
	require.Equal(t, fiber.StatusForbidden, code)

	code, _ = ta.do(t, fiber.MethodGet, "/api/admin/users", "", "")
	require.Equal(t, fiber.StatusUnauthorized, code)
}

func TestLogin_SetsCookies(t *testing.T) {
	ta := newTestApp(t)

	ta.auth.On("Login", mock.Anything, "buyer@example.com", "secret123").Return(
		&domain.User{ID: 1, Email: "buyer@example.com", Role: domain.RoleUser},
		&token.Pair{Access: "access", Refresh: "refresh", RefreshExpiresAt: time.Now().Add(time.Hour)},
		nil,
	).Once()

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/login", strings.NewReader(`{"email": "Buyer@Example.com", "password": "secret123"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookies := map[string]string{}
	for _, c := range resp.Cookies() {
		require.True(t, c.HttpOnly)
		cookies[c.Name] = c.Value
	}
	require.Equal(t, "access", cookies["access_token"])
	require.Equal(t, "refresh", cookies["refresh_token"])

	ta.auth.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ta := newTestApp(t)

	ta.auth.On("Login", mock.Anything, "buyer@example.com", "nope").
		Return(nil, nil, service.ErrInvalidCredentials).Once()

	code, body := ta.do(t, fiber.MethodPost, "/api/auth/login", "", `{"email": "buyer@example.com", "password": "nope"}`)
	require.Equal(t, fiber.StatusUnauthorized, code)
	require.Equal(t, service.ErrInvalidCredentials.Error(), body["message"])
}

func TestRegister_ValidationErrors(t *testing.T) {
	ta := newTestApp(t)

	code, body := ta.do(t, fiber.MethodPost, "/api/auth/register", "", `{"email": "not-an-email"}`)
	require.Equal(t, fiber.StatusBadRequest, code)

	fields, ok := body["errors"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "email must be a valid email", fields["email"])
	require.Equal(t, "name is required", fields["name"])
	require.Equal(t, "password is required", fields["password"])
}
