package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/jainam01/FOURKID-sub000/internal/transport/http/middleware"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service  service.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

type CheckoutInput struct {
	Address       string  `json:"address" validate:"required"`
	PaymentMethod *string `json:"paymentMethod"`
}

type UpdateOrderStatusInput struct {
	Status string `json:"status" validate:"required"`
}

func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  orderService,
		validate: NewValidator(),
		logger:   logger,
	}
}

// Create commits an explicit item list. An empty list is left to the order
// service so that it surfaces as its own error; total checks happen there too.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	input := new(domain.CreateOrderInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "cannot parse JSON")
	}
	if len(input.Items) > 0 {
		if err := h.validate.Struct(input); err != nil {
			return validationFailed(c, err)
		}
	}
	input.UserID = requester.UserID

	order, err := h.service.CreateOrder(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, "create order", err)
	}

	mylogger.Info(
		c.UserContext(),
		h.logger,
		"create order succeeded",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", requester.UserID),
	)

	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	input := new(CheckoutInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	order, err := h.service.CheckoutCart(c.UserContext(), requester.UserID, input.Address, input.PaymentMethod)
	if err != nil {
		return respondError(c, h.logger, "checkout", err)
	}

	mylogger.Info(
		c.UserContext(),
		h.logger,
		"checkout succeeded",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", requester.UserID),
	)

	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	orders, err := h.service.ListOrders(c.UserContext(), requester)
	if err != nil {
		return respondError(c, h.logger, "list orders", err)
	}

	return c.JSON(orders)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}

	order, err := h.service.GetOrderWithItems(c.UserContext(), requester, id)
	if err != nil {
		return respondError(c, h.logger, "get order", err)
	}

	return c.JSON(order)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}

	input := new(UpdateOrderStatusInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), id, input.Status)
	if err != nil {
		return respondError(c, h.logger, "update order status", err)
	}

	return c.JSON(order)
}
