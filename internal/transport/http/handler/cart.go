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

type CartHandler struct {
	service  service.CartService
	validate *validator.Validate
	logger   *zap.Logger
}

type AddToCartInput struct {
	ProductID   int64                   `json:"productId" validate:"required,gt=0"`
	Quantity    int32                   `json:"quantity"`
	VariantInfo domain.VariantSelection `json:"variantInfo"`
}

type UpdateCartItemInput struct {
	Quantity int32 `json:"quantity"`
}

func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service:  cartService,
		validate: NewValidator(),
		logger:   logger,
	}
}

func (h *CartHandler) Get(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	cart, err := h.service.GetCart(c.UserContext(), requester.UserID)
	if err != nil {
		return respondError(c, h.logger, "get cart", err)
	}

	return c.JSON(cart)
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	input := new(AddToCartInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	item, err := h.service.AddToCart(c.UserContext(), requester.UserID, input.ProductID, input.Quantity, input.VariantInfo)
	if err != nil {
		return respondError(c, h.logger, "add to cart", err)
	}

	mylogger.Info(
		c.UserContext(),
		h.logger,
		"cart line saved",
		zap.Int64("user_id", requester.UserID),
		zap.Int64("cart_item_id", item.ID),
		zap.Int32("quantity", item.Quantity),
	)

	return c.JSON(item)
}

func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid cart item id")
	}

	input := new(UpdateCartItemInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	item, err := h.service.UpdateQuantity(c.UserContext(), requester.UserID, id, input.Quantity)
	if err != nil {
		return respondError(c, h.logger, "update cart item", err)
	}

	return c.JSON(item)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid cart item id")
	}

	if err := h.service.Remove(c.UserContext(), requester.UserID, id); err != nil {
		return respondError(c, h.logger, "remove cart item", err)
	}

	return c.JSON(fiber.Map{"message": "item removed from cart"})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.service.Clear(c.UserContext(), requester.UserID); err != nil {
		return respondError(c, h.logger, "clear cart", err)
	}

	return c.JSON(fiber.Map{"message": "cart cleared"})
}
