package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/jainam01/FOURKID-sub000/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	service  service.ReviewService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:  reviewService,
		validate: NewValidator(),
		logger:   logger,
	}
}

func (h *ReviewHandler) ListForProduct(c *fiber.Ctx) error {
	productID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	reviews, err := h.service.ListApproved(c.UserContext(), productID)
	if err != nil {
		return respondError(c, h.logger, "list reviews", err)
	}

	return c.JSON(reviews)
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	productID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	input := new(domain.ReviewInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	review, err := h.service.Create(c.UserContext(), requester.UserID, productID, input)
	if err != nil {
		return respondError(c, h.logger, "create review", err)
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) ListPending(c *fiber.Ctx) error {
	reviews, err := h.service.ListPending(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "list pending reviews", err)
	}

	return c.JSON(reviews)
}

func (h *ReviewHandler) Approve(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid review id")
	}

	review, err := h.service.Approve(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, "approve review", err)
	}

	return c.JSON(review)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid review id")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "delete review", err)
	}

	return c.JSON(fiber.Map{"message": "review deleted"})
}
