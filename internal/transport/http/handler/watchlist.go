package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/jainam01/FOURKID-sub000/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type WatchlistHandler struct {
	service  service.WatchlistService
	validate *validator.Validate
	logger   *zap.Logger
}

type WatchlistInput struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

func NewWatchlistHandler(watchlistService service.WatchlistService, logger *zap.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		service:  watchlistService,
		validate: NewValidator(),
		logger:   logger,
	}
}

func (h *WatchlistHandler) List(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	items, err := h.service.List(c.UserContext(), requester.UserID)
	if err != nil {
		return respondError(c, h.logger, "list watchlist", err)
	}

	return c.JSON(items)
}

func (h *WatchlistHandler) Add(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	input := new(WatchlistInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	if err := h.service.Add(c.UserContext(), requester.UserID, input.ProductID); err != nil {
		return respondError(c, h.logger, "add to watchlist", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "added to watchlist"})
}

func (h *WatchlistHandler) Remove(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	productID, ok := paramID(c, "productId")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	if err := h.service.Remove(c.UserContext(), requester.UserID, productID); err != nil {
		return respondError(c, h.logger, "remove from watchlist", err)
	}

	return c.JSON(fiber.Map{"message": "removed from watchlist"})
}
