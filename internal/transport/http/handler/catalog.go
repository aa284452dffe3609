package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"go.uber.org/zap"
)

// CatalogHandler serves categories and banners.
type CatalogHandler struct {
	service  service.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service:  catalogService,
		validate: NewValidator(),
		logger:   logger,
	}
}

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "list categories", err)
	}

	return c.JSON(categories)
}

func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	category, err := h.service.GetCategoryBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, h.logger, "get category", err)
	}

	return c.JSON(category)
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	input := new(domain.CategoryInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	category, err := h.service.CreateCategory(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, "create category", err)
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid category id")
	}

	input := new(domain.CategoryInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	category, err := h.service.UpdateCategory(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, h.logger, "update category", err)
	}

	return c.JSON(category)
}

func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid category id")
	}

	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "delete category", err)
	}

	return c.JSON(fiber.Map{"message": "category deleted"})
}

func (h *CatalogHandler) ListActiveBanners(c *fiber.Ctx) error {
	return h.listBanners(c, true)
}

func (h *CatalogHandler) ListAllBanners(c *fiber.Ctx) error {
	return h.listBanners(c, false)
}

func (h *CatalogHandler) listBanners(c *fiber.Ctx, activeOnly bool) error {
	banners, err := h.service.ListBanners(c.UserContext(), activeOnly)
	if err != nil {
		return respondError(c, h.logger, "list banners", err)
	}

	return c.JSON(banners)
}

func (h *CatalogHandler) CreateBanner(c *fiber.Ctx) error {
	input := new(domain.BannerInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	banner, err := h.service.CreateBanner(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, "create banner", err)
	}

	return c.Status(fiber.StatusCreated).JSON(banner)
}

func (h *CatalogHandler) UpdateBanner(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid banner id")
	}

	input := new(domain.BannerInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	banner, err := h.service.UpdateBanner(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, h.logger, "update banner", err)
	}

	return c.JSON(banner)
}

func (h *CatalogHandler) DeleteBanner(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid banner id")
	}

	if err := h.service.DeleteBanner(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "delete banner", err)
	}

	return c.JSON(fiber.Map{"message": "banner deleted"})
}
