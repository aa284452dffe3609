package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products service.ProductService
	catalog  service.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
}

type productListResponse struct {
	Items []domain.Product `json:"items"`
	Total int64            `json:"total"`
}

func NewProductHandler(products service.ProductService, catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		catalog:  catalog,
		validate: NewValidator(),
		logger:   logger,
	}
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	input := new(domain.ProductInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	product, err := h.products.Create(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, "create product", err)
	}

	mylogger.Info(c.UserContext(), h.logger, "product created", zap.Int64("product_id", product.ID))

	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	input := new(domain.UpdateProductInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	product, err := h.products.Update(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, h.logger, "update product", err)
	}

	return c.JSON(product)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "delete product", err)
	}

	mylogger.Info(c.UserContext(), h.logger, "product deleted", zap.Int64("product_id", id))

	return c.JSON(fiber.Map{"message": "product deleted"})
}

func (h *ProductHandler) FindByID(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid product id")
	}

	product, err := h.products.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, "find product", err)
	}

	return c.JSON(product)
}

// List accepts ?category= as either a category id or a slug.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	filter := domain.ProductFilter{
		Search: c.Query("search"),
		Limit:  int64(c.QueryInt("limit", 0)),
		Offset: int64(c.QueryInt("offset", 0)),
	}

	if category := c.Query("category"); category != "" {
		if id, err := strconv.ParseInt(category, 10, 64); err == nil {
			filter.CategoryID = &id
		} else {
			found, err := h.catalog.GetCategoryBySlug(c.UserContext(), category)
			if err != nil {
				return respondError(c, h.logger, "list products", err)
			}
			filter.CategoryID = &found.ID
		}
	}

	products, total, err := h.products.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, "list products", err)
	}

	return c.JSON(productListResponse{Items: products, Total: total})
}
