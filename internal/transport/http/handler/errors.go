package handler

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"github.com/jainam01/FOURKID-sub000/pkg/utils"
	"go.uber.org/zap"
)

var notFoundErrors = []error{
	repository.ErrUserNotFound,
	repository.ErrSessionNotFound,
	repository.ErrProductNotFound,
	repository.ErrCategoryNotFound,
	repository.ErrBannerNotFound,
	repository.ErrCartItemNotFound,
	repository.ErrOrderNotFound,
	repository.ErrReviewNotFound,
}

var conflictErrors = []error{
	repository.ErrUserAlreadyExists,
	repository.ErrProductAlreadyExists,
	repository.ErrCategoryAlreadyExists,
	repository.ErrInsufficientStock,
	service.ErrPriceChanged,
	service.ErrInvalidTransition,
}

// StatusFromError maps a service or repository error to an HTTP status.
func StatusFromError(err error) int {
	switch {
	case service.IsValidationError(err),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, repository.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return fiber.StatusNotFound
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return fiber.StatusConflict
		}
	}

	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, logger *zap.Logger, op string, err error) error {
	code := StatusFromError(err)

	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("http_code", code),
		zap.Error(err),
	}

	if code >= fiber.StatusInternalServerError {
		mylogger.Error(c.UserContext(), logger, "request failed", fields...)

		return c.Status(code).JSON(fiber.Map{"message": "internal server error"})
	}

	mylogger.Warn(c.UserContext(), logger, "request rejected", fields...)

	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": message})
}

func validationFailed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "validation failed",
		"errors":  utils.FormatValidationError(err),
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized: missing user"})
}

// bind decodes the JSON body into dst and validates it. When ok is false the
// response has already been written and err is what the handler returns.
func bind(c *fiber.Ctx, validate *validator.Validate, dst interface{}) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, badRequest(c, "cannot parse JSON")
	}

	if err := validate.Struct(dst); err != nil {
		return false, validationFailed(c, err)
	}

	return true, nil
}

// NewValidator reports field names by their json tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
