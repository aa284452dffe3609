package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidToken      = errors.New("invalid token")

	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this sku already exists")
	ErrInsufficientStock    = errors.New("insufficient stock")

	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category already exists")
	ErrBannerNotFound        = errors.New("banner not found")

	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrQuantityOutOfRange = errors.New("cart line quantity out of range")
	ErrOrderNotFound      = errors.New("order not found")
	ErrReviewNotFound     = errors.New("review not found")
)

const (
	uniqueViolation        = "23505"
	numericValueOutOfRange = "22003"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == numericValueOutOfRange
}
