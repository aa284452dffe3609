package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder         = errors.New("order must contain at least one item")
	ErrForbidden          = errors.New("forbidden")
	ErrPriceChanged       = errors.New("product price has changed")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidStatus      = errors.New("unknown order status")
)

// ValidationError marks a request the caller must fix. Err, when set, is the
// sentinel it was built from.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error) error {
	return &ValidationError{Message: err.Error(), Err: err}
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
