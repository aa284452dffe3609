package validator

import (
	"errors"
	"unicode"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes long")
	ErrPasswordTooWeak  = errors.New("password must contain at least one digit and one letter")
)

type PasswordPolicy interface {
	ValidatePassword(password string) error
}

type passwordPolicy struct {
	minLength int
}

func NewPasswordPolicy() PasswordPolicy {
	return &passwordPolicy{minLength: 8}
}

// ValidatePassword enforces a minimum length, the bcrypt input limit and
// a mix of letters and digits.
func (p *passwordPolicy) ValidatePassword(password string) error {
	if len([]rune(password)) < p.minLength {
		return ErrPasswordTooShort
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return ErrPasswordTooWeak
	}

	return nil
}
