package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	localUserID = "userId"
	localRole   = "role"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.Requester, error)
}

// NewAuthMiddleware accepts the access token from the access_token cookie or
// an "Authorization: Bearer" header.
func NewAuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(AccessTokenCookie)

		if token == "" {
			authHeader := c.Get(fiber.HeaderAuthorization)
			if authHeader == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized: missing token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized: invalid header format"})
			}
			token = parts[1]
		}

		requester, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized: invalid token"})
		}

		c.Locals(localUserID, requester.UserID)
		c.Locals(localRole, requester.Role)
		return c.Next()
	}
}

func NewAdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requester, ok := RequesterFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized: missing user"})
		}

		if !requester.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
		}

		return c.Next()
	}
}

// RequesterFrom returns the caller stored by the auth middleware.
func RequesterFrom(c *fiber.Ctx) (domain.Requester, bool) {
	userID, ok := c.Locals(localUserID).(int64)
	if !ok || userID == 0 {
		return domain.Requester{}, false
	}

	role, ok := c.Locals(localRole).(domain.Role)
	if !ok {
		return domain.Requester{}, false
	}

	return domain.Requester{UserID: userID, Role: role}, true
}
