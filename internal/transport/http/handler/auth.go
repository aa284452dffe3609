package handler

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/jainam01/FOURKID-sub000/internal/token"
	"github.com/jainam01/FOURKID-sub000/internal/transport/http/middleware"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"go.uber.org/zap"
)

type CookieConfig struct {
	Secure    bool
	AccessTTL time.Duration
}

type AuthHandler struct {
	service  service.AuthService
	cookies  CookieConfig
	validate *validator.Validate
	logger   *zap.Logger
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type SetRoleInput struct {
	Role domain.Role `json:"role" validate:"required,oneof=user admin"`
}

type authResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func NewAuthHandler(authService service.AuthService, cookies CookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:  authService,
		cookies:  cookies,
		validate: NewValidator(),
		logger:   logger,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	input := new(domain.RegisterInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	user, err := h.service.Register(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, "register", err)
	}

	mylogger.Info(c.UserContext(), h.logger, "register succeeded", zap.Int64("user_id", user.ID))

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, pair, err := h.service.Login(c.UserContext(), email, input.Password)
	if err != nil {
		return respondError(c, h.logger, "login", err)
	}

	h.setAuthCookies(c, pair)

	mylogger.Info(c.UserContext(), h.logger, "login succeeded", zap.Int64("user_id", user.ID))

	return c.JSON(authResponse{User: user, AccessToken: pair.Access, RefreshToken: pair.Refresh})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := h.refreshTokenFrom(c)
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "refresh token is missing"})
	}

	user, pair, err := h.service.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		h.clearAuthCookies(c)
		return respondError(c, h.logger, "refresh", err)
	}

	h.setAuthCookies(c, pair)

	return c.JSON(authResponse{User: user, AccessToken: pair.Access, RefreshToken: pair.Refresh})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if refreshToken := h.refreshTokenFrom(c); refreshToken != "" {
		if err := h.service.Logout(c.UserContext(), refreshToken); err != nil {
			return respondError(c, h.logger, "logout", err)
		}
	}

	h.clearAuthCookies(c)

	return c.JSON(fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	input := new(ForgotPasswordInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := h.service.ForgotPassword(c.UserContext(), email); err != nil {
		return respondError(c, h.logger, "forgot password", err)
	}

	return c.JSON(fiber.Map{"message": "if the account exists, a reset link has been sent"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	input := new(ResetPasswordInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "cannot parse JSON")
	}
	// the emailed link carries the token in the query string
	if input.Token == "" {
		input.Token = c.Query("token")
	}
	if err := h.validate.Struct(input); err != nil {
		return validationFailed(c, err)
	}

	if err := h.service.ResetPassword(c.UserContext(), input.Token, input.Password); err != nil {
		return respondError(c, h.logger, "reset password", err)
	}

	return c.JSON(fiber.Map{"message": "password has been reset"})
}

func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.service.GetUser(c.UserContext(), requester.UserID)
	if err != nil {
		return respondError(c, h.logger, "get me", err)
	}

	return c.JSON(user)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	input := new(domain.UpdateProfileInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	user, err := h.service.UpdateProfile(c.UserContext(), requester.UserID, input)
	if err != nil {
		return respondError(c, h.logger, "update profile", err)
	}

	return c.JSON(user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	requester, ok := middleware.RequesterFrom(c)
	if !ok {
		return unauthorized(c)
	}

	input := new(ChangePasswordInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	if err := h.service.ChangePassword(c.UserContext(), requester.UserID, input.OldPassword, input.NewPassword); err != nil {
		return respondError(c, h.logger, "change password", err)
	}

	return c.JSON(fiber.Map{"message": "password updated"})
}

func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "list users", err)
	}

	return c.JSON(users)
}

func (h *AuthHandler) SetRole(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}

	input := new(SetRoleInput)
	if ok, err := bind(c, h.validate, input); !ok {
		return err
	}

	user, err := h.service.SetRole(c.UserContext(), id, input.Role)
	if err != nil {
		return respondError(c, h.logger, "set role", err)
	}

	mylogger.Info(c.UserContext(), h.logger, "user role changed",
		zap.Int64("user_id", id),
		zap.String("role", string(input.Role)),
	)

	return c.JSON(user)
}

func (h *AuthHandler) refreshTokenFrom(c *fiber.Ctx) string {
	if cookie := c.Cookies(middleware.RefreshTokenCookie); cookie != "" {
		return cookie
	}

	input := new(RefreshInput)
	if err := c.BodyParser(input); err != nil {
		return ""
	}

	return input.RefreshToken
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, pair *token.Pair) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.Access,
		Path:     "/",
		Expires:  time.Now().Add(h.cookies.AccessTTL),
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    pair.Refresh,
		Path:     "/api/auth",
		Expires:  pair.RefreshExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for name, path := range map[string]string{
		middleware.AccessTokenCookie:  "/",
		middleware.RefreshTokenCookie: "/api/auth",
	} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   h.cookies.Secure,
		})
	}
}
