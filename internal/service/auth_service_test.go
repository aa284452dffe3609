package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/internal/service"
	"github.com/jainam01/FOURKID-sub000/internal/token"
	"github.com/jainam01/FOURKID-sub000/internal/validator"
	outboxDomain "github.com/jainam01/FOURKID-sub000/pkg/outbox/domain"
	outboxRepository "github.com/jainam01/FOURKID-sub000/pkg/outbox/repository"
	"go.uber.org/zap"
)

var errOutboxDown = errors.New("outbox unavailable")

type failingOutbox struct {
	outboxRepository.OutboxRepository
}

func (failingOutbox) SaveOutboxEvent(context.Context, pgx.Tx, *outboxDomain.OutboxEvent) error {
	return errOutboxDown
}

func (s *IntegrationTestSuite) register(email, password string) *domain.User {
	user, err := s.AuthService.Register(s.Ctx, &domain.RegisterInput{
		Name:         "Test Buyer",
		BusinessName: "Buyer Traders",
		Email:        email,
		Password:     password,
	})
	s.Require().NoError(err)

	return user
}

func (s *IntegrationTestSuite) TestRegister() {
	user := s.register("Buyer@Example.com", "secret123")

	s.Require().Equal("buyer@example.com", user.Email)
	s.Require().Equal(domain.RoleUser, user.Role)
	s.Require().NotEqual("secret123", user.PasswordHash)

	_, err := s.AuthService.Register(s.Ctx, &domain.RegisterInput{
		Name:     "Someone Else",
		Email:    "buyer@example.com",
		Password: "secret123",
	})
	s.Require().ErrorIs(err, repository.ErrUserAlreadyExists)

	_, err = s.AuthService.Register(s.Ctx, &domain.RegisterInput{
		Name:     "Weak",
		Email:    "weak@example.com",
		Password: "short",
	})
	s.Require().ErrorIs(err, validator.ErrPasswordTooShort)
	s.Require().True(service.IsValidationError(err))
}

func (s *IntegrationTestSuite) TestLogin() {
	registered := s.register("buyer@example.com", "secret123")

	user, pair, err := s.AuthService.Login(s.Ctx, "buyer@example.com", "secret123")
	s.Require().NoError(err)
	s.Require().Equal(registered.ID, user.ID)
	s.Require().NotEmpty(pair.Access)
	s.Require().NotEmpty(pair.Refresh)

	requester, err := s.AuthService.Authenticate(s.Ctx, pair.Access)
	s.Require().NoError(err)
	s.Require().Equal(registered.ID, requester.UserID)
	s.Require().Equal(domain.RoleUser, requester.Role)

	_, _, err = s.AuthService.Login(s.Ctx, "buyer@example.com", "wrong-pass1")
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)

	_, _, err = s.AuthService.Login(s.Ctx, "nobody@example.com", "secret123")
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)
}

func (s *IntegrationTestSuite) TestRefresh_RotatesSession() {
	s.register("buyer@example.com", "secret123")

	_, pair, err := s.AuthService.Login(s.Ctx, "buyer@example.com", "secret123")
	s.Require().NoError(err)

	_, rotated, err := s.AuthService.Refresh(s.Ctx, pair.Refresh)
	s.Require().NoError(err)
	s.Require().NotEqual(pair.Refresh, rotated.Refresh)

	_, _, err = s.AuthService.Refresh(s.Ctx, pair.Refresh)
	s.Require().ErrorIs(err, service.ErrInvalidToken)

	s.Require().NoError(s.AuthService.Logout(s.Ctx, rotated.Refresh))
	s.Require().NoError(s.AuthService.Logout(s.Ctx, rotated.Refresh))

	_, _, err = s.AuthService.Refresh(s.Ctx, rotated.Refresh)
	s.Require().ErrorIs(err, service.ErrInvalidToken)
}

func (s *IntegrationTestSuite) TestForgotAndResetPassword() {
	user := s.register("buyer@example.com", "secret123")

	s.Require().NoError(s.AuthService.ForgotPassword(s.Ctx, "nobody@example.com"))
	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM outbox`))

	s.Require().NoError(s.AuthService.ForgotPassword(s.Ctx, "buyer@example.com"))
	s.Require().Equal(1, s.CountRows(
		`SELECT COUNT(*) FROM outbox WHERE event_type = $1 AND topic = $2`,
		domain.EventPasswordResetRequested,
		userTopic,
	))

	var resetToken string
	err := s.DbPool.QueryRow(s.Ctx, `SELECT reset_password_token FROM users WHERE id = $1`, user.ID).Scan(&resetToken)
	s.Require().NoError(err)

	_, _, err = s.AuthService.Login(s.Ctx, "buyer@example.com", "secret123")
	s.Require().NoError(err)

	s.Require().NoError(s.AuthService.ResetPassword(s.Ctx, resetToken, "newsecret456"))
	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM user_sessions WHERE user_id = $1`, user.ID))

	err = s.AuthService.ResetPassword(s.Ctx, resetToken, "another789")
	s.Require().ErrorIs(err, service.ErrInvalidToken)

	_, _, err = s.AuthService.Login(s.Ctx, "buyer@example.com", "newsecret456")
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) TestForgotPassword_NoTokenWithoutEvent() {
	user := s.register("buyer@example.com", "secret123")
	logger := zap.NewNop()

	tokens, err := token.NewManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	s.Require().NoError(err)

	authService := service.NewAuthService(
		s.DbPool,
		repository.NewUserRepository(s.DbPool, logger),
		repository.NewSessionRepository(s.DbPool, logger),
		failingOutbox{},
		tokens,
		validator.NewPasswordPolicy(),
		service.AuthConfig{UserTopic: userTopic, ResetTTL: time.Hour},
		logger,
	)

	err = authService.ForgotPassword(s.Ctx, "buyer@example.com")
	s.Require().ErrorIs(err, errOutboxDown)

	s.Require().Equal(0, s.CountRows(
		`SELECT COUNT(*) FROM users WHERE id = $1 AND reset_password_token IS NOT NULL`,
		user.ID,
	))
	s.Require().Equal(0, s.CountRows(`SELECT COUNT(*) FROM outbox`))
}

func (s *IntegrationTestSuite) TestChangePassword() {
	user := s.register("buyer@example.com", "secret123")

	err := s.AuthService.ChangePassword(s.Ctx, user.ID, "wrong-pass1", "newsecret456")
	s.Require().ErrorIs(err, service.ErrInvalidCredentials)

	s.Require().NoError(s.AuthService.ChangePassword(s.Ctx, user.ID, "secret123", "newsecret456"))
	s.Require().Equal(1, s.CountRows(`SELECT COUNT(*) FROM outbox WHERE event_type = $1`, domain.EventPasswordChanged))

	_, _, err = s.AuthService.Login(s.Ctx, "buyer@example.com", "newsecret456")
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) TestSetRole() {
	user := s.register("buyer@example.com", "secret123")

	updated, err := s.AuthService.SetRole(s.Ctx, user.ID, domain.RoleAdmin)
	s.Require().NoError(err)
	s.Require().Equal(domain.RoleAdmin, updated.Role)

	_, err = s.AuthService.SetRole(s.Ctx, user.ID, domain.Role("owner"))
	s.Require().Error(err)
	s.Require().True(service.IsValidationError(err))
}
