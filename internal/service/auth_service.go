package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	"github.com/jainam01/FOURKID-sub000/internal/token"
	"github.com/jainam01/FOURKID-sub000/internal/validator"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	outboxRepository "github.com/jainam01/FOURKID-sub000/pkg/outbox/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type AuthService interface {
	Register(ctx context.Context, input *domain.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, *token.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.User, *token.Pair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*domain.Requester, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, input *domain.UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error)
}

type AuthConfig struct {
	UserTopic string
	ResetTTL  time.Duration
}

type authService struct {
	pool        *pgxpool.Pool
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	outboxRepo  outboxRepository.OutboxRepository
	tokens      *token.Manager
	passwords   validator.PasswordPolicy
	cfg         AuthConfig
	logger      *zap.Logger
	tracer      trace.Tracer
}

func NewAuthService(
	pool *pgxpool.Pool,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	outboxRepo outboxRepository.OutboxRepository,
	tokens *token.Manager,
	passwords validator.PasswordPolicy,
	cfg AuthConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{
		pool:        pool,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		outboxRepo:  outboxRepo,
		tokens:      tokens,
		passwords:   passwords,
		cfg:         cfg,
		logger:      logger,
		tracer:      otel.Tracer("service/auth_service"),
	}
}

func (s *authService) Register(ctx context.Context, input *domain.RegisterInput) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if err := s.passwords.ValidatePassword(input.Password); err != nil {
		return nil, invalid(err)
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Error hashing password", zap.Error(err))

		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(input.Name),
		BusinessName: strings.TrimSpace(input.BusinessName),
		GSTIN:        input.GSTIN,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hashedPass),
		PhoneNumber:  input.PhoneNumber,
		Address:      input.Address,
		Role:         domain.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	mylogger.Info(ctx, s.logger, "User registered", zap.Int64("user_id", user.ID))

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, *token.Pair, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		mylogger.Warn(ctx, s.logger, "Invalid password", zap.Int64("user_id", user.ID))
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.startSession(ctx, user, "")
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// startSession issues a token pair and stores its refresh token, replacing
// previousToken when it is set.
func (s *authService) startSession(ctx context.Context, user *domain.User, previousToken string) (*token.Pair, error) {
	pair, err := s.tokens.GenerateTokens(user.ID, user.Role)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Error generating tokens",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	if previousToken != "" {
		if err := s.sessionRepo.DeleteByToken(ctx, tx, previousToken); err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return nil, ErrInvalidToken
			}
			return nil, err
		}
	}

	session := &domain.Session{
		UserID:    user.ID,
		Token:     pair.Refresh,
		ExpiresAt: pair.RefreshExpiresAt,
	}
	if err := s.sessionRepo.Create(ctx, tx, session); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction failed: %w", err)
	}

	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *token.Pair, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	if _, err := s.tokens.ValidateRefresh(refreshToken); err != nil {
		mylogger.Warn(ctx, s.logger, "Error validating refresh token", zap.Error(err))
		return nil, nil, ErrInvalidToken
	}

	session, err := s.sessionRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}

	if session.ExpiresAt.Before(time.Now()) {
		mylogger.Warn(ctx, s.logger, "Session expired", zap.Int64("session_id", session.ID))
		return nil, nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.startSession(ctx, user, refreshToken)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if refreshToken == "" {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	if err := s.sessionRepo.DeleteByToken(ctx, tx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}

		mylogger.Error(ctx, s.logger, "Error deleting session", zap.Error(err))

		return err
	}

	return tx.Commit(ctx)
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.Requester, error) {
	claims, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		mylogger.Debug(ctx, s.logger, "Error validating access token", zap.Error(err))
		return nil, ErrInvalidToken
	}

	return &domain.Requester{UserID: claims.UserID, Role: claims.Role}, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *authService) UpdateProfile(ctx context.Context, id int64, input *domain.UpdateProfileInput) (*domain.User, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, NewValidationError("name must not be empty")
	}

	return s.userRepo.UpdateProfile(ctx, id, input)
}

func (s *authService) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := s.passwords.ValidatePassword(newPassword); err != nil {
		return invalid(err)
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	if err := s.userRepo.UpdatePassword(ctx, tx, id, string(hashedPass)); err != nil {
		return err
	}

	if err := s.emitPasswordChanged(ctx, tx, user); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.ForgotPassword")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// unknown addresses get the same response as known ones
			mylogger.Info(ctx, s.logger, "Forgot password for unknown email")
			return nil
		}
		return err
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("error reading bytes: %w", err)
	}
	resetToken := base64.RawURLEncoding.EncodeToString(b)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	if err := s.userRepo.SetResetToken(ctx, tx, user.Email, resetToken, time.Now().Add(s.cfg.ResetTTL)); err != nil {
		return err
	}

	err = emitEvent(
		ctx,
		tx,
		s.outboxRepo,
		s.cfg.UserTopic,
		domain.AggregateUser,
		strconv.FormatInt(user.ID, 10),
		domain.EventPasswordResetRequested,
		&domain.PasswordResetRequestedEvent{UserID: user.ID, Email: user.Email, Token: resetToken},
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction failed: %w", err)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.ResetPassword")
	defer span.End()

	if err := s.passwords.ValidatePassword(newPassword); err != nil {
		return invalid(err)
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Error hashing password", zap.Error(err))

		return fmt.Errorf("error hashing password: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer rollback(ctx, tx, s.logger)

	userID, err := s.userRepo.ConsumeResetToken(ctx, tx, resetToken)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidToken) {
			return ErrInvalidToken
		}
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, tx, userID, string(hashedPass)); err != nil {
		return err
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, tx, userID); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.emitPasswordChanged(ctx, tx, user); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction failed: %w", err)
	}

	return nil
}

func (s *authService) emitPasswordChanged(ctx context.Context, tx pgx.Tx, user *domain.User) error {
	return emitEvent(
		ctx,
		tx,
		s.outboxRepo,
		s.cfg.UserTopic,
		domain.AggregateUser,
		strconv.FormatInt(user.ID, 10),
		domain.EventPasswordChanged,
		&domain.PasswordChangedEvent{UserID: user.ID, Email: user.Email},
	)
}

func (s *authService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *authService) SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, NewValidationError("role must be one of [user admin]")
	}

	return s.userRepo.SetRole(ctx, id, role)
}
