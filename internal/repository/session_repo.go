package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SessionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, session *domain.Session) error
	FindByToken(ctx context.Context, token string) (*domain.Session, error)
	DeleteByToken(ctx context.Context, tx pgx.Tx, token string) error
	DeleteByUserID(ctx context.Context, tx pgx.Tx, userID int64) error
}

type sessionRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewSessionRepository(pool *pgxpool.Pool, logger *zap.Logger) SessionRepository {
	return &sessionRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/session_repo"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, tx pgx.Tx, session *domain.Session) error {
	ctx, span := r.tracer.Start(ctx, "SessionRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", session.UserID),
	)

	query := `
		INSERT INTO user_sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := tx.QueryRow(ctx, query, session.UserID, session.Token, session.ExpiresAt).
		Scan(&session.ID, &session.CreatedAt); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to save session",
			zap.Int64("user_id", session.UserID),
			zap.Error(err),
		)

		return fmt.Errorf("error saving session: %w", err)
	}

	return nil
}

func (r *sessionRepo) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	ctx, span := r.tracer.Start(ctx, "SessionRepository.FindByToken")
	defer span.End()

	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM user_sessions
		WHERE token = $1
	`

	var s domain.Session
	if err := r.pool.QueryRow(ctx, query, token).
		Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}

		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to find session", zap.Error(err))

		return nil, fmt.Errorf("error finding session: %w", err)
	}

	return &s, nil
}

func (r *sessionRepo) DeleteByToken(ctx context.Context, tx pgx.Tx, token string) error {
	ctx, span := r.tracer.Start(ctx, "SessionRepository.DeleteByToken")
	defer span.End()

	commandTag, err := tx.Exec(ctx, `DELETE FROM user_sessions WHERE token = $1`, token)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to delete session", zap.Error(err))

		return fmt.Errorf("error deleting session: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepo) DeleteByUserID(ctx context.Context, tx pgx.Tx, userID int64) error {
	ctx, span := r.tracer.Start(ctx, "SessionRepository.DeleteByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	if _, err := tx.Exec(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID); err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to delete user sessions",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting sessions: %w", err)
	}

	return nil
}
