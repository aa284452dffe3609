package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id int64, input *domain.UpdateProfileInput) (*domain.User, error)
	UpdatePassword(ctx context.Context, tx pgx.Tx, id int64, passwordHash string) error
	SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error)
	SetResetToken(ctx context.Context, tx pgx.Tx, email, token string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tx pgx.Tx, token string) (int64, error)
}

const userColumns = `id, name, business_name, gstin, email, password_hash, phone_number,
	address, role, reset_password_token, reset_password_expires_at, created_at, updated_at`

type userRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/user_repo"),
	}
}

func scanUser(row pgx.Row, u *domain.User) error {
	return row.Scan(
		&u.ID,
		&u.Name,
		&u.BusinessName,
		&u.GSTIN,
		&u.Email,
		&u.PasswordHash,
		&u.PhoneNumber,
		&u.Address,
		&u.Role,
		&u.ResetPasswordToken,
		&u.ResetPasswordExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", user.Email),
	)

	query := `
		INSERT INTO users (name, business_name, gstin, email, password_hash, phone_number, address, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	var created domain.User
	err := scanUser(r.pool.QueryRow(
		ctx,
		query,
		user.Name,
		user.BusinessName,
		user.GSTIN,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.Address,
		user.Role,
	), &created)
	if err != nil {
		span.RecordError(err)

		if isUniqueViolation(err) {
			return nil, ErrUserAlreadyExists
		}

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to create user",
			zap.String("email", user.Email),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &created, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email)), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to get user by email",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting user by email: %w", err)
	}

	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to find user by id",
			zap.Int64("user_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.List")
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(ctx, r.logger, "Failed to list users", zap.Error(err))

		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id int64, input *domain.UpdateProfileInput) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.UpdateProfile")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	var updates []string
	var args []interface{}
	argId := 1

	set := func(column string, value interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argId))
		args = append(args, value)
		argId++
	}

	if input.Name != nil {
		set("name", *input.Name)
	}
	if input.BusinessName != nil {
		set("business_name", *input.BusinessName)
	}
	if input.GSTIN != nil {
		set("gstin", *input.GSTIN)
	}
	if input.PhoneNumber != nil {
		set("phone_number", *input.PhoneNumber)
	}
	if input.Address != nil {
		set("address", *input.Address)
	}

	if len(updates) == 0 {
		return r.GetByID(ctx, id)
	}

	updates = append(updates, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(updates, ", "),
		argId,
		userColumns,
	)
	args = append(args, id)

	var u domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, args...), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update user profile",
			zap.Int64("user_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return &u, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, tx pgx.Tx, id int64, passwordHash string) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.UpdatePassword")
	defer span.End()

	query := `
		UPDATE users
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`

	commandTag, err := tx.Exec(ctx, query, passwordHash, id)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to update password",
			zap.Int64("user_id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating password: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepo) SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.SetRole")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.String("role", string(role)),
	)

	query := `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + userColumns

	var u domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, role, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("error setting role: %w", err)
	}

	return &u, nil
}

func (r *userRepo) SetResetToken(ctx context.Context, tx pgx.Tx, email, token string, expiresAt time.Time) error {
	ctx, span := r.tracer.Start(ctx, "UserRepository.SetResetToken")
	defer span.End()

	query := `
		UPDATE users
		SET reset_password_token = $1, reset_password_expires_at = $2
		WHERE email = $3
	`

	commandTag, err := tx.Exec(ctx, query, token, expiresAt, strings.ToLower(email))
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to set reset password token",
			zap.Error(err),
		)

		return fmt.Errorf("error setting reset token: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ConsumeResetToken clears an unexpired reset token and returns its owner.
func (r *userRepo) ConsumeResetToken(ctx context.Context, tx pgx.Tx, token string) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.ConsumeResetToken")
	defer span.End()

	query := `
		UPDATE users
		SET reset_password_token = NULL, reset_password_expires_at = NULL
		WHERE reset_password_token = $1 AND reset_password_expires_at > NOW()
		RETURNING id
	`

	var id int64
	if err := tx.QueryRow(ctx, query, token).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInvalidToken
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to consume reset token",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error consuming reset token: %w", err)
	}

	return id, nil
}
