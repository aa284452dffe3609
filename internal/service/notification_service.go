package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/internal/infrastructure/email"
	"github.com/jainam01/FOURKID-sub000/internal/repository"
	outboxUtils "github.com/jainam01/FOURKID-sub000/pkg/outbox/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// NotificationService turns published domain events into emails. Every
// handler runs at most once per outbox event id.
type NotificationService struct {
	emailSender email.Sender
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	logger      *zap.Logger
	pool        *pgxpool.Pool
	tracer      trace.Tracer
}

func NewNotificationService(
	emailSender email.Sender,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	logger *zap.Logger,
	pool *pgxpool.Pool,
) *NotificationService {
	return &NotificationService{
		emailSender: emailSender,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		logger:      logger,
		pool:        pool,
		tracer:      otel.Tracer("service/notification_service"),
	}
}

func (s *NotificationService) HandleOrderCreated(ctx context.Context, eventID int64, event domain.OrderCreatedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderCreated")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", eventID),
		attribute.Int64("order_id", event.OrderID),
	)

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, eventID, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, event.UserID)
		if err != nil {
			return fmt.Errorf("load user %d: %w", event.UserID, err)
		}

		order, err := s.orderRepo.GetByID(ctx, event.OrderID)
		if err != nil {
			return fmt.Errorf("load order %d: %w", event.OrderID, err)
		}

		items, err := s.orderRepo.ListItems(ctx, event.OrderID)
		if err != nil {
			return err
		}

		return s.emailSender.SendOrderConfirmationEmail(ctx, user.Email, &domain.OrderWithItems{Order: *order, Items: items})
	})
}

func (s *NotificationService) HandlePasswordResetRequested(ctx context.Context, eventID int64, event domain.PasswordResetRequestedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandlePasswordResetRequested")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", eventID))

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, eventID, func(ctx context.Context) error {
		return s.emailSender.SendForgotPasswordEmail(ctx, event.Email, event.Token)
	})
}

func (s *NotificationService) HandlePasswordChanged(ctx context.Context, eventID int64, event domain.PasswordChangedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandlePasswordChanged")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", eventID))

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, eventID, func(ctx context.Context) error {
		return s.emailSender.SendPasswordChangedEmail(ctx, event.Email)
	})
}
