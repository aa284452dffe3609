package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	outboxDomain "github.com/jainam01/FOURKID-sub000/pkg/outbox/domain"
	outboxRepository "github.com/jainam01/FOURKID-sub000/pkg/outbox/repository"
	"go.uber.org/zap"
)

func rollback(ctx context.Context, tx pgx.Tx, logger *zap.Logger) {
	cleanupCtx := context.WithoutCancel(ctx)

	if err := tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		mylogger.Error(cleanupCtx, logger, "Failed to rollback transaction", zap.Error(err))
	}
}

func emitEvent(
	ctx context.Context,
	tx pgx.Tx,
	repo outboxRepository.OutboxRepository,
	topic, aggregateType, aggregateID, eventType string,
	payload any,
) error {
	event, err := outboxDomain.NewEvent(topic, aggregateType, aggregateID, eventType, payload)
	if err != nil {
		return err
	}

	if err := repo.SaveOutboxEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to emit %s: %w", eventType, err)
	}

	return nil
}
