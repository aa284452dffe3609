package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/pkg/kafka"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	outboxDomain "github.com/jainam01/FOURKID-sub000/pkg/outbox/domain"
	"go.uber.org/zap"
)

type NotificationHandler interface {
	HandleOrderCreated(ctx context.Context, eventID int64, event domain.OrderCreatedEvent) error
	HandlePasswordResetRequested(ctx context.Context, eventID int64, event domain.PasswordResetRequestedEvent) error
	HandlePasswordChanged(ctx context.Context, eventID int64, event domain.PasswordChangedEvent) error
}

type Consumer struct {
	service NotificationHandler
	logger  *zap.Logger
}

func NewConsumer(service NotificationHandler, logger *zap.Logger) *Consumer {
	return &Consumer{
		service: service,
		logger:  logger,
	}
}

// Start consumes topics until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, brokers []string, groupID string, topics []string) error {
	consumerGroup := kafka.NewConsumerGroup(
		brokers,
		groupID,
		topics,
		c.processMessage,
		c.logger,
	)

	return consumerGroup.Run(ctx)
}

func decode[T any](raw json.RawMessage) (T, error) {
	var event T
	err := json.Unmarshal(raw, &event)
	return event, err
}

func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	mylogger.Info(
		ctx,
		c.logger,
		"Processing message",
		zap.String("topic", msg.Topic),
		zap.Int64("offset", msg.Offset),
	)

	var envelope outboxDomain.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		// a malformed message will never parse, so it is skipped
		mylogger.Error(ctx, c.logger, "Error unmarshalling envelope", zap.Error(err))
		return nil
	}

	switch envelope.Event {
	case domain.EventOrderCreated:
		event, err := decode[domain.OrderCreatedEvent](envelope.Payload)
		if err != nil {
			mylogger.Error(ctx, c.logger, "Error parsing event", zap.String("event", envelope.Event), zap.Error(err))
			return nil
		}

		return c.service.HandleOrderCreated(ctx, envelope.EventID, event)
	case domain.EventPasswordResetRequested:
		event, err := decode[domain.PasswordResetRequestedEvent](envelope.Payload)
		if err != nil {
			mylogger.Error(ctx, c.logger, "Error parsing event", zap.String("event", envelope.Event), zap.Error(err))
			return nil
		}

		return c.service.HandlePasswordResetRequested(ctx, envelope.EventID, event)
	case domain.EventPasswordChanged:
		event, err := decode[domain.PasswordChangedEvent](envelope.Payload)
		if err != nil {
			mylogger.Error(ctx, c.logger, "Error parsing event", zap.String("event", envelope.Event), zap.Error(err))
			return nil
		}

		return c.service.HandlePasswordChanged(ctx, envelope.EventID, event)
	default:
		mylogger.Debug(ctx, c.logger, "Ignored event type", zap.String("event", envelope.Event))
	}

	return nil
}
