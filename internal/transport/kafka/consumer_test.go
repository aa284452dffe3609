package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/jainam01/FOURKID-sub000/internal/domain"
	outboxDomain "github.com/jainam01/FOURKID-sub000/pkg/outbox/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockNotificationHandler struct {
	mock.Mock
}

func (m *mockNotificationHandler) HandleOrderCreated(ctx context.Context, eventID int64, event domain.OrderCreatedEvent) error {
	return m.Called(ctx, eventID, event).Error(0)
}

func (m *mockNotificationHandler) HandlePasswordResetRequested(ctx context.Context, eventID int64, event domain.PasswordResetRequestedEvent) error {
	return m.Called(ctx, eventID, event).Error(0)
}

func (m *mockNotificationHandler) HandlePasswordChanged(ctx context.Context, eventID int64, event domain.PasswordChangedEvent) error {
	return m.Called(ctx, eventID, event).Error(0)
}

func message(t *testing.T, eventID int64, eventType string, payload any) *sarama.ConsumerMessage {
	t.Helper()

	event, err := outboxDomain.NewEvent("topic", "aggregate", "1", eventType, payload)
	require.NoError(t, err)
	event.Id = eventID

	value, err := json.Marshal(event.Envelope())
	require.NoError(t, err)

	return &sarama.ConsumerMessage{Topic: "topic", Value: value}
}

func TestProcessMessage_OrderCreated(t *testing.T) {
	handler := new(mockNotificationHandler)
	consumer := NewConsumer(handler, zap.NewNop())

	handler.On("HandleOrderCreated", mock.Anything, int64(5), mock.MatchedBy(func(e domain.OrderCreatedEvent) bool {
		return e.OrderID == 11 && e.UserID == 3 && e.Total.Equal(decimal.RequireFromString("42.48"))
	})).Return(nil).Once()

	msg := message(t, 5, domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID: 11,
		UserID:  3,
		Total:   decimal.RequireFromString("42.48"),
	})

	require.NoError(t, consumer.processMessage(context.Background(), msg))
	handler.AssertExpectations(t)
}

func TestProcessMessage_PasswordEvents(t *testing.T) {
	handler := new(mockNotificationHandler)
	consumer := NewConsumer(handler, zap.NewNop())

	reset := domain.PasswordResetRequestedEvent{UserID: 3, Email: "buyer@example.com", Token: "tok"}
	changed := domain.PasswordChangedEvent{UserID: 3, Email: "buyer@example.com"}

	handler.On("HandlePasswordResetRequested", mock.Anything, int64(6), reset).Return(nil).Once()
	handler.On("HandlePasswordChanged", mock.Anything, int64(7), changed).Return(nil).Once()

	require.NoError(t, consumer.processMessage(context.Background(), message(t, 6, domain.EventPasswordResetRequested, reset)))
	require.NoError(t, consumer.processMessage(context.Background(), message(t, 7, domain.EventPasswordChanged, changed)))
	handler.AssertExpectations(t)
}

func TestProcessMessage_HandlerErrorIsReturned(t *testing.T) {
	handler := new(mockNotificationHandler)
	consumer := NewConsumer(handler, zap.NewNop())

	failure := errors.New("smtp down")
	handler.On("HandlePasswordChanged", mock.Anything, int64(8), mock.Anything).Return(failure).Once()

	err := consumer.processMessage(context.Background(), message(t, 8, domain.EventPasswordChanged, domain.PasswordChangedEvent{UserID: 3}))
	require.ErrorIs(t, err, failure)
}

func TestProcessMessage_SkipsMalformedAndUnknown(t *testing.T) {
	handler := new(mockNotificationHandler)
	consumer := NewConsumer(handler, zap.NewNop())

	require.NoError(t, consumer.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("{broken")}))
	require.NoError(t, consumer.processMessage(context.Background(), message(t, 9, "SomethingElse", map[string]int{"a": 1})))
	require.NoError(t, consumer.processMessage(context.Background(), &sarama.ConsumerMessage{
		Value: []byte(`{"event_id": 10, "event": "OrderCreated", "payload": "not an object"}`),
	}))

	handler.AssertNotCalled(t, "HandleOrderCreated", mock.Anything, mock.Anything, mock.Anything)
}
