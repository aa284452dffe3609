package email

import (
	"context"
	"fmt"

	"github.com/jainam01/FOURKID-sub000/internal/domain"
	"github.com/jainam01/FOURKID-sub000/pkg/mylogger"
	"github.com/jainam01/FOURKID-sub000/pkg/utils"
	"github.com/keighl/postmark"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Sender interface {
	SendOrderConfirmationEmail(ctx context.Context, to string, order *domain.OrderWithItems) error
	SendForgotPasswordEmail(ctx context.Context, to string, token string) error
	SendPasswordChangedEmail(ctx context.Context, to string) error
}

type Config struct {
	Token  string
	From   string
	AppURL string
}

type postmarkSender struct {
	client  *postmark.Client
	from    string
	appURL  string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewSender returns a Postmark backed sender, or a sender that only logs
// when no API token is configured.
func NewSender(cfg Config, logger *zap.Logger) Sender {
	if cfg.Token == "" {
		return &logSender{logger: logger}
	}

	return &postmarkSender{
		client:  postmark.NewClient(cfg.Token, ""),
		from:    cfg.From,
		appURL:  cfg.AppURL,
		breaker: utils.NewBreaker("postmark", logger),
		logger:  logger,
		tracer:  otel.Tracer("infrastructure/email"),
	}
}

func (s *postmarkSender) send(ctx context.Context, to, subject, html string) error {
	ctx, span := s.tracer.Start(ctx, "postmark.Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("to.email", to),
		attribute.String("subject", subject),
	)

	res, err := utils.ExecuteWithBreaker(s.breaker, func() (postmark.EmailResponse, error) {
		return s.client.SendEmail(postmark.Email{
			From:     s.from,
			To:       to,
			Subject:  subject,
			HtmlBody: html,
		})
	})
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			s.logger,
			"Error sending email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)

		return fmt.Errorf("failed to send email: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Email sent",
		zap.String("to", to),
		zap.String("message_id", res.MessageID),
	)

	return nil
}

func (s *postmarkSender) SendOrderConfirmationEmail(ctx context.Context, to string, order *domain.OrderWithItems) error {
	return s.send(ctx, to, fmt.Sprintf("Order #%d confirmed", order.ID), orderConfirmationBody(order))
}

func (s *postmarkSender) SendForgotPasswordEmail(ctx context.Context, to string, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)

	body := fmt.Sprintf(`
		<h1>Reset your password</h1>
		<p>If you did not request a password reset, ignore this message.</p>
		<a href="%s">Reset password</a>
	`, link)

	return s.send(ctx, to, "Password reset requested", body)
}

func (s *postmarkSender) SendPasswordChangedEmail(ctx context.Context, to string) error {
	return s.send(ctx, to, "Your password was changed", `<p>Your password was changed. If it was not you, contact support.</p>`)
}

func orderConfirmationBody(order *domain.OrderWithItems) string {
	rows := ""
	for _, item := range order.Items {
		rows += fmt.Sprintf(
			"<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			item.ProductName,
			item.Quantity,
			item.Price.StringFixed(2),
		)
	}

	paymentMethod := "not specified"
	if order.PaymentMethod != nil {
		paymentMethod = *order.PaymentMethod
	}

	return fmt.Sprintf(
		`<strong>Thank you for your order!</strong><br><br>
		Order #%d has been placed and will be shipped to: %s<br><br>
		<table><tr><th>Product</th><th>Qty</th><th>Price</th></tr>%s</table><br>
		Total: <strong>%s</strong><br>Payment method: <strong>%s</strong>`,
		order.ID,
		order.Address,
		rows,
		order.Total.StringFixed(2),
		paymentMethod,
	)
}

type logSender struct {
	logger *zap.Logger
}

func (s *logSender) SendOrderConfirmationEmail(ctx context.Context, to string, order *domain.OrderWithItems) error {
	mylogger.Info(ctx, s.logger, "Email disabled, order confirmation skipped", zap.String("to", to), zap.Int64("order_id", order.ID))
	return nil
}

func (s *logSender) SendForgotPasswordEmail(ctx context.Context, to string, _ string) error {
	mylogger.Info(ctx, s.logger, "Email disabled, forgot password email skipped", zap.String("to", to))
	return nil
}

func (s *logSender) SendPasswordChangedEmail(ctx context.Context, to string) error {
	mylogger.Info(ctx, s.logger, "Email disabled, password changed email skipped", zap.String("to", to))
	return nil
}
