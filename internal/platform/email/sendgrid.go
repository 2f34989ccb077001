// Package email delivers transactional mail through SendGrid.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/stockers-dev/stockers-api/config"
)

type SendGridSender struct {
	client *sendgrid.Client
	sender string
	logger *slog.Logger
}

func NewSendGridSender(cfg config.EmailConfig, logger *slog.Logger) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		sender: cfg.Sender,
		logger: logger,
	}
}

// Send delivers a plain-text message to a single recipient.
func (s *SendGridSender) Send(ctx context.Context, to, subject, body string) error {
	from := mail.NewEmail("", s.sender)
	dest := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, dest, body, body)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("email provider rejected message: status %d", resp.StatusCode)
	}

	s.logger.Debug("Email sent", slog.String("to", to), slog.Int("status", resp.StatusCode))
	return nil
}
