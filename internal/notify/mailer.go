// Package notify delivers outbound email notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"tradepit/internal/common"
	"tradepit/internal/interfaces"
)

// Mailer sends plain-text mail over implicit-TLS SMTP.
type Mailer struct {
	config *common.EmailConfig
	logger *common.Logger
}

// NewMailer creates a Mailer. When email is not configured it returns a
// sender that logs and drops messages, so callers never need to care.
func NewMailer(logger *common.Logger, config *common.EmailConfig) interfaces.EmailSender {
	if !config.Enabled() {
		logger.Warn().Msg("Email not configured, notifications will be dropped")
		return &noopSender{logger: logger}
	}
	return &Mailer{config: config, logger: logger}
}

// Send delivers a plain-text message to a single recipient.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.config.Sender); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.config.Host,
		mail.WithPort(m.config.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.config.Sender),
		mail.WithPassword(m.config.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Info().Str("to", to).Str("subject", subject).Msg("Notification sent")
	return nil
}

// noopSender drops all mail. Used when SMTP is not configured.
type noopSender struct {
	logger *common.Logger
}

func (s *noopSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("Email disabled, notification dropped")
	return nil
}
