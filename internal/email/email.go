package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs emails instead of sending them — used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("email (local dev)", "to", to, "subject", subject, "body", body)
	return nil
}

// ResendSender sends emails via the Resend API — used in staging/production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// OTP renders the verification-code email. The code expires in 10 minutes.
func OTP(code string) (subject, body string) {
	subject = "Your chirp verification code"
	body = fmt.Sprintf(
		`<p>Your verification code is:</p><h2>%s</h2><p>It expires in 10 minutes. If you did not request this, you can ignore this email.</p>`,
		code,
	)
	return subject, body
}

// Welcome renders the post-signup greeting.
func Welcome(fullName string) (subject, body string) {
	subject = "Welcome to chirp"
	body = fmt.Sprintf(
		`<p>Hey %s,</p><p>Your account is ready. Follow a few people and start posting!</p>`,
		fullName,
	)
	return subject, body
}
