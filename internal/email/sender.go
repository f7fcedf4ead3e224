// Package email wraps the outbound notification providers behind a single
// Sender interface.
package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/neolimp/leadfilter/internal/config"
)

type Message struct {
	From    string
	To      []string
	Bcc     []string
	ReplyTo string
	Subject string
	Body    string
}

type Result struct {
	Success   bool
	MessageID string
	Error     error
}

type Sender interface {
	Send(ctx context.Context, msg Message) Result
	Name() string
}

func NewSender(cfg config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case "", "smtp":
		return NewSMTPSender(cfg.SMTP, cfg.From), nil
	case "resend":
		return NewResendSender(cfg.Resend.APIKey), nil
	case "sendgrid":
		return NewSendGridSender(cfg.SendGrid.APIKey), nil
	}
	return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
}

// ValidateEmail checks for injection characters and RFC 5322 compliance
func ValidateEmail(email string) error {
	if strings.ContainsAny(email, "\r\n,;") {
		return fmt.Errorf("email contains invalid characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

func validateMessage(msg Message) error {
	if err := ValidateEmail(msg.From); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}
	for _, to := range append(msg.To, msg.Bcc...) {
		if err := ValidateEmail(to); err != nil {
			return fmt.Errorf("invalid recipient: %w", err)
		}
	}
	if msg.ReplyTo != "" {
		if err := ValidateEmail(msg.ReplyTo); err != nil {
			return fmt.Errorf("invalid reply-to: %w", err)
		}
	}
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("subject contains invalid characters")
	}
	return nil
}
