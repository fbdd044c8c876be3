package delivery

import (
	"context"
	"errors"

	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"gopkg.in/gomail.v2"
)

type smtpSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPTransport delivers through an authenticated SMTP relay.
type SMTPTransport struct {
	dialer smtpSender
}

// NewSMTPTransport builds a gomail dialer for the relay in cfg.
func NewSMTPTransport(cfg config.SMTPConfig) (*SMTPTransport, error) {
	if !cfg.Configured() {
		return nil, errors.New("smtp username and password required")
	}
	return &SMTPTransport{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}, nil
}

// Deliver ignores ctx cancellation once the dial starts; gomail has no context support.
func (t *SMTPTransport) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return &TransportError{Provider: ProviderSMTP, Err: err}
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", msg.From, msg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	if err := t.dialer.DialAndSend(m); err != nil {
		return &TransportError{Provider: ProviderSMTP, Err: err}
	}
	return nil
}
