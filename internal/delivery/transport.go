package delivery

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gearmarket-backend/pkg/config"
)

// Provider names a delivery backend.
type Provider string

const (
	ProviderSendGrid Provider = "sendgrid"
	ProviderSES      Provider = "ses"
	ProviderSMTP     Provider = "smtp"
	ProviderFallback Provider = "fallback"
)

// MailTransport hands a rendered message to a delivery backend.
type MailTransport interface {
	Deliver(ctx context.Context, msg Message) error
}

// TransportError reports a backend rejecting or failing a message.
type TransportError struct {
	Provider Provider
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TransportFactory builds transports for the hosting execution context.
// ServerTransports talks to the real SDKs; ClientTransports only simulates.
type TransportFactory interface {
	SendGrid(cfg config.SendGridConfig) (MailTransport, error)
	SES(cfg config.SESConfig) (MailTransport, error)
	SMTP(cfg config.SMTPConfig) (MailTransport, error)
	Fallback() (MailTransport, error)
}

// SelectProvider returns the first provider whose credentials are present,
// in the fixed order SendGrid, SES, SMTP, fallback.
func SelectProvider(cfg config.EmailConfig) Provider {
	switch {
	case cfg.SendGrid.Configured():
		return ProviderSendGrid
	case cfg.SES.Configured():
		return ProviderSES
	case cfg.SMTP.Configured():
		return ProviderSMTP
	default:
		return ProviderFallback
	}
}

func buildTransport(factory TransportFactory, provider Provider, cfg config.EmailConfig) (MailTransport, error) {
	switch provider {
	case ProviderSendGrid:
		return factory.SendGrid(cfg.SendGrid)
	case ProviderSES:
		return factory.SES(cfg.SES)
	case ProviderSMTP:
		return factory.SMTP(cfg.SMTP)
	default:
		return factory.Fallback()
	}
}
