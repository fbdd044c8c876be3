package delivery

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

// ServerTransports builds real SDK-backed transports.
type ServerTransports struct {
	Firestore *firestore.Client
	Logger    *logger.Logger
}

func (f ServerTransports) SendGrid(cfg config.SendGridConfig) (MailTransport, error) {
	return NewSendGridTransport(cfg.APIKey)
}

func (f ServerTransports) SES(cfg config.SESConfig) (MailTransport, error) {
	return NewSESTransport(cfg)
}

func (f ServerTransports) SMTP(cfg config.SMTPConfig) (MailTransport, error) {
	return NewSMTPTransport(cfg)
}

func (f ServerTransports) Fallback() (MailTransport, error) {
	return NewFallbackTransport(f.Firestore, f.Logger), nil
}

// ClientTransports is used where the provider SDKs must not run. Every
// provider is simulated, so selection still follows the configured credentials.
type ClientTransports struct {
	Logger *logger.Logger
}

func (f ClientTransports) SendGrid(config.SendGridConfig) (MailTransport, error) {
	return &SimulatedTransport{Provider: ProviderSendGrid, Logger: f.Logger}, nil
}

func (f ClientTransports) SES(config.SESConfig) (MailTransport, error) {
	return &SimulatedTransport{Provider: ProviderSES, Logger: f.Logger}, nil
}

func (f ClientTransports) SMTP(config.SMTPConfig) (MailTransport, error) {
	return &SimulatedTransport{Provider: ProviderSMTP, Logger: f.Logger}, nil
}

func (f ClientTransports) Fallback() (MailTransport, error) {
	return &SimulatedTransport{Provider: ProviderFallback, Logger: f.Logger}, nil
}

// SimulatedTransport accepts every message without sending it.
type SimulatedTransport struct {
	Provider Provider
	Logger   *logger.Logger
}

func (t *SimulatedTransport) Deliver(ctx context.Context, msg Message) error {
	if t.Logger != nil {
		t.Logger.Debug(t.Logger.WithFields(ctx, map[string]any{
			"provider":  string(t.Provider),
			"recipient": logger.MaskEmail(msg.To),
			"subject":   msg.Subject,
		}), "simulated email send")
	}
	return nil
}

// TransportsFor picks the factory matching the execution context in cfg.
func TransportsFor(cfg config.EmailConfig, fs *firestore.Client, logg *logger.Logger) TransportFactory {
	if cfg.ServerContext() {
		return ServerTransports{Firestore: fs, Logger: logg}
	}
	return ClientTransports{Logger: logg}
}
