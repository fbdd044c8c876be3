package delivery

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

// MailCollection is watched by the Trigger Email extension.
const MailCollection = "mail"

type mailDocumentWriter func(ctx context.Context, doc map[string]any) error

// FallbackTransport queues mail as a Firestore document when a Firestore
// client is available and otherwise only logs, reporting success.
type FallbackTransport struct {
	write mailDocumentWriter
	logg  *logger.Logger
}

// NewFallbackTransport builds the BaaS fallback. fs may be nil.
func NewFallbackTransport(fs *firestore.Client, logg *logger.Logger) *FallbackTransport {
	t := &FallbackTransport{logg: logg}
	if fs != nil {
		t.write = func(ctx context.Context, doc map[string]any) error {
			_, _, err := fs.Collection(MailCollection).Add(ctx, doc)
			return err
		}
	}
	return t
}

func (t *FallbackTransport) Deliver(ctx context.Context, msg Message) error {
	if t.write == nil {
		if t.logg != nil {
			t.logg.Info(t.logg.WithFields(ctx, map[string]any{
				"provider":  string(ProviderFallback),
				"recipient": logger.MaskEmail(msg.To),
				"subject":   msg.Subject,
			}), "mock email accepted")
		}
		return nil
	}

	if msg.To == "" {
		return &TransportError{Provider: ProviderFallback, Err: errors.New("recipient required")}
	}
	if err := t.write(ctx, mailDocument(msg)); err != nil {
		return &TransportError{Provider: ProviderFallback, Err: err}
	}
	return nil
}

func mailDocument(msg Message) map[string]any {
	return map[string]any{
		"to":   msg.To,
		"from": formatAddress(msg.FromName, msg.From),
		"message": map[string]any{
			"subject": msg.Subject,
			"html":    msg.HTML,
			"text":    msg.Text,
		},
		"createdAt": firestore.ServerTimestamp,
	}
}
