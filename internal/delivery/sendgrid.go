package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridTransport delivers through the SendGrid v3 mail API.
type SendGridTransport struct {
	client sendgridSender
}

// NewSendGridTransport builds a transport authenticated with apiKey.
func NewSendGridTransport(apiKey string) (*SendGridTransport, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("sendgrid api key required")
	}
	return &SendGridTransport{client: sendgrid.NewSendClient(apiKey)}, nil
}

func (t *SendGridTransport) Deliver(ctx context.Context, msg Message) error {
	from := mail.NewEmail(msg.FromName, msg.From)
	to := mail.NewEmail("", msg.To)
	payload := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := t.client.SendWithContext(ctx, payload)
	if err != nil {
		return &TransportError{Provider: ProviderSendGrid, Err: err}
	}
	if resp.StatusCode >= 300 {
		return &TransportError{
			Provider: ProviderSendGrid,
			Err:      fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body)),
		}
	}
	return nil
}
