package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/gearmarket-backend/internal/email"
	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
	"github.com/angelmondragon/gearmarket-backend/pkg/metrics"
)

// Sender delivers an email notification and reports whether a provider accepted it.
type Sender interface {
	Send(ctx context.Context, n *EmailNotification) bool
}

// ChainParams wires a provider chain.
type ChainParams struct {
	Config     config.EmailConfig
	Renderer   *email.Renderer
	Transports TransportFactory
	Resolver   RecipientResolver
	Metrics    *metrics.DeliveryMetrics
	Logger     *logger.Logger
}

// Chain sends through the single provider selected from the configured
// credentials. A failed attempt is final: nothing cascades to lower priority
// providers and nothing is retried.
type Chain struct {
	provider *providerSender
	resolver RecipientResolver
	metrics  *metrics.DeliveryMetrics
	logg     *logger.Logger
}

// NewChain selects the provider once and builds its transport.
func NewChain(params ChainParams) (*Chain, error) {
	if params.Renderer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email renderer required")
	}
	if params.Transports == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transport factory required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}

	selected := SelectProvider(params.Config)
	transport, err := buildTransport(params.Transports, selected, params.Config)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("build %s transport", selected))
	}

	resolver := params.Resolver
	if resolver == nil {
		resolver = NewRecipientResolver(nil)
	}

	return &Chain{
		provider: &providerSender{
			name:      selected,
			transport: transport,
			renderer:  params.Renderer,
			from:      params.Config.Sender(),
			fromName:  params.Config.FromName,
		},
		resolver: resolver,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Provider reports which provider this chain sends through.
func (c *Chain) Provider() Provider {
	return c.provider.name
}

// Send never panics and never returns an error; failures are logged and
// reported as false with the notification marked failed.
func (c *Chain) Send(ctx context.Context, n *EmailNotification) (ok bool) {
	if n == nil {
		return false
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"email_id":          n.ID,
		"user_id":           n.UserID,
		"notification_type": n.Type,
		"template_id":       string(n.TemplateID),
		"provider":          string(c.provider.name),
	})

	defer func() {
		if r := recover(); r != nil {
			n.Status = enums.EmailStatusFailed
			c.logg.Error(logCtx, "email send panicked", fmt.Errorf("panic: %v", r))
			ok = false
		}
	}()

	if n.To == "" {
		to, err := c.resolver.Resolve(ctx, n.UserID)
		if err != nil {
			n.Status = enums.EmailStatusFailed
			c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "email recipient unresolved")
			return false
		}
		n.To = to
	}
	logCtx = c.logg.WithRecipient(logCtx, n.To)

	start := time.Now()
	err := c.provider.send(ctx, n)
	c.metrics.ObserveSend(string(c.provider.name), n.Type, err == nil, time.Since(start))
	if err != nil {
		n.Status = enums.EmailStatusFailed
		c.logg.Error(logCtx, "email send failed", err)
		return false
	}

	n.Status = enums.EmailStatusCompleted
	c.logg.Info(logCtx, "email sent")
	return true
}

type providerSender struct {
	name      Provider
	transport MailTransport
	renderer  *email.Renderer
	from      string
	fromName  string
}

func (p *providerSender) send(ctx context.Context, n *EmailNotification) error {
	rendered := p.renderer.RenderEmail(n.TemplateID, n.Data)
	return p.transport.Deliver(ctx, Message{
		From:     p.from,
		FromName: p.fromName,
		To:       n.To,
		Subject:  rendered.Subject,
		HTML:     rendered.HTML,
		Text:     rendered.Text,
	})
}
