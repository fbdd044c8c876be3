package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/gearmarket-backend/pkg/config"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoSubscription    = errors.New("pubsub domain subscription name is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client owns the Pub/Sub connection for the notification worker. The worker
// only reads the domain events subscription; producers live in other services.
type Client struct {
	client       *pubsub.Client
	subscription string
	receive      pubsub.ReceiveSettings
}

// NewClient dials Pub/Sub and fails fast when the domain subscription is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	name, err := SubscriptionPath(project, cfg.DomainSubscription)
	if err != nil {
		return nil, err
	}

	psClient, err := pubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{
		client:       psClient,
		subscription: name,
		receive:      receiveSettings(cfg),
	}
	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"subscription":    name,
			"max_outstanding": c.receive.MaxOutstandingMessages,
			"goroutines":      c.receive.NumGoroutines,
		}), "pubsub.ready")
	}
	return c, nil
}

func receiveSettings(cfg config.PubSubConfig) pubsub.ReceiveSettings {
	settings := pubsub.DefaultReceiveSettings
	if cfg.MaxOutstandingMessages > 0 {
		settings.MaxOutstandingMessages = cfg.MaxOutstandingMessages
	}
	if cfg.NumGoroutines > 0 {
		settings.NumGoroutines = cfg.NumGoroutines
	}
	return settings
}

// SubscriptionPath expands a short subscription id to its resource name.
// Fully qualified names pass through unchanged.
func SubscriptionPath(project, subscription string) (string, error) {
	sub := strings.TrimSpace(subscription)
	if sub == "" {
		return "", errNoSubscription
	}
	if strings.HasPrefix(sub, "projects/") {
		if !strings.Contains(sub, "/subscriptions/") {
			return "", fmt.Errorf("malformed subscription resource %q", sub)
		}
		return sub, nil
	}
	if strings.ContainsAny(sub, "/ ") {
		return "", fmt.Errorf("invalid subscription id %q", sub)
	}
	project = strings.TrimSpace(project)
	if project == "" {
		return "", errProjectIDRequired
	}
	return fmt.Sprintf("projects/%s/subscriptions/%s", project, sub), nil
}

// DomainSubscription returns a subscriber for the domain events subscription
// with the configured flow control applied.
func (c *Client) DomainSubscription() *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	sub := c.client.Subscriber(c.subscription)
	sub.ReceiveSettings = c.receive
	return sub
}

// Ping confirms the subscription is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	_, err := c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{
		Subscription: c.subscription,
	})
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("subscription %q does not exist", c.subscription)
	default:
		return fmt.Errorf("checking subscription %q: %w", c.subscription, err)
	}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
