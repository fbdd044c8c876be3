package pubsub

import (
	"context"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gearmarket-backend/pkg/config"
)

func TestSubscriptionPath(t *testing.T) {
	got, err := SubscriptionPath("gearmarket-prod", " gearmarket-notifications ")
	require.NoError(t, err)
	assert.Equal(t, "projects/gearmarket-prod/subscriptions/gearmarket-notifications", got)

	full := "projects/other/subscriptions/notif"
	got, err = SubscriptionPath("", full)
	require.NoError(t, err)
	assert.Equal(t, full, got)

	for _, bad := range []struct{ project, sub string }{
		{"p", ""},
		{"", "gearmarket-notifications"},
		{"p", "projects/p/topics/t"},
		{"p", "has/slash"},
	} {
		_, err := SubscriptionPath(bad.project, bad.sub)
		assert.Error(t, err, bad.sub)
	}
}

func TestReceiveSettings(t *testing.T) {
	defaults := receiveSettings(config.PubSubConfig{})
	assert.Equal(t, pubsub.DefaultReceiveSettings.MaxOutstandingMessages, defaults.MaxOutstandingMessages)

	tuned := receiveSettings(config.PubSubConfig{MaxOutstandingMessages: 25, NumGoroutines: 2})
	assert.Equal(t, 25, tuned.MaxOutstandingMessages)
	assert.Equal(t, 2, tuned.NumGoroutines)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Nil(t, c.DomainSubscription())
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{DomainSubscription: "s"}, nil)
	assert.ErrorIs(t, err, errProjectIDRequired)
}
