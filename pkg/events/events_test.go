package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("KST", 9*3600))
	raw, err := Encode("evt-1", at, &Actor{UserID: "seller-1"}, map[string]string{"itemId": "guitar-7"})
	require.NoError(t, err)

	env, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", env.EventID)
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.True(t, env.OccurredAt.Equal(at))
	assert.JSONEq(t, `{"itemId":"guitar-7"}`, string(env.Data))
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"garbage":    `not json`,
		"version":    `{"version":2,"eventId":"e","data":{}}`,
		"missing id": `{"version":1,"eventId":"  ","data":{}}`,
		"no data":    `{"version":1,"eventId":"e"}`,
		"null data":  `{"version":1,"eventId":"e","data":null}`,
	}
	for name, raw := range cases {
		_, err := Decode([]byte(raw))
		assert.Error(t, err, name)
	}

	env, err := Decode([]byte(`{"eventId":"e","data":{}}`))
	require.NoError(t, err)
	assert.Equal(t, EnvelopeVersion, env.Version)
}

type fakeClaims struct {
	claimed map[string]bool
	err     error
	ttl     time.Duration
}

func (f *fakeClaims) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.ttl = ttl
	if f.claimed[key] {
		return false, nil
	}
	f.claimed[key] = true
	return true, nil
}

func (f *fakeClaims) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.claimed, k)
	}
	return nil
}

func (f *fakeClaims) IdempotencyKey(scope, id string) string {
	return "gm:idempotency:" + scope + ":" + id
}

func TestDedupeClaimAndRelease(t *testing.T) {
	store := &fakeClaims{claimed: map[string]bool{}}
	guard, err := NewDedupe(store, 24*time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := guard.Claim(ctx, "notification-triggers", "evt-1")
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, store.claimed["gm:idempotency:claim:notification-triggers:evt-1"])
	assert.Equal(t, 24*time.Hour, store.ttl)

	again, err := guard.Claim(ctx, "notification-triggers", "evt-1")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := guard.Claim(ctx, "audit", "evt-1")
	require.NoError(t, err)
	assert.True(t, other)

	require.NoError(t, guard.Release(ctx, "notification-triggers", "evt-1"))
	retry, err := guard.Claim(ctx, "notification-triggers", "evt-1")
	require.NoError(t, err)
	assert.True(t, retry)
}

func TestDedupeValidation(t *testing.T) {
	_, err := NewDedupe(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewDedupe(&fakeClaims{}, 0)
	assert.Error(t, err)

	guard, err := NewDedupe(&fakeClaims{claimed: map[string]bool{}}, time.Hour)
	require.NoError(t, err)
	_, err = guard.Claim(context.Background(), "", "evt")
	assert.Error(t, err)
	_, err = guard.Claim(context.Background(), "consumer", " ")
	assert.Error(t, err)

	failing, err := NewDedupe(&fakeClaims{err: errors.New("redis down")}, time.Hour)
	require.NoError(t, err)
	_, err = failing.Claim(context.Background(), "consumer", "evt")
	assert.Error(t, err)
}
