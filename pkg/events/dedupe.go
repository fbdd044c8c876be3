package events

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ClaimStore is the slice of the redis client the guard needs.
type ClaimStore interface {
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	IdempotencyKey(scope, id string) string
}

// Dedupe lets exactly one delivery of an event id through per consumer.
// Keys look like `gm:idempotency:claim:<consumer>:<event_id>`.
type Dedupe struct {
	store ClaimStore
	ttl   time.Duration
}

func NewDedupe(store ClaimStore, ttl time.Duration) (*Dedupe, error) {
	if store == nil {
		return nil, errors.New("claim store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("claim ttl must be positive")
	}
	return &Dedupe{store: store, ttl: ttl}, nil
}

// Claim reports whether this caller is the first to see eventID.
func (d *Dedupe) Claim(ctx context.Context, consumer, eventID string) (bool, error) {
	key, err := d.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	return d.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), d.ttl)
}

// Release drops a claim so a redelivery is handled again. Callers release
// only when they gave up before doing any work.
func (d *Dedupe) Release(ctx context.Context, consumer, eventID string) error {
	key, err := d.key(consumer, eventID)
	if err != nil {
		return err
	}
	return d.store.Del(ctx, key)
}

func (d *Dedupe) key(consumer, eventID string) (string, error) {
	consumer = strings.TrimSpace(consumer)
	eventID = strings.TrimSpace(eventID)
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return d.store.IdempotencyKey("claim:"+consumer, eventID), nil
}
