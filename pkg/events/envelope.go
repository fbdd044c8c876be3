// Package events holds the wire envelope for marketplace domain events and the
// per-consumer dedupe guard used when reading them off Pub/Sub.
package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EnvelopeVersion is the only envelope layout this service understands.
const EnvelopeVersion = 1

// AttrEventType is the Pub/Sub attribute naming the domain event.
const AttrEventType = "event_type"

// Actor identifies who produced the event.
type Actor struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
}

// Envelope wraps every event published to the domain topic.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *Actor          `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Decode parses and checks an envelope. A missing version is read as the
// current one since early producers omitted it.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version == 0 {
		env.Version = EnvelopeVersion
	}
	if env.Version != EnvelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %d", env.Version)
	}
	env.EventID = strings.TrimSpace(env.EventID)
	if env.EventID == "" {
		return nil, fmt.Errorf("envelope event id required")
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("envelope data required")
	}
	return &env, nil
}

// Encode builds an envelope around data. Used by producers and tests.
func Encode(eventID string, occurredAt time.Time, actor *Actor, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}
	return json.Marshal(Envelope{
		Version:    EnvelopeVersion,
		EventID:    eventID,
		OccurredAt: occurredAt.UTC(),
		Actor:      actor,
		Data:       payload,
	})
}
