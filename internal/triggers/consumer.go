package triggers

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
	"github.com/angelmondragon/gearmarket-backend/pkg/events"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

const triggerConsumerName = "notification-triggers"

type claimer interface {
	Claim(ctx context.Context, consumer, eventID string) (bool, error)
	Release(ctx context.Context, consumer, eventID string) error
}

type subscriber interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// Consumer turns domain events from Pub/Sub into trigger calls. Each event id
// is claimed once; trigger outcomes are never retried. The one exception is a
// shutdown that interrupts the record write, which releases the claim and
// nacks so another worker picks the event up.
type Consumer struct {
	triggers     Service
	subscription subscriber
	dedupe       claimer
	logg         *logger.Logger
}

// NewConsumer builds the domain event consumer.
func NewConsumer(triggers Service, subscription *pubsub.Subscriber, dedupe claimer, logg *logger.Logger) (*Consumer, error) {
	if triggers == nil {
		return nil, fmt.Errorf("trigger service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if dedupe == nil {
		return nil, fmt.Errorf("event dedupe required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		triggers:     triggers,
		subscription: subscription,
		dedupe:       dedupe,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes[events.AttrEventType]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseDomainEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	envelope, err := events.Decode(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "invalid event envelope", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode envelope"))
		return processResult{ack: true}
	}
	eventID := envelope.EventID
	logCtx = c.logg.WithField(logCtx, "event_id", eventID)

	claimed, err := c.dedupe.Claim(ctx, triggerConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "event claim failed", err)
		return processResult{nack: true}
	}
	if !claimed {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	outcome, err := c.dispatch(logCtx, eventType, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "invalid event payload", err)
		return processResult{ack: true}
	}

	resultCtx := c.logg.WithFields(logCtx, map[string]any{
		"record_id":    outcome.RecordID,
		"email_result": string(outcome.Email),
	})
	if outcome.RecordErr != nil {
		if ctx.Err() != nil && outcome.Email != EmailSent {
			if err := c.dedupe.Release(context.WithoutCancel(ctx), triggerConsumerName, eventID); err != nil {
				c.logg.Error(resultCtx, "event claim release failed", err)
			}
			c.logg.Warn(resultCtx, "event interrupted by shutdown")
			return processResult{nack: true}
		}
		c.logg.Warn(resultCtx, "event handled without a notification record")
		return processResult{ack: true}
	}
	c.logg.Info(resultCtx, "event handled")
	return processResult{ack: true}
}

func (c *Consumer) dispatch(ctx context.Context, eventType enums.DomainEventType, data json.RawMessage) (Outcome, error) {
	switch eventType {
	case enums.EventChatMessageSent:
		return invoke(ctx, data, c.triggers.NewMessage)
	case enums.EventTransactionStatusChanged:
		return invoke(ctx, data, c.triggers.TransactionUpdate)
	case enums.EventLogisticsQuoteCreated:
		return invoke(ctx, data, c.triggers.LogisticsQuote)
	case enums.EventQuestionAnswered:
		return invoke(ctx, data, c.triggers.QuestionAnswered)
	case enums.EventPaymentStatusChanged:
		return invoke(ctx, data, c.triggers.PaymentStatus)
	case enums.EventProductInterest:
		return invoke(ctx, data, c.triggers.ProductInterest)
	case enums.EventSystemAnnouncement:
		return invoke(ctx, data, c.triggers.SystemAnnouncement)
	case enums.EventPurchaseConfirmed:
		return invoke(ctx, data, c.triggers.PurchaseConfirmation)
	}
	return Outcome{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported event %s", eventType))
}

func invoke[T any](ctx context.Context, data json.RawMessage, trigger func(context.Context, T) (Outcome, error)) (Outcome, error) {
	var input T
	if err := json.Unmarshal(data, &input); err != nil {
		return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payload")
	}
	return trigger(ctx, input)
}
