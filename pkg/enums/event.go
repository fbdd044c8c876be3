package enums

import "fmt"

// DomainEventType is carried in the `event_type` attribute of domain events.
type DomainEventType string

const (
	EventChatMessageSent          DomainEventType = "chat.message_sent"
	EventTransactionStatusChanged DomainEventType = "transaction.status_changed"
	EventLogisticsQuoteCreated    DomainEventType = "logistics.quote_created"
	EventQuestionAnswered         DomainEventType = "question.answered"
	EventPaymentStatusChanged     DomainEventType = "payment.status_changed"
	EventProductInterest          DomainEventType = "product.interest"
	EventSystemAnnouncement       DomainEventType = "system.announcement"
	EventPurchaseConfirmed        DomainEventType = "purchase.confirmed"
)

var validDomainEventTypes = []DomainEventType{
	EventChatMessageSent,
	EventTransactionStatusChanged,
	EventLogisticsQuoteCreated,
	EventQuestionAnswered,
	EventPaymentStatusChanged,
	EventProductInterest,
	EventSystemAnnouncement,
	EventPurchaseConfirmed,
}

// IsValid reports whether the value matches a known domain event.
func (e DomainEventType) IsValid() bool {
	for _, candidate := range validDomainEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseDomainEventType converts raw input into DomainEventType.
func ParseDomainEventType(value string) (DomainEventType, error) {
	for _, candidate := range validDomainEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
