package enums

import "fmt"

// NotificationType is the closed set of user-visible notification categories.
type NotificationType string

const (
	NotificationTypeNewMessage         NotificationType = "new_message"
	NotificationTypeTransactionUpdate  NotificationType = "transaction_update"
	NotificationTypeLogisticsQuote     NotificationType = "logistics_quote"
	NotificationTypeQuestionAnswer     NotificationType = "question_answer"
	NotificationTypePaymentStatus      NotificationType = "payment_status"
	NotificationTypeProductInterest    NotificationType = "product_interest"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeNewMessage,
	NotificationTypeTransactionUpdate,
	NotificationTypeLogisticsQuote,
	NotificationTypeQuestionAnswer,
	NotificationTypePaymentStatus,
	NotificationTypeProductInterest,
	NotificationTypeSystemAnnouncement,
}

// NotificationTypes returns every valid notification type.
func NotificationTypes() []NotificationType {
	out := make([]NotificationType, len(validNotificationTypes))
	copy(out, validNotificationTypes)
	return out
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// Priority is informational only; it never changes delivery order.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether the priority is one of the known levels.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ParsePriority converts raw input into Priority, defaulting empty input to normal.
func ParsePriority(value string) (Priority, error) {
	if value == "" {
		return PriorityNormal, nil
	}
	p := Priority(value)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority %q", value)
	}
	return p, nil
}
