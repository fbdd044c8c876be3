package delivery

import (
	"time"

	"github.com/angelmondragon/gearmarket-backend/internal/email"
	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
	"github.com/google/uuid"
)

// EmailNotification is a single send attempt. It is never persisted; the
// outcome only reaches logs and metrics.
type EmailNotification struct {
	ID         string
	UserID     string
	To         string
	Type       string
	TemplateID email.TemplateID
	Data       map[string]any
	Status     enums.EmailStatus
	CreatedAt  time.Time
}

// NewEmailNotification builds a pending notification for userID.
func NewEmailNotification(userID, notificationType string, templateID email.TemplateID, data map[string]any) *EmailNotification {
	return &EmailNotification{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       notificationType,
		TemplateID: templateID,
		Data:       data,
		Status:     enums.EmailStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

// Message is what a transport hands to its backend.
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
	Text     string
}
