package preferences

import (
	"time"

	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
)

// Preferences holds one email opt-in flag per notification type.
type Preferences struct {
	UserID             string    `json:"userId" firestore:"-"`
	NewMessage         bool      `json:"newMessage" firestore:"newMessage"`
	TransactionUpdate  bool      `json:"transactionUpdate" firestore:"transactionUpdate"`
	LogisticsQuote     bool      `json:"logisticsQuote" firestore:"logisticsQuote"`
	QuestionAnswer     bool      `json:"questionAnswer" firestore:"questionAnswer"`
	PaymentStatus      bool      `json:"paymentStatus" firestore:"paymentStatus"`
	ProductInterest    bool      `json:"productInterest" firestore:"productInterest"`
	SystemAnnouncement bool      `json:"systemAnnouncement" firestore:"systemAnnouncement"`
	UpdatedAt          time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Defaults returns the settings assumed for a user with no stored record.
func Defaults(userID string) *Preferences {
	return &Preferences{
		UserID:             userID,
		NewMessage:         true,
		TransactionUpdate:  true,
		LogisticsQuote:     true,
		QuestionAnswer:     true,
		PaymentStatus:      true,
		ProductInterest:    true,
		SystemAnnouncement: true,
	}
}

// Allows returns the flag for t. known is false for types without a flag.
func (p *Preferences) Allows(t enums.NotificationType) (allowed bool, known bool) {
	switch t {
	case enums.NotificationTypeNewMessage:
		return p.NewMessage, true
	case enums.NotificationTypeTransactionUpdate:
		return p.TransactionUpdate, true
	case enums.NotificationTypeLogisticsQuote:
		return p.LogisticsQuote, true
	case enums.NotificationTypeQuestionAnswer:
		return p.QuestionAnswer, true
	case enums.NotificationTypePaymentStatus:
		return p.PaymentStatus, true
	case enums.NotificationTypeProductInterest:
		return p.ProductInterest, true
	case enums.NotificationTypeSystemAnnouncement:
		return p.SystemAnnouncement, true
	default:
		return true, false
	}
}
