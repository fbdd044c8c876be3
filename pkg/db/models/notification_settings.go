package models

import "time"

// NotificationSettings holds one email opt-in flag per notification type.
type NotificationSettings struct {
	UserID             string    `gorm:"column:user_id;type:text;primaryKey"`
	NewMessage         bool      `gorm:"column:new_message;not null"`
	TransactionUpdate  bool      `gorm:"column:transaction_update;not null"`
	LogisticsQuote     bool      `gorm:"column:logistics_quote;not null"`
	QuestionAnswer     bool      `gorm:"column:question_answer;not null"`
	PaymentStatus      bool      `gorm:"column:payment_status;not null"`
	ProductInterest    bool      `gorm:"column:product_interest;not null"`
	SystemAnnouncement bool      `gorm:"column:system_announcement;not null"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (NotificationSettings) TableName() string {
	return "notification_settings"
}
