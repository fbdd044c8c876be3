package enums

// EmailStatus tracks a single send attempt.
type EmailStatus string

const (
	EmailStatusPending   EmailStatus = "pending"
	EmailStatusCompleted EmailStatus = "completed"
	EmailStatusFailed    EmailStatus = "failed"
)
