package notifications

import (
	"sort"
	"time"

	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
)

// Record is a persisted, user-visible notification.
type Record struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]any         `json:"data"`
	IsRead    bool                   `json:"isRead"`
	ReadAt    *time.Time             `json:"readAt,omitempty"`
	Priority  enums.Priority         `json:"priority"`
	Link      string                 `json:"link,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// sortNewestFirst orders by creation time descending, breaking ties by id.
func sortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

// olderThan reports whether r sorts after the cursor position.
func olderThan(r Record, at time.Time, id string) bool {
	if r.CreatedAt.Equal(at) {
		return r.ID < id
	}
	return r.CreatedAt.Before(at)
}
