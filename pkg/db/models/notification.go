package models

import (
	"time"

	dbtypes "github.com/angelmondragon/gearmarket-backend/pkg/db/types"
)

// Notification is a user-visible notification record. Title, message and data
// are written once; only is_read and read_at change afterwards.
type Notification struct {
	ID        string          `gorm:"type:text;primaryKey"`
	UserID    string          `gorm:"column:user_id;type:text;not null;index"`
	Type      string          `gorm:"type:text;not null"`
	Title     string          `gorm:"type:text;not null"`
	Message   string          `gorm:"type:text;not null"`
	Data      dbtypes.JSONMap `gorm:"type:jsonb;not null"`
	IsRead    bool            `gorm:"column:is_read;not null"`
	ReadAt    *time.Time      `gorm:"column:read_at"`
	Priority  string          `gorm:"type:text;not null"`
	Link      *string         `gorm:"type:text"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
}
