package models

import "time"

// Item is the listing row whose status is the source of truth for transaction updates.
type Item struct {
	ID        string    `gorm:"type:text;primaryKey"`
	SellerID  string    `gorm:"column:seller_id;type:text;not null"`
	Title     string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
