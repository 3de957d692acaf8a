package model

import "time"

// Achievement is a company milestone shown on the dashboard.
type Achievement struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Date        time.Time `gorm:"type:date;not null;index" json:"date"`
	AddedBy     string    `gorm:"type:varchar(255);not null" json:"added_by"` // display name
	CreatedAt   time.Time `json:"created_at"`
}
