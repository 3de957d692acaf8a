package model

import "time"

// User is a seeded member of the organisation. Role is not stored; it is
// derived from the configured approver username.
type User struct {
	Username    string    `gorm:"type:varchar(100);primaryKey" json:"username"`
	DisplayName string    `gorm:"type:varchar(255);not null" json:"display_name"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"` // plaintext seed credential
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
