package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is an in-app message for one recipient. Seen only ever moves
// from false to true. A purchase request triggers at most one notification,
// enforced by the unique index on PurchaseRequestID. IDs are UUIDv7, so they
// grow with insertion order and break ties between same-second rows.
type Notification struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Message           string    `gorm:"type:text;not null" json:"message"`
	Recipient         string    `gorm:"type:varchar(100);not null;index:idx_notifications_recipient_seen" json:"recipient"`
	PurchaseRequestID *uint     `gorm:"uniqueIndex" json:"purchase_request_id,omitempty"`
	Seen              bool      `gorm:"not null;default:false;index:idx_notifications_recipient_seen" json:"seen"`
	CreatedAt         time.Time `gorm:"not null;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID != uuid.Nil {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}
