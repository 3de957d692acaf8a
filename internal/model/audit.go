package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionSubmitPurchaseRequest  = "SUBMIT_PURCHASE_REQUEST"
	ActionApprovePurchaseRequest = "APPROVE_PURCHASE_REQUEST"
	ActionRejectPurchaseRequest  = "REJECT_PURCHASE_REQUEST"
	ActionUploadDocument         = "UPLOAD_DOCUMENT"
	ActionDeleteDocument         = "DELETE_DOCUMENT"
	ActionAddAchievement         = "ADD_ACHIEVEMENT"
)

// AuditLog tracks who changed what and when.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username   string    `gorm:"type:varchar(100);not null;index" json:"username"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details"` // serialized JSON payload
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
