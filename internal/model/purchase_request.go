package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatus values. Pending is the only non-terminal state.
const (
	PurchaseStatusPending  = "Pending"
	PurchaseStatusApproved = "Approved"
	PurchaseStatusRejected = "Rejected"
)

// PurchaseRequest is a requester's ask to buy an item. Status changes at most
// once, from Pending to Approved or Rejected, and the row is never deleted.
type PurchaseRequest struct {
	ID                uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	SerialNumber      int64           `gorm:"not null;index" json:"serial_number"` // caller supplied, duplicates allowed
	ItemName          string          `gorm:"type:varchar(255);not null" json:"item_name"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	ImageRef          string          `gorm:"type:varchar(64)" json:"image_ref,omitempty"` // blobstore reference
	Quantity          int             `gorm:"not null" json:"quantity"`
	Reason            string          `gorm:"type:text;not null" json:"reason"`
	RequestedBy       string          `gorm:"type:varchar(255);not null" json:"requested_by"` // requester display name
	RequesterUsername string          `gorm:"type:varchar(100);not null;index" json:"requester_username"`
	Status            string          `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	DecidedBy         *string         `gorm:"type:varchar(100)" json:"decided_by,omitempty"`
	DecidedAt         *time.Time      `json:"decided_at,omitempty"`
	CreatedAt         time.Time       `gorm:"not null;index" json:"created_at"`
}
