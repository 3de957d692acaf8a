package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is an uploaded file. The bytes live in the blob store under ContentRef.
type Document struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename   string    `gorm:"type:varchar(255);not null" json:"filename"`
	ContentRef string    `gorm:"type:varchar(64);not null;index" json:"content_ref"`
	Size       int64     `gorm:"not null" json:"size"`
	UploadedBy string    `gorm:"type:varchar(100);not null" json:"uploaded_by"`
	UploadedAt time.Time `gorm:"not null;index" json:"uploaded_at"`
}

func (d *Document) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
