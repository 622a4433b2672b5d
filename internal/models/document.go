package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is the metadata row for one uploaded file. Invariant: whenever
// a row is visible to readers the file at FilePath exists and is non-empty;
// the storage commit/rollback hooks enforce this.
type Document struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID       string    `gorm:"type:char(36);not null;index" json:"userId"`
	FileName     string    `gorm:"size:255;not null" json:"fileName"`
	FilePath     string    `gorm:"size:1024;not null" json:"filePath"`
	DocumentType string    `gorm:"size:255" json:"documentType"`
	Notes        *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName overrides the table name for Document
func (Document) TableName() string {
	return "documents"
}

// BeforeCreate assigns a UUID primary key
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
