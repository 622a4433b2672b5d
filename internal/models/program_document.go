package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgramDocument links one program to one document. A document may be
// linked to a program at most once (unique composite index), but many
// programs may share a document and vice versa.
type ProgramDocument struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	ProgramID  string    `gorm:"type:char(36);not null;index:idx_program_document,unique" json:"programId"`
	DocumentID string    `gorm:"type:char(36);not null;index:idx_program_document,unique" json:"documentId"`
	UsageNotes *string   `gorm:"type:text" json:"usageNotes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Document *Document `gorm:"foreignKey:DocumentID" json:"document,omitempty"`
}

// TableName overrides the table name for ProgramDocument
func (ProgramDocument) TableName() string {
	return "program_documents"
}

// BeforeCreate assigns a UUID primary key
func (l *ProgramDocument) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
