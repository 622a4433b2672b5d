package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgramStatus is the closed set of application states
type ProgramStatus string

const (
	StatusAccepted   ProgramStatus = "Accepted"
	StatusApplied    ProgramStatus = "Applied"
	StatusInProgress ProgramStatus = "In Progress"
	StatusRejected   ProgramStatus = "Rejected"
	StatusOther      ProgramStatus = "Other"
)

// Valid reports whether s is one of the recognized statuses
func (s ProgramStatus) Valid() bool {
	switch s {
	case StatusAccepted, StatusApplied, StatusInProgress, StatusRejected, StatusOther:
		return true
	}
	return false
}

// Program represents one graduate-school application record.
// UserID is immutable after creation.
type Program struct {
	ID                string        `gorm:"type:char(36);primaryKey" json:"id"`
	UserID            string        `gorm:"type:char(36);not null;index" json:"userId"`
	UniversityName    string        `gorm:"size:255;not null" json:"universityName"`
	FieldOfStudy      *string       `gorm:"size:255" json:"fieldOfStudy,omitempty"`
	FocusArea         *string       `gorm:"size:255" json:"focusArea,omitempty"`
	ApplicationPortal *string       `gorm:"size:512" json:"applicationPortal,omitempty"`
	Website           *string       `gorm:"size:512" json:"website,omitempty"`
	Deadline          *time.Time    `gorm:"type:date" json:"deadline,omitempty"`
	Status            ProgramStatus `gorm:"size:32;not null;default:'In Progress'" json:"status"`
	Tuition           *string       `gorm:"size:512" json:"tuition,omitempty"`
	Requirements      *string       `gorm:"type:text" json:"requirements,omitempty"`
	Notes             *string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`

	// Deleting a program deletes its links, never its documents.
	Links []ProgramDocument `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name for Program
func (Program) TableName() string {
	return "programs"
}

// BeforeCreate assigns a UUID primary key
func (p *Program) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
