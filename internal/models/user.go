package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns programs and documents. Email is stored lower-cased so the
// unique index doubles as the case-insensitive comparison key.
type User struct {
	ID           string `gorm:"type:char(36);primaryKey" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Roles        JSON   `json:"roles,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Programs  []Program  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Documents []Document `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
