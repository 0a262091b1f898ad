package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SharePermission is the access level a share grant confers. VIEW is the
// only level currently issued.
type SharePermission string

const (
	PermissionView SharePermission = "VIEW"
)

// NoteShare grants a user read access to a shared note. At most one row
// exists per (note, user) pair, and no row is ever created for the note's
// own author.
type NoteShare struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_note_share" json:"note_id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_note_share" json:"user_id"`
	User       *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Permission SharePermission `gorm:"type:varchar(20);not null;default:'VIEW'" json:"permission"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
}

func (s *NoteShare) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Permission == "" {
		s.Permission = PermissionView
	}
	return nil
}
