package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteVersion is an immutable content snapshot of a note. Version numbers
// form a per-note sequence starting at 1 and are never reused, even when a
// note is restored from an older version.
type NoteVersion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_note_version" json:"note_id"`
	Version   int       `gorm:"not null;uniqueIndex:idx_note_version" json:"version"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `json:"body"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (v *NoteVersion) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
