package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType identifies what caused a notification.
type NotificationType string

const (
	NotificationNoteShared  NotificationType = "NOTE_SHARED"
	NotificationNoteUpdated NotificationType = "NOTE_UPDATED"
	NotificationSystem      NotificationType = "SYSTEM"
)

type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `json:"message"`
	Payload   json.RawMessage  `gorm:"serializer:json" json:"payload,omitempty"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
