package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visibility controls who can read a note besides its author.
type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityShared  Visibility = "SHARED"
	VisibilityPublic  Visibility = "PUBLIC"
)

// VisibilityFromString converts a string to a Visibility.
func VisibilityFromString(s string) (Visibility, bool) {
	switch strings.ToUpper(s) {
	case string(VisibilityPrivate):
		return VisibilityPrivate, true
	case string(VisibilityShared):
		return VisibilityShared, true
	case string(VisibilityPublic):
		return VisibilityPublic, true
	default:
		return "", false
	}
}

type Note struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"author_id"`
	Author     *User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title      string        `gorm:"not null" json:"title"`
	Body       string        `json:"body"`
	Tags       []string      `gorm:"serializer:json" json:"tags"`
	Visibility Visibility    `gorm:"type:varchar(20);not null;default:'PRIVATE'" json:"visibility"`
	Archived   bool          `gorm:"not null;default:false" json:"archived"`
	Versions   []NoteVersion `gorm:"foreignKey:NoteID" json:"versions,omitempty"`
	Shares     []NoteShare   `gorm:"foreignKey:NoteID" json:"shares,omitempty"`
	CreatedAt  time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null" json:"updated_at"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Visibility == "" {
		n.Visibility = VisibilityPrivate
	}
	return nil
}

func (n *Note) FromJSON(data []byte) error {
	return json.Unmarshal(data, n)
}

func (n *Note) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// NormalizeTags lowercases, trims and deduplicates a tag list while
// preserving first-seen order. Empty tags are dropped.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		normalized = append(normalized, t)
	}
	return normalized
}
