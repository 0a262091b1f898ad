package services

import (
	"quill-notes/quill/database"
	"quill-notes/quill/models"

	"github.com/google/uuid"
)

// CanWrite reports whether requester may mutate the note. Only the author
// may write; admins go through the dedicated admin operations instead.
func CanWrite(note *models.Note, requesterID uuid.UUID) bool {
	return note.AuthorID == requesterID
}

// CanReadWithGrant decides read eligibility given whether a share grant
// exists for the requester. Fails closed: anything not explicitly allowed
// is denied.
func CanReadWithGrant(note *models.Note, requesterID uuid.UUID, hasGrant bool) bool {
	if note.AuthorID == requesterID {
		return true
	}
	switch note.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilityShared:
		return hasGrant
	default:
		return false
	}
}

type AccessServiceInterface interface {
	CanRead(db *database.Database, note *models.Note, requesterID uuid.UUID) (bool, error)
	CanWrite(note *models.Note, requesterID uuid.UUID) bool
}

type AccessService struct{}

func NewAccessService() *AccessService {
	return &AccessService{}
}

// CanRead resolves the share grant (only needed for SHARED notes) and
// applies the eligibility rule.
func (s *AccessService) CanRead(db *database.Database, note *models.Note, requesterID uuid.UUID) (bool, error) {
	hasGrant := false
	if note.Visibility == models.VisibilityShared && note.AuthorID != requesterID {
		var count int64
		if err := db.DB.Model(&models.NoteShare{}).
			Where("note_id = ? AND user_id = ?", note.ID, requesterID).
			Count(&count).Error; err != nil {
			return false, err
		}
		hasGrant = count > 0
	}
	return CanReadWithGrant(note, requesterID, hasGrant), nil
}

func (s *AccessService) CanWrite(note *models.Note, requesterID uuid.UUID) bool {
	return CanWrite(note, requesterID)
}

var AccessServiceInstance AccessServiceInterface = NewAccessService()
