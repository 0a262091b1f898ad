package services

import (
	"errors"
	"fmt"
	"log"

	"quill-notes/quill/database"
	"quill-notes/quill/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShareServiceInterface interface {
	ShareNote(db *database.Database, noteID string, granteeIDs []string, requesterID uuid.UUID) (models.Note, error)
	ListShares(db *database.Database, noteID string, requesterID uuid.UUID) ([]models.NoteShare, error)
}

type ShareService struct{}

func NewShareService() *ShareService {
	return &ShareService{}
}

// ShareNote replaces the note's entire share list with the requested set
// of grantees. The operation is idempotent full-replace: grantees absent
// from the new set lose access. A PRIVATE note is promoted to SHARED in
// the same transaction; SHARED and PUBLIC are left as they are. Visibility
// never demotes here, even when the new set is empty.
func (s *ShareService) ShareNote(db *database.Database, noteID string, granteeIDs []string, requesterID uuid.UUID) (models.Note, error) {
	var note models.Note
	if err := db.DB.First(&note, "id = ?", noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}

	if !CanWrite(&note, requesterID) {
		return models.Note{}, ErrForbidden
	}

	// All-or-nothing validation before any write: every grantee must
	// resolve to an existing user. The author is not a grantee of their
	// own note.
	grantees := make([]uuid.UUID, 0, len(granteeIDs))
	seen := make(map[uuid.UUID]bool, len(granteeIDs))
	for _, idStr := range granteeIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return models.Note{}, fmt.Errorf("%w: invalid user id %q", ErrGranteeNotFound, idStr)
		}
		if id == note.AuthorID || seen[id] {
			continue
		}
		seen[id] = true
		grantees = append(grantees, id)
	}

	if len(grantees) > 0 {
		var count int64
		if err := db.DB.Model(&models.User{}).Where("id IN ?", grantees).Count(&count).Error; err != nil {
			return models.Note{}, err
		}
		if count != int64(len(grantees)) {
			return models.Note{}, ErrGranteeNotFound
		}
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Note{}, tx.Error
	}

	if err := tx.Where("note_id = ?", note.ID).Delete(&models.NoteShare{}).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	shares := make([]models.NoteShare, 0, len(grantees))
	for _, granteeID := range grantees {
		shares = append(shares, models.NoteShare{
			ID:         uuid.New(),
			NoteID:     note.ID,
			UserID:     granteeID,
			Permission: models.PermissionView,
		})
	}
	if len(shares) > 0 {
		if err := tx.Create(&shares).Error; err != nil {
			tx.Rollback()
			return models.Note{}, err
		}
	}

	if note.Visibility == models.VisibilityPrivate {
		note.Visibility = models.VisibilityShared
		if err := tx.Save(&note).Error; err != nil {
			tx.Rollback()
			return models.Note{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	// One NOTE_SHARED notification per grantee in the requested set. A
	// grantee kept across a re-share receives a duplicate; accepted.
	for _, granteeID := range grantees {
		_, err := NotificationServiceInstance.Notify(db, granteeID, models.NotificationNoteShared,
			"Note shared with you",
			fmt.Sprintf("%q was shared with you", note.Title),
			map[string]interface{}{
				"note_id":  note.ID.String(),
				"actor_id": requesterID.String(),
			})
		if err != nil {
			log.Printf("Failed to notify user %s about share of note %s: %v", granteeID, note.ID, err)
		}
	}

	note.Shares = shares
	return note, nil
}

func (s *ShareService) ListShares(db *database.Database, noteID string, requesterID uuid.UUID) ([]models.NoteShare, error) {
	var note models.Note
	if err := db.DB.First(&note, "id = ?", noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	canRead, err := AccessServiceInstance.CanRead(db, &note, requesterID)
	if err != nil {
		return nil, err
	}
	if !canRead {
		return nil, ErrForbidden
	}

	var shares []models.NoteShare
	if err := db.DB.Preload("User").Where("note_id = ?", note.ID).Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

var ShareServiceInstance ShareServiceInterface = NewShareService()
