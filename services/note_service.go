package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"quill-notes/quill/database"
	"quill-notes/quill/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxSearchSuggestions = 10

type NoteServiceInterface interface {
	CreateNote(db *database.Database, noteData map[string]interface{}) (models.Note, error)
	GetNoteById(db *database.Database, id string, requesterID uuid.UUID) (models.Note, error)
	UpdateNote(db *database.Database, id string, updatedData map[string]interface{}, requesterID uuid.UUID) (models.Note, error)
	RestoreVersion(db *database.Database, id string, version int, requesterID uuid.UUID) (models.Note, error)
	DeleteNote(db *database.Database, id string, requesterID uuid.UUID) error
	ForceDeleteNote(db *database.Database, id string) error
	GetNotes(db *database.Database, params map[string]interface{}) ([]models.Note, int64, error)
	GetSearchSuggestions(db *database.Database, q string, requesterID uuid.UUID) ([]string, error)
	ListVersions(db *database.Database, noteID string, requesterID uuid.UUID) ([]models.NoteVersion, error)
	GetVersion(db *database.Database, noteID string, version int, requesterID uuid.UUID) (models.NoteVersion, error)
}

type NoteService struct{}

func NewNoteService() *NoteService {
	return &NoteService{}
}

// CreateNote inserts the note together with version 1 in one transaction,
// so a reader can never observe a note without its initial snapshot.
func (s *NoteService) CreateNote(db *database.Database, noteData map[string]interface{}) (models.Note, error) {
	title, ok := noteData["title"].(string)
	if !ok || title == "" {
		return models.Note{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	authorIDStr, ok := noteData["author_id"].(string)
	if !ok {
		return models.Note{}, fmt.Errorf("%w: author_id is required", ErrInvalidInput)
	}
	authorID, err := uuid.Parse(authorIDStr)
	if err != nil {
		return models.Note{}, fmt.Errorf("%w: invalid author_id", ErrInvalidInput)
	}

	body, _ := noteData["body"].(string)

	visibility := models.VisibilityPrivate
	if visStr, ok := noteData["visibility"].(string); ok && visStr != "" {
		vis, valid := models.VisibilityFromString(visStr)
		if !valid {
			return models.Note{}, ErrInvalidVisibility
		}
		visibility = vis
	}

	note := models.Note{
		ID:         uuid.New(),
		AuthorID:   authorID,
		Title:      title,
		Body:       body,
		Tags:       models.NormalizeTags(tagsFromData(noteData["tags"])),
		Visibility: visibility,
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Note{}, tx.Error
	}

	if err := tx.Create(&note).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	initial := models.NoteVersion{
		ID:        uuid.New(),
		NoteID:    note.ID,
		Version:   1,
		Title:     note.Title,
		Body:      note.Body,
		CreatedBy: authorID,
	}
	if err := tx.Create(&initial).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	note.Versions = []models.NoteVersion{initial}
	return note, nil
}

func (s *NoteService) GetNoteById(db *database.Database, id string, requesterID uuid.UUID) (models.Note, error) {
	var note models.Note
	if err := db.DB.Preload("Shares").First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}

	canRead, err := AccessServiceInstance.CanRead(db, &note, requesterID)
	if err != nil {
		return models.Note{}, err
	}
	if !canRead {
		return models.Note{}, ErrForbidden
	}

	return note, nil
}

// UpdateNote applies a partial update. Only keys present in updatedData
// change; a new version is inserted only when the title or body actually
// differs from the persisted value. Tag and visibility changes are
// metadata and never version.
func (s *NoteService) UpdateNote(db *database.Database, id string, updatedData map[string]interface{}, requesterID uuid.UUID) (models.Note, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Note{}, tx.Error
	}

	var note models.Note
	if err := tx.First(&note, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}

	if !CanWrite(&note, requesterID) {
		tx.Rollback()
		return models.Note{}, ErrForbidden
	}

	prevTitle := note.Title
	prevBody := note.Body

	if title, ok := updatedData["title"].(string); ok {
		if title == "" {
			tx.Rollback()
			return models.Note{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		note.Title = title
	}
	if body, ok := updatedData["body"].(string); ok {
		note.Body = body
	}
	if rawTags, ok := updatedData["tags"]; ok {
		note.Tags = models.NormalizeTags(tagsFromData(rawTags))
	}
	if visStr, ok := updatedData["visibility"].(string); ok {
		vis, valid := models.VisibilityFromString(visStr)
		if !valid {
			tx.Rollback()
			return models.Note{}, ErrInvalidVisibility
		}
		note.Visibility = vis
	}
	if archived, ok := updatedData["archived"].(bool); ok {
		note.Archived = archived
	}

	if err := tx.Save(&note).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	contentChanged := prevTitle != note.Title || prevBody != note.Body
	if contentChanged {
		if err := insertNextVersion(tx, &note, requesterID); err != nil {
			tx.Rollback()
			return models.Note{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if contentChanged {
		notifyGrantees(db, &note, requesterID)
	}

	return note, nil
}

// RestoreVersion copies the target snapshot's content onto the live note
// and records the restoration as a brand-new top version. The historical
// row being restored from is never touched, so version numbers keep
// increasing across restores.
func (s *NoteService) RestoreVersion(db *database.Database, id string, version int, requesterID uuid.UUID) (models.Note, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Note{}, tx.Error
	}

	var note models.Note
	if err := tx.First(&note, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}

	if !CanWrite(&note, requesterID) {
		tx.Rollback()
		return models.Note{}, ErrForbidden
	}

	var target models.NoteVersion
	if err := tx.First(&target, "note_id = ? AND version = ?", note.ID, version).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrVersionNotFound
		}
		return models.Note{}, err
	}

	note.Title = target.Title
	note.Body = target.Body
	if err := tx.Save(&note).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := insertNextVersion(tx, &note, requesterID); err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	notifyGrantees(db, &note, requesterID)

	return note, nil
}

func (s *NoteService) DeleteNote(db *database.Database, id string, requesterID uuid.UUID) error {
	var note models.Note
	if err := db.DB.First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return err
	}

	if !CanWrite(&note, requesterID) {
		return ErrForbidden
	}

	return deleteNoteTx(db, &note)
}

// ForceDeleteNote removes a note regardless of ownership. Reserved for the
// admin console; the route layer gates it behind the admin middleware.
func (s *NoteService) ForceDeleteNote(db *database.Database, id string) error {
	var note models.Note
	if err := db.DB.First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return err
	}

	return deleteNoteTx(db, &note)
}

// deleteNoteTx removes the note with its versions and share grants in one
// transaction, mirroring the relational cascade.
func deleteNoteTx(db *database.Database, note *models.Note) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Where("note_id = ?", note.ID).Delete(&models.NoteVersion{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("note_id = ?", note.ID).Delete(&models.NoteShare{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(note).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// GetNotes lists notes visible to the requester, with filters, pagination
// and a sort allow-list. Inaccessible notes are excluded, never errors.
func (s *NoteService) GetNotes(db *database.Database, params map[string]interface{}) ([]models.Note, int64, error) {
	requesterID, ok := params["requester_id"].(uuid.UUID)
	if !ok {
		return nil, 0, fmt.Errorf("%w: requester_id is required", ErrInvalidInput)
	}

	shared := db.DB.Model(&models.NoteShare{}).
		Select("note_id").
		Where("user_id = ?", requesterID)

	query := db.DB.Model(&models.Note{}).
		Where("author_id = ? OR visibility = ? OR (visibility = ? AND id IN (?))",
			requesterID, models.VisibilityPublic, models.VisibilityShared, shared)

	if authorID, ok := params["author_id"].(string); ok && authorID != "" {
		query = query.Where("author_id = ?", authorID)
	}

	if visStr, ok := params["visibility"].(string); ok && visStr != "" {
		vis, valid := models.VisibilityFromString(visStr)
		if !valid {
			return nil, 0, ErrInvalidVisibility
		}
		query = query.Where("visibility = ?", vis)
	}

	if archived, ok := params["archived"].(bool); ok {
		query = query.Where("archived = ?", archived)
	}

	// Tags are stored JSON-serialized; a quoted LIKE match hits exact tag
	// boundaries. Any-of semantics across the requested tags.
	if tags := models.NormalizeTags(tagsFromData(params["tags"])); len(tags) > 0 {
		tagQuery := db.DB
		for i, tag := range tags {
			pattern := `%"` + tag + `"%`
			if i == 0 {
				tagQuery = tagQuery.Where("tags LIKE ?", pattern)
			} else {
				tagQuery = tagQuery.Or("tags LIKE ?", pattern)
			}
		}
		query = query.Where(tagQuery)
	}

	if q, ok := params["q"].(string); ok && q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(body) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(sortClause(params))

	page, limit := paginationFromParams(params)
	query = query.Offset((page - 1) * limit).Limit(limit)

	var notes []models.Note
	if err := query.Find(&notes).Error; err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// GetSearchSuggestions tokenizes the titles and tags of matching readable
// notes into a deduplicated, capped candidate list.
func (s *NoteService) GetSearchSuggestions(db *database.Database, q string, requesterID uuid.UUID) ([]string, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []string{}, nil
	}

	shared := db.DB.Model(&models.NoteShare{}).
		Select("note_id").
		Where("user_id = ?", requesterID)

	pattern := "%" + q + "%"
	var notes []models.Note
	err := db.DB.Model(&models.Note{}).
		Select("title", "tags").
		Where("author_id = ? OR visibility = ? OR (visibility = ? AND id IN (?))",
			requesterID, models.VisibilityPublic, models.VisibilityShared, shared).
		Where("LOWER(title) LIKE ? OR tags LIKE ?", pattern, pattern).
		Limit(100).
		Find(&notes).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	suggestions := []string{}
	add := func(candidate string) {
		key := strings.ToLower(candidate)
		if len(suggestions) >= maxSearchSuggestions || seen[key] || !strings.Contains(key, q) {
			return
		}
		seen[key] = true
		suggestions = append(suggestions, candidate)
	}

	for _, note := range notes {
		for _, word := range strings.Fields(note.Title) {
			add(word)
		}
		for _, tag := range note.Tags {
			add(tag)
		}
	}

	return suggestions, nil
}

func (s *NoteService) ListVersions(db *database.Database, noteID string, requesterID uuid.UUID) ([]models.NoteVersion, error) {
	if _, err := s.GetNoteById(db, noteID, requesterID); err != nil {
		return nil, err
	}

	var versions []models.NoteVersion
	if err := db.DB.Where("note_id = ?", noteID).Order("version ASC").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (s *NoteService) GetVersion(db *database.Database, noteID string, version int, requesterID uuid.UUID) (models.NoteVersion, error) {
	if _, err := s.GetNoteById(db, noteID, requesterID); err != nil {
		return models.NoteVersion{}, err
	}

	var v models.NoteVersion
	if err := db.DB.First(&v, "note_id = ? AND version = ?", noteID, version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NoteVersion{}, ErrVersionNotFound
		}
		return models.NoteVersion{}, err
	}
	return v, nil
}

// insertNextVersion snapshots the note's current content under the next
// sequence number for this note.
func insertNextVersion(tx *gorm.DB, note *models.Note, createdBy uuid.UUID) error {
	var maxVersion int
	if err := tx.Model(&models.NoteVersion{}).
		Where("note_id = ?", note.ID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error; err != nil {
		return err
	}

	next := models.NoteVersion{
		ID:        uuid.New(),
		NoteID:    note.ID,
		Version:   maxVersion + 1,
		Title:     note.Title,
		Body:      note.Body,
		CreatedBy: createdBy,
	}
	return tx.Create(&next).Error
}

// notifyGrantees dispatches one NOTE_UPDATED notification per user holding
// a share grant on the note. The author never notifies themselves. Failures
// are logged and never surfaced to the caller of the content update.
func notifyGrantees(db *database.Database, note *models.Note, actorID uuid.UUID) {
	var shares []models.NoteShare
	if err := db.DB.Where("note_id = ?", note.ID).Find(&shares).Error; err != nil {
		log.Printf("Failed to load share grants for note %s: %v", note.ID, err)
		return
	}

	for _, share := range shares {
		if share.UserID == actorID {
			continue
		}
		_, err := NotificationServiceInstance.Notify(db, share.UserID, models.NotificationNoteUpdated,
			"Note updated",
			fmt.Sprintf("%q was updated", note.Title),
			map[string]interface{}{
				"note_id":  note.ID.String(),
				"actor_id": actorID.String(),
			})
		if err != nil {
			log.Printf("Failed to notify user %s about note %s: %v", share.UserID, note.ID, err)
		}
	}
}

func tagsFromData(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	default:
		return nil
	}
}

func paginationFromParams(params map[string]interface{}) (page, limit int) {
	page, limit = 1, 20
	if p, ok := params["page"].(int); ok && p > 0 {
		page = p
	}
	if l, ok := params["limit"].(int); ok && l > 0 && l <= 100 {
		limit = l
	}
	return page, limit
}

var allowedSortFields = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
}

func sortClause(params map[string]interface{}) string {
	field := "updated_at"
	if requested, ok := params["sort_by"].(string); ok {
		if mapped, allowed := allowedSortFields[requested]; allowed {
			field = mapped
		}
	}
	dir := "DESC"
	if requested, ok := params["sort_dir"].(string); ok && strings.EqualFold(requested, "asc") {
		dir = "ASC"
	}
	return field + " " + dir
}

var NoteServiceInstance NoteServiceInterface = NewNoteService()
