package services

import (
	"errors"
	"testing"

	"quill-notes/quill/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// Store failures must surface as plain errors, never be misreported as
// the not-found or forbidden outcomes.

func TestGetNoteById_StoreErrorIsNotNotFound(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT \* FROM "notes"`).WillReturnError(errors.New("connection reset"))

	svc := NewNoteService()
	_, err := svc.GetNoteById(db, uuid.New().String(), uuid.New())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoteNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadCount_StoreErrorPropagates(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications"`).WillReturnError(errors.New("connection reset"))

	svc := NewNotificationService()
	_, err := svc.UnreadCount(db, uuid.New())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotificationNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNote_StoreErrorRollsBack(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "notes"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	svc := NewNoteService()
	_, err := svc.CreateNote(db, map[string]interface{}{
		"title":     "doomed",
		"author_id": uuid.New().String(),
	})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
