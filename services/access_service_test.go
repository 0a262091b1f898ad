package services

import (
	"testing"

	"quill-notes/quill/models"
	"quill-notes/quill/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanWrite(t *testing.T) {
	author := uuid.New()
	other := uuid.New()
	note := &models.Note{ID: uuid.New(), AuthorID: author}

	assert.True(t, CanWrite(note, author))
	assert.False(t, CanWrite(note, other))
}

func TestCanReadTruthTable(t *testing.T) {
	author := uuid.New()
	stranger := uuid.New()

	cases := []struct {
		name       string
		visibility models.Visibility
		requester  uuid.UUID
		hasGrant   bool
		want       bool
	}{
		{"author reads private", models.VisibilityPrivate, author, false, true},
		{"author reads shared", models.VisibilityShared, author, false, true},
		{"author reads public", models.VisibilityPublic, author, false, true},
		{"stranger denied private", models.VisibilityPrivate, stranger, false, false},
		{"stranger denied private despite grant", models.VisibilityPrivate, stranger, true, false},
		{"stranger denied shared without grant", models.VisibilityShared, stranger, false, false},
		{"grantee reads shared", models.VisibilityShared, stranger, true, true},
		{"stranger reads public", models.VisibilityPublic, stranger, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			note := &models.Note{ID: uuid.New(), AuthorID: author, Visibility: tc.visibility}
			assert.Equal(t, tc.want, CanReadWithGrant(note, tc.requester, tc.hasGrant))
		})
	}
}

func TestAccessServiceCanRead_ResolvesGrant(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	author := testutils.CreateTestUser(db, "author@example.com")
	grantee := testutils.CreateTestUser(db, "grantee@example.com")
	stranger := testutils.CreateTestUser(db, "stranger@example.com")

	note := models.Note{
		ID:         uuid.New(),
		AuthorID:   author.ID,
		Title:      "shared note",
		Visibility: models.VisibilityShared,
	}
	assert.NoError(t, db.DB.Create(&note).Error)
	assert.NoError(t, db.DB.Create(&models.NoteShare{
		ID:     uuid.New(),
		NoteID: note.ID,
		UserID: grantee.ID,
	}).Error)

	svc := NewAccessService()

	canRead, err := svc.CanRead(db, &note, grantee.ID)
	assert.NoError(t, err)
	assert.True(t, canRead)

	canRead, err = svc.CanRead(db, &note, stranger.ID)
	assert.NoError(t, err)
	assert.False(t, canRead)

	canRead, err = svc.CanRead(db, &note, author.ID)
	assert.NoError(t, err)
	assert.True(t, canRead)
}
