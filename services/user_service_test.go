package services

import (
	"errors"
	"testing"

	"quill-notes/quill/models"
	"quill-notes/quill/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newUserServiceForTest() *UserService {
	return NewUserService(NewAuthService("test-secret", 1))
}

func TestRegister(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	svc := newUserServiceForTest()

	user, err := svc.Register(db, "new@example.com", "s3cretpass", "New User")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.Active)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash)

	// The same email registering twice is a conflict.
	_, err = svc.Register(db, "new@example.com", "otherpass", "Imposter")
	assert.True(t, errors.Is(err, ErrEmailExists))

	_, err = svc.Register(db, "", "s3cretpass", "No Email")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestGetUserById(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	svc := newUserServiceForTest()
	user := testutils.CreateTestUser(db, "user@example.com")

	found, err := svc.GetUserById(db, user.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = svc.GetUserById(db, uuid.New().String())
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestUpdateUser_SelfOnly(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	svc := newUserServiceForTest()
	user := testutils.CreateTestUser(db, "user@example.com")
	other := testutils.CreateTestUser(db, "other@example.com")

	updated, err := svc.UpdateUser(db, user.ID.String(), map[string]interface{}{
		"display_name": "Renamed",
		"avatar_url":   "https://example.com/a.png",
	}, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Renamed", updated.DisplayName)
	assert.Equal(t, "https://example.com/a.png", updated.AvatarURL)

	_, err = svc.UpdateUser(db, user.ID.String(), map[string]interface{}{
		"display_name": "Hijacked",
	}, other.ID)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestUpdateUser_PasswordChange(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	authSvc := NewAuthService("test-secret", 1)
	svc := NewUserService(authSvc)
	user := testutils.CreateTestUser(db, "user@example.com")

	updated, err := svc.UpdateUser(db, user.ID.String(), map[string]interface{}{
		"password": "brand-new-pass",
	}, user.ID)
	assert.NoError(t, err)
	assert.NoError(t, authSvc.ComparePasswords(updated.PasswordHash, "brand-new-pass"))
}

func TestGetUsers_Filters(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	svc := newUserServiceForTest()
	active := testutils.CreateTestUser(db, "active@example.com")
	frozen := testutils.CreateTestUser(db, "frozen@example.com")
	_, err := svc.SetActive(db, frozen.ID.String(), false)
	assert.NoError(t, err)

	users, err := svc.GetUsers(db, map[string]interface{}{"active": true})
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, active.ID, users[0].ID)

	users, err = svc.GetUsers(db, map[string]interface{}{"email": "frozen@example.com"})
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, frozen.ID, users[0].ID)
}

func TestSetRole(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	svc := newUserServiceForTest()
	admin := testutils.CreateTestAdmin(db, "admin@example.com")
	user := testutils.CreateTestUser(db, "user@example.com")

	promoted, err := svc.SetRole(db, user.ID.String(), models.RoleAdmin, admin.ID)
	assert.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	// Admins cannot change their own role.
	_, err = svc.SetRole(db, admin.ID.String(), models.RoleUser, admin.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = svc.SetRole(db, user.ID.String(), "SUPERUSER", admin.ID)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSetActive(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	svc := newUserServiceForTest()
	user := testutils.CreateTestUser(db, "user@example.com")

	frozen, err := svc.SetActive(db, user.ID.String(), false)
	assert.NoError(t, err)
	assert.False(t, frozen.Active)

	thawed, err := svc.SetActive(db, user.ID.String(), true)
	assert.NoError(t, err)
	assert.True(t, thawed.Active)
}

func TestDeleteUser(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	svc := newUserServiceForTest()
	user := testutils.CreateTestUser(db, "user@example.com")

	assert.NoError(t, svc.DeleteUser(db, user.ID.String()))
	assert.True(t, errors.Is(svc.DeleteUser(db, user.ID.String()), ErrUserNotFound))
}
