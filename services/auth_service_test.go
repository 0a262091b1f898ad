package services

import (
	"errors"
	"testing"

	"quill-notes/quill/models"
	"quill-notes/quill/testutils"

	"github.com/stretchr/testify/assert"
)

func TestHashAndComparePasswords(t *testing.T) {
	svc := NewAuthService("test-secret", 1)

	hash, err := svc.HashPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, svc.ComparePasswords(hash, "correct horse battery staple"))
	assert.Error(t, svc.ComparePasswords(hash, "wrong password"))
}

func TestLogin(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	svc := NewAuthService("test-secret", 1)
	hash, err := svc.HashPassword("s3cretpass")
	assert.NoError(t, err)

	user := models.User{
		Email:        "login@example.com",
		DisplayName:  "Login Tester",
		Role:         models.RoleUser,
		Active:       true,
		PasswordHash: hash,
	}
	assert.NoError(t, db.DB.Create(&user).Error)

	tokenString, err := svc.Login(db, "login@example.com", "s3cretpass")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := svc.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	svc := NewAuthService("test-secret", 1)
	hash, err := svc.HashPassword("s3cretpass")
	assert.NoError(t, err)

	user := models.User{
		Email:        "login@example.com",
		Role:         models.RoleUser,
		Active:       true,
		PasswordHash: hash,
	}
	assert.NoError(t, db.DB.Create(&user).Error)

	_, err = svc.Login(db, "login@example.com", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	// Unknown email looks the same as a bad password.
	_, err = svc.Login(db, "nobody@example.com", "whatever")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLogin_InactiveAccount(t *testing.T) {
	db, close := testutils.SetupTestDB()
	defer close()

	svc := NewAuthService("test-secret", 1)
	hash, err := svc.HashPassword("s3cretpass")
	assert.NoError(t, err)

	user := models.User{
		Email:        "frozen@example.com",
		Role:         models.RoleUser,
		Active:       false,
		PasswordHash: hash,
	}
	assert.NoError(t, db.DB.Create(&user).Error)

	_, err = svc.Login(db, "frozen@example.com", "s3cretpass")
	assert.True(t, errors.Is(err, ErrUserInactive))
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	svc := NewAuthService("test-secret", 1)
	other := NewAuthService("different-secret", 1)

	db, close := testutils.SetupTestDB()
	defer close()

	hash, err := svc.HashPassword("s3cretpass")
	assert.NoError(t, err)
	user := models.User{Email: "t@example.com", Role: models.RoleUser, Active: true, PasswordHash: hash}
	assert.NoError(t, db.DB.Create(&user).Error)

	tokenString, err := svc.Login(db, "t@example.com", "s3cretpass")
	assert.NoError(t, err)

	_, err = other.ValidateToken(tokenString)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
