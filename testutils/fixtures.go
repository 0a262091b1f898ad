package testutils

import (
	"quill-notes/quill/database"
	"quill-notes/quill/models"

	"github.com/google/uuid"
)

// CreateTestUser inserts an active user with the given email.
func CreateTestUser(db *database.Database, email string) models.User {
	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  email,
		Role:         models.RoleUser,
		Active:       true,
		PasswordHash: "not-a-real-hash",
	}
	if err := db.DB.Create(&user).Error; err != nil {
		panic(err)
	}
	return user
}

// CreateTestAdmin inserts an active admin user.
func CreateTestAdmin(db *database.Database, email string) models.User {
	user := CreateTestUser(db, email)
	user.Role = models.RoleAdmin
	if err := db.DB.Save(&user).Error; err != nil {
		panic(err)
	}
	return user
}
