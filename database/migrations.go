package database

import (
	"log"

	"quill-notes/quill/models"

	"gorm.io/gorm"
)

// RunMigrations runs database migrations to ensure tables are up to date.
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Note{},
		&models.NoteVersion{},
		&models.NoteShare{},
		&models.Notification{},
	)

	if err != nil {
		log.Printf("Migration failed: %v", err)
		return err
	}

	return nil
}
