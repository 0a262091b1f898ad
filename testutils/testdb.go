package testutils

import (
	"fmt"
	"sync/atomic"

	"quill-notes/quill/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// SetupTestDB opens an in-memory sqlite database with the full schema
// migrated, for behavior-level service tests that exercise real
// transactions instead of matching SQL strings. Each call gets an
// isolated database; the shared cache keeps it alive across the pooled
// connections of one gorm instance.
func SetupTestDB() (*database.Database, func()) {
	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	if err := database.RunMigrations(gormDB); err != nil {
		panic(err)
	}

	db := &database.Database{DB: gormDB}

	close := func() {
		sqlDB, err := gormDB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return db, close
}
