package datastore

import (
	"fmt"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bkubisiak/birdr-go/internal/conf"
)

// SQLiteStore implements the datastore Interface backed by a local SQLite
// database file.
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Database.Path == "" {
		return validationError("database path is not configured", "database.path", "")
	}
	return nil
}

// Open sets up the SQLite database connection and performs schema migration.
// Running it against an existing, up-to-date file is a no-op.
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	dir, fileName := filepath.Split(store.Settings.Database.Path)
	basePath, err := conf.EnsureDirectory(dir)
	if err != nil {
		return err
	}
	absoluteFilePath := filepath.Join(basePath, fileName)

	// WAL keeps readers unblocked during writes; the busy timeout makes a
	// second writer retry on lock contention instead of failing outright.
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", absoluteFilePath)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return dbError(err, "open", "path", absoluteFilePath)
	}

	store.DB = db
	return performAutoMigration(db)
}

// Close releases the underlying database connection.
func (store *SQLiteStore) Close() error {
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return dbError(err, "close")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close")
	}
	return nil
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Category{},
		&Species{},
		&Location{},
		&Checklist{},
		&Sighting{},
		&ReferenceList{},
	); err != nil {
		return dbError(err, "auto-migrate")
	}
	return nil
}
