package userstore

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/glebarez/sqlite"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the sqlite database at dbPath, applies any pending goose
// migrations from migrationsFS, and returns a ready Store.
func Open(dbPath string, migrationsFS fs.FS) (*Store, *gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("open sql db: %w", err)
	}

	if err := runMigrations(sqlDB, migrationsFS); err != nil {
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return New(db), db, nil
}

func runMigrations(db *sql.DB, migrationsFS fs.FS) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return err
	}
	return nil
}
