package database

import (
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"strings"
	"warden/internal/types"
)

const (
	sqliteOptions = "_busy_timeout=5000&_journal_mode=WAL"
)

func Open(dir string) (*gorm.DB, error) {
	dsn := dir
	if !strings.Contains(dsn, "?") {
		dsn += "?" + sqliteOptions
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open DB: "+dir)
	}

	if err := db.AutoMigrate(
		&types.Document{},
		&types.DirectoryUser{}); err != nil {
		return nil, err
	}

	return db, nil
}
