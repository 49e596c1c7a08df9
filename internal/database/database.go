package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openshelf/openshelf/internal/migrations"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the sqlite database at dbPath and brings its schema
// to the latest revision.
//
// The DSN forces immediate transactions so concurrent writers serialize
// at BEGIN instead of deadlocking on lock upgrades; the conditional
// status updates (loan, redeem) rely on this.
func NewDatabase(dbPath string) (*Database, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", dbPath)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection: %w", err)
	}

	migrator, err := migrations.New(sqlDB)
	if err != nil {
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, err
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrator returns a migrator bound to this database, for the migrate
// subcommand and tests that move between revisions.
func (d *Database) Migrator() (*migrations.Migrator, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, err
	}
	return migrations.New(sqlDB)
}
