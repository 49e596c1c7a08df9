// Package migrations manages the versioned schema history.
//
// Each revision is a pair of embedded SQL files (NNNN_name.up.sql /
// NNNN_name.down.sql) forming a linear chain. Applying past the head
// or reverting past the baseline is a clean no-op.
//
// # Usage
//
//	m, err := migrations.New(sqlDB)
//	if err := m.Up(); err != nil { ... }
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

// Migrator applies and reverts schema revisions on a single database.
type Migrator struct {
	m *migrate.Migrate
}

// New creates a migrator bound to the given connection. The sqlDB
// parameter should be the underlying *sql.DB from GORM.
func New(sqlDB *sql.DB) (*Migrator, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{m: m}, nil
}

// Up applies all pending revisions. Running at the head is a no-op.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down reverts every applied revision back to the empty schema.
func (mg *Migrator) Down() error {
	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to revert migrations: %w", err)
	}
	return nil
}

// Steps applies n forward revisions (negative n reverts).
func (mg *Migrator) Steps(n int) error {
	if err := mg.m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to step migrations: %w", err)
	}
	return nil
}

// Version reports the currently-applied revision. A zero version with
// applied=false means no revision has run yet.
func (mg *Migrator) Version() (version uint, dirty bool, applied bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, true, nil
}
