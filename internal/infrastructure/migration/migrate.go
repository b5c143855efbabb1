// Package migration applies and authors the versioned SQL schema migrations.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// Source selects where migration files are read from.
// Path wins over FS when both are set.
type Source struct {
	Path string
	FS   fs.FS
}

func (s Source) open() (source.Driver, string, error) {
	if s.Path != "" {
		return nil, "file://" + s.Path, nil
	}
	if s.FS == nil {
		return nil, "", errors.New("migration source requires a path or an embedded filesystem")
	}
	driver, err := iofs.New(s.FS, ".")
	if err != nil {
		return nil, "", fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return driver, "iofs", nil
}

// Migrator runs golang-migrate against a PostgreSQL database
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// New creates a Migrator over an open database handle
func New(db *sql.DB, src Source, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	srcDriver, srcURL, err := src.open()
	if err != nil {
		return nil, err
	}

	var m *migrate.Migrate
	if srcDriver != nil {
		m, err = migrate.NewWithInstance(srcURL, srcDriver, "postgres", dbDriver)
	} else {
		m, err = migrate.NewWithDatabaseInstance(srcURL, "postgres", dbDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{migrate: m, logger: logger}, nil
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	return m.run("up", m.migrate.Up)
}

// Down rolls back every applied migration
func (m *Migrator) Down() error {
	return m.run("down", m.migrate.Down)
}

// Steps applies n migrations, rolling back when n is negative
func (m *Migrator) Steps(n int) error {
	return m.run(fmt.Sprintf("step %d", n), func() error { return m.migrate.Steps(n) })
}

// GoTo migrates up or down to version
func (m *Migrator) GoTo(version uint) error {
	return m.run(fmt.Sprintf("goto %d", version), func() error { return m.migrate.Migrate(version) })
}

func (m *Migrator) run(action string, fn func() error) error {
	m.logger.Info("Running migrations", zap.String("action", action))

	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("Schema already up to date", zap.String("action", action))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", action, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info("Migrations completed",
		zap.String("action", action),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Version returns the applied version. A fresh database reports 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running anything.
// It is the way out of a dirty state after a failed migration.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database drivers
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}
