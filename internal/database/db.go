// Package database stores user profiles in SQLite.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/relaybot/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// busyTimeoutPragma makes writers wait for the lock instead of failing with
// SQLITE_BUSY while VACUUM runs.
const busyTimeoutPragma = "_pragma=busy_timeout(5000)"

// NewDB opens the profile database at path and brings its schema up to date.
// The pool holds a single connection, which serializes profile writes.
func NewDB(path string, logger *slog.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "database")

	db, err := sqlx.Connect("sqlite", withPragmas(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	version, err := migrateProfiles(db.DB, FilePath(path))
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close profile database after migration error", "error", closeErr)
		}
		return nil, err
	}

	log.Info("Profile database ready", "path", path, "schema_version", version)
	return db, nil
}

// CloseDB closes db, logging instead of returning the error so it can be deferred.
func CloseDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("Failed to close profile database", "error", err)
	}
}

// migrateProfiles applies the embedded migrations and returns the resulting
// schema version. The migrator is not closed: that would close db too.
func migrateProfiles(db *sql.DB, name string) (uint, error) {
	if name == "" {
		return 0, errors.New("profile database path is empty")
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	drv, err := sqlite.WithInstance(db, &sqlite.Config{DatabaseName: name})
	if err != nil {
		return 0, fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to migrate profile schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("profile schema version %d is dirty", version)
	}
	return version, nil
}

// FilePath strips the "file:" scheme and query parameters from a SQLite DSN,
// leaving the path of the database file.
func FilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	path, _, _ = strings.Cut(path, "?")

	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}
	return path
}

func withPragmas(dsn string) string {
	if strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + busyTimeoutPragma
	}
	return dsn + "?" + busyTimeoutPragma
}
