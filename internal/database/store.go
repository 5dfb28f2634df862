package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Store defines the profile database operations.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertProfile inserts the profile unless a row with the same id already
	// exists. Existing rows are left untouched.
	UpsertProfile(ctx context.Context, profile *Profile) error

	// ListProfiles returns every stored profile in storage order.
	ListProfiles(ctx context.Context) ([]Profile, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) UpsertProfile(ctx context.Context, profile *Profile) error {
	if profile == nil {
		return fmt.Errorf("cannot save nil profile")
	}
	if profile.ID == 0 {
		return fmt.Errorf("profile must have a non-zero id")
	}

	query := `
        INSERT OR IGNORE INTO users (id, username, first_name, last_name)
        VALUES (:id, :username, :first_name, :last_name);
    `

	result, err := s.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving profile", "user_id", profile.ID, "error", err)
		return fmt.Errorf("failed to save profile for user %d: %w", profile.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not retrieve affected rows after saving profile", "user_id", profile.ID, "error", err)
		return nil
	}
	if affected == 0 {
		s.logger.DebugContext(ctx, "Profile already stored", "user_id", profile.ID)
	} else {
		s.logger.InfoContext(ctx, "Profile stored", "user_id", profile.ID, "username", profile.Username)
	}
	return nil
}

func (s *sqlxStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var profiles []Profile
	query := `
        SELECT id,
               COALESCE(username, '') AS username,
               COALESCE(first_name, '') AS first_name,
               COALESCE(last_name, '') AS last_name
        FROM users
        ORDER BY rowid;
    `

	err := s.db.SelectContext(ctx, &profiles, query)
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while listing profiles", "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error listing profiles", "error", err)
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	s.logger.DebugContext(ctx, "Listed profiles", "count", len(profiles))
	return profiles, nil
}

// RunSQLMaintenance executes VACUUM on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
