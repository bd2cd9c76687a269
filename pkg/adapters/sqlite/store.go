// Package sqlite implements the record store ports on SQLite.
//
// A single Store satisfies IdentityStore, OperatorStore, InviteStore,
// FeedbackStore, ReviewStore and DirectoryStore. The schema is created on
// open; reference data (roles, workshops, employees) is loaded with ApplySeed.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	_ "modernc.org/sqlite"
)

// Fixed width so that text comparison orders chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the SQLite backed record store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open creates the parent directory if needed, opens the database in WAL
// mode and runs migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS identities (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id INTEGER NOT NULL UNIQUE,
			phone       TEXT    NOT NULL DEFAULT '',
			created_at  TEXT    NOT NULL
		);

		CREATE TABLE IF NOT EXISTS roles (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS permissions (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS role_permissions (
			role_id       INTEGER NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			permission_id INTEGER NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
			PRIMARY KEY (role_id, permission_id)
		);

		CREATE TABLE IF NOT EXISTS workshops (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			slug     TEXT NOT NULL UNIQUE,
			name     TEXT NOT NULL,
			maps_url TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS contact_methods (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS operators (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			identity_id INTEGER NOT NULL UNIQUE REFERENCES identities(id),
			role_id     INTEGER NOT NULL REFERENCES roles(id),
			workshop_id INTEGER REFERENCES workshops(id),
			full_name   TEXT    NOT NULL,
			created_at  TEXT    NOT NULL
		);

		CREATE TABLE IF NOT EXISTS invites (
			id                TEXT    PRIMARY KEY,
			operator_id       INTEGER NOT NULL REFERENCES operators(id),
			phone             TEXT    NOT NULL DEFAULT '',
			activations       INTEGER NOT NULL DEFAULT 0,
			activations_limit INTEGER NOT NULL DEFAULT 1,
			created_at        TEXT    NOT NULL
		);

		CREATE TABLE IF NOT EXISTS feedback_requests (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			identity_id       INTEGER NOT NULL REFERENCES identities(id),
			workshop_id       INTEGER NOT NULL REFERENCES workshops(id),
			operator_id       INTEGER REFERENCES operators(id),
			contact_method_id INTEGER REFERENCES contact_methods(id),
			reason            TEXT,
			taken_at          TEXT,
			completed_at      TEXT,
			created_at        TEXT    NOT NULL
		);

		CREATE TABLE IF NOT EXISTS reviews (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			identity_id INTEGER NOT NULL REFERENCES identities(id),
			workshop_id INTEGER NOT NULL REFERENCES workshops(id),
			text        TEXT,
			rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			created_at  TEXT    NOT NULL,
			UNIQUE (identity_id, workshop_id)
		);

		CREATE INDEX IF NOT EXISTS idx_invites_created   ON invites(created_at);
		CREATE INDEX IF NOT EXISTS idx_feedback_identity ON feedback_requests(identity_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_feedback_workshop ON feedback_requests(workshop_id);
		CREATE INDEX IF NOT EXISTS idx_operators_role    ON operators(role_id, workshop_id);
	`)
	return err
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t := parseTime(v.String)
	return &t
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

// notFound maps sql.ErrNoRows to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}
