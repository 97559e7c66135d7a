package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pagemark/pagemark/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 2

// Init initializes the SQLite database at baseDir/pagemark.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.pagemark.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "pagemark.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: tenants, projects, assignees, comments, decisions
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS clients (
		  id          INTEGER PRIMARY KEY AUTOINCREMENT,
		  name        TEXT NOT NULL,
		  token       TEXT NOT NULL UNIQUE,
		  widget_key  TEXT NOT NULL UNIQUE,
		  created_at  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS projects (
		  id          INTEGER PRIMARY KEY AUTOINCREMENT,
		  client_id   INTEGER NOT NULL REFERENCES clients(id),
		  name        TEXT NOT NULL,
		  url         TEXT NOT NULL,
		  created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_projects_client
		ON projects(client_id);

		CREATE TABLE IF NOT EXISTS assignees (
		  id          INTEGER PRIMARY KEY AUTOINCREMENT,
		  client_id   INTEGER NOT NULL REFERENCES clients(id),
		  name        TEXT NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_assignees_client_name
		ON assignees(client_id, name);

		CREATE TABLE IF NOT EXISTS comments (
		  id               INTEGER PRIMARY KEY AUTOINCREMENT,
		  client_id        INTEGER,
		  project_id       INTEGER,
		  url              TEXT NOT NULL,
		  page_section     TEXT NOT NULL DEFAULT '',
		  image            TEXT NOT NULL,
		  annotations_json TEXT,
		  status           TEXT NOT NULL DEFAULT 'open',
		  priority         TEXT NOT NULL DEFAULT 'med',
		  priority_number  INTEGER NOT NULL DEFAULT 0,
		  assignee         TEXT NOT NULL DEFAULT 'Unassigned',
		  submitter_name   TEXT,
		  created_at       INTEGER NOT NULL,
		  updated_at       INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_comments_project_status
		ON comments(project_id, status);

		CREATE INDEX IF NOT EXISTS idx_comments_client
		ON comments(client_id);

		CREATE TABLE IF NOT EXISTS decisions (
		  id          INTEGER PRIMARY KEY AUTOINCREMENT,
		  note_text   TEXT NOT NULL,
		  source      TEXT,
		  comment_id  INTEGER,
		  note_index  INTEGER,
		  project_id  INTEGER,
		  created_at  INTEGER NOT NULL,
		  updated_at  INTEGER NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Migration 1 -> 2: per-tenant widget appearance settings
	if version < 2 {
		schema := `
		CREATE TABLE IF NOT EXISTS widget_settings (
		  client_id       INTEGER PRIMARY KEY REFERENCES clients(id),
		  button_text     TEXT NOT NULL DEFAULT 'Feedback',
		  button_color    TEXT NOT NULL DEFAULT '#2563eb',
		  button_position TEXT NOT NULL DEFAULT 'bottom-right',
		  modal_title     TEXT NOT NULL DEFAULT 'Send feedback',
		  modal_subtitle  TEXT NOT NULL DEFAULT '',
		  prefill_name    TEXT NOT NULL DEFAULT '',
		  prefill_email   TEXT NOT NULL DEFAULT ''
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 2 failed: %w", err)
		}
		if err := SetUserVersion(db, 2); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 3 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
