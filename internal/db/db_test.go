package db

import (
	"testing"
)

func TestInitCreatesSchema(t *testing.T) {
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	version, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}

	// All tables exist
	for _, table := range []string{"clients", "projects", "assignees", "comments", "decisions", "widget_settings"} {
		var name string
		err := database.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing: %v", table, err)
		}
	}
}

func TestInitIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	database, err := Init(dir)
	if err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	database.Close()

	// Re-opening an already-migrated database must not fail or re-run migrations
	database, err = Init(dir)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	defer database.Close()

	version, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}
