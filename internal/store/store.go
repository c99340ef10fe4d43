// Package store persists tasks, daily entries, templates and profiles in
// SQLite. Daily items are denormalized rows keyed by profile, date key
// and task id, so the synchronizer can patch one task's record without
// rewriting a whole entry.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS profiles (
		profile_id  TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	INSERT OR IGNORE INTO profiles (profile_id, name) VALUES ('default', 'Default');

	CREATE TABLE IF NOT EXISTS tasks (
		profile_id       TEXT NOT NULL DEFAULT 'default',
		task_id          TEXT NOT NULL,
		title            TEXT NOT NULL,
		task_group       TEXT NOT NULL DEFAULT 'General',
		meta             TEXT NOT NULL DEFAULT '',
		recurrence_type  TEXT NOT NULL,
		days_of_week     TEXT NOT NULL DEFAULT '[]',
		start_date       TEXT NOT NULL DEFAULT '',
		end_date         TEXT NOT NULL DEFAULT '',
		value_type       TEXT NOT NULL DEFAULT 'bool',
		default_value    TEXT NOT NULL DEFAULT 'false',
		sort_order       INTEGER NOT NULL DEFAULT 0,
		active           INTEGER NOT NULL DEFAULT 1,
		progress_enabled INTEGER NOT NULL DEFAULT 0,
		progress_target  REAL NOT NULL DEFAULT 0,
		progress_period  TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL,
		PRIMARY KEY (profile_id, task_id)
	);

	CREATE TABLE IF NOT EXISTS daily_entries (
		profile_id  TEXT NOT NULL DEFAULT 'default',
		date_key    TEXT NOT NULL,
		date        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (profile_id, date_key)
	);

	CREATE TABLE IF NOT EXISTS daily_items (
		profile_id   TEXT NOT NULL,
		date_key     TEXT NOT NULL,
		task_id      TEXT NOT NULL,
		title        TEXT NOT NULL,
		task_group   TEXT NOT NULL DEFAULT 'General',
		meta         TEXT NOT NULL DEFAULT '',
		value_type   TEXT NOT NULL DEFAULT 'bool',
		value        TEXT NOT NULL DEFAULT 'null',
		completed_at TEXT,
		sort_order   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (profile_id, date_key, task_id)
	);

	CREATE INDEX IF NOT EXISTS idx_items_task ON daily_items(profile_id, task_id, date_key);

	CREATE TABLE IF NOT EXISTS templates (
		template_id      TEXT PRIMARY KEY,
		title            TEXT NOT NULL,
		task_group       TEXT NOT NULL DEFAULT 'General',
		meta             TEXT NOT NULL DEFAULT '',
		recurrence_type  TEXT NOT NULL,
		days_of_week     TEXT NOT NULL DEFAULT '[]',
		start_date       TEXT NOT NULL DEFAULT '',
		end_date         TEXT NOT NULL DEFAULT '',
		value_type       TEXT NOT NULL DEFAULT 'bool',
		default_value    TEXT NOT NULL DEFAULT 'false',
		sort_order       INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/orbit/orbit.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "orbit", "orbit.db"), nil
}

// encodeValue serializes a recorded item value (bool, number, string or
// nil) as JSON text for the value column.
func encodeValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	return string(data), nil
}

func decodeValue(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("decode value %q: %w", raw, err)
	}
	return v, nil
}

func encodeDays(days []int) (string, error) {
	if days == nil {
		days = []int{}
	}
	data, err := json.Marshal(days)
	if err != nil {
		return "", fmt.Errorf("encode days: %w", err)
	}
	return string(data), nil
}

func decodeDays(raw string) ([]int, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var days []int
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil, fmt.Errorf("decode days %q: %w", raw, err)
	}
	return days, nil
}

func parseTime(raw string) time.Time {
	t, _ := time.Parse(time.RFC3339, raw)
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
