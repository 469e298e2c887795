package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Open creates the session store: an in-memory SQLite database that lives as
// long as the returned handle. Nothing is written to disk.
func Open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to :memory: is a separate database, so pin the pool to one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS documents (
		  id         INTEGER PRIMARY KEY CHECK (id = 1),
		  filename   TEXT NOT NULL,
		  loaded_at  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS prompts (
		  id            TEXT PRIMARY KEY,
		  position      INTEGER NOT NULL,
		  name          TEXT NOT NULL,
		  type          TEXT NOT NULL,
		  content       TEXT NOT NULL,
		  line_start    INTEGER NOT NULL,
		  line_end      INTEGER NOT NULL,
		  metadata_json TEXT,
		  updated_at    INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_prompts_position ON prompts(position);

		CREATE TABLE IF NOT EXISTS heuristic_results (
		  prompt_id   TEXT PRIMARY KEY REFERENCES prompts(id) ON DELETE CASCADE,
		  result_json TEXT NOT NULL,
		  created_at  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS llm_jobs (
		  id          TEXT PRIMARY KEY,
		  prompt_id   TEXT NOT NULL,
		  status      TEXT NOT NULL,
		  error       TEXT,
		  result_json TEXT,
		  created_at  INTEGER NOT NULL,
		  updated_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_llm_jobs_prompt ON llm_jobs(prompt_id, id DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

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
