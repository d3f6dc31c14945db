package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the bookmark store layout this build reads and writes.
// Open refuses databases written by a different version.
const SchemaVersion = "1"

const createBookmarksTable = `
CREATE TABLE bookmarks (
    bookmark_id TEXT PRIMARY KEY,                -- UUID
    path TEXT NOT NULL,                          -- workspace-relative, slash separated
    line INTEGER NOT NULL,                       -- 1-based line number
    col INTEGER NOT NULL,                        -- 0-based byte offset into the line
    statement_type TEXT NOT NULL,                -- var_dump, dd, error_log, ...
    severity TEXT NOT NULL,                      -- info, warning, error
    content TEXT NOT NULL,                       -- statement text captured at bookmark time
    note TEXT NOT NULL DEFAULT '',               -- free-form user annotation
    created_at TEXT NOT NULL,                    -- ISO 8601
    UNIQUE(path, line, col)
)
`

const createStoreMetadataTable = `
CREATE TABLE store_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

// createSchema creates the bookmark tables and indexes in one transaction
// and records the schema version.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"bookmarks", createBookmarksTable},
		{"store_metadata", createStoreMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	// No explicit indexes: the UNIQUE(path, line, col) constraint already
	// backs both location lookups and path-ordered listing.

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `INSERT INTO store_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`
	if _, err := tx.Exec(bootstrapSQL, SchemaVersion, now); err != nil {
		return fmt.Errorf("failed to bootstrap store_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// schemaVersion retrieves the recorded schema version. Returns "0" for a
// database with no metadata table yet.
func schemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='store_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check store_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil // New database
	}

	var version string
	err = db.QueryRow("SELECT value FROM store_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in store_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}
