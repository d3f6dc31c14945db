// Package storage persists bookmarked debug statements in a SQLite
// database under the workspace's .debugsweep directory. Bookmarks capture
// a finding at a point in time so it survives re-scans and restarts.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	_ "github.com/mattn/go-sqlite3"
)

// StateDirName is the per-workspace directory holding debugsweep state.
const StateDirName = ".debugsweep"

// dbFileName is the bookmark database file inside the state directory.
const dbFileName = "bookmarks.db"

// Store is a handle to one workspace's bookmark database. It owns the
// connection; callers must Close it.
type Store struct {
	db     *sql.DB
	path   string
	logger hclog.Logger
}

// Open opens the bookmark database for a workspace, creating the state
// directory and schema on first use. A database written by a different
// schema version is refused rather than migrated.
func Open(workspaceRoot string, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("storage")

	stateDir := filepath.Join(workspaceRoot, StateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFileName)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	version, err := schemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}

	switch version {
	case "0":
		logger.Debug("creating bookmark schema", "path", dbPath)
		if err := createSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	case SchemaVersion:
		// Current layout, nothing to do.
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported bookmark schema version %s (want %s)", version, SchemaVersion)
	}

	return &Store{db: db, path: dbPath, logger: logger}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}
