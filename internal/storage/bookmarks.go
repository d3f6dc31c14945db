package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"debugsweep/internal/scanner"
)

// ErrBookmarkNotFound is returned when no bookmark has the requested ID.
var ErrBookmarkNotFound = errors.New("bookmark not found")

// Bookmark is one saved finding. The statement fields are a snapshot taken
// when the bookmark was created; a later re-scan does not touch them.
type Bookmark struct {
	ID        string                `json:"id"`
	Path      string                `json:"path"`
	Line      int                   `json:"line"`
	Column    int                   `json:"column"`
	Type      scanner.StatementType `json:"type"`
	Severity  scanner.Severity      `json:"severity"`
	Content   string                `json:"content"`
	Note      string                `json:"note"`
	CreatedAt time.Time             `json:"created_at"`
}

// Location renders the bookmark position as path:line:column with a
// 1-based column for display.
func (b Bookmark) Location() string {
	return fmt.Sprintf("%s:%d:%d", b.Path, b.Line, b.Column+1)
}

// Add saves a statement as a bookmark. Bookmarking a location twice
// refreshes the snapshot and note but keeps the original ID and creation
// time.
func (s *Store) Add(st scanner.Statement, note string) (*Bookmark, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	insertSQL := `
		INSERT INTO bookmarks (bookmark_id, path, line, col, statement_type, severity, content, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path, line, col) DO UPDATE SET
			statement_type = excluded.statement_type,
			severity = excluded.severity,
			content = excluded.content,
			note = excluded.note
	`
	_, err := s.db.Exec(insertSQL,
		uuid.New().String(), st.RelPath, st.Line, st.Column,
		string(st.Type), string(st.Severity), st.Content, note, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save bookmark: %w", err)
	}

	s.logger.Debug("bookmark saved", "path", st.RelPath, "line", st.Line)
	return s.byLocation(st.RelPath, st.Line, st.Column)
}

// Get returns the bookmark with the given ID.
func (s *Store) Get(id string) (*Bookmark, error) {
	row := s.db.QueryRow(selectBookmark+" WHERE bookmark_id = ?", id)
	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}
	return b, err
}

// List returns all bookmarks ordered by path, then position.
func (s *Store) List() ([]Bookmark, error) {
	rows, err := s.db.Query(selectBookmark + " ORDER BY path, line, col")
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Remove deletes the bookmark with the given ID. ErrBookmarkNotFound is
// returned when the ID does not exist.
func (s *Store) Remove(id string) error {
	res, err := s.db.Exec("DELETE FROM bookmarks WHERE bookmark_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove bookmark: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}
	return nil
}

// Clear deletes every bookmark and returns how many were removed.
func (s *Store) Clear() (int, error) {
	res, err := s.db.Exec("DELETE FROM bookmarks")
	if err != nil {
		return 0, fmt.Errorf("failed to clear bookmarks: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}
	return int(affected), nil
}

const selectBookmark = `
	SELECT bookmark_id, path, line, col, statement_type, severity, content, note, created_at
	FROM bookmarks`

func (s *Store) byLocation(path string, line, col int) (*Bookmark, error) {
	row := s.db.QueryRow(selectBookmark+" WHERE path = ? AND line = ? AND col = ?", path, line, col)
	return scanBookmark(row)
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row rowScanner) (*Bookmark, error) {
	var b Bookmark
	var typ, severity, createdAt string
	if err := row.Scan(&b.ID, &b.Path, &b.Line, &b.Column, &typ, &severity, &b.Content, &b.Note, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan bookmark row: %w", err)
	}

	b.Type = scanner.StatementType(typ)
	b.Severity = scanner.Severity(severity)

	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for %s: %w", b.ID, err)
	}
	b.CreatedAt = parsed
	return &b, nil
}
