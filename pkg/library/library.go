// Package library stores user scores in SQLite
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/james-see/wavetone/pkg/logger"
	"github.com/james-see/wavetone/pkg/score"
)

var (
	// ErrNotFound is returned when no score matches an id or title
	ErrNotFound = errors.New("score not found")
	// ErrExists is returned when saving a title that is already taken
	ErrExists = errors.New("score title already exists")
	// ErrInvalidScore is returned when saving text that is not a playable score
	ErrInvalidScore = errors.New("invalid score")
)

// Entry is a saved score
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source,omitempty"`
	Parts     int       `json:"parts"`
	BPM       float64   `json:"bpm"`
	Seconds   float64   `json:"seconds"`
	PlayCount int       `json:"play_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Score parses the stored source
func (e *Entry) Score() (*score.Score, error) {
	s, err := score.ParseString(e.Source)
	if err != nil {
		return nil, fmt.Errorf("stored score %s: %w", e.Title, err)
	}
	if s.Title == "" {
		s.Title = e.Title
	}
	return s, nil
}

// Library is a score store backed by one SQLite file
type Library struct {
	db   *sql.DB
	path string
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS scores (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL UNIQUE COLLATE NOCASE,
		source TEXT NOT NULL,
		parts INTEGER DEFAULT 0,
		bpm REAL DEFAULT 0,
		seconds REAL DEFAULT 0,
		play_count INTEGER DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scores_created ON scores(created_at)`,
}

// Open opens or creates the library at path
func Open(path string) (*Library, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create library directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate library: %w", err)
		}
	}

	logger.Debugf("library opened: %s", path)
	return &Library{db: db, path: path}, nil
}

// Path returns the database file path
func (l *Library) Path() string {
	return l.path
}

// Close closes the database
func (l *Library) Close() error {
	return l.db.Close()
}

// Save stores score text under title; an empty title falls back to the score's own title
func (l *Library) Save(ctx context.Context, title, source string) (*Entry, error) {
	s, err := score.ParseString(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScore, err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = s.Title
	}
	if title == "" {
		return nil, fmt.Errorf("%w: score needs a title", ErrInvalidScore)
	}

	var count int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores WHERE title = ?`, title).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to check title: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %q", ErrExists, title)
	}

	e := &Entry{
		ID:        uuid.NewString(),
		Title:     title,
		Source:    source,
		Parts:     len(s.Parts),
		BPM:       s.BPM,
		Seconds:   s.Duration().Seconds(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := l.insert(ctx, e); err != nil {
		return nil, err
	}

	logger.Infof("saved score %q as %s", e.Title, e.ID)
	return e, nil
}

// insert writes e; the title constraint still catches writers that raced past the count check
func (l *Library) insert(ctx context.Context, e *Entry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO scores (id, title, source, parts, bpm, seconds, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Source, e.Parts, e.BPM, e.Seconds, e.CreatedAt.Format(time.RFC3339))
	var serr *sqlite.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return fmt.Errorf("%w: %q", ErrExists, e.Title)
	default:
		return fmt.Errorf("failed to save score: %w", err)
	}
}

const selectColumns = `SELECT id, title, source, parts, bpm, seconds, play_count, created_at FROM scores`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var created string
	if err := row.Scan(&e.ID, &e.Title, &e.Source, &e.Parts, &e.BPM, &e.Seconds, &e.PlayCount, &created); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", created, err)
	}
	e.CreatedAt = t
	return &e, nil
}

// Get finds a score by id or case-insensitive title
func (l *Library) Get(ctx context.Context, idOrTitle string) (*Entry, error) {
	row := l.db.QueryRowContext(ctx, selectColumns+` WHERE id = ? OR title = ? LIMIT 1`, idOrTitle, idOrTitle)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, idOrTitle)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load score: %w", err)
	}
	return e, nil
}

// List returns every score, oldest first, without sources
func (l *Library) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, selectColumns+` ORDER BY created_at, title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read score: %w", err)
		}
		e.Source = ""
		out = append(out, *e)
	}
	return out, rows.Err()
}

// MarkPlayed increments the play counter of a score
func (l *Library) MarkPlayed(ctx context.Context, id string) error {
	res, err := l.db.ExecContext(ctx, `UPDATE scores SET play_count = play_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

// Delete removes a score by id or title
func (l *Library) Delete(ctx context.Context, idOrTitle string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM scores WHERE id = ? OR title = ?`, idOrTitle, idOrTitle)
	if err != nil {
		return fmt.Errorf("failed to delete score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, idOrTitle)
	}
	logger.Infof("deleted score %q", idOrTitle)
	return nil
}
