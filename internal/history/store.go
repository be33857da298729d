// Package history persists executed command lines in a local sqlite file
// shared by the REPL and the HTTP front ends.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Sources recorded alongside each line.
const (
	SourceREPL = "repl"
	SourceAPI  = "api"
	SourceCLI  = "cli"
)

// Entry is one recorded command line.
type Entry struct {
	ID        string    `json:"id"`
	Session   string    `json:"session"`
	Source    string    `json:"source"`
	Line      string    `json:"line"`
	Cwd       string    `json:"cwd"`
	CreatedAt time.Time `json:"created_at"`
}

// Store wraps the sqlite database. A zero limit keeps every row.
type Store struct {
	db      *sql.DB
	limit   int
	session string
	mu      sync.Mutex
}

// Open creates (if needed) and opens the history database at path.
func Open(path string, limit int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path must be set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare history dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS history (
	id TEXT PRIMARY KEY,
	session TEXT NOT NULL,
	source TEXT NOT NULL,
	line TEXT NOT NULL,
	cwd TEXT NOT NULL,
	created_at INTEGER NOT NULL
)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{
		db:      db,
		limit:   limit,
		session: uuid.NewString(),
	}, nil
}

// Session identifies this process's entries.
func (s *Store) Session() string { return s.session }

// Add records a line. Blank lines are ignored. Missing ID, session and
// timestamp are filled in, and the table is trimmed to the store limit.
func (s *Store) Add(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.Line) == "" {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Session == "" {
		e.Session = s.session
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, session, source, line, cwd, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Session, e.Source, e.Line, e.Cwd, e.CreatedAt.UnixNano()); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	if s.limit > 0 {
		return s.trimLocked(ctx, s.limit)
	}
	return nil
}

// Recent returns up to limit entries ordered oldest to newest. A limit
// of zero or less returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, session, source, line, cwd, created_at FROM history ORDER BY rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e     Entry
			nanos int64
		)
		if err := rows.Scan(&e.ID, &e.Session, &e.Source, &e.Line, &e.Cwd, &nanos); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.CreatedAt = time.Unix(0, nanos)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Lines returns the recent command lines only, oldest first.
func (s *Store) Lines(ctx context.Context, limit int) ([]string, error) {
	entries, err := s.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Line)
	}
	return lines, nil
}

// Trim deletes all but the newest keep entries.
func (s *Store) Trim(ctx context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trimLocked(ctx, keep)
}

func (s *Store) trimLocked(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM history WHERE rowid NOT IN (SELECT rowid FROM history ORDER BY rowid DESC LIMIT ?)`,
		keep); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
