package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"personachat/internal/logging"
)

// SQLiteStore archives transcripts in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path. ":memory:" is accepted
// for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// an in-memory database lives only as long as its one connection
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transcripts (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		persona_id TEXT NOT NULL,
		persona_name TEXT NOT NULL,
		model TEXT NOT NULL,
		turns INTEGER NOT NULL,
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transcripts_created ON transcripts(created_at);
	CREATE INDEX IF NOT EXISTS idx_transcripts_persona ON transcripts(persona_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, e *Entry) error {
	prepare(e)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO transcripts (id, session_id, persona_id, persona_name, model, turns, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.PersonaID, e.PersonaName, e.Model, e.Turns, e.Text, e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	logging.StoreDebug("archived transcript %s (%d turns)", e.ID, e.Turns)
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, persona_id, persona_name, model, turns, body, created_at
		 FROM transcripts WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return e, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, persona_id, persona_name, model, turns, body, created_at
		 FROM transcripts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var created int64
	if err := row.Scan(&e.ID, &e.SessionID, &e.PersonaID, &e.PersonaName, &e.Model, &e.Turns, &e.Text, &created); err != nil {
		return nil, err
	}
	e.CreatedAt = time.Unix(0, created).UTC()
	return &e, nil
}
