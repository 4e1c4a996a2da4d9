// Package journal keeps a sqlite log of every workflow action.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	rfidclone "github.com/allbin/go-rfidclone"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned after Close
var ErrClosed = errors.New("journal closed")

// Store is a sqlite-backed rfidclone.Journal
type Store struct {
	db *sql.DB
}

var _ rfidclone.Journal = (*Store)(nil)

// Row is one stored entry
type Row struct {
	ID      int64
	At      time.Time
	Action  string
	Port    string
	From    string
	To      string
	UID     string
	Outcome string
	Message string
}

// Open opens or creates the journal at path, creating parent directories
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	// one connection keeps writes ordered and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS attempts(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TEXT NOT NULL,
		action TEXT NOT NULL,
		port TEXT NOT NULL,
		from_state TEXT NOT NULL,
		to_state TEXT NOT NULL,
		uid TEXT NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("creating attempts table: %w", err)
	}
	return nil
}

// Record appends e
func (s *Store) Record(ctx context.Context, e rfidclone.Entry) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO attempts(at, action, port, from_state, to_state, uid, outcome, message)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?);`,
		e.At.UTC().Format(time.RFC3339Nano), e.Action.String(), e.Port,
		e.From.String(), e.To.String(), e.UID, e.Outcome, e.Message)
	if err != nil {
		return fmt.Errorf("recording attempt: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or less
// returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Row, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, at, action, port, from_state, to_state, uid, outcome, message
		FROM attempts ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var at string
		if err := rows.Scan(&r.ID, &at, &r.Action, &r.Port, &r.From, &r.To, &r.UID, &r.Outcome, &r.Message); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		if r.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("attempt %d: bad timestamp %q: %w", r.ID, at, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database. Further calls fail with ErrClosed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
