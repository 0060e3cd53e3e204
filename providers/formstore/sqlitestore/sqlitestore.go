// Package sqlitestore keeps every saved form as a row in SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/leofalp/intake/core/form"
)

// DefaultPath is the database file used when no path is configured.
const DefaultPath = "intake.db"

const createTableSQL = `CREATE TABLE IF NOT EXISTS intake_forms (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    saved_at TEXT NOT NULL,
    document TEXT NOT NULL
)`

// Store appends forms to the intake_forms table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ form.Store = (*Store)(nil)

// Open opens (or creates) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open: %w", err)
	}
	// Every connection to ":memory:" is a distinct database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=10000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlitestore: %s: %w", pragma, err)
		}
	}

	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and ensures the schema.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("sqlitestore: create table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends data as a new row.
func (s *Store) Save(ctx context.Context, data form.FormData) error {
	document, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sqlitestore: encode form: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO intake_forms (saved_at, document) VALUES (?, ?)`,
		s.now().UTC().Format(time.RFC3339Nano), string(document),
	)
	if err != nil {
		return fmt.Errorf("sqlitestore: insert: %w", err)
	}
	return nil
}

// Latest returns the most recently inserted form.
func (s *Store) Latest(ctx context.Context) (form.FormData, error) {
	var document string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM intake_forms ORDER BY id DESC LIMIT 1`,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return form.FormData{}, form.ErrNotFound
	}
	if err != nil {
		return form.FormData{}, fmt.Errorf("sqlitestore: latest: %w", err)
	}

	var data form.FormData
	if err := json.Unmarshal([]byte(document), &data); err != nil {
		return form.FormData{}, fmt.Errorf("sqlitestore: decode form: %w", err)
	}
	return data, nil
}

// Count returns the number of saved forms.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM intake_forms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlitestore: count: %w", err)
	}
	return n, nil
}
