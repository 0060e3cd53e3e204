// Package pgstore keeps every saved form as a JSONB row in PostgreSQL.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leofalp/intake/core/form"
)

// defaultTableName is the table used when no custom name is provided.
const defaultTableName = "intake_forms"

// Querier abstracts the pgx methods the store needs. Both *pgxpool.Pool and
// pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store appends forms to a PostgreSQL table.
type Store struct {
	db        Querier
	tableName string
}

var _ form.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithTableName overrides the default table name. The name is quoted with
// pgx.Identifier since it is interpolated into queries.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.tableName = pgx.Identifier{name}.Sanitize()
	}
}

// New returns a Store that runs its queries on db.
func New(db Querier, opts ...Option) *Store {
	s := &Store{db: db, tableName: defaultTableName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a pool for dsn, ensures the schema and returns the store with
// the pool. The caller closes the pool.
func Connect(ctx context.Context, dsn string, opts ...Option) (*Store, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pgstore: connect: %w", err)
	}

	s := New(pool, opts...)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return s, pool, nil
}

// Save appends data as a new row.
func (s *Store) Save(ctx context.Context, data form.FormData) error {
	document, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("pgstore: encode form: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (document) VALUES ($1)`, s.tableName)
	if _, err := s.db.Exec(ctx, query, document); err != nil {
		return fmt.Errorf("pgstore: insert: %w", err)
	}
	return nil
}

// Latest returns the most recently inserted form.
func (s *Store) Latest(ctx context.Context) (form.FormData, error) {
	query := fmt.Sprintf(`SELECT document FROM %s ORDER BY seq DESC LIMIT 1`, s.tableName)

	var document []byte
	err := s.db.QueryRow(ctx, query).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return form.FormData{}, form.ErrNotFound
	}
	if err != nil {
		return form.FormData{}, fmt.Errorf("pgstore: latest: %w", err)
	}

	var data form.FormData
	if err := json.Unmarshal(document, &data); err != nil {
		return form.FormData{}, fmt.Errorf("pgstore: decode form: %w", err)
	}
	return data, nil
}
