package pgstore

import (
	"context"
	"fmt"
)

// createTableSQL creates the forms table. seq orders saves that land within
// the same timestamp.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    seq      BIGSERIAL PRIMARY KEY,
    saved_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    document JSONB NOT NULL
)`

// EnsureSchema creates the table if it does not exist. Production
// deployments should manage the schema with migrations instead.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createTableSQL, s.tableName)); err != nil {
		return fmt.Errorf("pgstore: create table: %w", err)
	}
	return nil
}
