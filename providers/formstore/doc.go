// Package formstore groups the persistence backends for saved intake forms.
// Each subpackage implements [form.Store]:
//
//   - memstore: process-local, for tests and ephemeral servers
//   - filestore: a single JSON document on disk, rewritten on every save
//   - sqlitestore: an append-only SQLite table (modernc.org/sqlite, no cgo)
//   - pgstore: an append-only PostgreSQL table (pgx)
package formstore
