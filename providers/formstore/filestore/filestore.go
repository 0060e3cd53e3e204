// Package filestore saves the current form as a JSON document on disk.
// Each save replaces the previous document.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/leofalp/intake/core/form"
)

// DefaultPath is the document written when no path is configured.
const DefaultPath = "form_data.json"

// Store writes forms to a single JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a Store writing to path, or DefaultPath when path is empty.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

var _ form.Store = (*Store)(nil)

// Path returns the document path.
func (s *Store) Path() string { return s.path }

// Save writes data to a temporary file in the same directory and renames it
// over the document, so readers never see a partial write.
func (s *Store) Save(ctx context.Context, data form.FormData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("filestore: encode form: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("filestore: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("filestore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("filestore: rename: %w", err)
	}

	return nil
}

// Latest reads the document back.
func (s *Store) Latest(ctx context.Context) (form.FormData, error) {
	if err := ctx.Err(); err != nil {
		return form.FormData{}, err
	}

	s.mu.Lock()
	payload, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return form.FormData{}, form.ErrNotFound
	}
	if err != nil {
		return form.FormData{}, fmt.Errorf("filestore: read: %w", err)
	}

	var data form.FormData
	if err := json.Unmarshal(payload, &data); err != nil {
		return form.FormData{}, fmt.Errorf("filestore: decode %s: %w", s.path, err)
	}
	return data, nil
}
