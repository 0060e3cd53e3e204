package form

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Store.Latest] when nothing has been saved.
var ErrNotFound = errors.New("form: no saved form")

// Store persists saved forms.
type Store interface {
	// Save persists data as a new document.
	Save(ctx context.Context, data FormData) error
	// Latest returns the most recently saved form or ErrNotFound.
	Latest(ctx context.Context) (FormData, error)
}
