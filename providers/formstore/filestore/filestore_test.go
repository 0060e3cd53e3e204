package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/intake/core/form"
)

func TestNew_DefaultPath(t *testing.T) {
	if got := New("").Path(); got != "form_data.json" {
		t.Errorf("Path() = %q", got)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "form_data.json")
	s := New(path)

	if _, err := s.Latest(ctx); !errors.Is(err, form.ErrNotFound) {
		t.Fatalf("Latest on missing file = %v, want ErrNotFound", err)
	}

	first := form.FormData{Name: "Ana", IDNumber: "7", Age: "30", Gender: "Female", Consent: true}
	second := form.FormData{Name: "Bo", IDNumber: "8", Age: "41", Gender: "Male", Smoke: true}

	for _, data := range []form.FormData{first, second} {
		if err := s.Save(ctx, data); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("latest mismatch (-want +got):\n%s", diff)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the document", len(entries))
	}
}

func TestStore_DocumentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := New(path).Save(context.Background(), form.FormData{Name: "Ana"}); err != nil {
		t.Fatal(err)
	}

	raw, _ := os.ReadFile(path)
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"name", "id_number", "age", "gender", "nationality", "consent", "smoke", "allergy", "comments"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing key %q", key)
		}
	}
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()

	missingDir := New(filepath.Join(t.TempDir(), "nope", "form.json"))
	if err := missingDir.Save(ctx, form.FormData{}); err == nil {
		t.Error("expected error for missing directory")
	}

	corrupt := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(corrupt, []byte("{not json"), 0o600)
	if _, err := New(corrupt).Latest(ctx); err == nil || errors.Is(err, form.ErrNotFound) {
		t.Errorf("Latest on corrupt file = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := New(filepath.Join(t.TempDir(), "x.json")).Save(cancelled, form.FormData{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Save with cancelled ctx = %v", err)
	}
}
