package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/leofalp/intake/core/extract"
	"github.com/leofalp/intake/core/form"
	"github.com/leofalp/intake/core/schema"
	"github.com/leofalp/intake/providers/formstore/memstore"
)

type stubExtractor struct {
	mu      sync.Mutex
	record  *extract.Record
	err     error
	sources []string
	block   chan struct{}
	started chan struct{}
}

func (s *stubExtractor) Extract(_ context.Context, source string) (*extract.Record, error) {
	s.mu.Lock()
	s.sources = append(s.sources, source)
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		<-s.block
	}
	return s.record, s.err
}

var ana = &extract.Record{
	Name: "Ana", IDNumber: 7, Age: 30, Gender: extract.GenderFemale, Nationality: "PT",
	Consent: true, Allergy: "dust", Comments: "none",
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, ex form.Extractor) (*httptest.Server, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	svc := form.NewService(ex, form.WithStore(store), form.WithLogger(quiet()))
	srv := httptest.NewServer(New(svc, WithLogger(quiet())))
	t.Cleanup(srv.Close)
	return srv, store
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubExtractor{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security header")
	}
}

func TestNewSession(t *testing.T) {
	srv, _ := newTestServer(t, &stubExtractor{})

	resp, body := post(t, srv.URL+"/api/v1/sessions", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	id, _ := body["session_id"].(string)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("session_id %q is not a UUID: %v", id, err)
	}
}

func TestSchema(t *testing.T) {
	srv, _ := newTestServer(t, &stubExtractor{})

	resp, err := http.Get(srv.URL + "/api/v1/schema")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	required, _ := doc["required"].([]any)
	if len(required) != len(schema.IntakeV1.Required()) {
		t.Errorf("required = %v", required)
	}
}

func TestAutofill_Success(t *testing.T) {
	srv, _ := newTestServer(t, &stubExtractor{record: ana})

	resp, body := post(t, srv.URL+"/api/v1/sessions/s1/autofill", `{"text":"Ana, 30, PT"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}

	want := map[string]any{
		"ok":      true,
		"message": "Form auto-filled successfully.",
		"form": map[string]any{
			"name": "Ana", "id_number": "7", "age": "30", "gender": "Female", "nationality": "PT",
			"consent": true, "smoke": false, "allergy": "dust", "comments": "none",
		},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestAutofill_Exhausted(t *testing.T) {
	exhausted := &extract.ExhaustedError{
		Attempts: 3,
		Last:     &extract.AttemptError{Attempt: 3, Kind: extract.FailureParse, Err: io.ErrUnexpectedEOF},
	}
	srv, _ := newTestServer(t, &stubExtractor{err: exhausted})

	resp, body := post(t, srv.URL+"/api/v1/sessions/s1/autofill", `{"text":"???"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["ok"] != false || body["message"] != "Failed after 3 attempts. Last error: Parsing error: unexpected EOF" {
		t.Errorf("body = %v", body)
	}
}

func TestAutofill_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, &stubExtractor{record: ana})

	tests := []struct {
		name string
		body string
	}{
		{"not json", `text=hello`},
		{"unknown field", `{"text":"a","extra":1}`},
		{"empty text", `{"text":"   "}`},
		{"unknown format", `{"text":"a","format":"pdf"}`},
		{"url format disabled", `{"text":"https://example.com","format":"url"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, srv.URL+"/api/v1/sessions/s1/autofill", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, body = %v", resp.StatusCode, body)
			}
		})
	}
}

func TestAutofill_HTMLIsSanitized(t *testing.T) {
	ex := &stubExtractor{record: ana}
	srv, _ := newTestServer(t, ex)

	payload, _ := json.Marshal(autofillRequest{
		Text:   `<p>Ana <b>30</b></p><script>alert("x")</script>`,
		Format: "html",
	})
	resp, _ := post(t, srv.URL+"/api/v1/sessions/s1/autofill", string(payload))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	ex.mu.Lock()
	defer ex.mu.Unlock()
	if len(ex.sources) != 1 || strings.Contains(ex.sources[0], "alert") || !strings.Contains(ex.sources[0], "**30**") {
		t.Errorf("source = %q", ex.sources)
	}
}

func TestAutofill_Busy(t *testing.T) {
	ex := &stubExtractor{record: ana, block: make(chan struct{}), started: make(chan struct{})}
	srv, _ := newTestServer(t, ex)

	done := make(chan int, 1)
	go func() {
		resp, err := http.Post(srv.URL+"/api/v1/sessions/s1/autofill", "application/json", strings.NewReader(`{"text":"first"}`))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	<-ex.started

	resp, _ := post(t, srv.URL+"/api/v1/sessions/s1/autofill", `{"text":"second"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}

	close(ex.block)
	if status := <-done; status != http.StatusOK {
		t.Errorf("first request status = %d", status)
	}
}

func TestForms_SaveAndLatest(t *testing.T) {
	srv, store := newTestServer(t, &stubExtractor{})

	resp, err := http.Get(srv.URL + "/api/v1/forms/latest")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("latest before save = %d, want 404", resp.StatusCode)
	}

	saveResp, body := post(t, srv.URL+"/api/v1/forms",
		`{"name":"<b>Ana</b>","id_number":"7","age":"30","gender":"Female","nationality":"PT","consent":true,"smoke":false,"allergy":"dust","comments":"O'Brien <script>x</script>referral"}`)
	if saveResp.StatusCode != http.StatusCreated || body["message"] != "Form saved." {
		t.Fatalf("save = %d %v", saveResp.StatusCode, body)
	}

	saved, _ := store.Latest(context.Background())
	if saved.Name != "Ana" {
		t.Errorf("name = %q, want markup stripped", saved.Name)
	}
	if saved.Comments != "O'Brien referral" {
		t.Errorf("comments = %q", saved.Comments)
	}

	resp, err = http.Get(srv.URL + "/api/v1/forms/latest")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var latest form.FormData
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || latest.Name != "Ana" || !latest.Consent {
		t.Errorf("latest = %d %+v", resp.StatusCode, latest)
	}
}

func TestForms_BodyLimit(t *testing.T) {
	svc := form.NewService(&stubExtractor{}, form.WithStore(memstore.New()), form.WithLogger(quiet()))
	srv := httptest.NewServer(New(svc, WithLogger(quiet()), WithMaxBodyBytes(64)))
	defer srv.Close()

	big := `{"comments":"` + strings.Repeat("x", 200) + `"}`
	resp, err := http.Post(srv.URL+"/api/v1/forms", "application/json", bytes.NewBufferString(big))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	svc := form.NewService(&stubExtractor{}, form.WithLogger(quiet()))
	s := New(svc, WithLogger(quiet()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.ListenAndServe(ctx, "127.0.0.1:0"); err != nil {
		t.Errorf("ListenAndServe after cancel = %v", err)
	}
}
