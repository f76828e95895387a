package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"teakeys/internal/config"
	"teakeys/internal/extractor"
	"teakeys/internal/models"
)

func testClient() *Client {
	return NewClientWithDeps(NewScraperWithConfig(fastPolicy(1), unthrottled()), NewParser(), nil)
}

func fixture(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "keys.html"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	return string(data)
}

func TestFetchDocument_LocalFile(t *testing.T) {
	doc, err := testClient().FetchDocument(context.Background(), config.SourceConfig{
		File: filepath.Join("testdata", "keys.html"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := extractor.NewDefault().Extract(doc)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if m.Title() != "Campus Student Information" || m.Len() != 3 {
		t.Errorf("got title %q with %d keys", m.Title(), m.Len())
	}
}

func TestFetchDocument_MissingLocalFile(t *testing.T) {
	_, err := testClient().FetchDocument(context.Background(), config.SourceConfig{
		File: filepath.Join(t.TempDir(), "nope.html"),
	})

	var ee *models.ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped not-exist error, got %v", err)
	}
}

func TestFetchDocument_FallsBackToBackupURL(t *testing.T) {
	page := fixture(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/primary", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/backup", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	doc, err := testClient().FetchDocument(context.Background(), config.SourceConfig{
		Name:       "campus",
		URL:        srv.URL + "/primary",
		BackupURLs: []string{srv.URL + "/backup"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc == nil {
		t.Fatal("expected document")
	}
}

func TestFetchDocument_AllLocationsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient().FetchDocument(context.Background(), config.SourceConfig{
		Name:       "campus",
		URL:        srv.URL,
		BackupURLs: []string{"ftp://example.com/keys.html"},
	})

	if !errors.Is(err, models.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}

	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Errorf("expected status error in chain, got %v", err)
	}

	if !errors.Is(err, ErrInvalidLocator) {
		t.Errorf("expected invalid locator in chain, got %v", err)
	}
}

func TestURLManager_Candidates(t *testing.T) {
	um := NewURLManager(config.SourceConfig{URL: "https://a", BackupURLs: []string{"", "https://b"}})

	var got []string

	for um.HasMore() {
		u, err := um.NextURL()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got = append(got, u)
	}

	if len(got) != 2 || got[0] != "https://a" || got[1] != "https://b" {
		t.Errorf("unexpected candidates %v", got)
	}

	if _, err := um.NextURL(); !errors.Is(err, ErrAllSourcesExhausted) {
		t.Errorf("expected ErrAllSourcesExhausted, got %v", err)
	}

	um.RecordAttempt("https://a", false, errors.New("boom"), 500, 0)
	um.RecordAttempt("https://b", true, nil, 200, 0)

	stats := um.GetAttemptStats()
	if stats.SuccessfulURLs != 1 || stats.FailedURLs != 1 || stats.TotalAttempts != 2 {
		t.Errorf("unexpected stats %s", stats)
	}

	um.Reset()

	if !um.HasMore() || len(um.GetAttemptLog("https://a")) != 0 {
		t.Error("expected reset state")
	}
}

func TestURLManager_NoCandidates(t *testing.T) {
	if _, err := NewURLManager(config.SourceConfig{}).NextURL(); !errors.Is(err, ErrNoSourcesAvailable) {
		t.Errorf("expected ErrNoSourcesAvailable, got %v", err)
	}
}

func TestURLManager_SourceAccessors(t *testing.T) {
	um := NewURLManager(config.SourceConfig{Name: "campus", File: "keys.html"})

	if got := um.Source().DisplayName(); got != "campus" {
		t.Errorf("expected campus, got %q", got)
	}

	if !um.IsLocal() || um.Source().GetSource() != "keys.html" {
		t.Errorf("expected local source keys.html, got %q", um.Source().GetSource())
	}
}
