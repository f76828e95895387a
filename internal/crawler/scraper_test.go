package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"teakeys/internal/config"
)

func fastPolicy(attempts int) *config.RetryPolicy {
	return &config.RetryPolicy{
		MaxAttempts:       attempts,
		InitialDelayMs:    1,
		MaxDelayMs:        1,
		BackoffMultiplier: 1,
		TimeoutSec:        5,
	}
}

func unthrottled() config.FetchConfig {
	return config.FetchConfig{BufferSizeKb: 64}
}

func TestScraper_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = w.Write([]byte("<p>ok</p>"))
	}))
	defer srv.Close()

	s := NewScraperWithConfig(fastPolicy(3), unthrottled())

	content, status, _, err := s.ScrapeWithMetrics(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if status != http.StatusOK || content != "<p>ok</p>" {
		t.Errorf("got status %d content %q", status, content)
	}

	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestScraper_NoRetryOnNotFound(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewScraperWithConfig(fastPolicy(3), unthrottled())

	_, status, _, err := s.ScrapeWithMetrics(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Fatalf("expected ErrUnexpectedStatusCode, got %v", err)
	}

	if status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}

	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestScraper_SendsUserAgent(t *testing.T) {
	var got string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	fetch := unthrottled()
	fetch.UserAgent = "key-bot/2"

	if _, err := NewScraperWithConfig(fastPolicy(1), fetch).Scrape(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "key-bot/2" {
		t.Errorf("expected user agent key-bot/2, got %q", got)
	}
}

func TestScraper_LimitsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	fetch := unthrottled()
	fetch.BufferSizeKb = 1

	content, err := NewScraperWithConfig(fastPolicy(1), fetch).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(content) != 1024 {
		t.Errorf("expected 1024 bytes, got %d", len(content))
	}
}

func TestScraper_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	policy := fastPolicy(5)
	policy.InitialDelayMs = 10000
	policy.MaxDelayMs = 10000

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewScraperWithConfig(policy, unthrottled()).Scrape(ctx, srv.URL)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 502, 503, 504} {
		if !isRetryableStatus(code) {
			t.Errorf("expected %d to be retryable", code)
		}
	}

	for _, code := range []int{400, 401, 403, 404, 500} {
		if isRetryableStatus(code) {
			t.Errorf("expected %d not to be retryable", code)
		}
	}
}
