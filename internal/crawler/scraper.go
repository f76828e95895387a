package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"teakeys/internal/config"
	"teakeys/pkg/utils"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

const defaultBufferSizeKb = 4096

// Scraper handles page retrieval with config-driven retry and throttling.
type Scraper struct {
	client       *http.Client
	retryPolicy  *config.RetryPolicy
	limiter      *rate.Limiter
	headers      http.Header
	bufferSizeKb int
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewScraper creates a new scraper instance with default config.
func NewScraper() *Scraper {
	cfg := config.Default()

	return NewScraperWithConfig(&cfg.Retry, cfg.Fetch)
}

// NewScraperWithConfig creates a new scraper with custom retry policy and fetch settings.
func NewScraperWithConfig(retryPolicy *config.RetryPolicy, fetch config.FetchConfig) *Scraper {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if fetch.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(fetch.RequestsPerSecond), max(fetch.Burst, 1))
	}

	bufferSizeKb := fetch.BufferSizeKb
	if bufferSizeKb <= 0 {
		bufferSizeKb = defaultBufferSizeKb
	}

	return &Scraper{
		client: &http.Client{
			Timeout: retryPolicy.GetTimeout(),
		},
		retryPolicy:  retryPolicy,
		limiter:      limiter,
		headers:      utils.NewHTTPHelper().BuildHeaders(fetch.UserAgent, nil),
		bufferSizeKb: bufferSizeKb,
		sleep:        sleepContext,
	}
}

// ScrapeWithMetrics returns (content, statusCode, duration, error).
func (s *Scraper) ScrapeWithMetrics(ctx context.Context, url string) (string, int, time.Duration, error) {
	var lastErr error

	var lastStatusCode int

	totalDuration := time.Duration(0)

	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := s.sleep(ctx, s.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return "", lastStatusCode, totalDuration, err
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return "", lastStatusCode, totalDuration, fmt.Errorf("rate limiter: %w", err)
		}

		startTime := time.Now()
		body, statusCode, err := s.fetchOnce(ctx, url)
		totalDuration += time.Since(startTime)
		lastStatusCode = statusCode

		if err == nil {
			return body, statusCode, totalDuration, nil
		}

		lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, s.retryPolicy.MaxAttempts, err)

		// Only retry transport errors and specific status codes
		if statusCode != 0 && !isRetryableStatus(statusCode) {
			break
		}
	}

	return "", lastStatusCode, totalDuration, lastErr
}

func (s *Scraper) fetchOnce(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = s.headers.Clone()

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// bufferSizeKb is in KB, convert to bytes
	limit := int64(s.bufferSizeKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), resp.StatusCode, nil
}

// Scrape fetches and returns content from the given URL.
func (s *Scraper) Scrape(ctx context.Context, url string) (string, error) {
	content, _, _, err := s.ScrapeWithMetrics(ctx, url)

	return content, err
}

// ReadLocalFile reads content from a local file path.
func (s *Scraper) ReadLocalFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read local file %s: %w", filePath, err)
	}

	return string(content), nil
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	// Retry on temporary failures
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	case http.StatusBadGateway: // 502
		return true
	}

	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
