package crawler

import (
	"errors"
	"fmt"
	"time"

	"teakeys/internal/config"
	"teakeys/internal/logger"
	"teakeys/pkg/utils"
)

const maxLoggedErrorLen = 200

// URL manager errors.
var (
	ErrNoSourcesAvailable  = errors.New("no sources available")
	ErrAllSourcesExhausted = errors.New("all sources exhausted")
)

// URLManager walks the candidate locations of one source (primary URL, then
// backups, or a single local file) and records every attempt.
type URLManager struct {
	attemptLog map[string][]AttemptResult
	source     config.SourceConfig
	candidates []string
	next       int
}

// AttemptResult records the result of a URL fetch attempt.
type AttemptResult struct {
	Timestamp  time.Time
	URL        string
	Error      string
	Attempt    int
	Duration   time.Duration
	StatusCode int
	Success    bool
}

// NewURLManager creates a new URL manager for src.
func NewURLManager(src config.SourceConfig) *URLManager {
	var candidates []string

	if src.IsLocalFile() {
		candidates = []string{src.File}
	} else {
		for _, u := range src.GetAllURLs() {
			if u != "" {
				candidates = append(candidates, u)
			}
		}
	}

	return &URLManager{
		source:     src,
		candidates: candidates,
		attemptLog: make(map[string][]AttemptResult),
	}
}

// NextURL returns the next location to try. For local files the location is the file path.
func (um *URLManager) NextURL() (string, error) {
	if len(um.candidates) == 0 {
		return "", ErrNoSourcesAvailable
	}

	if um.next >= len(um.candidates) {
		return "", fmt.Errorf("%w: %d", ErrAllSourcesExhausted, len(um.candidates))
	}

	url := um.candidates[um.next]
	um.next++

	return url, nil
}

// HasMore returns true if there are more locations to try.
func (um *URLManager) HasMore() bool {
	return um.next < len(um.candidates)
}

// IsLocal returns true if the managed source is a local file.
func (um *URLManager) IsLocal() bool {
	return um.source.IsLocalFile()
}

// Source returns the managed source.
func (um *URLManager) Source() config.SourceConfig {
	return um.source
}

// RecordAttempt records the result of a fetch attempt.
func (um *URLManager) RecordAttempt(url string, success bool, err error, statusCode int, duration time.Duration) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	um.attemptLog[url] = append(um.attemptLog[url], AttemptResult{
		URL:        url,
		Attempt:    len(um.attemptLog[url]) + 1,
		Success:    success,
		Error:      errMsg,
		Timestamp:  time.Now(),
		Duration:   duration,
		StatusCode: statusCode,
	})
}

// GetAttemptLog returns the attempt log for a URL.
func (um *URLManager) GetAttemptLog(url string) []AttemptResult {
	return um.attemptLog[url]
}

// GetAttemptStats returns statistics about fetch attempts.
func (um *URLManager) GetAttemptStats() AttemptStats {
	stats := AttemptStats{
		TotalURLs:   len(um.candidates),
		URLAttempts: make(map[string]int),
	}

	for url, results := range um.attemptLog {
		stats.URLAttempts[url] = len(results)
		stats.TotalAttempts += len(results)

		urlSuccess := false

		for _, result := range results {
			if result.Success {
				stats.SuccessfulAttempts++
				urlSuccess = true
			} else {
				stats.FailedAttempts++
			}
		}

		if urlSuccess {
			stats.SuccessfulURLs++
		} else {
			stats.FailedURLs++
		}
	}

	return stats
}

// AttemptStats contains statistics about fetch attempts.
type AttemptStats struct {
	URLAttempts        map[string]int
	TotalURLs          int
	SuccessfulURLs     int
	FailedURLs         int
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"URLs: %d total, %d success, %d failed | Attempts: %d total, %d success, %d failed",
		s.TotalURLs,
		s.SuccessfulURLs,
		s.FailedURLs,
		s.TotalAttempts,
		s.SuccessfulAttempts,
		s.FailedAttempts,
	)
}

// LogAttemptSummary logs a summary of fetch attempts using the provided logger.
func (um *URLManager) LogAttemptSummary(l *logger.Logger) {
	strs := utils.NewStringHelper()

	for _, url := range um.candidates {
		results := um.attemptLog[url]
		if len(results) == 0 {
			l.Debug("location not attempted", "source", um.source.DisplayName(), "location", url)

			continue
		}

		for _, result := range results {
			l.Debug("fetch attempt",
				"source", um.source.DisplayName(),
				"location", url,
				"success", result.Success,
				"status", result.StatusCode,
				"duration", result.Duration,
				"error", strs.TruncateString(result.Error, maxLoggedErrorLen),
			)
		}
	}

	l.Info("fetch summary", "source", um.source.DisplayName(), "stats", um.GetAttemptStats().String())
}

// Reset resets the URL manager state.
func (um *URLManager) Reset() {
	um.next = 0
	um.attemptLog = make(map[string][]AttemptResult)
}
