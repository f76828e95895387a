// Package crawler retrieves key reference pages from remote URLs or local
// files and parses them into HTML documents.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/net/html"

	"teakeys/internal/config"
	"teakeys/internal/logger"
	"teakeys/internal/models"
	"teakeys/pkg/utils"
)

// ErrInvalidLocator indicates a remote source whose URL is not http(s).
var ErrInvalidLocator = errors.New("invalid source locator")

// Client fetches documents for configured sources.
type Client struct {
	scraper *Scraper
	parser  *Parser
	http    *utils.HTTPHelper
	log     *logger.Logger
}

// NewClient creates a new crawler client with default dependencies.
func NewClient() *Client {
	return NewClientWithDeps(NewScraper(), NewParser(), logger.Discard())
}

// NewClientFromConfig creates a client using the retry and fetch settings of cfg.
func NewClientFromConfig(cfg *config.Config, log *logger.Logger) *Client {
	return NewClientWithDeps(NewScraperWithConfig(&cfg.Retry, cfg.Fetch), NewParser(), log)
}

// NewClientWithDeps creates a new crawler client with injected dependencies.
func NewClientWithDeps(scraper *Scraper, parser *Parser, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}

	return &Client{
		scraper: scraper,
		parser:  parser,
		http:    utils.NewHTTPHelper(),
		log:     log,
	}
}

// FetchDocument retrieves and parses the page for src. Remote sources try the
// primary URL and then each backup URL; the first page that downloads wins.
// Every failure is reported as *models.ExtractionError.
func (c *Client) FetchDocument(ctx context.Context, src config.SourceConfig) (*html.Node, error) {
	um := NewURLManager(src)
	defer um.LogAttemptSummary(c.log)

	if um.IsLocal() {
		return c.fetchLocal(um)
	}

	var errs []error

	for um.HasMore() {
		url, err := um.NextURL()
		if err != nil {
			errs = append(errs, err)

			break
		}

		if !c.http.IsValidURL(url) {
			um.RecordAttempt(url, false, ErrInvalidLocator, 0, 0)
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLocator, url))

			continue
		}

		content, status, duration, err := c.scraper.ScrapeWithMetrics(ctx, url)
		um.RecordAttempt(url, err == nil, err, status, duration)

		if err != nil {
			c.log.Warn("fetch failed", "source", src.DisplayName(), "url", url, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", url, err))

			if ctx.Err() != nil {
				break
			}

			continue
		}

		return c.parser.ParseHTML(content, url)
	}

	if len(errs) == 0 {
		errs = append(errs, ErrNoSourcesAvailable)
	}

	return nil, &models.ExtractionError{
		Source: src.DisplayName(),
		Reason: "page could not be retrieved",
		Err:    errors.Join(errs...),
	}
}

func (c *Client) fetchLocal(um *URLManager) (*html.Node, error) {
	path, err := um.NextURL()
	if err != nil {
		return nil, &models.ExtractionError{Source: um.Source().DisplayName(), Err: err}
	}

	start := time.Now()
	content, err := c.scraper.ReadLocalFile(path)
	um.RecordAttempt(path, err == nil, err, 0, time.Since(start))

	if err != nil {
		return nil, &models.ExtractionError{
			Source: path,
			Reason: "page could not be retrieved",
			Err:    err,
		}
	}

	return c.parser.ParseHTML(content, path)
}
