package crawler

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"teakeys/internal/models"
)

// Parser turns raw page content into an HTML node tree.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// ParseHTML parses content. Failures are reported as ExtractionError so the
// caller sees a single error type for "no usable document".
func (p *Parser) ParseHTML(content, source string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, &models.ExtractionError{
			Source: source,
			Reason: "invalid HTML",
			Err:    fmt.Errorf("failed to parse document: %w", err),
		}
	}

	return doc, nil
}
