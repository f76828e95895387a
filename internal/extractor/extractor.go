// Package extractor turns a parsed HTML reference page into an ordered key mapping.
package extractor

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"teakeys/internal/models"
)

// Extractor errors.
var (
	ErrNilDocument       = errors.New("document is nil")
	ErrMissingTitle      = errors.New("document has no title element")
	ErrMissingTable      = errors.New("document has no table element")
	ErrInsufficientCells = errors.New("insufficient cells in row")
	ErrInvalidOptions    = errors.New("invalid extraction options")
)

// Options selects which rows and cells form the mapping.
type Options struct {
	// HeaderRows leading <tr> elements are skipped.
	HeaderRows int
	// KeyCell is the index of the <td> holding the key.
	KeyCell int
	// ValueCell is the index of the <td> holding the description.
	ValueCell int
}

// DefaultOptions matches the layout of the reference key pages: two label rows,
// the key in the first cell and the description in the fourth.
func DefaultOptions() Options {
	return Options{
		HeaderRows: 2,
		KeyCell:    0,
		ValueCell:  3,
	}
}

// Validate checks the option values.
func (o Options) Validate() error {
	if o.HeaderRows < 0 || o.KeyCell < 0 || o.ValueCell < 0 {
		return fmt.Errorf("%w: header_rows=%d key_cell=%d value_cell=%d",
			ErrInvalidOptions, o.HeaderRows, o.KeyCell, o.ValueCell)
	}

	return nil
}

func (o Options) requiredCells() int {
	return max(o.KeyCell, o.ValueCell) + 1
}

// Extractor reads key/description rows out of the first table of a document.
type Extractor struct {
	opts Options
}

// New creates an extractor. Invalid options are reported by Extract.
func New(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// NewDefault creates an extractor with DefaultOptions.
func NewDefault() *Extractor {
	return New(DefaultOptions())
}

// Extract builds the mapping. The title is the text of the first <strong>
// element; rows come from the first <table>. A data row with too few cells
// fails the whole extraction, and no mapping is returned on any error.
func (e *Extractor) Extract(doc *html.Node) (*models.KeyMapping, error) {
	if err := e.opts.Validate(); err != nil {
		return nil, &models.ExtractionError{Reason: "bad options", Err: err}
	}

	if doc == nil {
		return nil, &models.ExtractionError{Err: ErrNilDocument}
	}

	titleNode := findFirst(doc, atom.Strong)
	if titleNode == nil {
		return nil, &models.ExtractionError{Err: ErrMissingTitle}
	}

	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, &models.ExtractionError{Err: ErrMissingTable}
	}

	b := models.NewMappingBuilder(strings.TrimSpace(textContent(titleNode)))
	need := e.opts.requiredCells()

	rows := findAll(table, atom.Tr)
	for i, row := range rows {
		if i < e.opts.HeaderRows {
			continue
		}

		cells := findAll(row, atom.Td)
		if len(cells) < need {
			return nil, &models.ExtractionError{
				Reason: fmt.Sprintf("row %d has %d cells, need %d", i, len(cells), need),
				Err:    ErrInsufficientCells,
			}
		}

		key := strings.TrimSpace(textContent(cells[e.opts.KeyCell]))
		value := strings.TrimSpace(textContent(cells[e.opts.ValueCell]))
		b.Set(key, value)
	}

	return b.Build(), nil
}

// findFirst returns the first element below n (depth-first, document order) with tag a.
func findFirst(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}

		if found := findFirst(c, a); found != nil {
			return found
		}
	}

	return nil
}

// findAll returns every element below n with tag a, in document order.
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node

	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == a {
				out = append(out, c)
			}

			walk(c)
		}
	}
	walk(n)

	return out
}

// textContent concatenates all text nodes below n.
func textContent(n *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(p *html.Node) {
		if p.Type == html.TextNode {
			sb.WriteString(p.Data)

			return
		}

		for c := p.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return sb.String()
}
