// Package formatter renders key mappings as aligned markdown tables.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"teakeys/internal/models"
)

// Options controls mapping rendering.
type Options struct {
	// MaxWidth truncates cell text to this display width. Zero means no limit.
	MaxWidth int
}

// RenderMapping renders m as a two column table: key and description.
func RenderMapping(m *models.KeyMapping, opts Options) string {
	table := [][]string{{"Key", "Description"}, {"---", "---"}}

	if m != nil {
		for k, v := range m.All() {
			table = append(table, []string{cell(k, opts), cell(v, opts)})
		}
	}

	return joinLines(alignTable(table, 1))
}

// RenderComparison renders the raw and cleaned descriptions side by side.
// Keys follow the order of raw; keys missing from cleaned show an empty cell.
func RenderComparison(raw, cleaned *models.KeyMapping, opts Options) string {
	table := [][]string{{"Key", "Raw", "Cleaned"}, {"---", "---", "---"}}

	if raw != nil {
		for k, v := range raw.All() {
			c := ""
			if cleaned != nil {
				c, _ = cleaned.Get(k)
			}

			table = append(table, []string{cell(k, opts), cell(v, opts), cell(c, opts)})
		}
	}

	return joinLines(alignTable(table, 1))
}

func cell(s string, opts Options) string {
	// A raw pipe would split the cell.
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.Join(strings.Fields(s), " ")

	if opts.MaxWidth > 0 && runewidth.StringWidth(s) > opts.MaxWidth {
		s = runewidth.Truncate(s, opts.MaxWidth, "...")
	}

	return s
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

// alignTable pads every cell to its column's display width. The row at
// separatorRowIdx is redrawn as dashes.
func alignTable(table [][]string, separatorRowIdx int) []string {
	colCount := 0
	for _, row := range table {
		colCount = max(colCount, len(row))
	}

	colWidths := make([]int, colCount)

	for rIdx, row := range table {
		if rIdx == separatorRowIdx {
			continue
		}

		for i := 0; i < len(row) && i < colCount; i++ {
			colWidths[i] = max(colWidths[i], runewidth.StringWidth(row[i]))
		}
	}

	// Ensure min width for separator (usually 3 dashes "---")
	for i := range colWidths {
		colWidths[i] = max(colWidths[i], 3)
	}

	result := make([]string, 0, len(table))

	for i, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			if i == separatorRowIdx {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
			} else {
				content := ""
				if j < len(row) {
					content = row[j]
				}

				sb.WriteString(content)

				if padding := colWidths[j] - runewidth.StringWidth(content); padding > 0 {
					sb.WriteString(strings.Repeat(" ", padding))
				}
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}
