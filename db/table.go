package db

import (
	"fmt"
	"io"
	"strings"
)

// TextTable provides basic table formatting without external dependencies
type TextTable struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

// NewTextTable creates a new table writer
func NewTextTable(w io.Writer) *TextTable {
	return &TextTable{
		writer: w,
		rows:   make([][]string, 0),
	}
}

// Header sets the table headers
func (t *TextTable) Header(headers []string) {
	t.headers = headers
}

// Row adds a single row
func (t *TextTable) Row(row []string) {
	t.rows = append(t.rows, row)
}

// Bulk adds multiple rows
func (t *TextTable) Bulk(rows [][]string) {
	t.rows = append(t.rows, rows...)
}

// Render outputs the formatted table: a header line, a dash
// separator, then one line per row, all pipe-framed and left-aligned.
func (t *TextTable) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	colWidths := t.calculateWidths()

	if len(t.headers) > 0 {
		fmt.Fprintln(t.writer, t.formatRow(t.headers, colWidths))
		fmt.Fprintln(t.writer, t.formatSeparator(colWidths))
	}

	for _, row := range t.rows {
		fmt.Fprintln(t.writer, t.formatRow(row, colWidths))
	}
}

// calculateWidths determines the width needed for each column
func (t *TextTable) calculateWidths() []int {
	numCols := len(t.headers)
	for _, row := range t.rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}

	widths := make([]int, numCols)

	for i, h := range t.headers {
		if len(h) > widths[i] {
			widths[i] = len(h)
		}
	}

	for _, row := range t.rows {
		for i, cell := range row {
			if i < numCols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Minimum width of 3 keeps the separator dashes visible
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	return widths
}

// formatSeparator creates the dash line under the header
func (t *TextTable) formatSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w)
	}
	return t.formatRow(parts, widths)
}

// formatRow formats a single row with proper padding
func (t *TextTable) formatRow(row []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		parts[i] = " " + cell + strings.Repeat(" ", w-len(cell)+1)
	}
	return "|" + strings.Join(parts, "|") + "|"
}
