package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders aligned rows with a styled header line.
type Table struct {
	theme   *Theme
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func (t *Theme) NewTable(headers ...string) *Table {
	return &Table{theme: t, headers: headers}
}

// AddRow appends a row. Missing cells render empty.
func (tb *Table) AddRow(cells ...string) {
	tb.rows = append(tb.rows, cells)
}

// Render returns the table as a string.
func (tb *Table) Render() string {
	widths := make([]int, len(tb.headers))
	for i, h := range tb.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range tb.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range tb.headers {
		b.WriteString(tb.theme.Subtle.Render(pad(h, widths[i])))
		if i < len(widths)-1 {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")
	for _, row := range tb.rows {
		for i := range tb.headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(pad(cell, widths[i]))
			if i < len(widths)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if diff := width - lipgloss.Width(s); diff > 0 {
		return s + strings.Repeat(" ", diff)
	}
	return s
}

// KeyValue renders a "key: value" line with a muted key.
func (t *Theme) KeyValue(key, value string) string {
	return fmt.Sprintf("%s %s", t.Subtle.Render(key+":"), t.Normal.Render(value))
}
