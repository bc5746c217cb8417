package render

import (
	"fmt"
	"io"
	"strings"
)

// FormatFunc is a callback to format/colorize cell values
type FormatFunc func(value string) string

// ColumnSpec defines a column's properties
type ColumnSpec struct {
	Header     string
	BlankValue string     // Value to show for empty cells (default: "-")
	FormatFunc FormatFunc // Optional formatter/colorizer
	MinWidth   int        // Minimum column width
	MaxWidth   int        // Longer values are cut, 0 means no limit
	AlignRight bool
}

// Table is a plain text table with one header line
type Table struct {
	columns []ColumnSpec
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given column specifications
func NewTable(cols ...ColumnSpec) *Table {
	t := &Table{
		columns: cols,
		widths:  make([]int, len(cols)),
	}

	for i := range t.columns {
		if t.columns[i].BlankValue == "" {
			t.columns[i].BlankValue = "-"
		}
		t.widths[i] = max(t.columns[i].MinWidth, len(t.columns[i].Header))
	}

	return t
}

// AddRow adds a row, missing and empty cells get the column's blank value
func (t *Table) AddRow(data ...string) {
	row := make([]string, len(t.columns))
	for i, col := range t.columns {
		val := ""
		if i < len(data) {
			val = data[i]
		}
		if val == "" {
			val = col.BlankValue
		}
		if col.MaxWidth > 0 {
			val = truncate(val, col.MaxWidth)
		}

		// widths are measured before formatting, FormatFunc must not change
		// the visible length
		t.widths[i] = max(t.widths[i], visibleLength(val))
		row[i] = val
	}

	t.rows = append(t.rows, row)
}

// Len returns the number of rows added so far
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table to the given writer
func (t *Table) Render(w io.Writer) error {
	headers := make([]string, len(t.columns))
	rules := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = t.cell(i, col.Header)
		rules[i] = strings.Repeat("-", t.widths[i])
	}

	if err := writeLine(w, headers); err != nil {
		return err
	}
	if err := writeLine(w, rules); err != nil {
		return err
	}

	for _, row := range t.rows {
		formatted := make([]string, len(row))
		for i, val := range row {
			if f := t.columns[i].FormatFunc; f != nil {
				val = f(val)
			}
			formatted[i] = t.cell(i, val)
		}
		if err := writeLine(w, formatted); err != nil {
			return err
		}
	}

	return nil
}

func writeLine(w io.Writer, cells []string) error {
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	return err
}

// cell pads s to the width of column i
func (t *Table) cell(i int, s string) string {
	fill := t.widths[i] - visibleLength(s)
	if fill <= 0 {
		return s
	}
	if t.columns[i].AlignRight {
		return strings.Repeat(" ", fill) + s
	}
	return s + strings.Repeat(" ", fill)
}

// visibleLength counts runes, skipping ANSI escape sequences
func visibleLength(s string) int {
	length := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			length++
		}
	}
	return length
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
