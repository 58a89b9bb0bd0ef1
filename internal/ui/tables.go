package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Table collects rows and renders them as a boxed table. Widths are
// measured in terminal cells so accented and wide titles line up.
type Table struct {
	headers  []string
	rows     [][]string
	maxWidth int
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{
		headers:  headers,
		maxWidth: 120,
	}
}

// SetMaxWidth sets the maximum table width
func (t *Table) SetMaxWidth(width int) {
	t.maxWidth = width
}

// AddRow adds a row; missing cells are blank and extra ones are dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.headers))
	total := 1
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
		for _, row := range t.rows {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
		widths[i] += 2
		total += widths[i] + 1
	}

	// Shrink the widest column until the table fits
	for excess := total - t.maxWidth; excess > 0; excess-- {
		maxIdx := 0
		for i := 1; i < len(widths); i++ {
			if widths[i] > widths[maxIdx] {
				maxIdx = i
			}
		}
		if widths[maxIdx] <= 10 {
			break
		}
		widths[maxIdx]--
	}
	return widths
}

// Render writes the table to w
func (t *Table) Render(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}
	widths := t.widths()

	border := func(left, mid, right string) {
		var b strings.Builder
		b.WriteString(left)
		for i, cw := range widths {
			b.WriteString(strings.Repeat("─", cw))
			if i < len(widths)-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		fmt.Fprintln(w, b.String())
	}
	line := func(cells []string) {
		var b strings.Builder
		b.WriteString("│")
		for i, cw := range widths {
			b.WriteString(" ")
			b.WriteString(pad(truncate(cells[i], cw-2), cw-2))
			b.WriteString(" │")
		}
		fmt.Fprintln(w, b.String())
	}

	border("┌", "┬", "┐")
	line(t.headers)
	border("├", "┼", "┤")
	for _, row := range t.rows {
		line(row)
	}
	border("└", "┴", "┘")
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// truncate truncates a string to max cells with ellipsis
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}
