package ui

import (
	"fmt"
	"io"
	"strings"
)

// ProgressBar redraws a single status line as work advances.
type ProgressBar struct {
	w     io.Writer
	width int
	label string
	last  string
}

// NewProgressBar creates a new progress bar
func NewProgressBar(w io.Writer, label string) *ProgressBar {
	return &ProgressBar{w: w, width: 30, label: label}
}

// SetLabel changes the text shown before the bar
func (p *ProgressBar) SetLabel(label string) {
	p.label = label
}

// Update redraws the bar at current of total. A zero total draws nothing.
func (p *ProgressBar) Update(current, total int) {
	if total <= 0 {
		return
	}
	if current > total {
		current = total
	}
	percent := float64(current) / float64(total) * 100

	var line string
	if IsTerminal() {
		filled := p.width * current / total
		bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
		line = fmt.Sprintf("\r%s [%s] %d/%d (%.0f%%)", truncate(p.label, 40), bar, current, total, percent)
	} else {
		line = fmt.Sprintf("%s: %d/%d (%.0f%%)\n", p.label, current, total, percent)
	}
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprint(p.w, line)
}

// Done ends the progress line
func (p *ProgressBar) Done() {
	if IsTerminal() && p.last != "" {
		fmt.Fprintln(p.w)
	}
	p.last = ""
}
