// Package ui holds the plain terminal output helpers used by the CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

var (
	isTerminal   = isatty.IsTerminal(os.Stdout.Fd())
	colorEnabled = true
)

// DisableColors disables all color output
func DisableColors() {
	colorEnabled = false
	isTerminal = false
	initStyles()
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	return isTerminal && colorEnabled
}

// Section writes a section header
func Section(w io.Writer, title string) {
	fmt.Fprintln(w)
	if IsTerminal() {
		fmt.Fprintln(w, Header("━━━ "+strings.ToUpper(title)+" ━━━"))
		return
	}
	fmt.Fprintln(w, strings.ToUpper(title))
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
}

// KeyValue writes an aligned "key: value" line
func KeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %-16s %s\n", key+":", value)
}

// FormatCount formats a count with thousands separators
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatBytes formats bytes to human-readable format using go-humanize
func FormatBytes(bytes int64) string {
	return humanize.Bytes(uint64(bytes))
}

// FormatAgo formats a past time relative to now ("3 hours ago")
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatDuration formats duration to human-readable format
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
