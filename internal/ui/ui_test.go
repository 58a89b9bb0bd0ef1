package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	DisableColors()
}

func TestTable_Render(t *testing.T) {
	tbl := NewTable("Title", "Year", "Files")
	tbl.AddRow("Alien", "1979", "2")
	tbl.AddRow("Amélie", "", "1")
	tbl.AddRow("Heat", "1995", "1", "ignored")

	var buf bytes.Buffer
	tbl.Render(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "┌────────┬──────┬───────┐", lines[0])
	assert.Equal(t, "│ Title  │ Year │ Files │", lines[1])
	assert.Equal(t, "│ Amélie │      │ 1     │", lines[4])
	assert.Equal(t, 3, tbl.Len())
}

func TestTable_EmptyHeaders(t *testing.T) {
	var buf bytes.Buffer
	NewTable().Render(&buf)
	assert.Empty(t, buf.String())
}

func TestTable_ShrinksToMaxWidth(t *testing.T) {
	tbl := NewTable("Title", "Path")
	tbl.SetMaxWidth(40)
	tbl.AddRow("Alien", strings.Repeat("x", 80))

	var buf bytes.Buffer
	tbl.Render(&buf)
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 40)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Alien", truncate("Alien", 10))
	assert.Equal(t, "Ali...", truncate("Alien Resurrection", 6))
	assert.Equal(t, "Al", truncate("Alien", 2))
}

func TestProgressBar_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "/movies")
	p.Update(0, 0)
	p.Update(1, 4)
	p.Update(1, 4)
	p.Update(9, 4)
	p.Done()

	assert.Equal(t, "/movies: 1/4 (25%)\n/movies: 4/4 (100%)\n", buf.String())
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "1,234", FormatCount(1234))
	assert.Equal(t, "never", FormatAgo(time.Time{}))
	assert.Equal(t, "500ms", FormatDuration(500*time.Millisecond))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.0m", FormatDuration(2*time.Minute))
	assert.Equal(t, "1.5 kB", FormatBytes(1500))
}

func TestSectionAndMessages(t *testing.T) {
	var buf bytes.Buffer
	Section(&buf, "Library")
	SuccessMsg(&buf, "%d titles", 3)
	KeyValue(&buf, "roots", "2")

	out := buf.String()
	assert.Contains(t, out, "LIBRARY\n=======\n")
	assert.Contains(t, out, "✓ 3 titles\n")
	assert.Contains(t, out, "  roots:           2\n")
	assert.Equal(t, "✓", CoverMark(true))
}
