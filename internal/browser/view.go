package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Nomadcxx/coverflow/internal/catalog"
	"github.com/Nomadcxx/coverflow/internal/search"
)

const (
	minTileWidth = 12
	maxTileWidth = 28
)

func (m Model) View() string {
	var b strings.Builder

	count := fmt.Sprintf("%d titles", m.view.Len())
	if m.busy {
		count += " · scanning"
	}
	b.WriteString(headerStyle.Render("coverflow") + "  " + mutedStyle.Render(count))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.view.Len() == 0 && m.input.Value() != "":
		b.WriteString(mutedStyle.Render("No titles match."))
	case m.view.Len() == 0:
		b.WriteString(mutedStyle.Render("The library is empty."))
	default:
		b.WriteString(m.renderCarousel())
		b.WriteString("\n")
		b.WriteString(m.renderCaption())
	}
	b.WriteString("\n\n")

	switch m.mode {
	case modeJump:
		b.WriteString(m.renderJump())
		b.WriteString("\n")
	case modePick:
		b.WriteString(m.renderPicker())
		b.WriteString("\n")
	}

	if m.status != "" {
		if m.isErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(mutedStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(m.help()))
	return b.String()
}

func (m Model) tileWidth() int {
	if m.width <= 0 {
		return 20
	}
	w := m.width/(2*m.scale+1) - 2
	return min(max(w, minTileWidth), maxTileWidth)
}

// renderCarousel draws the selection and up to scale neighbours per side.
func (m Model) renderCarousel() string {
	width := m.tileWidth()
	resolver := m.lib.Resolver()

	tiles := make([]string, 0, 2*m.scale+1)
	for i := m.pos - m.scale; i <= m.pos+m.scale; i++ {
		if i < 0 || i >= m.view.Len() {
			tiles = append(tiles, lipgloss.NewStyle().Width(width+2).Render(""))
			continue
		}
		tiles = append(tiles, renderTile(m.view.At(i), resolver, width, i == m.pos))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, tiles...)
}

func renderTile(e *catalog.Entry, r catalog.CoverResolver, width int, selected bool) string {
	style := tileStyle
	if selected {
		style = selectedTileStyle
	}
	inner := width - 2

	mark := mutedStyle.Render("·")
	if r.HasCover(e) {
		mark = coverStyle.Render("✓")
	}
	lines := []string{
		mark,
		"",
		lipgloss.NewStyle().Width(inner).Align(lipgloss.Center).Render(e.Title()),
	}
	if year := e.YearOrEmpty(); year != "" {
		lines = append(lines, year)
	}
	return style.Width(width).Height(7).Render(strings.Join(lines, "\n"))
}

func (m Model) renderCaption() string {
	e := m.Selected()
	caption := captionStyle.Render(e.Display())
	if n := e.FileCount(); n > 1 {
		caption += mutedStyle.Render(fmt.Sprintf("  %d files", n))
	}
	return caption + mutedStyle.Render(fmt.Sprintf("  %d/%d", m.pos+1, m.view.Len()))
}

func (m Model) renderJump() string {
	letters := make([]string, len(search.IndexRunes))
	for i, r := range search.IndexRunes {
		letters[i] = string(r)
	}
	return headerStyle.Render("Jump to: ") + strings.Join(letters, " ")
}

func (m Model) renderPicker() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("This title has several files. Choose one:"))
	b.WriteString("\n")
	for i, path := range m.files {
		if i == m.pick {
			b.WriteString(pickCursorStyle.Render("▸ " + path))
		} else {
			b.WriteString("  " + path)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) help() string {
	switch m.mode {
	case modeJump:
		return "0 or A-Z: jump · any other key: cancel"
	case modePick:
		return "↑/↓: choose · enter: play · esc: back"
	}
	return "←/→: browse · enter: play · ctrl+j: jump · ctrl+r: rescan · esc: clear/quit"
}
