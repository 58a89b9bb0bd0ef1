package browser

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Nomadcxx/coverflow/internal/search"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case populatedMsg:
		m.busy = false
		if msg.err != nil {
			m.setError("Scan failed: %v", msg.err)
			return m, nil
		}
		keep := ""
		if e := m.Selected(); e != nil {
			keep = e.Key()
		}
		m.refilter(keep)
		m.setStatus("%d titles", msg.stats.Entries)
		return m, nil

	case coverReadyMsg:
		// The view re-stats covers on render; just keep listening.
		return m, waitReady(m.ready)

	case openedMsg:
		if msg.err != nil {
			m.setError("Cannot open %s: %v", msg.path, msg.err)
		} else {
			m.setStatus("Opened %s", msg.path)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeJump:
		return m.handleJumpKeys(msg)
	case modePick:
		return m.handlePickKeys(key)
	}
	return m.handleBrowseKeys(msg)
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.view.Len()

	switch msg.String() {
	case "esc":
		if m.input.Value() != "" {
			m.input.Reset()
			m.refilter(m.selectedKey())
			return m, nil
		}
		return m, tea.Quit

	case "left":
		if n > 0 {
			m.pos = (m.pos - 1 + n) % n
		}
		return m, nil

	case "right":
		if n > 0 {
			m.pos = (m.pos + 1) % n
		}
		return m, nil

	case "home":
		m.pos = 0
		return m, nil

	case "end":
		if n > 0 {
			m.pos = n - 1
		}
		return m, nil

	case "enter":
		e := m.Selected()
		if e == nil {
			return m, nil
		}
		files := e.FilePaths()
		if len(files) == 1 {
			return m, openFile(m.open, files[0])
		}
		m.mode = modePick
		m.files = files
		m.pick = 0
		return m, nil

	case "ctrl+j":
		m.mode = modeJump
		return m, nil

	case "ctrl+r":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.setStatus("Rescanning…")
		return m, populate(m.ctx, m.lib)
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.view = m.lib.Search(m.input.Value())
		m.pos = 0
	}
	return m, cmd
}

func (m Model) handleJumpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return m, nil
	}
	c := unicode.ToUpper(msg.Runes[0])
	if !strings.ContainsRune(string(search.IndexRunes), c) {
		return m, nil
	}
	m.pos = search.JumpIndex(m.view, c)
	if n := m.view.Len(); m.pos >= n {
		m.pos = max(n-1, 0)
	}
	return m, nil
}

func (m Model) handlePickKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = modeBrowse
		m.files = nil
	case "up", "k":
		if m.pick > 0 {
			m.pick--
		}
	case "down", "j":
		if m.pick < len(m.files)-1 {
			m.pick++
		}
	case "enter":
		path := m.files[m.pick]
		m.mode = modeBrowse
		m.files = nil
		return m, openFile(m.open, path)
	}
	return m, nil
}

func (m Model) selectedKey() string {
	if e := m.Selected(); e != nil {
		return e.Key()
	}
	return ""
}
