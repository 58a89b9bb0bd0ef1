// Package browser is the terminal coverflow: a carousel of titles centred
// on the selection, filtered live by a search box.
package browser

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Nomadcxx/coverflow/internal/catalog"
	"github.com/Nomadcxx/coverflow/internal/library"
	"github.com/Nomadcxx/coverflow/internal/search"
)

// Library is what the browser reads and refreshes.
type Library interface {
	Search(query string) search.View
	Resolver() catalog.CoverResolver
	Populate(ctx context.Context) (library.Stats, error)
}

type mode int

const (
	modeBrowse mode = iota
	modeJump
	modePick
)

type populatedMsg struct {
	stats library.Stats
	err   error
}

type coverReadyMsg struct {
	key string
}

type openedMsg struct {
	path string
	err  error
}

// Options configures the browser model.
type Options struct {
	// Scale is the number of neighbours drawn on each side of the selection.
	Scale int
	// Ready delivers keys of titles whose cover was just written.
	Ready <-chan string
	// Opener launches a video file. Defaults to the platform opener.
	Opener Opener
	// SkipPopulate leaves the first populate to the caller.
	SkipPopulate bool
}

// Model is the bubbletea model.
type Model struct {
	ctx    context.Context
	lib    Library
	ready  <-chan string
	open   Opener
	scale  int
	input  textinput.Model
	view   search.View
	pos    int
	mode   mode
	files  []string
	pick   int
	status string
	isErr  bool
	busy   bool
	skip   bool
	width  int
	height int
}

// New creates the model. The catalog is populated when the program starts.
func New(ctx context.Context, lib Library, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter by keywords"
	ti.Prompt = "› "
	ti.CharLimit = 128
	ti.Focus()

	scale := opts.Scale
	if scale < 0 {
		scale = 0
	}
	opener := opts.Opener
	if opener == nil {
		opener = DefaultOpener
	}

	return Model{
		ctx:   ctx,
		lib:   lib,
		ready: opts.Ready,
		open:  opener,
		scale: scale,
		input: ti,
		view:  lib.Search(""),
		busy:  !opts.SkipPopulate,
		skip:  opts.SkipPopulate,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, waitReady(m.ready)}
	if !m.skip {
		cmds = append(cmds, populate(m.ctx, m.lib))
	}
	return tea.Batch(cmds...)
}

func populate(ctx context.Context, lib Library) tea.Cmd {
	return func() tea.Msg {
		stats, err := lib.Populate(ctx)
		return populatedMsg{stats: stats, err: err}
	}
}

func waitReady(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		key, ok := <-ch
		if !ok {
			return nil
		}
		return coverReadyMsg{key: key}
	}
}

func openFile(open Opener, path string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{path: path, err: open(path)}
	}
}

// Selected returns the entry under the cursor, or nil when the view is empty.
func (m Model) Selected() *catalog.Entry {
	if m.view == nil || m.view.Len() == 0 {
		return nil
	}
	return m.view.At(m.pos)
}

// refilter re-runs the query against the current catalog, keeping the
// selection on the same title when it survives.
func (m *Model) refilter(keepKey string) {
	m.view = m.lib.Search(m.input.Value())
	m.pos = 0
	if keepKey == "" {
		return
	}
	for i := 0; i < m.view.Len(); i++ {
		if m.view.At(i).Key() == keepKey {
			m.pos = i
			return
		}
	}
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.isErr = false
}

func (m *Model) setError(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.isErr = true
}
