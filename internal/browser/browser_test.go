package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/coverflow/internal/library"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

type fixture struct {
	lib    *library.Library
	root   string
	opened []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	touch(t, filepath.Join(root, "Alien (1979)", "CD1.mkv"))
	touch(t, filepath.Join(root, "Alien (1979)", "CD2.mkv"))
	touch(t, filepath.Join(root, "Heat.1995.mkv"))
	touch(t, filepath.Join(root, "Iron.Man.2008.mkv"))
	touch(t, filepath.Join(root, "Man.of.Steel.2013.mkv"))

	lib := library.New(library.Options{Roots: []string{root}, CoverRoot: t.TempDir()})
	_, err := lib.Populate(context.Background())
	require.NoError(t, err)
	return &fixture{lib: lib, root: root}
}

func (f *fixture) model(opts Options) Model {
	opts.SkipPopulate = true
	opts.Opener = func(path string) error {
		f.opened = append(f.opened, path)
		return nil
	}
	return New(context.Background(), f.lib, opts)
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	var next tea.Model = m
	for _, msg := range msgs {
		next, cmd = next.(Model).Update(msg)
	}
	return next.(Model), cmd
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModel_InitialSelection(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{Scale: 2})

	require.NotNil(t, m.Selected())
	assert.Equal(t, "alien_1979", m.Selected().Key())
	assert.Equal(t, 4, m.view.Len())
}

func TestModel_LeftRightWrap(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	m, _ = press(t, m, key(tea.KeyRight))
	assert.Equal(t, "heat_1995", m.Selected().Key())

	m, _ = press(t, m, key(tea.KeyLeft), key(tea.KeyLeft))
	assert.Equal(t, "man of steel_2013", m.Selected().Key())

	m, _ = press(t, m, key(tea.KeyRight))
	assert.Equal(t, "alien_1979", m.Selected().Key())
}

func TestModel_SearchFiltersLive(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	m, _ = press(t, m, key(tea.KeyRight), runes("man"))
	assert.Equal(t, "man", m.input.Value())
	assert.Equal(t, 2, m.view.Len())
	assert.Equal(t, 0, m.pos)

	m, _ = press(t, m, runes("zzz"))
	assert.Equal(t, 0, m.view.Len())
	assert.Nil(t, m.Selected())
	assert.Contains(t, m.View(), "No titles match.")

	// Navigation on an empty view is a no-op
	m, _ = press(t, m, key(tea.KeyRight), key(tea.KeyEnter))
	assert.Empty(t, f.opened)
}

func TestModel_EscClearsThenQuits(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	m, _ = press(t, m, runes("heat"))
	require.Equal(t, 1, m.view.Len())

	m, cmd := press(t, m, key(tea.KeyEsc))
	assert.Nil(t, cmd)
	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, 4, m.view.Len())
	assert.Equal(t, "heat_1995", m.Selected().Key())

	_, cmd = press(t, m, key(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Jump(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	tests := []struct {
		letter string
		want   int
	}{
		{"m", 3},
		{"H", 1},
		{"I", 2},
		{"0", 0},
		{"Z", 3},
		{"B", 1},
	}
	for _, tt := range tests {
		t.Run(tt.letter, func(t *testing.T) {
			got, _ := press(t, m, key(tea.KeyCtrlJ))
			assert.Equal(t, modeJump, got.mode)
			got, _ = press(t, got, runes(tt.letter))
			assert.Equal(t, modeBrowse, got.mode)
			assert.Equal(t, tt.want, got.pos)
		})
	}
}

func TestModel_JumpCancelledByOtherKey(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	m, _ = press(t, m, key(tea.KeyRight), key(tea.KeyCtrlJ), runes("?"))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 1, m.pos)
	assert.Equal(t, "", m.input.Value())
}

func TestModel_EnterOpensSingleFile(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	m, cmd := press(t, m, key(tea.KeyRight), key(tea.KeyEnter))
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, openedMsg{}, msg)
	assert.Equal(t, []string{filepath.Join(f.root, "Heat.1995.mkv")}, f.opened)

	next, _ := m.Update(msg)
	assert.Contains(t, next.(Model).status, "Opened")
}

func TestModel_EnterPicksAmongFiles(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	m, cmd := press(t, m, key(tea.KeyEnter))
	assert.Nil(t, cmd)
	require.Equal(t, modePick, m.mode)
	require.Len(t, m.files, 2)
	assert.Contains(t, m.View(), "CD2.mkv")

	m, _ = press(t, m, key(tea.KeyDown), key(tea.KeyDown))
	assert.Equal(t, 1, m.pick)

	m, cmd = press(t, m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, []string{filepath.Join(f.root, "Alien (1979)", "CD2.mkv")}, f.opened)
}

func TestModel_PickEscReturns(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	m, _ = press(t, m, key(tea.KeyEnter), key(tea.KeyEsc))
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, f.opened)
}

func TestModel_OpenFailureShowsError(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})
	m.open = func(string) error { return errors.New("no player") }

	m, cmd := press(t, m, key(tea.KeyRight), key(tea.KeyEnter))
	next, _ := m.Update(cmd())
	got := next.(Model)
	assert.True(t, got.isErr)
	assert.Contains(t, got.status, "no player")
}

func TestModel_PopulatedKeepsSelection(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})
	m, _ = press(t, m, key(tea.KeyLeft))
	require.Equal(t, "man of steel_2013", m.Selected().Key())

	touch(t, filepath.Join(f.root, "Blade.Runner.1982.mkv"))
	stats, err := f.lib.Populate(context.Background())
	require.NoError(t, err)

	next, _ := m.Update(populatedMsg{stats: stats})
	got := next.(Model)
	assert.Equal(t, 5, got.view.Len())
	assert.Equal(t, "man of steel_2013", got.Selected().Key())
	assert.Equal(t, "5 titles", got.status)
}

func TestModel_PopulateError(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	next, _ := m.Update(populatedMsg{err: library.ErrNoRoots})
	got := next.(Model)
	assert.True(t, got.isErr)
	assert.False(t, got.busy)
	assert.Equal(t, 4, got.view.Len())
}

func TestModel_RescanKey(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})

	m, cmd := press(t, m, key(tea.KeyCtrlR))
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	_, again := press(t, m, key(tea.KeyCtrlR))
	assert.Nil(t, again)

	msg := cmd()
	require.IsType(t, populatedMsg{}, msg)
	assert.NoError(t, msg.(populatedMsg).err)
}

func TestModel_CoverReadyKeepsListening(t *testing.T) {
	f := newFixture(t)
	ready := make(chan string, 1)
	m := f.model(Options{Ready: ready})

	_, cmd := m.Update(coverReadyMsg{key: "heat_1995"})
	require.NotNil(t, cmd)

	ready <- "alien_1979"
	assert.Equal(t, coverReadyMsg{key: "alien_1979"}, cmd())
}

func TestModel_ViewShowsCarouselAndCover(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{Scale: 1})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "Alien (1979)")
	assert.Contains(t, view, "2 files")
	assert.Contains(t, view, "1/4")
	assert.Contains(t, view, "Heat")
	assert.NotContains(t, view, "Iron Man")
	assert.NotContains(t, view, "✓")

	e := m.Selected()
	touch(t, f.lib.Resolver().CoverCachePath(e))
	assert.Contains(t, m.View(), "✓")
}

func TestOpenCommand(t *testing.T) {
	assert.Equal(t, []string{"xdg-open", "/m/a.mkv"}, openCommand("linux", "/m/a.mkv").Args)
	assert.Equal(t, []string{"open", "/m/a.mkv"}, openCommand("darwin", "/m/a.mkv").Args)
	assert.Equal(t, []string{"cmd", "/c", "start", "", `C:\m\a.mkv`}, openCommand("windows", `C:\m\a.mkv`).Args)
}
