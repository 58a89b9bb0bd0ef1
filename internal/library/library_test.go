package library

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func newTestLibrary(t *testing.T) (*Library, string) {
	t.Helper()
	root := t.TempDir()
	touch(t, filepath.Join(root, "Movie.2001.720p.mkv"))
	touch(t, filepath.Join(root, "Movie (2001) BDRip", "movie.mkv"))
	touch(t, filepath.Join(root, "Iron.Man.2008.mkv"))
	touch(t, filepath.Join(root, "[Group][Tag].mkv"))

	lib := New(Options{Roots: []string{root}, CoverRoot: t.TempDir()})
	return lib, root
}

func TestLibrary_EmptyBeforePopulate(t *testing.T) {
	lib, _ := newTestLibrary(t)
	require.NotNil(t, lib.Catalog())
	assert.Equal(t, 0, lib.Catalog().Len())
	_, ok := lib.LastStats()
	assert.False(t, ok)
}

func TestLibrary_Populate(t *testing.T) {
	lib, root := newTestLibrary(t)

	stats, err := lib.Populate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 4, stats.Units)
	assert.Equal(t, 1, stats.Merged)
	assert.Equal(t, 1, stats.Skipped)

	e, ok := lib.Lookup("movie_2001")
	require.True(t, ok)
	assert.Equal(t, []string{
		filepath.Join(root, "Movie (2001) BDRip", "movie.mkv"),
		filepath.Join(root, "Movie.2001.720p.mkv"),
	}, e.FilePaths())

	last, ok := lib.LastStats()
	assert.True(t, ok)
	assert.Equal(t, stats, last)
}

func TestLibrary_NoRoots(t *testing.T) {
	lib := New(Options{})
	_, err := lib.Populate(context.Background())
	assert.ErrorIs(t, err, ErrNoRoots)
}

func TestLibrary_FailedPopulateKeepsCatalog(t *testing.T) {
	lib, _ := newTestLibrary(t)
	_, err := lib.Populate(context.Background())
	require.NoError(t, err)
	before := lib.Catalog()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lib.Populate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Same(t, before, lib.Catalog())
}

func TestLibrary_PopulateSwapsCatalog(t *testing.T) {
	lib, root := newTestLibrary(t)
	_, err := lib.Populate(context.Background())
	require.NoError(t, err)
	first := lib.Catalog()

	touch(t, filepath.Join(root, "Heat.1995.mkv"))
	_, err = lib.Populate(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first, lib.Catalog())
	assert.Equal(t, 2, first.Len(), "an old snapshot is never modified")
	assert.Equal(t, 3, lib.Catalog().Len())
}

func TestLibrary_Search(t *testing.T) {
	lib, _ := newTestLibrary(t)
	_, err := lib.Populate(context.Background())
	require.NoError(t, err)

	v := lib.Search("iron")
	require.Equal(t, 1, v.Len())
	assert.Equal(t, "Iron Man", v.At(0).Title())

	assert.Same(t, v, lib.Search("iron"))
	assert.Equal(t, 2, lib.Search("").Len())
}

func TestLibrary_Subscribe(t *testing.T) {
	lib, _ := newTestLibrary(t)
	ch := lib.Subscribe()

	_, err := lib.Populate(context.Background())
	require.NoError(t, err)
	_, err = lib.Populate(context.Background())
	require.NoError(t, err)

	select {
	case <-ch:
	default:
		t.Fatal("expected a populate signal")
	}
	select {
	case <-ch:
		t.Fatal("signals coalesce into one pending value")
	default:
	}
}

func TestLibrary_ConcurrentReaders(t *testing.T) {
	lib, _ := newTestLibrary(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = lib.Populate(context.Background())
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				cat := lib.Catalog()
				assert.Contains(t, []int{0, 2}, cat.Len())
				lib.Search("movie")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, lib.Catalog().Len())
}
