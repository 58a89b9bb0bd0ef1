package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/coverflow/internal/catalog"
	"github.com/Nomadcxx/coverflow/internal/naming"
)

func build(names ...string) *catalog.Catalog {
	units := make([]catalog.Unit, 0, len(names))
	for _, n := range names {
		units = append(units, catalog.Unit{RawName: n, FilePaths: []string{"/m/" + n}, CollectionRoot: "/m"})
	}
	return catalog.Build(naming.Default(), units)
}

func titles(v View) []string {
	var out []string
	for e := range v.All() {
		out = append(out, e.Title())
	}
	return out
}

func TestFilter_Ranking(t *testing.T) {
	cat := build("Iron Man", "Iron Man 2", "Man of Steel")
	eng := NewEngine()

	v := eng.Filter(cat, "iron man")
	assert.Equal(t, []string{"Iron Man", "Iron Man 2", "Man of Steel"}, titles(v))
	assert.Equal(t, 3, v.Len())

	v = eng.Filter(cat, "steel")
	assert.Equal(t, []string{"Man of Steel"}, titles(v))
}

func TestFilter_StableTies(t *testing.T) {
	cat := build("The Matrix", "Alien", "The Thing", "Heat")
	eng := NewEngine()

	v := eng.Filter(cat, "the")
	assert.Equal(t, []string{"The Matrix", "The Thing"}, titles(v), "ties keep catalog order")

	v = eng.Filter(cat, "thing the")
	assert.Equal(t, []string{"The Thing", "The Matrix"}, titles(v))
}

func TestFilter_EmptyQueryIsIdentity(t *testing.T) {
	cat := build("Heat", "Alien", "Dune")
	eng := NewEngine()

	for _, q := range []string{"", "   ", "\t"} {
		v := eng.Filter(cat, q)
		assert.Equal(t, cat.Len(), v.Len())
		assert.Equal(t, []string{"Alien", "Dune", "Heat"}, titles(v))
	}
	assert.Equal(t, 0, eng.Scans(), "an empty query never scans")
}

func TestFilter_NoMatches(t *testing.T) {
	cat := build("Heat", "Alien")
	v := NewEngine().Filter(cat, "zzz")
	assert.Equal(t, 0, v.Len())
	assert.Empty(t, v.Entries())
}

func TestFilter_CaseInsensitive(t *testing.T) {
	cat := build("AMÉLIE (2001)", "heat")
	eng := NewEngine()

	assert.Equal(t, []string{"AMÉLIE"}, titles(eng.Filter(cat, "amélie")))
	assert.Equal(t, []string{"heat"}, titles(eng.Filter(cat, "HEAT")))
}

func TestFilter_DuplicateTokensCountSeparately(t *testing.T) {
	cat := build("Man of Steel", "Iron Man 2", "Man Man")
	v := NewEngine().Filter(cat, "man man 2")

	assert.Equal(t, []string{"Iron Man 2", "Man Man", "Man of Steel"}, titles(v))
}

func TestFilter_Memo(t *testing.T) {
	cat := build("Iron Man", "Iron Man 2", "Man of Steel")
	eng := NewEngine()

	first := eng.Filter(cat, "man")
	require.Equal(t, 1, eng.Scans())

	second := eng.Filter(cat, "man")
	assert.Same(t, first, second)
	assert.Equal(t, 1, eng.Scans(), "same query, same catalog: no rescan")

	eng.Filter(cat, "man ")
	assert.Equal(t, 2, eng.Scans(), "the memo compares the raw query")

	eng.Filter(cat, "man ")
	assert.Equal(t, 2, eng.Scans())
}

func TestFilter_NewCatalogInvalidatesMemo(t *testing.T) {
	eng := NewEngine()
	old := build("Heat")
	eng.Filter(old, "heat")

	fresh := build("Heat", "Heat 2")
	v := eng.Filter(fresh, "heat")
	assert.Equal(t, 2, eng.Scans())
	assert.Equal(t, []string{"Heat", "Heat 2"}, titles(v))
}

func TestFilter_Reset(t *testing.T) {
	cat := build("Heat")
	eng := NewEngine()
	eng.Filter(cat, "heat")
	eng.Reset()
	eng.Filter(cat, "heat")
	assert.Equal(t, 2, eng.Scans())
}

func TestView_At(t *testing.T) {
	cat := build("Heat", "Alien")
	eng := NewEngine()

	all := eng.Filter(cat, "")
	assert.Equal(t, "Alien", all.At(0).Title())
	assert.Equal(t, "Heat", all.At(1).Title())

	hit := eng.Filter(cat, "heat")
	assert.Equal(t, "Heat", hit.At(0).Title())
	assert.Panics(t, func() { hit.At(1) })
}

func TestView_EntriesIsACopy(t *testing.T) {
	cat := build("Heat", "Alien")
	v := NewEngine().Filter(cat, "")

	got := v.Entries()
	got[0] = nil
	assert.NotNil(t, v.At(0))
}

func TestFilter_DoesNotMutateCatalog(t *testing.T) {
	cat := build("Iron Man", "Iron Man 2", "Man of Steel")
	before := cat.Entries()

	NewEngine().Filter(cat, "steel man")
	assert.Equal(t, before, cat.Entries())
}
