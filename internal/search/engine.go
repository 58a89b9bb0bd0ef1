// Package search filters a catalog by free-text query and ranks the
// matches by how many query tokens each title contains.
package search

import (
	"iter"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/Nomadcxx/coverflow/internal/catalog"
)

// View is an ordered, read-only sequence of titles.
type View interface {
	Len() int
	All() iter.Seq[*catalog.Entry]
	Entries() []*catalog.Entry
	// At returns the i-th entry. It panics when i is out of range.
	At(i int) *catalog.Entry
}

// catalogView exposes the whole catalog in key order. Entries are
// collected on first use of At or Entries.
type catalogView struct {
	cat     *catalog.Catalog
	once    sync.Once
	entries []*catalog.Entry
}

func (v *catalogView) Len() int                      { return v.cat.Len() }
func (v *catalogView) All() iter.Seq[*catalog.Entry] { return v.cat.All() }

func (v *catalogView) Entries() []*catalog.Entry {
	return append([]*catalog.Entry(nil), v.materialize()...)
}

func (v *catalogView) At(i int) *catalog.Entry {
	return v.materialize()[i]
}

func (v *catalogView) materialize() []*catalog.Entry {
	v.once.Do(func() { v.entries = v.cat.Entries() })
	return v.entries
}

type rankedView struct {
	entries []*catalog.Entry
}

func (v *rankedView) Len() int { return len(v.entries) }

func (v *rankedView) All() iter.Seq[*catalog.Entry] {
	return func(yield func(*catalog.Entry) bool) {
		for _, e := range v.entries {
			if !yield(e) {
				return
			}
		}
	}
}

func (v *rankedView) Entries() []*catalog.Entry {
	return append([]*catalog.Entry(nil), v.entries...)
}

func (v *rankedView) At(i int) *catalog.Entry { return v.entries[i] }

type ranked struct {
	matches int
	entry   *catalog.Entry
}

// Engine runs queries and remembers the last one. It is not safe for
// concurrent use.
type Engine struct {
	fold cases.Caser

	lastCat   *catalog.Catalog
	lastQuery string
	lastView  View
	scans     int
}

// NewEngine returns an engine with an empty memo.
func NewEngine() *Engine {
	return &Engine{fold: cases.Fold()}
}

// Filter returns the titles of cat matching query. An empty or blank query
// returns the whole catalog in key order. Otherwise titles containing at
// least one token (case-insensitive) are ranked by the number of tokens
// they contain, ties keeping key order.
//
// Calling Filter again with the same catalog and byte-equal query returns
// the previous view without rescanning.
func (e *Engine) Filter(cat *catalog.Catalog, query string) View {
	if e.lastView != nil && e.lastCat == cat && e.lastQuery == query {
		return e.lastView
	}

	tokens := strings.Fields(query)
	var view View
	if len(tokens) == 0 {
		view = &catalogView{cat: cat}
	} else {
		view = e.scan(cat, tokens)
	}

	e.lastCat = cat
	e.lastQuery = query
	e.lastView = view
	return view
}

func (e *Engine) scan(cat *catalog.Catalog, tokens []string) View {
	e.scans++

	folded := make([]string, len(tokens))
	for i, tok := range tokens {
		folded[i] = e.fold.String(tok)
	}

	var hits []ranked
	for entry := range cat.All() {
		title := e.fold.String(entry.Title())
		n := 0
		for _, tok := range folded {
			if strings.Contains(title, tok) {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, ranked{matches: n, entry: entry})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].matches > hits[j].matches
	})

	entries := make([]*catalog.Entry, len(hits))
	for i, h := range hits {
		entries[i] = h.entry
	}
	return &rankedView{entries: entries}
}

// Scans returns how many full catalog scans Filter has performed.
func (e *Engine) Scans() int {
	return e.scans
}

// Reset drops the memo.
func (e *Engine) Reset() {
	e.lastCat = nil
	e.lastQuery = ""
	e.lastView = nil
}
