// Package catalog stores one Entry per normalized title in a trie. A
// Catalog is produced by a Builder and is read-only once Finish returns.
package catalog

import (
	"iter"
	"time"
)

// Catalog is a finished, read-only set of titles.
type Catalog struct {
	trie    *Trie
	builtAt time.Time
}

// Empty returns a catalog with no entries.
func Empty() *Catalog {
	return &Catalog{trie: NewTrie()}
}

// Len returns the number of titles.
func (c *Catalog) Len() int {
	return c.trie.Len()
}

// Get returns the title stored under key.
func (c *Catalog) Get(key string) (*Entry, bool) {
	return c.trie.Get(key)
}

// All yields every title in key order. It is restartable.
func (c *Catalog) All() iter.Seq[*Entry] {
	return c.trie.All()
}

// Entries collects All into a slice.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, c.Len())
	for e := range c.All() {
		out = append(out, e)
	}
	return out
}

// BuiltAt returns when the catalog was sealed. Zero for Empty().
func (c *Catalog) BuiltAt() time.Time {
	return c.builtAt
}
