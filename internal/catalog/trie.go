package catalog

import (
	"iter"
	"sort"
)

// node is one code point along a key. Children stay sorted by rune so a
// depth-first walk yields keys in lexicographic code point order.
type node struct {
	r        rune
	children []*node
	entry    *Entry
}

func (n *node) child(r rune) *node {
	i := sort.Search(len(n.children), func(i int) bool { return n.children[i].r >= r })
	if i < len(n.children) && n.children[i].r == r {
		return n.children[i]
	}
	return nil
}

func (n *node) childOrCreate(r rune) *node {
	i := sort.Search(len(n.children), func(i int) bool { return n.children[i].r >= r })
	if i < len(n.children) && n.children[i].r == r {
		return n.children[i]
	}
	c := &node{r: r}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
	return c
}

// Trie is a prefix tree from key to Entry.
type Trie struct {
	root  node
	count int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{}
}

// Get returns the entry stored at key.
func (t *Trie) Get(key string) (*Entry, bool) {
	n := &t.root
	for _, r := range key {
		if n = n.child(r); n == nil {
			return nil, false
		}
	}
	if n.entry == nil {
		return nil, false
	}
	return n.entry, true
}

// LookupOrInsert returns the entry at key and true when it already exists.
// Otherwise it stores create() at key and returns it with false.
func (t *Trie) LookupOrInsert(key string, create func() *Entry) (*Entry, bool) {
	n := &t.root
	for _, r := range key {
		n = n.childOrCreate(r)
	}
	if n.entry != nil {
		return n.entry, true
	}
	n.entry = create()
	t.count++
	return n.entry, false
}

// Len returns the number of stored entries.
func (t *Trie) Len() int {
	return t.count
}

// All yields every entry in key order. The sequence can be ranged over any
// number of times.
func (t *Trie) All() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		walk(&t.root, yield)
	}
}

func walk(n *node, yield func(*Entry) bool) bool {
	if n.entry != nil && !yield(n.entry) {
		return false
	}
	for _, c := range n.children {
		if !walk(c, yield) {
			return false
		}
	}
	return true
}
