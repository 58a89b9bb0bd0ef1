package catalog

import (
	"errors"
	"time"

	"github.com/Nomadcxx/coverflow/internal/logging"
	"github.com/Nomadcxx/coverflow/internal/naming"
)

// ErrSealed is returned by Add after Finish.
var ErrSealed = errors.New("catalog builder already finished")

// Unit is one logical media unit found by the scanner: a loose file or a
// directory of files.
type Unit struct {
	RawName        string
	FilePaths      []string
	CollectionRoot string
}

// Outcome describes what Add did with a unit.
type Outcome int

const (
	Skipped  Outcome = iota // nothing left after normalization
	Inserted                // first time this key was seen
	Merged                  // paths appended to an existing title
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Merged:
		return "merged"
	default:
		return "skipped"
	}
}

// Counts tallies Add outcomes for one build.
type Counts struct {
	Inserted int
	Merged   int
	Skipped  int
}

// Builder accumulates units into a fresh trie. It is not safe for
// concurrent use; build on one goroutine, then publish the result.
type Builder struct {
	normalizer *naming.Normalizer
	logger     *logging.Logger
	trie       *Trie
	counts     Counts
	sealed     bool
}

// NewBuilder returns a builder using n. A nil logger discards output.
func NewBuilder(n *naming.Normalizer, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Builder{
		normalizer: n,
		logger:     logger,
		trie:       NewTrie(),
	}
}

// Add normalizes rawName and inserts or merges it.
func (b *Builder) Add(rawName string, filePaths []string, collectionRoot string) (Outcome, error) {
	if b.sealed {
		return Skipped, ErrSealed
	}

	res := b.normalizer.Normalize(rawName)
	if res.Empty() {
		b.counts.Skipped++
		b.logger.Debug("catalog", "No title left after normalization",
			logging.F("raw", rawName))
		return Skipped, nil
	}

	key := res.Key()
	entry, found := b.trie.LookupOrInsert(key, func() *Entry {
		return newEntry(key, res.Title, res.Year, res.HasYear, filePaths, collectionRoot)
	})
	if found {
		entry.appendPaths(filePaths)
		b.counts.Merged++
		return Merged, nil
	}

	b.counts.Inserted++
	return Inserted, nil
}

// AddUnit is Add for a scanner unit.
func (b *Builder) AddUnit(u Unit) (Outcome, error) {
	return b.Add(u.RawName, u.FilePaths, u.CollectionRoot)
}

// Counts returns the outcome tallies so far.
func (b *Builder) Counts() Counts {
	return b.counts
}

// Finish seals the builder and returns the catalog.
func (b *Builder) Finish() *Catalog {
	b.sealed = true
	return &Catalog{trie: b.trie, builtAt: time.Now()}
}

// Build runs every unit through a new builder and returns the catalog.
func Build(n *naming.Normalizer, units []Unit) *Catalog {
	b := NewBuilder(n, nil)
	for _, u := range units {
		b.AddUnit(u)
	}
	return b.Finish()
}
