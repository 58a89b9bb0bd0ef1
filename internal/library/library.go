// Package library owns the current catalog. It rebuilds it from the
// configured roots and swaps the finished result in atomically, so readers
// only ever see a complete catalog.
package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Nomadcxx/coverflow/internal/catalog"
	"github.com/Nomadcxx/coverflow/internal/logging"
	"github.com/Nomadcxx/coverflow/internal/naming"
	"github.com/Nomadcxx/coverflow/internal/scanner"
	"github.com/Nomadcxx/coverflow/internal/search"
)

// ErrNoRoots is returned by Populate when no library paths are configured.
var ErrNoRoots = errors.New("no library paths configured")

// Options configures a Library.
type Options struct {
	Roots      []string
	Extensions []string
	Normalizer *naming.Normalizer
	CoverRoot  string
	Logger     *logging.Logger
	Progress   scanner.ProgressFunc
}

// Stats describes one populate run.
type Stats struct {
	Entries      int           `json:"entries"`
	Units        int           `json:"units"`
	Files        int           `json:"files"`
	Merged       int           `json:"merged"`
	Skipped      int           `json:"skipped"`
	SkippedRoots []string      `json:"skipped_roots,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
	BuiltAt      time.Time     `json:"built_at"`
}

// Library is safe for concurrent use.
type Library struct {
	roots      []string
	normalizer *naming.Normalizer
	scanner    *scanner.Scanner
	resolver   catalog.CoverResolver
	logger     *logging.Logger

	current atomic.Pointer[catalog.Catalog]

	populateMu sync.Mutex

	searchMu sync.Mutex
	engine   *search.Engine

	mu          sync.Mutex
	stats       Stats
	populated   bool
	subscribers []chan struct{}
}

// New creates a library with an empty catalog.
func New(opts Options) *Library {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	norm := opts.Normalizer
	if norm == nil {
		norm = naming.Default()
	}

	scanOpts := []scanner.Option{scanner.WithLogger(logger)}
	if opts.Progress != nil {
		scanOpts = append(scanOpts, scanner.WithProgress(opts.Progress))
	}

	l := &Library{
		roots:      append([]string(nil), opts.Roots...),
		normalizer: norm,
		scanner:    scanner.New(opts.Extensions, scanOpts...),
		resolver:   catalog.NewCoverResolver(opts.CoverRoot),
		logger:     logger,
		engine:     search.NewEngine(),
	}
	l.current.Store(catalog.Empty())
	return l
}

// Roots returns the configured library roots.
func (l *Library) Roots() []string {
	return append([]string(nil), l.roots...)
}

// Scanner returns the scanner used by Populate.
func (l *Library) Scanner() *scanner.Scanner {
	return l.scanner
}

// Populate scans every root into a fresh catalog and publishes it. Only
// one populate runs at a time; concurrent callers wait their turn. On
// error the previous catalog stays current.
func (l *Library) Populate(ctx context.Context) (Stats, error) {
	if len(l.roots) == 0 {
		return Stats{}, ErrNoRoots
	}

	l.populateMu.Lock()
	defer l.populateMu.Unlock()

	l.logger.Info("library", "Populating catalog", logging.F("roots", len(l.roots)))

	b := catalog.NewBuilder(l.normalizer, l.logger)
	res, err := l.scanner.Scan(ctx, l.roots, func(u catalog.Unit) {
		b.AddUnit(u)
	})
	if err != nil {
		return Stats{}, fmt.Errorf("scan libraries: %w", err)
	}

	cat := b.Finish()
	counts := b.Counts()
	stats := Stats{
		Entries:      cat.Len(),
		Units:        res.Units,
		Files:        res.Files,
		Merged:       counts.Merged,
		Skipped:      counts.Skipped,
		SkippedRoots: res.SkippedRoots,
		Duration:     res.Duration,
		BuiltAt:      cat.BuiltAt(),
	}

	l.current.Store(cat)

	l.mu.Lock()
	l.stats = stats
	l.populated = true
	subs := append([]chan struct{}(nil), l.subscribers...)
	l.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	l.logger.Info("library", "Catalog ready",
		logging.F("entries", stats.Entries),
		logging.F("units", stats.Units),
		logging.F("skipped", stats.Skipped),
		logging.F("duration", stats.Duration.Round(time.Millisecond)))
	return stats, nil
}

// Catalog returns the current catalog. It is never nil.
func (l *Library) Catalog() *catalog.Catalog {
	return l.current.Load()
}

// Search filters the current catalog. Calls are serialized around a shared
// engine so repeated queries hit its memo.
func (l *Library) Search(query string) search.View {
	l.searchMu.Lock()
	defer l.searchMu.Unlock()
	return l.engine.Filter(l.Catalog(), query)
}

// Lookup returns the title stored under key in the current catalog.
func (l *Library) Lookup(key string) (*catalog.Entry, bool) {
	return l.Catalog().Get(key)
}

// Resolver returns the cover path resolver.
func (l *Library) Resolver() catalog.CoverResolver {
	return l.resolver
}

// LastStats returns the stats of the last successful populate.
func (l *Library) LastStats() (Stats, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats, l.populated
}

// Subscribe returns a channel that receives a value after each successful
// populate. Sends never block; a slow reader sees one pending signal.
func (l *Library) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	l.mu.Lock()
	l.subscribers = append(l.subscribers, ch)
	l.mu.Unlock()
	return ch
}
