// Package watcher follows library roots with fsnotify and reports, after a
// quiet period, that something relevant changed.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Nomadcxx/coverflow/internal/logging"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 2 * time.Second

// Filter reports whether a file path counts as library content.
type Filter func(path string) bool

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	filter    Filter
	debounce  time.Duration
	recursive bool
	logger    *logging.Logger

	mu      sync.Mutex
	dirs    map[string]struct{}
	changes chan struct{}
}

type Option func(*Watcher)

func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher. A nil filter treats every file as relevant.
func New(filter Filter, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	if filter == nil {
		filter = func(string) bool { return true }
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		filter:    filter,
		debounce:  DefaultDebounce,
		recursive: true,
		logger:    logging.Nop(),
		dirs:      make(map[string]struct{}),
		changes:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds the roots. Missing roots are logged and skipped.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			w.logger.Warn("watcher", "Not watching missing root", logging.F("root", root))
			continue
		}
		if !w.recursive {
			if err := w.add(root); err != nil {
				return err
			}
			continue
		}
		if err := w.addRecursive(root); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) add(dir string) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("unable to watch %s: %w", dir, err)
	}
	w.mu.Lock()
	w.dirs[dir] = struct{}{}
	w.mu.Unlock()
	w.logger.Debug("watcher", "Watching", logging.F("path", dir))
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.add(path)
	})
}

// Changes receives one value per burst of relevant events.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher", "Watcher error", logging.F("error", err.Error()))

		case <-timer.C:
			w.logger.Debug("watcher", "Library changed")
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := event.Name
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if w.recursive {
				if err := w.addRecursive(name); err != nil {
					w.logger.Warn("watcher", "Cannot watch new directory", logging.F("path", name), logging.F("error", err.Error()))
				}
			}
			return true
		}
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.mu.Lock()
		_, wasDir := w.dirs[name]
		delete(w.dirs, name)
		w.mu.Unlock()
		if wasDir {
			return true
		}
	}

	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return w.filter(name)
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
