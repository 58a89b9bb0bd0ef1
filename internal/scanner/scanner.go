// Package scanner walks library roots and turns their top-level entries
// into catalog units: a loose video file is one unit, a directory holding
// videos is another.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Nomadcxx/coverflow/internal/catalog"
	"github.com/Nomadcxx/coverflow/internal/logging"
)

// Scanner finds video units below library roots
type Scanner struct {
	extensions    map[string]struct{}
	logger        *logging.Logger
	progress      ProgressFunc
	includeHidden bool
}

// New creates a scanner recognizing the given extensions. An empty list
// falls back to DefaultExtensions. Matching ignores case and a missing
// leading dot.
func New(extensions []string, opts ...Option) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	s := &Scanner{
		extensions: make(map[string]struct{}, len(extensions)),
		logger:     logging.Nop(),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.extensions[ext] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsVideo reports whether path has a recognized extension
func (s *Scanner) IsVideo(path string) bool {
	_, ok := s.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Scan walks every root and calls emit once per unit. Roots that are
// missing or not directories are logged and listed in SkippedRoots.
// A cancelled context stops the walk and its error is returned together
// with the partial result.
func (s *Scanner) Scan(ctx context.Context, roots []string, emit func(catalog.Unit)) (Result, error) {
	start := time.Now()
	result := Result{}

	for i, root := range roots {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}

		info, err := os.Stat(abs)
		if err != nil {
			s.logger.Warn("scanner", "Skipping missing library root",
				logging.F("root", root), logging.F("error", err.Error()))
			result.SkippedRoots = append(result.SkippedRoots, root)
			continue
		}
		if !info.IsDir() {
			s.logger.Warn("scanner", "Skipping library root that is not a directory",
				logging.F("root", root))
			result.SkippedRoots = append(result.SkippedRoots, root)
			continue
		}

		if err := s.scanRoot(ctx, abs, i, len(roots), emit, &result); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (s *Scanner) scanRoot(ctx context.Context, root string, index, total int, emit func(catalog.Unit), result *Result) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		s.logger.Warn("scanner", "Cannot read library root",
			logging.F("root", root), logging.F("error", err.Error()))
		result.SkippedRoots = append(result.SkippedRoots, root)
		return nil
	}

	entries = s.visible(entries)
	s.report(Progress{Root: root, Done: 0, Total: len(entries), RootsDone: index, RootsTotal: total})

	for n, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		full := filepath.Join(root, entry.Name())
		isDir, isFile := s.resolve(full, entry)
		switch {
		case isDir:
			paths, err := s.collect(ctx, full)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				result.EmptyDirs++
				break
			}
			emit(catalog.Unit{RawName: entry.Name(), FilePaths: paths, CollectionRoot: root})
			result.Units++
			result.Files += len(paths)

		case isFile && s.IsVideo(entry.Name()):
			name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			emit(catalog.Unit{RawName: name, FilePaths: []string{full}, CollectionRoot: root})
			result.Units++
			result.Files++
		}

		s.report(Progress{Root: root, Done: n + 1, Total: len(entries), RootsDone: index, RootsTotal: total})
	}
	return nil
}

// resolve reports whether entry is a directory or a regular file, following
// a symlink to its target. Broken links are neither.
func (s *Scanner) resolve(path string, entry fs.DirEntry) (isDir, isFile bool) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), entry.Type().IsRegular()
	}
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Debug("scanner", "Skipping broken symlink",
			logging.F("path", path), logging.F("error", err.Error()))
		return false, false
	}
	return info.IsDir(), info.Mode().IsRegular()
}

// collect returns every video below dir in lexical walk order. dir itself
// may be a symlink. Below it, symlinked files are followed and symlinked
// directories are not.
func (s *Scanner) collect(ctx context.Context, dir string) ([]string, error) {
	var paths []string
	if err := s.walk(ctx, dir, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *Scanner) walk(ctx context.Context, dir string, paths *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Debug("scanner", "Skipping unreadable entry",
			logging.F("path", dir), logging.F("error", err.Error()))
		return nil
	}
	for _, d := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.hidden(d.Name()) {
			continue
		}
		path := filepath.Join(dir, d.Name())
		switch {
		case d.IsDir():
			if err := s.walk(ctx, path, paths); err != nil {
				return err
			}
		case d.Type().IsRegular() && s.IsVideo(path):
			*paths = append(*paths, path)
		case d.Type()&fs.ModeSymlink != 0 && s.IsVideo(path):
			if _, isFile := s.resolve(path, d); isFile {
				*paths = append(*paths, path)
			}
		}
	}
	return nil
}

func (s *Scanner) visible(entries []os.DirEntry) []os.DirEntry {
	out := entries[:0]
	for _, e := range entries {
		if !s.hidden(e.Name()) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (s *Scanner) hidden(name string) bool {
	return !s.includeHidden && strings.HasPrefix(name, ".")
}

func (s *Scanner) report(p Progress) {
	if s.progress != nil {
		s.progress(p)
	}
}
