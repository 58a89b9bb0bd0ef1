package scanner

import (
	"time"

	"github.com/Nomadcxx/coverflow/internal/logging"
)

// DefaultExtensions are the video containers recognized when the
// configuration names none.
var DefaultExtensions = []string{
	".3gp", ".asf", ".avi", ".flv", ".m4v", ".mkv", ".mov", ".mpeg",
	".mpg", ".mpe", ".mp4", ".ogg", ".ogv", ".ogm", ".rmi", ".wmv",
}

// Result contains statistics from a scan
type Result struct {
	Units        int
	Files        int
	EmptyDirs    int
	SkippedRoots []string
	Duration     time.Duration
}

// Progress reports how far a scan has got through the current root
type Progress struct {
	Root       string
	Done       int
	Total      int
	RootsDone  int
	RootsTotal int
}

// ProgressFunc is called once per top-level entry of each root
type ProgressFunc func(Progress)

// Option configures a Scanner
type Option func(*Scanner)

// WithProgress sets a progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scanner) {
		s.progress = fn
	}
}

// WithLogger sets the logger used for skipped roots and unreadable entries
func WithLogger(logger *logging.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHidden includes dot-files and dot-directories
func WithHidden(include bool) Option {
	return func(s *Scanner) {
		s.includeHidden = include
	}
}
