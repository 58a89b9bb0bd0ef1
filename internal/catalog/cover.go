package catalog

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// CoverResolver maps titles to their expected artwork file under a cache
// root. It holds only immutable strings and may be used from any goroutine.
type CoverResolver struct {
	configRoot string
	driveStyle bool
}

// NewCoverResolver returns a resolver rooted at configRoot. Drive-letter
// handling follows the host OS.
func NewCoverResolver(configRoot string) CoverResolver {
	return CoverResolver{
		configRoot: configRoot,
		driveStyle: runtime.GOOS == "windows",
	}
}

// WithDriveStyle returns a copy that treats collection roots as drive-letter
// paths (C:\...) when on is true.
func (r CoverResolver) WithDriveStyle(on bool) CoverResolver {
	r.driveStyle = on
	return r
}

// ConfigRoot returns the cache root directory.
func (r CoverResolver) ConfigRoot() string {
	return r.configRoot
}

// CoverCachePath returns configRoot/<sanitized collection root>/<title>_<year>.
// No filesystem access happens here.
func (r CoverResolver) CoverCachePath(e *Entry) string {
	return filepath.Join(r.configRoot, sanitizeRoot(e.collectionRoot, r.driveStyle), coverIdentifier(e))
}

// HasCover reports whether a regular file exists at the cover path. It
// stats on every call because covers may appear at any time.
func (r CoverResolver) HasCover(e *Entry) bool {
	info, err := os.Stat(r.CoverCachePath(e))
	return err == nil && info.Mode().IsRegular()
}

// CoverOf returns the cover path and whether the file is present.
func (r CoverResolver) CoverOf(e *Entry) (string, bool) {
	path := r.CoverCachePath(e)
	info, err := os.Stat(path)
	return path, err == nil && info.Mode().IsRegular()
}

// coverIdentifier is always two-part, the year side may be empty.
func coverIdentifier(e *Entry) string {
	id := e.title + "_" + e.year
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, id)
}

// sanitizeRoot turns an absolute collection root into a relative path that
// can live below the cache root. Drive-letter roots keep the drive as the
// first element so C:\Movies and D:\Movies stay apart. Anything that does not
// look like either form is used as-is minus leading separators.
func sanitizeRoot(root string, driveStyle bool) string {
	if driveStyle {
		if drive, rest, ok := splitDrive(root); ok {
			rest = trimSeparators(rest)
			if rest == "" {
				return drive
			}
			return drive + string(filepath.Separator) + rest
		}
		return trimSeparators(root)
	}
	return trimSeparators(filepath.Clean(root))
}

func splitDrive(path string) (drive, rest string, ok bool) {
	if len(path) < 2 || path[1] != ':' {
		return "", "", false
	}
	c := path[0]
	if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
		return "", "", false
	}
	return path[:1], path[2:], true
}

func trimSeparators(path string) string {
	return strings.TrimLeft(path, `/\`)
}
