package catalog

// Entry is one logical title. Identity fields never change after creation;
// the path list only grows, and only while the owning catalog is being built.
type Entry struct {
	key            string
	title          string
	year           string
	hasYear        bool
	collectionRoot string
	filePaths      []string
}

func newEntry(key, title, year string, hasYear bool, filePaths []string, collectionRoot string) *Entry {
	paths := make([]string, len(filePaths))
	copy(paths, filePaths)
	return &Entry{
		key:            key,
		title:          title,
		year:           year,
		hasYear:        hasYear,
		collectionRoot: collectionRoot,
		filePaths:      paths,
	}
}

// Key returns the lowercase title[_year] identity.
func (e *Entry) Key() string { return e.key }

// Title returns the normalized title with its original case.
func (e *Entry) Title() string { return e.title }

// Year returns the detected year, if any.
func (e *Entry) Year() (string, bool) { return e.year, e.hasYear }

// YearOrEmpty returns the year or "" when none was detected.
func (e *Entry) YearOrEmpty() string { return e.year }

// CollectionRoot returns the configured root this title was found under.
func (e *Entry) CollectionRoot() string { return e.collectionRoot }

// FilePaths returns a copy of the video files in insertion order.
func (e *Entry) FilePaths() []string {
	out := make([]string, len(e.filePaths))
	copy(out, e.filePaths)
	return out
}

// FileCount returns the number of video files for this title.
func (e *Entry) FileCount() int { return len(e.filePaths) }

// Display returns "Title (Year)", or the bare title without a year.
func (e *Entry) Display() string {
	if e.hasYear {
		return e.title + " (" + e.year + ")"
	}
	return e.title
}

func (e *Entry) appendPaths(paths []string) {
	e.filePaths = append(e.filePaths, paths...)
}
