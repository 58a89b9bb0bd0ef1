// Package naming recovers a clean title and optional year from a noisy
// release filename.
package naming

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	// leadingTagsRegex peels off any run of [group] tags at the start.
	leadingTagsRegex = regexp.MustCompile(`^(\s*\[[^\]]*\])*\s*(.*)$`)
	// yearRegex matches a whole token holding a year, optionally in parens.
	yearRegex = regexp.MustCompile(`^\(?([0-9]{4})\)?$`)
)

// Normalizer turns raw names into titles. It only holds compiled patterns,
// so a single instance can be shared between goroutines.
type Normalizer struct {
	delimiters string
	halts      []*regexp.Regexp
}

// New compiles cfg. An empty delimiter set or halt list falls back to the
// defaults; a pattern that does not compile is an error.
func New(cfg Config) (*Normalizer, error) {
	if cfg.Delimiters == "" {
		cfg.Delimiters = DefaultDelimiters
	}
	if len(cfg.HaltPatterns) == 0 {
		cfg.HaltPatterns = DefaultHaltPatterns
	}

	halts := make([]*regexp.Regexp, 0, len(cfg.HaltPatterns))
	for i, pattern := range cfg.HaltPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("halt pattern %d (%q): %w", i, pattern, err)
		}
		halts = append(halts, re)
	}

	return &Normalizer{
		delimiters: cfg.Delimiters,
		halts:      halts,
	}, nil
}

// Default returns a Normalizer built from DefaultConfig.
func Default() *Normalizer {
	n, err := New(DefaultConfig())
	if err != nil {
		panic(err) // built-in patterns always compile
	}
	return n
}

// Normalize derives the title and year from a raw file or directory name
// (without extension). A year token and a halt token both end the scan;
// whichever comes first wins.
func (n *Normalizer) Normalize(raw string) Result {
	cleaned := n.replaceDelimiters(norm.NFC.String(raw))

	remainder := cleaned
	if m := leadingTagsRegex.FindStringSubmatch(cleaned); m != nil {
		remainder = m[2]
	}

	var (
		title []string
		res   Result
	)
	for _, token := range strings.Split(remainder, " ") {
		if m := yearRegex.FindStringSubmatch(token); m != nil {
			res.Year = m[1]
			res.HasYear = true
			break
		}
		if n.isHalt(token) {
			break
		}
		if token != "" {
			title = append(title, token)
		}
	}

	res.Title = strings.TrimSpace(strings.Join(title, " "))
	return res
}

// IsHalt reports whether token matches any halt pattern.
func (n *Normalizer) IsHalt(token string) bool {
	return n.isHalt(token)
}

func (n *Normalizer) isHalt(token string) bool {
	for _, re := range n.halts {
		if re.MatchString(token) {
			return true
		}
	}
	return false
}

// replaceDelimiters keeps bytes that are not valid UTF-8 as they are.
func (n *Normalizer) replaceDelimiters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if size > 1 || r != utf8.RuneError {
			if strings.ContainsRune(n.delimiters, r) {
				b.WriteByte(' ')
				i += size
				continue
			}
		}
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}

// Key builds the lowercase title[_year] identity used to merge duplicates.
// Bytes that are not valid UTF-8 are written as \xNN so distinct raw names
// keep distinct keys.
func Key(title, year string, hasYear bool) string {
	if hasYear {
		title += "_" + year
	}
	return strings.ToLower(escapeInvalid(title))
}

func escapeInvalid(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&b, `\x%02x`, s[i])
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}
