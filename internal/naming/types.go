package naming

// Result is the outcome of normalizing one raw name.
type Result struct {
	Title   string
	Year    string
	HasYear bool
}

// Empty reports whether normalization produced no title. Callers treat an
// empty result as "skip this unit", never as a failure.
func (r Result) Empty() bool {
	return r.Title == ""
}

// Key returns the catalog key for this result.
func (r Result) Key() string {
	return Key(r.Title, r.Year, r.HasYear)
}

// Display returns "Title (Year)" or just the title when no year was found.
func (r Result) Display() string {
	if r.HasYear {
		return r.Title + " (" + r.Year + ")"
	}
	return r.Title
}

// Config holds the tables that drive normalization. Every field is plain data
// so the halt list can be extended from the config file.
type Config struct {
	// Delimiters are replaced by a space before tokenizing.
	Delimiters string `mapstructure:"delimiters"`
	// HaltPatterns are regular expressions tried in order against each token.
	// The first match ends the title. Case sensitivity is up to each pattern.
	HaltPatterns []string `mapstructure:"halt_patterns"`
}

// DefaultDelimiters are the separator characters used by release names.
const DefaultDelimiters = ".-_:,;"

// DefaultHaltPatterns marks season/episode, rip, resolution and language
// tokens. Order matters only for readability: any match halts.
var DefaultHaltPatterns = []string{
	`(?i)^season[0-9]?$`,
	`(?i)^S[0-9]{1,2}E[0-9]{1,2}$`,
	`(?i)DVD`,
	`(?i)DVDR`,
	`(?i)DVDRip`,
	`(?i)DVDSCR`,
	`(?i)XviD`,
	`(?i)B[DR]Rip`,
	`(?i)^B[DR]$`,
	`(?i)WEBRip`,
	`(?i)HDCAM`,
	`(?i)HDRip`,
	`^DD([0-9]\.[0-9])?$`,
	`^[0-9]{3,4}p$`,
	`^TS$`,
	`^US$`,
	`^HC$`,
	`^NL$`,
	`(?i)^Subs$`,
	`^\[[^\]].*\]$`,
}

// DefaultConfig returns the built-in delimiter set and halt list.
func DefaultConfig() Config {
	patterns := make([]string, len(DefaultHaltPatterns))
	copy(patterns, DefaultHaltPatterns)
	return Config{
		Delimiters:   DefaultDelimiters,
		HaltPatterns: patterns,
	}
}
