package config

import (
	"fmt"
	"strings"
)

// ToTOML renders the config with comments, the format written by
// `coverflow config init`
func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# coverflow configuration
# Generated by: coverflow config init

# ============================================================================
# LIBRARY
# Each path is a collection root. Every file or folder directly below a root
# becomes one title.
# ============================================================================
[library]
paths = %s
extensions = %s

# ============================================================================
# CACHE
# Covers are stored as <dir>/<collection root>/<Title>_<Year>
# ============================================================================
[cache]
dir = %q
database = %q

# ============================================================================
# TITLE NORMALIZER
# Characters replaced by spaces, and patterns that end a title
# ============================================================================
[normalizer]
delimiters = %q
halt_patterns = %s

# ============================================================================
# COVER DOWNLOADS (OMDb)
# Get an API key from https://www.omdbapi.com/apikey.aspx
# COVERFLOW_OMDB_API_KEY overrides api_key
# ============================================================================
[covers]
enabled = %v
api_key = %q
endpoint = %q
workers = %d
rate_per_second = %g
retry_after = %q
timeout_seconds = %d

# ============================================================================
# HTTP API (coverflow serve)
# ============================================================================
[server]
addr = %q
cors_origins = %s

# ============================================================================
# FILESYSTEM WATCH
# ============================================================================
[watch]
enabled = %v
debounce = %q

# ============================================================================
# SCHEDULED RESCAN
# Cron spec or descriptor; empty disables
# ============================================================================
[schedule]
rescan = %q

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = %q
file = %q
max_size_mb = %d
max_backups = %d

# ============================================================================
# BROWSER
# ============================================================================
[browser]
scale = %d
`,
		formatStringSlice(c.Library.Paths),
		formatStringSlice(c.Library.Extensions),
		c.Cache.Dir,
		c.Cache.Database,
		c.Normalizer.Delimiters,
		formatStringSlice(c.Normalizer.HaltPatterns),
		c.Covers.Enabled,
		c.Covers.APIKey,
		c.Covers.Endpoint,
		c.Covers.Workers,
		c.Covers.RatePerSecond,
		c.Covers.RetryAfter,
		c.Covers.TimeoutSeconds,
		c.Server.Addr,
		formatStringSlice(c.Server.CORSOrigins),
		c.Watch.Enabled,
		c.Watch.Debounce,
		c.Schedule.Rescan,
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
		c.Browser.Scale,
	)
}

// formatStringSlice renders a TOML array of literal strings so regex
// backslashes survive unescaped
func formatStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = tomlString(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func tomlString(v string) string {
	if !strings.ContainsAny(v, "'\n") {
		return "'" + v + "'"
	}
	return fmt.Sprintf("%q", v)
}
