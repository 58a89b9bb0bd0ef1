package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/Nomadcxx/coverflow/internal/logging"
	"github.com/Nomadcxx/coverflow/internal/naming"
	"github.com/Nomadcxx/coverflow/internal/paths"
	"github.com/Nomadcxx/coverflow/internal/scanner"
)

// EnvPrefix is prepended to every environment override, e.g.
// COVERFLOW_SERVER_ADDR.
const EnvPrefix = "COVERFLOW"

type Config struct {
	Library    LibraryConfig  `mapstructure:"library"`
	Cache      CacheConfig    `mapstructure:"cache"`
	Normalizer naming.Config  `mapstructure:"normalizer"`
	Covers     CoversConfig   `mapstructure:"covers"`
	Server     ServerConfig   `mapstructure:"server"`
	Watch      WatchConfig    `mapstructure:"watch"`
	Schedule   ScheduleConfig `mapstructure:"schedule"`
	Logging    logging.Config `mapstructure:"logging"`
	Browser    BrowserConfig  `mapstructure:"browser"`

	path string
}

type LibraryConfig struct {
	Paths      []string `mapstructure:"paths"`
	Extensions []string `mapstructure:"extensions"`
}

type CacheConfig struct {
	// Dir holds downloaded covers. Empty means ~/.config/coverflow/covers.
	Dir      string `mapstructure:"dir"`
	Database string `mapstructure:"database"`
}

type CoversConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	APIKey         string  `mapstructure:"api_key"`
	Endpoint       string  `mapstructure:"endpoint"`
	Workers        int     `mapstructure:"workers"`
	RatePerSecond  float64 `mapstructure:"rate_per_second"`
	RetryAfter     string  `mapstructure:"retry_after"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type WatchConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Debounce string `mapstructure:"debounce"`
}

type ScheduleConfig struct {
	// Rescan is a cron spec or descriptor such as "@every 30m". Empty disables it.
	Rescan string `mapstructure:"rescan"`
}

type BrowserConfig struct {
	// Scale is how many neighbouring titles the carousel shows on each side.
	Scale int `mapstructure:"scale"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Paths:      []string{},
			Extensions: append([]string(nil), scanner.DefaultExtensions...),
		},
		Normalizer: naming.DefaultConfig(),
		Covers: CoversConfig{
			Enabled:        false,
			Endpoint:       "https://www.omdbapi.com/",
			Workers:        2,
			RatePerSecond:  1,
			RetryAfter:     "24h",
			TimeoutSeconds: 10,
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8787",
			CORSOrigins: []string{},
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "2s",
		},
		Schedule: ScheduleConfig{
			Rescan: "@every 30m",
		},
		Logging: logging.DefaultConfig(),
		Browser: BrowserConfig{
			Scale: 2,
		},
	}
}

// Load reads ~/.config/coverflow/config.toml, or returns defaults when the
// file does not exist
func Load() (*Config, error) {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the config at path. Values from .env files and
// COVERFLOW_* environment variables override the file.
func LoadFrom(configPath string) (*Config, error) {
	if err := loadDotEnv(filepath.Dir(configPath)); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("covers.api_key", EnvPrefix+"_OMDB_API_KEY", EnvPrefix+"_COVERS_API_KEY")

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	// zero value: mapstructure merges into pre-filled slices
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	cfg.path = configPath
	return cfg, nil
}

// loadDotEnv loads .env from the working directory and the config
// directory. Variables already set in the environment win.
func loadDotEnv(configDir string) error {
	for _, f := range []string{".env", filepath.Join(configDir, ".env")} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("unable to load %s: %w", f, err)
		}
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("library.paths", c.Library.Paths)
	v.SetDefault("library.extensions", c.Library.Extensions)
	v.SetDefault("cache.dir", c.Cache.Dir)
	v.SetDefault("cache.database", c.Cache.Database)
	v.SetDefault("normalizer.delimiters", c.Normalizer.Delimiters)
	v.SetDefault("normalizer.halt_patterns", c.Normalizer.HaltPatterns)
	v.SetDefault("covers.enabled", c.Covers.Enabled)
	v.SetDefault("covers.api_key", c.Covers.APIKey)
	v.SetDefault("covers.endpoint", c.Covers.Endpoint)
	v.SetDefault("covers.workers", c.Covers.Workers)
	v.SetDefault("covers.rate_per_second", c.Covers.RatePerSecond)
	v.SetDefault("covers.retry_after", c.Covers.RetryAfter)
	v.SetDefault("covers.timeout_seconds", c.Covers.TimeoutSeconds)
	v.SetDefault("server.addr", c.Server.Addr)
	v.SetDefault("server.cors_origins", c.Server.CORSOrigins)
	v.SetDefault("watch.enabled", c.Watch.Enabled)
	v.SetDefault("watch.debounce", c.Watch.Debounce)
	v.SetDefault("schedule.rescan", c.Schedule.Rescan)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.file", c.Logging.File)
	v.SetDefault("logging.max_size_mb", c.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", c.Logging.MaxBackups)
	v.SetDefault("browser.scale", c.Browser.Scale)
}

// Path returns the file this config was loaded from
func (c *Config) Path() string {
	return c.path
}

// Save writes the config back to the file it was loaded from, or to the
// default location
func (c *Config) Save() error {
	if c.path == "" {
		p, err := paths.ConfigPath()
		if err != nil {
			return err
		}
		c.path = p
	}
	return c.SaveTo(c.path)
}

// SaveTo writes the config as TOML to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}
	// the file may hold an API key
	return os.WriteFile(path, []byte(c.ToTOML()), 0600)
}

// Exists reports whether a config file is present at the default location
func Exists() bool {
	path, err := paths.ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// CoverDir returns the cover cache root
func (c *Config) CoverDir() (string, error) {
	if c.Cache.Dir != "" {
		return expandHome(c.Cache.Dir)
	}
	return paths.CoversDir()
}

// DatabasePath returns the attempt store location
func (c *Config) DatabasePath() (string, error) {
	if c.Cache.Database != "" {
		return expandHome(c.Cache.Database)
	}
	return paths.DatabasePath()
}

// LibraryPaths returns the library roots with ~ expanded
func (c *Config) LibraryPaths() []string {
	out := make([]string, 0, len(c.Library.Paths))
	for _, p := range c.Library.Paths {
		if expanded, err := expandHome(p); err == nil {
			p = expanded
		}
		out = append(out, p)
	}
	return out
}

// RetryAfterDuration returns how long a failed cover download waits before retry
func (c CoversConfig) RetryAfterDuration() time.Duration {
	d, err := time.ParseDuration(c.RetryAfter)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// Timeout returns the HTTP timeout for provider calls
func (c CoversConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DebounceDuration returns the quiet period before a watcher signal
func (c WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Debounce)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	var errs []error

	if len(c.Library.Extensions) == 0 {
		errs = append(errs, errors.New("library.extensions must not be empty"))
	}
	if _, err := naming.New(c.Normalizer); err != nil {
		errs = append(errs, fmt.Errorf("normalizer: %w", err))
	}
	if c.Covers.Workers < 1 {
		errs = append(errs, fmt.Errorf("covers.workers must be at least 1, got %d", c.Covers.Workers))
	}
	if c.Covers.RatePerSecond < 0 {
		errs = append(errs, fmt.Errorf("covers.rate_per_second must not be negative"))
	}
	if _, err := time.ParseDuration(c.Covers.RetryAfter); err != nil {
		errs = append(errs, fmt.Errorf("covers.retry_after: %w", err))
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		errs = append(errs, fmt.Errorf("watch.debounce: %w", err))
	}
	if c.Schedule.Rescan != "" {
		if _, err := cron.ParseStandard(c.Schedule.Rescan); err != nil {
			errs = append(errs, fmt.Errorf("schedule.rescan: %w", err))
		}
	}
	if c.Browser.Scale < 0 {
		errs = append(errs, fmt.Errorf("browser.scale must not be negative"))
	}

	return errors.Join(errs...)
}

func expandHome(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := paths.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home dir: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}
