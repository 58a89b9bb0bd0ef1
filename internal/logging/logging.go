// Package logging provides leveled, component-tagged logging to stderr and
// an optional size-rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is a key-value pair appended to a log line
type Field struct {
	Key   string
	Value any
}

// F creates a Field
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	File       string `mapstructure:"file"`        // empty = stderr only
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after this size
	MaxBackups int    `mapstructure:"max_backups"`
	Quiet      bool   `mapstructure:"-"` // file only, used while the browser owns the terminal
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  10,
		MaxBackups: 5,
	}
}

// Logger writes formatted lines to its sinks. Safe for concurrent use.
type Logger struct {
	mu         sync.Mutex
	level      Level
	console    io.Writer
	file       *os.File
	filePath   string
	maxSize    int64
	maxBackups int
}

// New creates a Logger for cfg
func New(cfg Config) (*Logger, error) {
	l := &Logger{
		level:      ParseLevel(cfg.Level),
		maxSize:    int64(cfg.MaxSizeMB) * 1024 * 1024,
		maxBackups: cfg.MaxBackups,
	}
	if !cfg.Quiet {
		l.console = os.Stderr
	}
	if l.maxSize <= 0 {
		l.maxSize = 10 * 1024 * 1024
	}
	if l.maxBackups <= 0 {
		l.maxBackups = 5
	}

	if cfg.File == "" {
		return l, nil
	}

	path, err := expandHome(cfg.File)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	l.filePath = path
	if err := l.openFile(); err != nil {
		return nil, err
	}
	return l, nil
}

// NewWriter returns a logger writing only to w
func NewWriter(w io.Writer, level Level) *Logger {
	return &Logger{level: level, console: w}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{level: LevelError + 1}
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get home dir: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func (l *Logger) openFile() error {
	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	l.file = f
	return nil
}

func (l *Logger) rotateIfNeeded() error {
	if l.file == nil {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < l.maxSize {
		return nil
	}

	l.file.Close()
	l.file = nil
	if err := rotateFiles(l.filePath, l.maxBackups); err != nil {
		return err
	}
	return l.openFile()
}

func format(level Level, component, msg string, err error, fields []Field) string {
	var sb strings.Builder
	sb.WriteString(time.Now().Format(time.RFC3339))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("] [")
	sb.WriteString(component)
	sb.WriteString("] ")
	sb.WriteString(msg)

	if err != nil {
		sb.WriteString(" | error=")
		sb.WriteString(err.Error())
	}
	for _, f := range fields {
		fmt.Fprintf(&sb, " | %s=%v", f.Key, f.Value)
	}
	sb.WriteByte('\n')
	return sb.String()
}

func (l *Logger) log(level Level, component, msg string, err error, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || (l.console == nil && l.filePath == "") {
		return
	}

	if rotErr := l.rotateIfNeeded(); rotErr != nil {
		fmt.Fprintf(os.Stderr, "log rotation error: %v\n", rotErr)
	}

	line := format(level, component, msg, err, fields)
	if l.console != nil {
		io.WriteString(l.console, line)
	}
	if l.file != nil {
		l.file.WriteString(line)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(component, msg string, fields ...Field) {
	l.log(LevelDebug, component, msg, nil, fields)
}

// Info logs an info message
func (l *Logger) Info(component, msg string, fields ...Field) {
	l.log(LevelInfo, component, msg, nil, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(component, msg string, fields ...Field) {
	l.log(LevelWarn, component, msg, nil, fields)
}

// Error logs an error message with its cause
func (l *Logger) Error(component, msg string, err error, fields ...Field) {
	l.log(LevelError, component, msg, err, fields)
}

// SetLevel changes the minimum level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the minimum level
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// FilePath returns the log file path, empty when logging to stderr only
func (l *Logger) FilePath() string {
	return l.filePath
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
