// Package database persists cover download attempts in SQLite so failed
// lookups are not retried on every start.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no attempt is recorded for a title.
var ErrNotFound = errors.New("attempt not found")

// CoverDB is the handle for the cover attempt store
type CoverDB struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
	now  func() time.Time
}

// OpenPath opens or creates the database at path
func OpenPath(path string) (*CoverDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return open(db, path)
}

// OpenInMemory opens a private in-memory database, used by tests and
// when no cache directory is writable.
func OpenInMemory() (*CoverDB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// every pooled connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)
	return open(db, ":memory:")
}

func open(db *sql.DB, path string) (*CoverDB, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cdb := &CoverDB{db: db, path: path, now: time.Now}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return cdb, nil
}

// Close closes the database connection
func (c *CoverDB) Close() error {
	return c.db.Close()
}

// Path returns the database file path, ":memory:" for in-memory stores
func (c *CoverDB) Path() string {
	return c.path
}

// SchemaVersion returns the highest applied migration
func (c *CoverDB) SchemaVersion() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var v int
	err := c.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v)
	return v, err
}
