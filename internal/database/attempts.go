package database

import (
	"database/sql"
	"errors"
	"time"
)

// AttemptStatus is the outcome of the last download attempt for a title
type AttemptStatus string

const (
	StatusOK       AttemptStatus = "ok"
	StatusFailed   AttemptStatus = "failed"
	StatusNoPoster AttemptStatus = "no_poster"
)

// Attempt is the stored history of cover downloads for one title
type Attempt struct {
	Key            string
	CollectionRoot string
	Status         AttemptStatus
	Attempts       int
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RecordAttempt stores the outcome of a download, counting repeats
func (c *CoverDB) RecordAttempt(key, collectionRoot string, status AttemptStatus, lastErr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UTC()
	_, err := c.db.Exec(`
		INSERT INTO cover_attempts (key, collection_root, status, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key, collection_root) DO UPDATE SET
			status = excluded.status,
			last_error = excluded.last_error,
			attempts = attempts + 1,
			updated_at = excluded.updated_at
	`, key, collectionRoot, string(status), lastErr, now, now)
	return err
}

// GetAttempt returns the record for a title or ErrNotFound
func (c *CoverDB) GetAttempt(key, collectionRoot string) (*Attempt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.db.QueryRow(`
		SELECT key, collection_root, status, attempts, last_error, created_at, updated_at
		FROM cover_attempts
		WHERE key = ? AND collection_root = ?
	`, key, collectionRoot)

	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ShouldRetry reports whether a download should be tried now. Titles never
// tried, or whose last attempt succeeded, are always eligible. Failures are
// retried once after has passed since the last attempt.
func (c *CoverDB) ShouldRetry(key, collectionRoot string, after time.Duration) (bool, error) {
	a, err := c.GetAttempt(key, collectionRoot)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if a.Status == StatusOK {
		return true, nil
	}
	return c.now().Sub(a.UpdatedAt) >= after, nil
}

// ListFailures returns every title whose last attempt did not succeed,
// most recent first
func (c *CoverDB) ListFailures() ([]Attempt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query(`
		SELECT key, collection_root, status, attempts, last_error, created_at, updated_at
		FROM cover_attempts
		WHERE status != ?
		ORDER BY updated_at DESC, key ASC
	`, string(StatusOK))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Reset forgets the history of one title. An empty key clears everything.
func (c *CoverDB) Reset(key, collectionRoot string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res sql.Result
	var err error
	if key == "" {
		res, err = c.db.Exec(`DELETE FROM cover_attempts`)
	} else {
		res, err = c.db.Exec(`DELETE FROM cover_attempts WHERE key = ? AND collection_root = ?`, key, collectionRoot)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (*Attempt, error) {
	var a Attempt
	var status string
	if err := row.Scan(&a.Key, &a.CollectionRoot, &status, &a.Attempts, &a.LastError, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = AttemptStatus(status)
	return &a, nil
}
