package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *CoverDB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenInMemory_Migrates(t *testing.T) {
	db := openTestDB(t)
	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, v)
	assert.Equal(t, ":memory:", db.Path())
}

func TestOpenPath_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "coverflow.db")

	db, err := OpenPath(path)
	require.NoError(t, err)
	require.NoError(t, db.RecordAttempt("heat_1995", "/m", StatusFailed, "timeout"))
	require.NoError(t, db.Close())

	db, err = OpenPath(path)
	require.NoError(t, err)
	defer db.Close()

	a, err := db.GetAttempt("heat_1995", "/m")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, a.Status)
	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, v)
}

func TestRecordAttempt_Upsert(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.RecordAttempt("heat_1995", "/m", StatusFailed, "timeout"))
	require.NoError(t, db.RecordAttempt("heat_1995", "/m", StatusNoPoster, ""))

	a, err := db.GetAttempt("heat_1995", "/m")
	require.NoError(t, err)
	assert.Equal(t, StatusNoPoster, a.Status)
	assert.Equal(t, 2, a.Attempts)
	assert.Empty(t, a.LastError)
	assert.False(t, a.CreatedAt.After(a.UpdatedAt))
}

func TestRecordAttempt_RootsAreSeparate(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.RecordAttempt("heat", "/a", StatusFailed, "x"))
	require.NoError(t, db.RecordAttempt("heat", "/b", StatusOK, ""))

	a, err := db.GetAttempt("heat", "/a")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Attempts)
	assert.Equal(t, StatusFailed, a.Status)
}

func TestGetAttempt_NotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetAttempt("nope", "/m")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShouldRetry(t *testing.T) {
	db := openTestDB(t)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return clock }

	ok, err := db.ShouldRetry("heat", "/m", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "never tried")

	require.NoError(t, db.RecordAttempt("heat", "/m", StatusFailed, "503"))
	ok, err = db.ShouldRetry("heat", "/m", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "failed a moment ago")

	clock = clock.Add(2 * time.Hour)
	ok, err = db.ShouldRetry("heat", "/m", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "retry window passed")

	require.NoError(t, db.RecordAttempt("heat", "/m", StatusOK, ""))
	ok, err = db.ShouldRetry("heat", "/m", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListFailures(t *testing.T) {
	db := openTestDB(t)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return clock }

	require.NoError(t, db.RecordAttempt("alien", "/m", StatusFailed, "timeout"))
	clock = clock.Add(time.Minute)
	require.NoError(t, db.RecordAttempt("dune", "/m", StatusNoPoster, ""))
	require.NoError(t, db.RecordAttempt("heat", "/m", StatusOK, ""))

	failures, err := db.ListFailures()
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "dune", failures[0].Key)
	assert.Equal(t, "alien", failures[1].Key)
	assert.Equal(t, "timeout", failures[1].LastError)
}

func TestReset(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.RecordAttempt("alien", "/m", StatusFailed, ""))
	require.NoError(t, db.RecordAttempt("dune", "/m", StatusFailed, ""))

	n, err := db.Reset("alien", "/m")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = db.GetAttempt("alien", "/m")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err = db.Reset("", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
