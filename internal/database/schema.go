package database

import "database/sql"

const currentSchemaVersion = 2

var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			`CREATE TABLE cover_attempts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				key TEXT NOT NULL,
				collection_root TEXT NOT NULL,
				status TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 1,
				last_error TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				UNIQUE(key, collection_root)
			)`,

			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
	{
		version: 2,
		up: []string{
			`CREATE INDEX idx_cover_attempts_status ON cover_attempts(status, updated_at)`,
			`INSERT INTO schema_version (version) VALUES (2)`,
		},
	},
}

type migration struct {
	version int
	up      []string
}

// applyMigrations runs every migration newer than the stored version, each
// in its own transaction. Migrations record their own version row.
func applyMigrations(db *sql.DB) error {
	var current int
	if err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&current); err != nil {
		// fresh database
		current = 0
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return err
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
