// Package database is the persistence adapter: the whole plan collection is
// stored as one serialized JSON snapshot in a local SQLite file, keyed by a
// fixed storage key. The store never sees partial diffs.
package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection
type DB struct {
	*sql.DB
}

// New opens (or creates) the snapshot database at path
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The snapshot is written whole on every mutation; one writer at a time.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{DB: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		storage_key    TEXT PRIMARY KEY,
		schema_version INTEGER NOT NULL,
		payload        TEXT NOT NULL,
		updated_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := db.Exec(schema)
	return err
}
