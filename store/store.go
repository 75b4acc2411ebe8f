// Package store persists import references and resolution events to
// SQLite, backing the usage reports. The core runtime never touches it;
// hosts opt in by attaching a Recorder as the registry observer.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is the SQLite data access layer.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at dbPath with WAL mode enabled.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
-- Indexed sources

CREATE TABLE IF NOT EXISTS files (
  id          INTEGER PRIMARY KEY,
  path        TEXT NOT NULL UNIQUE,
  digest      TEXT NOT NULL,
  indexed_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS refs (
  id          INTEGER PRIMARY KEY,
  file_id     INTEGER NOT NULL REFERENCES files(id),
  module      TEXT NOT NULL,
  name        TEXT NOT NULL,
  line        INTEGER
);

-- Runtime events

CREATE TABLE IF NOT EXISTS loads (
  id          INTEGER PRIMARY KEY,
  module      TEXT NOT NULL,
  duration_us INTEGER NOT NULL,
  at          TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS resolutions (
  id          INTEGER PRIMARY KEY,
  module      TEXT NOT NULL,
  name        TEXT NOT NULL,
  ok          BOOLEAN NOT NULL,
  error       TEXT,
  at          TIMESTAMP NOT NULL
);

-- Indexes

CREATE INDEX IF NOT EXISTS idx_refs_file ON refs(file_id);
CREATE INDEX IF NOT EXISTS idx_refs_module ON refs(module);
CREATE INDEX IF NOT EXISTS idx_loads_module ON loads(module);
CREATE INDEX IF NOT EXISTS idx_resolutions_target ON resolutions(module, name);
`
