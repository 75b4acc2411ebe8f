package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// RecordFile replaces the stored reference set for one source file.
// The file row is upserted by path; its previous refs are dropped and
// the given refs inserted, all in one transaction.
func (s *Store) RecordFile(path, digest string, refs []Ref) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var fileID int64
	err = tx.QueryRow("SELECT id FROM files WHERE path = ?", path).Scan(&fileID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.Exec(
			"INSERT INTO files (path, digest, indexed_at) VALUES (?, ?, ?)",
			path, digest, now,
		)
		if err != nil {
			return fmt.Errorf("store: insert file %s: %w", path, err)
		}
		fileID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("store: file id for %s: %w", path, err)
		}

	case err != nil:
		return fmt.Errorf("store: query file %s: %w", path, err)

	default:
		if _, err := tx.Exec(
			"UPDATE files SET digest = ?, indexed_at = ? WHERE id = ?",
			digest, now, fileID,
		); err != nil {
			return fmt.Errorf("store: update file %s: %w", path, err)
		}
		if _, err := tx.Exec("DELETE FROM refs WHERE file_id = ?", fileID); err != nil {
			return fmt.Errorf("store: clear refs for %s: %w", path, err)
		}
	}

	for _, ref := range refs {
		if _, err := tx.Exec(
			"INSERT INTO refs (file_id, module, name, line) VALUES (?, ?, ?, ?)",
			fileID, ref.Module, ref.Name, ref.Line,
		); err != nil {
			return fmt.Errorf("store: insert ref %s.%s: %w", ref.Module, ref.Name, err)
		}
	}

	return tx.Commit()
}

// RecordLoad appends one module load event.
func (s *Store) RecordLoad(module string, d time.Duration) error {
	_, err := s.db.Exec(
		"INSERT INTO loads (module, duration_us, at) VALUES (?, ?, ?)",
		module, d.Microseconds(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("store: record load %s: %w", module, err)
	}
	return nil
}

// RecordResolution appends one import resolution event.
func (s *Store) RecordResolution(module, name string, resErr error) error {
	var msg string
	if resErr != nil {
		msg = resErr.Error()
	}
	_, err := s.db.Exec(
		"INSERT INTO resolutions (module, name, ok, error, at) VALUES (?, ?, ?, ?, ?)",
		module, name, resErr == nil, msg, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("store: record resolution %s.%s: %w", module, name, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Recorder: registry observer backed by the store
// ---------------------------------------------------------------------------

// Recorder adapts a Store to the registry observer interface. Observer
// callbacks carry no error path, so database errors are retained; check
// Err after a run.
type Recorder struct {
	s *Store

	mu  sync.Mutex
	err error
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(s *Store) *Recorder {
	return &Recorder{s: s}
}

// ModuleLoaded records a completed module load.
func (r *Recorder) ModuleLoaded(path string, d time.Duration) {
	r.keep(r.s.RecordLoad(path, d))
}

// ImportResolved records an import resolution outcome.
func (r *Recorder) ImportResolved(module, name string, err error) {
	r.keep(r.s.RecordResolution(module, name, err))
}

// Err returns the first database error hit while recording, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) keep(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
}
