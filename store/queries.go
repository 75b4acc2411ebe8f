package store

import "fmt"

// TopModules returns the most referenced modules, heaviest first.
// A limit of 0 returns all.
func (s *Store) TopModules(limit int) ([]ModuleUsage, error) {
	q := `
SELECT module, COUNT(*) AS n
FROM refs
GROUP BY module
ORDER BY n DESC, module ASC`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("store: top modules: %w", err)
	}
	defer rows.Close()

	var out []ModuleUsage
	for rows.Next() {
		var u ModuleUsage
		if err := rows.Scan(&u.Module, &u.Refs); err != nil {
			return nil, fmt.Errorf("store: scan module usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UnresolvedRefs returns recorded references that have never resolved
// successfully, ordered by file and line.
func (s *Store) UnresolvedRefs() ([]UnresolvedRef, error) {
	rows, err := s.db.Query(`
SELECT f.path, r.line, r.module, r.name
FROM refs r
JOIN files f ON f.id = r.file_id
WHERE NOT EXISTS (
  SELECT 1 FROM resolutions ok
  WHERE ok.module = r.module AND ok.name = r.name AND ok.ok = 1
)
ORDER BY f.path, r.line`)
	if err != nil {
		return nil, fmt.Errorf("store: unresolved refs: %w", err)
	}
	defer rows.Close()

	var out []UnresolvedRef
	for rows.Next() {
		var u UnresolvedRef
		if err := rows.Scan(&u.Path, &u.Line, &u.Module, &u.Name); err != nil {
			return nil, fmt.Errorf("store: scan unresolved ref: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ModuleLoads aggregates load events per module, most loaded first.
func (s *Store) ModuleLoads() ([]LoadStat, error) {
	rows, err := s.db.Query(`
SELECT module, COUNT(*) AS n, CAST(AVG(duration_us) AS INTEGER)
FROM loads
GROUP BY module
ORDER BY n DESC, module ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: module loads: %w", err)
	}
	defer rows.Close()

	var out []LoadStat
	for rows.Next() {
		var st LoadStat
		if err := rows.Scan(&st.Module, &st.Loads, &st.AvgMicros); err != nil {
			return nil, fmt.Errorf("store: scan load stat: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// FailedResolutions returns resolution events that failed, newest first.
func (s *Store) FailedResolutions() ([]Resolution, error) {
	rows, err := s.db.Query(`
SELECT module, name, ok, error, at
FROM resolutions
WHERE ok = 0
ORDER BY at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: failed resolutions: %w", err)
	}
	defer rows.Close()

	var out []Resolution
	for rows.Next() {
		var r Resolution
		if err := rows.Scan(&r.Module, &r.Name, &r.OK, &r.Error, &r.At); err != nil {
			return nil, fmt.Errorf("store: scan resolution: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FileCount returns the number of indexed files.
func (s *Store) FileCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: file count: %w", err)
	}
	return n, nil
}

// RefCount returns the number of recorded references.
func (s *Store) RefCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM refs").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: ref count: %w", err)
	}
	return n, nil
}
