package store

import (
	"fmt"
	"sort"
)

// FilesReferencingNames returns the paths of files that refer to any of the
// given class simple names, sorted.
func (s *Store) FilesReferencingNames(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	query := `SELECT DISTINCT f.path
		FROM type_references tr
		JOIN files f ON f.id = tr.file_id
		WHERE tr.name IN (` + inClause(len(names)) + `)
		ORDER BY f.path`
	rows, err := s.db.Query(query, toArgs(names)...)
	if err != nil {
		return nil, fmt.Errorf("files referencing names: %w", err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// ChangedClasses compares two FQN-to-hash maps and returns the simple names
// of classes that were added, removed, or changed signature, sorted.
func ChangedClasses(before, after map[string]string) []string {
	seen := make(map[string]bool)
	add := func(fqn string) {
		seen[simpleName(fqn)] = true
	}
	for fqn, h := range before {
		if h2, ok := after[fqn]; !ok || h2 != h {
			add(fqn)
		}
	}
	for fqn := range after {
		if _, ok := before[fqn]; !ok {
			add(fqn)
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func simpleName(fqn string) string {
	for i := len(fqn) - 1; i >= 0; i-- {
		if fqn[i] == '.' || fqn[i] == '$' {
			return fqn[i+1:]
		}
	}
	return fqn
}
