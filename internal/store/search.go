package store

import "fmt"

// SearchSymbols returns the symbols whose name contains query,
// case-insensitively, ordered by name then path. An empty query matches
// every symbol. Positionless symbols (script classes) are not returned.
// limit <= 0 means no limit.
func (s *Store) SearchSymbols(query string, limit int) ([]*SymbolMatch, error) {
	q := `SELECT ` + symbolCols + `, f.path, COALESCE(p.fqn, p.name, '')
		FROM symbols s
		JOIN files f ON f.id = s.file_id
		LEFT JOIN symbols p ON p.id = s.parent_symbol_id
		WHERE instr(lower(s.name), lower(?)) > 0 AND s.start_line >= 0
		ORDER BY s.name, f.path, s.start_line, s.start_col`
	args := []any{query}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("search symbols: %w", err)
	}
	defer rows.Close()
	var out []*SymbolMatch
	for rows.Next() {
		m := &SymbolMatch{}
		sym, err := scanSymbol(rows, &m.Path, &m.Container)
		if err != nil {
			return nil, fmt.Errorf("scan symbol match: %w", err)
		}
		m.Symbol = *sym
		out = append(out, m)
	}
	return out, rows.Err()
}
