package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// --- File operations ---

func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (path, language, hash, last_indexed) VALUES (?, ?, ?, ?)",
		f.Path, f.Language, f.Hash, f.LastIndexed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	return id, nil
}

// EnsureFile returns the row for path, inserting it when missing. An existing
// row keeps its hash until the next CommitBatch.
func (s *Store) EnsureFile(path, language string) (*File, error) {
	f, err := s.FileByPath(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	f = &File{Path: path, Language: language, LastIndexed: time.Now()}
	if _, err := s.InsertFile(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Store) scanFile(scanner interface{ Scan(...any) error }) (*File, error) {
	f := &File{}
	var hash sql.NullString
	var indexed sql.NullTime
	if err := scanner.Scan(&f.ID, &f.Path, &f.Language, &hash, &indexed); err != nil {
		return nil, err
	}
	f.Hash = hash.String
	f.LastIndexed = indexed.Time
	return f, nil
}

// FileByPath returns ErrNotFound when no file has the path.
func (s *Store) FileByPath(path string) (*File, error) {
	f, err := s.scanFile(s.db.QueryRow(
		"SELECT id, path, language, hash, last_indexed FROM files WHERE path = ?", path,
	))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query("SELECT id, path, language, hash, last_indexed FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f, err := s.scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// --- Symbol operations ---

func (s *Store) InsertSymbol(sym *Symbol) (int64, error) {
	id, err := insertSymbol(s.db, sym)
	if err != nil {
		return 0, fmt.Errorf("insert symbol: %w", err)
	}
	sym.ID = id
	return id, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertSymbol(db execer, sym *Symbol) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO symbols (file_id, name, fqn, kind, visibility, modifiers, detail, signature_hash,
			start_line, start_col, end_line, end_col, parent_symbol_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.FileID, sym.Name, sym.FQN, sym.Kind, sym.Visibility, encodeModifiers(sym.Modifiers),
		sym.Detail, sym.SignatureHash,
		sym.StartLine, sym.StartCol, sym.EndLine, sym.EndCol, sym.ParentSymbolID,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func scanSymbol(scanner interface{ Scan(...any) error }, extra ...any) (*Symbol, error) {
	sym := &Symbol{}
	var mods, fqn, vis, detail, hash sql.NullString
	dest := []any{
		&sym.ID, &sym.FileID, &sym.Name, &fqn, &sym.Kind, &vis, &mods, &detail,
		&hash, &sym.StartLine, &sym.StartCol, &sym.EndLine, &sym.EndCol,
		&sym.ParentSymbolID,
	}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	sym.FQN = fqn.String
	sym.Visibility = vis.String
	sym.Detail = detail.String
	sym.SignatureHash = hash.String
	sym.Modifiers = decodeModifiers(mods.String)
	return sym, nil
}

// symbolCols is the column list matching scanSymbol.
const symbolCols = `s.id, s.file_id, s.name, s.fqn, s.kind, s.visibility, s.modifiers, s.detail,
	s.signature_hash, s.start_line, s.start_col, s.end_line, s.end_col, s.parent_symbol_id`

func (s *Store) querySymbols(query string, args ...any) ([]*Symbol, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var symbols []*Symbol
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

func (s *Store) SymbolsByFile(fileID int64) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+symbolCols+" FROM symbols s WHERE s.file_id = ? ORDER BY s.id", fileID)
}

func (s *Store) SymbolsByName(name string) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+symbolCols+" FROM symbols s WHERE s.name = ? ORDER BY s.id", name)
}

func (s *Store) SymbolsByKind(kind string) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+symbolCols+" FROM symbols s WHERE s.kind = ? ORDER BY s.id", kind)
}

func (s *Store) SymbolChildren(symbolID int64) ([]*Symbol, error) {
	return s.querySymbols("SELECT "+symbolCols+" FROM symbols s WHERE s.parent_symbol_id = ? ORDER BY s.id", symbolID)
}

// ClassHashes maps the FQN of every class declared in the file to its
// signature hash.
func (s *Store) ClassHashes(fileID int64) (map[string]string, error) {
	syms, err := s.SymbolsByFile(fileID)
	if err != nil {
		return nil, fmt.Errorf("class hashes: %w", err)
	}
	return classHashes(syms), nil
}

func classHashes(syms []*Symbol) map[string]string {
	out := make(map[string]string)
	for _, sym := range syms {
		if IsClassKind(sym.Kind) {
			out[sym.FQN] = sym.SignatureHash
		}
	}
	return out
}

// --- Type reference operations ---

func (s *Store) InsertTypeReference(ref *TypeReference) (int64, error) {
	id, err := insertTypeReference(s.db, ref)
	if err != nil {
		return 0, fmt.Errorf("insert type reference: %w", err)
	}
	ref.ID = id
	return id, nil
}

func insertTypeReference(db execer, ref *TypeReference) (int64, error) {
	res, err := db.Exec(
		"INSERT OR IGNORE INTO type_references (file_id, name) VALUES (?, ?)",
		ref.FileID, ref.Name,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// TypeReferencesByFile returns the class names a file refers to, sorted.
func (s *Store) TypeReferencesByFile(fileID int64) ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM type_references WHERE file_id = ? ORDER BY name", fileID)
	if err != nil {
		return nil, fmt.Errorf("type references by file: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan type reference: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
