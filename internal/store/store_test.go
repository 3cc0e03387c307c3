package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

// insertTestFile is a helper that inserts a file and returns it with ID set.
func insertTestFile(t *testing.T, s *Store, path string) *File {
	t.Helper()
	f, err := s.EnsureFile(path, "groovy")
	require.NoError(t, err)
	require.Positive(t, f.ID)
	return f
}

// insertTestSymbol inserts a symbol with minimal required fields.
func insertTestSymbol(t *testing.T, s *Store, fileID *int64, name, kind string, parent *int64) *Symbol {
	t.Helper()
	sym := &Symbol{
		FileID:         fileID,
		Name:           name,
		FQN:            name,
		Kind:           kind,
		Visibility:     "public",
		Modifiers:      []string{"static"},
		StartLine:      0, StartCol: 0, EndLine: 9, EndCol: 0,
		ParentSymbolID: parent,
	}
	id, err := s.InsertSymbol(sym)
	require.NoError(t, err)
	require.Positive(t, id)
	return sym
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"files", "symbols", "type_references"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestMigrate_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var mode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

func TestNewStore_InMemory(t *testing.T) {
	t.Parallel()
	s, err := NewStore("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())

	f := insertTestFile(t, s, "file:///a.groovy")
	got, err := s.FileByPath("file:///a.groovy")
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
}

// =============================================================================
// File operations
// =============================================================================

func TestFile_EnsureIsIdempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	a := insertTestFile(t, s, "file:///src/A.groovy")
	b := insertTestFile(t, s, "file:///src/A.groovy")
	assert.Equal(t, a.ID, b.ID)

	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "groovy", files[0].Language)
}

func TestFile_ByPathNotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	got, err := s.FileByPath("file:///nonexistent")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, got)
}

func TestFile_Delete(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "file:///A.groovy")
	cls := insertTestSymbol(t, s, &f.ID, "A", KindClass, nil)
	insertTestSymbol(t, s, &f.ID, "run", KindMethod, &cls.ID)
	_, err := s.InsertTypeReference(&TypeReference{FileID: f.ID, Name: "String"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFile("file:///A.groovy"))
	_, err = s.FileByPath("file:///A.groovy")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing file is not an error.
	require.NoError(t, s.DeleteFile("file:///A.groovy"))
}

func TestDiscardBatch_RemovesOnlyCreatedFiles(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	kept := insertTestFile(t, s, "file:///Old.groovy")

	batch := NewBatchedStore(s)
	old, err := batch.EnsureFile("file:///Old.groovy", "groovy")
	require.NoError(t, err)
	assert.Equal(t, kept.ID, old.ID)
	fresh, err := batch.EnsureFile("file:///New.groovy", "groovy")
	require.NoError(t, err)
	require.Positive(t, fresh.ID)

	require.NoError(t, s.DiscardBatch(batch))
	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "file:///Old.groovy", files[0].Path)

	// a second discard has nothing left to remove
	require.NoError(t, s.DiscardBatch(batch))
}

// =============================================================================
// Symbol operations
// =============================================================================

func TestSymbol_InsertAndQueryByFile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "file:///A.groovy")

	sym := insertTestSymbol(t, s, &f.ID, "A", KindClass, nil)
	syms, err := s.SymbolsByFile(f.ID)
	require.NoError(t, err)
	require.Len(t, syms, 1)
	got := syms[0]
	assert.Equal(t, sym.ID, got.ID)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, KindClass, got.Kind)
	assert.Equal(t, []string{"static"}, got.Modifiers)
	assert.Equal(t, 9, got.EndLine)
	assert.Nil(t, got.ParentSymbolID)
	require.NotNil(t, got.FileID)
	assert.Equal(t, f.ID, *got.FileID)
}

func TestSymbol_ModifiersRoundTripSorted(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "file:///M.groovy")

	tests := []struct {
		name string
		mods []string
		want []string
	}{
		{name: "Many", mods: []string{"static", "final", "abstract"}, want: []string{"abstract", "final", "static"}},
		{name: "None", mods: nil, want: nil},
	}
	for _, tt := range tests {
		_, err := s.InsertSymbol(&Symbol{FileID: &f.ID, Name: tt.name, FQN: tt.name, Kind: KindClass, Modifiers: tt.mods, EndLine: 1})
		require.NoError(t, err)
	}
	syms, err := s.SymbolsByFile(f.ID)
	require.NoError(t, err)
	require.Len(t, syms, len(tests))
	got := make(map[string][]string)
	for _, sym := range syms {
		got[sym.Name] = sym.Modifiers
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, got[tt.name], tt.name)
	}
}

func TestSymbol_QueryByNameKindAndChildren(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "file:///A.groovy")
	cls := insertTestSymbol(t, s, &f.ID, "A", KindClass, nil)
	insertTestSymbol(t, s, &f.ID, "go", KindMethod, &cls.ID)
	insertTestSymbol(t, s, &f.ID, "size", KindProperty, &cls.ID)

	byName, err := s.SymbolsByName("go")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, KindMethod, byName[0].Kind)

	byKind, err := s.SymbolsByKind(KindClass)
	require.NoError(t, err)
	require.Len(t, byKind, 1)

	children, err := s.SymbolChildren(cls.ID)
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestDeleteFileData(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "file:///A.groovy")
	cls := insertTestSymbol(t, s, &f.ID, "A", KindClass, nil)
	inner := insertTestSymbol(t, s, &f.ID, "A$B", KindClass, &cls.ID)
	insertTestSymbol(t, s, &f.ID, "m", KindMethod, &inner.ID)
	_, err := s.InsertTypeReference(&TypeReference{FileID: f.ID, Name: "List"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFileData(f.ID))

	syms, err := s.SymbolsByFile(f.ID)
	require.NoError(t, err)
	assert.Empty(t, syms)
	refs, err := s.TypeReferencesByFile(f.ID)
	require.NoError(t, err)
	assert.Empty(t, refs)

	// The file row survives.
	_, err = s.FileByPath("file:///A.groovy")
	require.NoError(t, err)
}

// =============================================================================
// Type references & blast radius
// =============================================================================

func TestTypeReferences_Deduplicated(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "file:///A.groovy")
	for _, name := range []string{"String", "List", "String"} {
		_, err := s.InsertTypeReference(&TypeReference{FileID: f.ID, Name: name})
		require.NoError(t, err)
	}
	refs, err := s.TypeReferencesByFile(f.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"List", "String"}, refs)
}

func TestFilesReferencingNames(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	a := insertTestFile(t, s, "file:///A.groovy")
	b := insertTestFile(t, s, "file:///B.groovy")
	c := insertTestFile(t, s, "file:///C.groovy")
	for _, r := range []TypeReference{
		{FileID: a.ID, Name: "Shape"},
		{FileID: b.ID, Name: "Shape"},
		{FileID: b.ID, Name: "Color"},
		{FileID: c.ID, Name: "String"},
	} {
		_, err := s.InsertTypeReference(&r)
		require.NoError(t, err)
	}

	paths, err := s.FilesReferencingNames([]string{"Shape", "Color"})
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///A.groovy", "file:///B.groovy"}, paths)

	paths, err = s.FilesReferencingNames(nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestChangedClasses(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		before, after map[string]string
		want          []string
	}{
		{"unchanged", map[string]string{"p.A": "1"}, map[string]string{"p.A": "1"}, []string{}},
		{"changed", map[string]string{"p.A": "1"}, map[string]string{"p.A": "2"}, []string{"A"}},
		{"added", nil, map[string]string{"p.Outer$In": "1"}, []string{"In"}},
		{"removed", map[string]string{"A": "1", "B": "1"}, map[string]string{"B": "1"}, []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ChangedClasses(tt.before, tt.after))
		})
	}
}

// =============================================================================
// Signature Hash
// =============================================================================

func TestSignatureHash_Deterministic(t *testing.T) {
	t.Parallel()
	members := []*TypeMember{
		{Name: "b", Kind: KindMethod, TypeExpr: "int b()"},
		{Name: "a", Kind: KindField, TypeExpr: "String a"},
	}
	reversed := []*TypeMember{members[1], members[0]}
	h1 := ComputeSignatureHash("A", KindClass, "public", []string{"final", "abstract"}, []string{"Base"}, members)
	h2 := ComputeSignatureHash("A", KindClass, "public", []string{"abstract", "final"}, []string{"Base"}, reversed)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestSignatureHash_Changes(t *testing.T) {
	t.Parallel()
	base := ComputeSignatureHash("A", KindClass, "public", nil, nil, nil)
	tests := []struct {
		name string
		hash string
	}{
		{"name", ComputeSignatureHash("B", KindClass, "public", nil, nil, nil)},
		{"kind", ComputeSignatureHash("A", KindInterface, "public", nil, nil, nil)},
		{"visibility", ComputeSignatureHash("A", KindClass, "private", nil, nil, nil)},
		{"modifiers", ComputeSignatureHash("A", KindClass, "public", []string{"abstract"}, nil, nil)},
		{"supertypes", ComputeSignatureHash("A", KindClass, "public", nil, []string{"Base"}, nil)},
		{"members", ComputeSignatureHash("A", KindClass, "public", nil, nil, []*TypeMember{{Name: "m", Kind: KindMethod}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotEqual(t, base, tt.hash)
		})
	}
}

// =============================================================================
// Search
// =============================================================================

func TestSearchSymbols(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "file:///Shapes.groovy")
	cls := insertTestSymbol(t, s, &f.ID, "Shape", KindClass, nil)
	insertTestSymbol(t, s, &f.ID, "area", KindMethod, &cls.ID)
	insertTestSymbol(t, s, &f.ID, "reshape", KindMethod, &cls.ID)

	got, err := s.SearchSymbols("SHAPE", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Shape", got[0].Name)
	assert.Equal(t, "", got[0].Container)
	assert.Equal(t, "reshape", got[1].Name)
	assert.Equal(t, "Shape", got[1].Container)
	assert.Equal(t, "file:///Shapes.groovy", got[1].Path)

	all, err := s.SearchSymbols("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := s.SearchSymbols("", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSearchSymbols_SkipsPositionless(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f := insertTestFile(t, s, "file:///build.groovy")
	_, err := s.InsertSymbol(&Symbol{
		FileID: &f.ID, Name: "build", FQN: "build", Kind: KindClass,
		StartLine: -1, StartCol: -1, EndLine: -1, EndCol: -1,
	})
	require.NoError(t, err)

	got, err := s.SearchSymbols("build", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
