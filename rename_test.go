package groovyls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/groovyls/internal/ast"
)

// editsByURI flattens a workspace edit into the ranges edited per URI and
// the file renames, in order.
func editsByURI(t *testing.T, we *WorkspaceEdit, newText string) (map[string][]Range, []RenameFile) {
	t.Helper()
	require.NotNil(t, we)
	edits := make(map[string][]Range)
	var renames []RenameFile
	for _, ch := range we.DocumentChanges {
		switch {
		case ch.Edit != nil:
			for _, e := range ch.Edit.Edits {
				assert.Equal(t, newText, e.NewText)
				edits[ch.Edit.URI] = append(edits[ch.Edit.URI], e.Range)
			}
		case ch.Rename != nil:
			renames = append(renames, *ch.Rename)
		}
	}
	return edits, renames
}

func TestRename_LocalVariable(t *testing.T) {
	t.Parallel()
	src := "def count = 1\ncount = count + 1\n"
	uri := "file:///work/script.groovy"
	s := newTestSession(t, map[string]string{uri: src})

	we, err := s.Rename(t.Context(), uri, Position{Line: 1, Character: 9}, "total")
	require.NoError(t, err)
	edits, renames := editsByURI(t, we, "total")
	assert.Empty(t, renames)
	assert.Equal(t, map[string][]Range{
		uri: {rng(0, 4, 0, 9), rng(1, 0, 1, 5), rng(1, 8, 1, 13)},
	}, edits)
}

func TestRename_Method(t *testing.T) {
	t.Parallel()
	src := "class C {\n    int size() { 0 }\n    int twice() { size() * 2 }\n}\n"
	uri := "file:///work/Calc.groovy"
	s := newTestSession(t, map[string]string{uri: src})

	we, err := s.Rename(t.Context(), uri, posOf(t, src, "size", 1, 0), "length")
	require.NoError(t, err)
	edits, renames := editsByURI(t, we, "length")
	assert.Empty(t, renames)
	assert.Equal(t, []Range{rng(1, 8, 1, 12), rng(2, 18, 2, 22)}, edits[uri])
}

func TestRename_ClassRenamesFileAndConstructors(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, map[string]string{
		uriA: "class A {\n    A() {}\n}\n",
		uriB: "class B {\n    A a = new A()\n}\n",
	})

	we, err := s.Rename(t.Context(), uriA, Position{Line: 0, Character: 6}, "Z")
	require.NoError(t, err)
	edits, renames := editsByURI(t, we, "Z")
	assert.Equal(t, []Range{rng(0, 6, 0, 7), rng(1, 4, 1, 5)}, edits[uriA])
	assert.Equal(t, []Range{rng(1, 4, 1, 5), rng(1, 14, 1, 15)}, edits[uriB])
	assert.Equal(t, []RenameFile{{OldURI: uriA, NewURI: "file:///work/Z.groovy"}}, renames)

	// text edits come before the file rename
	last := we.DocumentChanges[len(we.DocumentChanges)-1]
	assert.NotNil(t, last.Rename)
}

func TestRename_FromConstructorCall(t *testing.T) {
	t.Parallel()
	b := "class B {\n    A a = new A()\n}\n"
	s := newTestSession(t, map[string]string{
		uriA: "class A {\n    A() {}\n}\n",
		uriB: b,
	})

	we, err := s.Rename(t.Context(), uriB, posOf(t, b, "A()", 0, 0), "Z")
	require.NoError(t, err)
	edits, renames := editsByURI(t, we, "Z")
	assert.Len(t, edits[uriA], 2)
	assert.Len(t, edits[uriB], 2)
	assert.Len(t, renames, 1)
}

func TestRename_FileNotNamedAfterClass(t *testing.T) {
	t.Parallel()
	uri := "file:///work/models.groovy"
	s := newTestSession(t, map[string]string{uri: "class Model {}\n"})

	we, err := s.Rename(t.Context(), uri, Position{Line: 0, Character: 7}, "Entity")
	require.NoError(t, err)
	edits, renames := editsByURI(t, we, "Entity")
	assert.Empty(t, renames)
	assert.Equal(t, []Range{rng(0, 6, 0, 11)}, edits[uri])
}

func TestRename_InvalidName(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, map[string]string{uriA: kSource})

	for _, name := range []string{"", "1abc", "a-b", "two words"} {
		_, err := s.Rename(t.Context(), uriA, Position{Line: 0, Character: 6}, name)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestRename_NothingAtPosition(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, map[string]string{uriA: "println 'hi'\n"})

	we, err := s.Rename(t.Context(), uriA, Position{Line: 0, Character: 9}, "other")
	require.NoError(t, err)
	assert.Nil(t, we)
}

// =============================================================================
// nameRange
// =============================================================================

func TestNameRange(t *testing.T) {
	t.Parallel()
	span := func(l, c, ll, lc int) ast.Span { return ast.Span{Line: l, Column: c, LastLine: ll, LastColumn: lc} }
	tests := []struct {
		name   string
		text   string
		node   ast.Node
		target string
		want   Range
		ok     bool
	}{
		{
			name:   "class keyword",
			text:   "abstract class Shape {}\n",
			node:   &ast.ClassNode{Name: "Shape", Span: span(1, 1, 1, 24)},
			target: "Shape",
			want:   rng(0, 15, 0, 20),
			ok:     true,
		},
		{
			name:   "method after return type",
			text:   "    Shape reshape() {}\n",
			node:   &ast.MethodNode{Name: "reshape", Span: span(1, 5, 1, 23)},
			target: "reshape",
			want:   rng(0, 10, 0, 17),
			ok:     true,
		},
		{
			name:   "utf16 columns",
			text:   "/* \U0001F600 */ def m() {}\n",
			node:   &ast.MethodNode{Name: "m", Span: span(1, 1, 1, 20)},
			target: "m",
			want:   rng(0, 13, 0, 14),
			ok:     true,
		},
		{
			name:   "field named like its type",
			text:   "    Item item\n",
			node:   &ast.FieldNode{Name: "item", Span: span(1, 5, 1, 14), Type: &ast.TypeRef{Name: "Item", Span: span(1, 5, 1, 9)}},
			target: "item",
			want:   rng(0, 9, 0, 13),
			ok:     true,
		},
		{
			name:   "qualified type reference",
			text:   "java.util.List xs\n",
			node:   &ast.TypeRef{Name: "java.util.List", Span: span(1, 1, 1, 15)},
			target: "java.util.List",
			want:   rng(0, 10, 0, 14),
			ok:     true,
		},
		{
			name:   "name absent",
			text:   "class Other {}\n",
			node:   &ast.ClassNode{Name: "Other", Span: span(1, 1, 1, 15)},
			target: "Shape",
		},
		{
			name:   "positionless",
			text:   "class A {}\n",
			node:   &ast.ClassNode{Name: "A", Span: ast.NoSpan},
			target: "A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := nameRange(tt.text, tt.node, tt.target)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
