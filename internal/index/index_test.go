package index

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/ranges"
)

// compile parses and analyzes files keyed by URI and returns their modules in
// URI order.
func compile(t *testing.T, files map[string]string) []*ast.ModuleNode {
	t.Helper()
	ext, err := frontend.NewExternals(nil)
	require.NoError(t, err)
	uris := make([]string, 0, len(files))
	for uri := range files {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	var units []*frontend.SourceUnit
	for _, uri := range uris {
		units = append(units, frontend.NewSourceUnit(uri, frontend.LangGroovy, files[uri]))
	}
	_, _ = frontend.Compile(context.Background(), ext, units)
	mods := make([]*ast.ModuleNode, len(units))
	for i, u := range units {
		mods[i] = u.Module
	}
	return mods
}

func pos(line, char int) ranges.Position {
	return ranges.Position{Line: line, Character: char}
}

const uriC = "file:///work/C.groovy"

// =============================================================================
// NodeAt
// =============================================================================

func TestNodeAt_MostSpecific(t *testing.T) {
	t.Parallel()
	mods := compile(t, map[string]string{uriC: "class C { C() { new C() } }\n"})
	ix := Build(mods)
	cls := mods[0].Classes[0]
	ctor := cls.Constructors[0]

	tests := []struct {
		name string
		char int
		want ast.Kind
	}{
		{"class name", 6, ast.KindClass},
		{"constructor name", 10, ast.KindConstructor},
		{"constructor body", 14, ast.KindBlock},
		{"new keyword", 16, ast.KindConstructorCall},
		{"constructed type", 20, ast.KindTypeRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := ix.NodeAt(uriC, pos(0, tt.char))
			require.NotNil(t, n)
			assert.Equal(t, tt.want, n.Kind())
			r, ok := ranges.FromSpan(n.Pos())
			require.True(t, ok)
			assert.True(t, ranges.Contains(r, pos(0, tt.char)))
		})
	}

	call := ix.NodeAt(uriC, pos(0, 16))
	assert.True(t, ix.Contains(ctor, call))
	assert.Same(t, cls, ix.EnclosingClass(call))
}

func TestNodeAt_ConstructorBeatsClassWithSameRange(t *testing.T) {
	t.Parallel()
	cls := &ast.ClassNode{Span: ast.Span{Line: 1, Column: 1, LastLine: 1, LastColumn: 10}, Name: "C"}
	ctor := &ast.ConstructorNode{Span: cls.Span, Owner: cls}
	cls.Constructors = []*ast.ConstructorNode{ctor}
	ix := Build([]*ast.ModuleNode{{URI: uriC, Classes: []*ast.ClassNode{cls}}})
	assert.Same(t, ast.Node(ctor), ix.NodeAt(uriC, pos(0, 3)))
}

func TestNodeAt_DeeperNodeWinsOnEqualRange(t *testing.T) {
	t.Parallel()
	mods := compile(t, map[string]string{uriC: "println 1\n"})
	ix := Build(mods)
	n := ix.NodeAt(uriC, pos(0, 0))
	require.NotNil(t, n)
	// The call and its statement share a range; the call is deeper. The
	// method selector starts at the same point and ends first.
	assert.Equal(t, ast.KindConstant, n.Kind())
	assert.Equal(t, ast.KindMethodCall, ix.ParentOf(n).Kind())
	assert.Equal(t, ast.KindExpressionStatement, ix.ParentOf(ix.ParentOf(n)).Kind())
}

func TestNodeAt_Misses(t *testing.T) {
	t.Parallel()
	mods := compile(t, map[string]string{uriC: "class C {}\n"})
	ix := Build(mods)
	assert.Nil(t, ix.NodeAt(uriC, pos(5, 0)))
	assert.Nil(t, ix.NodeAt("file:///work/Other.groovy", pos(0, 0)))
	assert.Empty(t, ix.NodesIn("file:///work/Other.groovy"))
	assert.Empty(t, ix.TopLevelIn("file:///work/Other.groovy"))
}

// =============================================================================
// Structure
// =============================================================================

func TestIndex_ParentsAndAncestors(t *testing.T) {
	t.Parallel()
	mods := compile(t, map[string]string{uriC: `class C {
    void m(int x) {
        def y = x
    }
}
`})
	ix := Build(mods)
	cls := mods[0].Classes[0]
	m := cls.Methods[0]
	param := m.Parameters[0]

	assert.Nil(t, ix.ParentOf(cls))
	assert.Same(t, ast.Node(cls), ix.ParentOf(m))
	assert.Same(t, ast.Node(m), ix.ParentOf(param))

	stmt := m.Code.Statements[0].(*ast.ExpressionStatement)
	decl := stmt.Expr.(*ast.DeclarationExpression)
	ref := decl.Init.(*ast.VariableExpression)
	assert.Same(t, ast.Node(m), ix.AncestorOfKind(ref, ast.KindMethod, ast.KindConstructor))
	assert.Same(t, ast.Node(decl), ix.AncestorOfKind(ref, ast.KindDeclaration))
	assert.Same(t, ast.Node(ref), ix.AncestorOfKind(ref, ast.KindVariable))
	assert.Nil(t, ix.AncestorOfKind(ref, ast.KindClosure))

	uri, ok := ix.URIOf(ref)
	assert.True(t, ok)
	assert.Equal(t, uriC, uri)
	_, ok = ix.URIOf(&ast.VariableExpression{Name: "y"})
	assert.False(t, ok)
	assert.Nil(t, ix.ParentOf(&ast.VariableExpression{Name: "y"}))
}

func TestIndex_ExcludesSynthetic(t *testing.T) {
	t.Parallel()
	mods := compile(t, map[string]string{uriC: "enum Color { RED }\n"})
	ix := Build(mods)
	cls := mods[0].Classes[0]
	require.NotEmpty(t, cls.MethodsNamed("values"))
	for _, n := range ix.AllNodes() {
		if m, ok := n.(*ast.MethodNode); ok {
			assert.False(t, m.Synthetic, m.Name)
		}
	}
	assert.False(t, ix.Has(cls.MethodsNamed("values")[0]))
	assert.True(t, ix.Has(cls))
}

func TestIndex_ScriptClassIsAncestor(t *testing.T) {
	t.Parallel()
	mods := compile(t, map[string]string{uriC: "def x = 1\n"})
	ix := Build(mods)
	decl := ix.NodeAt(uriC, pos(0, 0))
	require.NotNil(t, decl)
	cls := ix.EnclosingClass(decl)
	require.NotNil(t, cls)
	assert.True(t, cls.Script)
	for _, d := range ix.TopLevelIn(uriC) {
		assert.True(t, d.Pos().HasPosition())
	}
}

func TestIndex_Declarations(t *testing.T) {
	t.Parallel()
	mods := compile(t, map[string]string{
		"file:///work/A.groovy": "package p\nclass A {\n    String name\n    int size() { 0 }\n    class Inner {}\n}\n",
		"file:///work/B.groovy": "class B { A.Inner inner }\n",
	})
	ix := Build(mods)

	var names []string
	for _, d := range ix.TopLevelIn("file:///work/A.groovy") {
		switch d := d.(type) {
		case *ast.ClassNode:
			names = append(names, "class "+d.Name)
		case *ast.PropertyNode:
			names = append(names, "property "+d.Name)
		case *ast.MethodNode:
			names = append(names, "method "+d.Name)
		}
	}
	assert.Equal(t, []string{"class A", "property name", "method size", "class Inner"}, names)
	assert.Len(t, ix.AllTopLevel(), 6)

	require.NotNil(t, ix.ClassByName("p.A$Inner"))
	assert.Equal(t, "Inner", ix.ClassByName("p.A$Inner").Name)
	assert.Nil(t, ix.ClassByName("Missing"))
	assert.Len(t, ix.ClassNodes(), 3)
	assert.Equal(t, []string{"file:///work/A.groovy", "file:///work/B.groovy"}, ix.URIs())
}

// =============================================================================
// Reindexing
// =============================================================================

func TestReindex_LeavesUntouchedFilesIdentical(t *testing.T) {
	t.Parallel()
	const uriA, uriB = "file:///work/A.groovy", "file:///work/B.groovy"
	files := map[string]string{
		uriA: "class A {\n    void run() { println 'a' }\n}\n",
		uriB: "class B {}\n",
	}
	mods := compile(t, files)
	ix := Build(mods)

	beforeNodes := append([]ast.Node(nil), ix.NodesIn(uriA)...)
	beforeParents := make(map[ast.Node]ast.Node)
	for _, n := range beforeNodes {
		beforeParents[n] = ix.ParentOf(n)
	}
	oldB := ix.NodesIn(uriB)

	files[uriB] = "class B {\n    int count\n}\n"
	next := compile(t, map[string]string{uriB: files[uriB]})
	updated := ix.Clone()
	updated.Reindex([]*ast.ModuleNode{mods[0], next[0]}, map[string]bool{uriB: true})

	after := updated.NodesIn(uriA)
	require.Len(t, after, len(beforeNodes))
	for i, n := range after {
		assert.Same(t, beforeNodes[i], n)
		// top-level classes have a nil parent, so compare identity directly
		assert.True(t, beforeParents[n] == updated.ParentOf(n), "parent of %T changed", n)
	}
	for _, n := range oldB {
		assert.False(t, updated.Has(n))
	}
	assert.NotNil(t, updated.ClassByName("B").Property("count"))

	// The previous generation is unchanged.
	assert.Equal(t, oldB, ix.NodesIn(uriB))
	assert.True(t, ix.Has(oldB[0]))
}

func TestReindex_RemovesDeletedFiles(t *testing.T) {
	t.Parallel()
	const uriA, uriB = "file:///work/A.groovy", "file:///work/B.groovy"
	mods := compile(t, map[string]string{uriA: "class A {}\n", uriB: "class B {}\n"})
	ix := Build(mods)
	require.NotNil(t, ix.ClassByName("B"))

	ix.Reindex([]*ast.ModuleNode{mods[0]}, map[string]bool{uriB: true})
	assert.Nil(t, ix.ClassByName("B"))
	assert.Empty(t, ix.NodesIn(uriB))
	assert.Equal(t, []string{uriA}, ix.URIs())
	assert.NotNil(t, ix.ClassByName("A"))
}

func TestReindex_NilDirtyRebuilds(t *testing.T) {
	t.Parallel()
	mods := compile(t, map[string]string{uriC: "class C {}\n"})
	ix := Build(mods)
	n := ix.Len()
	require.Positive(t, n)
	ix.Reindex(nil, nil)
	assert.Zero(t, ix.Len())
	ix.Reindex(mods, nil)
	assert.Equal(t, n, ix.Len())
}
