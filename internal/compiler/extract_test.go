package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/store"
)

func parseModule(t *testing.T, uri, src string) *ast.ModuleNode {
	t.Helper()
	u := frontend.NewSourceUnit(uri, frontend.LangGroovy, src)
	require.NoError(t, frontend.Parse(context.Background(), u))
	require.NotNil(t, u.Module)
	return u.Module
}

func newTestBatch(t *testing.T, uri string) (*store.Store, *store.BatchedStore, int64) {
	t.Helper()
	s, err := store.NewStore("")
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	f, err := s.EnsureFile(uri, frontend.LangGroovy)
	require.NoError(t, err)
	b := store.NewBatchedStore(s)
	b.ReplaceFile(f.ID, "h")
	return s, b, f.ID
}

func TestExtractModule_ClassesAndMembers(t *testing.T) {
	t.Parallel()
	mod := parseModule(t, uriA, `package shapes
import java.util.List

abstract class Shape implements Comparable {
    String name
    private static int count = 0
    Shape(String name) {}
    abstract double area()
    static class Point {}
}
`)
	s, b, fileID := newTestBatch(t, uriA)
	require.NoError(t, extractModule(b, fileID, mod))
	require.NoError(t, s.CommitBatch(b))

	syms, err := s.SymbolsByFile(fileID)
	require.NoError(t, err)
	// constructors share the class name
	byName := make(map[string]*store.Symbol)
	var ctor *store.Symbol
	for _, sym := range syms {
		if sym.Kind == store.KindConstructor {
			ctor = sym
			continue
		}
		byName[sym.Name] = sym
	}

	shape := byName["Shape"]
	require.NotNil(t, shape)
	assert.Equal(t, "shapes.Shape", shape.FQN)
	assert.Equal(t, store.KindClass, shape.Kind)
	assert.Equal(t, []string{"abstract"}, shape.Modifiers)
	assert.Equal(t, "abstract class shapes.Shape implements Comparable", shape.Detail)
	assert.NotEmpty(t, shape.SignatureHash)
	assert.Equal(t, 3, shape.StartLine)

	count := byName["count"]
	require.NotNil(t, count)
	assert.Equal(t, store.KindField, count.Kind)
	assert.Equal(t, "private", count.Visibility)
	require.NotNil(t, count.ParentSymbolID)
	assert.Equal(t, shape.ID, *count.ParentSymbolID)

	assert.Equal(t, store.KindProperty, byName["name"].Kind)
	assert.Equal(t, "double area()", byName["area"].Detail)

	require.NotNil(t, ctor)
	assert.Equal(t, "Shape", ctor.Name)
	require.NotNil(t, ctor.ParentSymbolID)
	assert.Equal(t, shape.ID, *ctor.ParentSymbolID)

	point := byName["Point"]
	require.NotNil(t, point)
	assert.Equal(t, "shapes.Shape$Point", point.FQN)
	require.NotNil(t, point.ParentSymbolID)
	assert.Equal(t, shape.ID, *point.ParentSymbolID)

	refs, err := s.TypeReferencesByFile(fileID)
	require.NoError(t, err)
	assert.Subset(t, refs, []string{"Comparable", "List", "String"})
	assert.NotContains(t, refs, "int")
}

func TestExtractModule_ScriptClassIsPositionless(t *testing.T) {
	t.Parallel()
	mod := parseModule(t, "file:///work/build.groovy", "def greet() { 'hi' }\nprintln greet()\n")
	s, b, fileID := newTestBatch(t, "file:///work/build.groovy")
	require.NoError(t, extractModule(b, fileID, mod))
	require.NoError(t, s.CommitBatch(b))

	classes, err := s.SymbolsByKind(store.KindClass)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "build", classes[0].Name)
	assert.Equal(t, -1, classes[0].StartLine)

	methods, err := s.SymbolsByName("greet")
	require.NoError(t, err)
	assert.Len(t, methods, 1)
	run, err := s.SymbolsByName("run")
	require.NoError(t, err)
	assert.Empty(t, run, "the script body is not a declaration")
}

func TestExtractModule_HashIgnoresBodies(t *testing.T) {
	t.Parallel()
	hash := func(src string) string {
		mod := parseModule(t, uriA, src)
		_, b, fileID := newTestBatch(t, uriA)
		require.NoError(t, extractModule(b, fileID, mod))
		h, err := b.ClassHashes(fileID)
		require.NoError(t, err)
		return h["A"]
	}
	base := hash("class A { int f() { 1 } }")
	assert.Equal(t, base, hash("class A {\n  int f() { 2 + 3 }\n}"))
	assert.NotEqual(t, base, hash("class A { long f() { 1 } }"))
	assert.NotEqual(t, base, hash("class A { int f(int x) { 1 } }"))
}

func TestReferencedNames(t *testing.T) {
	t.Parallel()
	mod := parseModule(t, uriA, `class A {
    def go() {
        def m = new HashMap()
        Helper.call()
        return [] as Set
    }
}
`)
	names := referencedNames(mod)
	assert.Contains(t, names, "HashMap")
	assert.Contains(t, names, "Helper")
	assert.Contains(t, names, "Set")
	assert.NotContains(t, names, "m")
}

func TestModifierNames(t *testing.T) {
	t.Parallel()
	assert.Nil(t, modifierNames(ast.ModPublic))
	assert.Equal(t, []string{"static", "final"}, modifierNames(ast.ModPrivate|ast.ModFinal|ast.ModStatic))
	assert.Equal(t, "protected", visibilityName(ast.ModProtected))
	assert.Equal(t, "public", visibilityName(0))
}
