package frontend

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/groovyls/internal/ast"
)

func testExternals(t *testing.T) *Externals {
	t.Helper()
	ext, err := NewExternals(nil)
	require.NoError(t, err)
	return ext
}

// compileSources compiles files keyed by URI and returns the units in URI
// order.
func compileSources(t *testing.T, files map[string]string) ([]*SourceUnit, *ClassTable, error) {
	t.Helper()
	uris := make([]string, 0, len(files))
	for uri := range files {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	units := make([]*SourceUnit, 0, len(uris))
	for _, uri := range uris {
		lang, ok := LanguageForFile(uri)
		require.True(t, ok, uri)
		units = append(units, NewSourceUnit(uri, lang, files[uri]))
	}
	table, err := Compile(context.Background(), testExternals(t), units)
	return units, table, err
}

func compileOne(t *testing.T, src string) *SourceUnit {
	t.Helper()
	units, _, _ := compileSources(t, map[string]string{"file:///work/Test.groovy": src})
	return units[0]
}

func messageTexts(u *SourceUnit) []string {
	var out []string
	for _, m := range u.Messages {
		out = append(out, m.Text)
	}
	return out
}

// findNode returns the first node of the module accepted by match.
func findNode[T ast.Node](t *testing.T, root ast.Node, match func(T) bool) T {
	t.Helper()
	var found T
	ok := false
	ast.Walk(root, func(n, _ ast.Node) bool {
		if ok {
			return false
		}
		if x, is := n.(T); is && match(x) {
			found, ok = x, true
			return false
		}
		return true
	})
	require.True(t, ok, "node not found")
	return found
}

// =============================================================================
// Type resolution
// =============================================================================

func TestAnalyze_ResolvesDefaultImports(t *testing.T) {
	t.Parallel()
	u := compileOne(t, `class Holder {
    String name
    List<Integer> values
    BigDecimal amount
    Closure callback
}
`)
	requireNoErrors(t, u)
	assert.Equal(t, PhaseSemanticAnalysis, u.Phase)

	cls := u.Module.Classes[0]
	require.Len(t, cls.Properties, 4)
	assert.Equal(t, "java.lang.String", cls.Properties[0].Type.Resolved)
	assert.Equal(t, "java.util.List", cls.Properties[1].Type.Resolved)
	assert.Equal(t, "java.lang.Integer", cls.Properties[1].Type.Args[0].Resolved)
	assert.Equal(t, "java.math.BigDecimal", cls.Properties[2].Type.Resolved)
	assert.Equal(t, "groovy.lang.Closure", cls.Properties[3].Type.Resolved)
}

func TestAnalyze_UnresolvedClass(t *testing.T) {
	t.Parallel()
	u := compileOne(t, `class A {
    Foo f
}
`)
	require.Len(t, u.Messages, 1)
	msg := u.Messages[0]
	assert.Equal(t, "unable to resolve class Foo", msg.Text)
	assert.False(t, msg.Fatal)
	assert.Equal(t, 2, msg.Span.Line)
	assert.Equal(t, 5, msg.Span.Column)
	assert.Empty(t, u.Module.Classes[0].Properties[0].Type.Resolved)
}

func TestAnalyze_UnresolvedImport(t *testing.T) {
	t.Parallel()
	units, _, err := compileSources(t, map[string]string{
		"file:///work/Test.groovy": "import com.acme.Missing\n\nprintln 1\n",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompilationFailed))
	var ce *CompilationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Count)
	assert.Equal(t, []string{"unable to resolve class com.acme.Missing"}, messageTexts(units[0]))
}

func TestAnalyze_CrossFileTypes(t *testing.T) {
	t.Parallel()
	units, table, err := compileSources(t, map[string]string{
		"file:///work/demo/Model.groovy":   "package demo\n\nclass Model { String id }\n",
		"file:///work/demo/Service.groovy": "package demo\n\nclass Service {\n    Model find() { new Model() }\n}\n",
		"file:///work/app/Main.groovy":     "import demo.Model\nimport demo.Service as Svc\n\nSvc s = new Svc()\nModel m = s.find()\n",
	})
	require.NoError(t, err)
	require.NotNil(t, table.Workspace("demo.Model"))

	// Units are in URI order: app/Main, demo/Model, demo/Service.
	service := units[2].Module.Classes[0]
	assert.Equal(t, "demo.Model", service.Methods[0].ReturnType.Resolved)

	stmts := scriptStatements(t, units[0])
	decl := exprOf(t, stmts[0]).(*ast.DeclarationExpression)
	assert.Equal(t, "demo.Service", decl.Variable.Type.Resolved)
	ctor := decl.Init.(*ast.ConstructorCallExpression)
	assert.Equal(t, "demo.Service", ctor.Type.Resolved)
}

func TestAnalyze_TypeParameters(t *testing.T) {
	t.Parallel()
	u := compileOne(t, `class Box<T> {
    T value
    public <R> R map(Closure<R> fn) { fn(value) }
}
`)
	requireNoErrors(t, u)
	cls := u.Module.Classes[0]
	assert.Equal(t, "java.lang.Object", cls.Properties[0].Type.Resolved)
	assert.Equal(t, "java.lang.Object", cls.Methods[0].ReturnType.Resolved)
}

func TestAnalyze_DuplicateClass(t *testing.T) {
	t.Parallel()
	units, _, err := compileSources(t, map[string]string{
		"file:///w/a.groovy": "class Dup {}\n",
		"file:///w/b.groovy": "class Dup {}\n",
	})
	require.Error(t, err)
	assert.Empty(t, units[0].Messages)
	require.Len(t, units[1].Messages, 1)
	assert.Equal(t,
		"Invalid duplicate class definition of class Dup : The sources file:///w/a.groovy and file:///w/b.groovy each contain a class with the name Dup.",
		units[1].Messages[0].Text)
}

func TestAnalyze_EnumSyntheticMethods(t *testing.T) {
	t.Parallel()
	u := compileOne(t, "enum Color { RED, GREEN }\n")
	requireNoErrors(t, u)
	cls := u.Module.Classes[0]

	values := cls.MethodsNamed("values")
	require.Len(t, values, 1)
	assert.True(t, values[0].Synthetic)
	assert.False(t, values[0].Span.HasPosition())
	assert.Equal(t, 1, values[0].ReturnType.Dims)
	assert.Equal(t, "Color", values[0].ReturnType.Resolved)

	valueOf := cls.MethodsNamed("valueOf")
	require.Len(t, valueOf, 1)
	require.Len(t, valueOf[0].Parameters, 1)
	assert.Equal(t, "java.lang.String", valueOf[0].Parameters[0].Type.Resolved)
}

// =============================================================================
// Variable linking
// =============================================================================

func TestAnalyze_LinksScriptVariables(t *testing.T) {
	t.Parallel()
	u := compileOne(t, "def x = 1\nprintln x\n")
	requireNoErrors(t, u)
	stmts := scriptStatements(t, u)
	require.Len(t, stmts, 2)

	decl := exprOf(t, stmts[0]).(*ast.DeclarationExpression)
	call := exprOf(t, stmts[1]).(*ast.MethodCallExpression)
	assert.True(t, call.ImplicitThis)
	require.Len(t, call.Arguments.Args, 1)
	ref := call.Arguments.Args[0].(*ast.VariableExpression)
	assert.Same(t, decl.Variable, ref.Accessed)
}

func TestAnalyze_LinksParametersAndMembers(t *testing.T) {
	t.Parallel()
	u := compileOne(t, `class Counter {
    int total
    void add(int n) {
        total = total + n
    }
}
`)
	requireNoErrors(t, u)
	cls := u.Module.Classes[0]
	add := cls.Methods[0]
	assign := exprOf(t, add.Code.Statements[0]).(*ast.BinaryExpression)
	assert.Equal(t, "=", assign.Op)
	left := assign.Left.(*ast.VariableExpression)
	assert.Same(t, cls.Properties[0], left.Accessed)

	sum := assign.Right.(*ast.BinaryExpression)
	n := sum.Right.(*ast.VariableExpression)
	assert.Same(t, add.Parameters[0], n.Accessed)
}

func TestAnalyze_ClosureImplicitIt(t *testing.T) {
	t.Parallel()
	u := compileOne(t, "[1, 2].each { println it }\n")
	requireNoErrors(t, u)
	cl := findNode(t, u.Module, func(*ast.ClosureExpression) bool { return true })
	require.NotNil(t, cl.ImplicitIt)
	it := findNode(t, cl, func(v *ast.VariableExpression) bool { return v.Name == "it" })
	assert.Same(t, cl.ImplicitIt, it.Accessed)
}

func TestAnalyze_ScopesEndWithBlocks(t *testing.T) {
	t.Parallel()
	u := compileOne(t, "if (true) {\n    def inner = 1\n}\nprintln inner\n")
	stmts := scriptStatements(t, u)
	call := exprOf(t, stmts[1]).(*ast.MethodCallExpression)
	ref := call.Arguments.Args[0].(*ast.VariableExpression)
	assert.Nil(t, ref.Accessed)
}

// =============================================================================
// Class expressions
// =============================================================================

func TestAnalyze_StaticReceiverBecomesClassExpression(t *testing.T) {
	t.Parallel()
	u := compileOne(t, "def m = Math.max(1, 2)\ndef e = java.util.Collections.emptyList()\n")
	requireNoErrors(t, u)
	stmts := scriptStatements(t, u)

	call := exprOf(t, stmts[0]).(*ast.DeclarationExpression).Init.(*ast.MethodCallExpression)
	ce, ok := call.Object.(*ast.ClassExpression)
	require.True(t, ok, "got %T", call.Object)
	assert.Equal(t, "java.lang.Math", ce.Type.Resolved)
	assert.Equal(t, ast.Span{Line: 1, Column: 9, LastLine: 1, LastColumn: 13}, ce.Span)

	call = exprOf(t, stmts[1]).(*ast.DeclarationExpression).Init.(*ast.MethodCallExpression)
	ce, ok = call.Object.(*ast.ClassExpression)
	require.True(t, ok, "got %T", call.Object)
	assert.Equal(t, "java.util.Collections", ce.Type.Resolved)
}

func TestAnalyze_LocalShadowsClassName(t *testing.T) {
	t.Parallel()
	u := compileOne(t, "def Math = [max: { a, b -> a }]\nMath.max(1, 2)\n")
	stmts := scriptStatements(t, u)
	call := exprOf(t, stmts[1]).(*ast.MethodCallExpression)
	_, ok := call.Object.(*ast.VariableExpression)
	assert.True(t, ok, "got %T", call.Object)
}

func TestAnalyze_ConstructorDelegation(t *testing.T) {
	t.Parallel()
	u := compileOne(t, `class Base {
    Base(int x) {}
}
class Child extends Base {
    Child() { super(1) }
    Child(String s) { this() }
}
`)
	requireNoErrors(t, u)
	child := u.Module.Classes[1]
	superCall := exprOf(t, child.Constructors[0].Code.Statements[0]).(*ast.ConstructorCallExpression)
	assert.True(t, superCall.Super)
	assert.Equal(t, "Base", superCall.Type.Resolved)
	thisCall := exprOf(t, child.Constructors[1].Code.Statements[0]).(*ast.ConstructorCallExpression)
	assert.True(t, thisCall.This)
	assert.Equal(t, "Child", thisCall.Type.Resolved)
}
