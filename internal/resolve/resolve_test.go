package resolve

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/index"
	"github.com/jward/groovyls/internal/ranges"
)

type fixture struct {
	r     *Resolver
	files map[string]string
}

// newFixture compiles files keyed by URI and returns a resolver over them.
func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	ext, err := frontend.NewExternals(nil)
	require.NoError(t, err)
	uris := make([]string, 0, len(files))
	for uri := range files {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	units := make([]*frontend.SourceUnit, 0, len(uris))
	for _, uri := range uris {
		units = append(units, frontend.NewSourceUnit(uri, frontend.LangGroovy, files[uri]))
	}
	table, _ := frontend.Compile(t.Context(), ext, units)
	require.NotNil(t, table)
	mods := make([]*ast.ModuleNode, len(units))
	for i, u := range units {
		mods[i] = u.Module
	}
	return &fixture{r: New(index.Build(mods), table), files: files}
}

const testURI = "file:///work/Test.groovy"

func newScript(t *testing.T, src string) *fixture {
	t.Helper()
	return newFixture(t, map[string]string{testURI: src})
}

// at returns the node at the nth (0-based) occurrence of needle in uri,
// offset by delta characters.
func (f *fixture) at(t *testing.T, uri, needle string, nth, delta int) ast.Node {
	t.Helper()
	src := f.files[uri]
	off := -1
	for i := 0; i <= nth; i++ {
		next := strings.Index(src[off+1:], needle)
		require.GreaterOrEqual(t, next, 0, "occurrence %d of %q", i, needle)
		off += next + 1
	}
	off += delta
	before := src[:off]
	line := strings.Count(before, "\n")
	char := off - (strings.LastIndex(before, "\n") + 1)
	n := f.r.Index().NodeAt(uri, ranges.Position{Line: line, Character: char})
	require.NotNil(t, n, "no node at %q", needle)
	return n
}

func (f *fixture) node(t *testing.T, needle string, nth int) ast.Node {
	t.Helper()
	return f.at(t, testURI, needle, nth, 0)
}

// =============================================================================
// Definition
// =============================================================================

const kSource = `class K {
    String m() {}
    public K() {
        m()
    }
}
`

func TestDefinition_ImplicitThisCall(t *testing.T) {
	t.Parallel()
	f := newScript(t, kSource)
	k := f.r.Index().ClassByName("K")
	require.NotNil(t, k)

	sel := f.node(t, "m()", 1)
	require.IsType(t, &ast.ConstantExpression{}, sel)
	def := f.r.Definition(sel, false)
	assert.Same(t, ast.Node(k.Methods[0]), def)
	assert.Same(t, def, f.r.Definition(def, false))

	call := f.r.Index().ParentOf(sel)
	assert.Equal(t, "java.lang.String", f.r.TypeOf(call).FullName())
}

func TestDefinition_Idempotent(t *testing.T) {
	t.Parallel()
	f := newScript(t, `class Box {
    String label
    int size(int extra) { label.length() + extra }
}
def b = new Box(label: "x")
b.label
b.size(2)
`)
	for _, n := range f.r.Index().AllNodes() {
		def := f.r.Definition(n, false)
		if def == nil {
			continue
		}
		assert.Same(t, def, f.r.Definition(def, false), "%T at %v", n, n.Pos())
	}
}

func TestDefinition_Declarations(t *testing.T) {
	t.Parallel()
	f := newScript(t, `class P {
    String name
    private int count
    P(int c) { count = c }
    void greet(String who) { println who }
}
`)
	p := f.r.Index().ClassByName("P")
	tests := []struct {
		name string
		n    ast.Node
	}{
		{"class", p},
		{"property", p.Properties[0]},
		{"field", p.Fields[0]},
		{"constructor", p.Constructors[0]},
		{"method", p.Methods[0]},
		{"parameter", p.Methods[0].Parameters[0]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.n, f.r.Definition(tt.n, true))
		})
	}

	who := f.node(t, "who }", 0)
	assert.Same(t, ast.Node(p.Methods[0].Parameters[0]), f.r.Definition(who, true))
	count := f.node(t, "count = c", 0)
	assert.Same(t, ast.Node(p.Fields[0]), f.r.Definition(count, true))
}

func TestDefinition_TypeReferences(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{
		"file:///work/A.groovy": "class A {}\n",
		"file:///work/B.groovy": "import java.util.List\nclass B extends A {\n    String s\n    List<A> all\n}\n",
	})
	a := f.r.Index().ClassByName("A")
	const b = "file:///work/B.groovy"

	ext := f.at(t, b, "A {", 0, 0)
	require.IsType(t, &ast.TypeRef{}, ext)
	assert.Same(t, ast.Node(a), f.r.Definition(ext, true))

	arg := f.at(t, b, "A>", 0, 0)
	assert.Same(t, ast.Node(a), f.r.Definition(arg, true))

	str := f.at(t, b, "String", 0, 0)
	assert.Nil(t, f.r.Definition(str, true))
	nonStrict := f.r.Definition(str, false)
	require.NotNil(t, nonStrict)
	assert.True(t, nonStrict.(*ast.ClassNode).External)

	imp := f.at(t, b, "import", 0, 0)
	require.IsType(t, &ast.ImportNode{}, imp)
	assert.Nil(t, f.r.Definition(imp, true))
	assert.Equal(t, "java.util.List", f.r.Definition(imp, false).(*ast.ClassNode).FullName())
}

func TestDefinition_ConstructorCalls(t *testing.T) {
	t.Parallel()
	f := newScript(t, `class Point {
    Point(int x) {}
    Point(String s) {}
}
class Empty {}
new Point("a")
new Point(1)
new Empty()
`)
	point := f.r.Index().ClassByName("Point")
	byString := f.node(t, `new Point("a")`, 0)
	assert.Same(t, ast.Node(point.Constructors[1]), f.r.Definition(byString, true))
	byInt := f.node(t, "new Point(1)", 0)
	assert.Same(t, ast.Node(point.Constructors[0]), f.r.Definition(byInt, true))

	empty := f.node(t, "new Empty", 0)
	assert.Same(t, ast.Node(f.r.Index().ClassByName("Empty")), f.r.Definition(empty, true))
}

func TestDefinition_PropertyAccess(t *testing.T) {
	t.Parallel()
	f := newScript(t, `class Person {
    String name
    public int age
}
def p = new Person()
p.name
p.age
p.missing
`)
	person := f.r.Index().ClassByName("Person")
	assert.Same(t, ast.Node(person.Properties[0]), f.r.Definition(f.node(t, "name\np.age", 0), true))
	assert.Same(t, ast.Node(person.Fields[0]), f.r.Definition(f.node(t, "age\n", 1), true))
	assert.Nil(t, f.r.Definition(f.node(t, "missing", 0), true))
}

func TestDefinition_InheritedMemberFallback(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{
		"file:///work/Base.groovy":  "class Base {\n    int count\n}\n",
		"file:///work/Child.groovy": "class Child extends Base {\n    int twice() { count * 2 }\n}\n",
	})
	ref := f.at(t, "file:///work/Child.groovy", "count", 0, 0)
	v, ok := ref.(*ast.VariableExpression)
	require.True(t, ok)
	assert.Nil(t, v.Accessed)
	base := f.r.Index().ClassByName("Base")
	assert.Same(t, ast.Node(base.Properties[0]), f.r.Definition(ref, true))
}

func TestDefinition_DeclarationExpression(t *testing.T) {
	t.Parallel()
	f := newScript(t, "class T {}\nT t = new T()\ndef u = 1\n")
	decl := f.r.Index().ParentOf(f.node(t, "t =", 0))
	require.IsType(t, &ast.DeclarationExpression{}, decl)
	assert.Same(t, ast.Node(f.r.Index().ClassByName("T")), f.r.Definition(decl, true))

	dyn := f.r.Index().ParentOf(f.node(t, "u =", 0))
	assert.Nil(t, f.r.Definition(dyn, true))
	assert.Equal(t, "java.lang.Object", f.r.Definition(dyn, false).(*ast.ClassNode).FullName())
}

// =============================================================================
// Overload resolution
// =============================================================================

const overloadSource = `class F {
    void f(int a) {}
    void f(int a, String b) {}
    void use() {
        f(1)
        f(1, "x")
    }
}
`

func TestMethodFor_Overloads(t *testing.T) {
	t.Parallel()
	f := newScript(t, overloadSource)
	cls := f.r.Index().ClassByName("F")
	one, two := cls.Methods[0], cls.Methods[1]

	call1 := f.r.Index().ParentOf(f.node(t, "f(1)", 0)).(*ast.MethodCallExpression)
	call2 := f.r.Index().ParentOf(f.node(t, `f(1, "x")`, 0)).(*ast.MethodCallExpression)

	assert.Len(t, f.r.Overloads(call1), 2)
	assert.Same(t, ast.Member(one), f.r.MethodFor(call1, -1))
	assert.Same(t, ast.Member(two), f.r.MethodFor(call2, -1))
	// Typing the second argument of f(1, ) prefers the two-parameter overload.
	assert.Same(t, ast.Member(two), f.r.MethodFor(call1, 1))
}

func TestScore(t *testing.T) {
	t.Parallel()
	f := newScript(t, "println 1\n")
	table := f.r.Table()
	param := func(fqn string) *ast.Parameter {
		return &ast.Parameter{Span: ast.NoSpan, Name: "p", Type: &ast.TypeRef{Span: ast.NoSpan, Name: fqn, Resolved: fqn}}
	}
	cls := table.Lookup

	tests := []struct {
		name     string
		params   []*ast.Parameter
		args     []*ast.ClassNode
		argIndex int
		want     int
	}{
		{"no params no args", nil, nil, -1, 1},
		{"equal", []*ast.Parameter{param("int")}, []*ast.ClassNode{cls("int")}, -1, 1000},
		{"subtype", []*ast.Parameter{param("java.lang.CharSequence")}, []*ast.ClassNode{cls("java.lang.String")}, -1, 100},
		{"mismatch", []*ast.Parameter{param("java.lang.String")}, []*ast.ClassNode{cls("java.lang.Integer")}, -1, 1},
		{"extra param ignored", []*ast.Parameter{param("int"), param("java.lang.String")}, []*ast.ClassNode{cls("int")}, -1, 1000},
		{"extra param at arg index", []*ast.Parameter{param("int"), param("java.lang.String")}, []*ast.ClassNode{cls("int")}, 1, 1001},
		{"missing argument", []*ast.Parameter{param("int")}, nil, 0, 1},
		{"params but no args", []*ast.Parameter{param("int")}, nil, -1, 0},
		{"args but no params", nil, []*ast.ClassNode{cls("int")}, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.r.score(tt.params, tt.args, tt.argIndex))
		})
	}
}

// =============================================================================
// TypeOf
// =============================================================================

func TestTypeOf(t *testing.T) {
	t.Parallel()
	f := newScript(t, `class Node {
    Node next
    Node self() { this }
}
def s = "abc"
def u = s
u.substring(1)
String[] names = ["a"]
names[0]
def list = new ArrayList()
list.size()
def n = new Node()
n.next
`)
	typeAt := func(needle string, nth int) string {
		t.Helper()
		n := f.node(t, needle, nth)
		if _, ok := n.(*ast.ConstantExpression); ok {
			n = f.r.Index().ParentOf(n)
		}
		cls := f.r.TypeOf(n)
		require.NotNil(t, cls, needle)
		return cls.FullName()
	}
	assert.Equal(t, "java.lang.String", typeAt("u.substring", 0))
	assert.Equal(t, "java.lang.String", typeAt("substring", 0))
	assert.Equal(t, "java.lang.String[]", typeAt("names[0]", 0))
	assert.Equal(t, "java.util.ArrayList", typeAt("list.size", 0))
	assert.Equal(t, "int", typeAt("size", 0))
	assert.Equal(t, "Node", typeAt("next\n", 1))
	assert.Equal(t, "Node", typeAt("this", 0))

	idx := f.r.Index().ParentOf(f.node(t, "names[0]", 0))
	require.IsType(t, &ast.BinaryExpression{}, idx)
	assert.Equal(t, "java.lang.String", f.r.TypeOf(idx).FullName())
}

func TestTypeOf_CyclicInitializers(t *testing.T) {
	t.Parallel()
	f := newScript(t, `class Loop {
    def a = b
    def b = a
    def c = pick(c)
    def pick(x) { x }
}
`)
	cls := f.r.Index().ClassByName("Loop")
	for _, p := range cls.Properties {
		assert.NotPanics(t, func() { f.r.TypeOf(p) })
	}
}

func TestTypeDefinition(t *testing.T) {
	t.Parallel()
	f := newScript(t, `class Item {}
class Shop {
    Item first() { null }
}
def shop = new Shop()
def item = shop.first()
item
def word = "w"
word
`)
	item := f.r.Index().ClassByName("Item")
	assert.Same(t, item, f.r.TypeDefinition(f.node(t, "first()", 1)))
	assert.Same(t, item, f.r.TypeDefinition(f.node(t, "item\n", 0)))
	assert.Nil(t, f.r.TypeDefinition(f.node(t, "word\n", 0)))
}

// =============================================================================
// References
// =============================================================================

func TestReferences_LocalVariable(t *testing.T) {
	t.Parallel()
	f := newScript(t, "def x = 1\nprintln x\nx = x + 1\n")
	decl := f.node(t, "x", 0)
	refs := f.r.References(decl)
	require.Len(t, refs, 4)
	assert.Contains(t, refs, decl)
	for _, ref := range refs {
		assert.Equal(t, ast.KindVariable, ref.Kind())
	}
	assert.ElementsMatch(t, refs, f.r.References(f.node(t, "x\n", 0)))
}

func TestReferences_ClassAcrossFiles(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{
		"file:///work/A.groovy": "class A {}\n",
		"file:///work/B.groovy": "class B extends A {\n    A other\n}\n",
	})
	a := f.r.Index().ClassByName("A")
	refs := f.r.References(a)
	require.Len(t, refs, 3)
	assert.Same(t, ast.Node(a), refs[0])
	for _, ref := range refs[1:] {
		assert.Equal(t, ast.KindTypeRef, ref.Kind())
		uri, ok := f.r.Index().URIOf(ref)
		require.True(t, ok)
		assert.Equal(t, "file:///work/B.groovy", uri)
	}
}

func TestReferences_Method(t *testing.T) {
	t.Parallel()
	f := newScript(t, overloadSource)
	one := f.r.Index().ClassByName("F").Methods[0]
	refs := f.r.References(one)
	require.Len(t, refs, 2)
	assert.Same(t, ast.Node(one), refs[0])
	assert.Equal(t, ast.KindConstant, refs[1].Kind())
}

func TestReferences_Unresolved(t *testing.T) {
	t.Parallel()
	f := newScript(t, "println 'hi'\n")
	assert.Empty(t, f.r.References(f.node(t, "'hi'", 0)))
	assert.Empty(t, f.r.References(nil))
}

// =============================================================================
// Scopes and members
// =============================================================================

func TestMembersOf(t *testing.T) {
	t.Parallel()
	f := newScript(t, `class Counter {
    static int created
    int value
    static Counter make() { new Counter() }
    void inc() { value++ }
}
Counter.make()
new Counter().inc()
`)
	names := func(m Members) []string {
		var out []string
		for _, p := range m.Properties {
			out = append(out, p.Name)
		}
		for _, fl := range m.Fields {
			out = append(out, fl.Name)
		}
		for _, meth := range m.Methods {
			if meth.Owner.Name == "Counter" {
				out = append(out, meth.Name+"()")
			}
		}
		return out
	}
	static := f.r.Index().ParentOf(f.node(t, "make()", 1)).(*ast.MethodCallExpression)
	assert.Equal(t, []string{"created", "make()"}, names(f.r.MembersOf(static.Object)))

	inst := f.r.Index().ParentOf(f.node(t, "inc()", 1)).(*ast.MethodCallExpression)
	got := names(f.r.MembersOf(inst.Object))
	assert.Equal(t, []string{"value", "inc()"}, got)
	assert.NotEmpty(t, f.r.MembersOf(inst.Object).Methods)
}

func TestScopeVariables(t *testing.T) {
	t.Parallel()
	f := newScript(t, `class S {
    void run(int a) {
        def b = 1
        [1].each { c ->
            def d = 2
            println d
        }
    }
}
`)
	var names []string
	for _, v := range f.r.ScopeVariables(f.node(t, "println", 0)) {
		names = append(names, v.VariableName())
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, names)
}
