package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/frontend"
)

func compileOne(t *testing.T, src string) *ast.ModuleNode {
	t.Helper()
	ext, err := frontend.NewExternals(nil)
	require.NoError(t, err)
	u := frontend.NewSourceUnit("file:///work/T.groovy", frontend.LangGroovy, src)
	_, _ = frontend.Compile(context.Background(), ext, []*frontend.SourceUnit{u})
	require.NotNil(t, u.Module)
	return u.Module
}

func ref(name string) *ast.TypeRef { return &ast.TypeRef{Name: name, Resolved: name} }

// =============================================================================
// Signatures
// =============================================================================

func TestTypeName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		ref  *ast.TypeRef
		want string
	}{
		{"nil is Object", nil, "Object"},
		{"qualified", ref("java.lang.String"), "String"},
		{"unresolved keeps written name", &ast.TypeRef{Name: "Foo"}, "Foo"},
		{"inner class", ref("p.Outer$Inner"), "Inner"},
		{"array", &ast.TypeRef{Name: "int", Resolved: "int", Dims: 2}, "int[][]"},
		{"generic", &ast.TypeRef{Name: "List", Resolved: "java.util.List", Args: []*ast.TypeRef{ref("java.lang.String")}}, "List<String>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TypeName(tt.ref))
		})
	}
}

func TestMethod_FromSource(t *testing.T) {
	t.Parallel()
	mod := compileOne(t, `class K {
    String m() {}
    private static final int count(String a, int... rest) { 0 }
    def dyn(x) {}
    public K(int n) {}
}
`)
	cls := mod.Classes[0]
	require.Len(t, cls.Methods, 3)
	assert.Equal(t, "String m()", Method(cls.Methods[0]))
	assert.Equal(t, "private static final int count(String a, int... rest)", Method(cls.Methods[1]))
	assert.Equal(t, "Object dyn(Object x)", Method(cls.Methods[2]))
	require.Len(t, cls.Constructors, 1)
	assert.Equal(t, "K(int n)", Method(cls.Constructors[0]))
}

func TestClass(t *testing.T) {
	t.Parallel()
	mod := compileOne(t, `package p
abstract class Shape implements Comparable {}
class Square extends Shape {}
interface Named extends Comparable {}
enum Color { RED }
`)
	got := make([]string, 0, len(mod.Classes))
	for _, c := range mod.Classes {
		got = append(got, Class(c))
	}
	assert.Equal(t, []string{
		"abstract class p.Shape implements Comparable",
		"class p.Square extends Shape",
		"interface p.Named extends Comparable",
		"enum p.Color",
	}, got)
}

func TestVariable(t *testing.T) {
	t.Parallel()
	str := &ast.ClassNode{Name: "String", Package: "java.lang"}
	tests := []struct {
		name string
		v    ast.Variable
		typ  *ast.ClassNode
		want string
	}{
		{
			"field modifiers",
			&ast.FieldNode{Name: "MAX", Type: ref("int"), Modifiers: ast.ModPublic | ast.ModStatic | ast.ModFinal},
			nil, "public final static int MAX",
		},
		{"property", &ast.PropertyNode{Name: "name", Type: ref("java.lang.String")}, nil, "String name"},
		{"static property", &ast.PropertyNode{Name: "n", Type: ref("int"), Modifiers: ast.ModStatic}, nil, "static int n"},
		{"dynamic local with inferred type", &ast.VariableExpression{Name: "s"}, str, "String s"},
		{"dynamic local", &ast.VariableExpression{Name: "s"}, nil, "Object s"},
		{"declared type beats inferred", &ast.Parameter{Name: "p", Type: ref("long")}, str, "long p"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Variable(tt.v, tt.typ))
		})
	}
}

func TestSignature(t *testing.T) {
	t.Parallel()
	_, ok := Signature(&ast.ConstantExpression{Text: "x"}, nil)
	assert.False(t, ok)

	s, ok := Signature(&ast.MethodNode{Name: "go", ReturnType: ref("void")}, nil)
	require.True(t, ok)
	assert.Equal(t, "void go()", s)
}

// =============================================================================
// Groovydoc
// =============================================================================

func TestMarkdown(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", ""},
		{"single line", "/** Greets people. */", "Greets people."},
		{
			"params and return",
			"/**\n * Greets.\n * @param name who to greet\n * @return the greeting\n */",
			"Greets.  \n- *param* **name** - who to greet  \n- *return* - the greeting",
		},
		{
			"other tags dropped",
			"/**\n * Old.\n * @deprecated use new\n * @since 1.0\n */",
			"Old.",
		},
		{"crlf", "/**\r\n * A.\r\n * B.\r\n */", "A.  \nB."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Markdown(tt.doc))
		})
	}
}

func TestHover(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "```groovy\nString m()\n```", Hover("String m()", ""))
	assert.Equal(t, "```groovy\nclass A\n```\n\n---\n\nAn A.", Hover("class A", "/** An A. */"))
}
