package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/groovyls/internal/ast"
)

const greeterJava = `package demo;

import java.util.List;

/** Greets people. */
public class Greeter {
    private List<String> names;

    public Greeter(List<String> names) {
        this.names = names;
    }

    public int count(int x) {
        return names.size() + x;
    }
}
`

func TestParseJava_Declarations(t *testing.T) {
	t.Parallel()
	u := NewSourceUnit("file:///work/demo/Greeter.java", LangJava, greeterJava)
	require.NoError(t, Parse(t.Context(), u))
	requireNoErrors(t, u)
	assert.Equal(t, PhaseConversion, u.Phase)

	mod := u.Module
	assert.Equal(t, "demo", mod.Package)
	require.Len(t, mod.Imports, 1)
	assert.Equal(t, "java.util.List", mod.Imports[0].Type.Name)
	assert.Nil(t, mod.Script)

	require.Len(t, mod.Classes, 1)
	cls := mod.Classes[0]
	assert.Equal(t, "Greeter", cls.Name)
	assert.Equal(t, "demo.Greeter", cls.FullName())
	assert.Equal(t, "/** Greets people. */", cls.Doc)
	assert.True(t, cls.Modifiers.Has(ast.ModPublic))
	assert.Equal(t, 6, cls.Span.Line)
	assert.Equal(t, 1, cls.Span.Column)

	require.Len(t, cls.Fields, 1)
	f := cls.Fields[0]
	assert.Equal(t, "names", f.Name)
	assert.True(t, f.Modifiers.Has(ast.ModPrivate))
	assert.Equal(t, "List", f.Type.Name)
	require.Len(t, f.Type.Args, 1)
	assert.Equal(t, "String", f.Type.Args[0].Name)
	assert.Empty(t, cls.Properties)

	require.Len(t, cls.Constructors, 1)
	require.Len(t, cls.Constructors[0].Parameters, 1)
	assert.Equal(t, "names", cls.Constructors[0].Parameters[0].Name)

	require.Len(t, cls.Methods, 1)
	m := cls.Methods[0]
	assert.Equal(t, "count", m.Name)
	assert.Equal(t, "int", m.ReturnType.Name)
	require.Len(t, m.Parameters, 1)
	assert.Equal(t, "x", m.Parameters[0].Name)
	assert.Equal(t, ast.Span{Line: 13, Column: 22, LastLine: 13, LastColumn: 27}, m.Parameters[0].Span)
}

func TestParseJava_AnalyzedWithGroovy(t *testing.T) {
	t.Parallel()
	units, table, err := compileSources(t, map[string]string{
		"file:///work/demo/Greeter.java": greeterJava,
		"file:///work/use.groovy":        "import demo.Greeter\n\nnew Greeter([]).count(1)\n",
	})
	require.NoError(t, err)
	require.NotNil(t, table.Workspace("demo.Greeter"))

	cls := units[0].Module.Classes[0]
	assert.Equal(t, "java.util.List", cls.Fields[0].Type.Resolved)
	assert.Equal(t, "java.lang.String", cls.Fields[0].Type.Args[0].Resolved)

	ret := cls.Methods[0].Code.Statements[0].(*ast.ReturnStatement)
	sum := ret.Expr.(*ast.BinaryExpression)
	call := sum.Left.(*ast.MethodCallExpression)
	assert.Equal(t, "size", call.MethodName())
	recv := call.Object.(*ast.VariableExpression)
	assert.Same(t, cls.Fields[0], recv.Accessed)
	x := sum.Right.(*ast.VariableExpression)
	assert.Same(t, cls.Methods[0].Parameters[0], x.Accessed)
}

func TestParseJava_SyntaxErrors(t *testing.T) {
	t.Parallel()
	u := NewSourceUnit("file:///work/Broken.java", LangJava, "class Broken {\n    int x = ;\n}\n")
	require.NoError(t, Parse(t.Context(), u))
	require.NotEmpty(t, u.Messages)
	for _, m := range u.Messages {
		assert.True(t, m.Fatal)
		assert.Equal(t, SeverityError, m.Severity)
	}
	require.NotNil(t, u.Module)
	assert.Equal(t, PhaseConversion, u.Phase)
}

func TestParseJava_WildcardBound(t *testing.T) {
	t.Parallel()
	src := "import java.util.List;\nclass Box {\n    List<? extends Number> nums;\n    List<?> any;\n}\n"
	u := NewSourceUnit("file:///work/Box.java", LangJava, src)
	require.NoError(t, Parse(t.Context(), u))
	requireNoErrors(t, u)

	require.Len(t, u.Module.Classes, 1)
	fields := u.Module.Classes[0].Fields
	require.Len(t, fields, 2)
	require.Len(t, fields[0].Type.Args, 1)
	assert.Equal(t, "Number", fields[0].Type.Args[0].Name)
	assert.Equal(t, "List", fields[1].Type.Name)
	assert.Empty(t, fields[1].Type.Args)
}
