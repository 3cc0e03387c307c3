package groovyls

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/config"
)

const completionSource = `class Completion {
    String name
    static int count() { 0 }
    void run() {
        String localVar = ''
        %s
    }
}
`

// complete compiles completionSource with typed on the marked line and
// completes at the end of it.
func complete(t *testing.T, typed string, opts ...Option) *CompletionList {
	t.Helper()
	src := strings.Replace(completionSource, "%s", typed, 1)
	s := newTestSession(t, map[string]string{uriA: src}, opts...)
	list, err := s.Completion(t.Context(), uriA, Position{Line: 5, Character: 8 + len(typed)})
	require.NoError(t, err)
	require.NotNil(t, list)
	return list
}

func labels(list *CompletionList) []string {
	out := make([]string, 0, len(list.Items))
	for _, it := range list.Items {
		out = append(out, it.Label)
	}
	return out
}

func item(list *CompletionList, label string) (CompletionItem, bool) {
	for _, it := range list.Items {
		if it.Label == label {
			return it, true
		}
	}
	return CompletionItem{}, false
}

// =============================================================================
// Member access
// =============================================================================

func TestCompletion_AfterDot(t *testing.T) {
	t.Parallel()
	list := complete(t, "localVar.")
	assert.False(t, list.IsIncomplete)
	got := labels(list)
	assert.Contains(t, got, "substring")
	assert.Contains(t, got, "toUpperCase")
	assert.NotContains(t, got, "localVar")

	sub, ok := item(list, "substring")
	require.True(t, ok)
	assert.Equal(t, CompletionKindMethod, sub.Kind)

	seen := make(map[string]bool)
	for _, l := range got {
		assert.False(t, seen[l], "duplicate %q", l)
		seen[l] = true
	}
}

func TestCompletion_MemberPrefix(t *testing.T) {
	t.Parallel()
	list := complete(t, "localVar.sub")
	require.NotEmpty(t, list.Items)
	for _, l := range labels(list) {
		assert.True(t, strings.HasPrefix(l, "sub"), l)
	}
	assert.Contains(t, labels(list), "substring")
}

func TestCompletion_StaticMembersOfClass(t *testing.T) {
	t.Parallel()
	got := labels(complete(t, "Completion."))
	assert.Contains(t, got, "count")
	assert.NotContains(t, got, "name")
	assert.NotContains(t, got, "run")
}

// =============================================================================
// Scope
// =============================================================================

func TestCompletion_ScopeNames(t *testing.T) {
	t.Parallel()

	list := complete(t, "loc")
	v, ok := item(list, "localVar")
	require.True(t, ok)
	assert.Equal(t, CompletionKindVariable, v.Kind)
	assert.Equal(t, "String localVar", v.Detail)

	list = complete(t, "cou")
	m, ok := item(list, "count")
	require.True(t, ok)
	assert.Equal(t, CompletionKindMethod, m.Kind)

	list = complete(t, "na")
	p, ok := item(list, "name")
	require.True(t, ok)
	assert.Equal(t, CompletionKindField, p.Kind)

	list = complete(t, "Compl")
	c, ok := item(list, "Completion")
	require.True(t, ok)
	assert.Equal(t, CompletionKindClass, c.Kind)
}

func TestCompletion_ScriptVariables(t *testing.T) {
	t.Parallel()
	src := "def alpha = 1\ndef beta = 2\nal\n"
	s := newTestSession(t, map[string]string{uriA: src})

	list, err := s.Completion(t.Context(), uriA, Position{Line: 2, Character: 2})
	require.NoError(t, err)
	got := labels(list)
	assert.Contains(t, got, "alpha")
	assert.NotContains(t, got, "beta")
}

// =============================================================================
// Imports and limits
// =============================================================================

func TestCompletion_Import(t *testing.T) {
	t.Parallel()
	src := "import java.util.Array\nclass A {}\n"
	s := newTestSession(t, map[string]string{uriA: src})

	list, err := s.Completion(t.Context(), uriA, Position{Line: 0, Character: len("import java.util.Array")})
	require.NoError(t, err)
	got := labels(list)
	assert.Contains(t, got, "java.util.ArrayList")
	for _, l := range got {
		assert.True(t, strings.HasPrefix(l, "java.util.Array"), l)
	}
}

func TestCompletion_MaxItems(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Completion.MaxItems = 1
	list := complete(t, "localVar.", WithConfig(cfg))
	assert.Len(t, list.Items, 1)
	assert.True(t, list.IsIncomplete)
}

func TestCompletion_NothingAtPosition(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, map[string]string{uriA: "class A {}\n"})

	list, err := s.Completion(t.Context(), "file:///work/Missing.groovy", Position{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.NotNil(t, list.Items)
}

// =============================================================================
// memberPrefix
// =============================================================================

func TestMemberPrefix(t *testing.T) {
	t.Parallel()
	span := func(l, c, lc int) ast.Span { return ast.Span{Line: l, Column: c, LastLine: l, LastColumn: lc} }
	tests := []struct {
		name string
		word string
		sp   ast.Span
		pos  Position
		want string
	}{
		{"middle of word", "substring", span(1, 5, 14), Position{Line: 0, Character: 7}, "sub"},
		{"end of word", "sub", span(1, 5, 8), Position{Line: 0, Character: 7}, "sub"},
		{"at word start", "sub", span(1, 5, 8), Position{Line: 0, Character: 4}, ""},
		{"other line", "sub", span(1, 5, 8), Position{Line: 1, Character: 7}, ""},
		{"past word", "sub", span(1, 5, 8), Position{Line: 0, Character: 9}, ""},
		{"positionless", "sub", ast.NoSpan, Position{Line: 0, Character: 7}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, memberPrefix(tt.word, tt.sp, tt.pos))
		})
	}
}
