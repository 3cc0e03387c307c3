package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/groovyls/internal/ast"
	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/ranges"
)

func TestCollectDiagnostics(t *testing.T) {
	t.Parallel()
	bad := frontend.NewSourceUnit(uriA, frontend.LangGroovy, "")
	bad.Messages = []frontend.Message{{
		Span:     ast.Span{Line: 2, Column: 5, LastLine: 2, LastColumn: 8},
		Severity: frontend.SeverityError,
		Text:     "unable to resolve class Foo",
	}}
	clean := frontend.NewSourceUnit(uriB, frontend.LangGroovy, "")
	units := map[string]*frontend.SourceUnit{uriA: bad, uriB: clean}

	got, published := collectDiagnostics(units, map[string]bool{uriB: true, uriC: true})
	require.Len(t, got, 3)

	assert.Equal(t, uriA, got[0].URI)
	require.Len(t, got[0].Diagnostics, 1)
	assert.Equal(t, ranges.Range{
		Start: ranges.Position{Line: 1, Character: 4},
		End:   ranges.Position{Line: 1, Character: 7},
	}, got[0].Diagnostics[0].Range)
	assert.Equal(t, frontend.SeverityError, got[0].Diagnostics[0].Severity)

	assert.Equal(t, uriB, got[1].URI)
	assert.Empty(t, got[1].Diagnostics)
	assert.Equal(t, uriC, got[2].URI)
	assert.Empty(t, got[2].Diagnostics)

	assert.Equal(t, map[string]bool{uriA: true}, published)
}

func TestToDiagnostic_Positionless(t *testing.T) {
	t.Parallel()
	d := toDiagnostic(frontend.Message{Span: ast.NoSpan, Severity: frontend.SeverityWarning, Text: "w"})
	assert.Equal(t, ranges.Range{}, d.Range)
	assert.Equal(t, "w", d.Message)
}
