package ranges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/groovyls/internal/ast"
)

func pos(line, char int) Position { return Position{Line: line, Character: char} }

func rng(l1, c1, l2, c2 int) Range { return Range{Start: pos(l1, c1), End: pos(l2, c2)} }

func TestFromGroovy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		line, col int
		want      Position
		wantOK    bool
	}{
		{"first column", 1, 1, pos(0, 0), true},
		{"mid line", 4, 7, pos(3, 6), true},
		{"no line", -1, 5, Position{}, false},
		{"no column", 2, -1, pos(1, 0), true},
		{"zero stays zero", 0, 0, pos(0, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromGroovy(tt.line, tt.col)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromSpan(t *testing.T) {
	t.Parallel()
	r, ok := FromSpan(ast.Span{Line: 2, Column: 3, LastLine: 2, LastColumn: 9})
	require.True(t, ok)
	assert.Equal(t, rng(1, 2, 1, 8), r)

	r, ok = FromSpan(ast.Span{Line: 2, Column: 3, LastLine: -1, LastColumn: -1})
	require.True(t, ok)
	assert.Equal(t, rng(1, 2, 1, 2), r, "missing end collapses to start")

	_, ok = FromSpan(ast.NoSpan)
	assert.False(t, ok)
}

func TestContains_Inclusive(t *testing.T) {
	t.Parallel()
	r := rng(1, 4, 3, 2)
	assert.True(t, Contains(r, pos(1, 4)))
	assert.True(t, Contains(r, pos(3, 2)))
	assert.True(t, Contains(r, pos(2, 100)))
	assert.False(t, Contains(r, pos(1, 3)))
	assert.False(t, Contains(r, pos(3, 3)))
}

func TestIntersect(t *testing.T) {
	t.Parallel()
	assert.True(t, Intersect(rng(0, 0, 5, 0), rng(4, 0, 9, 0)))
	assert.True(t, Intersect(rng(2, 0, 5, 0), rng(0, 0, 2, 0)))
	assert.False(t, Intersect(rng(0, 0, 1, 0), rng(2, 0, 3, 0)))
}

func TestCompare(t *testing.T) {
	t.Parallel()
	assert.Negative(t, Compare(pos(0, 9), pos(1, 0)))
	assert.Positive(t, Compare(pos(2, 3), pos(2, 1)))
	assert.Zero(t, Compare(pos(2, 3), pos(2, 3)))
}

func TestOffset(t *testing.T) {
	t.Parallel()
	text := "hello\nworld\n"
	assert.Equal(t, 0, Offset(text, pos(0, 0)))
	assert.Equal(t, 3, Offset(text, pos(0, 3)))
	assert.Equal(t, 7, Offset(text, pos(1, 1)))
	assert.Equal(t, 12, Offset(text, pos(2, 0)))
	assert.Equal(t, -1, Offset(text, pos(5, 0)))
	// past the end of a line clamps to the newline
	assert.Equal(t, 5, Offset(text, pos(0, 40)))
}

func TestOffset_UTF16(t *testing.T) {
	t.Parallel()
	// "é" is one UTF-16 unit and two bytes; the emoji is two units and four bytes.
	text := "é😀x"
	assert.Equal(t, 2, Offset(text, pos(0, 1)))
	assert.Equal(t, 6, Offset(text, pos(0, 3)))
	assert.Equal(t, 4, UTF16Len(text))
}

func TestSubstring(t *testing.T) {
	t.Parallel()
	text := "class Foo {\n  def x\n}\n"

	s, ok := Substring(text, rng(0, 0, 2, 1), 1)
	require.True(t, ok)
	assert.Equal(t, "class Foo {", s)

	s, ok = Substring(text, rng(0, 6, 0, 9), 0)
	require.True(t, ok)
	assert.Equal(t, "Foo", s)

	s, ok = Substring(text, rng(0, 0, 2, 1), 0)
	require.True(t, ok)
	assert.Equal(t, "class Foo {\n  def x\n}", s)

	_, ok = Substring(text, rng(10, 0, 11, 0), 1)
	assert.False(t, ok)
}
