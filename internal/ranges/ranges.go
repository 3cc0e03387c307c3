// Package ranges converts front-end positions to protocol coordinates and
// answers ordering and containment questions about them. Protocol positions
// are 0-based lines and 0-based UTF-16 code unit offsets within a line.
package ranges

import (
	"unicode/utf8"

	"github.com/jward/groovyls/internal/ast"
)

// Position is a 0-based protocol position.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a protocol range; End is exclusive.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// FromGroovy converts a 1-based front-end position. A line of -1 has no
// protocol equivalent; a column of -1 maps to the start of the line.
func FromGroovy(line, column int) (Position, bool) {
	if line == -1 {
		return Position{}, false
	}
	if column == -1 {
		column = 0
	}
	if line > 0 {
		line--
	}
	if column > 0 {
		column--
	}
	return Position{Line: line, Character: column}, true
}

// FromSpan converts a node span. A missing end collapses to the start.
func FromSpan(s ast.Span) (Range, bool) {
	start, ok := FromGroovy(s.Line, s.Column)
	if !ok {
		return Range{}, false
	}
	end, ok := FromGroovy(s.LastLine, s.LastColumn)
	if !ok {
		end = start
	}
	return Range{Start: start, End: end}, true
}

// Compare orders positions by line, then character.
func Compare(a, b Position) int {
	if a.Line != b.Line {
		return a.Line - b.Line
	}
	return a.Character - b.Character
}

// Valid reports whether p carries any coordinate.
func Valid(p Position) bool {
	return p.Line >= 0 || p.Character >= 0
}

// Contains reports whether p lies in r, inclusive at both ends.
func Contains(r Range, p Position) bool {
	return Compare(p, r.Start) >= 0 && Compare(p, r.End) <= 0
}

// Intersect reports whether r2 starts or ends inside r1.
func Intersect(r1, r2 Range) bool {
	return Contains(r1, r2.Start) || Contains(r1, r2.End)
}

// Offset returns the byte offset of p in text, or -1 when text has fewer
// lines than p.Line. Characters past the end of the line clamp to its end.
func Offset(text string, p Position) int {
	i := 0
	for line := 0; line < p.Line; line++ {
		nl := indexByteFrom(text, i, '\n')
		if nl < 0 {
			return -1
		}
		i = nl + 1
	}
	units := 0
	for i < len(text) && units < p.Character {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '\n' {
			break
		}
		units += utf16Len(r)
		i += size
	}
	return i
}

// Substring returns the text covered by r, truncated after maxLines lines
// when maxLines is positive. ok is false when r lies outside text.
func Substring(text string, r Range, maxLines int) (string, bool) {
	start := Offset(text, r.Start)
	end := Offset(text, r.End)
	if start < 0 {
		return "", false
	}
	if end < 0 {
		end = len(text)
	}
	if end < start {
		return "", false
	}
	s := text[start:end]
	if maxLines > 0 {
		lines := 0
		for i := 0; i < len(s); i++ {
			if s[i] == '\n' {
				lines++
				if lines == maxLines {
					return s[:i], true
				}
			}
		}
	}
	return s, true
}

// UTF16Len returns the number of UTF-16 code units in s.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Len(r)
	}
	return n
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

func indexByteFrom(s string, from int, c byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
