package frontend

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jward/groovyls/internal/ast"
)

// Operators, longest first so that the scanner is greedy.
var operators = []string{
	">>>=", "...", "<<=", "**=", "<=>", "..<", "==~", "?.", "*.", ".&", ".@", "?:",
	"=~", "==", "!=", "<=", ">=", "&&", "||", "++", "--", "+=", "-=", "*=",
	"/=", "%=", "&=", "|=", "^=", "->", "::", "**", "<<", "..",
	"(", ")", "[", "]", "{", "}", ",", ";", ".", ":", "?", "=", "<", ">",
	"+", "-", "*", "/", "%", "!", "~", "&", "|", "^", "@",
}

type lexError struct {
	sp  ast.Span
	msg string
}

type lexer struct {
	src  string
	i    int
	line int
	col  int

	toks []token
	errs []lexError
}

func lex(src string) ([]token, []lexError) {
	return lexAt(src, 1, 1)
}

// lexAt scans src as if it started at the given 1-based position.
func lexAt(src string, line, col int) ([]token, []lexError) {
	l := &lexer{src: src, line: line, col: col}
	l.run()
	return l.toks, l.errs
}

func (l *lexer) peekRune(off int) rune {
	j := l.i
	for k := 0; k < off; k++ {
		if j >= len(l.src) {
			return -1
		}
		_, size := utf8.DecodeRuneInString(l.src[j:])
		j += size
	}
	if j >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[j:])
	return r
}

func (l *lexer) next() rune {
	if l.i >= len(l.src) {
		return -1
	}
	r, size := utf8.DecodeRuneInString(l.src[l.i:])
	l.i += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else if r >= 0x10000 {
		l.col += 2
	} else {
		l.col++
	}
	return r
}

func (l *lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.src[l.i:], s)
}

func (l *lexer) skip(n int) {
	for k := 0; k < n; k++ {
		l.next()
	}
}

func (l *lexer) here() (int, int) { return l.line, l.col }

func (l *lexer) errorf(line, col int, msg string) {
	l.errs = append(l.errs, lexError{
		sp:  ast.Span{Line: line, Column: col, LastLine: l.line, LastColumn: l.col},
		msg: msg,
	})
}

// operandEnd reports whether the previous token can end an operand, which
// decides whether '/' divides or starts a slashy string.
func (l *lexer) operandEnd() bool {
	if len(l.toks) == 0 {
		return false
	}
	t := l.toks[len(l.toks)-1]
	switch t.kind {
	case tIdent:
		return !isKeyword(t.text) || t.text == "this" || t.text == "super" || t.text == "true" || t.text == "false" || t.text == "null"
	case tInt, tFloat, tString, tGString:
		return true
	case tOp:
		return t.text == ")" || t.text == "]" || t.text == "}" || t.text == "++" || t.text == "--"
	}
	return false
}

func (l *lexer) run() {
	nl := false
	doc := ""
	if l.hasPrefix("#!") {
		for l.i < len(l.src) && l.peekRune(0) != '\n' {
			l.next()
		}
	}
	for {
		// whitespace and comments
		for l.i < len(l.src) {
			r := l.peekRune(0)
			if r == '\n' {
				nl = true
				l.next()
				continue
			}
			if r == '\\' && l.peekRune(1) == '\n' {
				l.skip(2)
				continue
			}
			if unicode.IsSpace(r) {
				l.next()
				continue
			}
			if l.hasPrefix("//") {
				for l.i < len(l.src) && l.peekRune(0) != '\n' {
					l.next()
				}
				continue
			}
			if l.hasPrefix("/*") {
				line, col := l.here()
				isDoc := l.hasPrefix("/**") && !l.hasPrefix("/**/")
				start := l.i
				l.skip(2)
				closed := false
				for l.i < len(l.src) {
					if l.hasPrefix("*/") {
						l.skip(2)
						closed = true
						break
					}
					l.next()
				}
				if !closed {
					l.errorf(line, col, "unterminated comment")
				}
				if isDoc {
					doc = l.src[start:l.i]
				}
				continue
			}
			break
		}
		if l.i >= len(l.src) {
			l.toks = append(l.toks, token{kind: tEOF, sp: ast.Span{Line: l.line, Column: l.col, LastLine: l.line, LastColumn: l.col}, nl: true})
			return
		}
		tok := l.scan()
		tok.nl = nl
		tok.doc = doc
		nl = false
		doc = ""
		l.toks = append(l.toks, tok)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func (l *lexer) scan() token {
	line, col := l.here()
	start := l.i
	finish := func(kind tokKind, text string) token {
		return token{kind: kind, text: text, sp: ast.Span{Line: line, Column: col, LastLine: l.line, LastColumn: l.col}}
	}
	r := l.peekRune(0)
	switch {
	case isIdentStart(r):
		for isIdentPart(l.peekRune(0)) {
			l.next()
		}
		return finish(tIdent, l.src[start:l.i])
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peekRune(1)) && !l.operandEnd()):
		kind := l.number()
		return finish(kind, l.src[start:l.i])
	case r == '\'':
		s := l.quoted('\'')
		return finish(tString, s)
	case r == '"':
		parts, ok := l.interpolated()
		tok := finish(tString, "")
		if !ok {
			tok.kind = tIllegal
			return tok
		}
		if len(parts) == 1 && !parts[0].expr {
			tok.text = parts[0].lit
			return tok
		}
		if len(parts) == 0 {
			return tok
		}
		tok.kind = tGString
		tok.parts = parts
		return tok
	case r == '/' && !l.operandEnd() && l.peekRune(1) != '=':
		s, ok := l.slashy()
		if !ok {
			return finish(tIllegal, s)
		}
		return finish(tString, s)
	}
	for _, op := range operators {
		if l.hasPrefix(op) {
			l.skip(utf8.RuneCountInString(op))
			return finish(tOp, op)
		}
	}
	l.next()
	l.errorf(line, col, "unexpected character '"+string(r)+"'")
	return finish(tIllegal, string(r))
}

func (l *lexer) number() tokKind {
	kind := tInt
	if l.hasPrefix("0x") || l.hasPrefix("0X") || l.hasPrefix("0b") || l.hasPrefix("0B") {
		l.skip(2)
		for r := l.peekRune(0); isHex(r) || r == '_'; r = l.peekRune(0) {
			l.next()
		}
	} else {
		l.digits()
		if l.peekRune(0) == '.' && unicode.IsDigit(l.peekRune(1)) {
			kind = tFloat
			l.next()
			l.digits()
		}
		if r := l.peekRune(0); r == 'e' || r == 'E' {
			nx := l.peekRune(1)
			if unicode.IsDigit(nx) || ((nx == '+' || nx == '-') && unicode.IsDigit(l.peekRune(2))) {
				kind = tFloat
				l.skip(2)
				l.digits()
			}
		}
	}
	switch l.peekRune(0) {
	case 'l', 'L', 'i', 'I', 'g', 'G':
		l.next()
	case 'd', 'D', 'f', 'F':
		kind = tFloat
		l.next()
	}
	return kind
}

func (l *lexer) digits() {
	for r := l.peekRune(0); unicode.IsDigit(r) || r == '_'; r = l.peekRune(0) {
		l.next()
	}
}

func isHex(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// escape consumes a backslash escape and returns its value.
func (l *lexer) escape() string {
	l.next() // backslash
	r := l.next()
	switch r {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'u':
		var v rune
		for k := 0; k < 4 && isHex(l.peekRune(0)); k++ {
			h := l.next()
			v = v*16 + hexVal(h)
		}
		return string(v)
	case '\n':
		return ""
	case -1:
		return ""
	}
	return string(r)
}

func hexVal(r rune) rune {
	switch {
	case r >= '0' && r <= '9':
		return r - '0'
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10
	default:
		return r - 'A' + 10
	}
}

// quoted scans a single-quoted string in either the ''' or ' form.
func (l *lexer) quoted(q rune) string {
	line, col := l.here()
	triple := l.hasPrefix(strings.Repeat(string(q), 3))
	if triple {
		l.skip(3)
	} else {
		l.skip(1)
	}
	var b strings.Builder
	for {
		r := l.peekRune(0)
		switch {
		case r == -1:
			l.errorf(line, col, "unterminated string literal")
			return b.String()
		case r == '\\':
			b.WriteString(l.escape())
		case triple && l.hasPrefix(strings.Repeat(string(q), 3)):
			l.skip(3)
			return b.String()
		case !triple && r == q:
			l.next()
			return b.String()
		case !triple && r == '\n':
			l.errorf(line, col, "unterminated string literal")
			return b.String()
		default:
			b.WriteRune(l.next())
		}
	}
}

// interpolated scans a double-quoted string, splitting out ${...} and $name
// segments.
func (l *lexer) interpolated() ([]gpart, bool) {
	line, col := l.here()
	triple := l.hasPrefix(`"""`)
	if triple {
		l.skip(3)
	} else {
		l.skip(1)
	}
	var parts []gpart
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			parts = append(parts, gpart{lit: b.String()})
			b.Reset()
		}
	}
	for {
		r := l.peekRune(0)
		switch {
		case r == -1 || (!triple && r == '\n'):
			l.errorf(line, col, "unterminated string literal")
			flush()
			return parts, false
		case r == '\\':
			b.WriteString(l.escape())
		case triple && l.hasPrefix(`"""`):
			l.skip(3)
			flush()
			return parts, true
		case !triple && r == '"':
			l.next()
			flush()
			return parts, true
		case r == '$' && l.peekRune(1) == '{':
			flush()
			l.skip(2)
			eline, ecol := l.here()
			start := l.i
			depth := 1
			for l.i < len(l.src) {
				c := l.peekRune(0)
				if c == '{' {
					depth++
				} else if c == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				l.next()
			}
			src := l.src[start:l.i]
			if depth != 0 {
				l.errorf(line, col, "unterminated string literal")
				return parts, false
			}
			l.next() // closing brace
			parts = append(parts, gpart{expr: true, src: src, line: eline, col: ecol, closure: true})
		case r == '$' && isIdentStart(l.peekRune(1)) && l.peekRune(1) != '$':
			flush()
			l.next()
			eline, ecol := l.here()
			start := l.i
			for isIdentPart(l.peekRune(0)) && l.peekRune(0) != '$' {
				l.next()
			}
			for l.peekRune(0) == '.' && isIdentStart(l.peekRune(1)) && l.peekRune(1) != '$' {
				l.next()
				for isIdentPart(l.peekRune(0)) && l.peekRune(0) != '$' {
					l.next()
				}
			}
			parts = append(parts, gpart{expr: true, src: l.src[start:l.i], line: eline, col: ecol})
		default:
			b.WriteRune(l.next())
		}
	}
}

func (l *lexer) slashy() (string, bool) {
	line, col := l.here()
	l.next()
	var b strings.Builder
	for {
		r := l.peekRune(0)
		switch r {
		case -1:
			l.errorf(line, col, "unterminated slashy string")
			return b.String(), false
		case '\\':
			if l.peekRune(1) == '/' {
				l.skip(2)
				b.WriteRune('/')
				continue
			}
			b.WriteRune(l.next())
		case '/':
			l.next()
			return b.String(), true
		default:
			b.WriteRune(l.next())
		}
	}
}
