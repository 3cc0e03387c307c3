package frontend

import "github.com/jward/groovyls/internal/ast"

type tokKind int

const (
	tEOF tokKind = iota
	tIdent
	tInt
	tFloat
	tString
	tGString
	tOp
	tIllegal
)

// token is one lexeme. For string literals text holds the decoded value; for
// everything else the source text.
type token struct {
	kind tokKind
	text string
	sp   ast.Span
	// nl is set when a line break separates this token from the previous one.
	nl    bool
	doc   string
	parts []gpart
}

// gpart is a segment of an interpolated string: a literal run, or the
// source of an embedded expression together with its start position.
type gpart struct {
	lit  string
	expr bool
	src  string
	line int
	col  int
	// closure is set for ${...} blocks; $name paths are bare.
	closure bool
}

func (t token) is(op string) bool {
	return t.kind == tOp && t.text == op
}

func (t token) isIdent(name string) bool {
	return t.kind == tIdent && t.text == name
}

var keywords = map[string]bool{
	"abstract": true, "as": true, "assert": true, "boolean": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "class": true,
	"const": true, "continue": true, "def": true, "default": true, "do": true,
	"double": true, "else": true, "enum": true, "extends": true, "false": true,
	"final": true, "finally": true, "float": true, "for": true, "goto": true,
	"if": true, "implements": true, "import": true, "in": true, "instanceof": true,
	"int": true, "interface": true, "long": true, "native": true, "new": true,
	"null": true, "package": true, "private": true, "protected": true, "public": true,
	"return": true, "short": true, "static": true, "strictfp": true, "super": true,
	"switch": true, "synchronized": true, "this": true, "throw": true, "throws": true,
	"trait": true, "transient": true, "true": true, "try": true, "void": true,
	"volatile": true, "while": true, "var": true,
}

// Contextual keywords that may still name variables and members.
var softKeywords = map[string]bool{
	"as": true, "def": true, "in": true, "trait": true, "var": true,
}

func isKeyword(s string) bool {
	return keywords[s] && !softKeywords[s]
}

var primitiveTypes = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true, "int": true,
	"long": true, "float": true, "double": true, "void": true,
}
