// Package ast defines the syntax tree produced by the front end. The node set
// is closed: every concrete node is a pointer type declared in this package,
// so a map keyed by Node compares entries by reference identity and a type
// switch over the kinds below is exhaustive.
package ast

// Span is a 1-based source range. LastColumn is exclusive. Line == -1 marks a
// node with no source position (compiler-generated wrappers, external stubs).
type Span struct {
	Line       int
	Column     int
	LastLine   int
	LastColumn int
}

// NoSpan is the span of a node without a source position.
var NoSpan = Span{Line: -1, Column: -1, LastLine: -1, LastColumn: -1}

// Pos returns the span itself; it is promoted to every node.
func (s Span) Pos() Span { return s }

// HasPosition reports whether the span points into source text.
func (s Span) HasPosition() bool { return s.Line != -1 && s.Column != -1 }

// To returns a span starting at s and ending where end ends.
func (s Span) To(end Span) Span {
	return Span{Line: s.Line, Column: s.Column, LastLine: end.LastLine, LastColumn: end.LastColumn}
}

// Node is implemented by every syntax tree node.
type Node interface {
	Kind() Kind
	Pos() Span
	node()
}

// Expression is a Node that produces a value.
type Expression interface {
	Node
	expr()
}

// Statement is a Node that appears in a block.
type Statement interface {
	Node
	stmt()
}

// Variable is a declaration that a VariableExpression can access.
type Variable interface {
	Node
	VariableName() string
	DeclaredType() *TypeRef
}

// Documented is implemented by declarations that may carry a groovydoc comment.
type Documented interface {
	Node
	Groovydoc() string
}

// Modifiers is a bitset of declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModFinal
	ModAbstract
	ModSynchronized
	ModTransient
	ModVolatile
	ModNative
	ModDefault
	ModStrictfp
)

// Has reports whether all bits of m2 are set in m.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// IsPublic reports whether no explicit narrower visibility is present.
func (m Modifiers) IsPublic() bool {
	return m&(ModProtected|ModPrivate) == 0
}

// ModifierByKeyword maps a source keyword to its modifier bit.
var ModifierByKeyword = map[string]Modifiers{
	"public":       ModPublic,
	"protected":    ModProtected,
	"private":      ModPrivate,
	"static":       ModStatic,
	"final":        ModFinal,
	"abstract":     ModAbstract,
	"synchronized": ModSynchronized,
	"transient":    ModTransient,
	"volatile":     ModVolatile,
	"native":       ModNative,
	"default":      ModDefault,
	"strictfp":     ModStrictfp,
}
